package signals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tariqmb/rudud/internal/dialect"
	"github.com/tariqmb/rudud/internal/queue"
)

type stubIntent struct {
	intent string
	err    error
	panics bool
	delay  time.Duration
}

func (s stubIntent) DetectIntent(ctx context.Context, message string) (string, error) {
	if s.panics {
		panic("intent detector exploded")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.intent, s.err
}

type stubSentiment struct {
	sentiment Sentiment
	err       error
}

func (s stubSentiment) AnalyzeSentiment(ctx context.Context, message string) (Sentiment, error) {
	return s.sentiment, s.err
}

func allOptions() Options {
	return Options{DetectIntent: true, AnalyzeSentiment: true, DetectLanguage: true}
}

func newTestCoordinator(intent IntentDetector, sentiment SentimentAnalyzer) (*Coordinator, *queue.Memory) {
	mem := queue.NewMemory()
	sink := queue.NewBestEffort(mem, nil)
	classifier := dialect.NewClassifier(sink, nil)
	return NewCoordinator(intent, sentiment, ScriptLanguageDetector{}, classifier, sink, nil), mem
}

func TestRunCollectsAllSignals(t *testing.T) {
	c, _ := newTestCoordinator(
		stubIntent{intent: "complaint"},
		stubSentiment{sentiment: Sentiment{Label: "NEGATIVE", Confidence: 0.93}},
	)

	got := c.Run(context.Background(), "الخدمة سيئة جدا", allOptions(), ConversationContext{BusinessID: "biz-1"})

	if got.Intent == nil || *got.Intent != "complaint" {
		t.Errorf("expected intent complaint, got %v", got.Intent)
	}
	if got.Sentiment == nil || got.Sentiment.Label != "NEGATIVE" {
		t.Errorf("expected NEGATIVE sentiment, got %v", got.Sentiment)
	}
	if got.Language == nil || *got.Language != "ar" {
		t.Errorf("expected language ar, got %v", got.Language)
	}
	if got.Dialect.Dialect == "" {
		t.Error("expected a dialect result")
	}
	if got.Dialect.Confidence < 0 || got.Dialect.Confidence > 1 {
		t.Errorf("dialect confidence out of bounds: %f", got.Dialect.Confidence)
	}
}

func TestRunIsolatesFailingBranch(t *testing.T) {
	c, _ := newTestCoordinator(
		stubIntent{err: errors.New("intent service down")},
		stubSentiment{sentiment: Sentiment{Label: "POSITIVE", Confidence: 0.8}},
	)

	got := c.Run(context.Background(), "شكرا جزيلا", allOptions(), ConversationContext{})

	if got.Intent != nil {
		t.Errorf("expected absent intent, got %v", *got.Intent)
	}
	if got.Sentiment == nil || got.Sentiment.Label != "POSITIVE" {
		t.Errorf("other branches must proceed, got %v", got.Sentiment)
	}
	if got.Language == nil {
		t.Error("language branch should be unaffected")
	}
}

func TestRunIsolatesPanickingBranch(t *testing.T) {
	c, _ := newTestCoordinator(
		stubIntent{panics: true},
		stubSentiment{sentiment: Sentiment{Label: "NEUTRAL", Confidence: 0.5}},
	)

	got := c.Run(context.Background(), "hello", allOptions(), ConversationContext{})

	if got.Intent != nil {
		t.Errorf("expected absent intent after panic, got %v", *got.Intent)
	}
	if got.Sentiment == nil {
		t.Error("sentiment must survive a sibling panic")
	}
}

func TestRunTimesOutSlowBranch(t *testing.T) {
	c, _ := newTestCoordinator(
		stubIntent{intent: "question", delay: time.Second},
		stubSentiment{sentiment: Sentiment{Label: "NEUTRAL", Confidence: 0.5}},
	)
	c.branchTimeout = 20 * time.Millisecond

	start := time.Now()
	got := c.Run(context.Background(), "hi", allOptions(), ConversationContext{})
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("fan-out took %v, expected the slow branch to be cut off", elapsed)
	}
	if got.Intent != nil {
		t.Errorf("expected absent intent after timeout, got %v", *got.Intent)
	}
}

func TestRunHonorsDisabledBranches(t *testing.T) {
	c, _ := newTestCoordinator(
		stubIntent{intent: "question"},
		stubSentiment{sentiment: Sentiment{Label: "POSITIVE", Confidence: 0.9}},
	)

	got := c.Run(context.Background(), "hello", Options{}, ConversationContext{})

	if got.Intent != nil || got.Sentiment != nil || got.Language != nil {
		t.Errorf("expected all optional signals absent, got %+v", got)
	}
	// Dialect is not optional.
	if got.Dialect.Dialect != dialect.DialectEnglish {
		t.Errorf("expected en dialect, got %s", got.Dialect.Dialect)
	}
}

func TestRunDispatchesBackgroundJobs(t *testing.T) {
	c, mem := newTestCoordinator(
		stubIntent{intent: "question"},
		stubSentiment{sentiment: Sentiment{Label: "NEGATIVE", Confidence: 0.7}},
	)

	c.Run(context.Background(), "hello", allOptions(), ConversationContext{ConversationID: "conv-9"})

	var sentimentJobs, languageJobs int
	for _, j := range mem.Jobs() {
		switch j.Type {
		case "sentiment_analyzed":
			sentimentJobs++
		case "language_detected":
			languageJobs++
		}
	}
	if sentimentJobs != 1 {
		t.Errorf("expected 1 sentiment job, got %d", sentimentJobs)
	}
	if languageJobs != 1 {
		t.Errorf("expected 1 language job, got %d", languageJobs)
	}
}
