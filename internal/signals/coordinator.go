package signals

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tariqmb/rudud/internal/dialect"
	"github.com/tariqmb/rudud/internal/queue"
)

// DefaultBranchTimeout bounds each extraction branch independently so one
// slow collaborator cannot hold the whole fan-out.
const DefaultBranchTimeout = 5 * time.Second

// Coordinator fans signal extraction out over up to three concurrent
// branches and joins the results. Branch failures are isolated: a branch
// that errors, panics, or times out leaves its field absent and the others
// proceed unaffected.
type Coordinator struct {
	intent        IntentDetector
	sentiment     SentimentAnalyzer
	language      LanguageDetector
	classifier    *dialect.Classifier
	jobs          *queue.BestEffort
	branchTimeout time.Duration
	log           *logrus.Logger
}

// NewCoordinator creates a coordinator. Any detector may be nil, which
// disables its branch regardless of the per-request options.
func NewCoordinator(intent IntentDetector, sentiment SentimentAnalyzer, language LanguageDetector,
	classifier *dialect.Classifier, jobs *queue.BestEffort, log *logrus.Logger) *Coordinator {
	if jobs == nil {
		jobs = queue.NewBestEffort(queue.Nop{}, log)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Coordinator{
		intent:        intent,
		sentiment:     sentiment,
		language:      language,
		classifier:    classifier,
		jobs:          jobs,
		branchTimeout: DefaultBranchTimeout,
		log:           log,
	}
}

// SetBranchTimeout overrides the default per-branch timeout. Non-positive
// values are ignored.
func (c *Coordinator) SetBranchTimeout(d time.Duration) {
	if d > 0 {
		c.branchTimeout = d
	}
}

// Run extracts signals from message. It always returns: the zero value of a
// field simply means that signal is absent.
func (c *Coordinator) Run(ctx context.Context, message string, opts Options, conv ConversationContext) Signals {
	var (
		mu  sync.Mutex
		out Signals
		wg  sync.WaitGroup
	)

	if opts.DetectIntent && c.intent != nil {
		wg.Add(1)
		go c.guarded(ctx, &wg, "intent", func(branchCtx context.Context) {
			intent, err := c.intent.DetectIntent(branchCtx, message)
			if err != nil {
				c.log.WithField("error", err.Error()).Warn("intent detection failed")
				return
			}
			mu.Lock()
			out.Intent = &intent
			mu.Unlock()
		})
	}

	if opts.AnalyzeSentiment && c.sentiment != nil {
		wg.Add(1)
		go c.guarded(ctx, &wg, "sentiment", func(branchCtx context.Context) {
			sent, err := c.sentiment.AnalyzeSentiment(branchCtx, message)
			if err != nil {
				c.log.WithField("error", err.Error()).Warn("sentiment analysis failed")
				return
			}
			mu.Lock()
			out.Sentiment = &sent
			mu.Unlock()
		})
	}

	// The dialect branch always runs: classification degrades internally
	// instead of failing, and the prompt composer relies on its result.
	wg.Add(1)
	go c.guarded(ctx, &wg, "dialect", func(branchCtx context.Context) {
		res := c.classifier.Detect(branchCtx, message, dialect.DetectOptions{
			Country:        conv.Country,
			ConversationID: conv.ConversationID,
		})
		mu.Lock()
		out.Dialect = res
		mu.Unlock()

		if opts.DetectLanguage && c.language != nil {
			lang, err := c.language.DetectLanguage(branchCtx, message)
			if err != nil {
				c.log.WithField("error", err.Error()).Warn("language detection failed")
				return
			}
			mu.Lock()
			out.Language = &lang
			mu.Unlock()
		}
	})

	wg.Wait()

	// Redundant async persistence of sentiment and language for the
	// analytics pipeline; the response path never waits on these.
	c.dispatchJobs(ctx, out, conv)

	return out
}

// guarded runs fn under the per-branch timeout, converting panics into an
// absent signal.
func (c *Coordinator) guarded(ctx context.Context, wg *sync.WaitGroup, name string, fn func(context.Context)) {
	defer wg.Done()
	defer func() {
		if rec := recover(); rec != nil {
			c.log.WithFields(logrus.Fields{
				"branch": name,
				"panic":  rec,
			}).Error("signal branch panicked")
		}
	}()

	branchCtx, cancel := context.WithTimeout(ctx, c.branchTimeout)
	defer cancel()
	fn(branchCtx)
}

func (c *Coordinator) dispatchJobs(ctx context.Context, s Signals, conv ConversationContext) {
	if s.Sentiment != nil {
		c.jobs.Enqueue(ctx, "analytics", "sentiment_analyzed", map[string]any{
			"business_id":     conv.BusinessID,
			"conversation_id": conv.ConversationID,
			"message_id":      conv.MessageID,
			"label":           s.Sentiment.Label,
			"confidence":      s.Sentiment.Confidence,
		}, queue.EnqueueOptions{})
	}
	if s.Language != nil {
		c.jobs.Enqueue(ctx, "analytics", "language_detected", map[string]any{
			"business_id":     conv.BusinessID,
			"conversation_id": conv.ConversationID,
			"message_id":      conv.MessageID,
			"language":        *s.Language,
		}, queue.EnqueueOptions{})
	}
}
