package dialect

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tariqmb/rudud/internal/queue"
)

const (
	// baseConfidence anchors keyword scores; the score contributes on top,
	// capped well below certainty because keyword evidence is circumstantial.
	baseConfidence = 0.6
	scoreFactor    = 0.35
	keywordCap     = 0.92

	// geoOverrideThreshold is the keyword confidence below which the
	// requester's country wins outright.
	geoOverrideThreshold = 0.7
	geoOverrideBonus     = 0.2
	geoOverrideCap       = 0.85
	geoAgreementBonus    = 0.15
	geoAgreementCap      = 0.95
)

// Classifier detects the Arabic dialect of a message using weighted keyword
// scoring with a geo boost. It never fails: any internal panic degrades to
// the MSA default.
type Classifier struct {
	analytics *queue.BestEffort
	log       *logrus.Logger
}

// NewClassifier creates a classifier. The analytics sink may be nil when no
// queue is configured.
func NewClassifier(analytics *queue.BestEffort, log *logrus.Logger) *Classifier {
	if analytics == nil {
		analytics = queue.NewBestEffort(queue.Nop{}, log)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Classifier{analytics: analytics, log: log}
}

// Detect classifies text and returns a Result with confidence in [0, 1].
// An analytics event, including the elapsed latency, is emitted after every
// call on a best-effort basis; its failure never affects the result.
func (c *Classifier) Detect(ctx context.Context, text string, opts DetectOptions) (res Result) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			c.log.WithField("panic", rec).Error("dialect classification panicked, using msa default")
			res = Result{Dialect: DialectMSA, Confidence: 0.5, Method: MethodKeyword}
		}
		c.emit(ctx, res, time.Since(start), opts)
	}()

	return c.classify(text, opts)
}

func (c *Classifier) classify(text string, opts DetectOptions) Result {
	// No Arabic script at all means the message is not in any Arabic
	// dialect; short-circuit deterministically.
	if !containsArabic(text) {
		return Result{Dialect: DialectEnglish, Confidence: 0.9, Method: MethodKeyword}
	}

	best := Result{Dialect: DialectMSA, Confidence: 0.5, Method: MethodKeyword}
	bestScore := 0.0

	// Longer messages carry more signal, up to a point.
	lengthFactor := float64(len(strings.Fields(text))) / 10
	if lengthFactor > 1.5 {
		lengthFactor = 1.5
	}

	for _, lex := range lexicons {
		matches := 0
		for _, w := range lex.Words {
			if strings.Contains(text, w) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}

		score := float64(matches) / float64(len(lex.Words)) * lex.Weight * lengthFactor
		if score > bestScore {
			bestScore = score
			conf := baseConfidence + score*scoreFactor
			if conf > keywordCap {
				conf = keywordCap
			}
			best = Result{Dialect: lex.Dialect, Confidence: conf, Method: MethodKeyword}
		}
	}

	geo, known := geoDialects[strings.ToUpper(opts.Country)]
	if !known {
		return best
	}

	// Weak keyword evidence defers to geography entirely; strong evidence
	// is only boosted when geography agrees.
	if best.Confidence < geoOverrideThreshold {
		conf := best.Confidence + geoOverrideBonus
		if conf > geoOverrideCap {
			conf = geoOverrideCap
		}
		return Result{Dialect: geo, Confidence: conf, Method: MethodHybrid}
	}
	if best.Dialect == geo {
		best.Confidence += geoAgreementBonus
		if best.Confidence > geoAgreementCap {
			best.Confidence = geoAgreementCap
		}
		best.Method = MethodHybrid
	}
	return best
}

// emit publishes the classification outcome for async analytics.
func (c *Classifier) emit(ctx context.Context, res Result, elapsed time.Duration, opts DetectOptions) {
	c.analytics.Enqueue(ctx, "analytics", "dialect_detected", map[string]any{
		"dialect":         string(res.Dialect),
		"confidence":      res.Confidence,
		"method":          string(res.Method),
		"latency_ms":      elapsed.Milliseconds(),
		"country":         opts.Country,
		"conversation_id": opts.ConversationID,
	}, queue.EnqueueOptions{})
}

// containsArabic reports whether any rune falls in the Arabic Unicode block.
func containsArabic(text string) bool {
	for _, r := range text {
		if r >= 0x0600 && r <= 0x06FF {
			return true
		}
	}
	return false
}
