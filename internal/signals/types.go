package signals

import "github.com/tariqmb/rudud/internal/dialect"

// Sentiment is an optional emotional read of a message.
type Sentiment struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Signals is everything extracted from one inbound message. Nil fields mean
// that branch was disabled or failed; the dialect is always present because
// classification degrades internally instead of failing.
type Signals struct {
	Intent    *string
	Sentiment *Sentiment
	Language  *string
	Dialect   dialect.Result
}

// Options toggle individual extraction branches.
type Options struct {
	DetectIntent     bool
	AnalyzeSentiment bool
	DetectLanguage   bool
}

// ConversationContext carries request identity into extraction branches and
// their background analytics jobs.
type ConversationContext struct {
	BusinessID     string
	ConversationID string
	MessageID      string
	Country        string
}
