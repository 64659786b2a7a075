package prompt

import (
	"fmt"
	"strings"

	"github.com/tariqmb/rudud/internal/business"
	"github.com/tariqmb/rudud/internal/dialect"
	"github.com/tariqmb/rudud/internal/signals"
)

// dialectInstructions maps each dialect to the register the model should
// answer in. Unlisted dialects fall back to the MSA instruction.
var dialectInstructions = map[dialect.Dialect]string{
	dialect.DialectEgyptian:  "Respond in Egyptian Arabic dialect, using common Egyptian expressions naturally.",
	dialect.DialectSaudi:     "Respond in Saudi Arabic dialect, using common Saudi expressions naturally.",
	dialect.DialectEmirati:   "Respond in Emirati Arabic dialect, using common Emirati expressions naturally.",
	dialect.DialectKuwaiti:   "Respond in Kuwaiti Arabic dialect, using common Kuwaiti expressions naturally.",
	dialect.DialectLevantine: "Respond in Levantine Arabic dialect, using common Levantine expressions naturally.",
	dialect.DialectGulf:      "Respond in Gulf Arabic dialect, using common Gulf expressions naturally.",
	dialect.DialectMaghrebi:  "Respond in Maghrebi Arabic dialect, using common Maghrebi expressions naturally.",
	dialect.DialectMSA:       "Respond in Modern Standard Arabic.",
	dialect.DialectEnglish:   "Respond in English.",
}

// Input is everything the composer folds into a system prompt.
type Input struct {
	Business  *business.Business
	Signals   signals.Signals
	Knowledge string
}

// Compose builds the system prompt deterministically: the same input always
// produces the same prompt, so prompts are reproducible from logged inputs.
func Compose(in Input) string {
	var b strings.Builder

	biz := in.Business
	fmt.Fprintf(&b, "You are a customer support assistant for %s", biz.Name)
	if biz.Industry != "" {
		fmt.Fprintf(&b, ", a business in the %s industry", biz.Industry)
	}
	b.WriteString(".\n")

	if biz.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s.\n", biz.Tone)
	}
	if biz.Language != "" {
		fmt.Fprintf(&b, "Primary language: %s.\n", biz.Language)
	}

	instruction, ok := dialectInstructions[in.Signals.Dialect.Dialect]
	if !ok {
		instruction = dialectInstructions[dialect.DialectMSA]
	}
	b.WriteString(instruction)
	b.WriteString("\n")

	if in.Signals.Intent != nil {
		fmt.Fprintf(&b, "Intent: %s\n", *in.Signals.Intent)
	}
	if in.Signals.Sentiment != nil {
		fmt.Fprintf(&b, "Sentiment: %s (%.2f)\n", in.Signals.Sentiment.Label, in.Signals.Sentiment.Confidence)
	}
	if in.Signals.Language != nil {
		fmt.Fprintf(&b, "Language: %s\n", *in.Signals.Language)
	}

	if in.Signals.Intent != nil && *in.Signals.Intent == "complaint" {
		b.WriteString("The customer has a complaint. Acknowledge the issue before anything else and offer a concrete next step.\n")
	}
	if in.Signals.Sentiment != nil && in.Signals.Sentiment.Label == "NEGATIVE" {
		b.WriteString("The customer is upset. Apologize sincerely and keep a calm, reassuring tone.\n")
	}

	if in.Knowledge != "" {
		b.WriteString("\n")
		b.WriteString(in.Knowledge)
		b.WriteString("\nAnswer using the knowledge above when it is relevant. If it does not cover the question, say so honestly instead of inventing details.\n")
	}

	b.WriteString("\nKeep responses concise and helpful. Never invent order numbers, prices, or policies.")
	return b.String()
}
