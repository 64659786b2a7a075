package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tariqmb/rudud/internal/llm"
)

// IntentDetector classifies what the user wants from a message.
type IntentDetector interface {
	DetectIntent(ctx context.Context, message string) (string, error)
}

// SentimentAnalyzer scores the emotional tone of a message.
type SentimentAnalyzer interface {
	AnalyzeSentiment(ctx context.Context, message string) (Sentiment, error)
}

// LanguageDetector identifies the message language.
type LanguageDetector interface {
	DetectLanguage(ctx context.Context, message string) (string, error)
}

// intentLabels is the closed label set the detector may answer with.
var intentLabels = []string{"question", "complaint", "purchase", "greeting", "feedback", "other"}

const intentSystemPrompt = `You classify customer support messages. Respond with JSON only:
{"intent": "<label>"} where <label> is one of: question, complaint, purchase, greeting, feedback, other.`

// LLMIntentDetector asks a completion provider to classify intent, using
// JSON mode for a machine-parseable answer.
type LLMIntentDetector struct {
	provider llm.Provider
	model    string
}

// NewLLMIntentDetector creates an intent detector over the given provider.
func NewLLMIntentDetector(provider llm.Provider, model string) *LLMIntentDetector {
	return &LLMIntentDetector{provider: provider, model: model}
}

func (d *LLMIntentDetector) DetectIntent(ctx context.Context, message string) (string, error) {
	resp, err := d.provider.Complete(ctx, llm.CompletionRequest{
		Model: d.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: intentSystemPrompt},
			{Role: llm.RoleUser, Content: message},
		},
		MaxTokens:   64,
		Temperature: 0,
		JSONMode:    true,
	})
	if err != nil {
		return "", fmt.Errorf("intent completion: %w", err)
	}

	var parsed struct {
		Intent string `json:"intent"`
	}
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		return "", fmt.Errorf("parsing intent response: %w", err)
	}

	label := strings.ToLower(strings.TrimSpace(parsed.Intent))
	for _, known := range intentLabels {
		if label == known {
			return label, nil
		}
	}
	return "other", nil
}

const sentimentSystemPrompt = `You analyze the sentiment of customer support messages. Respond with JSON only:
{"label": "POSITIVE"|"NEUTRAL"|"NEGATIVE", "confidence": <0..1>}.`

// LLMSentimentAnalyzer asks a completion provider to score sentiment.
type LLMSentimentAnalyzer struct {
	provider llm.Provider
	model    string
}

// NewLLMSentimentAnalyzer creates a sentiment analyzer over the given provider.
func NewLLMSentimentAnalyzer(provider llm.Provider, model string) *LLMSentimentAnalyzer {
	return &LLMSentimentAnalyzer{provider: provider, model: model}
}

func (a *LLMSentimentAnalyzer) AnalyzeSentiment(ctx context.Context, message string) (Sentiment, error) {
	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		Model: a.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: sentimentSystemPrompt},
			{Role: llm.RoleUser, Content: message},
		},
		MaxTokens:   64,
		Temperature: 0,
		JSONMode:    true,
	})
	if err != nil {
		return Sentiment{}, fmt.Errorf("sentiment completion: %w", err)
	}

	var s Sentiment
	if err := json.Unmarshal([]byte(resp.Content), &s); err != nil {
		return Sentiment{}, fmt.Errorf("parsing sentiment response: %w", err)
	}
	s.Label = strings.ToUpper(strings.TrimSpace(s.Label))
	if s.Confidence < 0 {
		s.Confidence = 0
	}
	if s.Confidence > 1 {
		s.Confidence = 1
	}
	return s, nil
}

// ScriptLanguageDetector decides the language from the script alone: any
// Arabic-block rune makes the message Arabic. Cheap, deterministic, and
// good enough alongside the dialect classifier.
type ScriptLanguageDetector struct{}

func (ScriptLanguageDetector) DetectLanguage(ctx context.Context, message string) (string, error) {
	for _, r := range message {
		if r >= 0x0600 && r <= 0x06FF {
			return "ar", nil
		}
	}
	return "en", nil
}
