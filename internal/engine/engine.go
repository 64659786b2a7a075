package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tariqmb/rudud/internal/business"
	"github.com/tariqmb/rudud/internal/dialect"
	"github.com/tariqmb/rudud/internal/knowledge"
	"github.com/tariqmb/rudud/internal/llm"
	"github.com/tariqmb/rudud/internal/prompt"
	"github.com/tariqmb/rudud/internal/signals"
)

// apologyMessage is the fixed reply for any pipeline failure. Clients key off
// the English "trouble processing" marker to detect the degraded path.
const apologyMessage = "عذراً، نواجه مشكلة في معالجة رسالتك الآن. يرجى المحاولة مرة أخرى بعد قليل. " +
	"(Sorry, we're having trouble processing your message right now. Please try again shortly.)"

// Request is one inbound customer message with its orchestration knobs.
type Request struct {
	BusinessID     string
	Message        string
	History        []llm.Message
	ConversationID string
	MessageID      string
	Country        string

	// Extraction and retrieval are on by default; the flags opt out per
	// request so the zero value of Request runs the full pipeline.
	DisableVectorSearch bool
	DisableIntent       bool
	DisableSentiment    bool
	DisableLanguage     bool

	// Provider, when set, is tried first; Model, MaxTokens and Temperature
	// pass through to the completion call.
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Response is what the engine hands back. It is always populated: on any
// internal failure Text carries the apology and Fallback is true.
type Response struct {
	Text       string          `json:"text"`
	Dialect    dialect.Result  `json:"dialect"`
	Provider   string          `json:"provider,omitempty"`
	TokensUsed int             `json:"tokens_used,omitempty"`
	Fallback   bool            `json:"fallback"`
	Signals    signals.Signals `json:"-"`
}

// Engine orchestrates the full response pipeline: business lookup, signal
// extraction and knowledge retrieval in parallel, prompt composition, then a
// routed completion. It is the single failure boundary of the pipeline:
// GenerateResponse never returns an error and never panics.
type Engine struct {
	businesses  business.Repository
	coordinator *signals.Coordinator
	retriever   *knowledge.Retriever
	router      *llm.Router
	classifier  *dialect.Classifier
	log         *logrus.Logger
}

// New wires an engine from its collaborators.
func New(businesses business.Repository, coordinator *signals.Coordinator, retriever *knowledge.Retriever,
	router *llm.Router, classifier *dialect.Classifier, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		businesses:  businesses,
		coordinator: coordinator,
		retriever:   retriever,
		router:      router,
		classifier:  classifier,
		log:         log,
	}
}

// GenerateResponse produces a reply for req. Whatever goes wrong inside, the
// caller gets a well-formed Response with the apology text.
func (e *Engine) GenerateResponse(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.WithFields(logrus.Fields{
				"business_id": req.BusinessID,
				"panic":       rec,
			}).Error("response pipeline panicked")
			resp = apologyResponse(resp.Dialect)
		}
	}()

	out, err := e.generate(ctx, req)
	if err != nil {
		e.log.WithFields(logrus.Fields{
			"business_id":     req.BusinessID,
			"conversation_id": req.ConversationID,
			"error":           err.Error(),
		}).Error("response pipeline failed")
		return apologyResponse(out.Dialect)
	}
	return out
}

// DetectDialect exposes standalone dialect classification without running the
// rest of the pipeline.
func (e *Engine) DetectDialect(ctx context.Context, text, country string) dialect.Result {
	return e.classifier.Detect(ctx, text, dialect.DetectOptions{Country: country})
}

func (e *Engine) generate(ctx context.Context, req Request) (Response, error) {
	biz, err := e.businesses.FindByID(ctx, req.BusinessID)
	if err != nil {
		return Response{}, fmt.Errorf("loading business %s: %w", req.BusinessID, err)
	}

	// Signal extraction and knowledge retrieval are independent; run both
	// while the request waits.
	var (
		wg      sync.WaitGroup
		sig     signals.Signals
		kbBlock string
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		sig = e.coordinator.Run(ctx, req.Message, signals.Options{
			DetectIntent:     !req.DisableIntent,
			AnalyzeSentiment: !req.DisableSentiment,
			DetectLanguage:   !req.DisableLanguage,
		}, signals.ConversationContext{
			BusinessID:     req.BusinessID,
			ConversationID: req.ConversationID,
			MessageID:      req.MessageID,
			Country:        req.Country,
		})
	}()
	if !req.DisableVectorSearch {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kbBlock = e.retriever.Retrieve(ctx, biz.ID, req.Message, biz.KnowledgeEntries)
		}()
	}
	wg.Wait()

	systemPrompt := prompt.Compose(prompt.Input{
		Business:  biz,
		Signals:   sig,
		Knowledge: kbBlock,
	})

	result, err := e.router.GenerateChatResponse(ctx, systemPrompt, req.Message, req.History, llm.ChatOptions{
		Provider:    req.Provider,
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return Response{Dialect: sig.Dialect}, fmt.Errorf("routed completion: %w", err)
	}

	return Response{
		Text:       result.Text,
		Dialect:    sig.Dialect,
		Provider:   result.Provider,
		TokensUsed: result.TokensUsed,
		Signals:    sig,
	}, nil
}

func apologyResponse(d dialect.Result) Response {
	if d.Dialect == "" {
		d = dialect.Result{Dialect: dialect.DialectMSA, Confidence: 0.5, Method: dialect.MethodKeyword}
	}
	return Response{Text: apologyMessage, Dialect: d, Fallback: true}
}
