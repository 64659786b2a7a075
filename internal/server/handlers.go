package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tariqmb/rudud/internal/business"
	"github.com/tariqmb/rudud/internal/engine"
	"github.com/tariqmb/rudud/internal/llm"
)

type respondRequest struct {
	BusinessID     string        `json:"business_id"`
	Message        string        `json:"message"`
	History        []chatMessage `json:"history"`
	ConversationID string        `json:"conversation_id"`
	Country        string        `json:"country"`

	// All four default to enabled; clients opt out explicitly.
	DisableVectorSearch bool `json:"disable_vector_search"`
	DisableIntent       bool `json:"disable_intent"`
	DisableSentiment    bool `json:"disable_sentiment"`
	DisableLanguage     bool `json:"disable_language"`

	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respondResponse struct {
	engine.Response
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
}

func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.BusinessID == "" || req.Message == "" {
		http.Error(w, "business_id and message are required", http.StatusBadRequest)
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}
	messageID := uuid.NewString()

	history := make([]llm.Message, 0, len(req.History))
	for _, m := range req.History {
		role := llm.Role(m.Role)
		if role != llm.RoleUser && role != llm.RoleAssistant {
			http.Error(w, "history roles must be user or assistant", http.StatusBadRequest)
			return
		}
		history = append(history, llm.Message{Role: role, Content: m.Content})
	}

	resp := s.engine.GenerateResponse(r.Context(), engine.Request{
		BusinessID:          req.BusinessID,
		Message:             req.Message,
		History:             history,
		ConversationID:      req.ConversationID,
		MessageID:           messageID,
		Country:             req.Country,
		DisableVectorSearch: req.DisableVectorSearch,
		DisableIntent:       req.DisableIntent,
		DisableSentiment:    req.DisableSentiment,
		DisableLanguage:     req.DisableLanguage,
		Provider:            req.Provider,
		Model:               req.Model,
		MaxTokens:           req.MaxTokens,
		Temperature:         req.Temperature,
	})

	// The engine never fails; a degraded reply is still HTTP 200.
	writeJSON(w, http.StatusOK, respondResponse{
		Response:       resp,
		ConversationID: req.ConversationID,
		MessageID:      messageID,
	})
}

type dialectRequest struct {
	Text    string `json:"text"`
	Country string `json:"country"`
}

func (s *Server) handleDialect(w http.ResponseWriter, r *http.Request) {
	var req dialectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	res := s.engine.DetectDialect(r.Context(), req.Text, req.Country)
	writeJSON(w, http.StatusOK, res)
}

type providerStatus struct {
	Name         string `json:"name"`
	Available    bool   `json:"available"`
	RequestCount uint64 `json:"request_count"`
	ErrorCount   uint64 `json:"error_count"`
	LastError    string `json:"last_error,omitempty"`
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	states := s.health.States()
	out := make([]providerStatus, 0, len(states))
	for _, st := range states {
		out = append(out, providerStatus{
			Name:         st.Name,
			Available:    st.Available,
			RequestCount: st.RequestCount,
			ErrorCount:   st.ErrorCount,
			LastError:    st.LastError,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type createBusinessRequest struct {
	Name             string                `json:"name"`
	Tone             string                `json:"tone"`
	Language         string                `json:"language"`
	Industry         string                `json:"industry"`
	KnowledgeEntries []knowledgeEntryInput `json:"knowledge_entries"`
	CustomModels     []string              `json:"custom_models"`
}

type knowledgeEntryInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Server) handleCreateBusiness(w http.ResponseWriter, r *http.Request) {
	var req createBusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	biz := &business.Business{
		Name:               req.Name,
		Tone:               req.Tone,
		Language:           req.Language,
		Industry:           req.Industry,
		ActiveCustomModels: req.CustomModels,
	}
	for _, e := range req.KnowledgeEntries {
		biz.KnowledgeEntries = append(biz.KnowledgeEntries, business.KnowledgeEntry{
			Title:   e.Title,
			Content: e.Content,
		})
	}

	if err := s.businesses.Create(r.Context(), biz); err != nil {
		s.log.WithField("error", err.Error()).Error("creating business failed")
		http.Error(w, "creating business failed", http.StatusInternalServerError)
		return
	}
	s.indexEntries(r, biz.ID, biz.KnowledgeEntries)
	writeJSON(w, http.StatusCreated, map[string]string{"id": biz.ID})
}

func (s *Server) handleGetBusiness(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "businessID")
	biz, err := s.businesses.FindByID(r.Context(), id)
	if errors.Is(err, business.ErrNotFound) {
		http.Error(w, "business not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.WithField("error", err.Error()).Error("loading business failed")
		http.Error(w, "loading business failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, biz)
}

func (s *Server) handleAddKnowledge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "businessID")
	var req knowledgeEntryInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}

	if _, err := s.businesses.FindByID(r.Context(), id); errors.Is(err, business.ErrNotFound) {
		http.Error(w, "business not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, "loading business failed", http.StatusInternalServerError)
		return
	}

	entry := &business.KnowledgeEntry{Title: req.Title, Content: req.Content}
	if err := s.businesses.AddKnowledgeEntry(r.Context(), id, entry); err != nil {
		s.log.WithField("error", err.Error()).Error("adding knowledge entry failed")
		http.Error(w, "adding knowledge entry failed", http.StatusInternalServerError)
		return
	}

	// Cached retrieval blocks for this business are now stale.
	if s.retriever != nil {
		if err := s.retriever.Invalidate(r.Context(), id); err != nil {
			s.log.WithField("error", err.Error()).Warn("knowledge cache invalidation failed")
		}
	}
	s.indexEntries(r, id, []business.KnowledgeEntry{*entry})

	writeJSON(w, http.StatusCreated, map[string]string{"id": entry.ID})
}

// indexEntries pushes new entries into the vector index when one is
// configured. Indexing failures degrade search quality but never fail the
// write.
func (s *Server) indexEntries(r *http.Request, businessID string, entries []business.KnowledgeEntry) {
	if s.indexer == nil || len(entries) == 0 {
		return
	}
	if err := s.indexer.IndexEntries(r.Context(), businessID, entries); err != nil {
		s.log.WithField("error", err.Error()).Warn("vector indexing failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
