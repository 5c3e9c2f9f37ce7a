package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	appI18n "quizmaster/internal/i18n"
	"quizmaster/internal/session"
	"quizmaster/internal/store"
)

// ChatRelay forwards one chat message to the generative API.
type ChatRelay interface {
	Chat(ctx context.Context, message, imageBase64 string) (string, error)
}

// Config holds handler settings resolved at startup.
type Config struct {
	TeacherUser         string
	TeacherPasswordHash []byte
	SecureCookies       bool
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	sessions *session.Manager
	relay    ChatRelay
	config   Config
}

// New creates a new Handler.
func New(s *store.Store, sessions *session.Manager, relay ChatRelay, cfg Config) *Handler {
	return &Handler{store: s, sessions: sessions, relay: relay, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/login", h.handleLogin)
	r.Post("/api/logout", h.handleLogout)

	// Student surface: joining needs only the exam code.
	r.Post("/api/join", h.handleJoin)
	r.Get("/api/sessions/{sessionID}", h.handleSessionState)
	r.Post("/api/sessions/{sessionID}/answers", h.handleAnswer)
	r.Post("/api/sessions/{sessionID}/submit", h.handleSubmit)
	r.Post("/api/sessions/{sessionID}/reset", h.handleReset)

	r.Post("/api/chat", h.handleChat)

	// Teacher surface.
	r.Group(func(pr chi.Router) {
		pr.Use(h.requireAuth)
		pr.Get("/api/exams", h.handleListExams)
		pr.Post("/api/exams", h.handleCreateExam)
		pr.Get("/api/exams/{examID}", h.handleGetExam)
		pr.Delete("/api/exams/{examID}", h.handleDeleteExam)
		pr.Get("/api/exams/{examID}/stats", h.handleExamStats)
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError writes a localized error message for the given message ID.
func respondError(w http.ResponseWriter, r *http.Request, status int, msgID string) {
	respondJSON(w, status, errorResponse{Error: appI18n.T(r.Context(), msgID)})
}

func respondErrorData(w http.ResponseWriter, r *http.Request, status int, msgID string, data map[string]any) {
	respondJSON(w, status, errorResponse{Error: appI18n.Td(r.Context(), msgID, data)})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, r, http.StatusBadRequest, "MissingFields")
		return false
	}
	return true
}
