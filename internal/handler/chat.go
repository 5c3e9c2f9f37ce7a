package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"quizmaster/internal/model"
)

type chatRequest struct {
	Message string `json:"message"`
	Image   string `json:"image,omitempty"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" && req.Image == "" {
		respondError(w, r, http.StatusBadRequest, "MissingFields")
		return
	}

	reply, err := h.relay.Chat(r.Context(), req.Message, req.Image)
	if err != nil {
		if errors.Is(err, model.ErrRemoteService) {
			respondError(w, r, http.StatusBadGateway, "ChatFailed")
			return
		}
		slog.Error("chat relay failed", "error", err)
		respondError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}

	respondJSON(w, http.StatusOK, chatResponse{Reply: reply})
}
