package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quizmaster/internal/authoring"
	"quizmaster/internal/model"
	"quizmaster/internal/stats"
)

func (h *Handler) handleListExams(w http.ResponseWriter, r *http.Request) {
	exams, err := h.store.ListExams()
	if err != nil {
		// The dashboard still renders when the store is unreadable.
		slog.Error("failed to list exams", "error", err)
		exams = nil
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	respondJSON(w, http.StatusOK, exams)
}

type createQuestion struct {
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
}

type createExamRequest struct {
	Title     string           `json:"title"`
	Questions []createQuestion `json:"questions"`
	Config    model.ExamConfig `json:"config"`
}

func (h *Handler) handleCreateExam(w http.ResponseWriter, r *http.Request) {
	var req createExamRequest
	if !decodeBody(w, r, &req) {
		return
	}

	b := authoring.NewBuilder()
	for _, q := range req.Questions {
		if err := b.AddQuestion(q.Text, q.Options, q.CorrectOptionIndex); err != nil {
			respondError(w, r, http.StatusBadRequest, "ExamValidationFailed")
			return
		}
	}

	exam, err := b.Finalize(req.Title, req.Config, h.store)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			respondError(w, r, http.StatusBadRequest, "ExamValidationFailed")
			return
		}
		slog.Error("failed to finalize exam", "error", err)
		respondError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}

	if err := h.store.SaveExam(exam); err != nil {
		slog.Error("failed to save exam", "error", err)
		respondError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}

	respondJSON(w, http.StatusCreated, exam)
}

func (h *Handler) handleGetExam(w http.ResponseWriter, r *http.Request) {
	exam, err := h.store.GetExamByID(chi.URLParam(r, "examID"))
	if err != nil {
		slog.Error("failed to get exam", "error", err)
		respondError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	if exam == nil {
		respondError(w, r, http.StatusNotFound, "ExamNotFound")
		return
	}
	respondJSON(w, http.StatusOK, exam)
}

func (h *Handler) handleDeleteExam(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteExam(chi.URLParam(r, "examID")); err != nil {
		slog.Error("failed to delete exam", "error", err)
		respondError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleExamStats(w http.ResponseWriter, r *http.Request) {
	examID := chi.URLParam(r, "examID")
	exam, err := h.store.GetExamByID(examID)
	if err != nil {
		slog.Error("failed to get exam", "error", err)
		respondError(w, r, http.StatusInternalServerError, "InternalError")
		return
	}
	if exam == nil {
		respondError(w, r, http.StatusNotFound, "ExamNotFound")
		return
	}

	subs, err := h.store.ListSubmissions(examID)
	if err != nil {
		// Degrade to an empty result set rather than hiding the exam.
		slog.Error("failed to list submissions", "error", err)
		subs = nil
	}

	respondJSON(w, http.StatusOK, stats.Summarize(subs))
}
