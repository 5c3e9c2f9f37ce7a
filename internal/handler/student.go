package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quizmaster/internal/model"
	"quizmaster/internal/session"
)

type joinRequest struct {
	Code         string `json:"code"`
	StudentName  string `json:"student_name"`
	StudentClass string `json:"student_class"`
}

// studentQuestion is a question as shown to a student: no correct index.
type studentQuestion struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type studentExam struct {
	ID        string            `json:"id"`
	Code      string            `json:"code"`
	Title     string            `json:"title"`
	Questions []studentQuestion `json:"questions"`
	Config    model.ExamConfig  `json:"config"`
}

type sessionResponse struct {
	SessionID    string            `json:"session_id"`
	Status       session.Status    `json:"status"`
	Exam         studentExam       `json:"exam"`
	StudentName  string            `json:"student_name"`
	StudentClass string            `json:"student_class"`
	Answers      []int             `json:"answers"`
	TimeLeft     int               `json:"time_left_seconds"`
	Result       *submissionResult `json:"result,omitempty"`
}

type submissionResult struct {
	Score          int   `json:"score"`
	TotalQuestions int   `json:"total_questions"`
	CorrectAnswers []int `json:"correct_answers,omitempty"`
}

func toStudentExam(e model.Exam) studentExam {
	qs := make([]studentQuestion, len(e.Questions))
	for i, q := range e.Questions {
		qs[i] = studentQuestion{ID: q.ID, Text: q.Text, Options: q.Options}
	}
	return studentExam{ID: e.ID, Code: e.Code, Title: e.Title, Questions: qs, Config: e.Config}
}

func sessionToResponse(sess *session.Session) sessionResponse {
	resp := sessionResponse{
		SessionID:    sess.ID,
		Status:       sess.Status(),
		Exam:         toStudentExam(sess.Exam),
		StudentName:  sess.StudentName,
		StudentClass: sess.StudentClass,
		Answers:      sess.Answers(),
		TimeLeft:     sess.TimeLeft(),
	}
	if sub := sess.Submission(); sub != nil {
		resp.Result = &submissionResult{
			Score:          sub.Score,
			TotalQuestions: sub.TotalQuestions,
		}
		if sess.Exam.Config.ShowAnswersAfter {
			correct := make([]int, len(sess.Exam.Questions))
			for i, q := range sess.Exam.Questions {
				correct[i] = q.CorrectOptionIndex
			}
			resp.Result.CorrectAnswers = correct
		}
	}
	return resp
}

func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sess, err := h.sessions.Join(req.Code, req.StudentName, req.StudentClass)
	if err != nil {
		var limitErr *model.AttemptLimitError
		switch {
		case errors.As(err, &limitErr):
			respondErrorData(w, r, http.StatusForbidden, "AttemptLimitReached",
				map[string]any{"Max": limitErr.Max})
		case errors.Is(err, model.ErrValidation):
			respondError(w, r, http.StatusBadRequest, "MissingFields")
		case errors.Is(err, model.ErrNotFound):
			respondError(w, r, http.StatusNotFound, "InvalidExamCode")
		default:
			slog.Error("join failed", "error", err)
			respondError(w, r, http.StatusInternalServerError, "InternalError")
		}
		return
	}

	respondJSON(w, http.StatusCreated, sessionToResponse(sess))
}

func (h *Handler) handleSessionState(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, r, http.StatusNotFound, "SessionNotFound")
		return
	}
	respondJSON(w, http.StatusOK, sessionToResponse(sess))
}

type answerRequest struct {
	QuestionIndex int `json:"question_index"`
	OptionIndex   int `json:"option_index"`
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "sessionID")
	if err := h.sessions.Answer(id, req.QuestionIndex, req.OptionIndex); err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			respondError(w, r, http.StatusNotFound, "SessionNotFound")
		case errors.Is(err, model.ErrValidation):
			respondError(w, r, http.StatusBadRequest, "MissingFields")
		default:
			slog.Error("record answer failed", "error", err)
			respondError(w, r, http.StatusInternalServerError, "InternalError")
		}
		return
	}

	sess, err := h.sessions.Get(id)
	if err != nil {
		respondError(w, r, http.StatusNotFound, "SessionNotFound")
		return
	}
	respondJSON(w, http.StatusOK, sessionToResponse(sess))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if _, err := h.sessions.Submit(id); err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			respondError(w, r, http.StatusNotFound, "SessionNotFound")
		default:
			slog.Error("submit failed", "error", err)
			respondError(w, r, http.StatusInternalServerError, "InternalError")
		}
		return
	}

	sess, err := h.sessions.Get(id)
	if err != nil {
		respondError(w, r, http.StatusNotFound, "SessionNotFound")
		return
	}
	respondJSON(w, http.StatusOK, sessionToResponse(sess))
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Reset(chi.URLParam(r, "sessionID")); err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			respondError(w, r, http.StatusNotFound, "SessionNotFound")
		case errors.Is(err, model.ErrValidation):
			respondError(w, r, http.StatusBadRequest, "MissingFields")
		default:
			slog.Error("reset failed", "error", err)
			respondError(w, r, http.StatusInternalServerError, "InternalError")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
