package model

import (
	"context"
	"time"
)

// Question is a single multiple-choice question. Questions are immutable
// once added to an exam; there is no edit path.
type Question struct {
	ID                 string   `json:"id"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correct_option_index"`
}

// ExamConfig holds per-exam quiz parameters.
type ExamConfig struct {
	DurationMinutes  int  `json:"duration_minutes"`
	MaxAttempts      int  `json:"max_attempts"`
	ShowAnswersAfter bool `json:"show_answers_after"`
}

// Exam is an authored exam: metadata, an ordered question list, and its
// configuration. Question order is display and scoring order.
type Exam struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	Config    ExamConfig `json:"config"`
	CreatedAt time.Time  `json:"created_at"`
	Active    bool       `json:"active"`
}

// Unanswered is the sentinel stored in an answer slot the student never
// filled in. It never matches a correct option index.
const Unanswered = -1

// StudentSubmission is one graded attempt. Immutable once created.
// Answers holds one selected option index per question, in question order.
type StudentSubmission struct {
	ID             string    `json:"id"`
	ExamID         string    `json:"exam_id"`
	StudentName    string    `json:"student_name"`
	StudentClass   string    `json:"student_class"`
	Answers        []int     `json:"answers"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// Role is a chat message role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is a single entry in the assistant transcript. Messages live
// only in the client's conversation view and are never persisted.
type ChatMessage struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Text    string `json:"text"`
	Image   string `json:"image,omitempty"`
	IsError bool   `json:"is_error,omitempty"`
}

// AuthSession is a logged-in teacher session token.
type AuthSession struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type teacherCtxKey struct{}

// ContextWithTeacher marks the request context as an authenticated teacher.
func ContextWithTeacher(ctx context.Context) context.Context {
	return context.WithValue(ctx, teacherCtxKey{}, true)
}

// TeacherFromContext reports whether the context carries a teacher login.
func TeacherFromContext(ctx context.Context) bool {
	ok, _ := ctx.Value(teacherCtxKey{}).(bool)
	return ok
}
