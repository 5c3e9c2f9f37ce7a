// Package session runs student exam attempts: join checks, the countdown,
// answer collection, and the single graded submission each attempt ends in.
package session

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizmaster/internal/model"
)

// Status is the lifecycle state of an attempt. A session only exists once a
// student has joined; before that the student is on the entry form.
type Status string

const (
	// StatusActive means the student is answering and the countdown runs.
	StatusActive Status = "active"
	// StatusCompleted means the attempt was submitted (by the student or by
	// the countdown) and its submission is recorded.
	StatusCompleted Status = "completed"
)

// Store is the persistence surface the engine needs.
type Store interface {
	GetExamByCode(code string) (*model.Exam, error)
	CountAttempts(examID, studentName, studentClass string) (int, error)
	SaveSubmission(sub model.StudentSubmission) error
}

// Session is one student's in-flight or just-finished attempt.
type Session struct {
	ID           string
	Exam         model.Exam
	StudentName  string
	StudentClass string
	StartedAt    time.Time
	Deadline     time.Time

	mu         sync.Mutex
	status     Status
	answers    []int
	timer      *time.Timer
	submission *model.StudentSubmission
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Answers returns a copy of the current answer vector.
func (s *Session) Answers() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.answers...)
}

// Submission returns the recorded submission, or nil while the attempt is
// still active.
func (s *Session) Submission() *model.StudentSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submission
}

// TimeLeft returns the whole seconds remaining on the countdown.
func (s *Session) TimeLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusActive {
		return 0
	}
	left := time.Until(s.Deadline)
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

// completedRetention is how long a finished session stays resolvable, so the
// student can still load the result screen before the record is dropped.
const completedRetention = time.Hour

// Manager tracks live sessions and owns their countdown timers.
type Manager struct {
	store     Store
	retention time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager over the given store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:     store,
		retention: completedRetention,
		sessions:  make(map[string]*Session),
	}
}

// Join validates the entry form, resolves the exam, enforces the attempt
// limit, and starts a new attempt with a running countdown.
func (m *Manager) Join(code, studentName, studentClass string) (*Session, error) {
	code = strings.TrimSpace(code)
	if code == "" || strings.TrimSpace(studentName) == "" || strings.TrimSpace(studentClass) == "" {
		return nil, fmt.Errorf("exam code, name, and class are required: %w", model.ErrValidation)
	}

	exam, err := m.store.GetExamByCode(code)
	if err != nil {
		return nil, fmt.Errorf("look up exam code: %w", err)
	}
	if exam == nil {
		return nil, fmt.Errorf("no active exam with code %s: %w", code, model.ErrNotFound)
	}

	attempts, err := m.store.CountAttempts(exam.ID, studentName, studentClass)
	if err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}
	if attempts >= exam.Config.MaxAttempts {
		return nil, &model.AttemptLimitError{Max: exam.Config.MaxAttempts}
	}

	duration := time.Duration(exam.Config.DurationMinutes) * time.Minute
	return m.start(*exam, studentName, studentClass, duration), nil
}

// start registers a new active session and arms its auto-submit timer.
func (m *Manager) start(exam model.Exam, studentName, studentClass string, duration time.Duration) *Session {
	now := time.Now()
	sess := &Session{
		ID:           uuid.NewString(),
		Exam:         exam,
		StudentName:  studentName,
		StudentClass: studentClass,
		StartedAt:    now,
		Deadline:     now.Add(duration),
		status:       StatusActive,
		answers:      make([]int, len(exam.Questions)),
	}
	for i := range sess.answers {
		sess.answers[i] = model.Unanswered
	}

	// Arm the countdown under the session lock: the callback takes the same
	// lock in submit, so it cannot observe the timer field unassigned even
	// when the duration is zero and it fires immediately.
	sess.mu.Lock()
	sess.timer = time.AfterFunc(duration, func() {
		if _, err := m.submit(sess); err != nil {
			slog.Error("auto-submit failed", "session_id", sess.ID, "error", err)
		}
	})
	sess.mu.Unlock()

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	slog.Info("exam joined",
		"session_id", sess.ID,
		"exam_id", exam.ID,
		"student", studentName,
		"class", studentClass,
		"duration", duration,
	)
	return sess
}

// Get returns a live session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown session %s: %w", id, model.ErrNotFound)
	}
	return sess, nil
}

// Answer records the selected option for a question. The last selection for
// a question wins. Indices must be in bounds; the caller constructs them
// from the exam it was handed.
func (m *Manager) Answer(id string, questionIndex, optionIndex int) error {
	sess, err := m.Get(id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.status != StatusActive {
		return fmt.Errorf("session %s is not active: %w", id, model.ErrValidation)
	}
	if questionIndex < 0 || questionIndex >= len(sess.answers) {
		return fmt.Errorf("question index %d out of range: %w", questionIndex, model.ErrValidation)
	}
	if optionIndex < 0 || optionIndex >= len(sess.Exam.Questions[questionIndex].Options) {
		return fmt.Errorf("option index %d out of range: %w", optionIndex, model.ErrValidation)
	}
	sess.answers[questionIndex] = optionIndex
	return nil
}

// Submit grades and persists the attempt. The first transition out of
// Active wins: a manual submit racing the countdown produces exactly one
// submission, and repeat calls return the recorded one.
func (m *Manager) Submit(id string) (*model.StudentSubmission, error) {
	sess, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return m.submit(sess)
}

func (m *Manager) submit(sess *Session) (*model.StudentSubmission, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.status == StatusCompleted {
		return sess.submission, nil
	}

	// The countdown must never fire again once we leave Active.
	if sess.timer != nil {
		sess.timer.Stop()
	}

	score := 0
	for i, q := range sess.Exam.Questions {
		if sess.answers[i] == q.CorrectOptionIndex {
			score++
		}
	}

	sub := model.StudentSubmission{
		ID:             uuid.NewString(),
		ExamID:         sess.Exam.ID,
		StudentName:    sess.StudentName,
		StudentClass:   sess.StudentClass,
		Answers:        append([]int(nil), sess.answers...),
		Score:          score,
		TotalQuestions: len(sess.Exam.Questions),
		SubmittedAt:    time.Now(),
	}
	if err := m.store.SaveSubmission(sub); err != nil {
		return nil, fmt.Errorf("persist submission: %w: %w", model.ErrStorage, err)
	}

	sess.status = StatusCompleted
	sess.submission = &sub

	// Completed sessions are kept only long enough for the result screen;
	// the delete is a no-op when Reset already removed the entry.
	time.AfterFunc(m.retention, func() {
		m.mu.Lock()
		delete(m.sessions, sess.ID)
		m.mu.Unlock()
	})

	slog.Info("exam submitted",
		"session_id", sess.ID,
		"exam_id", sess.Exam.ID,
		"student", sess.StudentName,
		"score", score,
		"total", sub.TotalQuestions,
	)
	return &sub, nil
}

// Reset discards a completed session so the student returns to the entry
// form. Active sessions cannot be reset.
func (m *Manager) Reset(id string) error {
	sess, err := m.Get(id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if sess.status != StatusCompleted {
		sess.mu.Unlock()
		return fmt.Errorf("session %s is still active: %w", id, model.ErrValidation)
	}
	sess.mu.Unlock()

	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}
