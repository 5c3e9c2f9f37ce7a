// Package authoring builds Exam aggregates: it validates questions as they
// are added, and on finalize assigns the identifiers and the short join code
// students use to enter.
package authoring

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizmaster/internal/model"
)

const (
	codeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// maxCodeAttempts bounds the uniqueness retry loop. With 36^6 codes a
	// collision streak this long means the store is effectively full.
	maxCodeAttempts = 20
)

// CodeChecker reports whether a join code is already taken by an active
// exam. *store.Store satisfies it.
type CodeChecker interface {
	CodeInUse(code string) (bool, error)
}

// Builder accumulates questions for a new exam in insertion order.
type Builder struct {
	questions []model.Question
}

// NewBuilder returns an empty exam builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddQuestion validates and appends a question. The prompt and every option
// must be non-blank, and the correct index must point into the options.
func (b *Builder) AddQuestion(text string, options []string, correctIndex int) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("question text is required: %w", model.ErrValidation)
	}
	if len(options) == 0 {
		return fmt.Errorf("question needs options: %w", model.ErrValidation)
	}
	for i, opt := range options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("option %d is blank: %w", i+1, model.ErrValidation)
		}
	}
	if correctIndex < 0 || correctIndex >= len(options) {
		return fmt.Errorf("correct option index %d out of range: %w", correctIndex, model.ErrValidation)
	}

	b.questions = append(b.questions, model.Question{
		ID:                 uuid.NewString(),
		Text:               text,
		Options:            append([]string(nil), options...),
		CorrectOptionIndex: correctIndex,
	})
	return nil
}

// Questions returns a copy of the accumulated questions in insertion order.
func (b *Builder) Questions() []model.Question {
	return append([]model.Question(nil), b.questions...)
}

// Finalize assembles the exam: it requires a non-blank title and at least
// one question, generates the id and a join code unused by any active exam,
// and returns the exam ready to save.
func (b *Builder) Finalize(title string, cfg model.ExamConfig, codes CodeChecker) (model.Exam, error) {
	if strings.TrimSpace(title) == "" {
		return model.Exam{}, fmt.Errorf("exam title is required: %w", model.ErrValidation)
	}
	if len(b.questions) == 0 {
		return model.Exam{}, fmt.Errorf("exam needs at least one question: %w", model.ErrValidation)
	}

	code, err := generateCode(codes)
	if err != nil {
		return model.Exam{}, err
	}

	return model.Exam{
		ID:        uuid.NewString(),
		Code:      code,
		Title:     title,
		Questions: b.questions,
		Config:    cfg,
		CreatedAt: time.Now(),
		Active:    true,
	}, nil
}

// generateCode produces a short random join code and retries until it is
// unique among active exams.
func generateCode(codes CodeChecker) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		inUse, err := codes.CodeInUse(code)
		if err != nil {
			return "", fmt.Errorf("check code uniqueness: %w", err)
		}
		if !inUse {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not find a free join code after %d attempts", maxCodeAttempts)
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, codeLength)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}
