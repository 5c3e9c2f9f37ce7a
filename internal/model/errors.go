package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure taxonomy. Callers classify with errors.Is
// after any amount of fmt.Errorf wrapping.
var (
	// ErrValidation means a required input was missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means no record matched a code or identifier.
	ErrNotFound = errors.New("not found")
	// ErrAttemptLimit means the student exhausted the attempt quota.
	ErrAttemptLimit = errors.New("attempt limit reached")
	// ErrStorage means a persistence write or serialization failed.
	ErrStorage = errors.New("storage failure")
	// ErrRemoteService means the AI relay could not complete a call.
	// The underlying cause is logged but never exposed to the caller.
	ErrRemoteService = errors.New("failed to communicate with AI")
)

// AttemptLimitError carries the configured quota so callers can report it.
type AttemptLimitError struct {
	Max int
}

func (e *AttemptLimitError) Error() string {
	return fmt.Sprintf("maximum attempts (%d) reached", e.Max)
}

func (e *AttemptLimitError) Unwrap() error { return ErrAttemptLimit }
