package store

import (
	"fmt"
	"strings"

	"quizmaster/internal/model"
)

// ExportSubmissions builds export-ready results for one exam, numbering each
// student's attempts in submission order.
func (s *Store) ExportSubmissions(examID string) ([]model.SubmissionResult, error) {
	subs, err := s.ListSubmissions(examID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	// Attempt numbering matches the attempt-limit rule: same student when
	// name and class compare equal case-insensitively.
	attemptCount := make(map[string]int)

	var results []model.SubmissionResult
	for _, sub := range subs {
		key := strings.ToLower(sub.StudentName) + "\x00" + strings.ToLower(sub.StudentClass)
		attemptCount[key]++

		percent := 0.0
		if sub.TotalQuestions > 0 {
			percent = float64(sub.Score) / float64(sub.TotalQuestions) * 100
		}
		results = append(results, model.SubmissionResult{
			StudentName:   sub.StudentName,
			StudentClass:  sub.StudentClass,
			AttemptNumber: attemptCount[key],
			Answers:       sub.Answers,
			Score:         sub.Score,
			Total:         sub.TotalQuestions,
			Percent:       percent,
			SubmittedAt:   sub.SubmittedAt,
		})
	}

	return results, nil
}
