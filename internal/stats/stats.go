// Package stats derives summary metrics from a submission collection. It is
// a pure function of its inputs; nothing here reads or writes storage.
package stats

import (
	"time"

	"quizmaster/internal/model"
)

// Row is one student's line in the results table.
type Row struct {
	StudentName  string    `json:"student_name"`
	StudentClass string    `json:"student_class"`
	Score        int       `json:"score"`
	Total        int       `json:"total"`
	Percent      float64   `json:"percent"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// Summary holds the aggregate metrics for one exam's submissions.
type Summary struct {
	SubmissionCount int     `json:"submission_count"`
	MeanScore       float64 `json:"mean_score"`
	MeanPercent     float64 `json:"mean_percent"`
	Rows            []Row   `json:"rows"`
}

// Summarize computes the submission count, mean raw score, mean percentage,
// and per-student rows. Means are 0 when there are no submissions, and
// percentages are 0 when a submission recorded zero questions, so orphaned
// or degenerate records never fault the report.
func Summarize(subs []model.StudentSubmission) Summary {
	summary := Summary{SubmissionCount: len(subs)}
	if len(subs) == 0 {
		return summary
	}

	scoreSum := 0
	percentSum := 0.0
	for _, sub := range subs {
		percent := 0.0
		if sub.TotalQuestions > 0 {
			percent = float64(sub.Score) / float64(sub.TotalQuestions) * 100
		}
		scoreSum += sub.Score
		percentSum += percent
		summary.Rows = append(summary.Rows, Row{
			StudentName:  sub.StudentName,
			StudentClass: sub.StudentClass,
			Score:        sub.Score,
			Total:        sub.TotalQuestions,
			Percent:      percent,
			SubmittedAt:  sub.SubmittedAt,
		})
	}

	summary.MeanScore = float64(scoreSum) / float64(len(subs))
	summary.MeanPercent = percentSum / float64(len(subs))
	return summary
}
