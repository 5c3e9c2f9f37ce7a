package model

import "time"

// ExamExport is the top-level JSON structure for exam result export.
type ExamExport struct {
	ExamID      string             `json:"exam_id"`
	Code        string             `json:"code"`
	Title       string             `json:"title"`
	CreatedAt   time.Time          `json:"created_at"`
	Config      ExamConfig         `json:"config"`
	Submissions []SubmissionResult `json:"submissions"`
	Summary     ExportSummary      `json:"summary"`
}

// SubmissionResult holds one student's attempt for export.
type SubmissionResult struct {
	StudentName   string    `json:"student_name"`
	StudentClass  string    `json:"student_class"`
	AttemptNumber int       `json:"attempt_number"`
	Answers       []int     `json:"answers"`
	Score         int       `json:"score"`
	Total         int       `json:"total"`
	Percent       float64   `json:"percent"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// ExportSummary mirrors the statistics screen.
type ExportSummary struct {
	SubmissionCount int     `json:"submission_count"`
	MeanScore       float64 `json:"mean_score"`
	MeanPercent     float64 `json:"mean_percent"`
}
