package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"quizmaster/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exams (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		title TEXT NOT NULL,
		questions TEXT NOT NULL DEFAULT '[]',
		duration_minutes INTEGER NOT NULL DEFAULT 30,
		max_attempts INTEGER NOT NULL DEFAULT 1,
		show_answers INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		exam_id TEXT NOT NULL,
		student_name TEXT NOT NULL,
		student_class TEXT NOT NULL,
		answers TEXT NOT NULL DEFAULT '[]',
		score INTEGER NOT NULL DEFAULT 0,
		total_questions INTEGER NOT NULL DEFAULT 0,
		submitted_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_exam ON submissions(exam_id);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveExam inserts the exam or replaces the stored record with the same id.
// The question list is written wholesale with the rest of the record.
func (s *Store) SaveExam(e model.Exam) error {
	questions, err := json.Marshal(e.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO exams (id, code, title, questions, duration_minutes, max_attempts, show_answers, created_at, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   code = excluded.code,
		   title = excluded.title,
		   questions = excluded.questions,
		   duration_minutes = excluded.duration_minutes,
		   max_attempts = excluded.max_attempts,
		   show_answers = excluded.show_answers,
		   created_at = excluded.created_at,
		   active = excluded.active`,
		e.ID, e.Code, e.Title, string(questions),
		e.Config.DurationMinutes, e.Config.MaxAttempts, e.Config.ShowAnswersAfter,
		e.CreatedAt, e.Active,
	)
	if err != nil {
		return fmt.Errorf("save exam %s: %w", e.ID, err)
	}
	return nil
}

const examColumns = `id, code, title, questions, duration_minutes, max_attempts, show_answers, created_at, active`

func scanExam(row interface{ Scan(...any) error }) (model.Exam, error) {
	var e model.Exam
	var questions string
	err := row.Scan(&e.ID, &e.Code, &e.Title, &questions,
		&e.Config.DurationMinutes, &e.Config.MaxAttempts, &e.Config.ShowAnswersAfter,
		&e.CreatedAt, &e.Active)
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal([]byte(questions), &e.Questions); err != nil {
		return e, fmt.Errorf("decode questions for exam %s: %w", e.ID, err)
	}
	return e, nil
}

// ListExams returns all exams in creation order. Rows whose question
// document cannot be decoded are skipped; a damaged store reads as empty
// rather than failing the caller.
func (s *Store) ListExams() ([]model.Exam, error) {
	rows, err := s.db.Query(`SELECT ` + examColumns + ` FROM exams ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var exams []model.Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			slog.Warn("skipping unreadable exam row", "error", err)
			continue
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// GetExamByCode returns the active exam with the given join code, or nil if
// no active exam matches. An unreadable row reads as absent, same as the
// list path.
func (s *Store) GetExamByCode(code string) (*model.Exam, error) {
	row := s.db.QueryRow(`SELECT `+examColumns+` FROM exams WHERE code = ? AND active = 1`, code)
	e, err := scanExam(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Warn("skipping unreadable exam row", "code", code, "error", err)
		return nil, nil
	}
	return &e, nil
}

// GetExamByID returns an exam by id, or nil if absent or unreadable.
func (s *Store) GetExamByID(id string) (*model.Exam, error) {
	row := s.db.QueryRow(`SELECT `+examColumns+` FROM exams WHERE id = ?`, id)
	e, err := scanExam(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Warn("skipping unreadable exam row", "id", id, "error", err)
		return nil, nil
	}
	return &e, nil
}

// DeleteExam removes an exam. No-op if the id is unknown. Submissions that
// reference the exam are left in place; readers tolerate the dangling
// reference.
func (s *Store) DeleteExam(id string) error {
	_, err := s.db.Exec(`DELETE FROM exams WHERE id = ?`, id)
	return err
}

// CodeInUse reports whether any active exam already uses the join code.
func (s *Store) CodeInUse(code string) (bool, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM exams WHERE code = ? AND active = 1`, code).Scan(&count)
	return count > 0, err
}

// SaveSubmission inserts the submission or replaces the record with the
// same id.
func (s *Store) SaveSubmission(sub model.StudentSubmission) error {
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO submissions (id, exam_id, student_name, student_class, answers, score, total_questions, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   exam_id = excluded.exam_id,
		   student_name = excluded.student_name,
		   student_class = excluded.student_class,
		   answers = excluded.answers,
		   score = excluded.score,
		   total_questions = excluded.total_questions,
		   submitted_at = excluded.submitted_at`,
		sub.ID, sub.ExamID, sub.StudentName, sub.StudentClass, string(answers),
		sub.Score, sub.TotalQuestions, sub.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("save submission %s: %w", sub.ID, err)
	}
	return nil
}

const submissionColumns = `id, exam_id, student_name, student_class, answers, score, total_questions, submitted_at`

func scanSubmission(row interface{ Scan(...any) error }) (model.StudentSubmission, error) {
	var sub model.StudentSubmission
	var answers string
	err := row.Scan(&sub.ID, &sub.ExamID, &sub.StudentName, &sub.StudentClass,
		&answers, &sub.Score, &sub.TotalQuestions, &sub.SubmittedAt)
	if err != nil {
		return sub, err
	}
	if err := json.Unmarshal([]byte(answers), &sub.Answers); err != nil {
		return sub, fmt.Errorf("decode answers for submission %s: %w", sub.ID, err)
	}
	return sub, nil
}

// ListSubmissions returns all submissions for one exam in insertion order.
func (s *Store) ListSubmissions(examID string) ([]model.StudentSubmission, error) {
	rows, err := s.db.Query(`SELECT `+submissionColumns+` FROM submissions WHERE exam_id = ? ORDER BY rowid`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subs []model.StudentSubmission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			slog.Warn("skipping unreadable submission row", "error", err)
			continue
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// GetSubmissionByID returns a submission by id, or nil if absent or
// unreadable.
func (s *Store) GetSubmissionByID(id string) (*model.StudentSubmission, error) {
	row := s.db.QueryRow(`SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id)
	sub, err := scanSubmission(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Warn("skipping unreadable submission row", "id", id, "error", err)
		return nil, nil
	}
	return &sub, nil
}

// CountAttempts returns how many submissions the named student has for the
// exam. Name and class match case-insensitively; whitespace is compared
// as entered.
func (s *Store) CountAttempts(examID, studentName, studentClass string) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM submissions
		 WHERE exam_id = ? AND LOWER(student_name) = LOWER(?) AND LOWER(student_class) = LOWER(?)`,
		examID, studentName, studentClass,
	).Scan(&count)
	return count, err
}
