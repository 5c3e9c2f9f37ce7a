package store

import (
	"testing"
	"time"

	"quizmaster/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testExam(id, code string) model.Exam {
	return model.Exam{
		ID:    id,
		Code:  code,
		Title: "Biology Midterm",
		Questions: []model.Question{
			{ID: "q1", Text: "Q1", Options: []string{"a", "b", "c", "d"}, CorrectOptionIndex: 1},
			{ID: "q2", Text: "Q2", Options: []string{"a", "b", "c", "d"}, CorrectOptionIndex: 0},
		},
		Config:    model.ExamConfig{DurationMinutes: 30, MaxAttempts: 2, ShowAnswersAfter: true},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Active:    true,
	}
}

func saveTestSubmission(t *testing.T, s *Store, id, examID, name, class string, score int) {
	t.Helper()
	err := s.SaveSubmission(model.StudentSubmission{
		ID:             id,
		ExamID:         examID,
		StudentName:    name,
		StudentClass:   class,
		Answers:        []int{1, 0},
		Score:          score,
		TotalQuestions: 2,
		SubmittedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("saveTestSubmission: %v", err)
	}
}

func TestExamRoundTrip(t *testing.T) {
	s := newTestStore(t)

	exams, err := s.ListExams()
	if err != nil {
		t.Fatalf("ListExams: %v", err)
	}
	if len(exams) != 0 {
		t.Fatalf("expected empty store, got %d exams", len(exams))
	}

	e := testExam("exam-1", "AB12CD")
	if err := s.SaveExam(e); err != nil {
		t.Fatalf("SaveExam: %v", err)
	}

	got, err := s.GetExamByID("exam-1")
	if err != nil {
		t.Fatalf("GetExamByID: %v", err)
	}
	if got == nil {
		t.Fatal("expected exam, got nil")
	}
	if got.Title != e.Title {
		t.Errorf("expected title %q, got %q", e.Title, got.Title)
	}
	if got.Code != "AB12CD" {
		t.Errorf("expected code AB12CD, got %q", got.Code)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got.Questions))
	}
	if got.Questions[0].CorrectOptionIndex != 1 {
		t.Errorf("expected correct index 1, got %d", got.Questions[0].CorrectOptionIndex)
	}
	if got.Config.MaxAttempts != 2 || !got.Config.ShowAnswersAfter {
		t.Errorf("config did not round-trip: %+v", got.Config)
	}

	// Unknown id.
	missing, err := s.GetExamByID("nope")
	if err != nil {
		t.Fatalf("GetExamByID missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestSaveExamUpsert(t *testing.T) {
	s := newTestStore(t)

	e := testExam("exam-1", "AB12CD")
	if err := s.SaveExam(e); err != nil {
		t.Fatalf("SaveExam: %v", err)
	}

	e.Title = "Renamed"
	e.Questions = e.Questions[:1]
	if err := s.SaveExam(e); err != nil {
		t.Fatalf("SaveExam replace: %v", err)
	}

	exams, err := s.ListExams()
	if err != nil {
		t.Fatalf("ListExams: %v", err)
	}
	if len(exams) != 1 {
		t.Fatalf("expected 1 exam after upsert, got %d", len(exams))
	}
	if exams[0].Title != "Renamed" {
		t.Errorf("expected replaced title, got %q", exams[0].Title)
	}
	if len(exams[0].Questions) != 1 {
		t.Errorf("expected 1 question after replace, got %d", len(exams[0].Questions))
	}
}

func TestGetExamByCodeActiveOnly(t *testing.T) {
	s := newTestStore(t)

	e := testExam("exam-1", "AB12CD")
	if err := s.SaveExam(e); err != nil {
		t.Fatalf("SaveExam: %v", err)
	}

	got, err := s.GetExamByCode("AB12CD")
	if err != nil {
		t.Fatalf("GetExamByCode: %v", err)
	}
	if got == nil || got.ID != "exam-1" {
		t.Fatal("expected to resolve active exam by code")
	}

	// Deactivate: the code must stop resolving.
	e.Active = false
	if err := s.SaveExam(e); err != nil {
		t.Fatalf("SaveExam deactivate: %v", err)
	}
	got, err = s.GetExamByCode("AB12CD")
	if err != nil {
		t.Fatalf("GetExamByCode after deactivate: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deactivated exam")
	}

	// Delete: same.
	e.Active = true
	if err := s.SaveExam(e); err != nil {
		t.Fatalf("SaveExam reactivate: %v", err)
	}
	if err := s.DeleteExam("exam-1"); err != nil {
		t.Fatalf("DeleteExam: %v", err)
	}
	got, err = s.GetExamByCode("AB12CD")
	if err != nil {
		t.Fatalf("GetExamByCode after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted exam")
	}
}

func TestCodeInUse(t *testing.T) {
	s := newTestStore(t)

	inUse, err := s.CodeInUse("AB12CD")
	if err != nil {
		t.Fatalf("CodeInUse: %v", err)
	}
	if inUse {
		t.Error("expected unused code on empty store")
	}

	if err := s.SaveExam(testExam("exam-1", "AB12CD")); err != nil {
		t.Fatalf("SaveExam: %v", err)
	}
	inUse, _ = s.CodeInUse("AB12CD")
	if !inUse {
		t.Error("expected code in use")
	}

	// Inactive exams release their code.
	e := testExam("exam-1", "AB12CD")
	e.Active = false
	if err := s.SaveExam(e); err != nil {
		t.Fatalf("SaveExam deactivate: %v", err)
	}
	inUse, _ = s.CodeInUse("AB12CD")
	if inUse {
		t.Error("expected code free after deactivation")
	}
}

func TestSubmissionRoundTrip(t *testing.T) {
	s := newTestStore(t)

	sub := model.StudentSubmission{
		ID:             "sub-1",
		ExamID:         "exam-1",
		StudentName:    "Alice",
		StudentClass:   "10A",
		Answers:        []int{1, model.Unanswered},
		Score:          1,
		TotalQuestions: 2,
		SubmittedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if err := s.SaveSubmission(sub); err != nil {
		t.Fatalf("SaveSubmission: %v", err)
	}

	got, err := s.GetSubmissionByID("sub-1")
	if err != nil {
		t.Fatalf("GetSubmissionByID: %v", err)
	}
	if got == nil {
		t.Fatal("expected submission, got nil")
	}
	if got.StudentName != "Alice" || got.StudentClass != "10A" {
		t.Errorf("student identity did not round-trip: %+v", got)
	}
	if len(got.Answers) != 2 || got.Answers[0] != 1 || got.Answers[1] != model.Unanswered {
		t.Errorf("answers did not round-trip: %v", got.Answers)
	}
	if got.Score != 1 || got.TotalQuestions != 2 {
		t.Errorf("score did not round-trip: %d/%d", got.Score, got.TotalQuestions)
	}
}

func TestListSubmissionsFiltersAndOrders(t *testing.T) {
	s := newTestStore(t)

	saveTestSubmission(t, s, "sub-1", "exam-1", "Alice", "10A", 2)
	saveTestSubmission(t, s, "sub-2", "exam-2", "Bob", "10B", 1)
	saveTestSubmission(t, s, "sub-3", "exam-1", "Carol", "10A", 0)

	subs, err := s.ListSubmissions("exam-1")
	if err != nil {
		t.Fatalf("ListSubmissions: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(subs))
	}
	// Insertion order.
	if subs[0].ID != "sub-1" || subs[1].ID != "sub-3" {
		t.Errorf("unexpected order: %s, %s", subs[0].ID, subs[1].ID)
	}

	subs, err = s.ListSubmissions("exam-3")
	if err != nil {
		t.Fatalf("ListSubmissions empty: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("expected no submissions, got %d", len(subs))
	}
}

func TestCountAttemptsCaseInsensitive(t *testing.T) {
	s := newTestStore(t)

	saveTestSubmission(t, s, "sub-1", "exam-1", "Alice", "10A", 2)
	saveTestSubmission(t, s, "sub-2", "exam-1", "alice", "10a", 1)
	saveTestSubmission(t, s, "sub-3", "exam-1", "Bob", "10A", 1)
	saveTestSubmission(t, s, "sub-4", "exam-2", "Alice", "10A", 2)

	tests := []struct {
		name, class string
		want        int
	}{
		{"Alice", "10A", 2},
		{"ALICE", "10a", 2},
		{"Bob", "10A", 1},
		{"bob", "10B", 0},
		{" Alice", "10A", 0}, // whitespace is not normalized
	}

	for _, tt := range tests {
		got, err := s.CountAttempts("exam-1", tt.name, tt.class)
		if err != nil {
			t.Fatalf("CountAttempts(%q, %q): %v", tt.name, tt.class, err)
		}
		if got != tt.want {
			t.Errorf("CountAttempts(%q, %q) = %d, want %d", tt.name, tt.class, got, tt.want)
		}
	}
}

func TestDeleteExamKeepsSubmissions(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveExam(testExam("exam-1", "AB12CD")); err != nil {
		t.Fatalf("SaveExam: %v", err)
	}
	saveTestSubmission(t, s, "sub-1", "exam-1", "Alice", "10A", 2)

	if err := s.DeleteExam("exam-1"); err != nil {
		t.Fatalf("DeleteExam: %v", err)
	}

	subs, err := s.ListSubmissions("exam-1")
	if err != nil {
		t.Fatalf("ListSubmissions: %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("expected orphaned submission to survive, got %d", len(subs))
	}

	// Deleting again is a no-op.
	if err := s.DeleteExam("exam-1"); err != nil {
		t.Errorf("DeleteExam repeat: %v", err)
	}
}

func TestCorruptRowsAreSkipped(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveExam(testExam("exam-1", "AB12CD")); err != nil {
		t.Fatalf("SaveExam: %v", err)
	}
	// Damage the embedded question document directly.
	if _, err := s.db.Exec(`UPDATE exams SET questions = 'not json' WHERE id = 'exam-1'`); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	exams, err := s.ListExams()
	if err != nil {
		t.Fatalf("ListExams: %v", err)
	}
	if len(exams) != 0 {
		t.Errorf("expected corrupt row to be skipped, got %d exams", len(exams))
	}

	// Point lookups read the damaged row as absent, not as an error.
	exam, err := s.GetExamByCode("AB12CD")
	if err != nil {
		t.Errorf("GetExamByCode: %v", err)
	}
	if exam != nil {
		t.Error("expected corrupt exam to read as absent by code")
	}
	exam, err = s.GetExamByID("exam-1")
	if err != nil {
		t.Errorf("GetExamByID: %v", err)
	}
	if exam != nil {
		t.Error("expected corrupt exam to read as absent by id")
	}

	saveTestSubmission(t, s, "sub-1", "exam-1", "Alice", "10A", 2)
	if _, err := s.db.Exec(`UPDATE submissions SET answers = 'not json' WHERE id = 'sub-1'`); err != nil {
		t.Fatalf("corrupt submission row: %v", err)
	}
	sub, err := s.GetSubmissionByID("sub-1")
	if err != nil {
		t.Errorf("GetSubmissionByID: %v", err)
	}
	if sub != nil {
		t.Error("expected corrupt submission to read as absent")
	}
}

func TestAuthSessions(t *testing.T) {
	s := newTestStore(t)

	token, err := s.CreateAuthSession()
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	sess, err := s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess == nil {
		t.Fatal("expected session, got nil")
	}

	if err := s.DeleteAuthSession(token); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	sess, err = s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession after delete: %v", err)
	}
	if sess != nil {
		t.Error("expected nil after delete")
	}
}
