package store

import "testing"

func TestExportSubmissions(t *testing.T) {
	s := newTestStore(t)

	saveTestSubmission(t, s, "sub-1", "exam-1", "Alice", "10A", 2)
	saveTestSubmission(t, s, "sub-2", "exam-1", "alice", "10a", 1)
	saveTestSubmission(t, s, "sub-3", "exam-1", "Bob", "10A", 0)

	results, err := s.ExportSubmissions("exam-1")
	if err != nil {
		t.Fatalf("ExportSubmissions: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	// Attempts by the same student (case-insensitive) are numbered in order.
	if results[0].AttemptNumber != 1 {
		t.Errorf("expected first attempt 1, got %d", results[0].AttemptNumber)
	}
	if results[1].AttemptNumber != 2 {
		t.Errorf("expected second attempt 2, got %d", results[1].AttemptNumber)
	}
	if results[2].AttemptNumber != 1 {
		t.Errorf("expected Bob attempt 1, got %d", results[2].AttemptNumber)
	}

	if results[0].Percent != 100 {
		t.Errorf("expected 100%%, got %f", results[0].Percent)
	}
	if results[2].Percent != 0 {
		t.Errorf("expected 0%%, got %f", results[2].Percent)
	}
}
