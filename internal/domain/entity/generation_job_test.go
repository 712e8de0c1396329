package entity

import "testing"

func TestJobStatusIsTerminal(t *testing.T) {
	terminal := []JobStatus{JobStatusCompleted, JobStatusAborted, JobStatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Fatalf("%s not terminal", s)
		}
	}
	for _, s := range []JobStatus{JobStatusPending, JobStatusRunning} {
		if s.IsTerminal() {
			t.Fatalf("%s reported terminal", s)
		}
	}
}

func TestJobLifecycle(t *testing.T) {
	j := NewGenerationJob("p1", StyleLiterary)
	if j.Status != JobStatusPending {
		t.Fatalf("status = %s, want pending", j.Status)
	}

	j.Start(10)
	if j.Status != JobStatusRunning || j.ChaptersTotal != 10 {
		t.Fatalf("after Start: %s total=%d", j.Status, j.ChaptersTotal)
	}
	if j.StartedAt == nil {
		t.Fatal("started_at not set")
	}

	j.Abort("fatal error on chapter 3")
	if j.Status != JobStatusAborted || j.AbortReason == "" {
		t.Fatalf("after Abort: %s %q", j.Status, j.AbortReason)
	}
	if j.FinishedAt == nil {
		t.Fatal("finished_at not set")
	}
}
