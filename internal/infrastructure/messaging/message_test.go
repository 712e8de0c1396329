package messaging

import (
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	cfg := BackoffConfig{
		Initial:    time.Second,
		Max:        time.Minute,
		Multiplier: 2,
	}

	tests := []struct {
		retries int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{10, time.Minute}, // 封顶
	}
	for _, tt := range tests {
		if got := cfg.CalculateBackoff(tt.retries); got != tt.want {
			t.Fatalf("CalculateBackoff(%d) = %v, want %v", tt.retries, got, tt.want)
		}
	}
}

func TestDLQStreamName(t *testing.T) {
	if got := StreamBookGen.DLQStream(); got != "dlq:stream:book:gen" {
		t.Fatalf("DLQStream = %q", got)
	}
}

func TestMessagePayloadRoundTrip(t *testing.T) {
	run := &GenerationRunMessage{JobID: "j1", ProjectID: "p1", Style: "literary"}
	msg, err := NewMessage(run.JobID, "chapter_run", run.ProjectID, run)
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}

	var decoded GenerationRunMessage
	if err := msg.UnmarshalPayload(&decoded); err != nil {
		t.Fatalf("UnmarshalPayload: %v", err)
	}
	if decoded != *run {
		t.Fatalf("decoded = %+v, want %+v", decoded, *run)
	}
}
