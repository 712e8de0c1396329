package entity

import "testing"

func TestChapterIsDone(t *testing.T) {
	tests := []struct {
		name    string
		status  ChapterStatus
		content string
		want    bool
	}{
		{"done with content", ChapterStatusDone, "text", true},
		{"done without content", ChapterStatusDone, "", false},
		{"generating leftover", ChapterStatusGenerating, "partial", false},
		{"pending", ChapterStatusPending, "", false},
		{"failed placeholder", ChapterStatusFailed, "Generation failed. Please retry.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &Chapter{Status: tt.status, Content: tt.content}
			if got := ch.IsDone(); got != tt.want {
				t.Fatalf("IsDone() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChapterMarkDoneClearsFailure(t *testing.T) {
	ch := NewChapter("p1", OutlineChapter{Number: 1, Title: "One"})
	ch.MarkFailed("placeholder", "boom")
	if ch.Status != ChapterStatusFailed || ch.FailureMsg != "boom" {
		t.Fatalf("after MarkFailed: %s %q", ch.Status, ch.FailureMsg)
	}

	ch.MarkDone("real content", &GenerationMetadata{Attempts: 2})
	if !ch.IsDone() {
		t.Fatal("chapter not done after MarkDone")
	}
	if ch.FailureMsg != "" {
		t.Fatalf("failure msg = %q, want cleared", ch.FailureMsg)
	}
	if ch.WordCount == 0 {
		t.Fatal("word count not set")
	}
}
