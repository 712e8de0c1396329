package llm

import (
	"strings"
	"testing"

	"inkwell-book-api/internal/application/generation"
	"inkwell-book-api/internal/domain/entity"
)

func TestToneInstructionCoversAllStyles(t *testing.T) {
	styles := []entity.WritingStyle{
		entity.StyleStandard, entity.StyleLiterary, entity.StyleHumorous,
		entity.StyleTechnical, entity.StyleSimple, entity.StyleSarcastic,
	}
	seen := make(map[string]bool)
	for _, s := range styles {
		tone := ToneInstruction(s)
		if tone == "" {
			t.Fatalf("empty tone instruction for style %s", s)
		}
		if seen[tone] {
			t.Fatalf("duplicate tone instruction for style %s", s)
		}
		seen[tone] = true
	}

	// 未知风格回退到 standard
	if ToneInstruction(entity.WritingStyle("noir")) != ToneInstruction(entity.StyleStandard) {
		t.Fatal("unknown style did not fall back to standard tone")
	}
}

func TestBuildChapterMessages(t *testing.T) {
	project := entity.NewProject("owner", "The Long Road")
	project.Description = "A memoir of a decade on the move."

	prev := entity.NewChapter(project.ID, entity.OutlineChapter{Number: 1, Title: "Leaving"})
	prev.MarkDone("We left at dawn.", nil)

	req := &generation.Request{
		Project: project,
		Chapter: entity.OutlineChapter{Number: 2, Title: "The Border", Summary: "Crossing into the unknown."},
		Style:   entity.StyleLiterary,
		Sources: []*entity.SourceMaterial{
			entity.NewSourceMaterial(project.ID, entity.SourceKindNote, "Note", "The guard asked for papers."),
		},
		Previous: []*entity.Chapter{prev},
	}

	msgs := buildChapterMessages(req)
	if len(msgs) < 2 {
		t.Fatalf("messages = %d, want system plus user", len(msgs))
	}

	var all strings.Builder
	for _, m := range msgs {
		all.WriteString(m.Content)
		all.WriteString("\n")
	}
	joined := all.String()

	for _, want := range []string{
		"The Long Road",
		"The Border",
		"Crossing into the unknown.",
		"The guard asked for papers.",
		"We left at dawn.",
		ToneInstruction(entity.StyleLiterary),
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}
