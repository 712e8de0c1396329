package entity

import "testing"

func outlineOf(numbers ...int) []OutlineChapter {
	outline := make([]OutlineChapter, 0, len(numbers))
	for _, n := range numbers {
		outline = append(outline, OutlineChapter{Number: n, Title: "t"})
	}
	return outline
}

func TestValidateOutline(t *testing.T) {
	tests := []struct {
		name    string
		outline []OutlineChapter
		wantErr bool
	}{
		{"empty", nil, false},
		{"dense from one", outlineOf(1, 2, 3), false},
		{"unordered but dense", outlineOf(3, 1, 2), false},
		{"duplicate number", outlineOf(1, 2, 2), true},
		{"gap", outlineOf(1, 3), true},
		{"starts at zero", outlineOf(0, 1), true},
		{"negative", outlineOf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Project{Outline: tt.outline}
			err := p.ValidateOutline()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateOutline() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWritingStyleValid(t *testing.T) {
	for _, s := range []WritingStyle{StyleStandard, StyleLiterary, StyleHumorous, StyleTechnical, StyleSimple, StyleSarcastic} {
		if !s.Valid() {
			t.Fatalf("style %s reported invalid", s)
		}
	}
	if WritingStyle("noir").Valid() {
		t.Fatal("unknown style reported valid")
	}
	if WritingStyle("").Valid() {
		t.Fatal("empty style reported valid")
	}
}

func TestNewProjectDefaults(t *testing.T) {
	p := NewProject("owner", "Title")
	if p.Style != StyleStandard {
		t.Fatalf("style = %s, want standard", p.Style)
	}
	if p.Status != ProjectStatusDraft {
		t.Fatalf("status = %s, want draft", p.Status)
	}
	if !p.IsEditable() {
		t.Fatal("draft project not editable")
	}
}
