package generation

import (
	"testing"

	"inkwell-book-api/internal/domain/entity"
	apperrors "inkwell-book-api/pkg/errors"
)

func TestParseStyle(t *testing.T) {
	valid := []string{"standard", "literary", "humorous", "technical", "simple", "sarcastic"}
	for _, s := range valid {
		style, err := ParseStyle(s)
		if err != nil {
			t.Fatalf("ParseStyle(%q) returned error: %v", s, err)
		}
		if string(style) != s {
			t.Fatalf("ParseStyle(%q) = %s", s, style)
		}
	}
}

func TestParseStyleEmptyDefaultsToStandard(t *testing.T) {
	style, err := ParseStyle("")
	if err != nil {
		t.Fatalf("ParseStyle(\"\") returned error: %v", err)
	}
	if style != entity.StyleStandard {
		t.Fatalf("style = %s, want standard", style)
	}
}

func TestParseStyleRejectsUnknown(t *testing.T) {
	_, err := ParseStyle("noir")
	if err == nil {
		t.Fatal("ParseStyle accepted unknown style")
	}
	if apperrors.CodeOf(err) != apperrors.CodeInvalidStyle {
		t.Fatalf("error code = %s, want invalid style", apperrors.CodeOf(err))
	}
}
