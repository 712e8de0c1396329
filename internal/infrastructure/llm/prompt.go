package llm

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"inkwell-book-api/internal/application/generation"
	"inkwell-book-api/internal/domain/entity"
)

// 各写作风格的语气指令，注入系统提示词
var toneInstructions = map[entity.WritingStyle]string{
	entity.StyleStandard:  "Write in a clear, balanced narrative voice suitable for a general audience.",
	entity.StyleLiterary:  "Write in a rich, evocative literary voice with layered imagery and careful rhythm.",
	entity.StyleHumorous:  "Write with wit and lightness; weave in humor without undermining the material.",
	entity.StyleTechnical: "Write precisely and factually, defining terms and favoring accuracy over flourish.",
	entity.StyleSimple:    "Write in short, plain sentences that a young reader could follow easily.",
	entity.StyleSarcastic: "Write with a dry, ironic edge; let the sarcasm color the commentary, not the facts.",
}

// ToneInstruction 返回风格对应的语气指令
func ToneInstruction(style entity.WritingStyle) string {
	if t, ok := toneInstructions[style]; ok {
		return t
	}
	return toneInstructions[entity.StyleStandard]
}

const systemPrompt = `You are a professional book author. You write complete book chapters from an outline and the author's source materials. Follow the requested tone exactly. Return only the chapter prose, no headings, no commentary.`

// buildChapterMessages 组装单章生成的对话消息
func buildChapterMessages(req *generation.Request) []*schema.Message {
	var b strings.Builder

	fmt.Fprintf(&b, "Book: %s\n", req.Project.Title)
	if req.Project.Description != "" {
		fmt.Fprintf(&b, "About: %s\n", req.Project.Description)
	}
	b.WriteString("\nFull outline:\n")
	for _, oc := range req.Project.Outline {
		fmt.Fprintf(&b, "%d. %s — %s\n", oc.Number, oc.Title, oc.Summary)
	}

	if len(req.Sources) > 0 {
		b.WriteString("\nSource materials:\n")
		for _, src := range req.Sources {
			fmt.Fprintf(&b, "--- [%s] %s ---\n%s\n", src.Kind, src.Title, src.Content)
		}
	}

	if len(req.Previous) > 0 {
		b.WriteString("\nPreviously written chapters (for continuity):\n")
		for _, prev := range req.Previous {
			fmt.Fprintf(&b, "Chapter %d: %s\n%s\n\n", prev.Number, prev.Title, excerpt(prev.Content, 1200))
		}
	}

	fmt.Fprintf(&b, "\nTone: %s\n", ToneInstruction(req.Style))
	fmt.Fprintf(&b, "\nNow write chapter %d, titled %q.\nChapter summary: %s\n", req.Chapter.Number, req.Chapter.Title, req.Chapter.Summary)

	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(b.String()),
	}
}

// excerpt 截取前文片段，控制提示词长度
func excerpt(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "…"
}
