package generation

import (
	"context"

	"inkwell-book-api/internal/domain/entity"
)

// Request 单章生成请求
type Request struct {
	Project  *entity.Project
	Chapter  entity.OutlineChapter
	Style    entity.WritingStyle
	Sources  []*entity.SourceMaterial
	Previous []*entity.Chapter
}

// Result 单章生成结果
type Result struct {
	Content    string
	Provider   string
	Model      string
	TokensUsed int
}

// Generator 章节内容生成端口，由 LLM 基础设施实现
type Generator interface {
	GenerateChapter(ctx context.Context, req *Request) (*Result, error)
}
