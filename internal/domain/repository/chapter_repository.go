package repository

import (
	"context"

	"inkwell-book-api/internal/domain/entity"
)

// ChapterRepository 章节仓储接口
// 写入操作只触碰 chapters 表的目标行，同一项目的其他章节与项目本身不受影响
type ChapterRepository interface {
	// Create 创建章节
	Create(ctx context.Context, chapter *entity.Chapter) error

	// GetByID 根据 ID 获取章节
	GetByID(ctx context.Context, id string) (*entity.Chapter, error)

	// GetByNumber 根据项目与章节号获取章节
	GetByNumber(ctx context.Context, projectID string, number int) (*entity.Chapter, error)

	// ListByProject 获取项目全部章节（按章节号升序）
	ListByProject(ctx context.Context, projectID string) ([]*entity.Chapter, error)

	// UpdateResult 更新单章的生成结果（内容、状态、失败原因、元信息）
	UpdateResult(ctx context.Context, chapter *entity.Chapter) error

	// UpdateStatus 仅更新单章状态
	UpdateStatus(ctx context.Context, id string, status entity.ChapterStatus) error

	// ReplaceForProject 按大纲对齐章节集合：新增缺失行、刷新标题摘要、删除大纲外的行
	// 已有行的内容与状态保持不变
	ReplaceForProject(ctx context.Context, projectID string, outline []entity.OutlineChapter) error
}
