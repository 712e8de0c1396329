package repository

import (
	"context"

	"inkwell-book-api/internal/domain/entity"
)

// ProjectRepository 项目仓储接口
type ProjectRepository interface {
	// Create 创建项目
	Create(ctx context.Context, project *entity.Project) error

	// GetByID 根据 ID 获取项目
	GetByID(ctx context.Context, id string) (*entity.Project, error)

	// Update 更新项目
	Update(ctx context.Context, project *entity.Project) error

	// UpdateOutline 仅更新项目大纲
	UpdateOutline(ctx context.Context, id string, outline []entity.OutlineChapter) error

	// UpdateStatus 更新项目状态
	UpdateStatus(ctx context.Context, id string, status entity.ProjectStatus) error

	// Delete 删除项目
	Delete(ctx context.Context, id string) error

	// List 分页获取项目列表
	List(ctx context.Context, ownerID string, pagination Pagination) (*PagedResult[*entity.Project], error)
}
