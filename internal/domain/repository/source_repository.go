package repository

import (
	"context"

	"inkwell-book-api/internal/domain/entity"
)

// SourceMaterialRepository 素材仓储接口
type SourceMaterialRepository interface {
	// Create 创建素材
	Create(ctx context.Context, material *entity.SourceMaterial) error

	// GetByID 根据 ID 获取素材
	GetByID(ctx context.Context, id string) (*entity.SourceMaterial, error)

	// Update 更新素材
	Update(ctx context.Context, material *entity.SourceMaterial) error

	// Delete 删除素材
	Delete(ctx context.Context, id string) error

	// ListByProject 获取项目全部素材（按创建时间升序）
	ListByProject(ctx context.Context, projectID string) ([]*entity.SourceMaterial, error)
}
