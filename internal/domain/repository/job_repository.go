package repository

import (
	"context"

	"inkwell-book-api/internal/domain/entity"
)

// JobRepository 生成任务仓储接口
type JobRepository interface {
	// Create 创建任务
	Create(ctx context.Context, job *entity.GenerationJob) error

	// GetByID 根据 ID 获取任务
	GetByID(ctx context.Context, id string) (*entity.GenerationJob, error)

	// Update 更新任务
	Update(ctx context.Context, job *entity.GenerationJob) error

	// UpdateProgress 只更新游标与完成/失败计数，不触碰状态
	UpdateProgress(ctx context.Context, id string, cursor, done, failed int) error

	// UpdateStatus 更新任务状态
	UpdateStatus(ctx context.Context, id string, status entity.JobStatus) error

	// GetActiveByProject 获取项目当前非终态任务，不存在时返回 nil
	GetActiveByProject(ctx context.Context, projectID string) (*entity.GenerationJob, error)

	// ListByProject 获取项目任务列表（按创建时间降序）
	ListByProject(ctx context.Context, projectID string, pagination Pagination) (*PagedResult[*entity.GenerationJob], error)
}
