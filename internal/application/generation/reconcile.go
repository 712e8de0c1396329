package generation

import (
	"context"
	"fmt"

	"inkwell-book-api/internal/domain/entity"
	"inkwell-book-api/internal/domain/repository"
	"inkwell-book-api/pkg/logger"
)

// Reconciler 运行开始前按大纲对齐章节集合
// 以章节号为键：补齐缺失行、刷新标题摘要、删除大纲外的行，
// 已有行的内容与状态原样保留
type Reconciler struct {
	chapters repository.ChapterRepository
	tx       repository.Transactor
}

// NewReconciler 创建对齐器
func NewReconciler(chapters repository.ChapterRepository, tx repository.Transactor) *Reconciler {
	return &Reconciler{
		chapters: chapters,
		tx:       tx,
	}
}

// Reconcile 对齐并返回对齐后的章节列表（按章节号升序）
func (r *Reconciler) Reconcile(ctx context.Context, project *entity.Project) ([]*entity.Chapter, error) {
	if len(project.Outline) == 0 {
		return nil, fmt.Errorf("project %s has no outline", project.ID)
	}
	if err := project.ValidateOutline(); err != nil {
		return nil, fmt.Errorf("invalid outline for project %s: %w", project.ID, err)
	}

	err := r.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return r.chapters.ReplaceForProject(ctx, project.ID, project.Outline)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile chapters: %w", err)
	}

	chapters, err := r.chapters.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters after reconcile: %w", err)
	}

	logger.FromContext(ctx).Info("chapters reconciled with outline",
		"project_id", project.ID,
		"outline_len", len(project.Outline),
		"chapter_rows", len(chapters),
	)

	return chapters, nil
}
