package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"inkwell-book-api/internal/domain/entity"
)

// ChapterRepository 章节仓储实现
// 所有写操作只更新目标章节行，不触碰 projects 表
type ChapterRepository struct {
	client *Client
}

// NewChapterRepository 创建章节仓储
func NewChapterRepository(client *Client) *ChapterRepository {
	return &ChapterRepository{client: client}
}

const chapterColumns = `id, project_id, number, title, summary, content, status, failure_msg, metadata, word_count, created_at, updated_at`

// Create 创建章节
func (r *ChapterRepository) Create(ctx context.Context, chapter *entity.Chapter) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.Create")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	metadataJSON, _ := json.Marshal(chapter.Metadata)

	query := `
		INSERT INTO chapters (id, project_id, number, title, summary, content, status, failure_msg, metadata, word_count, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query,
		chapter.ProjectID, chapter.Number, chapter.Title, chapter.Summary,
		chapter.Content, chapter.Status, chapter.FailureMsg, metadataJSON, chapter.WordCount,
	).Scan(&chapter.ID, &chapter.CreatedAt, &chapter.UpdatedAt)

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create chapter: %w", err)
	}

	return nil
}

// GetByID 根据 ID 获取章节
func (r *ChapterRepository) GetByID(ctx context.Context, id string) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.GetByID")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := fmt.Sprintf(`SELECT %s FROM chapters WHERE id = $1`, chapterColumns)
	chapter, err := scanChapter(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}
	return chapter, nil
}

// GetByNumber 根据项目与章节号获取章节
func (r *ChapterRepository) GetByNumber(ctx context.Context, projectID string, number int) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.GetByNumber")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := fmt.Sprintf(`SELECT %s FROM chapters WHERE project_id = $1 AND number = $2`, chapterColumns)
	chapter, err := scanChapter(q.QueryRowContext(ctx, query, projectID, number))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}
	return chapter, nil
}

// ListByProject 获取项目全部章节（按章节号升序）
func (r *ChapterRepository) ListByProject(ctx context.Context, projectID string) ([]*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.ListByProject")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := fmt.Sprintf(`SELECT %s FROM chapters WHERE project_id = $1 ORDER BY number ASC`, chapterColumns)
	rows, err := q.QueryContext(ctx, query, projectID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	defer rows.Close()

	var chapters []*entity.Chapter
	for rows.Next() {
		chapter, err := scanChapter(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		chapters = append(chapters, chapter)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate chapters: %w", err)
	}

	return chapters, nil
}

// UpdateResult 更新单章的生成结果
func (r *ChapterRepository) UpdateResult(ctx context.Context, chapter *entity.Chapter) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.UpdateResult")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	metadataJSON, _ := json.Marshal(chapter.Metadata)

	query := `
		UPDATE chapters
		SET content = $1, status = $2, failure_msg = $3, metadata = $4, word_count = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := q.QueryRowContext(ctx, query,
		chapter.Content, chapter.Status, chapter.FailureMsg, metadataJSON, chapter.WordCount, chapter.ID,
	).Scan(&chapter.UpdatedAt)

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update chapter result: %w", err)
	}

	return nil
}

// UpdateStatus 仅更新单章状态
func (r *ChapterRepository) UpdateStatus(ctx context.Context, id string, status entity.ChapterStatus) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.UpdateStatus")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `UPDATE chapters SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := q.ExecContext(ctx, query, status, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update chapter status: %w", err)
	}

	return nil
}

// ReplaceForProject 按大纲对齐章节集合
// 新增缺失行、刷新标题摘要、删除大纲外的行；已有行的内容与状态不变
// 调用方应通过 Transactor 在事务中执行
func (r *ChapterRepository) ReplaceForProject(ctx context.Context, projectID string, outline []entity.OutlineChapter) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.ReplaceForProject")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	upsert := `
		INSERT INTO chapters (id, project_id, number, title, summary, status, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, 'pending', NOW(), NOW())
		ON CONFLICT (project_id, number)
		DO UPDATE SET title = EXCLUDED.title, summary = EXCLUDED.summary, updated_at = NOW()
	`

	numbers := make([]int64, 0, len(outline))
	for _, oc := range outline {
		if _, err := q.ExecContext(ctx, upsert, projectID, oc.Number, oc.Title, oc.Summary); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to upsert chapter %d: %w", oc.Number, err)
		}
		numbers = append(numbers, int64(oc.Number))
	}

	prune := `DELETE FROM chapters WHERE project_id = $1 AND number <> ALL($2)`
	if _, err := q.ExecContext(ctx, prune, projectID, pq.Int64Array(numbers)); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to prune chapters: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChapter(row rowScanner) (*entity.Chapter, error) {
	var chapter entity.Chapter
	var metadataJSON []byte

	err := row.Scan(
		&chapter.ID, &chapter.ProjectID, &chapter.Number, &chapter.Title, &chapter.Summary,
		&chapter.Content, &chapter.Status, &chapter.FailureMsg, &metadataJSON, &chapter.WordCount,
		&chapter.CreatedAt, &chapter.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadataJSON) > 0 && string(metadataJSON) != "null" {
		var meta entity.GenerationMetadata
		if json.Unmarshal(metadataJSON, &meta) == nil {
			chapter.Metadata = &meta
		}
	}

	return &chapter, nil
}
