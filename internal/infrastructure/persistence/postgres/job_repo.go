package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"inkwell-book-api/internal/domain/entity"
	"inkwell-book-api/internal/domain/repository"
)

// JobRepository 生成任务仓储实现
type JobRepository struct {
	client *Client
}

// NewJobRepository 创建任务仓储
func NewJobRepository(client *Client) *JobRepository {
	return &JobRepository{client: client}
}

const jobColumns = `id, project_id, status, style, cursor, chapters_total, chapters_done, chapters_failed, abort_reason, started_at, finished_at, created_at, updated_at`

// Create 创建任务
func (r *JobRepository) Create(ctx context.Context, job *entity.GenerationJob) error {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.Create")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		INSERT INTO generation_jobs (id, project_id, status, style, cursor, chapters_total, chapters_done, chapters_failed, abort_reason, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query,
		job.ProjectID, job.Status, job.Style, job.Cursor,
		job.ChaptersTotal, job.ChaptersDone, job.ChaptersFailed, job.AbortReason,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// GetByID 根据 ID 获取任务
func (r *JobRepository) GetByID(ctx context.Context, id string) (*entity.GenerationJob, error) {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.GetByID")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := fmt.Sprintf(`SELECT %s FROM generation_jobs WHERE id = $1`, jobColumns)
	job, err := scanJob(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// Update 更新任务
func (r *JobRepository) Update(ctx context.Context, job *entity.GenerationJob) error {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.Update")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		UPDATE generation_jobs
		SET status = $1, cursor = $2, chapters_total = $3, chapters_done = $4, chapters_failed = $5,
			abort_reason = $6, started_at = $7, finished_at = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at
	`

	err := q.QueryRowContext(ctx, query,
		job.Status, job.Cursor, job.ChaptersTotal, job.ChaptersDone, job.ChaptersFailed,
		job.AbortReason, job.StartedAt, job.FinishedAt, job.ID,
	).Scan(&job.UpdatedAt)

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update job: %w", err)
	}

	return nil
}

// UpdateProgress 只更新进度字段
// 不触碰 status，避免覆盖 API 侧并发写入的 cancelled
func (r *JobRepository) UpdateProgress(ctx context.Context, id string, cursor, done, failed int) error {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.UpdateProgress")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		UPDATE generation_jobs
		SET cursor = $1, chapters_done = $2, chapters_failed = $3, updated_at = NOW()
		WHERE id = $4
	`
	if _, err := q.ExecContext(ctx, query, cursor, done, failed, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update job progress: %w", err)
	}

	return nil
}

// UpdateStatus 更新任务状态
func (r *JobRepository) UpdateStatus(ctx context.Context, id string, status entity.JobStatus) error {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.UpdateStatus")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `UPDATE generation_jobs SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := q.ExecContext(ctx, query, status, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update job status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// GetActiveByProject 获取项目当前非终态任务
func (r *JobRepository) GetActiveByProject(ctx context.Context, projectID string) (*entity.GenerationJob, error) {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.GetActiveByProject")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := fmt.Sprintf(`
		SELECT %s FROM generation_jobs
		WHERE project_id = $1 AND status IN ('pending', 'running')
		ORDER BY created_at DESC
		LIMIT 1
	`, jobColumns)

	job, err := scanJob(q.QueryRowContext(ctx, query, projectID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get active job: %w", err)
	}
	return job, nil
}

// ListByProject 获取项目任务列表（按创建时间降序）
func (r *JobRepository) ListByProject(ctx context.Context, projectID string, pagination repository.Pagination) (*repository.PagedResult[*entity.GenerationJob], error) {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.ListByProject")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	var total int64
	countQuery := `SELECT COUNT(*) FROM generation_jobs WHERE project_id = $1`
	if err := q.QueryRowContext(ctx, countQuery, projectID).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM generation_jobs
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, jobColumns)

	rows, err := q.QueryContext(ctx, query, projectID, pagination.Limit(), pagination.Offset())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*entity.GenerationJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}

	return repository.NewPagedResult(jobs, total, pagination), nil
}

func scanJob(row rowScanner) (*entity.GenerationJob, error) {
	var job entity.GenerationJob
	var abortReason sql.NullString
	var startedAt, finishedAt sql.NullTime

	err := row.Scan(
		&job.ID, &job.ProjectID, &job.Status, &job.Style, &job.Cursor,
		&job.ChaptersTotal, &job.ChaptersDone, &job.ChaptersFailed,
		&abortReason, &startedAt, &finishedAt, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if abortReason.Valid {
		job.AbortReason = abortReason.String
	}
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if finishedAt.Valid {
		job.FinishedAt = &finishedAt.Time
	}

	return &job, nil
}
