// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"inkwell-book-api/internal/domain/entity"
	"inkwell-book-api/internal/domain/repository"
)

// ProjectRepository 项目仓储实现
type ProjectRepository struct {
	client *Client
}

// NewProjectRepository 创建项目仓储
func NewProjectRepository(client *Client) *ProjectRepository {
	return &ProjectRepository{client: client}
}

// Create 创建项目
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Create")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	outlineJSON, _ := json.Marshal(project.Outline)

	query := `
		INSERT INTO projects (id, owner_id, title, description, style, outline, status, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	var ownerID sql.NullString
	if project.OwnerID != "" {
		ownerID = sql.NullString{String: project.OwnerID, Valid: true}
	}

	err := q.QueryRowContext(ctx, query,
		ownerID, project.Title, project.Description, project.Style, outlineJSON, project.Status,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetByID 根据 ID 获取项目
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.GetByID")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT id, owner_id, title, description, style, outline, status, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	var project entity.Project
	var ownerID sql.NullString
	var outlineJSON []byte

	err := q.QueryRowContext(ctx, query, id).Scan(
		&project.ID, &ownerID, &project.Title, &project.Description,
		&project.Style, &outlineJSON, &project.Status,
		&project.CreatedAt, &project.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if ownerID.Valid {
		project.OwnerID = ownerID.String
	}
	json.Unmarshal(outlineJSON, &project.Outline)

	return &project, nil
}

// Update 更新项目
func (r *ProjectRepository) Update(ctx context.Context, project *entity.Project) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Update")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	outlineJSON, _ := json.Marshal(project.Outline)

	query := `
		UPDATE projects
		SET title = $1, description = $2, style = $3, outline = $4, status = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := q.QueryRowContext(ctx, query,
		project.Title, project.Description, project.Style, outlineJSON, project.Status, project.ID,
	).Scan(&project.UpdatedAt)

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update project: %w", err)
	}

	return nil
}

// UpdateOutline 仅更新项目大纲
func (r *ProjectRepository) UpdateOutline(ctx context.Context, id string, outline []entity.OutlineChapter) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.UpdateOutline")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	outlineJSON, _ := json.Marshal(outline)

	query := `UPDATE projects SET outline = $1, updated_at = NOW() WHERE id = $2`
	result, err := q.ExecContext(ctx, query, outlineJSON, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update outline: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// UpdateStatus 更新项目状态
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id string, status entity.ProjectStatus) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.UpdateStatus")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `UPDATE projects SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := q.ExecContext(ctx, query, status, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update project status: %w", err)
	}

	return nil
}

// Delete 删除项目
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Delete")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `DELETE FROM projects WHERE id = $1`
	_, err := q.ExecContext(ctx, query, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// List 分页获取项目列表
func (r *ProjectRepository) List(ctx context.Context, ownerID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.List")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	whereClause := "1=1"
	args := []interface{}{}
	argIdx := 1

	if ownerID != "" {
		whereClause += fmt.Sprintf(" AND owner_id = $%d", argIdx)
		args = append(args, ownerID)
		argIdx++
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM projects WHERE %s", whereClause)
	if err := q.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, owner_id, title, description, style, outline, status, created_at, updated_at
		FROM projects
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)
	args = append(args, pagination.Limit(), pagination.Offset())

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*entity.Project
	for rows.Next() {
		var project entity.Project
		var owner sql.NullString
		var outlineJSON []byte

		if err := rows.Scan(
			&project.ID, &owner, &project.Title, &project.Description,
			&project.Style, &outlineJSON, &project.Status,
			&project.CreatedAt, &project.UpdatedAt,
		); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}

		if owner.Valid {
			project.OwnerID = owner.String
		}
		json.Unmarshal(outlineJSON, &project.Outline)
		projects = append(projects, &project)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return repository.NewPagedResult(projects, total, pagination), nil
}
