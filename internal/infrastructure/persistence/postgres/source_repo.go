package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"inkwell-book-api/internal/domain/entity"
)

// SourceMaterialRepository 素材仓储实现
type SourceMaterialRepository struct {
	client *Client
}

// NewSourceMaterialRepository 创建素材仓储
func NewSourceMaterialRepository(client *Client) *SourceMaterialRepository {
	return &SourceMaterialRepository{client: client}
}

// Create 创建素材
func (r *SourceMaterialRepository) Create(ctx context.Context, material *entity.SourceMaterial) error {
	ctx, span := tracer.Start(ctx, "postgres.SourceMaterialRepository.Create")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		INSERT INTO source_materials (id, project_id, kind, title, content, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query,
		material.ProjectID, material.Kind, material.Title, material.Content,
	).Scan(&material.ID, &material.CreatedAt, &material.UpdatedAt)

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create source material: %w", err)
	}

	return nil
}

// GetByID 根据 ID 获取素材
func (r *SourceMaterialRepository) GetByID(ctx context.Context, id string) (*entity.SourceMaterial, error) {
	ctx, span := tracer.Start(ctx, "postgres.SourceMaterialRepository.GetByID")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT id, project_id, kind, title, content, created_at, updated_at
		FROM source_materials
		WHERE id = $1
	`

	var material entity.SourceMaterial
	err := q.QueryRowContext(ctx, query, id).Scan(
		&material.ID, &material.ProjectID, &material.Kind, &material.Title,
		&material.Content, &material.CreatedAt, &material.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get source material: %w", err)
	}

	return &material, nil
}

// Update 更新素材
func (r *SourceMaterialRepository) Update(ctx context.Context, material *entity.SourceMaterial) error {
	ctx, span := tracer.Start(ctx, "postgres.SourceMaterialRepository.Update")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		UPDATE source_materials
		SET kind = $1, title = $2, content = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := q.QueryRowContext(ctx, query,
		material.Kind, material.Title, material.Content, material.ID,
	).Scan(&material.UpdatedAt)

	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update source material: %w", err)
	}

	return nil
}

// Delete 删除素材
func (r *SourceMaterialRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.SourceMaterialRepository.Delete")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `DELETE FROM source_materials WHERE id = $1`
	_, err := q.ExecContext(ctx, query, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete source material: %w", err)
	}

	return nil
}

// ListByProject 获取项目全部素材（按创建时间升序）
func (r *SourceMaterialRepository) ListByProject(ctx context.Context, projectID string) ([]*entity.SourceMaterial, error) {
	ctx, span := tracer.Start(ctx, "postgres.SourceMaterialRepository.ListByProject")
	defer span.End()

	q := getQuerier(ctx, r.client.sqlDB)

	query := `
		SELECT id, project_id, kind, title, content, created_at, updated_at
		FROM source_materials
		WHERE project_id = $1
		ORDER BY created_at ASC
	`

	rows, err := q.QueryContext(ctx, query, projectID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list source materials: %w", err)
	}
	defer rows.Close()

	var materials []*entity.SourceMaterial
	for rows.Next() {
		var material entity.SourceMaterial
		if err := rows.Scan(
			&material.ID, &material.ProjectID, &material.Kind, &material.Title,
			&material.Content, &material.CreatedAt, &material.UpdatedAt,
		); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan source material: %w", err)
		}
		materials = append(materials, &material)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate source materials: %w", err)
	}

	return materials, nil
}
