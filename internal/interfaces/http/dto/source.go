package dto

import (
	"time"

	"inkwell-book-api/internal/domain/entity"
)

// CreateSourceRequest 创建素材请求
type CreateSourceRequest struct {
	Kind    string `json:"kind" binding:"required"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content" binding:"required"`
}

// UpdateSourceRequest 更新素材请求
type UpdateSourceRequest struct {
	Kind    *string `json:"kind,omitempty"`
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// SourceResponse 素材响应
type SourceResponse struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToSourceResponse 转换素材响应
func ToSourceResponse(m *entity.SourceMaterial) *SourceResponse {
	return &SourceResponse{
		ID:        m.ID,
		ProjectID: m.ProjectID,
		Kind:      string(m.Kind),
		Title:     m.Title,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// SourceListResponse 素材列表响应
type SourceListResponse struct {
	Sources []*SourceResponse `json:"sources"`
}

// ToSourceListResponse 转换素材列表响应
func ToSourceListResponse(items []*entity.SourceMaterial) *SourceListResponse {
	sources := make([]*SourceResponse, 0, len(items))
	for _, m := range items {
		sources = append(sources, ToSourceResponse(m))
	}
	return &SourceListResponse{Sources: sources}
}
