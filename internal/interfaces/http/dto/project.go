package dto

import (
	"time"

	"inkwell-book-api/internal/domain/entity"
)

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Title       string                  `json:"title" binding:"required,max=255"`
	Description string                  `json:"description,omitempty"`
	Style       string                  `json:"style,omitempty"`
	Outline     []OutlineChapterRequest `json:"outline,omitempty"`
}

// UpdateProjectRequest 更新项目请求
type UpdateProjectRequest struct {
	Title       *string                 `json:"title,omitempty"`
	Description *string                 `json:"description,omitempty"`
	Style       *string                 `json:"style,omitempty"`
	Outline     []OutlineChapterRequest `json:"outline,omitempty"`
}

// OutlineChapterRequest 大纲章节条目
type OutlineChapterRequest struct {
	Number  int    `json:"number" binding:"required,min=1"`
	Title   string `json:"title" binding:"required"`
	Summary string `json:"summary,omitempty"`
}

// ToOutline 转换为领域大纲
func ToOutline(items []OutlineChapterRequest) []entity.OutlineChapter {
	outline := make([]entity.OutlineChapter, 0, len(items))
	for _, item := range items {
		outline = append(outline, entity.OutlineChapter{
			Number:  item.Number,
			Title:   item.Title,
			Summary: item.Summary,
		})
	}
	return outline
}

// ProjectResponse 项目响应
type ProjectResponse struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description,omitempty"`
	Style       string                  `json:"style"`
	Status      string                  `json:"status"`
	Outline     []OutlineChapterRequest `json:"outline,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// ToProjectResponse 转换项目响应
func ToProjectResponse(p *entity.Project) *ProjectResponse {
	outline := make([]OutlineChapterRequest, 0, len(p.Outline))
	for _, oc := range p.Outline {
		outline = append(outline, OutlineChapterRequest{
			Number:  oc.Number,
			Title:   oc.Title,
			Summary: oc.Summary,
		})
	}
	return &ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Style:       string(p.Style),
		Status:      string(p.Status),
		Outline:     outline,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ProjectListResponse 项目列表响应
type ProjectListResponse struct {
	Projects []*ProjectResponse `json:"projects"`
}

// ToProjectListResponse 转换项目列表响应
func ToProjectListResponse(items []*entity.Project) *ProjectListResponse {
	projects := make([]*ProjectResponse, 0, len(items))
	for _, p := range items {
		projects = append(projects, ToProjectResponse(p))
	}
	return &ProjectListResponse{Projects: projects}
}
