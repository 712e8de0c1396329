// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"

	"inkwell-book-api/internal/domain/entity"
	"inkwell-book-api/internal/domain/repository"
	"inkwell-book-api/internal/interfaces/http/dto"
	apperrors "inkwell-book-api/pkg/errors"
	"inkwell-book-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ProjectHandler 项目处理器
type ProjectHandler struct {
	projectRepo repository.ProjectRepository
	chapterRepo repository.ChapterRepository
	txManager   repository.Transactor
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(projectRepo repository.ProjectRepository, chapterRepo repository.ChapterRepository, txManager repository.Transactor) *ProjectHandler {
	return &ProjectHandler{
		projectRepo: projectRepo,
		chapterRepo: chapterRepo,
		txManager:   txManager,
	}
}

// ListProjects 获取项目列表
// @Summary 获取项目列表
// @Description 分页获取书籍项目列表
// @Tags Projects
// @Accept json
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Success 200 {object} dto.Response[dto.ProjectListResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	result, err := h.projectRepo.List(ctx, c.Query("owner_id"), repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list projects", err)
		dto.InternalError(c, "failed to list projects")
		return
	}

	resp := dto.ToProjectListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// CreateProject 创建项目
// @Summary 创建项目
// @Description 创建新的书籍项目
// @Tags Projects
// @Accept json
// @Produce json
// @Param body body dto.CreateProjectRequest true "项目信息"
// @Success 201 {object} dto.Response[dto.ProjectResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	project := entity.NewProject(c.Query("owner_id"), req.Title)
	project.Description = req.Description
	if req.Style != "" {
		style := entity.WritingStyle(req.Style)
		if !style.Valid() {
			dto.BadRequest(c, "unknown writing style: "+req.Style)
			return
		}
		project.Style = style
	}
	if len(req.Outline) > 0 {
		project.Outline = dto.ToOutline(req.Outline)
		if err := project.ValidateOutline(); err != nil {
			dto.BadRequest(c, "invalid outline: "+err.Error())
			return
		}
	}

	if err := h.projectRepo.Create(ctx, project); err != nil {
		logger.Error(ctx, "failed to create project", err)
		dto.InternalError(c, "failed to create project")
		return
	}

	resp := dto.ToProjectResponse(project)
	dto.Created(c, resp)
}

// GetProject 获取项目详情
// @Summary 获取项目详情
// @Tags Projects
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	project, err := h.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if apperrors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to get project", err)
		dto.InternalError(c, "failed to get project")
		return
	}

	if project == nil {
		dto.NotFound(c, "project not found")
		return
	}

	resp := dto.ToProjectResponse(project)
	dto.Success(c, resp)
}

// UpdateProject 更新项目
// @Summary 更新项目
// @Description 更新项目字段；大纲更新会按章节号对齐章节表，已生成的内容保持不变
// @Tags Projects
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.UpdateProjectRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	project, err := h.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		logger.Error(ctx, "failed to get project", err)
		dto.InternalError(c, "failed to get project")
		return
	}
	if project == nil {
		dto.NotFound(c, "project not found")
		return
	}
	if !project.IsEditable() {
		dto.Conflict(c, "project is not editable in status "+string(project.Status))
		return
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Style != nil {
		style := entity.WritingStyle(*req.Style)
		if !style.Valid() {
			dto.BadRequest(c, "unknown writing style: "+*req.Style)
			return
		}
		project.Style = style
	}

	outlineChanged := req.Outline != nil
	if outlineChanged {
		project.Outline = dto.ToOutline(req.Outline)
		if err := project.ValidateOutline(); err != nil {
			dto.BadRequest(c, "invalid outline: "+err.Error())
			return
		}
	}

	// 大纲变更时在同一事务里对齐章节行，避免项目与章节不一致
	err = h.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := h.projectRepo.Update(txCtx, project); err != nil {
			return err
		}
		if outlineChanged {
			return h.chapterRepo.ReplaceForProject(txCtx, projectID, project.Outline)
		}
		return nil
	})
	if err != nil {
		logger.Error(ctx, "failed to update project", err)
		dto.InternalError(c, "failed to update project")
		return
	}

	resp := dto.ToProjectResponse(project)
	dto.Success(c, resp)
}

// DeleteProject 删除项目
// @Summary 删除项目
// @Tags Projects
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 204 "No Content"
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	if err := h.projectRepo.Delete(ctx, projectID); err != nil {
		if apperrors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to delete project", err)
		dto.InternalError(c, "failed to delete project")
		return
	}

	dto.NoContent(c)
}
