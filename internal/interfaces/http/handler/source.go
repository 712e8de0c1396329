package handler

import (
	"inkwell-book-api/internal/domain/entity"
	"inkwell-book-api/internal/domain/repository"
	"inkwell-book-api/internal/interfaces/http/dto"
	"inkwell-book-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SourceHandler 素材处理器
type SourceHandler struct {
	sourceRepo  repository.SourceMaterialRepository
	projectRepo repository.ProjectRepository
}

// NewSourceHandler 创建素材处理器
func NewSourceHandler(sourceRepo repository.SourceMaterialRepository, projectRepo repository.ProjectRepository) *SourceHandler {
	return &SourceHandler{
		sourceRepo:  sourceRepo,
		projectRepo: projectRepo,
	}
}

// ListSources 获取项目素材列表
// @Summary 获取素材列表
// @Tags Sources
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.SourceListResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/sources [get]
func (h *SourceHandler) ListSources(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	sources, err := h.sourceRepo.ListByProject(ctx, projectID)
	if err != nil {
		logger.Error(ctx, "failed to list sources", err)
		dto.InternalError(c, "failed to list sources")
		return
	}

	dto.Success(c, dto.ToSourceListResponse(sources))
}

// CreateSource 创建素材
// @Summary 创建素材
// @Description 为项目添加笔记、访谈转写或图片描述素材
// @Tags Sources
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.CreateSourceRequest true "素材内容"
// @Success 201 {object} dto.Response[dto.SourceResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/sources [post]
func (h *SourceHandler) CreateSource(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	var req dto.CreateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	kind := entity.SourceKind(req.Kind)
	if !kind.Valid() {
		dto.BadRequest(c, "unknown source kind: "+req.Kind)
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

	material := entity.NewSourceMaterial(projectID, kind, req.Title, req.Content)
	if err := h.sourceRepo.Create(ctx, material); err != nil {
		logger.Error(ctx, "failed to create source material", err)
		dto.InternalError(c, "failed to create source material")
		return
	}

	dto.Created(c, dto.ToSourceResponse(material))
}

// UpdateSource 更新素材
// @Summary 更新素材
// @Tags Sources
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param sid path string true "素材 ID"
// @Param body body dto.UpdateSourceRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.SourceResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/sources/{sid} [put]
func (h *SourceHandler) UpdateSource(c *gin.Context) {
	ctx := c.Request.Context()
	sourceID := c.Param("sid")

	var req dto.UpdateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	material, err := h.sourceRepo.GetByID(ctx, sourceID)
	if err != nil {
		logger.Error(ctx, "failed to get source material", err)
		dto.InternalError(c, "failed to get source material")
		return
	}
	if material == nil {
		dto.NotFound(c, "source material not found")
		return
	}

	if req.Kind != nil {
		kind := entity.SourceKind(*req.Kind)
		if !kind.Valid() {
			dto.BadRequest(c, "unknown source kind: "+*req.Kind)
			return
		}
		material.Kind = kind
	}
	if req.Title != nil {
		material.Title = *req.Title
	}
	if req.Content != nil {
		material.Content = *req.Content
	}

	if err := h.sourceRepo.Update(ctx, material); err != nil {
		logger.Error(ctx, "failed to update source material", err)
		dto.InternalError(c, "failed to update source material")
		return
	}

	dto.Success(c, dto.ToSourceResponse(material))
}

// DeleteSource 删除素材
// @Summary 删除素材
// @Tags Sources
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param sid path string true "素材 ID"
// @Success 204 "No Content"
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/sources/{sid} [delete]
func (h *SourceHandler) DeleteSource(c *gin.Context) {
	ctx := c.Request.Context()
	sourceID := c.Param("sid")

	if err := h.sourceRepo.Delete(ctx, sourceID); err != nil {
		logger.Error(ctx, "failed to delete source material", err)
		dto.InternalError(c, "failed to delete source material")
		return
	}

	dto.NoContent(c)
}
