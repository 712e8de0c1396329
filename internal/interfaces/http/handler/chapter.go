package handler

import (
	"strconv"

	"inkwell-book-api/internal/domain/repository"
	"inkwell-book-api/internal/interfaces/http/dto"
	"inkwell-book-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ChapterHandler 章节处理器
type ChapterHandler struct {
	chapterRepo repository.ChapterRepository
	projectRepo repository.ProjectRepository
}

// NewChapterHandler 创建章节处理器
func NewChapterHandler(chapterRepo repository.ChapterRepository, projectRepo repository.ProjectRepository) *ChapterHandler {
	return &ChapterHandler{
		chapterRepo: chapterRepo,
		projectRepo: projectRepo,
	}
}

// ListChapters 获取项目章节列表
// @Summary 获取章节列表
// @Description 按章节号升序返回项目的全部章节
// @Tags Chapters
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.ChapterListResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/chapters [get]
func (h *ChapterHandler) ListChapters(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

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

	chapters, err := h.chapterRepo.ListByProject(ctx, projectID)
	if err != nil {
		logger.Error(ctx, "failed to list chapters", err)
		dto.InternalError(c, "failed to list chapters")
		return
	}

	dto.Success(c, dto.ToChapterListResponse(chapters))
}

// GetChapter 获取章节详情
// @Summary 获取章节详情
// @Tags Chapters
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param number path int true "章节号"
// @Success 200 {object} dto.Response[dto.ChapterResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/chapters/{number} [get]
func (h *ChapterHandler) GetChapter(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		dto.BadRequest(c, "invalid chapter number: "+c.Param("number"))
		return
	}

	chapter, err := h.chapterRepo.GetByNumber(ctx, projectID, number)
	if err != nil {
		logger.Error(ctx, "failed to get chapter", err)
		dto.InternalError(c, "failed to get chapter")
		return
	}
	if chapter == nil {
		dto.NotFound(c, "chapter not found")
		return
	}

	dto.Success(c, dto.ToChapterResponse(chapter))
}
