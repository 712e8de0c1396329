package handler

import (
	"inkwell-book-api/internal/application/generation"
	"inkwell-book-api/internal/domain/repository"
	"inkwell-book-api/internal/interfaces/http/dto"
	apperrors "inkwell-book-api/pkg/errors"
	"inkwell-book-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// JobHandler 生成任务处理器
type JobHandler struct {
	genService *generation.Service
}

// NewJobHandler 创建生成任务处理器
func NewJobHandler(genService *generation.Service) *JobHandler {
	return &JobHandler{genService: genService}
}

// StartRun 发起章节生成
// @Summary 发起章节生成
// @Description 为项目入队一轮顺序章节生成；同一项目同时只允许一个活跃任务
// @Tags Jobs
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.StartRunRequest false "生成参数"
// @Success 202 {object} dto.Response[dto.JobResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/generate [post]
func (h *JobHandler) StartRun(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	var req dto.StartRunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			dto.BadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	job, err := h.genService.StartRun(ctx, projectID, req.Style)
	if err != nil {
		if apperrors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to start generation run", err)
		dto.InternalError(c, "failed to start generation run")
		return
	}

	dto.Accepted(c, dto.ToJobResponse(job))
}

// CancelRun 取消生成任务
// @Summary 取消生成任务
// @Description 标记任务为 cancelled，worker 在下一章开始前停止
// @Tags Jobs
// @Accept json
// @Produce json
// @Param jid path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.JobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/jobs/{jid}/cancel [post]
func (h *JobHandler) CancelRun(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := dto.BindJobID(c)

	job, err := h.genService.CancelRun(ctx, jobID)
	if err != nil {
		if apperrors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to cancel generation run", err)
		dto.InternalError(c, "failed to cancel generation run")
		return
	}

	dto.Success(c, dto.ToJobResponse(job))
}

// GetJob 查询任务详情
// @Summary 查询任务详情
// @Tags Jobs
// @Accept json
// @Produce json
// @Param jid path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.JobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/jobs/{jid} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := dto.BindJobID(c)

	job, err := h.genService.GetJob(ctx, jobID)
	if err != nil {
		if apperrors.IsAppError(err) {
			dto.AppError(c, err)
			return
		}
		logger.Error(ctx, "failed to get job", err)
		dto.InternalError(c, "failed to get job")
		return
	}

	dto.Success(c, dto.ToJobResponse(job))
}

// ListJobs 查询项目任务列表
// @Summary 查询项目任务列表
// @Tags Jobs
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Success 200 {object} dto.Response[dto.JobListResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	pageReq := dto.BindPage(c)

	result, err := h.genService.ListJobs(ctx, projectID, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list jobs", err)
		dto.InternalError(c, "failed to list jobs")
		return
	}

	resp := dto.ToJobListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}
