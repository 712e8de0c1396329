package generation

import (
	"context"
	"fmt"

	"inkwell-book-api/internal/domain/entity"
	"inkwell-book-api/internal/domain/repository"
	"inkwell-book-api/internal/infrastructure/messaging"
	apperrors "inkwell-book-api/pkg/errors"
	"inkwell-book-api/pkg/logger"
)

// Service 生成任务编排服务，由 HTTP 接口层调用
type Service struct {
	projects repository.ProjectRepository
	jobs     repository.JobRepository
	producer *messaging.Producer
}

// NewService 创建编排服务
func NewService(projects repository.ProjectRepository, jobs repository.JobRepository, producer *messaging.Producer) *Service {
	return &Service{
		projects: projects,
		jobs:     jobs,
		producer: producer,
	}
}

// StartRun 为项目发起一轮章节生成
// 同一项目存在非终态任务时拒绝并返回冲突错误
func (s *Service) StartRun(ctx context.Context, projectID, styleStr string) (*entity.GenerationJob, error) {
	log := logger.FromContext(ctx)

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load project")
	}
	if project == nil {
		return nil, apperrors.New(apperrors.CodeProjectNotFound, "project not found").WithDetail(projectID)
	}
	if len(project.Outline) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "project has no outline")
	}

	style, err := ParseStyle(styleStr)
	if err != nil {
		return nil, err
	}
	if styleStr == "" && project.Style.Valid() {
		style = project.Style
	}

	active, err := s.jobs.GetActiveByProject(ctx, projectID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to check active jobs")
	}
	if active != nil {
		return nil, apperrors.New(apperrors.CodeRunActive, "generation already in progress").WithDetail(active.ID)
	}

	job := entity.NewGenerationJob(projectID, style)
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create job")
	}

	if _, err := s.producer.PublishRunStart(ctx, &messaging.GenerationRunMessage{
		JobID:     job.ID,
		ProjectID: projectID,
		Style:     string(style),
	}); err != nil {
		// 入队失败时回收任务，避免占住并发额度
		job.Abort("enqueue failed")
		if updateErr := s.jobs.Update(ctx, job); updateErr != nil {
			log.Error("failed to reclaim job after enqueue failure", "error", updateErr)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeServiceUnavailable, "failed to enqueue generation run")
	}

	log.Info("generation run enqueued", "job_id", job.ID, "style", style)
	return job, nil
}

// CancelRun 取消生成任务
// pending/running 的任务标记为 cancelled，worker 在下一章开始前感知并停止
func (s *Service) CancelRun(ctx context.Context, jobID string) (*entity.GenerationJob, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load job")
	}
	if job == nil {
		return nil, apperrors.New(apperrors.CodeJobNotFound, "generation job not found").WithDetail(jobID)
	}
	if job.Status.IsTerminal() {
		return nil, apperrors.New(apperrors.CodeConflict, "job already finished").WithDetail(string(job.Status))
	}

	if err := s.jobs.UpdateStatus(ctx, jobID, entity.JobStatusCancelled); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to cancel job")
	}

	job.Cancel()
	logger.FromContext(ctx).Info("generation run cancel requested", "job_id", jobID)
	return job, nil
}

// GetJob 查询任务
func (s *Service) GetJob(ctx context.Context, jobID string) (*entity.GenerationJob, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load job")
	}
	if job == nil {
		return nil, apperrors.New(apperrors.CodeJobNotFound, "generation job not found").WithDetail(jobID)
	}
	return job, nil
}

// ListJobs 查询项目任务列表
func (s *Service) ListJobs(ctx context.Context, projectID string, pagination repository.Pagination) (*repository.PagedResult[*entity.GenerationJob], error) {
	result, err := s.jobs.ListByProject(ctx, projectID, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, fmt.Sprintf("failed to list jobs for project %s", projectID))
	}
	return result, nil
}
