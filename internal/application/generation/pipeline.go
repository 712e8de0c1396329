package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inkwell-book-api/internal/domain/entity"
	"inkwell-book-api/internal/domain/repository"
	"inkwell-book-api/internal/infrastructure/power"
	"inkwell-book-api/pkg/logger"
	"inkwell-book-api/pkg/metrics"
)

// 失败章节的占位文本，直接展示给读者
const (
	// PlaceholderRetry 瞬时错误耗尽重试后的占位内容
	PlaceholderRetry = "Generation failed. Please retry."
	// PlaceholderFatal 致命终止时的占位内容
	PlaceholderFatal = "Stopped due to API error."
)

// CacheInvalidator 章节落库后的缓存失效端口
type CacheInvalidator interface {
	InvalidateProject(ctx context.Context, projectID string) error
}

// Pipeline 顺序章节生成管线
// 单逻辑线程逐章推进：跳过已完成章节，按重试策略调用生成端口，
// 瞬时失败只隔离单章，致命失败终止整轮。每章结果独立落库，
// 宿主中断后重跑即可从断点续作
type Pipeline struct {
	projects repository.ProjectRepository
	chapters repository.ChapterRepository
	sources  repository.SourceMaterialRepository
	jobs     repository.JobRepository

	generator  Generator
	reconciler *Reconciler
	retry      *RetryPolicy
	guard      *Guard
	notifier   Notifier
	wakeLock   power.Coordinator
	cache      CacheInvalidator

	chapterTimeout time.Duration
}

// PipelineOptions 管线依赖
type PipelineOptions struct {
	Projects repository.ProjectRepository
	Chapters repository.ChapterRepository
	Sources  repository.SourceMaterialRepository
	Jobs     repository.JobRepository

	Generator  Generator
	Reconciler *Reconciler
	Retry      *RetryPolicy
	Guard      *Guard
	Notifier   Notifier
	WakeLock   power.Coordinator
	Cache      CacheInvalidator

	ChapterTimeout time.Duration
}

// NewPipeline 创建生成管线
func NewPipeline(opts PipelineOptions) *Pipeline {
	if opts.ChapterTimeout <= 0 {
		opts.ChapterTimeout = 2 * time.Minute
	}
	return &Pipeline{
		projects:       opts.Projects,
		chapters:       opts.Chapters,
		sources:        opts.Sources,
		jobs:           opts.Jobs,
		generator:      opts.Generator,
		reconciler:     opts.Reconciler,
		retry:          opts.Retry,
		guard:          opts.Guard,
		notifier:       opts.Notifier,
		wakeLock:       opts.WakeLock,
		cache:          opts.Cache,
		chapterTimeout: opts.ChapterTimeout,
	}
}

// Run 执行一轮章节生成
// 返回非 nil 错误表示运行未到达终态，消息应留待重投；
// 终态（完成/致命终止/取消/拒绝）一律返回 nil
func (p *Pipeline) Run(ctx context.Context, jobID string) error {
	ctx = logger.WithContext(ctx, logger.JobIDKey, jobID)
	log := logger.FromContext(ctx)

	job, err := p.jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		log.Warn("job not found, dropping message")
		return nil
	}
	if job.Status.IsTerminal() {
		// 消息重投后任务可能已被其他 worker 跑完
		log.Info("job already in terminal state, skipping", "status", job.Status)
		return nil
	}

	ctx = logger.WithContext(ctx, logger.ProjectIDKey, job.ProjectID)
	log = logger.FromContext(ctx)

	project, err := p.projects.GetByID(ctx, job.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		log.Error("project gone, aborting job")
		job.Abort("project not found")
		if err := p.jobs.Update(ctx, job); err != nil {
			return fmt.Errorf("failed to abort orphan job: %w", err)
		}
		return nil
	}

	if !p.guard.TryAcquire(project.ID) {
		// 本进程已有同项目运行在途，留待重投
		log.Warn("project already generating in this process")
		metrics.RunsTotal.WithLabelValues("rejected").Inc()
		return fmt.Errorf("project %s already generating", project.ID)
	}
	defer p.guard.Release(project.ID)

	// 长运行期间阻止宿主休眠；不可用时降级继续
	lock, err := p.wakeLock.Acquire(ctx, fmt.Sprintf("generating book %s", project.ID))
	if err != nil {
		log.Warn("wake lock acquisition failed, continuing", "error", err)
	}
	if lock != nil {
		defer lock.Release()
	}

	chapters, err := p.reconciler.Reconcile(ctx, project)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	sources, err := p.sources.ListByProject(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("failed to load source materials: %w", err)
	}

	job.Start(len(chapters))
	if err := p.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to mark job running: %w", err)
	}
	p.projects.UpdateStatus(ctx, project.ID, entity.ProjectStatusWriting)

	metrics.ActiveRuns.Inc()
	defer metrics.ActiveRuns.Dec()

	log.Info("generation run started",
		"chapters_total", len(chapters),
		"style", job.Style,
	)

	var done []*entity.Chapter
	for _, chapter := range chapters {
		// 每章开始前检查取消：进程关停走 ctx，用户取消走任务状态
		if err := ctx.Err(); err != nil {
			log.Info("run interrupted by shutdown", "cursor", job.Cursor)
			return err
		}
		cancelled, err := p.checkCancelled(ctx, job)
		if err != nil {
			return err
		}
		if cancelled {
			return p.finishCancelled(ctx, job)
		}

		// 已完成章节直接跳过，generating 残留视为未完成重新生成
		if chapter.IsDone() {
			job.ChaptersDone++
			job.Cursor = chapter.Number
			done = append(done, chapter)
			metrics.ChapterGenerationTotal.WithLabelValues("skipped").Inc()
			continue
		}

		outcome, err := p.generateChapter(ctx, job, project, chapter, sources, done)
		if err != nil {
			return err
		}

		switch outcome {
		case outcomeDone:
			job.ChaptersDone++
			done = append(done, chapter)
		case outcomeFailed:
			job.ChaptersFailed++
		case outcomeAborted:
			return p.finishAborted(ctx, job, chapter)
		case outcomeCancelled:
			return p.finishCancelled(ctx, job)
		}

		// 进度持久化只写进度字段，API 侧并发写入的 cancelled 不会被覆盖
		job.Cursor = chapter.Number
		if err := p.jobs.UpdateProgress(ctx, job.ID, job.Cursor, job.ChaptersDone, job.ChaptersFailed); err != nil {
			return fmt.Errorf("failed to persist job progress: %w", err)
		}
	}

	return p.finishCompleted(ctx, job, project, chapters)
}

type chapterOutcome int

const (
	outcomeDone chapterOutcome = iota
	outcomeFailed
	outcomeAborted
	outcomeCancelled
)

// generateChapter 生成单章并落库
// 返回错误仅代表基础设施故障（落库失败等），生成失败一律转化为 outcome
func (p *Pipeline) generateChapter(
	ctx context.Context,
	job *entity.GenerationJob,
	project *entity.Project,
	chapter *entity.Chapter,
	sources []*entity.SourceMaterial,
	previous []*entity.Chapter,
) (chapterOutcome, error) {
	ctx = logger.WithContext(ctx, logger.ChapterKey, fmt.Sprintf("%d", chapter.Number))
	log := logger.FromContext(ctx)

	chapter.MarkGenerating()
	if err := p.chapters.UpdateStatus(ctx, chapter.ID, entity.ChapterStatusGenerating); err != nil {
		return 0, fmt.Errorf("failed to mark chapter generating: %w", err)
	}

	req := &Request{
		Project: project,
		Chapter: entity.OutlineChapter{
			Number:  chapter.Number,
			Title:   chapter.Title,
			Summary: chapter.Summary,
		},
		Style:    job.Style,
		Sources:  sources,
		Previous: previous,
	}

	start := time.Now()
	result, attempts, err := p.retry.Execute(ctx, chapter.Number, func(ctx context.Context) (*Result, error) {
		callCtx, cancel := context.WithTimeout(ctx, p.chapterTimeout)
		defer cancel()
		return p.generator.GenerateChapter(callCtx, req)
	})
	elapsed := time.Since(start)

	if err == nil {
		chapter.MarkDone(result.Content, &entity.GenerationMetadata{
			Model:       result.Model,
			Provider:    result.Provider,
			Attempts:    attempts,
			TokensUsed:  result.TokensUsed,
			DurationMS:  elapsed.Milliseconds(),
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		})
		if err := p.chapters.UpdateResult(ctx, chapter); err != nil {
			return 0, fmt.Errorf("failed to persist chapter %d: %w", chapter.Number, err)
		}
		p.invalidateCache(ctx, project.ID)

		log.Info("chapter generated",
			"attempts", attempts,
			"duration", elapsed,
			"words", chapter.WordCount,
		)
		metrics.ChapterGenerationTotal.WithLabelValues("done").Inc()
		metrics.ChapterGenerationDuration.WithLabelValues(string(job.Style)).Observe(elapsed.Seconds())
		return outcomeDone, nil
	}

	// 进程关停：不落终态，留待重投续作
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return 0, err
	}

	var fatalErr *FatalError
	if errors.As(err, &fatalErr) {
		chapter.MarkFailed(PlaceholderFatal, fatalErr.Err.Error())
		if err := p.chapters.UpdateResult(ctx, chapter); err != nil {
			return 0, fmt.Errorf("failed to persist fatal chapter %d: %w", chapter.Number, err)
		}
		p.invalidateCache(ctx, project.ID)
		metrics.ChapterGenerationTotal.WithLabelValues("aborted").Inc()
		return outcomeAborted, nil
	}

	var exhaustedErr *ExhaustedError
	if errors.As(err, &exhaustedErr) {
		chapter.MarkFailed(PlaceholderRetry, exhaustedErr.Error())
		if err := p.chapters.UpdateResult(ctx, chapter); err != nil {
			return 0, fmt.Errorf("failed to persist failed chapter %d: %w", chapter.Number, err)
		}
		p.invalidateCache(ctx, project.ID)

		log.Warn("chapter failed after exhausting retries",
			"attempts", exhaustedErr.Attempts,
			"error", exhaustedErr.Err,
		)
		metrics.ChapterGenerationTotal.WithLabelValues("failed").Inc()
		return outcomeFailed, nil
	}

	// 其余情况视为基础设施故障，留待重投
	return 0, err
}

// checkCancelled 读取任务最新状态，检测用户取消
func (p *Pipeline) checkCancelled(ctx context.Context, job *entity.GenerationJob) (bool, error) {
	fresh, err := p.jobs.GetByID(ctx, job.ID)
	if err != nil {
		return false, fmt.Errorf("failed to refresh job: %w", err)
	}
	if fresh == nil {
		return false, fmt.Errorf("job %s disappeared mid-run", job.ID)
	}
	return fresh.Status == entity.JobStatusCancelled, nil
}

func (p *Pipeline) finishCompleted(ctx context.Context, job *entity.GenerationJob, project *entity.Project, chapters []*entity.Chapter) error {
	job.Complete()
	if err := p.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	allDone := job.ChaptersFailed == 0 && job.ChaptersDone == len(chapters)
	if allDone {
		p.projects.UpdateStatus(ctx, project.ID, entity.ProjectStatusCompleted)
	}

	if err := p.notifier.RunCompleted(ctx, job); err != nil {
		logger.FromContext(ctx).Error("failed to send completion notification", "error", err)
	}

	logger.FromContext(ctx).Info("generation run completed",
		"chapters_done", job.ChaptersDone,
		"chapters_failed", job.ChaptersFailed,
	)
	metrics.RunsTotal.WithLabelValues("completed").Inc()
	return nil
}

func (p *Pipeline) finishAborted(ctx context.Context, job *entity.GenerationJob, chapter *entity.Chapter) error {
	reason := fmt.Sprintf("fatal error on chapter %d: %s", chapter.Number, chapter.FailureMsg)
	job.Abort(reason)
	if err := p.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to abort job: %w", err)
	}

	if err := p.notifier.RunAborted(ctx, job, reason); err != nil {
		logger.FromContext(ctx).Error("failed to send abort notification", "error", err)
	}

	logger.FromContext(ctx).Error("generation run aborted", "reason", reason)
	metrics.RunsTotal.WithLabelValues("aborted").Inc()
	return nil
}

func (p *Pipeline) finishCancelled(ctx context.Context, job *entity.GenerationJob) error {
	job.Cancel()
	if err := p.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to finalize cancelled job: %w", err)
	}

	if err := p.notifier.RunCancelled(ctx, job); err != nil {
		logger.FromContext(ctx).Error("failed to send cancel notification", "error", err)
	}

	logger.FromContext(ctx).Info("generation run cancelled", "cursor", job.Cursor)
	metrics.RunsTotal.WithLabelValues("cancelled").Inc()
	return nil
}

func (p *Pipeline) invalidateCache(ctx context.Context, projectID string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.InvalidateProject(ctx, projectID); err != nil {
		logger.FromContext(ctx).Warn("cache invalidation failed", "error", err)
	}
}
