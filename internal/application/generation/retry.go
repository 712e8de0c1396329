package generation

import (
	"context"
	"fmt"
	"time"

	"inkwell-book-api/pkg/logger"
	"inkwell-book-api/pkg/metrics"
)

// Sleeper 可中断的休眠函数，测试中可替换
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext 上下文感知休眠，取消时立即返回
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FatalError 致命错误包装，触发整轮运行终止
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal generation error: %v", e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// ExhaustedError 重试预算耗尽
type ExhaustedError struct {
	ChapterNumber int
	Attempts      int
	Err           error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("chapter %d generation failed after %d attempts: %v", e.ChapterNumber, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// RetryPolicy 单章生成的有界指数退避策略
// 第 n 次尝试失败后休眠 base * 2^n（n 从 1 起），致命错误不休眠不重试
type RetryPolicy struct {
	MaxAttempts int
	Base        time.Duration
	Classifier  Classifier
	Sleep       Sleeper
}

// NewRetryPolicy 创建重试策略
func NewRetryPolicy(maxAttempts int, base time.Duration, classifier Classifier) *RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if base <= 0 {
		base = time.Second
	}
	if classifier == nil {
		classifier = NewDefaultClassifier()
	}
	return &RetryPolicy{
		MaxAttempts: maxAttempts,
		Base:        base,
		Classifier:  classifier,
		Sleep:       SleepContext,
	}
}

// Delay 计算第 attempt 次尝试失败后的退避时长
func (p *RetryPolicy) Delay(attempt int) time.Duration {
	return p.Base * time.Duration(1<<uint(attempt))
}

// Execute 执行单章生成，返回结果与实际尝试次数
// 致命错误以 *FatalError 返回，预算耗尽以 *ExhaustedError 返回，
// 取消则原样返回 ctx 错误
func (p *RetryPolicy) Execute(ctx context.Context, chapterNumber int, op func(ctx context.Context) (*Result, error)) (*Result, int, error) {
	log := logger.FromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, attempt, nil
		}
		lastErr = err

		// 宿主关停或任务取消不计入分类
		if ctx.Err() != nil {
			return nil, attempt, ctx.Err()
		}

		if p.Classifier.Classify(err) == SeverityFatal {
			log.Error("fatal error during chapter generation",
				"chapter", chapterNumber,
				"attempt", attempt,
				"error", err,
			)
			return nil, attempt, &FatalError{Err: err}
		}

		if attempt == p.MaxAttempts {
			break
		}

		delay := p.Delay(attempt)
		log.Warn("transient error, backing off before retry",
			"chapter", chapterNumber,
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
		metrics.ChapterRetriesTotal.Inc()

		if err := p.Sleep(ctx, delay); err != nil {
			return nil, attempt, err
		}
	}

	return nil, p.MaxAttempts, &ExhaustedError{
		ChapterNumber: chapterNumber,
		Attempts:      p.MaxAttempts,
		Err:           lastErr,
	}
}
