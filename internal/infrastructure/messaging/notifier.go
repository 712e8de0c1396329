package messaging

import (
	"context"

	"inkwell-book-api/internal/domain/entity"
)

// StreamNotifier 基于通知流的运行结果通知器
type StreamNotifier struct {
	producer *Producer
}

// NewStreamNotifier 创建通知器
func NewStreamNotifier(producer *Producer) *StreamNotifier {
	return &StreamNotifier{producer: producer}
}

// RunCompleted 通知运行正常结束
func (n *StreamNotifier) RunCompleted(ctx context.Context, job *entity.GenerationJob) error {
	_, err := n.producer.PublishNotification(ctx, &NotificationMessage{
		Kind:           "run_completed",
		JobID:          job.ID,
		ProjectID:      job.ProjectID,
		ChaptersDone:   job.ChaptersDone,
		ChaptersFailed: job.ChaptersFailed,
	})
	return err
}

// RunAborted 通知运行因致命错误终止
func (n *StreamNotifier) RunAborted(ctx context.Context, job *entity.GenerationJob, reason string) error {
	_, err := n.producer.PublishNotification(ctx, &NotificationMessage{
		Kind:           "run_aborted",
		JobID:          job.ID,
		ProjectID:      job.ProjectID,
		ChaptersDone:   job.ChaptersDone,
		ChaptersFailed: job.ChaptersFailed,
		Reason:         reason,
	})
	return err
}

// RunCancelled 通知运行被用户取消
func (n *StreamNotifier) RunCancelled(ctx context.Context, job *entity.GenerationJob) error {
	_, err := n.producer.PublishNotification(ctx, &NotificationMessage{
		Kind:           "run_cancelled",
		JobID:          job.ID,
		ProjectID:      job.ProjectID,
		ChaptersDone:   job.ChaptersDone,
		ChaptersFailed: job.ChaptersFailed,
	})
	return err
}
