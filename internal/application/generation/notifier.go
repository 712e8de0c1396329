package generation

import (
	"context"

	"inkwell-book-api/internal/domain/entity"
)

// Notifier 运行结果通知端口
// 每轮运行最多产生一条终态通知：完成、致命终止或取消
type Notifier interface {
	// RunCompleted 通知运行正常结束（可能包含失败章节）
	RunCompleted(ctx context.Context, job *entity.GenerationJob) error

	// RunAborted 通知运行因致命错误终止
	RunAborted(ctx context.Context, job *entity.GenerationJob, reason string) error

	// RunCancelled 通知运行被用户取消
	RunCancelled(ctx context.Context, job *entity.GenerationJob) error
}
