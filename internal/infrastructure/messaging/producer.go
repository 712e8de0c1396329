// Package messaging 提供消息队列实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishRunStart 发布章节生成运行
func (p *Producer) PublishRunStart(ctx context.Context, run *GenerationRunMessage) (string, error) {
	msg, err := NewMessage(run.JobID, "chapter_run", run.ProjectID, run)
	if err != nil {
		return "", err
	}

	msg.SetMetadata("style", run.Style)
	return p.Publish(ctx, StreamBookGen, msg)
}

// PublishNotification 发布运行结束通知
func (p *Producer) PublishNotification(ctx context.Context, n *NotificationMessage) (string, error) {
	msg, err := NewMessage(n.JobID, n.Kind, n.ProjectID, n)
	if err != nil {
		return "", err
	}

	return p.Publish(ctx, StreamBookNotify, msg)
}

// GenerationRunMessage 章节生成运行消息
type GenerationRunMessage struct {
	JobID     string `json:"job_id"`
	ProjectID string `json:"project_id"`
	Style     string `json:"style"`
}

// NotificationMessage 运行通知消息
// Kind 取值 run_completed / run_aborted / run_cancelled
type NotificationMessage struct {
	Kind           string `json:"kind"`
	JobID          string `json:"job_id"`
	ProjectID      string `json:"project_id"`
	ChaptersDone   int    `json:"chapters_done"`
	ChaptersFailed int    `json:"chapters_failed"`
	Reason         string `json:"reason,omitempty"`
}
