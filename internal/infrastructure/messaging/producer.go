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

// PublishGenRun 发布生成运行任务，由 job-worker 异步执行
func (p *Producer) PublishGenRun(ctx context.Context, job *GenRunMessage) (string, error) {
	msg, err := NewMessage(job.RunID, "site_generation", job.ProjectID, job.RunID, job)
	if err != nil {
		return "", err
	}

	if job.RequestID != "" {
		msg.SetMetadata("request_id", job.RequestID)
	}

	return p.Publish(ctx, StreamGenRuns, msg)
}

// PublishNotification 发布客户通知事件。调用方在状态提交之后发布，
// 失败只记日志，不回滚业务变更。
func (p *Producer) PublishNotification(ctx context.Context, event *NotificationMessage) (string, error) {
	msg, err := NewMessage(event.ProjectID+":"+event.Event, "notification", event.ProjectID, "", event)
	if err != nil {
		return "", err
	}

	return p.Publish(ctx, StreamNotifications, msg)
}

// GenRunMessage 生成运行消息
type GenRunMessage struct {
	RunID       string `json:"run_id"`
	ProjectID   string `json:"project_id"`
	InitiatedBy string `json:"initiated_by"`
	Regenerate  bool   `json:"regenerate"`
	RequestID   string `json:"request_id,omitempty"`
}

// NotificationMessage 客户通知消息
type NotificationMessage struct {
	ProjectID   string                 `json:"project_id"`
	RecipientID string                 `json:"recipient_id"`
	Event       string                 `json:"event"`
	FromStatus  string                 `json:"from_status,omitempty"`
	ToStatus    string                 `json:"to_status,omitempty"`
	Detail      map[string]interface{} `json:"detail,omitempty"`
}
