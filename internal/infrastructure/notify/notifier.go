// Package notify 实现客户通知：状态转移提交后投递事件到通知流，
// 由 job-worker 消费并落地（当前为结构化日志占位，邮件/站内信由外部系统接）。
package notify

import (
	"context"

	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/infrastructure/messaging"
	"sitepilot-api/pkg/logger"
	"sitepilot-api/pkg/metrics"
)

// StreamNotifier 把状态变更事件发布到通知流。
// fire-and-forget：发布失败只记日志，永不影响已提交的转移。
type StreamNotifier struct {
	producer *messaging.Producer
}

// NewStreamNotifier 创建流式通知器
func NewStreamNotifier(producer *messaging.Producer) *StreamNotifier {
	return &StreamNotifier{producer: producer}
}

// StatusChanged 发布状态变更通知
func (n *StreamNotifier) StatusChanged(ctx context.Context, project *entity.Project, from, to entity.ProjectStatus, event string) {
	msg := &messaging.NotificationMessage{
		ProjectID:   project.ID,
		RecipientID: project.OwnerID,
		Event:       event,
		FromStatus:  string(from),
		ToStatus:    string(to),
	}
	if project.LiveURL != nil {
		msg.Detail = map[string]interface{}{"live_url": *project.LiveURL}
	}

	if _, err := n.producer.PublishNotification(ctx, msg); err != nil {
		metrics.NotificationsTotal.WithLabelValues(event, "publish_failed").Inc()
		logger.Error(ctx, "failed to publish notification", err,
			"project_id", project.ID,
			"event", event,
		)
		return
	}
	metrics.NotificationsTotal.WithLabelValues(event, "queued").Inc()
}

// Dispatcher 通知流的消费端处理器
type Dispatcher struct{}

// NewDispatcher 创建通知分发器
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Handle 处理一条通知消息
func (d *Dispatcher) Handle(ctx context.Context, msg *messaging.Message) error {
	var event messaging.NotificationMessage
	if err := msg.UnmarshalPayload(&event); err != nil {
		// 格式坏的消息直接吞掉，重试也救不回来
		logger.Warn(ctx, "dropping malformed notification", "message_id", msg.ID)
		metrics.NotificationsTotal.WithLabelValues("unknown", "malformed").Inc()
		return nil
	}

	// 实际投递渠道（邮件等）由外部系统订阅同一流接入
	logger.Info(ctx, "notification dispatched",
		"project_id", event.ProjectID,
		"recipient_id", event.RecipientID,
		"event", event.Event,
		"from", event.FromStatus,
		"to", event.ToStatus,
	)
	metrics.NotificationsTotal.WithLabelValues(event.Event, "dispatched").Inc()
	return nil
}
