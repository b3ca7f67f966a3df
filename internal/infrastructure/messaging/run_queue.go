// Package messaging 提供消息队列实现
package messaging

import (
	"context"

	"sitepilot-api/pkg/logger"
)

// RunQueue 生成运行入队适配器，实现流水线服务的入队端口
type RunQueue struct {
	producer *Producer
}

// NewRunQueue 创建运行队列
func NewRunQueue(producer *Producer) *RunQueue {
	return &RunQueue{producer: producer}
}

// EnqueueRun 投递运行消息到生成流
func (q *RunQueue) EnqueueRun(ctx context.Context, runID, projectID, initiatedBy string, regenerate bool) error {
	reqID := ""
	if v := ctx.Value(logger.RequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			reqID = s
		}
	}

	_, err := q.producer.PublishGenRun(ctx, &GenRunMessage{
		RunID:       runID,
		ProjectID:   projectID,
		InitiatedBy: initiatedBy,
		Regenerate:  regenerate,
		RequestID:   reqID,
	})
	return err
}
