// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"sitepilot-api/internal/domain/entity"
)

// TaskRepository 建站任务仓储接口
type TaskRepository interface {
	// Create 创建任务
	Create(ctx context.Context, task *entity.BuildTask) error

	// GetByID 根据 ID 获取任务；不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.BuildTask, error)

	// Update 更新任务
	Update(ctx context.Context, task *entity.BuildTask) error

	// ListByProject 获取项目任务列表，按创建时间升序
	ListByProject(ctx context.Context, projectID string, pagination Pagination) (*PagedResult[*entity.BuildTask], error)
}
