// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"sitepilot-api/internal/domain/entity"
)

// RunRepository 生成运行仓储接口
type RunRepository interface {
	// Create 创建运行
	Create(ctx context.Context, run *entity.GenerationRun) error

	// GetByID 根据 ID 获取运行；不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.GenerationRun, error)

	// Update 更新运行（步骤、进度、状态）
	Update(ctx context.Context, run *entity.GenerationRun) error

	// ListByProject 获取项目的运行历史
	ListByProject(ctx context.Context, projectID string, pagination Pagination) (*PagedResult[*entity.GenerationRun], error)

	// GetActiveByProject 获取项目当前 pending/running 的运行；没有时返回 (nil, nil)
	GetActiveByProject(ctx context.Context, projectID string) (*entity.GenerationRun, error)
}
