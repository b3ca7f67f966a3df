// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"sitepilot-api/internal/domain/entity"
)

// ClarificationRepository 澄清轮次仓储接口
type ClarificationRepository interface {
	// Create 创建澄清轮次
	Create(ctx context.Context, round *entity.ClarificationRound) error

	// GetByID 根据 ID 获取轮次；不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.ClarificationRound, error)

	// GetOpenByProject 获取项目当前未合并的轮次；没有时返回 (nil, nil)
	GetOpenByProject(ctx context.Context, projectID string) (*entity.ClarificationRound, error)

	// Update 更新轮次（写入答案、标记合并）
	Update(ctx context.Context, round *entity.ClarificationRound) error
}
