// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"sitepilot-api/internal/domain/entity"
)

// RevisionFilter 修订请求过滤条件
type RevisionFilter struct {
	ProjectID string
	ClientID  string
	Status    entity.RevisionStatus
}

// RevisionRepository 修订请求仓储接口。只增改，不删除。
type RevisionRepository interface {
	// Create 创建修订请求
	Create(ctx context.Context, req *entity.RevisionRequest) error

	// GetByID 根据 ID 获取修订请求；不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.RevisionRequest, error)

	// Update 更新修订请求（仅 triage 路径调用）
	Update(ctx context.Context, req *entity.RevisionRequest) error

	// ListTriageOrder 按分诊顺序列出：状态序升序，其次优先级序升序
	ListTriageOrder(ctx context.Context, filter *RevisionFilter, pagination Pagination) (*PagedResult[*entity.RevisionRequest], error)
}
