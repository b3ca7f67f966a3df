// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"sitepilot-api/internal/domain/entity"
)

// ProjectFilter 项目过滤条件
type ProjectFilter struct {
	OwnerID string
	Status  entity.ProjectStatus
}

// ProjectRepository 项目仓储接口
type ProjectRepository interface {
	// Create 创建项目
	Create(ctx context.Context, project *entity.Project) error

	// GetByID 根据 ID 获取项目；不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.Project, error)

	// Update 整体更新项目（描述字段、产物、状态、上线地址）
	Update(ctx context.Context, project *entity.Project) error

	// Delete 删除项目
	Delete(ctx context.Context, id string) error

	// List 获取项目列表
	List(ctx context.Context, filter *ProjectFilter, pagination Pagination) (*PagedResult[*entity.Project], error)

	// ListByOwner 获取客户的项目列表
	ListByOwner(ctx context.Context, ownerID string, pagination Pagination) (*PagedResult[*entity.Project], error)
}
