// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"sitepilot-api/internal/domain/entity"
)

// SnapshotRepository 版本快照仓储接口。只追加，永不更新或删除。
type SnapshotRepository interface {
	// Create 追加快照（要求 version_number 按项目单调递增）
	Create(ctx context.Context, snapshot *entity.VersionSnapshot) error

	// GetLatestVersionNumber 获取项目当前最大版本号；无快照时返回 0
	GetLatestVersionNumber(ctx context.Context, projectID string) (int, error)

	// GetByProjectVersion 按项目与版本号获取快照；不存在时返回 (nil, nil)
	GetByProjectVersion(ctx context.Context, projectID string, versionNumber int) (*entity.VersionSnapshot, error)

	// ListByProject 按版本号降序列出项目快照
	ListByProject(ctx context.Context, projectID string, pagination Pagination) (*PagedResult[*entity.VersionSnapshot], error)
}
