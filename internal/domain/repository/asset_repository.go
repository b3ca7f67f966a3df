// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"sitepilot-api/internal/domain/entity"
)

// AssetRepository 上传资产仓储接口
type AssetRepository interface {
	// Create 记录上传资产
	Create(ctx context.Context, asset *entity.UploadedAsset) error

	// ListByProject 获取项目资产列表，按创建时间升序
	ListByProject(ctx context.Context, projectID string) ([]*entity.UploadedAsset, error)
}
