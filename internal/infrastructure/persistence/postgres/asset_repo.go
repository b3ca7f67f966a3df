// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"sitepilot-api/internal/domain/entity"
)

// AssetRepository 上传资产仓储实现
type AssetRepository struct {
	client *Client
}

// NewAssetRepository 创建上传资产仓储
func NewAssetRepository(client *Client) *AssetRepository {
	return &AssetRepository{client: client}
}

// Create 记录上传资产
func (r *AssetRepository) Create(ctx context.Context, asset *entity.UploadedAsset) error {
	ctx, span := tracer.Start(ctx, "postgres.AssetRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)

	if err := db.Create(asset).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create uploaded asset: %w", err)
	}

	return nil
}

// ListByProject 获取项目资产列表
func (r *AssetRepository) ListByProject(ctx context.Context, projectID string) ([]*entity.UploadedAsset, error) {
	ctx, span := tracer.Start(ctx, "postgres.AssetRepository.ListByProject")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var assets []*entity.UploadedAsset
	err := db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&assets).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list uploaded assets: %w", err)
	}

	return assets, nil
}
