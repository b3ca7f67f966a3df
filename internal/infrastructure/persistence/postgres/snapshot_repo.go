// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/domain/repository"
)

// SnapshotRepository 版本快照仓储实现。只有 INSERT 和 SELECT，没有 UPDATE/DELETE。
type SnapshotRepository struct {
	client *Client
}

// NewSnapshotRepository 创建版本快照仓储
func NewSnapshotRepository(client *Client) *SnapshotRepository {
	return &SnapshotRepository{client: client}
}

// Create 追加快照。(project_id, version_number) 上的唯一索引
// 保证并发写入时版本号不会重复。
func (r *SnapshotRepository) Create(ctx context.Context, snapshot *entity.VersionSnapshot) error {
	ctx, span := tracer.Start(ctx, "postgres.SnapshotRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)

	if err := db.Create(snapshot).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create version snapshot: %w", err)
	}

	return nil
}

// GetLatestVersionNumber 获取项目当前最大版本号，无快照返回 0
func (r *SnapshotRepository) GetLatestVersionNumber(ctx context.Context, projectID string) (int, error) {
	ctx, span := tracer.Start(ctx, "postgres.SnapshotRepository.GetLatestVersionNumber")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var latest int
	err := db.Model(&entity.VersionSnapshot{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&latest).Error
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to get latest version number: %w", err)
	}

	return latest, nil
}

// GetByProjectVersion 按项目与版本号获取快照
func (r *SnapshotRepository) GetByProjectVersion(ctx context.Context, projectID string, versionNumber int) (*entity.VersionSnapshot, error) {
	ctx, span := tracer.Start(ctx, "postgres.SnapshotRepository.GetByProjectVersion")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var snapshot entity.VersionSnapshot
	err := db.First(&snapshot, "project_id = ? AND version_number = ?", projectID, versionNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get version snapshot: %w", err)
	}

	return &snapshot, nil
}

// ListByProject 按版本号降序列出项目快照
func (r *SnapshotRepository) ListByProject(ctx context.Context, projectID string, pagination repository.Pagination) (*repository.PagedResult[*entity.VersionSnapshot], error) {
	ctx, span := tracer.Start(ctx, "postgres.SnapshotRepository.ListByProject")
	defer span.End()

	db := getDB(ctx, r.client.db).Model(&entity.VersionSnapshot{}).Where("project_id = ?", projectID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count version snapshots: %w", err)
	}

	var snapshots []*entity.VersionSnapshot
	err := db.Order("version_number DESC").
		Offset(pagination.Offset()).Limit(pagination.Limit()).
		Find(&snapshots).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list version snapshots: %w", err)
	}

	return repository.NewPagedResult(snapshots, total, pagination), nil
}
