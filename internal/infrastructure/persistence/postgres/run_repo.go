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

// RunRepository 生成运行仓储实现
type RunRepository struct {
	client *Client
}

// NewRunRepository 创建生成运行仓储
func NewRunRepository(client *Client) *RunRepository {
	return &RunRepository{client: client}
}

// Create 创建运行
func (r *RunRepository) Create(ctx context.Context, run *entity.GenerationRun) error {
	ctx, span := tracer.Start(ctx, "postgres.RunRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)

	if err := db.Create(run).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create generation run: %w", err)
	}

	return nil
}

// GetByID 根据 ID 获取运行
func (r *RunRepository) GetByID(ctx context.Context, id string) (*entity.GenerationRun, error) {
	ctx, span := tracer.Start(ctx, "postgres.RunRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var run entity.GenerationRun
	err := db.First(&run, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get generation run: %w", err)
	}

	return &run, nil
}

// Update 更新运行
func (r *RunRepository) Update(ctx context.Context, run *entity.GenerationRun) error {
	ctx, span := tracer.Start(ctx, "postgres.RunRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)

	result := db.Model(&entity.GenerationRun{}).Where("id = ?", run.ID).
		Select("status", "steps", "progress", "failed_step", "error_detail",
			"started_at", "completed_at", "updated_at").
		Updates(run)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to update generation run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("generation run not found: %s", run.ID)
	}

	return nil
}

// ListByProject 获取项目的运行历史
func (r *RunRepository) ListByProject(ctx context.Context, projectID string, pagination repository.Pagination) (*repository.PagedResult[*entity.GenerationRun], error) {
	ctx, span := tracer.Start(ctx, "postgres.RunRepository.ListByProject")
	defer span.End()

	db := getDB(ctx, r.client.db).Model(&entity.GenerationRun{}).Where("project_id = ?", projectID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count generation runs: %w", err)
	}

	var runs []*entity.GenerationRun
	err := db.Order("created_at DESC").
		Offset(pagination.Offset()).Limit(pagination.Limit()).
		Find(&runs).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list generation runs: %w", err)
	}

	return repository.NewPagedResult(runs, total, pagination), nil
}

// GetActiveByProject 获取项目当前未结束的运行
func (r *RunRepository) GetActiveByProject(ctx context.Context, projectID string) (*entity.GenerationRun, error) {
	ctx, span := tracer.Start(ctx, "postgres.RunRepository.GetActiveByProject")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var run entity.GenerationRun
	err := db.Where("project_id = ? AND status IN ?", projectID,
		[]entity.RunStatus{entity.RunStatusPending, entity.RunStatusRunning}).
		Order("created_at DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get active generation run: %w", err)
	}

	return &run, nil
}
