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

// TaskRepository 建站任务仓储实现
type TaskRepository struct {
	client *Client
}

// NewTaskRepository 创建建站任务仓储
func NewTaskRepository(client *Client) *TaskRepository {
	return &TaskRepository{client: client}
}

// Create 创建任务
func (r *TaskRepository) Create(ctx context.Context, task *entity.BuildTask) error {
	ctx, span := tracer.Start(ctx, "postgres.TaskRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)

	if err := db.Create(task).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create build task: %w", err)
	}

	return nil
}

// GetByID 根据 ID 获取任务
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*entity.BuildTask, error) {
	ctx, span := tracer.Start(ctx, "postgres.TaskRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var task entity.BuildTask
	err := db.First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get build task: %w", err)
	}

	return &task, nil
}

// Update 更新任务
func (r *TaskRepository) Update(ctx context.Context, task *entity.BuildTask) error {
	ctx, span := tracer.Start(ctx, "postgres.TaskRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)

	result := db.Model(&entity.BuildTask{}).Where("id = ?", task.ID).
		Select("status", "priority", "staging_url", "completed_date", "updated_at").
		Updates(task)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to update build task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("build task not found: %s", task.ID)
	}

	return nil
}

// ListByProject 获取项目任务列表
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string, pagination repository.Pagination) (*repository.PagedResult[*entity.BuildTask], error) {
	ctx, span := tracer.Start(ctx, "postgres.TaskRepository.ListByProject")
	defer span.End()

	db := getDB(ctx, r.client.db).Model(&entity.BuildTask{}).Where("project_id = ?", projectID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count build tasks: %w", err)
	}

	var tasks []*entity.BuildTask
	err := db.Order("created_at ASC").
		Offset(pagination.Offset()).Limit(pagination.Limit()).
		Find(&tasks).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list build tasks: %w", err)
	}

	return repository.NewPagedResult(tasks, total, pagination), nil
}
