// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"sitepilot-api/internal/domain/entity"
)

// ClarificationRepository 澄清轮次仓储实现
type ClarificationRepository struct {
	client *Client
}

// NewClarificationRepository 创建澄清轮次仓储
func NewClarificationRepository(client *Client) *ClarificationRepository {
	return &ClarificationRepository{client: client}
}

// Create 创建澄清轮次
func (r *ClarificationRepository) Create(ctx context.Context, round *entity.ClarificationRound) error {
	ctx, span := tracer.Start(ctx, "postgres.ClarificationRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)

	if err := db.Create(round).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create clarification round: %w", err)
	}

	return nil
}

// GetByID 根据 ID 获取轮次
func (r *ClarificationRepository) GetByID(ctx context.Context, id string) (*entity.ClarificationRound, error) {
	ctx, span := tracer.Start(ctx, "postgres.ClarificationRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var round entity.ClarificationRound
	err := db.First(&round, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get clarification round: %w", err)
	}

	return &round, nil
}

// GetOpenByProject 获取项目当前未合并的轮次
func (r *ClarificationRepository) GetOpenByProject(ctx context.Context, projectID string) (*entity.ClarificationRound, error) {
	ctx, span := tracer.Start(ctx, "postgres.ClarificationRepository.GetOpenByProject")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var round entity.ClarificationRound
	err := db.Where("project_id = ? AND status IN ?", projectID,
		[]entity.ClarificationStatus{entity.ClarificationStatusOpen, entity.ClarificationStatusAnswered}).
		Order("created_at DESC").
		First(&round).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get open clarification round: %w", err)
	}

	return &round, nil
}

// Update 更新轮次
func (r *ClarificationRepository) Update(ctx context.Context, round *entity.ClarificationRound) error {
	ctx, span := tracer.Start(ctx, "postgres.ClarificationRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)

	result := db.Model(&entity.ClarificationRound{}).Where("id = ?", round.ID).
		Select("answers", "status", "updated_at").
		Updates(round)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to update clarification round: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("clarification round not found: %s", round.ID)
	}

	return nil
}
