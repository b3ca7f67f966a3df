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

// 分诊排序：先按状态序（pending < in_progress < 终态），再按优先级序（urgent 最前），
// 最后按创建时间升序保证稳定。
const triageOrderExpr = `
	CASE status
		WHEN 'pending' THEN 0
		WHEN 'in_progress' THEN 1
		ELSE 2
	END,
	CASE priority
		WHEN 'urgent' THEN 0
		WHEN 'high' THEN 1
		WHEN 'medium' THEN 2
		ELSE 3
	END,
	created_at ASC`

// RevisionRepository 修订请求仓储实现
type RevisionRepository struct {
	client *Client
}

// NewRevisionRepository 创建修订请求仓储
func NewRevisionRepository(client *Client) *RevisionRepository {
	return &RevisionRepository{client: client}
}

// Create 创建修订请求
func (r *RevisionRepository) Create(ctx context.Context, req *entity.RevisionRequest) error {
	ctx, span := tracer.Start(ctx, "postgres.RevisionRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)

	if err := db.Create(req).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create revision request: %w", err)
	}

	return nil
}

// GetByID 根据 ID 获取修订请求
func (r *RevisionRepository) GetByID(ctx context.Context, id string) (*entity.RevisionRequest, error) {
	ctx, span := tracer.Start(ctx, "postgres.RevisionRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var req entity.RevisionRequest
	err := db.First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get revision request: %w", err)
	}

	return &req, nil
}

// Update 更新修订请求
func (r *RevisionRepository) Update(ctx context.Context, req *entity.RevisionRequest) error {
	ctx, span := tracer.Start(ctx, "postgres.RevisionRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)

	result := db.Model(&entity.RevisionRequest{}).Where("id = ?", req.ID).
		Select("status", "priority", "admin_response", "updated_at").
		Updates(req)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to update revision request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("revision request not found: %s", req.ID)
	}

	return nil
}

// ListTriageOrder 按分诊顺序列出修订请求
func (r *RevisionRepository) ListTriageOrder(ctx context.Context, filter *repository.RevisionFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.RevisionRequest], error) {
	ctx, span := tracer.Start(ctx, "postgres.RevisionRepository.ListTriageOrder")
	defer span.End()

	db := getDB(ctx, r.client.db).Model(&entity.RevisionRequest{})

	if filter != nil {
		if filter.ProjectID != "" {
			db = db.Where("project_id = ?", filter.ProjectID)
		}
		if filter.ClientID != "" {
			db = db.Where("client_id = ?", filter.ClientID)
		}
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count revision requests: %w", err)
	}

	var reqs []*entity.RevisionRequest
	err := db.Order(triageOrderExpr).
		Offset(pagination.Offset()).Limit(pagination.Limit()).
		Find(&reqs).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list revision requests: %w", err)
	}

	return repository.NewPagedResult(reqs, total, pagination), nil
}
