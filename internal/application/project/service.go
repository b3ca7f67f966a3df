// Package project 实现项目的创建、查询与输入维护。
// 状态推进不在这里：一律走 lifecycle / clarify / pipeline。
package project

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/domain/repository"
	"sitepilot-api/internal/infrastructure/persistence/redis"
	"sitepilot-api/internal/infrastructure/storage"
	apperrors "sitepilot-api/pkg/errors"
	"sitepilot-api/pkg/logger"
)

const projectCacheTTL = 30 * time.Second

// CreateInput 创建项目的输入
type CreateInput struct {
	CompanyName     string
	GoalDescription string
	Goals           []entity.GoalTag
	StylePreference string
	BrandHints      string
	CompetitorHints string
}

// UpdateInput 更新描述性字段的输入。nil 字段表示不修改。
type UpdateInput struct {
	CompanyName     *string
	GoalDescription *string
	Goals           []entity.GoalTag
	StylePreference *string
	BrandHints      *string
	CompetitorHints *string
}

// Service 项目应用服务
type Service struct {
	projects repository.ProjectRepository
	assets   repository.AssetRepository
	cache    *redis.Cache
	store    storage.ObjectStore
}

// NewService 创建项目服务
func NewService(projects repository.ProjectRepository, assets repository.AssetRepository, cache *redis.Cache, store storage.ObjectStore) *Service {
	return &Service{
		projects: projects,
		assets:   assets,
		cache:    cache,
		store:    store,
	}
}

// Create 创建项目，初始状态 pending
func (s *Service) Create(ctx context.Context, ownerID string, in *CreateInput) (*entity.Project, error) {
	companyName := strings.TrimSpace(in.CompanyName)
	if companyName == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "company_name is required")
	}
	for _, g := range in.Goals {
		if !entity.ValidGoalTag(g) {
			return nil, apperrors.New(apperrors.CodeInvalidParam, "unknown goal tag").
				WithDetail(string(g))
		}
	}

	p := entity.NewProject(ownerID, companyName)
	p.GoalDescription = strings.TrimSpace(in.GoalDescription)
	p.Goals = in.Goals
	p.StylePreference = strings.TrimSpace(in.StylePreference)
	p.BrandHints = strings.TrimSpace(in.BrandHints)
	p.CompetitorHints = strings.TrimSpace(in.CompetitorHints)

	if err := s.projects.Create(ctx, p); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create project")
	}

	logger.Info(ctx, "project created",
		"project_id", p.ID,
		"owner_id", ownerID,
	)
	return p, nil
}

// Get 查询项目，短 TTL 缓存吸收评审页面的轮询
func (s *Service) Get(ctx context.Context, projectID string) (*entity.Project, error) {
	if s.cache == nil {
		return s.load(ctx, projectID)
	}

	data, err := s.cache.GetOrLoadSafe(ctx, redis.BuildProjectKey(projectID), projectCacheTTL, func() (interface{}, error) {
		return s.load(ctx, projectID)
	})
	if err != nil {
		return nil, err
	}

	var p entity.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to decode cached project")
	}
	return &p, nil
}

// GetOwned 查询并校验归属
func (s *Service) GetOwned(ctx context.Context, projectID, clientID string) (*entity.Project, error) {
	p, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != clientID {
		return nil, apperrors.New(apperrors.CodePermissionDenied, "project belongs to another client")
	}
	return p, nil
}

// UpdateInputs 更新描述性输入字段。
// 仅 pending/questions 阶段允许，approve 之后字段彻底锁定。
func (s *Service) UpdateInputs(ctx context.Context, projectID, clientID string, in *UpdateInput) (*entity.Project, error) {
	p, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != clientID {
		return nil, apperrors.New(apperrors.CodePermissionDenied, "project belongs to another client")
	}
	if !p.InputsEditable() {
		return nil, apperrors.New(apperrors.CodeProjectLocked,
			"input fields are locked").WithDetail(string(p.Status))
	}

	if in.CompanyName != nil {
		name := strings.TrimSpace(*in.CompanyName)
		if name == "" {
			return nil, apperrors.New(apperrors.CodeInvalidParam, "company_name cannot be empty")
		}
		p.CompanyName = name
	}
	if in.GoalDescription != nil {
		p.GoalDescription = strings.TrimSpace(*in.GoalDescription)
	}
	if in.Goals != nil {
		for _, g := range in.Goals {
			if !entity.ValidGoalTag(g) {
				return nil, apperrors.New(apperrors.CodeInvalidParam, "unknown goal tag").
					WithDetail(string(g))
			}
		}
		p.Goals = in.Goals
	}
	if in.StylePreference != nil {
		p.StylePreference = strings.TrimSpace(*in.StylePreference)
	}
	if in.BrandHints != nil {
		p.BrandHints = strings.TrimSpace(*in.BrandHints)
	}
	if in.CompetitorHints != nil {
		p.CompetitorHints = strings.TrimSpace(*in.CompetitorHints)
	}

	if err := s.projects.Update(ctx, p); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update project")
	}
	s.invalidate(ctx, projectID)
	return p, nil
}

// List 管理员视角的项目列表
func (s *Service) List(ctx context.Context, filter *repository.ProjectFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	result, err := s.projects.List(ctx, filter, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list projects")
	}
	return result, nil
}

// ListByOwner 客户自己的项目列表
func (s *Service) ListByOwner(ctx context.Context, ownerID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	result, err := s.projects.ListByOwner(ctx, ownerID, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list projects")
	}
	return result, nil
}

// UploadAsset 上传品牌资产并登记
func (s *Service) UploadAsset(ctx context.Context, projectID, clientID, fileName string, r io.Reader) (*entity.UploadedAsset, error) {
	p, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != clientID {
		return nil, apperrors.New(apperrors.CodePermissionDenied, "project belongs to another client")
	}

	url, size, err := s.store.Save(ctx, projectID, fileName, r)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorageError, "failed to store upload")
	}

	asset := &entity.UploadedAsset{
		ProjectID: projectID,
		FileName:  fileName,
		URL:       url,
		SizeBytes: size,
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to record uploaded asset")
	}
	return asset, nil
}

// ListAssets 项目资产列表
func (s *Service) ListAssets(ctx context.Context, projectID string) ([]*entity.UploadedAsset, error) {
	assets, err := s.assets.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list uploaded assets")
	}
	return assets, nil
}

// Invalidate 状态变更后由调用方触发缓存失效
func (s *Service) Invalidate(ctx context.Context, projectID string) {
	s.invalidate(ctx, projectID)
}

func (s *Service) invalidate(ctx context.Context, projectID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProject(ctx, projectID); err != nil {
		logger.Warn(ctx, "failed to invalidate project cache",
			"project_id", projectID,
			"error", err.Error(),
		)
	}
}

func (s *Service) load(ctx context.Context, projectID string) (*entity.Project, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load project")
	}
	if p == nil {
		return nil, apperrors.New(apperrors.CodeProjectNotFound, "project not found")
	}
	return p, nil
}
