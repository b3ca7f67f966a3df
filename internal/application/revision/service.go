// Package revision 实现修订请求队列：客户提交，管理员分诊。
package revision

import (
	"context"
	"strings"

	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/domain/repository"
	apperrors "sitepilot-api/pkg/errors"
	"sitepilot-api/pkg/logger"
	"sitepilot-api/pkg/metrics"
)

// Service 修订队列应用服务
type Service struct {
	revisions repository.RevisionRepository
	projects  repository.ProjectRepository
}

// NewService 创建修订队列服务
func NewService(revisions repository.RevisionRepository, projects repository.ProjectRepository) *Service {
	return &Service{
		revisions: revisions,
		projects:  projects,
	}
}

// File 客户提交修订请求。只在 review 及之后的状态允许，
// 提交绝不改变项目状态。
func (s *Service) File(ctx context.Context, projectID, clientID, description string, requestType entity.RevisionRequestType, priority entity.RevisionPriority) (*entity.RevisionRequest, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "description is required")
	}
	if !entity.ValidRevisionType(requestType) {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "unknown request type").
			WithDetail(string(requestType))
	}
	if priority != "" && !entity.ValidRevisionPriority(priority) {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "unknown priority").
			WithDetail(string(priority))
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load project")
	}
	if project == nil {
		return nil, apperrors.New(apperrors.CodeProjectNotFound, "project not found")
	}
	if project.OwnerID != clientID {
		return nil, apperrors.New(apperrors.CodePermissionDenied, "project belongs to another client")
	}
	if !project.Status.ReviewOrLater() {
		return nil, apperrors.New(apperrors.CodeInvalidTransition,
			"revisions can only be filed from review onward").
			WithDetail(string(project.Status))
	}

	req := entity.NewRevisionRequest(projectID, clientID, description, requestType, priority)
	if err := s.revisions.Create(ctx, req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to file revision request")
	}

	metrics.RevisionsFiled.WithLabelValues(string(req.RequestType), string(req.Priority)).Inc()
	logger.Info(ctx, "revision request filed",
		"revision_id", req.ID,
		"project_id", projectID,
		"request_type", req.RequestType,
		"priority", req.Priority,
	)
	return req, nil
}

// Triage 管理员分诊：status/admin_response 的唯一写入口。
// completed/rejected 是终态，重开需要另行提交新请求。
func (s *Service) Triage(ctx context.Context, revisionID string, newStatus entity.RevisionStatus, adminResponse string) (*entity.RevisionRequest, error) {
	if !entity.ValidRevisionStatus(newStatus) {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "unknown revision status").
			WithDetail(string(newStatus))
	}

	req, err := s.revisions.GetByID(ctx, revisionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load revision request")
	}
	if req == nil {
		return nil, apperrors.New(apperrors.CodeRevisionNotFound, "revision request not found")
	}
	if req.IsTerminal() {
		return nil, apperrors.New(apperrors.CodeRevisionTerminal,
			"revision request is already closed").WithDetail(string(req.Status))
	}

	req.Status = newStatus
	if adminResponse = strings.TrimSpace(adminResponse); adminResponse != "" {
		req.AdminResponse = adminResponse
	}
	if err := s.revisions.Update(ctx, req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to triage revision request")
	}

	logger.Info(ctx, "revision request triaged",
		"revision_id", req.ID,
		"status", req.Status,
	)
	return req, nil
}

// List 按分诊顺序列出修订请求：未处理的最前，其次越紧急越靠前
func (s *Service) List(ctx context.Context, filter *repository.RevisionFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.RevisionRequest], error) {
	result, err := s.revisions.ListTriageOrder(ctx, filter, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list revision requests")
	}
	return result, nil
}

// Get 查询单个修订请求
func (s *Service) Get(ctx context.Context, revisionID string) (*entity.RevisionRequest, error) {
	req, err := s.revisions.GetByID(ctx, revisionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load revision request")
	}
	if req == nil {
		return nil, apperrors.New(apperrors.CodeRevisionNotFound, "revision request not found")
	}
	return req, nil
}
