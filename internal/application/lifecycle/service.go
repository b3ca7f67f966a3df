package lifecycle

import (
	"context"
	"strings"

	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/domain/repository"
	apperrors "sitepilot-api/pkg/errors"
	"sitepilot-api/pkg/logger"
	"sitepilot-api/pkg/metrics"
)

// Notifier 客户通知端口。在状态提交之后调用，失败只记日志，
// 绝不阻塞或回滚触发它的转移。
type Notifier interface {
	StatusChanged(ctx context.Context, project *entity.Project, from, to entity.ProjectStatus, event string)
}

// Service 生命周期应用服务：面向 HTTP 的审批与上线操作，
// 以及供其它服务复用的事件应用入口。
type Service struct {
	projects repository.ProjectRepository
	tx       repository.Transactor
	notifier Notifier
}

// NewService 创建生命周期服务
func NewService(projects repository.ProjectRepository, tx repository.Transactor, notifier Notifier) *Service {
	return &Service{
		projects: projects,
		tx:       tx,
		notifier: notifier,
	}
}

// Apply 将事件应用到项目（仅内存），非法转移返回错误。
// 调用方负责在事务内持久化项目。
func Apply(ctx context.Context, project *entity.Project, event Event) (entity.ProjectStatus, error) {
	from := project.Status
	next, err := Next(from, event)
	if err != nil {
		metrics.StatusTransitionsTotal.WithLabelValues(string(from), "", "rejected").Inc()
		logger.Warn(ctx, "illegal status transition rejected",
			"project_id", project.ID,
			"from", from,
			"event", event,
		)
		return "", err
	}
	project.Status = next
	metrics.StatusTransitionsTotal.WithLabelValues(string(from), string(next), "ok").Inc()
	return next, nil
}

// Approve 客户批准项目：review -> approved，此后描述性输入字段锁定
func (s *Service) Approve(ctx context.Context, projectID, clientID string) (*entity.Project, error) {
	var project *entity.Project

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		project, err = s.loadOwnedProject(ctx, projectID, clientID)
		if err != nil {
			return err
		}

		if _, err := Apply(ctx, project, EventApprove); err != nil {
			return err
		}

		return s.projects.Update(ctx, project)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, project, entity.ProjectStatusReview, entity.ProjectStatusApproved, string(EventApprove))
	return project, nil
}

// GoLive 管理员上线项目：approved -> live，同时写入上线地址。
// live_url 只在这条转移上写入。
func (s *Service) GoLive(ctx context.Context, projectID, liveURL, adminID string) (*entity.Project, error) {
	liveURL = strings.TrimSpace(liveURL)
	if liveURL == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "live_url is required")
	}

	var project *entity.Project

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		project, err = s.loadProject(ctx, projectID)
		if err != nil {
			return err
		}

		if _, err := Apply(ctx, project, EventGoLive); err != nil {
			return err
		}

		project.LiveURL = &liveURL
		return s.projects.Update(ctx, project)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "project went live",
		"project_id", project.ID,
		"live_url", liveURL,
		"admin_id", adminID,
	)
	s.notify(ctx, project, entity.ProjectStatusApproved, entity.ProjectStatusLive, string(EventGoLive))
	return project, nil
}

// notify 提交后通知，失败不影响已完成的转移
func (s *Service) notify(ctx context.Context, project *entity.Project, from, to entity.ProjectStatus, event string) {
	if s.notifier == nil {
		return
	}
	s.notifier.StatusChanged(ctx, project, from, to, event)
}

func (s *Service) loadProject(ctx context.Context, projectID string) (*entity.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load project")
	}
	if project == nil {
		return nil, apperrors.New(apperrors.CodeProjectNotFound, "project not found")
	}
	return project, nil
}

func (s *Service) loadOwnedProject(ctx context.Context, projectID, clientID string) (*entity.Project, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != clientID {
		return nil, apperrors.New(apperrors.CodePermissionDenied, "project belongs to another client")
	}
	return project, nil
}
