// Package version 实现版本台账：产物的只追加快照与恢复。
package version

import (
	"context"
	"strings"

	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/domain/repository"
	apperrors "sitepilot-api/pkg/errors"
	"sitepilot-api/pkg/logger"
)

// Service 版本台账应用服务
type Service struct {
	snapshots repository.SnapshotRepository
	projects  repository.ProjectRepository
	tx        repository.Transactor
}

// NewService 创建版本台账服务
func NewService(snapshots repository.SnapshotRepository, projects repository.ProjectRepository, tx repository.Transactor) *Service {
	return &Service{
		snapshots: snapshots,
		projects:  projects,
		tx:        tx,
	}
}

// Save 追加快照。版本号取当前最大值加一，从 1 开始无空洞；
// MAX 查询与 INSERT 在同一事务内，并发写入靠唯一索引兜底。
func (s *Service) Save(ctx context.Context, projectID, description, author string) (*entity.VersionSnapshot, error) {
	var snapshot *entity.VersionSnapshot

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		project, err := s.loadProject(ctx, projectID)
		if err != nil {
			return err
		}
		if !project.HasArtifact() {
			return apperrors.New(apperrors.CodeInvalidParam,
				"project has no artifact to snapshot")
		}

		latest, err := s.snapshots.GetLatestVersionNumber(ctx, projectID)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to resolve version number")
		}

		if strings.TrimSpace(description) == "" {
			description = "manual save"
		}
		snapshot = entity.NewVersionSnapshot(projectID, latest+1, project.Artifact, description, author)
		if err := s.snapshots.Create(ctx, snapshot); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to append version snapshot")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "version snapshot saved",
		"project_id", projectID,
		"version", snapshot.VersionNumber,
	)
	return snapshot, nil
}

// Restore 把指定版本的产物拷回项目。
// 只覆盖当前产物，更高版本的快照原样保留，之后仍可「恢复回未来」。
// 项目尚未进入 review 之前不存在快照，也不允许恢复。
func (s *Service) Restore(ctx context.Context, projectID string, versionNumber int, author string) (*entity.SiteArtifact, error) {
	var artifact *entity.SiteArtifact

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		project, err := s.loadProject(ctx, projectID)
		if err != nil {
			return err
		}
		if !project.Status.ReviewOrLater() {
			return apperrors.New(apperrors.CodeInvalidTransition,
				"cannot restore before review").WithDetail(string(project.Status))
		}

		snapshot, err := s.snapshots.GetByProjectVersion(ctx, projectID, versionNumber)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load version snapshot")
		}
		if snapshot == nil {
			return apperrors.New(apperrors.CodeVersionNotFound, "version snapshot not found")
		}

		project.Artifact = snapshot.Artifact.Clone()
		if err := s.projects.Update(ctx, project); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to restore artifact")
		}
		artifact = project.Artifact
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "artifact restored from snapshot",
		"project_id", projectID,
		"version", versionNumber,
		"author", author,
	)
	return artifact, nil
}

// List 按版本号降序列出快照
func (s *Service) List(ctx context.Context, projectID string, pagination repository.Pagination) (*repository.PagedResult[*entity.VersionSnapshot], error) {
	result, err := s.snapshots.ListByProject(ctx, projectID, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list version snapshots")
	}
	return result, nil
}

// Get 按版本号查询快照
func (s *Service) Get(ctx context.Context, projectID string, versionNumber int) (*entity.VersionSnapshot, error) {
	snapshot, err := s.snapshots.GetByProjectVersion(ctx, projectID, versionNumber)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load version snapshot")
	}
	if snapshot == nil {
		return nil, apperrors.New(apperrors.CodeVersionNotFound, "version snapshot not found")
	}
	return snapshot, nil
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
