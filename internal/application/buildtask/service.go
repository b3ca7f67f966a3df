// Package buildtask 实现建站任务看板：固定目录的运维任务，
// 与生成流水线和修订队列相互独立。
package buildtask

import (
	"context"
	"strings"

	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/domain/repository"
	apperrors "sitepilot-api/pkg/errors"
	"sitepilot-api/pkg/logger"
	"sitepilot-api/pkg/metrics"
)

// Service 任务看板应用服务
type Service struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
}

// NewService 创建任务看板服务
func NewService(tasks repository.TaskRepository, projects repository.ProjectRepository) *Service {
	return &Service{
		tasks:    tasks,
		projects: projects,
	}
}

// Add 按目录添加任务，目录外的类型一律拒绝
func (s *Service) Add(ctx context.Context, projectID string, taskType entity.BuildTaskType) (*entity.BuildTask, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load project")
	}
	if project == nil {
		return nil, apperrors.New(apperrors.CodeProjectNotFound, "project not found")
	}

	task, ok := entity.NewBuildTask(projectID, taskType)
	if !ok {
		return nil, apperrors.New(apperrors.CodeUnknownTaskType, "unknown task type").
			WithDetail(string(taskType))
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create build task")
	}

	metrics.BuildTasksTotal.WithLabelValues(string(task.TaskType), string(task.Status)).Inc()
	logger.Info(ctx, "build task created",
		"task_id", task.ID,
		"project_id", projectID,
		"task_type", task.TaskType,
	)
	return task, nil
}

// SetStatus 变更任务状态。completed_date 当且仅当进入 completed 时设置。
func (s *Service) SetStatus(ctx context.Context, taskID string, status entity.BuildTaskStatus, stagingURL string) (*entity.BuildTask, error) {
	if !entity.ValidBuildTaskStatus(status) {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "unknown task status").
			WithDetail(string(status))
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load build task")
	}
	if task == nil {
		return nil, apperrors.New(apperrors.CodeTaskNotFound, "build task not found")
	}

	task.SetStatus(status)
	if stagingURL = strings.TrimSpace(stagingURL); stagingURL != "" {
		task.StagingURL = stagingURL
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update build task")
	}

	metrics.BuildTasksTotal.WithLabelValues(string(task.TaskType), string(task.Status)).Inc()
	return task, nil
}

// List 项目任务列表
func (s *Service) List(ctx context.Context, projectID string, pagination repository.Pagination) (*repository.PagedResult[*entity.BuildTask], error) {
	result, err := s.tasks.ListByProject(ctx, projectID, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list build tasks")
	}
	return result, nil
}

// Catalogue 任务目录：类型 -> 展示名
func (s *Service) Catalogue() map[entity.BuildTaskType]string {
	out := make(map[entity.BuildTaskType]string, len(entity.BuildTaskCatalogue))
	for k, v := range entity.BuildTaskCatalogue {
		out[k] = v
	}
	return out
}
