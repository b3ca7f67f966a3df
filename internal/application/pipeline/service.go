// Package pipeline 实现网站生成流水线：按固定顺序执行生成步骤，
// 校验每步输出，成功后一次性提交产物、版本快照与状态转移。
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sitepilot-api/internal/application/generation"
	"sitepilot-api/internal/application/lifecycle"
	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/domain/repository"
	apperrors "sitepilot-api/pkg/errors"
	"sitepilot-api/pkg/logger"
	"sitepilot-api/pkg/metrics"
)

// RunEnqueuer 运行入队端口，由 Redis Stream 生产者实现
type RunEnqueuer interface {
	EnqueueRun(ctx context.Context, runID, projectID, initiatedBy string, regenerate bool) error
}

// Service 流水线应用服务。HTTP 侧负责建运行与入队，
// job-worker 侧调用 Execute 真正跑步骤。
type Service struct {
	projects  repository.ProjectRepository
	runs      repository.RunRepository
	snapshots repository.SnapshotRepository
	tx        repository.Transactor
	generator generation.StepGenerator
	enqueuer  RunEnqueuer
	notifier  lifecycle.Notifier

	designEnabled bool
}

// NewService 创建流水线服务
func NewService(
	projects repository.ProjectRepository,
	runs repository.RunRepository,
	snapshots repository.SnapshotRepository,
	tx repository.Transactor,
	generator generation.StepGenerator,
	enqueuer RunEnqueuer,
	notifier lifecycle.Notifier,
	designEnabled bool,
) *Service {
	return &Service{
		projects:      projects,
		runs:          runs,
		snapshots:     snapshots,
		tx:            tx,
		generator:     generator,
		enqueuer:      enqueuer,
		notifier:      notifier,
		designEnabled: designEnabled,
	}
}

// StepList 固定步骤清单。design 步骤可按配置省略，
// 前三步已覆盖产物的必须字段。
func (s *Service) StepList() []entity.StepName {
	steps := []entity.StepName{entity.StepStructure, entity.StepSEO, entity.StepContent}
	if s.designEnabled {
		steps = append(steps, entity.StepDesign)
	}
	return steps
}

// BeginRun 在调用方事务内为项目创建一次运行。
// 前置条件：项目状态已经转移到 generating。
func (s *Service) BeginRun(ctx context.Context, project *entity.Project, initiatedBy string) (*entity.GenerationRun, error) {
	active, err := s.runs.GetActiveByProject(ctx, project.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to check active run")
	}
	if active != nil {
		return nil, apperrors.New(apperrors.CodeConflict, "a generation run is already in progress").
			WithDetail(active.ID)
	}

	run := entity.NewGenerationRun(project.ID, initiatedBy, s.StepList())
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create generation run")
	}
	return run, nil
}

// Enqueue 在事务提交后把运行投递给 job-worker。
// 投递失败只记日志：运行停在 pending，管理员可重新触发。
func (s *Service) Enqueue(ctx context.Context, run *entity.GenerationRun, regenerate bool) {
	if err := s.enqueuer.EnqueueRun(ctx, run.ID, run.ProjectID, run.InitiatedBy, regenerate); err != nil {
		logger.Error(ctx, "failed to enqueue generation run", err,
			"run_id", run.ID,
			"project_id", run.ProjectID,
		)
	}
}

// Regenerate 管理员显式触发重新生成：review -> generating 并开新运行。
// 项目停在 generating 且没有进行中的运行（上次运行失败）时不做状态转移，
// 直接开一次新的运行作为重试。
func (s *Service) Regenerate(ctx context.Context, projectID, adminID string) (*entity.GenerationRun, error) {
	var (
		project      *entity.Project
		run          *entity.GenerationRun
		transitioned bool
	)

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		project, err = s.projects.GetByID(ctx, projectID)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load project")
		}
		if project == nil {
			return apperrors.New(apperrors.CodeProjectNotFound, "project not found")
		}

		if project.Status != entity.ProjectStatusGenerating {
			if _, err := lifecycle.Apply(ctx, project, lifecycle.EventRegenerate); err != nil {
				return err
			}
			if err := s.projects.Update(ctx, project); err != nil {
				return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update project")
			}
			transitioned = true
		}

		run, err = s.BeginRun(ctx, project, adminID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Enqueue(ctx, run, true)
	if transitioned && s.notifier != nil {
		s.notifier.StatusChanged(ctx, project, entity.ProjectStatusReview, entity.ProjectStatusGenerating, string(lifecycle.EventRegenerate))
	}
	return run, nil
}

// GetRun 查询运行（供前端轮询进度）
func (s *Service) GetRun(ctx context.Context, runID string) (*entity.GenerationRun, error) {
	run, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load generation run")
	}
	if run == nil {
		return nil, apperrors.New(apperrors.CodeRunNotFound, "generation run not found")
	}
	return run, nil
}

// ListRuns 项目运行历史
func (s *Service) ListRuns(ctx context.Context, projectID string, pagination repository.Pagination) (*repository.PagedResult[*entity.GenerationRun], error) {
	return s.runs.ListByProject(ctx, projectID, pagination)
}

// Execute 执行一次运行（job-worker 调用）。
// 步骤严格串行：后面步骤的提示词引用前面步骤的输出。
// 任何一步失败都放弃整次运行，项目回到可重试状态，产物保持不变。
func (s *Service) Execute(ctx context.Context, runID string) error {
	run, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load generation run")
	}
	if run == nil {
		logger.Warn(ctx, "generation run not found, dropping message", "run_id", runID)
		return nil
	}
	if run.Status != entity.RunStatusPending {
		// 消息重投递或重复消费，直接忽略
		logger.Info(ctx, "generation run already processed", "run_id", runID, "status", run.Status)
		return nil
	}

	project, err := s.projects.GetByID(ctx, run.ProjectID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load project")
	}
	if project == nil {
		return s.failRun(ctx, run, "", "project disappeared")
	}

	runStart := time.Now()
	run.Start()
	if err := s.runs.Update(ctx, run); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to start generation run")
	}

	logger.Info(ctx, "generation run started",
		"run_id", run.ID,
		"project_id", project.ID,
		"steps", len(run.Steps),
	)

	brief := generation.BriefFromProject(project)
	prior := make(map[string]json.RawMessage, len(run.Steps))
	artifact := entity.NewSiteArtifact()

	for _, step := range run.Steps {
		name := step.Name
		run.StepRunning(name)
		if err := s.runs.Update(ctx, run); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update generation run")
		}

		stepStart := time.Now()
		out, stepErr := s.generator.GenerateStep(ctx, name, brief, prior)
		if stepErr == nil {
			stepErr = applyStepOutput(artifact, name, out)
		}
		metrics.PipelineStepDuration.WithLabelValues(string(name)).Observe(time.Since(stepStart).Seconds())

		if stepErr != nil {
			metrics.PipelineStepTotal.WithLabelValues(string(name), "failed").Inc()
			metrics.PipelineRunsTotal.WithLabelValues("failed").Inc()
			return s.failRun(ctx, run, name, stepErr.Error())
		}
		metrics.PipelineStepTotal.WithLabelValues(string(name), "done").Inc()

		run.StepDone(name, out)
		if err := s.runs.Update(ctx, run); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update generation run")
		}
		prior[string(name)] = out
	}

	if !artifact.IsComplete() {
		metrics.PipelineRunsTotal.WithLabelValues("failed").Inc()
		return s.failRun(ctx, run, "", "assembled artifact is incomplete")
	}

	if err := s.commit(ctx, run, artifact); err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("failed").Inc()
		return err
	}

	metrics.PipelineRunsTotal.WithLabelValues("completed").Inc()
	metrics.PipelineRunDuration.WithLabelValues("completed").Observe(time.Since(runStart).Seconds())

	logger.Info(ctx, "generation run completed",
		"run_id", run.ID,
		"project_id", run.ProjectID,
		"duration", time.Since(runStart).String(),
	)
	return nil
}

// commit 全有或全无提交：产物、状态转移与版本快照在同一事务内落库。
// 中途任何失败整体回滚，项目保持 generating 且旧产物不变。
func (s *Service) commit(ctx context.Context, run *entity.GenerationRun, artifact *entity.SiteArtifact) error {
	var (
		project *entity.Project
		version int
	)

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		project, err = s.projects.GetByID(ctx, run.ProjectID)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load project")
		}
		if project == nil {
			return apperrors.New(apperrors.CodeProjectNotFound, "project not found")
		}

		project.Artifact = artifact
		if _, err := lifecycle.Apply(ctx, project, lifecycle.EventGenerationDone); err != nil {
			return err
		}
		if err := s.projects.Update(ctx, project); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to commit artifact")
		}

		latest, err := s.snapshots.GetLatestVersionNumber(ctx, project.ID)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to resolve version number")
		}
		version = latest + 1

		description := "initial generation"
		if version > 1 {
			description = "regeneration"
		}
		snapshot := entity.NewVersionSnapshot(project.ID, version, artifact, description, run.InitiatedBy)
		if err := s.snapshots.Create(ctx, snapshot); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to append version snapshot")
		}

		run.Complete()
		if err := s.runs.Update(ctx, run); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to complete generation run")
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "artifact committed",
		"project_id", project.ID,
		"version", version,
	)
	if s.notifier != nil {
		s.notifier.StatusChanged(ctx, project, entity.ProjectStatusGenerating, entity.ProjectStatusReview, string(lifecycle.EventGenerationDone))
	}
	return nil
}

// failRun 登记失败。项目的状态与产物都保持原样：失败只作用于这次运行，
// 重试由调用方另起一次新的运行。
func (s *Service) failRun(ctx context.Context, run *entity.GenerationRun, step entity.StepName, detail string) error {
	run.Fail(step, detail)
	if err := s.runs.Update(ctx, run); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to record run failure")
	}

	logger.Warn(ctx, "generation run failed",
		"run_id", run.ID,
		"project_id", run.ProjectID,
		"failed_step", string(step),
		"detail", detail,
	)
	return nil
}

// applyStepOutput 校验步骤输出的必须字段并写入产物。
// 缺少必须字段按步骤失败处理，绝不静默接受残缺结果。
func applyStepOutput(artifact *entity.SiteArtifact, step entity.StepName, raw json.RawMessage) error {
	switch step {
	case entity.StepStructure:
		var structure entity.SiteStructure
		if err := json.Unmarshal(raw, &structure); err != nil {
			return stepValidationError(step, err.Error())
		}
		if structure.SiteName == "" {
			return stepValidationError(step, "missing required key: site_name")
		}
		if len(structure.Pages) == 0 {
			return stepValidationError(step, "missing required key: pages")
		}
		artifact.Structure = &structure
	case entity.StepSEO:
		var seo entity.SiteSEO
		if err := json.Unmarshal(raw, &seo); err != nil {
			return stepValidationError(step, err.Error())
		}
		if seo.SiteTitle == "" {
			return stepValidationError(step, "missing required key: site_title")
		}
		if seo.SiteDescription == "" {
			return stepValidationError(step, "missing required key: site_description")
		}
		artifact.SEO = &seo
	case entity.StepContent:
		var content entity.SiteContent
		if err := json.Unmarshal(raw, &content); err != nil {
			return stepValidationError(step, err.Error())
		}
		if len(content.Blocks) == 0 {
			return stepValidationError(step, "missing required key: blocks")
		}
		for i, b := range content.Blocks {
			if b.PageKey == "" || b.SectionKey == "" || b.Body == "" {
				return stepValidationError(step, fmt.Sprintf("block %d missing required keys", i))
			}
		}
		artifact.Content = &content
	case entity.StepDesign:
		var design entity.SiteDesign
		if err := json.Unmarshal(raw, &design); err != nil {
			return stepValidationError(step, err.Error())
		}
		if design.ColorScheme.Primary == "" {
			return stepValidationError(step, "missing required key: color_scheme.primary")
		}
		artifact.Design = &design
	default:
		return stepValidationError(step, "unknown step")
	}
	return nil
}

func stepValidationError(step entity.StepName, detail string) error {
	return apperrors.New(apperrors.CodeStepValidationFailed,
		fmt.Sprintf("step %s output validation failed", step)).
		WithDetail(detail)
}
