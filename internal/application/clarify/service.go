// Package clarify 实现澄清门：判断客户描述是否足以开始生成，
// 不足时产生恰好 5 条追问并阻塞流水线直到全部回答。
package clarify

import (
	"context"

	"sitepilot-api/internal/application/generation"
	"sitepilot-api/internal/application/lifecycle"
	"sitepilot-api/internal/application/pipeline"
	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/domain/repository"
	apperrors "sitepilot-api/pkg/errors"
	"sitepilot-api/pkg/logger"
	"sitepilot-api/pkg/metrics"
)

// Service 澄清门应用服务
type Service struct {
	projects  repository.ProjectRepository
	rounds    repository.ClarificationRepository
	tx        repository.Transactor
	evaluator generation.ClarifyEvaluator
	pipeline  *pipeline.Service
	notifier  lifecycle.Notifier
}

// NewService 创建澄清门服务
func NewService(
	projects repository.ProjectRepository,
	rounds repository.ClarificationRepository,
	tx repository.Transactor,
	evaluator generation.ClarifyEvaluator,
	pipe *pipeline.Service,
	notifier lifecycle.Notifier,
) *Service {
	return &Service{
		projects:  projects,
		rounds:    rounds,
		tx:        tx,
		evaluator: evaluator,
		pipeline:  pipe,
		notifier:  notifier,
	}
}

// SubmitResult 提交评估的结果：进入提问环节或直接开始生成
type SubmitResult struct {
	Project *entity.Project
	Round   *entity.ClarificationRound
	Run     *entity.GenerationRun
}

// Submit 客户提交项目进入澄清评估。
// 评估服务不可用时 fail open：按信息充分处理直接生成，绝不让客户
// 因协作方故障被无限期卡住。
func (s *Service) Submit(ctx context.Context, projectID, clientID string) (*SubmitResult, error) {
	project, err := s.loadOwnedProject(ctx, projectID, clientID)
	if err != nil {
		return nil, err
	}
	if project.Status != entity.ProjectStatusPending {
		return nil, apperrors.New(apperrors.CodeInvalidTransition,
			"project already submitted").WithDetail(string(project.Status))
	}

	sufficient := true
	var questions []string

	out, evalErr := s.evaluator.Evaluate(ctx, generation.BriefFromProject(project))
	switch {
	case evalErr != nil:
		metrics.ClarificationEvaluations.WithLabelValues("fail_open").Inc()
		logger.Warn(ctx, "clarification evaluation unavailable, failing open",
			"project_id", project.ID,
			"error", evalErr.Error(),
		)
	case out.Sufficient:
		metrics.ClarificationEvaluations.WithLabelValues("sufficient").Inc()
	default:
		metrics.ClarificationEvaluations.WithLabelValues("insufficient").Inc()
		sufficient = false
		questions = out.Questions
	}

	result := &SubmitResult{}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if sufficient {
			if _, err := lifecycle.Apply(ctx, project, lifecycle.EventStartGeneration); err != nil {
				return err
			}
			if err := s.projects.Update(ctx, project); err != nil {
				return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update project")
			}
			run, err := s.pipeline.BeginRun(ctx, project, clientID)
			if err != nil {
				return err
			}
			result.Run = run
			return nil
		}

		if _, err := lifecycle.Apply(ctx, project, lifecycle.EventQuestionsNeeded); err != nil {
			return err
		}
		if err := s.projects.Update(ctx, project); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update project")
		}
		round := entity.NewClarificationRound(project.ID, questions)
		if err := s.rounds.Create(ctx, round); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to store clarification round")
		}
		result.Round = round
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Project = project

	if result.Run != nil {
		s.pipeline.Enqueue(ctx, result.Run, false)
		s.notify(ctx, project, entity.ProjectStatusPending, entity.ProjectStatusGenerating, string(lifecycle.EventStartGeneration))
	} else {
		s.notify(ctx, project, entity.ProjectStatusPending, entity.ProjectStatusQuestions, string(lifecycle.EventQuestionsNeeded))
	}
	return result, nil
}

// GetOpenRound 查询项目当前待回答的轮次
func (s *Service) GetOpenRound(ctx context.Context, projectID, clientID string) (*entity.ClarificationRound, error) {
	if _, err := s.loadOwnedProject(ctx, projectID, clientID); err != nil {
		return nil, err
	}
	round, err := s.rounds.GetOpenByProject(ctx, projectID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load clarification round")
	}
	if round == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "no open clarification round")
	}
	return round, nil
}

// SubmitAnswers 客户回答全部问题。
// 答案按提问顺序追加到项目描述后（不再做结构化处理），
// 轮次标记 merged，随即开始生成。
func (s *Service) SubmitAnswers(ctx context.Context, projectID, clientID string, answers []string) (*SubmitResult, error) {
	project, err := s.loadOwnedProject(ctx, projectID, clientID)
	if err != nil {
		return nil, err
	}
	if project.Status != entity.ProjectStatusQuestions {
		return nil, apperrors.New(apperrors.CodeInvalidTransition,
			"project is not awaiting answers").WithDetail(string(project.Status))
	}

	round, err := s.rounds.GetOpenByProject(ctx, projectID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load clarification round")
	}
	if round == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "no open clarification round")
	}

	round.Answers = answers
	if !round.AllAnswered() {
		return nil, apperrors.New(apperrors.CodeInvalidParam,
			"all questions must be answered")
	}

	result := &SubmitResult{Round: round}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		project.GoalDescription = round.MergedDescription(project.GoalDescription)

		if _, err := lifecycle.Apply(ctx, project, lifecycle.EventStartGeneration); err != nil {
			return err
		}
		if err := s.projects.Update(ctx, project); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update project")
		}

		round.Status = entity.ClarificationStatusMerged
		if err := s.rounds.Update(ctx, round); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update clarification round")
		}

		run, err := s.pipeline.BeginRun(ctx, project, clientID)
		if err != nil {
			return err
		}
		result.Run = run
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Project = project

	s.pipeline.Enqueue(ctx, result.Run, false)
	s.notify(ctx, project, entity.ProjectStatusQuestions, entity.ProjectStatusGenerating, string(lifecycle.EventStartGeneration))
	return result, nil
}

func (s *Service) notify(ctx context.Context, project *entity.Project, from, to entity.ProjectStatus, event string) {
	if s.notifier == nil {
		return
	}
	s.notifier.StatusChanged(ctx, project, from, to, event)
}

func (s *Service) loadOwnedProject(ctx context.Context, projectID, clientID string) (*entity.Project, error) {
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
	return project, nil
}
