package clarify_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sitepilot-api/internal/application/apptest"
	"sitepilot-api/internal/application/clarify"
	"sitepilot-api/internal/application/pipeline"
	"sitepilot-api/internal/domain/entity"
	wfmodel "sitepilot-api/internal/workflow/model"
	apperrors "sitepilot-api/pkg/errors"
)

type clarifyEnv struct {
	Svc       *clarify.Service
	Pipeline  *pipeline.Service
	Projects  *apptest.ProjectRepo
	Rounds    *apptest.ClarificationRepo
	Runs      *apptest.RunRepo
	Evaluator *apptest.Evaluator
	Enqueuer  *apptest.Enqueuer
	Notifier  *apptest.Notifier
	Gen       *apptest.StepGen
}

func newClarifyEnv() *clarifyEnv {
	env := &clarifyEnv{
		Projects:  apptest.NewProjectRepo(),
		Rounds:    apptest.NewClarificationRepo(),
		Runs:      apptest.NewRunRepo(),
		Evaluator: &apptest.Evaluator{Out: &wfmodel.ClarifyOutput{Sufficient: true}},
		Enqueuer:  &apptest.Enqueuer{},
		Notifier:  &apptest.Notifier{},
		Gen:       &apptest.StepGen{Outputs: apptest.ValidStepOutputs()},
	}
	env.Pipeline = pipeline.NewService(
		env.Projects, env.Runs, apptest.NewSnapshotRepo(), apptest.Tx{},
		env.Gen, env.Enqueuer, env.Notifier, true,
	)
	env.Svc = clarify.NewService(env.Projects, env.Rounds, apptest.Tx{}, env.Evaluator, env.Pipeline, env.Notifier)
	return env
}

func TestSubmitSufficientStartsGeneration(t *testing.T) {
	env := newClarifyEnv()
	ctx := context.Background()
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusPending)

	result, err := env.Svc.Submit(ctx, project.ID, "client-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Run == nil || result.Round != nil {
		t.Fatalf("sufficient description must start a run, got %+v", result)
	}
	if result.Project.Status != entity.ProjectStatusGenerating {
		t.Fatalf("status = %s, want generating", result.Project.Status)
	}
	if len(env.Enqueuer.Calls) != 1 || env.Enqueuer.Calls[0].RunID != result.Run.ID {
		t.Fatalf("expected run enqueued after commit, got %+v", env.Enqueuer.Calls)
	}
}

func TestSubmitInsufficientOpensFiveQuestionRound(t *testing.T) {
	env := newClarifyEnv()
	ctx := context.Background()
	env.Evaluator.Out = &wfmodel.ClarifyOutput{
		Sufficient: false,
		Questions:  []string{"What services do you offer?", "Who are your customers?"},
	}
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusPending)

	result, err := env.Svc.Submit(ctx, project.ID, "client-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Run != nil || result.Round == nil {
		t.Fatalf("insufficient description must open a round, got %+v", result)
	}
	if result.Project.Status != entity.ProjectStatusQuestions {
		t.Fatalf("status = %s, want questions", result.Project.Status)
	}
	if len(result.Round.Questions) != entity.ClarificationQuestionCount {
		t.Fatalf("question count = %d, want %d", len(result.Round.Questions), entity.ClarificationQuestionCount)
	}
	if result.Round.Questions[0] != "What services do you offer?" {
		t.Fatalf("evaluator questions must come first, got %v", result.Round.Questions)
	}
	if len(env.Enqueuer.Calls) != 0 {
		t.Fatal("no run may be enqueued while questions are open")
	}
}

func TestSubmitFailsOpenWhenEvaluatorUnavailable(t *testing.T) {
	env := newClarifyEnv()
	ctx := context.Background()
	env.Evaluator.Err = errors.New("provider timeout")
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusPending)

	result, err := env.Svc.Submit(ctx, project.ID, "client-1")
	if err != nil {
		t.Fatalf("submit must fail open, got %v", err)
	}
	if result.Run == nil {
		t.Fatal("fail open must start generation")
	}
	if result.Project.Status != entity.ProjectStatusGenerating {
		t.Fatalf("status = %s, want generating", result.Project.Status)
	}
}

func TestSubmitTwiceRejected(t *testing.T) {
	env := newClarifyEnv()
	ctx := context.Background()
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusPending)

	if _, err := env.Svc.Submit(ctx, project.ID, "client-1"); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := env.Svc.Submit(ctx, project.ID, "client-1")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestSubmitAnswersMergesInQuestionOrder(t *testing.T) {
	env := newClarifyEnv()
	ctx := context.Background()
	env.Evaluator.Out = &wfmodel.ClarifyOutput{
		Sufficient: false,
		Questions: []string{
			"Question one?", "Question two?", "Question three?", "Question four?", "Question five?",
		},
	}
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusPending)
	if _, err := env.Svc.Submit(ctx, project.ID, "client-1"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	answers := []string{"Answer one", "Answer two", "Answer three", "Answer four", "Answer five"}
	result, err := env.Svc.SubmitAnswers(ctx, project.ID, "client-1", answers)
	if err != nil {
		t.Fatalf("submit answers: %v", err)
	}
	if result.Project.Status != entity.ProjectStatusGenerating {
		t.Fatalf("status = %s, want generating", result.Project.Status)
	}
	if result.Round.Status != entity.ClarificationStatusMerged {
		t.Fatalf("round status = %s, want merged", result.Round.Status)
	}

	desc := result.Project.GoalDescription
	last := -1
	for i := range answers {
		q := strings.Index(desc, env.Evaluator.Out.Questions[i])
		a := strings.Index(desc, answers[i])
		if q < 0 || a < 0 || q < last || a < q {
			t.Fatalf("answers must be appended in question order, got %q", desc)
		}
		last = a
	}
	if len(env.Enqueuer.Calls) != 1 {
		t.Fatalf("expected one enqueue after answers, got %+v", env.Enqueuer.Calls)
	}
}

func TestSubmitAnswersRequiresAllAnswers(t *testing.T) {
	env := newClarifyEnv()
	ctx := context.Background()
	env.Evaluator.Out = &wfmodel.ClarifyOutput{Sufficient: false, Questions: []string{"Only one?"}}
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusPending)
	if _, err := env.Svc.Submit(ctx, project.ID, "client-1"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err := env.Svc.SubmitAnswers(ctx, project.ID, "client-1", []string{"a", "b", "c", "d"})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidParam {
		t.Fatalf("expected invalid param for missing answer, got %v", err)
	}

	_, err = env.Svc.SubmitAnswers(ctx, project.ID, "client-1", []string{"a", "b", "c", "d", "   "})
	appErr = apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidParam {
		t.Fatalf("expected invalid param for blank answer, got %v", err)
	}
}

func TestSubmitAnswersOutsideQuestionsRejected(t *testing.T) {
	env := newClarifyEnv()
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusPending)

	_, err := env.Svc.SubmitAnswers(context.Background(), project.ID, "client-1", []string{"a"})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

// 完整澄清回路：pending -> questions -> generating -> review
func TestClarificationLoopEndsInReview(t *testing.T) {
	env := newClarifyEnv()
	ctx := context.Background()
	env.Evaluator.Out = &wfmodel.ClarifyOutput{Sufficient: false, Questions: []string{"What do you sell?"}}
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusPending)

	submitted, err := env.Svc.Submit(ctx, project.ID, "client-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Project.Status != entity.ProjectStatusQuestions {
		t.Fatalf("after submit: %s, want questions", submitted.Project.Status)
	}

	answers := []string{"Plumbing", "Homeowners", "Call us", "Blue and white", "None"}
	answered, err := env.Svc.SubmitAnswers(ctx, project.ID, "client-1", answers)
	if err != nil {
		t.Fatalf("submit answers: %v", err)
	}
	if answered.Project.Status != entity.ProjectStatusGenerating {
		t.Fatalf("after answers: %s, want generating", answered.Project.Status)
	}

	if err := env.Pipeline.Execute(ctx, answered.Run.ID); err != nil {
		t.Fatalf("execute: %v", err)
	}
	final, _ := env.Projects.GetByID(ctx, project.ID)
	if final.Status != entity.ProjectStatusReview {
		t.Fatalf("after pipeline: %s, want review", final.Status)
	}
	if !final.CheckInvariants() {
		t.Fatal("invariants must hold at end of loop")
	}
}

func TestGetOpenRound(t *testing.T) {
	env := newClarifyEnv()
	ctx := context.Background()
	env.Evaluator.Out = &wfmodel.ClarifyOutput{Sufficient: false, Questions: []string{"Anything?"}}
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusPending)
	if _, err := env.Svc.Submit(ctx, project.ID, "client-1"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	round, err := env.Svc.GetOpenRound(ctx, project.ID, "client-1")
	if err != nil {
		t.Fatalf("get open round: %v", err)
	}
	if round.Status != entity.ClarificationStatusOpen {
		t.Fatalf("round status = %s, want open", round.Status)
	}

	_, err = env.Svc.GetOpenRound(ctx, project.ID, "client-2")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodePermissionDenied {
		t.Fatalf("expected permission denied for foreign client, got %v", err)
	}
}
