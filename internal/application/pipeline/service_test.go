package pipeline_test

import (
	"context"
	"testing"

	"sitepilot-api/internal/application/apptest"
	"sitepilot-api/internal/application/pipeline"
	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/domain/repository"
	apperrors "sitepilot-api/pkg/errors"
)

type pipelineEnv struct {
	Svc       *pipeline.Service
	Projects  *apptest.ProjectRepo
	Runs      *apptest.RunRepo
	Snapshots *apptest.SnapshotRepo
	Gen       *apptest.StepGen
	Enqueuer  *apptest.Enqueuer
	Notifier  *apptest.Notifier
}

func newPipelineEnv(designEnabled bool) *pipelineEnv {
	env := &pipelineEnv{
		Projects:  apptest.NewProjectRepo(),
		Runs:      apptest.NewRunRepo(),
		Snapshots: apptest.NewSnapshotRepo(),
		Gen:       &apptest.StepGen{Outputs: apptest.ValidStepOutputs()},
		Enqueuer:  &apptest.Enqueuer{},
		Notifier:  &apptest.Notifier{},
	}
	env.Svc = pipeline.NewService(
		env.Projects, env.Runs, env.Snapshots, apptest.Tx{},
		env.Gen, env.Enqueuer, env.Notifier, designEnabled,
	)
	return env
}

// seedRun 为 generating 状态的项目建一条 pending 运行
func (env *pipelineEnv) seedRun(t *testing.T, project *entity.Project, initiatedBy string) *entity.GenerationRun {
	t.Helper()
	run, err := env.Svc.BeginRun(context.Background(), project, initiatedBy)
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}
	return run
}

func TestStepList(t *testing.T) {
	withDesign := newPipelineEnv(true).Svc.StepList()
	if len(withDesign) != 4 || withDesign[3] != entity.StepDesign {
		t.Fatalf("with design: got %v", withDesign)
	}
	withoutDesign := newPipelineEnv(false).Svc.StepList()
	if len(withoutDesign) != 3 {
		t.Fatalf("without design: got %v", withoutDesign)
	}
	want := []entity.StepName{entity.StepStructure, entity.StepSEO, entity.StepContent}
	for i, name := range want {
		if withoutDesign[i] != name {
			t.Fatalf("step %d = %s, want %s", i, withoutDesign[i], name)
		}
	}
}

func TestExecuteCommitsArtifactSnapshotAndStatus(t *testing.T) {
	env := newPipelineEnv(true)
	ctx := context.Background()
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusGenerating)
	run := env.seedRun(t, project, "client-1")

	if err := env.Svc.Execute(ctx, run.ID); err != nil {
		t.Fatalf("execute: %v", err)
	}

	got, _ := env.Runs.GetByID(ctx, run.ID)
	if got.Status != entity.RunStatusCompleted {
		t.Fatalf("run status = %s, want completed", got.Status)
	}
	if got.Progress != 100 {
		t.Fatalf("progress = %d, want 100", got.Progress)
	}
	for _, step := range got.Steps {
		if step.Status != entity.StepStatusDone {
			t.Fatalf("step %s = %s, want done", step.Name, step.Status)
		}
	}

	stored, _ := env.Projects.GetByID(ctx, project.ID)
	if stored.Status != entity.ProjectStatusReview {
		t.Fatalf("project status = %s, want review", stored.Status)
	}
	if !stored.HasArtifact() || !stored.Artifact.IsComplete() {
		t.Fatal("committed artifact must be complete")
	}
	if stored.Artifact.Design == nil {
		t.Fatal("design step enabled, artifact must carry design tokens")
	}

	latest, _ := env.Snapshots.GetLatestVersionNumber(ctx, project.ID)
	if latest != 1 {
		t.Fatalf("latest version = %d, want 1", latest)
	}
	if len(env.Notifier.Events) != 1 || env.Notifier.Events[0].To != entity.ProjectStatusReview {
		t.Fatalf("expected one review notification, got %+v", env.Notifier.Events)
	}
}

func TestExecuteStepOrderIsFixed(t *testing.T) {
	env := newPipelineEnv(true)
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusGenerating)
	run := env.seedRun(t, project, "client-1")

	if err := env.Svc.Execute(context.Background(), run.ID); err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := []entity.StepName{entity.StepStructure, entity.StepSEO, entity.StepContent, entity.StepDesign}
	if len(env.Gen.Calls) != len(want) {
		t.Fatalf("generator calls = %v", env.Gen.Calls)
	}
	for i, name := range want {
		if env.Gen.Calls[i] != name {
			t.Fatalf("call %d = %s, want %s", i, env.Gen.Calls[i], name)
		}
	}
}

func TestExecuteStepFailureIsAllOrNothing(t *testing.T) {
	env := newPipelineEnv(true)
	ctx := context.Background()
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusGenerating)
	run := env.seedRun(t, project, "client-1")
	env.Gen.FailStep = entity.StepSEO

	if err := env.Svc.Execute(ctx, run.ID); err != nil {
		t.Fatalf("execute should ack business failure, got %v", err)
	}

	got, _ := env.Runs.GetByID(ctx, run.ID)
	if got.Status != entity.RunStatusFailed {
		t.Fatalf("run status = %s, want failed", got.Status)
	}
	if got.FailedStep != string(entity.StepSEO) {
		t.Fatalf("failed step = %s, want seo", got.FailedStep)
	}

	stored, _ := env.Projects.GetByID(ctx, project.ID)
	if stored.HasArtifact() {
		t.Fatal("no partial artifact may be committed")
	}
	if stored.Status != entity.ProjectStatusGenerating {
		t.Fatalf("a failed run must leave project status unchanged, got %s", stored.Status)
	}
	if latest, _ := env.Snapshots.GetLatestVersionNumber(ctx, project.ID); latest != 0 {
		t.Fatalf("no snapshot may be appended on failure, latest = %d", latest)
	}
	if len(env.Gen.Calls) != 2 {
		t.Fatalf("generation must stop at the failed step, calls = %v", env.Gen.Calls)
	}
}

func TestExecuteRegenerationFailureKeepsPriorArtifact(t *testing.T) {
	env := newPipelineEnv(true)
	ctx := context.Background()
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusGenerating)
	prior := entity.NewSiteArtifact()
	prior.Structure = &entity.SiteStructure{
		SiteName: "Old Site",
		Pages:    []entity.SitePage{{Key: "home", Title: "Home", Slug: "/"}},
	}
	prior.SEO = &entity.SiteSEO{SiteTitle: "Old", SiteDescription: "Old description"}
	prior.Content = &entity.SiteContent{Blocks: []entity.ContentBlock{{PageKey: "home", SectionKey: "hero", Body: "Old body"}}}
	project.Artifact = prior
	if err := env.Projects.Update(ctx, project); err != nil {
		t.Fatalf("seed artifact: %v", err)
	}

	run := env.seedRun(t, project, "admin-1")
	env.Gen.FailStep = entity.StepContent

	if err := env.Svc.Execute(ctx, run.ID); err != nil {
		t.Fatalf("execute: %v", err)
	}

	stored, _ := env.Projects.GetByID(ctx, project.ID)
	if stored.Status != entity.ProjectStatusGenerating {
		t.Fatalf("a failed run must leave project status unchanged, got %s", stored.Status)
	}
	if stored.Artifact == nil || stored.Artifact.Structure.SiteName != "Old Site" {
		t.Fatal("prior artifact must survive a failed regeneration")
	}
}

func TestRegenerateRetriesAfterFailedRun(t *testing.T) {
	env := newPipelineEnv(true)
	ctx := context.Background()
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusGenerating)
	run := env.seedRun(t, project, "client-1")
	env.Gen.FailStep = entity.StepContent

	if err := env.Svc.Execute(ctx, run.ID); err != nil {
		t.Fatalf("failing execute: %v", err)
	}

	// 项目停在 generating 且无运行中任务，重新触发不做状态转移
	env.Gen.FailStep = ""
	retry, err := env.Svc.Regenerate(ctx, project.ID, "admin-1")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if err := env.Svc.Execute(ctx, retry.ID); err != nil {
		t.Fatalf("retry execute: %v", err)
	}

	stored, _ := env.Projects.GetByID(ctx, project.ID)
	if stored.Status != entity.ProjectStatusReview {
		t.Fatalf("retried run must land in review, got %s", stored.Status)
	}
	if latest, _ := env.Snapshots.GetLatestVersionNumber(ctx, project.ID); latest != 1 {
		t.Fatalf("latest version = %d, want 1", latest)
	}
}

func TestExecuteRejectsOutputMissingRequiredKeys(t *testing.T) {
	env := newPipelineEnv(false)
	ctx := context.Background()
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusGenerating)
	run := env.seedRun(t, project, "client-1")
	env.Gen.Outputs[entity.StepStructure] = []byte(`{"tagline": "no name, no pages"}`)

	if err := env.Svc.Execute(ctx, run.ID); err != nil {
		t.Fatalf("execute: %v", err)
	}

	got, _ := env.Runs.GetByID(ctx, run.ID)
	if got.Status != entity.RunStatusFailed {
		t.Fatalf("run status = %s, want failed", got.Status)
	}
	if got.FailedStep != string(entity.StepStructure) {
		t.Fatalf("failed step = %s, want structure", got.FailedStep)
	}
	if got.ErrorDetail == "" {
		t.Fatal("validation failure must record a detail")
	}
}

func TestExecuteIsIdempotent(t *testing.T) {
	env := newPipelineEnv(true)
	ctx := context.Background()
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusGenerating)
	run := env.seedRun(t, project, "client-1")

	if err := env.Svc.Execute(ctx, run.ID); err != nil {
		t.Fatalf("first execute: %v", err)
	}
	calls := len(env.Gen.Calls)

	// 消息重投递
	if err := env.Svc.Execute(ctx, run.ID); err != nil {
		t.Fatalf("second execute: %v", err)
	}
	if len(env.Gen.Calls) != calls {
		t.Fatal("a completed run must not be executed again")
	}

	latest, _ := env.Snapshots.GetLatestVersionNumber(ctx, project.ID)
	if latest != 1 {
		t.Fatalf("latest version = %d, want 1", latest)
	}
}

func TestExecuteUnknownRunIsDropped(t *testing.T) {
	env := newPipelineEnv(true)
	if err := env.Svc.Execute(context.Background(), "missing-run"); err != nil {
		t.Fatalf("unknown run must be acked, got %v", err)
	}
}

func TestBeginRunRejectsConcurrentRun(t *testing.T) {
	env := newPipelineEnv(true)
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusGenerating)
	env.seedRun(t, project, "client-1")

	_, err := env.Svc.BeginRun(context.Background(), project, "client-1")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegenerate(t *testing.T) {
	env := newPipelineEnv(true)
	ctx := context.Background()
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusReview)

	run, err := env.Svc.Regenerate(ctx, project.ID, "admin-1")
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if run.InitiatedBy != "admin-1" {
		t.Fatalf("initiated_by = %s, want admin-1", run.InitiatedBy)
	}

	stored, _ := env.Projects.GetByID(ctx, project.ID)
	if stored.Status != entity.ProjectStatusGenerating {
		t.Fatalf("project status = %s, want generating", stored.Status)
	}
	if len(env.Enqueuer.Calls) != 1 || !env.Enqueuer.Calls[0].Regenerate {
		t.Fatalf("expected one regenerate enqueue, got %+v", env.Enqueuer.Calls)
	}
}

func TestRegenerateOutsideReviewRejected(t *testing.T) {
	env := newPipelineEnv(true)
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusPending)

	_, err := env.Svc.Regenerate(context.Background(), project.ID, "admin-1")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if len(env.Enqueuer.Calls) != 0 {
		t.Fatal("rejected regenerate must not enqueue")
	}
}

func TestRegenerateBumpsVersionWithoutGaps(t *testing.T) {
	env := newPipelineEnv(true)
	ctx := context.Background()
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusGenerating)

	run := env.seedRun(t, project, "client-1")
	if err := env.Svc.Execute(ctx, run.ID); err != nil {
		t.Fatalf("first execute: %v", err)
	}

	run2, err := env.Svc.Regenerate(ctx, project.ID, "admin-1")
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if err := env.Svc.Execute(ctx, run2.ID); err != nil {
		t.Fatalf("second execute: %v", err)
	}

	result, err := env.Snapshots.ListByProject(ctx, project.ID, repository.NewPagination(1, 50))
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("snapshot count = %d, want 2", len(result.Items))
	}
	// 降序：2, 1
	if result.Items[0].VersionNumber != 2 || result.Items[1].VersionNumber != 1 {
		t.Fatalf("versions = [%d %d], want [2 1]", result.Items[0].VersionNumber, result.Items[1].VersionNumber)
	}
}
