package buildtask_test

import (
	"context"
	"testing"

	"sitepilot-api/internal/application/apptest"
	"sitepilot-api/internal/application/buildtask"
	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/domain/repository"
	apperrors "sitepilot-api/pkg/errors"
)

func newTaskEnv() (*buildtask.Service, *apptest.ProjectRepo) {
	projects := apptest.NewProjectRepo()
	return buildtask.NewService(apptest.NewTaskRepo(), projects), projects
}

func TestAdd(t *testing.T) {
	svc, projects := newTaskEnv()
	ctx := context.Background()
	project := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusApproved)

	task, err := svc.Add(ctx, project.ID, entity.TaskConfigureDomain)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if task.Status != entity.TaskStatusPending {
		t.Fatalf("status = %s, want pending", task.Status)
	}
	if task.DisplayName != "Configure domain" {
		t.Fatalf("display name = %q", task.DisplayName)
	}
	if task.CompletedDate != nil {
		t.Fatal("completed_date must be empty on creation")
	}
}

func TestAddUnknownTypeRejected(t *testing.T) {
	svc, projects := newTaskEnv()
	project := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusApproved)

	_, err := svc.Add(context.Background(), project.ID, "install_teleporter")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeUnknownTaskType {
		t.Fatalf("expected unknown task type, got %v", err)
	}
}

func TestSetStatusCompletedDate(t *testing.T) {
	svc, projects := newTaskEnv()
	ctx := context.Background()
	project := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusApproved)
	task, err := svc.Add(ctx, project.ID, entity.TaskDeployStaging)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := svc.SetStatus(ctx, task.ID, entity.TaskStatusCompleted, "https://staging.acme.example.com")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.CompletedDate == nil {
		t.Fatal("completed_date must be set when entering completed")
	}
	if got.StagingURL != "https://staging.acme.example.com" {
		t.Fatalf("staging_url = %q", got.StagingURL)
	}

	got, err = svc.SetStatus(ctx, task.ID, entity.TaskStatusInProgress, "")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got.CompletedDate != nil {
		t.Fatal("completed_date must be cleared when leaving completed")
	}
}

func TestSetStatusUnknown(t *testing.T) {
	svc, _ := newTaskEnv()
	_, err := svc.SetStatus(context.Background(), "any", "paused", "")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidParam {
		t.Fatalf("expected invalid param, got %v", err)
	}
}

func TestListOrderedByCreation(t *testing.T) {
	svc, projects := newTaskEnv()
	ctx := context.Background()
	project := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusApproved)

	first, _ := svc.Add(ctx, project.ID, entity.TaskSetupHosting)
	second, _ := svc.Add(ctx, project.ID, entity.TaskConfigureDomain)

	result, err := svc.List(ctx, project.ID, repository.NewPagination(1, 20))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("count = %d, want 2", len(result.Items))
	}
	if result.Items[0].ID != first.ID || result.Items[1].ID != second.ID {
		t.Fatal("tasks must list oldest first")
	}
}

func TestCatalogueIsACopy(t *testing.T) {
	svc, _ := newTaskEnv()
	cat := svc.Catalogue()
	if len(cat) != len(entity.BuildTaskCatalogue) {
		t.Fatalf("catalogue size = %d, want %d", len(cat), len(entity.BuildTaskCatalogue))
	}
	cat[entity.TaskSetupHosting] = "mutated"
	if entity.BuildTaskCatalogue[entity.TaskSetupHosting] == "mutated" {
		t.Fatal("catalogue must not leak the internal map")
	}
}
