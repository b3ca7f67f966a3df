package revision_test

import (
	"context"
	"testing"
	"time"

	"sitepilot-api/internal/application/apptest"
	"sitepilot-api/internal/application/revision"
	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/domain/repository"
	apperrors "sitepilot-api/pkg/errors"
)

func newRevisionEnv() (*revision.Service, *apptest.RevisionRepo, *apptest.ProjectRepo) {
	revisions := apptest.NewRevisionRepo()
	projects := apptest.NewProjectRepo()
	return revision.NewService(revisions, projects), revisions, projects
}

func TestFile(t *testing.T) {
	svc, _, projects := newRevisionEnv()
	ctx := context.Background()
	project := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusReview)

	req, err := svc.File(ctx, project.ID, "client-1", "Change the hero headline", entity.RevisionTypeContentChange, entity.RevisionPriorityHigh)
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if req.Status != entity.RevisionStatusPending {
		t.Fatalf("status = %s, want pending", req.Status)
	}
	if req.Priority != entity.RevisionPriorityHigh {
		t.Fatalf("priority = %s, want high", req.Priority)
	}

	// 项目状态不因提交修订而变化
	stored, _ := projects.GetByID(ctx, project.ID)
	if stored.Status != entity.ProjectStatusReview {
		t.Fatalf("project status = %s, want review", stored.Status)
	}
}

func TestFileDefaultsPriorityToMedium(t *testing.T) {
	svc, _, projects := newRevisionEnv()
	project := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusLive)

	req, err := svc.File(context.Background(), project.ID, "client-1", "Fix typo", entity.RevisionTypeBugFix, "")
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if req.Priority != entity.RevisionPriorityMedium {
		t.Fatalf("priority = %s, want medium", req.Priority)
	}
}

func TestFileRejections(t *testing.T) {
	svc, _, projects := newRevisionEnv()
	ctx := context.Background()
	pending := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusPending)
	review := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusReview)

	cases := []struct {
		name      string
		projectID string
		clientID  string
		desc      string
		reqType   entity.RevisionRequestType
		wantCode  apperrors.ErrorCode
	}{
		{"before review", pending.ID, "client-1", "Too early", entity.RevisionTypeBugFix, apperrors.CodeInvalidTransition},
		{"unknown type", review.ID, "client-1", "Bad type", "repaint_the_moon", apperrors.CodeInvalidParam},
		{"empty description", review.ID, "client-1", "   ", entity.RevisionTypeBugFix, apperrors.CodeInvalidParam},
		{"foreign client", review.ID, "client-2", "Not mine", entity.RevisionTypeBugFix, apperrors.CodePermissionDenied},
		{"missing project", "missing", "client-1", "No project", entity.RevisionTypeBugFix, apperrors.CodeProjectNotFound},
	}
	for _, tc := range cases {
		_, err := svc.File(ctx, tc.projectID, tc.clientID, tc.desc, tc.reqType, "")
		appErr := apperrors.AsAppError(err)
		if appErr == nil || appErr.Code != tc.wantCode {
			t.Fatalf("%s: expected code %s, got %v", tc.name, tc.wantCode, err)
		}
	}
}

func TestListTriageOrder(t *testing.T) {
	svc, revisions, projects := newRevisionEnv()
	ctx := context.Background()
	project := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusReview)

	seed := func(status entity.RevisionStatus, priority entity.RevisionPriority, createdAt time.Time) string {
		req := entity.NewRevisionRequest(project.ID, "client-1", "request", entity.RevisionTypeContentChange, priority)
		req.Status = status
		req.CreatedAt = createdAt
		if err := revisions.Create(ctx, req); err != nil {
			t.Fatalf("seed revision: %v", err)
		}
		return req.ID
	}

	base := time.Now()
	completedLow := seed(entity.RevisionStatusCompleted, entity.RevisionPriorityLow, base)
	inProgressHigh := seed(entity.RevisionStatusInProgress, entity.RevisionPriorityHigh, base.Add(time.Minute))
	pendingUrgent := seed(entity.RevisionStatusPending, entity.RevisionPriorityUrgent, base.Add(2*time.Minute))

	result, err := svc.List(ctx, &repository.RevisionFilter{ProjectID: project.ID}, repository.NewPagination(1, 20))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{pendingUrgent, inProgressHigh, completedLow}
	if len(result.Items) != len(want) {
		t.Fatalf("count = %d, want %d", len(result.Items), len(want))
	}
	for i, id := range want {
		if result.Items[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, result.Items[i].ID, id)
		}
	}
}

func TestListTriageOrderBreaksTiesByCreatedAt(t *testing.T) {
	svc, revisions, projects := newRevisionEnv()
	ctx := context.Background()
	project := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusReview)

	base := time.Now()
	later := entity.NewRevisionRequest(project.ID, "client-1", "second", entity.RevisionTypeBugFix, entity.RevisionPriorityUrgent)
	later.CreatedAt = base.Add(time.Hour)
	earlier := entity.NewRevisionRequest(project.ID, "client-1", "first", entity.RevisionTypeBugFix, entity.RevisionPriorityUrgent)
	earlier.CreatedAt = base
	for _, req := range []*entity.RevisionRequest{later, earlier} {
		if err := revisions.Create(ctx, req); err != nil {
			t.Fatalf("seed revision: %v", err)
		}
	}

	result, err := svc.List(ctx, nil, repository.NewPagination(1, 20))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Items[0].ID != earlier.ID {
		t.Fatal("equal rank revisions must be ordered oldest first")
	}
}

func TestTriage(t *testing.T) {
	svc, _, projects := newRevisionEnv()
	ctx := context.Background()
	project := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusReview)
	req, err := svc.File(ctx, project.ID, "client-1", "Swap the photos", entity.RevisionTypeDesignChange, "")
	if err != nil {
		t.Fatalf("file: %v", err)
	}

	got, err := svc.Triage(ctx, req.ID, entity.RevisionStatusInProgress, "Working on it")
	if err != nil {
		t.Fatalf("triage: %v", err)
	}
	if got.Status != entity.RevisionStatusInProgress || got.AdminResponse != "Working on it" {
		t.Fatalf("got %+v", got)
	}
}

func TestTriageLastWriteWins(t *testing.T) {
	svc, _, projects := newRevisionEnv()
	ctx := context.Background()
	project := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusReview)
	req, err := svc.File(ctx, project.ID, "client-1", "Swap the photos", entity.RevisionTypeDesignChange, "")
	if err != nil {
		t.Fatalf("file: %v", err)
	}

	if _, err := svc.Triage(ctx, req.ID, entity.RevisionStatusInProgress, "first admin"); err != nil {
		t.Fatalf("first triage: %v", err)
	}
	got, err := svc.Triage(ctx, req.ID, entity.RevisionStatusInProgress, "second admin")
	if err != nil {
		t.Fatalf("second triage: %v", err)
	}
	if got.AdminResponse != "second admin" {
		t.Fatalf("admin_response = %q, want last write", got.AdminResponse)
	}
}

func TestTriageTerminalIsFinal(t *testing.T) {
	svc, _, projects := newRevisionEnv()
	ctx := context.Background()
	project := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusReview)
	req, err := svc.File(ctx, project.ID, "client-1", "Swap the photos", entity.RevisionTypeDesignChange, "")
	if err != nil {
		t.Fatalf("file: %v", err)
	}

	if _, err := svc.Triage(ctx, req.ID, entity.RevisionStatusCompleted, "done"); err != nil {
		t.Fatalf("close: %v", err)
	}
	_, err = svc.Triage(ctx, req.ID, entity.RevisionStatusPending, "reopen")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeRevisionTerminal {
		t.Fatalf("expected terminal rejection, got %v", err)
	}
}

func TestTriageUnknownStatus(t *testing.T) {
	svc, _, _ := newRevisionEnv()
	_, err := svc.Triage(context.Background(), "any", "archived", "")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidParam {
		t.Fatalf("expected invalid param, got %v", err)
	}
}
