package lifecycle_test

import (
	"context"
	"testing"

	"sitepilot-api/internal/application/apptest"
	"sitepilot-api/internal/application/lifecycle"
	"sitepilot-api/internal/domain/entity"
	apperrors "sitepilot-api/pkg/errors"
)

func newLifecycleEnv() (*lifecycle.Service, *apptest.ProjectRepo, *apptest.Notifier) {
	projects := apptest.NewProjectRepo()
	notifier := &apptest.Notifier{}
	svc := lifecycle.NewService(projects, apptest.Tx{}, notifier)
	return svc, projects, notifier
}

func TestApprove(t *testing.T) {
	svc, projects, notifier := newLifecycleEnv()
	ctx := context.Background()
	project := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusReview)

	got, err := svc.Approve(ctx, project.ID, "client-1")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != entity.ProjectStatusApproved {
		t.Fatalf("status = %s, want approved", got.Status)
	}

	stored, _ := projects.GetByID(ctx, project.ID)
	if stored.Status != entity.ProjectStatusApproved {
		t.Fatalf("stored status = %s, want approved", stored.Status)
	}
	if len(notifier.Events) != 1 || notifier.Events[0].To != entity.ProjectStatusApproved {
		t.Fatalf("expected one approved notification, got %+v", notifier.Events)
	}
}

func TestApproveWrongOwner(t *testing.T) {
	svc, projects, _ := newLifecycleEnv()
	project := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusReview)

	_, err := svc.Approve(context.Background(), project.ID, "client-2")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodePermissionDenied {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestApproveOutsideReview(t *testing.T) {
	svc, projects, notifier := newLifecycleEnv()
	project := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusPending)

	_, err := svc.Approve(context.Background(), project.ID, "client-1")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if len(notifier.Events) != 0 {
		t.Fatalf("rejected transition must not notify, got %+v", notifier.Events)
	}
}

func TestGoLiveSetsURLAndStatusTogether(t *testing.T) {
	svc, projects, notifier := newLifecycleEnv()
	ctx := context.Background()
	project := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusApproved)

	stored, _ := projects.GetByID(ctx, project.ID)
	if stored.LiveURL != nil {
		t.Fatalf("live_url must be empty before go-live")
	}

	got, err := svc.GoLive(ctx, project.ID, "https://acme.example.com", "admin-1")
	if err != nil {
		t.Fatalf("go live: %v", err)
	}
	if got.Status != entity.ProjectStatusLive {
		t.Fatalf("status = %s, want live", got.Status)
	}
	if got.LiveURL == nil || *got.LiveURL != "https://acme.example.com" {
		t.Fatalf("live_url = %v, want set", got.LiveURL)
	}
	if !got.CheckInvariants() {
		t.Fatal("invariants must hold after go-live")
	}
	if len(notifier.Events) != 1 || notifier.Events[0].To != entity.ProjectStatusLive {
		t.Fatalf("expected one live notification, got %+v", notifier.Events)
	}
}

func TestGoLiveFromPendingRejected(t *testing.T) {
	svc, projects, _ := newLifecycleEnv()
	ctx := context.Background()
	project := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusPending)

	_, err := svc.GoLive(ctx, project.ID, "https://acme.example.com", "admin-1")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	stored, _ := projects.GetByID(ctx, project.ID)
	if stored.LiveURL != nil {
		t.Fatal("live_url must stay empty when the transition is rejected")
	}
	if stored.Status != entity.ProjectStatusPending {
		t.Fatalf("status = %s, want pending", stored.Status)
	}
}

func TestGoLiveRequiresURL(t *testing.T) {
	svc, projects, _ := newLifecycleEnv()
	project := apptest.SeedProject(t, projects, "client-1", entity.ProjectStatusApproved)

	_, err := svc.GoLive(context.Background(), project.ID, "   ", "admin-1")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidParam {
		t.Fatalf("expected invalid param, got %v", err)
	}
}
