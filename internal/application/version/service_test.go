package version_test

import (
	"context"
	"testing"

	"sitepilot-api/internal/application/apptest"
	"sitepilot-api/internal/application/version"
	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/domain/repository"
	apperrors "sitepilot-api/pkg/errors"
)

type versionEnv struct {
	Svc       *version.Service
	Projects  *apptest.ProjectRepo
	Snapshots *apptest.SnapshotRepo
}

func newVersionEnv() *versionEnv {
	env := &versionEnv{
		Projects:  apptest.NewProjectRepo(),
		Snapshots: apptest.NewSnapshotRepo(),
	}
	env.Svc = version.NewService(env.Snapshots, env.Projects, apptest.Tx{})
	return env
}

func artifactNamed(siteName string) *entity.SiteArtifact {
	a := entity.NewSiteArtifact()
	a.Structure = &entity.SiteStructure{
		SiteName: siteName,
		Pages:    []entity.SitePage{{Key: "home", Title: "Home", Slug: "/"}},
	}
	a.SEO = &entity.SiteSEO{SiteTitle: siteName, SiteDescription: "A website"}
	a.Content = &entity.SiteContent{Blocks: []entity.ContentBlock{{PageKey: "home", SectionKey: "hero", Body: "Welcome"}}}
	return a
}

func (env *versionEnv) seedReviewProject(t *testing.T, siteName string) *entity.Project {
	t.Helper()
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusReview)
	project.Artifact = artifactNamed(siteName)
	if err := env.Projects.Update(context.Background(), project); err != nil {
		t.Fatalf("seed artifact: %v", err)
	}
	return project
}

func TestSaveNumbersVersionsFromOneWithoutGaps(t *testing.T) {
	env := newVersionEnv()
	ctx := context.Background()
	project := env.seedReviewProject(t, "Acme")

	for want := 1; want <= 3; want++ {
		snapshot, err := env.Svc.Save(ctx, project.ID, "", "admin-1")
		if err != nil {
			t.Fatalf("save %d: %v", want, err)
		}
		if snapshot.VersionNumber != want {
			t.Fatalf("version = %d, want %d", snapshot.VersionNumber, want)
		}
	}

	result, err := env.Svc.List(ctx, project.ID, repository.NewPagination(1, 20))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 3 {
		t.Fatalf("count = %d, want 3", len(result.Items))
	}
	// 降序且无空洞
	for i, s := range result.Items {
		if s.VersionNumber != 3-i {
			t.Fatalf("position %d = v%d, want v%d", i, s.VersionNumber, 3-i)
		}
	}
}

func TestSaveDefaultsDescription(t *testing.T) {
	env := newVersionEnv()
	project := env.seedReviewProject(t, "Acme")

	snapshot, err := env.Svc.Save(context.Background(), project.ID, "   ", "admin-1")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if snapshot.ChangeDescription != "manual save" {
		t.Fatalf("description = %q", snapshot.ChangeDescription)
	}
}

func TestSaveRequiresArtifact(t *testing.T) {
	env := newVersionEnv()
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusPending)

	_, err := env.Svc.Save(context.Background(), project.ID, "", "admin-1")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidParam {
		t.Fatalf("expected invalid param, got %v", err)
	}
}

func TestSnapshotIsImmutableAfterSave(t *testing.T) {
	env := newVersionEnv()
	ctx := context.Background()
	project := env.seedReviewProject(t, "Original")

	if _, err := env.Svc.Save(ctx, project.ID, "v1", "admin-1"); err != nil {
		t.Fatalf("save: %v", err)
	}

	// 保存后继续改动项目产物，不得影响已写入的快照
	project.Artifact.Structure.SiteName = "Mutated"
	if err := env.Projects.Update(ctx, project); err != nil {
		t.Fatalf("mutate project: %v", err)
	}

	snapshot, err := env.Svc.Get(ctx, project.ID, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if snapshot.Artifact.Structure.SiteName != "Original" {
		t.Fatal("saved snapshot must not change when the live artifact changes")
	}
}

func TestRestoreOverwritesLiveArtifactOnly(t *testing.T) {
	env := newVersionEnv()
	ctx := context.Background()
	project := env.seedReviewProject(t, "Version One")
	if _, err := env.Svc.Save(ctx, project.ID, "v1", "admin-1"); err != nil {
		t.Fatalf("save v1: %v", err)
	}

	project.Artifact = artifactNamed("Version Two")
	if err := env.Projects.Update(ctx, project); err != nil {
		t.Fatalf("update artifact: %v", err)
	}
	if _, err := env.Svc.Save(ctx, project.ID, "v2", "admin-1"); err != nil {
		t.Fatalf("save v2: %v", err)
	}

	artifact, err := env.Svc.Restore(ctx, project.ID, 1, "admin-1")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if artifact.Structure.SiteName != "Version One" {
		t.Fatalf("restored site name = %q, want Version One", artifact.Structure.SiteName)
	}

	stored, _ := env.Projects.GetByID(ctx, project.ID)
	if stored.Artifact.Structure.SiteName != "Version One" {
		t.Fatal("live artifact must be overwritten by restore")
	}

	// 更高版本的快照原样保留
	v2, err := env.Svc.Get(ctx, project.ID, 2)
	if err != nil {
		t.Fatalf("get v2 after restore: %v", err)
	}
	if v2.Artifact.Structure.SiteName != "Version Two" {
		t.Fatal("later snapshots must survive a restore")
	}
}

func TestRestoreThenSaveAppendsMaxPlusOne(t *testing.T) {
	env := newVersionEnv()
	ctx := context.Background()
	project := env.seedReviewProject(t, "Version One")
	if _, err := env.Svc.Save(ctx, project.ID, "v1", "admin-1"); err != nil {
		t.Fatalf("save v1: %v", err)
	}
	project.Artifact = artifactNamed("Version Two")
	if err := env.Projects.Update(ctx, project); err != nil {
		t.Fatalf("update artifact: %v", err)
	}
	if _, err := env.Svc.Save(ctx, project.ID, "v2", "admin-1"); err != nil {
		t.Fatalf("save v2: %v", err)
	}

	if _, err := env.Svc.Restore(ctx, project.ID, 1, "admin-1"); err != nil {
		t.Fatalf("restore: %v", err)
	}
	snapshot, err := env.Svc.Save(ctx, project.ID, "after restore", "admin-1")
	if err != nil {
		t.Fatalf("save after restore: %v", err)
	}
	if snapshot.VersionNumber != 3 {
		t.Fatalf("version = %d, want 3 (max+1, never a backfill)", snapshot.VersionNumber)
	}
}

func TestRestoreBeforeReviewRejected(t *testing.T) {
	env := newVersionEnv()
	project := apptest.SeedProject(t, env.Projects, "client-1", entity.ProjectStatusGenerating)

	_, err := env.Svc.Restore(context.Background(), project.ID, 1, "admin-1")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestRestoreUnknownVersion(t *testing.T) {
	env := newVersionEnv()
	project := env.seedReviewProject(t, "Acme")

	_, err := env.Svc.Restore(context.Background(), project.ID, 7, "admin-1")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeVersionNotFound {
		t.Fatalf("expected version not found, got %v", err)
	}
}
