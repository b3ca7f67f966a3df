package auth_test

import (
	"context"
	"testing"
	"time"

	"sitepilot-api/internal/application/apptest"
	"sitepilot-api/internal/application/auth"
	"sitepilot-api/internal/config"
	"sitepilot-api/internal/domain/entity"
	apperrors "sitepilot-api/pkg/errors"
	"sitepilot-api/pkg/utils"
)

func newAuthService() (*auth.Service, *apptest.UserRepo) {
	users := apptest.NewUserRepo()
	cfg := &config.Config{}
	cfg.Security.JWT.Secret = "test-secret"
	cfg.Security.JWT.Issuer = "sitepilot-test"
	cfg.Security.JWT.Expiration = time.Hour
	cfg.Security.JWT.RefreshExpiration = 24 * time.Hour
	jwt := utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer)
	return auth.NewService(users, jwt, cfg), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Client@Example.com", "supersecret", "Client One")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "client@example.com" {
		t.Fatalf("email = %q, want lowercased", user.Email)
	}
	if user.Role != entity.RoleClient {
		t.Fatalf("role = %s, want client", user.Role)
	}
	if user.PasswordHash == "supersecret" {
		t.Fatal("password must be hashed")
	}

	got, pair, err := svc.Login(ctx, "client@example.com", "supersecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("login returned user %s, want %s", got.ID, user.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("login must issue both tokens")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "not-an-email", "supersecret", ""); err == nil {
		t.Fatal("invalid email must be rejected")
	}
	if _, err := svc.Register(ctx, "a@b.com", "short", ""); err == nil {
		t.Fatal("short password must be rejected")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "client@example.com", "supersecret", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Register(ctx, "client@example.com", "supersecret", "")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, "client@example.com", "supersecret", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, err := svc.Login(ctx, "client@example.com", "wrongpassword")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefresh(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, "client@example.com", "supersecret", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, pair, err := svc.Login(ctx, "client@example.com", "supersecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.AccessToken == "" || next.RefreshToken == "" {
		t.Fatal("refresh must issue a new pair")
	}

	// 访问令牌不能用于刷新
	_, err = svc.Refresh(ctx, pair.AccessToken)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeTokenInvalid {
		t.Fatalf("expected token invalid, got %v", err)
	}
}
