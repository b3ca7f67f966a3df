// Package auth 实现注册、登录与令牌刷新
package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"sitepilot-api/internal/config"
	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/domain/repository"
	apperrors "sitepilot-api/pkg/errors"
	"sitepilot-api/pkg/logger"
	"sitepilot-api/pkg/utils"
)

// Service 认证应用服务
type Service struct {
	users repository.UserRepository
	jwt   *utils.JWTManager
	cfg   *config.JWTConfig
}

// NewService 创建认证服务
func NewService(users repository.UserRepository, jwt *utils.JWTManager, cfg *config.Config) *Service {
	return &Service{
		users: users,
		jwt:   jwt,
		cfg:   &cfg.Security.JWT,
	}
}

// Register 注册客户账号
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "valid email is required")
	}
	if len(password) < 8 {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "password must be at least 8 characters")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to check email")
	}
	if existing != nil {
		return nil, apperrors.New(apperrors.CodeConflict, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to hash password")
	}

	user := &entity.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(displayName),
		Role:         entity.RoleClient,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create user")
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "email", email)
	return user, nil
}

// Login 登录，返回访问/刷新令牌对
func (s *Service) Login(ctx context.Context, email, password string) (*entity.User, *utils.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load user")
	}
	if user == nil {
		return nil, nil, apperrors.New(apperrors.CodeUnauthorized, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperrors.New(apperrors.CodeUnauthorized, "invalid email or password")
	}

	pair, err := s.jwt.GenerateTokenPair(user.ID, string(user.Role), s.cfg.Expiration, s.cfg.RefreshExpiration)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to issue tokens")
	}
	return user, pair, nil
}

// Refresh 用刷新令牌换发新令牌对
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	claims, err := s.jwt.ParseToken(refreshToken)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeTokenInvalid, "invalid refresh token")
	}
	if claims.Type != "refresh" {
		return nil, apperrors.New(apperrors.CodeTokenInvalid, "not a refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load user")
	}
	if user == nil {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "user no longer exists")
	}

	pair, err := s.jwt.GenerateTokenPair(user.ID, string(user.Role), s.cfg.Expiration, s.cfg.RefreshExpiration)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to issue tokens")
	}
	return pair, nil
}
