// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"sitepilot-api/internal/application/auth"
	"sitepilot-api/internal/config"
	"sitepilot-api/internal/interfaces/http/dto"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	svc *auth.Service
	cfg *config.Config
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(svc *auth.Service, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		svc: svc,
		cfg: cfg,
	}
}

// Register 注册
// @Summary 客户注册
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "注册信息"
// @Success 201 {object} dto.Response[dto.AuthResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, err := h.svc.Register(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		writeError(c, err, "registration failed")
		return
	}

	// 注册即登录，直接下发 Token
	_, tokens, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeError(c, err, "user created but failed to generate tokens")
		return
	}

	dto.Created(c, &dto.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    int(h.cfg.Security.JWT.Expiration.Seconds()),
		User:         dto.ToAuthUserDTO(user),
	})
}

// Login 登录
// @Summary 用户登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.Response[dto.AuthResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, tokens, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeError(c, err, "login failed")
		return
	}

	dto.Success(c, &dto.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    int(h.cfg.Security.JWT.Expiration.Seconds()),
		User:         dto.ToAuthUserDTO(user),
	})
}

// Refresh 刷新 Token
// @Summary 刷新访问令牌
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshRequest true "刷新令牌"
// @Success 200 {object} dto.Response[dto.AuthResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	tokens, err := h.svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		writeError(c, err, "token refresh failed")
		return
	}

	dto.Success(c, &dto.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    int(h.cfg.Security.JWT.Expiration.Seconds()),
	})
}
