// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"sitepilot-api/internal/application/lifecycle"
	"sitepilot-api/internal/interfaces/http/dto"
	"sitepilot-api/internal/interfaces/http/middleware"
)

// LifecycleHandler 项目状态流转处理器
type LifecycleHandler struct {
	svc *lifecycle.Service
}

// NewLifecycleHandler 创建状态流转处理器
func NewLifecycleHandler(svc *lifecycle.Service) *LifecycleHandler {
	return &LifecycleHandler{
		svc: svc,
	}
}

// Approve 客户验收
// @Summary 客户验收网站
// @Description review -> approved，验收后项目输入与产物锁定
// @Tags Lifecycle
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/approve [post]
func (h *LifecycleHandler) Approve(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	userID := middleware.GetUserIDFromGin(c)

	p, err := h.svc.Approve(ctx, projectID, userID)
	if err != nil {
		writeError(c, err, "failed to approve project")
		return
	}

	dto.Success(c, dto.ToProjectResponse(p))
}

// GoLive 上线
// @Summary 管理员发布网站
// @Description approved -> live，记录发布地址并通知客户
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.GoLiveRequest true "发布地址"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/go-live [post]
func (h *LifecycleHandler) GoLive(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	adminID := middleware.GetUserIDFromGin(c)

	var req dto.GoLiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	p, err := h.svc.GoLive(ctx, projectID, req.LiveURL, adminID)
	if err != nil {
		writeError(c, err, "failed to publish project")
		return
	}

	dto.Success(c, dto.ToProjectResponse(p))
}
