// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"sitepilot-api/internal/application/revision"
	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/domain/repository"
	"sitepilot-api/internal/interfaces/http/dto"
	"sitepilot-api/internal/interfaces/http/middleware"
)

// RevisionHandler 修订请求处理器
type RevisionHandler struct {
	svc *revision.Service
}

// NewRevisionHandler 创建修订请求处理器
func NewRevisionHandler(svc *revision.Service) *RevisionHandler {
	return &RevisionHandler{
		svc: svc,
	}
}

// FileRevision 客户提交修订请求
// @Summary 提交修订请求
// @Description 网站进入 review 之后客户可提交修订，项目状态保持不变
// @Tags Revisions
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.FileRevisionRequest true "修订内容"
// @Success 201 {object} dto.Response[dto.RevisionResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/revisions [post]
func (h *RevisionHandler) FileRevision(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	userID := middleware.GetUserIDFromGin(c)

	var req dto.FileRevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	rev, err := h.svc.File(ctx, projectID, userID, req.Description,
		entity.RevisionRequestType(req.RequestType), entity.RevisionPriority(req.Priority))
	if err != nil {
		writeError(c, err, "failed to file revision")
		return
	}

	dto.Created(c, dto.ToRevisionResponse(rev))
}

// ListProjectRevisions 获取项目的修订请求列表
// @Summary 获取项目修订列表
// @Description 按分流顺序返回：状态优先于优先级，同序按提交时间
// @Tags Revisions
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.RevisionListResponse]
// @Router /v1/projects/{pid}/revisions [get]
func (h *RevisionHandler) ListProjectRevisions(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	pageReq := dto.BindPage(c)

	filter := &repository.RevisionFilter{ProjectID: projectID}
	if middleware.GetRoleFromGin(c) != string(entity.RoleAdmin) {
		filter.ClientID = middleware.GetUserIDFromGin(c)
	}

	result, err := h.svc.List(ctx, filter, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		writeError(c, err, "failed to list revisions")
		return
	}

	resp := dto.ToRevisionListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// ListRevisions 管理员获取全局修订队列
// @Summary 获取修订分流队列
// @Description 跨项目的修订队列，按分流顺序排列，可按状态过滤
// @Tags Revisions
// @Produce json
// @Param status query string false "修订状态过滤"
// @Success 200 {object} dto.Response[dto.RevisionListResponse]
// @Router /v1/revisions [get]
func (h *RevisionHandler) ListRevisions(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	var filter *repository.RevisionFilter
	if status := c.Query("status"); status != "" {
		filter = &repository.RevisionFilter{Status: entity.RevisionStatus(status)}
	}

	result, err := h.svc.List(ctx, filter, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		writeError(c, err, "failed to list revisions")
		return
	}

	resp := dto.ToRevisionListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// GetRevision 获取修订请求详情
// @Summary 获取修订详情
// @Tags Revisions
// @Produce json
// @Param revid path string true "修订 ID"
// @Success 200 {object} dto.Response[dto.RevisionResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/revisions/{revid} [get]
func (h *RevisionHandler) GetRevision(c *gin.Context) {
	ctx := c.Request.Context()
	revisionID := dto.BindRevisionID(c)

	rev, err := h.svc.Get(ctx, revisionID)
	if err != nil {
		writeError(c, err, "failed to get revision")
		return
	}

	dto.Success(c, dto.ToRevisionResponse(rev))
}

// TriageRevision 管理员分流修订请求
// @Summary 分流修订请求
// @Description 推进修订状态并记录处理说明，终态修订不可再变更
// @Tags Revisions
// @Accept json
// @Produce json
// @Param revid path string true "修订 ID"
// @Param body body dto.TriageRevisionRequest true "分流结果"
// @Success 200 {object} dto.Response[dto.RevisionResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/revisions/{revid} [put]
func (h *RevisionHandler) TriageRevision(c *gin.Context) {
	ctx := c.Request.Context()
	revisionID := dto.BindRevisionID(c)

	var req dto.TriageRevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	rev, err := h.svc.Triage(ctx, revisionID, entity.RevisionStatus(req.Status), req.AdminResponse)
	if err != nil {
		writeError(c, err, "failed to triage revision")
		return
	}

	dto.Success(c, dto.ToRevisionResponse(rev))
}
