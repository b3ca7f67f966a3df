// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"sitepilot-api/internal/application/pipeline"
	"sitepilot-api/internal/domain/repository"
	"sitepilot-api/internal/interfaces/http/dto"
	"sitepilot-api/internal/interfaces/http/middleware"
)

// GenerationHandler 生成流水线处理器
type GenerationHandler struct {
	svc *pipeline.Service
}

// NewGenerationHandler 创建生成流水线处理器
func NewGenerationHandler(svc *pipeline.Service) *GenerationHandler {
	return &GenerationHandler{
		svc: svc,
	}
}

// Regenerate 管理员触发重新生成
// @Summary 重新生成网站
// @Description review -> generating 的管理员例外通道，产物在生成成功前保持不变
// @Tags Generation
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 202 {object} dto.Response[dto.RunResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/regenerate [post]
func (h *GenerationHandler) Regenerate(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	adminID := middleware.GetUserIDFromGin(c)

	run, err := h.svc.Regenerate(ctx, projectID, adminID)
	if err != nil {
		writeError(c, err, "failed to start regeneration")
		return
	}

	dto.Accepted(c, dto.ToRunResponse(run))
}

// ListRuns 获取项目的生成运行列表
// @Summary 获取生成运行列表
// @Tags Generation
// @Produce json
// @Param pid path string true "项目 ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Success 200 {object} dto.Response[dto.RunListResponse]
// @Router /v1/projects/{pid}/runs [get]
func (h *GenerationHandler) ListRuns(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	pageReq := dto.BindPage(c)

	result, err := h.svc.ListRuns(ctx, projectID, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		writeError(c, err, "failed to list runs")
		return
	}

	resp := dto.ToRunListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// GetRun 获取生成运行详情
// @Summary 获取生成运行详情
// @Description 供前端轮询生成进度
// @Tags Generation
// @Produce json
// @Param rid path string true "运行 ID"
// @Success 200 {object} dto.Response[dto.RunResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/runs/{rid} [get]
func (h *GenerationHandler) GetRun(c *gin.Context) {
	ctx := c.Request.Context()
	runID := dto.BindRunID(c)

	run, err := h.svc.GetRun(ctx, runID)
	if err != nil {
		writeError(c, err, "failed to get run")
		return
	}

	dto.Success(c, dto.ToRunResponse(run))
}
