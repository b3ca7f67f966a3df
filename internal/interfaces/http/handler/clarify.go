// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"sitepilot-api/internal/application/clarify"
	"sitepilot-api/internal/interfaces/http/dto"
	"sitepilot-api/internal/interfaces/http/middleware"
)

// ClarifyHandler 澄清流程处理器
type ClarifyHandler struct {
	svc *clarify.Service
}

// NewClarifyHandler 创建澄清流程处理器
func NewClarifyHandler(svc *clarify.Service) *ClarifyHandler {
	return &ClarifyHandler{
		svc: svc,
	}
}

// Submit 提交项目进入评估
// @Summary 提交项目
// @Description 评估需求描述是否充分：充分则直接启动生成，不足则进入澄清问答
// @Tags Clarification
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 202 {object} dto.Response[dto.SubmitResultResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/submit [post]
func (h *ClarifyHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	userID := middleware.GetUserIDFromGin(c)

	result, err := h.svc.Submit(ctx, projectID, userID)
	if err != nil {
		writeError(c, err, "failed to submit project")
		return
	}

	dto.Accepted(c, dto.ToSubmitResultResponse(result))
}

// GetOpenRound 获取待回答的澄清问题
// @Summary 获取澄清问题
// @Tags Clarification
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.ClarificationRoundResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/clarifications [get]
func (h *ClarifyHandler) GetOpenRound(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	userID := middleware.GetUserIDFromGin(c)

	round, err := h.svc.GetOpenRound(ctx, projectID, userID)
	if err != nil {
		writeError(c, err, "failed to get clarification round")
		return
	}
	if round == nil {
		dto.NotFound(c, "no open clarification round")
		return
	}

	dto.Success(c, dto.ToClarificationRoundResponse(round))
}

// SubmitAnswers 提交澄清回答
// @Summary 提交澄清回答
// @Description 回答按问题顺序逐条合并进需求描述，全部回答后启动生成
// @Tags Clarification
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.SubmitAnswersRequest true "回答列表"
// @Success 202 {object} dto.Response[dto.SubmitResultResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/clarifications/answers [post]
func (h *ClarifyHandler) SubmitAnswers(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	userID := middleware.GetUserIDFromGin(c)

	var req dto.SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.SubmitAnswers(ctx, projectID, userID, req.Answers)
	if err != nil {
		writeError(c, err, "failed to submit answers")
		return
	}

	dto.Accepted(c, dto.ToSubmitResultResponse(result))
}
