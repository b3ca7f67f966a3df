// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"sitepilot-api/internal/application/clarify"
	"sitepilot-api/internal/domain/entity"
)

// SubmitAnswersRequest 提交澄清回答请求，回答顺序与问题一一对应
type SubmitAnswersRequest struct {
	Answers []string `json:"answers" binding:"required"`
}

// ClarificationRoundResponse 澄清轮次响应
type ClarificationRoundResponse struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Questions []string  `json:"questions"`
	Answers   []string  `json:"answers,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmitResultResponse 提交评估结果响应。
// 信息充分时返回启动的运行，不足时返回澄清问题。
type SubmitResultResponse struct {
	Project *ProjectResponse            `json:"project"`
	Round   *ClarificationRoundResponse `json:"round,omitempty"`
	Run     *RunResponse                `json:"run,omitempty"`
}

// ToClarificationRoundResponse 将领域实体转换为响应 DTO
func ToClarificationRoundResponse(r *entity.ClarificationRound) *ClarificationRoundResponse {
	if r == nil {
		return nil
	}
	return &ClarificationRoundResponse{
		ID:        r.ID,
		ProjectID: r.ProjectID,
		Questions: r.Questions,
		Answers:   r.Answers,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

// ToSubmitResultResponse 将应用层结果转换为响应 DTO
func ToSubmitResultResponse(res *clarify.SubmitResult) *SubmitResultResponse {
	if res == nil {
		return nil
	}
	return &SubmitResultResponse{
		Project: ToProjectResponse(res.Project),
		Round:   ToClarificationRoundResponse(res.Round),
		Run:     ToRunResponse(res.Run),
	}
}
