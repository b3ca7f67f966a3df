// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"sitepilot-api/internal/domain/entity"
)

// GenerationStepDTO 单个流水线步骤
type GenerationStepDTO struct {
	Name    string `json:"name"`
	Ordinal int    `json:"ordinal"`
	Status  string `json:"status"`
}

// RunResponse 生成运行响应，供前端轮询进度
type RunResponse struct {
	ID          string              `json:"id"`
	ProjectID   string              `json:"project_id"`
	Status      string              `json:"status"`
	Steps       []GenerationStepDTO `json:"steps"`
	Progress    int                 `json:"progress"`
	FailedStep  string              `json:"failed_step,omitempty"`
	ErrorDetail string              `json:"error_detail,omitempty"`
	InitiatedBy string              `json:"initiated_by,omitempty"`
	StartedAt   *time.Time          `json:"started_at,omitempty"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// RunListResponse 生成运行列表响应
type RunListResponse struct {
	Runs []*RunResponse `json:"runs"`
}

// ToRunResponse 将领域实体转换为响应 DTO。步骤输出不回传，
// 最终结果通过项目的 artifact 查看。
func ToRunResponse(r *entity.GenerationRun) *RunResponse {
	if r == nil {
		return nil
	}
	steps := make([]GenerationStepDTO, 0, len(r.Steps))
	for _, s := range r.Steps {
		steps = append(steps, GenerationStepDTO{
			Name:    string(s.Name),
			Ordinal: s.Ordinal,
			Status:  string(s.Status),
		})
	}
	return &RunResponse{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		Status:      string(r.Status),
		Steps:       steps,
		Progress:    r.Progress,
		FailedStep:  r.FailedStep,
		ErrorDetail: r.ErrorDetail,
		InitiatedBy: r.InitiatedBy,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
		CreatedAt:   r.CreatedAt,
	}
}

// ToRunListResponse 批量转换生成运行响应
func ToRunListResponse(items []*entity.GenerationRun) *RunListResponse {
	out := make([]*RunResponse, 0, len(items))
	for _, r := range items {
		out = append(out, ToRunResponse(r))
	}
	return &RunListResponse{Runs: out}
}
