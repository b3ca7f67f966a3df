// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"sitepilot-api/internal/domain/entity"
)

// FileRevisionRequest 提交修订请求
type FileRevisionRequest struct {
	Description string `json:"description" binding:"required,max=5000"`
	RequestType string `json:"request_type" binding:"required"`
	Priority    string `json:"priority,omitempty"`
}

// TriageRevisionRequest 修订分流请求
type TriageRevisionRequest struct {
	Status        string `json:"status" binding:"required"`
	AdminResponse string `json:"admin_response,omitempty" binding:"max=5000"`
}

// RevisionResponse 修订请求响应
type RevisionResponse struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	ClientID      string    `json:"client_id,omitempty"`
	Description   string    `json:"description"`
	RequestType   string    `json:"request_type"`
	Priority      string    `json:"priority"`
	Status        string    `json:"status"`
	AdminResponse string    `json:"admin_response,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RevisionListResponse 修订请求列表响应，按分流顺序排列
type RevisionListResponse struct {
	Revisions []*RevisionResponse `json:"revisions"`
}

// ToRevisionResponse 将领域实体转换为响应 DTO
func ToRevisionResponse(r *entity.RevisionRequest) *RevisionResponse {
	if r == nil {
		return nil
	}
	return &RevisionResponse{
		ID:            r.ID,
		ProjectID:     r.ProjectID,
		ClientID:      r.ClientID,
		Description:   r.Description,
		RequestType:   string(r.RequestType),
		Priority:      string(r.Priority),
		Status:        string(r.Status),
		AdminResponse: r.AdminResponse,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ToRevisionListResponse 批量转换修订请求响应
func ToRevisionListResponse(items []*entity.RevisionRequest) *RevisionListResponse {
	out := make([]*RevisionResponse, 0, len(items))
	for _, r := range items {
		out = append(out, ToRevisionResponse(r))
	}
	return &RevisionListResponse{Revisions: out}
}
