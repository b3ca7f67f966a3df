// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"sitepilot-api/internal/domain/entity"
)

// SaveVersionRequest 保存版本快照请求
type SaveVersionRequest struct {
	Description string `json:"description,omitempty" binding:"max=1000"`
}

// SnapshotResponse 版本快照响应
type SnapshotResponse struct {
	ID                string               `json:"id"`
	ProjectID         string               `json:"project_id"`
	VersionNumber     int                  `json:"version_number"`
	Artifact          *entity.SiteArtifact `json:"artifact,omitempty"`
	ChangeDescription string               `json:"change_description,omitempty"`
	CreatedBy         string               `json:"created_by,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
}

// SnapshotListResponse 版本快照列表响应
type SnapshotListResponse struct {
	Snapshots []*SnapshotResponse `json:"snapshots"`
}

// RestoreResponse 版本恢复响应
type RestoreResponse struct {
	ProjectID       string               `json:"project_id"`
	RestoredVersion int                  `json:"restored_version"`
	Artifact        *entity.SiteArtifact `json:"artifact"`
}

// ToSnapshotResponse 将领域实体转换为响应 DTO。
// withArtifact 为 false 时省略快照内容，列表场景只回传元信息。
func ToSnapshotResponse(s *entity.VersionSnapshot, withArtifact bool) *SnapshotResponse {
	if s == nil {
		return nil
	}
	resp := &SnapshotResponse{
		ID:                s.ID,
		ProjectID:         s.ProjectID,
		VersionNumber:     s.VersionNumber,
		ChangeDescription: s.ChangeDescription,
		CreatedBy:         s.CreatedBy,
		CreatedAt:         s.CreatedAt,
	}
	if withArtifact {
		resp.Artifact = s.Artifact
	}
	return resp
}

// ToSnapshotListResponse 批量转换版本快照响应
func ToSnapshotListResponse(items []*entity.VersionSnapshot) *SnapshotListResponse {
	out := make([]*SnapshotResponse, 0, len(items))
	for _, s := range items {
		out = append(out, ToSnapshotResponse(s, false))
	}
	return &SnapshotListResponse{Snapshots: out}
}
