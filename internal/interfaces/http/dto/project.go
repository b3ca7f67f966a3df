// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"sitepilot-api/internal/application/project"
	"sitepilot-api/internal/domain/entity"
)

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	CompanyName     string   `json:"company_name" binding:"required,max=255"`
	GoalDescription string   `json:"goal_description" binding:"max=5000"`
	Goals           []string `json:"goals,omitempty"`
	StylePreference string   `json:"style_preference" binding:"max=255"`
	BrandHints      string   `json:"brand_hints" binding:"max=2000"`
	CompetitorHints string   `json:"competitor_hints" binding:"max=2000"`
}

// ToCreateInput 转换为应用层输入
func (r *CreateProjectRequest) ToCreateInput() *project.CreateInput {
	return &project.CreateInput{
		CompanyName:     r.CompanyName,
		GoalDescription: r.GoalDescription,
		Goals:           toGoalTags(r.Goals),
		StylePreference: r.StylePreference,
		BrandHints:      r.BrandHints,
		CompetitorHints: r.CompetitorHints,
	}
}

// UpdateProjectRequest 更新项目输入请求，缺省字段表示不修改
type UpdateProjectRequest struct {
	CompanyName     *string  `json:"company_name,omitempty" binding:"omitempty,max=255"`
	GoalDescription *string  `json:"goal_description,omitempty" binding:"omitempty,max=5000"`
	Goals           []string `json:"goals,omitempty"`
	StylePreference *string  `json:"style_preference,omitempty" binding:"omitempty,max=255"`
	BrandHints      *string  `json:"brand_hints,omitempty" binding:"omitempty,max=2000"`
	CompetitorHints *string  `json:"competitor_hints,omitempty" binding:"omitempty,max=2000"`
}

// ToUpdateInput 转换为应用层输入
func (r *UpdateProjectRequest) ToUpdateInput() *project.UpdateInput {
	return &project.UpdateInput{
		CompanyName:     r.CompanyName,
		GoalDescription: r.GoalDescription,
		Goals:           toGoalTags(r.Goals),
		StylePreference: r.StylePreference,
		BrandHints:      r.BrandHints,
		CompetitorHints: r.CompetitorHints,
	}
}

func toGoalTags(goals []string) []entity.GoalTag {
	if len(goals) == 0 {
		return nil
	}
	out := make([]entity.GoalTag, 0, len(goals))
	for _, g := range goals {
		out = append(out, entity.GoalTag(g))
	}
	return out
}

// GoLiveRequest 上线请求
type GoLiveRequest struct {
	LiveURL string `json:"live_url" binding:"required,url,max=512"`
}

// ProjectResponse 项目响应
type ProjectResponse struct {
	ID              string               `json:"id"`
	OwnerID         string               `json:"owner_id,omitempty"`
	CompanyName     string               `json:"company_name"`
	GoalDescription string               `json:"goal_description,omitempty"`
	Goals           []string             `json:"goals,omitempty"`
	StylePreference string               `json:"style_preference,omitempty"`
	BrandHints      string               `json:"brand_hints,omitempty"`
	CompetitorHints string               `json:"competitor_hints,omitempty"`
	Status          string               `json:"status"`
	Artifact        *entity.SiteArtifact `json:"artifact,omitempty"`
	LiveURL         *string              `json:"live_url,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// ProjectListResponse 项目列表响应
type ProjectListResponse struct {
	Projects []*ProjectResponse `json:"projects"`
}

// ToProjectResponse 将领域实体转换为响应 DTO
func ToProjectResponse(p *entity.Project) *ProjectResponse {
	if p == nil {
		return nil
	}
	goals := make([]string, 0, len(p.Goals))
	for _, g := range p.Goals {
		goals = append(goals, string(g))
	}
	return &ProjectResponse{
		ID:              p.ID,
		OwnerID:         p.OwnerID,
		CompanyName:     p.CompanyName,
		GoalDescription: p.GoalDescription,
		Goals:           goals,
		StylePreference: p.StylePreference,
		BrandHints:      p.BrandHints,
		CompetitorHints: p.CompetitorHints,
		Status:          string(p.Status),
		Artifact:        p.Artifact,
		LiveURL:         p.LiveURL,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ToProjectListResponse 批量转换项目响应
func ToProjectListResponse(items []*entity.Project) *ProjectListResponse {
	out := make([]*ProjectResponse, 0, len(items))
	for _, p := range items {
		out = append(out, ToProjectResponse(p))
	}
	return &ProjectListResponse{Projects: out}
}

// AssetResponse 上传素材响应
type AssetResponse struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// AssetListResponse 素材列表响应
type AssetListResponse struct {
	Assets []*AssetResponse `json:"assets"`
}

// ToAssetResponse 将领域实体转换为响应 DTO
func ToAssetResponse(a *entity.UploadedAsset) *AssetResponse {
	if a == nil {
		return nil
	}
	return &AssetResponse{
		ID:        a.ID,
		ProjectID: a.ProjectID,
		FileName:  a.FileName,
		URL:       a.URL,
		SizeBytes: a.SizeBytes,
		CreatedAt: a.CreatedAt,
	}
}

// ToAssetListResponse 批量转换素材响应
func ToAssetListResponse(items []*entity.UploadedAsset) *AssetListResponse {
	out := make([]*AssetResponse, 0, len(items))
	for _, a := range items {
		out = append(out, ToAssetResponse(a))
	}
	return &AssetListResponse{Assets: out}
}
