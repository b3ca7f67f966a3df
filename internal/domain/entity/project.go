// Package entity 定义领域实体
package entity

import (
	"time"
)

// ProjectStatus 项目生命周期状态。唯一事实来源，只允许状态机写入。
type ProjectStatus string

const (
	ProjectStatusPending    ProjectStatus = "pending"
	ProjectStatusQuestions  ProjectStatus = "questions"
	ProjectStatusGenerating ProjectStatus = "generating"
	ProjectStatusReview     ProjectStatus = "review"
	ProjectStatusApproved   ProjectStatus = "approved"
	ProjectStatusLive       ProjectStatus = "live"
)

// ValidProjectStatus 检查状态值是否合法
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectStatusPending, ProjectStatusQuestions, ProjectStatusGenerating,
		ProjectStatusReview, ProjectStatusApproved, ProjectStatusLive:
		return true
	}
	return false
}

// GoalTag 建站目标标签
type GoalTag string

const (
	GoalLeads       GoalTag = "leads"
	GoalSales       GoalTag = "sales"
	GoalBranding    GoalTag = "branding"
	GoalBookings    GoalTag = "bookings"
	GoalPortfolio   GoalTag = "portfolio"
	GoalInformation GoalTag = "information"
)

// ValidGoalTag 检查目标标签是否合法
func ValidGoalTag(g GoalTag) bool {
	switch g {
	case GoalLeads, GoalSales, GoalBranding, GoalBookings, GoalPortfolio, GoalInformation:
		return true
	}
	return false
}

// Project 建站项目聚合根。
// 双写者模型：client 写描述性字段与审批动作，admin 写状态推进与上线地址；
// status 的变更一律经由生命周期状态机。
type Project struct {
	ID              string        `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID         string        `json:"owner_id" gorm:"type:uuid;index;not null"`
	CompanyName     string        `json:"company_name" gorm:"type:varchar(255);not null"`
	GoalDescription string        `json:"goal_description,omitempty" gorm:"type:text"`
	Goals           []GoalTag     `json:"goals,omitempty" gorm:"type:jsonb;serializer:json"`
	StylePreference string        `json:"style_preference,omitempty" gorm:"type:varchar(100)"`
	BrandHints      string        `json:"brand_hints,omitempty" gorm:"type:text"`
	CompetitorHints string        `json:"competitor_hints,omitempty" gorm:"type:text"`
	Status          ProjectStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Artifact        *SiteArtifact `json:"artifact,omitempty" gorm:"type:jsonb;serializer:json"`
	LiveURL         *string       `json:"live_url,omitempty" gorm:"type:varchar(512)"`
	CreatedAt       time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Project) TableName() string {
	return "projects"
}

// NewProject 创建新项目
func NewProject(ownerID, companyName string) *Project {
	now := time.Now()
	return &Project{
		OwnerID:     ownerID,
		CompanyName: companyName,
		Status:      ProjectStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// InputsEditable 描述性输入字段是否可编辑（仅 pending/questions 阶段）
func (p *Project) InputsEditable() bool {
	return p.Status == ProjectStatusPending || p.Status == ProjectStatusQuestions
}

// HasArtifact 是否已有生成产物
func (p *Project) HasArtifact() bool {
	return p.Artifact != nil
}

// CheckInvariants 校验聚合不变量：
// live_url 非空 ⇒ status == live；artifact 非空 ⇒ status ∈ {review, approved, live}，
// 或处于管理员触发的重新生成（generating 且已有产物）。
func (p *Project) CheckInvariants() bool {
	if p.LiveURL != nil && *p.LiveURL != "" && p.Status != ProjectStatusLive {
		return false
	}
	if p.Artifact != nil {
		switch p.Status {
		case ProjectStatusReview, ProjectStatusApproved, ProjectStatusLive, ProjectStatusGenerating:
		default:
			return false
		}
	}
	return true
}

// ReviewOrLater 状态是否已进入评审及之后的阶段。
// 修订请求与版本恢复只在这些阶段允许。
func (s ProjectStatus) ReviewOrLater() bool {
	switch s {
	case ProjectStatusReview, ProjectStatusApproved, ProjectStatusLive:
		return true
	}
	return false
}
