// Package entity 定义领域实体
package entity

import (
	"time"
)

// RevisionRequestType 修订请求类型
type RevisionRequestType string

const (
	RevisionTypeContentChange RevisionRequestType = "content_change"
	RevisionTypeDesignChange  RevisionRequestType = "design_change"
	RevisionTypeNewFeature    RevisionRequestType = "new_feature"
	RevisionTypeBugFix        RevisionRequestType = "bug_fix"
	RevisionTypeSEOUpdate     RevisionRequestType = "seo_update"
)

// ValidRevisionType 检查请求类型是否合法
func ValidRevisionType(t RevisionRequestType) bool {
	switch t {
	case RevisionTypeContentChange, RevisionTypeDesignChange, RevisionTypeNewFeature,
		RevisionTypeBugFix, RevisionTypeSEOUpdate:
		return true
	}
	return false
}

// RevisionPriority 修订优先级
type RevisionPriority string

const (
	RevisionPriorityLow    RevisionPriority = "low"
	RevisionPriorityMedium RevisionPriority = "medium"
	RevisionPriorityHigh   RevisionPriority = "high"
	RevisionPriorityUrgent RevisionPriority = "urgent"
)

// ValidRevisionPriority 检查优先级是否合法
func ValidRevisionPriority(p RevisionPriority) bool {
	switch p {
	case RevisionPriorityLow, RevisionPriorityMedium, RevisionPriorityHigh, RevisionPriorityUrgent:
		return true
	}
	return false
}

// RevisionStatus 修订状态
type RevisionStatus string

const (
	RevisionStatusPending    RevisionStatus = "pending"
	RevisionStatusInProgress RevisionStatus = "in_progress"
	RevisionStatusCompleted  RevisionStatus = "completed"
	RevisionStatusRejected   RevisionStatus = "rejected"
)

// ValidRevisionStatus 检查状态是否合法
func ValidRevisionStatus(s RevisionStatus) bool {
	switch s {
	case RevisionStatusPending, RevisionStatusInProgress, RevisionStatusCompleted, RevisionStatusRejected:
		return true
	}
	return false
}

// RevisionRequest 客户提交的变更请求。只追加不删除；
// status/admin_response 仅允许 admin 经 triage 写入，终态后不可再改。
type RevisionRequest struct {
	ID            string              `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID     string              `json:"project_id" gorm:"type:uuid;index;not null"`
	ClientID      string              `json:"client_id" gorm:"type:uuid;index;not null"`
	Description   string              `json:"description" gorm:"type:text;not null"`
	RequestType   RevisionRequestType `json:"request_type" gorm:"type:varchar(32);not null"`
	Priority      RevisionPriority    `json:"priority" gorm:"type:varchar(16);default:'medium'"`
	Status        RevisionStatus      `json:"status" gorm:"type:varchar(16);default:'pending';index"`
	AdminResponse string              `json:"admin_response,omitempty" gorm:"type:text"`
	CreatedAt     time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time           `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (RevisionRequest) TableName() string {
	return "revision_requests"
}

// NewRevisionRequest 创建修订请求
func NewRevisionRequest(projectID, clientID, description string, requestType RevisionRequestType, priority RevisionPriority) *RevisionRequest {
	if priority == "" {
		priority = RevisionPriorityMedium
	}
	return &RevisionRequest{
		ProjectID:   projectID,
		ClientID:    clientID,
		Description: description,
		RequestType: requestType,
		Priority:    priority,
		Status:      RevisionStatusPending,
		CreatedAt:   time.Now(),
	}
}

// IsTerminal 终态判断：completed/rejected 不可重开，需另行提交新请求
func (r *RevisionRequest) IsTerminal() bool {
	return r.Status == RevisionStatusCompleted || r.Status == RevisionStatusRejected
}

// StatusRank 分诊排序主键：未处理的排最前
func StatusRank(s RevisionStatus) int {
	switch s {
	case RevisionStatusPending:
		return 0
	case RevisionStatusInProgress:
		return 1
	default:
		return 2
	}
}

// PriorityRank 分诊排序次键：越紧急越靠前
func PriorityRank(p RevisionPriority) int {
	switch p {
	case RevisionPriorityUrgent:
		return 0
	case RevisionPriorityHigh:
		return 1
	case RevisionPriorityMedium:
		return 2
	default:
		return 3
	}
}
