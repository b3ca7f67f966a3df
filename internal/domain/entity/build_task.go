// Package entity 定义领域实体
package entity

import (
	"time"
)

// BuildTaskType 建站任务类型
type BuildTaskType string

const (
	TaskSetupHosting      BuildTaskType = "setup_hosting"
	TaskConfigureDomain   BuildTaskType = "configure_domain"
	TaskIntegrateAnalytics BuildTaskType = "integrate_analytics"
	TaskSetupForms        BuildTaskType = "setup_forms"
	TaskConnectPayments   BuildTaskType = "connect_payments"
	TaskDeployStaging     BuildTaskType = "deploy_staging"
	TaskDeployLive        BuildTaskType = "deploy_live"
)

// BuildTaskCatalogue 固定任务目录：类型 -> 展示名。未知类型一律拒绝。
var BuildTaskCatalogue = map[BuildTaskType]string{
	TaskSetupHosting:       "Set up hosting",
	TaskConfigureDomain:    "Configure domain",
	TaskIntegrateAnalytics: "Integrate analytics",
	TaskSetupForms:         "Set up contact forms",
	TaskConnectPayments:    "Connect payment gateway",
	TaskDeployStaging:      "Deploy to staging",
	TaskDeployLive:         "Deploy to live",
}

// BuildTaskStatus 建站任务状态
type BuildTaskStatus string

const (
	TaskStatusPending    BuildTaskStatus = "pending"
	TaskStatusInProgress BuildTaskStatus = "in_progress"
	TaskStatusCompleted  BuildTaskStatus = "completed"
	TaskStatusBlocked    BuildTaskStatus = "blocked"
)

// ValidBuildTaskStatus 检查任务状态是否合法
func ValidBuildTaskStatus(s BuildTaskStatus) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusBlocked:
		return true
	}
	return false
}

// BuildTask 建站运维任务。任务之间无依赖约束，生命周期独立于修订请求。
type BuildTask struct {
	ID            string           `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID     string           `json:"project_id" gorm:"type:uuid;index;not null"`
	TaskType      BuildTaskType    `json:"task_type" gorm:"type:varchar(32);not null"`
	DisplayName   string           `json:"display_name" gorm:"type:varchar(128)"`
	Status        BuildTaskStatus  `json:"status" gorm:"type:varchar(16);default:'pending';index"`
	Priority      RevisionPriority `json:"priority" gorm:"type:varchar(16);default:'medium'"`
	StagingURL    string           `json:"staging_url,omitempty" gorm:"type:varchar(512)"`
	CompletedDate *time.Time       `json:"completed_date,omitempty"`
	CreatedAt     time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (BuildTask) TableName() string {
	return "build_tasks"
}

// NewBuildTask 按目录创建任务；未知类型返回 false
func NewBuildTask(projectID string, taskType BuildTaskType) (*BuildTask, bool) {
	display, ok := BuildTaskCatalogue[taskType]
	if !ok {
		return nil, false
	}
	return &BuildTask{
		ProjectID:   projectID,
		TaskType:    taskType,
		DisplayName: display,
		Status:      TaskStatusPending,
		Priority:    RevisionPriorityMedium,
		CreatedAt:   time.Now(),
	}, true
}

// SetStatus 变更任务状态。completed_date 当且仅当进入 completed 时设置，
// 离开 completed 时清空。
func (t *BuildTask) SetStatus(status BuildTaskStatus) {
	t.Status = status
	if status == TaskStatusCompleted {
		now := time.Now()
		t.CompletedDate = &now
	} else {
		t.CompletedDate = nil
	}
	t.UpdatedAt = time.Now()
}
