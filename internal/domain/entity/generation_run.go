// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"math"
	"time"
)

// StepName 生成步骤名
type StepName string

const (
	StepStructure StepName = "structure"
	StepSEO       StepName = "seo"
	StepContent   StepName = "content"
	StepDesign    StepName = "design"
)

// StepStatus 步骤状态
type StepStatus string

const (
	StepStatusPending StepStatus = "pending"
	StepStatusRunning StepStatus = "running"
	StepStatusDone    StepStatus = "done"
	StepStatusFailed  StepStatus = "failed"
)

// RunStatus 流水线运行状态
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// GenerationStep 单个生成步骤：步骤名、序号、状态与该步骤自己的 JSON 输出
type GenerationStep struct {
	Name    StepName        `json:"name"`
	Ordinal int             `json:"ordinal"`
	Status  StepStatus      `json:"status"`
	Output  json.RawMessage `json:"output,omitempty"`
}

// GenerationRun 一次流水线运行。步骤严格按序执行，
// 进度在每步完成后按 round(100*done/total) 更新，供前端轮询。
type GenerationRun struct {
	ID          string           `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID   string           `json:"project_id" gorm:"type:uuid;index;not null"`
	Status      RunStatus        `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Steps       []GenerationStep `json:"steps" gorm:"type:jsonb;serializer:json"`
	Progress    int              `json:"progress" gorm:"default:0"` // 0-100
	FailedStep  string           `json:"failed_step,omitempty" gorm:"type:varchar(32)"`
	ErrorDetail string           `json:"error_detail,omitempty" gorm:"type:text"`
	InitiatedBy string           `json:"initiated_by" gorm:"type:uuid"`
	CreatedAt   time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// TableName 指定表名
func (GenerationRun) TableName() string {
	return "generation_runs"
}

// NewGenerationRun 创建新运行，步骤初始化为 pending
func NewGenerationRun(projectID, initiatedBy string, steps []StepName) *GenerationRun {
	run := &GenerationRun{
		ProjectID:   projectID,
		Status:      RunStatusPending,
		InitiatedBy: initiatedBy,
		CreatedAt:   time.Now(),
	}
	for i, name := range steps {
		run.Steps = append(run.Steps, GenerationStep{
			Name:    name,
			Ordinal: i,
			Status:  StepStatusPending,
		})
	}
	return run
}

// Start 开始运行
func (r *GenerationRun) Start() {
	now := time.Now()
	r.Status = RunStatusRunning
	r.StartedAt = &now
}

// StepDone 标记步骤完成并推进进度。进度单调不减。
func (r *GenerationRun) StepDone(name StepName, output json.RawMessage) {
	done := 0
	for i := range r.Steps {
		if r.Steps[i].Name == name {
			r.Steps[i].Status = StepStatusDone
			r.Steps[i].Output = output
		}
		if r.Steps[i].Status == StepStatusDone {
			done++
		}
	}
	if p := r.progressFor(done); p > r.Progress {
		r.Progress = p
	}
}

// StepRunning 标记步骤开始执行
func (r *GenerationRun) StepRunning(name StepName) {
	for i := range r.Steps {
		if r.Steps[i].Name == name {
			r.Steps[i].Status = StepStatusRunning
		}
	}
}

// Complete 运行成功
func (r *GenerationRun) Complete() {
	now := time.Now()
	r.Status = RunStatusCompleted
	r.Progress = 100
	r.CompletedAt = &now
}

// Fail 运行失败，记录失败步骤名
func (r *GenerationRun) Fail(step StepName, detail string) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.FailedStep = string(step)
	r.ErrorDetail = detail
	r.CompletedAt = &now
	for i := range r.Steps {
		if r.Steps[i].Name == step {
			r.Steps[i].Status = StepStatusFailed
		}
	}
}

func (r *GenerationRun) progressFor(done int) int {
	total := len(r.Steps)
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}
