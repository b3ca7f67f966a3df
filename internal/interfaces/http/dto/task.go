// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"sitepilot-api/internal/domain/entity"
)

// AddTaskRequest 添加建站任务请求，任务类型必须在固定目录内
type AddTaskRequest struct {
	TaskType string `json:"task_type" binding:"required"`
}

// SetTaskStatusRequest 更新建站任务状态请求
type SetTaskStatusRequest struct {
	Status     string `json:"status" binding:"required"`
	StagingURL string `json:"staging_url,omitempty" binding:"omitempty,max=512"`
}

// TaskResponse 建站任务响应
type TaskResponse struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"project_id"`
	TaskType      string     `json:"task_type"`
	DisplayName   string     `json:"display_name"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	StagingURL    string     `json:"staging_url,omitempty"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TaskListResponse 建站任务列表响应
type TaskListResponse struct {
	Tasks []*TaskResponse `json:"tasks"`
}

// TaskCatalogueResponse 任务类型目录响应
type TaskCatalogueResponse struct {
	Catalogue map[string]string `json:"catalogue"`
}

// ToTaskResponse 将领域实体转换为响应 DTO
func ToTaskResponse(t *entity.BuildTask) *TaskResponse {
	if t == nil {
		return nil
	}
	return &TaskResponse{
		ID:            t.ID,
		ProjectID:     t.ProjectID,
		TaskType:      string(t.TaskType),
		DisplayName:   t.DisplayName,
		Status:        string(t.Status),
		Priority:      string(t.Priority),
		StagingURL:    t.StagingURL,
		CompletedDate: t.CompletedDate,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// ToTaskListResponse 批量转换建站任务响应
func ToTaskListResponse(items []*entity.BuildTask) *TaskListResponse {
	out := make([]*TaskResponse, 0, len(items))
	for _, t := range items {
		out = append(out, ToTaskResponse(t))
	}
	return &TaskListResponse{Tasks: out}
}

// ToTaskCatalogueResponse 将任务目录转换为响应 DTO
func ToTaskCatalogueResponse(catalogue map[entity.BuildTaskType]string) *TaskCatalogueResponse {
	out := make(map[string]string, len(catalogue))
	for k, v := range catalogue {
		out[string(k)] = v
	}
	return &TaskCatalogueResponse{Catalogue: out}
}
