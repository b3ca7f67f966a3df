// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"sitepilot-api/internal/application/buildtask"
	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/domain/repository"
	"sitepilot-api/internal/interfaces/http/dto"
)

// TaskHandler 建站任务处理器
type TaskHandler struct {
	svc *buildtask.Service
}

// NewTaskHandler 创建建站任务处理器
func NewTaskHandler(svc *buildtask.Service) *TaskHandler {
	return &TaskHandler{
		svc: svc,
	}
}

// AddTask 添加建站任务
// @Summary 添加建站任务
// @Description 任务类型必须在固定目录内，目录外的类型直接拒绝
// @Tags Tasks
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.AddTaskRequest true "任务类型"
// @Success 201 {object} dto.Response[dto.TaskResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/tasks [post]
func (h *TaskHandler) AddTask(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	var req dto.AddTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	task, err := h.svc.Add(ctx, projectID, entity.BuildTaskType(req.TaskType))
	if err != nil {
		writeError(c, err, "failed to add task")
		return
	}

	dto.Created(c, dto.ToTaskResponse(task))
}

// ListTasks 获取项目的任务看板
// @Summary 获取任务看板
// @Tags Tasks
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.TaskListResponse]
// @Router /v1/projects/{pid}/tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	pageReq := dto.BindPage(c)

	result, err := h.svc.List(ctx, projectID, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		writeError(c, err, "failed to list tasks")
		return
	}

	resp := dto.ToTaskListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// SetTaskStatus 更新任务状态
// @Summary 更新任务状态
// @Description 状态改为 completed 时记录完成日期，离开 completed 则清除
// @Tags Tasks
// @Accept json
// @Produce json
// @Param tid path string true "任务 ID"
// @Param body body dto.SetTaskStatusRequest true "目标状态"
// @Success 200 {object} dto.Response[dto.TaskResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/tasks/{tid} [put]
func (h *TaskHandler) SetTaskStatus(c *gin.Context) {
	ctx := c.Request.Context()
	taskID := dto.BindTaskID(c)

	var req dto.SetTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	task, err := h.svc.SetStatus(ctx, taskID, entity.BuildTaskStatus(req.Status), req.StagingURL)
	if err != nil {
		writeError(c, err, "failed to update task")
		return
	}

	dto.Success(c, dto.ToTaskResponse(task))
}

// GetCatalogue 获取任务类型目录
// @Summary 获取任务类型目录
// @Tags Tasks
// @Produce json
// @Success 200 {object} dto.Response[dto.TaskCatalogueResponse]
// @Router /v1/tasks/catalogue [get]
func (h *TaskHandler) GetCatalogue(c *gin.Context) {
	dto.Success(c, dto.ToTaskCatalogueResponse(h.svc.Catalogue()))
}
