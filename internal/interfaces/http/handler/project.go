// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"sitepilot-api/internal/application/project"
	"sitepilot-api/internal/domain/entity"
	"sitepilot-api/internal/domain/repository"
	"sitepilot-api/internal/interfaces/http/dto"
	"sitepilot-api/internal/interfaces/http/middleware"
)

// ProjectHandler 项目处理器
type ProjectHandler struct {
	svc *project.Service
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(svc *project.Service) *ProjectHandler {
	return &ProjectHandler{
		svc: svc,
	}
}

// CreateProject 创建项目
// @Summary 创建项目
// @Description 客户提交建站需求，项目初始状态为 pending
// @Tags Projects
// @Accept json
// @Produce json
// @Param body body dto.CreateProjectRequest true "项目信息"
// @Success 201 {object} dto.Response[dto.ProjectResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	p, err := h.svc.Create(ctx, userID, req.ToCreateInput())
	if err != nil {
		writeError(c, err, "failed to create project")
		return
	}

	dto.Created(c, dto.ToProjectResponse(p))
}

// ListProjects 获取项目列表
// @Summary 获取项目列表
// @Description 客户看到自己的项目，管理员看到全部项目，可按状态过滤
// @Tags Projects
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Param status query string false "项目状态过滤"
// @Success 200 {object} dto.Response[dto.ProjectListResponse]
// @Router /v1/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	role := middleware.GetRoleFromGin(c)
	pageReq := dto.BindPage(c)

	filter := &repository.ProjectFilter{}
	if role != string(entity.RoleAdmin) {
		filter.OwnerID = userID
	}
	if status := c.Query("status"); status != "" {
		filter.Status = entity.ProjectStatus(status)
	}

	result, err := h.svc.List(ctx, filter, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		writeError(c, err, "failed to list projects")
		return
	}

	resp := dto.ToProjectListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// GetProject 获取项目详情
// @Summary 获取项目详情
// @Tags Projects
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID := dto.BindProjectID(c)

	p, err := h.loadVisible(c, projectID)
	if err != nil {
		writeError(c, err, "failed to get project")
		return
	}

	dto.Success(c, dto.ToProjectResponse(p))
}

// UpdateProject 更新项目输入
// @Summary 更新项目输入
// @Description 只允许在 pending / questions 状态修改，之后输入被锁定
// @Tags Projects
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.UpdateProjectRequest true "更新字段"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	userID := middleware.GetUserIDFromGin(c)

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	p, err := h.svc.UpdateInputs(ctx, projectID, userID, req.ToUpdateInput())
	if err != nil {
		writeError(c, err, "failed to update project")
		return
	}

	dto.Success(c, dto.ToProjectResponse(p))
}

// UploadAsset 上传项目素材
// @Summary 上传项目素材
// @Description 客户上传 logo、图片等素材，存入本地对象存储
// @Tags Projects
// @Accept multipart/form-data
// @Produce json
// @Param pid path string true "项目 ID"
// @Param file formData file true "素材文件"
// @Success 201 {object} dto.Response[dto.AssetResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/assets [post]
func (h *ProjectHandler) UploadAsset(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	userID := middleware.GetUserIDFromGin(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		dto.BadRequest(c, "missing file: "+err.Error())
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		dto.BadRequest(c, "failed to open uploaded file")
		return
	}
	defer f.Close()

	asset, err := h.svc.UploadAsset(ctx, projectID, userID, fileHeader.Filename, f)
	if err != nil {
		writeError(c, err, "failed to upload asset")
		return
	}

	dto.Created(c, dto.ToAssetResponse(asset))
}

// ListAssets 获取项目素材列表
// @Summary 获取项目素材列表
// @Tags Projects
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.AssetListResponse]
// @Router /v1/projects/{pid}/assets [get]
func (h *ProjectHandler) ListAssets(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	if _, err := h.loadVisible(c, projectID); err != nil {
		writeError(c, err, "failed to get project")
		return
	}

	assets, err := h.svc.ListAssets(ctx, projectID)
	if err != nil {
		writeError(c, err, "failed to list assets")
		return
	}

	dto.Success(c, dto.ToAssetListResponse(assets))
}

// loadVisible 按角色加载项目：管理员可见全部，客户只能访问自己的
func (h *ProjectHandler) loadVisible(c *gin.Context, projectID string) (*entity.Project, error) {
	ctx := c.Request.Context()
	if middleware.GetRoleFromGin(c) == string(entity.RoleAdmin) {
		return h.svc.Get(ctx, projectID)
	}
	return h.svc.GetOwned(ctx, projectID, middleware.GetUserIDFromGin(c))
}
