// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"sitepilot-api/internal/application/version"
	"sitepilot-api/internal/domain/repository"
	"sitepilot-api/internal/interfaces/http/dto"
	"sitepilot-api/internal/interfaces/http/middleware"
)

// VersionHandler 版本台账处理器
type VersionHandler struct {
	svc *version.Service
}

// NewVersionHandler 创建版本台账处理器
func NewVersionHandler(svc *version.Service) *VersionHandler {
	return &VersionHandler{
		svc: svc,
	}
}

// SaveVersion 保存版本快照
// @Summary 保存版本快照
// @Description 版本号为当前最大版本加一，台账只追加不删除
// @Tags Versions
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.SaveVersionRequest true "变更说明"
// @Success 201 {object} dto.Response[dto.SnapshotResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/versions [post]
func (h *VersionHandler) SaveVersion(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	userID := middleware.GetUserIDFromGin(c)

	var req dto.SaveVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	snapshot, err := h.svc.Save(ctx, projectID, req.Description, userID)
	if err != nil {
		writeError(c, err, "failed to save version")
		return
	}

	dto.Created(c, dto.ToSnapshotResponse(snapshot, false))
}

// ListVersions 获取版本历史
// @Summary 获取版本历史
// @Tags Versions
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.SnapshotListResponse]
// @Router /v1/projects/{pid}/versions [get]
func (h *VersionHandler) ListVersions(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	pageReq := dto.BindPage(c)

	result, err := h.svc.List(ctx, projectID, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		writeError(c, err, "failed to list versions")
		return
	}

	resp := dto.ToSnapshotListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// GetVersion 获取指定版本快照
// @Summary 获取版本快照
// @Tags Versions
// @Produce json
// @Param pid path string true "项目 ID"
// @Param vnum path int true "版本号"
// @Success 200 {object} dto.Response[dto.SnapshotResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/versions/{vnum} [get]
func (h *VersionHandler) GetVersion(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	versionNumber := dto.BindVersionNumber(c)
	if versionNumber < 1 {
		dto.BadRequest(c, "invalid version number")
		return
	}

	snapshot, err := h.svc.Get(ctx, projectID, versionNumber)
	if err != nil {
		writeError(c, err, "failed to get version")
		return
	}

	dto.Success(c, dto.ToSnapshotResponse(snapshot, true))
}

// RestoreVersion 恢复历史版本
// @Summary 恢复历史版本
// @Description 用历史快照覆盖当前产物，之后的快照保留不动
// @Tags Versions
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param vnum path int true "版本号"
// @Success 200 {object} dto.Response[dto.RestoreResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/versions/{vnum}/restore [post]
func (h *VersionHandler) RestoreVersion(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	versionNumber := dto.BindVersionNumber(c)
	userID := middleware.GetUserIDFromGin(c)
	if versionNumber < 1 {
		dto.BadRequest(c, "invalid version number")
		return
	}

	artifact, err := h.svc.Restore(ctx, projectID, versionNumber, userID)
	if err != nil {
		writeError(c, err, "failed to restore version")
		return
	}

	dto.Success(c, &dto.RestoreResponse{
		ProjectID:       projectID,
		RestoredVersion: versionNumber,
		Artifact:        artifact,
	})
}
