// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"sitepilot-api/internal/interfaces/http/dto"
	"sitepilot-api/pkg/errors"
	"sitepilot-api/pkg/logger"
)

// writeError 将应用层错误写为 HTTP 响应。
// AppError 携带自身的 HTTP 状态码与业务错误码，其余错误按 500 处理。
func writeError(c *gin.Context, err error, fallback string) {
	if errors.IsAppError(err) {
		appErr := errors.AsAppError(err)
		dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, &dto.ErrorDetail{
			ErrorCode: string(appErr.Code),
			Details:   appErr.Detail,
		})
		return
	}
	logger.Error(c.Request.Context(), fallback, err)
	dto.InternalError(c, fallback)
}
