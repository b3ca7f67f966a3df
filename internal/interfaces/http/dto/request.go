// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// PageRequest 分页请求参数
type PageRequest struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

// Normalize 规范化分页参数
func (r *PageRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = 20
	}
	if r.PageSize > 100 {
		r.PageSize = 100
	}
}

// BindPage 从 Gin Context 绑定分页参数
func BindPage(c *gin.Context) PageRequest {
	req := PageRequest{
		Page:     parseIntWithDefault(c.Query("page"), 1),
		PageSize: parseIntWithDefault(c.Query("page_size"), 20),
	}
	req.Normalize()
	return req
}

// parseIntWithDefault 解析整数，失败时返回默认值
func parseIntWithDefault(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// BindProjectID 从 URI 绑定项目 ID
func BindProjectID(c *gin.Context) string {
	return c.Param("pid")
}

// BindRunID 从 URI 绑定生成运行 ID
func BindRunID(c *gin.Context) string {
	return c.Param("rid")
}

// BindRevisionID 从 URI 绑定修订请求 ID
func BindRevisionID(c *gin.Context) string {
	return c.Param("revid")
}

// BindTaskID 从 URI 绑定建站任务 ID
func BindTaskID(c *gin.Context) string {
	return c.Param("tid")
}

// BindVersionNumber 从 URI 绑定版本号，非法时返回 0
func BindVersionNumber(c *gin.Context) int {
	n, err := strconv.Atoi(c.Param("vnum"))
	if err != nil || n < 1 {
		return 0
	}
	return n
}
