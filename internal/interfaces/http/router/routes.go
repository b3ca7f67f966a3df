// Package router 提供 HTTP 路由配置
package router

import (
	"sitepilot-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, h RouterHandlers) {
	// 认证管理
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
	}

	// 项目管理
	projects := v1.Group("/projects")
	{
		projects.GET("", h.Project.ListProjects)
		projects.POST("", h.Project.CreateProject)
		projects.GET("/:pid", h.Project.GetProject)
		projects.PUT("/:pid", h.Project.UpdateProject)

		// 素材
		projects.GET("/:pid/assets", h.Project.ListAssets)
		projects.POST("/:pid/assets", h.Project.UploadAsset)

		// 澄清问答
		projects.POST("/:pid/submit", h.Clarify.Submit)
		projects.GET("/:pid/clarifications", h.Clarify.GetOpenRound)
		projects.POST("/:pid/clarifications/answers", h.Clarify.SubmitAnswers)

		// 状态流转
		projects.POST("/:pid/approve", h.Lifecycle.Approve)
		projects.POST("/:pid/go-live", middleware.RequireAdmin(), h.Lifecycle.GoLive)
		projects.POST("/:pid/regenerate", middleware.RequireAdmin(), h.Generation.Regenerate)

		// 生成运行
		projects.GET("/:pid/runs", h.Generation.ListRuns)

		// 修订
		projects.GET("/:pid/revisions", h.Revision.ListProjectRevisions)
		projects.POST("/:pid/revisions", h.Revision.FileRevision)

		// 建站任务
		projects.GET("/:pid/tasks", h.Task.ListTasks)
		projects.POST("/:pid/tasks", middleware.RequireAdmin(), h.Task.AddTask)

		// 版本台账
		projects.GET("/:pid/versions", h.Version.ListVersions)
		projects.POST("/:pid/versions", middleware.RequireAdmin(), h.Version.SaveVersion)
		projects.GET("/:pid/versions/:vnum", h.Version.GetVersion)
		projects.POST("/:pid/versions/:vnum/restore", middleware.RequireAdmin(), h.Version.RestoreVersion)
	}

	// 生成运行查询
	runs := v1.Group("/runs")
	{
		runs.GET("/:rid", h.Generation.GetRun)
	}

	// 修订分流队列（管理员）
	revisions := v1.Group("/revisions")
	revisions.Use(middleware.RequireAdmin())
	{
		revisions.GET("", h.Revision.ListRevisions)
		revisions.GET("/:revid", h.Revision.GetRevision)
		revisions.PUT("/:revid", h.Revision.TriageRevision)
	}

	// 建站任务管理（管理员）
	tasks := v1.Group("/tasks")
	{
		tasks.GET("/catalogue", h.Task.GetCatalogue)
		tasks.PUT("/:tid", middleware.RequireAdmin(), h.Task.SetTaskStatus)
	}
}
