// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, h *Handlers) {
	// 项目管理
	projects := v1.Group("/projects")
	{
		projects.GET("", h.Project.ListProjects)
		projects.POST("", h.Project.CreateProject)
		projects.GET("/:pid", h.Project.GetProject)
		projects.PUT("/:pid", h.Project.UpdateProject)
		projects.DELETE("/:pid", h.Project.DeleteProject)

		// 项目下的章节
		projects.GET("/:pid/chapters", h.Chapter.ListChapters)
		projects.GET("/:pid/chapters/:number", h.Chapter.GetChapter)

		// 项目下的素材
		projects.GET("/:pid/sources", h.Source.ListSources)
		projects.POST("/:pid/sources", h.Source.CreateSource)
		projects.PUT("/:pid/sources/:sid", h.Source.UpdateSource)
		projects.DELETE("/:pid/sources/:sid", h.Source.DeleteSource)

		// 章节生成
		projects.POST("/:pid/generate", h.Job.StartRun)
		projects.GET("/:pid/jobs", h.Job.ListJobs)
	}

	// 任务管理
	jobs := v1.Group("/jobs")
	{
		jobs.GET("/:jid", h.Job.GetJob)
		jobs.POST("/:jid/cancel", h.Job.CancelRun)
	}
}
