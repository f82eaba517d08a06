package service

import (
	"github.com/gin-gonic/gin"

	"github.com/insighter-ai/insighter/app/core"
	"github.com/insighter-ai/insighter/app/response"
	"github.com/insighter-ai/insighter/cmd/service/handler"
	"github.com/insighter-ai/insighter/cmd/service/middleware"
	"github.com/insighter-ai/insighter/pkg/metrics"
)

func serve(core *core.Core) {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	core.HttpEngine().Run(core.Cfg().Addr)
}

func GetIPLimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, func(c *gin.Context) string {
			return key + ":" + c.ClientIP()
		}, opts...)
	}
}

// agent pipelines share one limiter regardless of caller
func GetAILimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, func(c *gin.Context) string {
			return "ai:" + key
		}, opts...)
	}
}

func setupHttpRouter(s *handler.HttpSrv) {
	ipLimit := GetIPLimitBuilder(s.Core)
	aiLimit := GetAILimitBuilder(s.Core)

	s.Engine.Use(middleware.I18n(), response.NewResponse())
	s.Engine.Use(middleware.Cors)

	s.Engine.GET("/metrics", metrics.DefaultExportHandler())

	apiV1 := s.Engine.Group("/api/v1")
	{
		projects := apiV1.Group("/projects")
		{
			projects.POST("", ipLimit("create_project"), s.CreateProject)
			projects.GET("", s.ListProjects)
			projects.GET("/:projectid", s.GetProject)
			projects.DELETE("/:projectid", s.DeleteProject)

			projects.POST("/:projectid/datasets", ipLimit("upload_dataset"), s.UploadDataset)
			projects.GET("/:projectid/datasets", s.ListDatasets)
			projects.DELETE("/:projectid/datasets/:datasetid", s.DeleteDataset)

			projects.POST("/:projectid/datasets/:datasetid/catalog", aiLimit("insight"), s.GenerateCatalog)
			projects.GET("/:projectid/datasets/:datasetid/catalog", s.GetCatalog)

			projects.POST("/:projectid/pins", s.PinInsight)
			projects.GET("/:projectid/pins", s.ListPinnedInsights)
			projects.DELETE("/:projectid/pins/:pinid", s.UnpinInsight)

			projects.POST("/:projectid/chat", aiLimit("chat"), s.Chat)
			projects.GET("/:projectid/chat", s.ChatHistory)
			projects.DELETE("/:projectid/chat", s.ClearChatHistory)

			projects.GET("/:projectid/alerts", s.ListAlerts)
			projects.DELETE("/:projectid/alerts/:alertid", s.ClearAlert)
			projects.DELETE("/:projectid/alerts", s.ClearAlerts)
		}
	}
}
