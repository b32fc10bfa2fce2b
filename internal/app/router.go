package app

import (
	"github.com/Divya20-05/Learning-Intelligence-Tool/docs"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/config"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/middleware"

	"github.com/Divya20-05/Learning-Intelligence-Tool/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需令牌)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/token", c.auth.IssueToken)
	}

	// 2. 分析接口,鉴权启用时需携带服务令牌
	analysis := router.Group("/api/analysis")
	analysis.Use(middleware.AuthMiddleware(cfg))
	{
		analysis.POST("/upload", c.analysis.UploadDataset)
		analysis.POST("/predict", c.analysis.Predict)
		analysis.POST("/train", c.analysis.Train)
		analysis.GET("/runs", c.analysis.ListRuns)
		analysis.GET("/runs/:id", c.analysis.GetRun)
		analysis.DELETE("/runs/:id", c.analysis.DeleteRun)
		analysis.GET("/runs/:id/report/:type", c.analysis.DownloadReport)
		analysis.GET("/config", c.analysis.GetConfig)
	}
}
