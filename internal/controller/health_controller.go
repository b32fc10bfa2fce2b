package controller

import (
	"net/http"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/service"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB         *gorm.DB
	Prediction *service.PredictionService
}

func NewHealthController(db *gorm.DB, prediction *service.PredictionService) *HealthController {
	return &HealthController{DB: db, Prediction: prediction}
}

// @Summary 健康检查
// @Description 检查服务状态与模型加载情况
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查数据库连接
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.Ping(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status":        "ok",
		"models_loaded": c.Prediction.ModelsLoaded(),
		"components": gin.H{
			"database": "up",
		},
	})
}
