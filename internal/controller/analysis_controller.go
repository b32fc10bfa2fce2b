package controller

import (
	"errors"
	"net/http"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/config"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/model"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/service"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalysisController struct {
	AnalysisService   *service.AnalysisService
	PredictionService *service.PredictionService
	Models            config.ModelsConfig
}

func NewAnalysisController(analysisService *service.AnalysisService, predictionService *service.PredictionService, models config.ModelsConfig) *AnalysisController {
	return &AnalysisController{
		AnalysisService:   analysisService,
		PredictionService: predictionService,
		Models:            models,
	}
}

// UploadDataset godoc
// @Summary 上传学习行为数据集
// @Description 上传 CSV 或 JSON 数据集并返回即时校验结果
// @Tags 分析
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "数据集文件(.csv/.json)"
// @Success 201 {object} util.Response{data=service.UploadResult} "上传成功"
// @Failure 400 {object} util.Response "文件格式不支持或表头不合法"
// @Failure 413 {object} util.Response "文件超过大小限制"
// @Router /api/analysis/upload [post]
func (c *AnalysisController) UploadDataset(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "文件不能为空")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	result, err := c.AnalysisService.UploadDataset(ctx.Request.Context(), file.Filename, src, file.Size)
	if err != nil {
		c.writeAnalysisError(ctx, err)
		return
	}

	util.Created(ctx, result)
}

// PredictRequest 触发分析的请求体
type PredictRequest struct {
	Filename string `json:"filename" binding:"required"`
}

// Predict godoc
// @Summary 执行完整分析管道
// @Description 对已上传的数据集运行校验、特征构建、双模型预测、难度评分并生成报告
// @Tags 分析
// @Accept json
// @Produce json
// @Param body body PredictRequest true "数据集文件名(上传接口返回)"
// @Success 200 {object} util.Response{data=service.AnalysisResponse} "分析完成"
// @Failure 400 {object} util.Response "数据格式不合法"
// @Failure 404 {object} util.Response "数据集不存在"
// @Failure 422 {object} util.Response "有效数据不足"
// @Failure 503 {object} util.Response "模型未加载"
// @Router /api/analysis/predict [post]
func (c *AnalysisController) Predict(ctx *gin.Context) {
	var req PredictRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AnalysisService.RunAnalysis(ctx.Request.Context(), req.Filename)
	if err != nil {
		c.writeAnalysisError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// TrainRequest 模型训练请求体
type TrainRequest struct {
	Filename string `json:"filename" binding:"required"`
	Save     bool   `json:"save"`
}

// Train godoc
// @Summary 重新训练预测模型
// @Description 用指定数据集训练完成率与流失模型,成功后替换在线模型
// @Tags 分析
// @Accept json
// @Produce json
// @Param body body TrainRequest true "数据集文件名,save 为 true 时持久化训练产物"
// @Success 200 {object} util.Response{data=service.TrainingResult} "训练完成"
// @Failure 400 {object} util.Response "数据格式不合法"
// @Failure 404 {object} util.Response "数据集不存在"
// @Failure 422 {object} util.Response "训练样本不足"
// @Router /api/analysis/train [post]
func (c *AnalysisController) Train(ctx *gin.Context) {
	var req TrainRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	completionPath, dropoutPath := "", ""
	if req.Save {
		completionPath = c.Models.CompletionPath
		dropoutPath = c.Models.DropoutPath
	}

	result, err := c.AnalysisService.TrainModels(ctx.Request.Context(), req.Filename, completionPath, dropoutPath)
	if err != nil {
		c.writeAnalysisError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// ListRuns godoc
// @Summary 分析任务历史
// @Description 按创建时间倒序分页返回历史任务
// @Tags 分析
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse} "查询成功"
// @Router /api/analysis/runs [get]
func (c *AnalysisController) ListRuns(ctx *gin.Context) {
	page := util.ParseIntDefault(ctx.DefaultQuery("page", "1"), 1)
	limit := util.ParseIntDefault(ctx.DefaultQuery("limit", "20"), 20)

	runs, total, err := c.AnalysisService.ListRuns(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  runs,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetRun godoc
// @Summary 分析任务详情
// @Tags 分析
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} util.Response{data=model.AnalysisRun} "查询成功"
// @Failure 404 {object} util.Response "任务不存在"
// @Router /api/analysis/runs/{id} [get]
func (c *AnalysisController) GetRun(ctx *gin.Context) {
	run, err := c.AnalysisService.GetRun(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrRunNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, run)
}

// DeleteRun godoc
// @Summary 删除分析任务
// @Description 删除任务记录及其报告产物
// @Tags 分析
// @Produce json
// @Param id path string true "任务ID"
// @Success 200 {object} util.Response "删除成功"
// @Failure 404 {object} util.Response "任务不存在"
// @Router /api/analysis/runs/{id} [delete]
func (c *AnalysisController) DeleteRun(ctx *gin.Context) {
	if err := c.AnalysisService.DeleteRun(ctx.Request.Context(), ctx.Param("id")); err != nil {
		if errors.Is(err, util.ErrRunNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"deleted": true})
}

// DownloadReport godoc
// @Summary 下载分析报告
// @Description 按类型下载报告产物,type 取 json、text 或 csv(zip 打包)
// @Tags 分析
// @Produce json
// @Param id path string true "任务ID"
// @Param type path string true "报告类型" Enums(json, text, csv)
// @Success 200 {file} file "报告内容"
// @Failure 404 {object} util.Response "任务或报告不存在"
// @Failure 409 {object} util.Response "任务尚未完成"
// @Router /api/analysis/runs/{id}/report/{type} [get]
func (c *AnalysisController) DownloadReport(ctx *gin.Context) {
	rc, contentType, filename, err := c.AnalysisService.OpenReport(ctx.Request.Context(), ctx.Param("id"), ctx.Param("type"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrRunNotFound), errors.Is(err, util.ErrReportNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrRunNotCompleted):
			util.Error(ctx, http.StatusConflict, "任务尚未完成,暂无报告")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	defer rc.Close()

	ctx.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Content-Disposition": `attachment; filename="` + filename + `"`,
	})
}

// GetConfig godoc
// @Summary 当前生效的分析参数
// @Description 返回阈值、难度权重等运行中参数与模型加载状态
// @Tags 分析
// @Produce json
// @Success 200 {object} util.Response{data=object} "查询成功"
// @Router /api/analysis/config [get]
func (c *AnalysisController) GetConfig(ctx *gin.Context) {
	cfg := c.AnalysisService.AnalyticsSnapshot()
	util.Success(ctx, gin.H{
		"completion_threshold":  cfg.CompletionThreshold,
		"risk_high_threshold":   cfg.RiskHighThreshold,
		"risk_medium_threshold": cfg.RiskMediumThreshold,
		"difficulty_weights": gin.H{
			"dropout":    cfg.DifficultyWeights.Dropout,
			"completion": cfg.DifficultyWeights.Completion,
			"score":      cfg.DifficultyWeights.Score,
			"time":       cfg.DifficultyWeights.Time,
		},
		"min_chapter_sample": cfg.MinChapterSample,
		"strict_validation":  cfg.StrictValidation,
		"models_loaded":      c.PredictionService.ModelsLoaded(),
	})
}

// writeAnalysisError 把管道的类型化错误映射为对应的 HTTP 状态
func (c *AnalysisController) writeAnalysisError(ctx *gin.Context, err error) {
	var schemaErr *model.SchemaError
	var dataErr *model.InsufficientDataError
	var modelErr *model.ModelNotLoadedError

	switch {
	case errors.As(err, &schemaErr):
		ctx.JSON(http.StatusBadRequest, util.Response{
			Code:    http.StatusBadRequest,
			Message: schemaErr.Error(),
			Data:    gin.H{"violations": schemaErr.Violations},
		})
	case errors.As(err, &dataErr):
		util.Error(ctx, http.StatusUnprocessableEntity, dataErr.Error())
	case errors.As(err, &modelErr):
		util.Error(ctx, http.StatusServiceUnavailable, modelErr.Error())
	case errors.Is(err, util.ErrDatasetNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrInvalidFileType):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrFileTooLarge):
		util.Error(ctx, http.StatusRequestEntityTooLarge, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
