package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/config"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/model"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/repository"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/util"
	"github.com/Divya20-05/Learning-Intelligence-Tool/pkg/logger"
	"github.com/Divya20-05/Learning-Intelligence-Tool/pkg/monitoring"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// AnalysisService 管道编排: 校验→特征→预测/难度→洞察→报告落盘。
// 每次调用构建独立的中间结果,无跨请求共享的可变状态;
// 分析参数持有一份快照,配置热更新时整体替换。
type AnalysisService struct {
	Ingestion  *IngestionService
	Feature    *FeatureService
	Prediction *PredictionService
	Difficulty *DifficultyService
	Insight    *InsightService
	Report     *ReportService
	Training   *TrainingService
	Storage    *StorageService
	RunRepo    *repository.AnalysisRunRepository

	mu        sync.RWMutex
	analytics config.AnalyticsConfig
}

func NewAnalysisService(
	ingestion *IngestionService,
	feature *FeatureService,
	prediction *PredictionService,
	difficulty *DifficultyService,
	insight *InsightService,
	report *ReportService,
	training *TrainingService,
	storage *StorageService,
	runRepo *repository.AnalysisRunRepository,
	analytics config.AnalyticsConfig,
) *AnalysisService {
	return &AnalysisService{
		Ingestion:  ingestion,
		Feature:    feature,
		Prediction: prediction,
		Difficulty: difficulty,
		Insight:    insight,
		Report:     report,
		Training:   training,
		Storage:    storage,
		RunRepo:    runRepo,
		analytics:  analytics,
	}
}

// ApplyConfig 配置热更新入口,只替换分析参数,模型不动
func (s *AnalysisService) ApplyConfig(cfg *config.Config) {
	s.mu.Lock()
	s.analytics = cfg.Analytics
	s.mu.Unlock()
	s.Prediction.UpdateThresholds(cfg.Analytics)
}

// AnalyticsSnapshot 当前生效的分析参数
func (s *AnalysisService) AnalyticsSnapshot() config.AnalyticsConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analytics
}

// UploadResult 数据集上传后的即时校验反馈
type UploadResult struct {
	Filename   string                  `json:"filename"`
	URL        string                  `json:"url"`
	Validation *model.ValidationReport `json:"validation"`
	Students   int                     `json:"students"`
	Chapters   int                     `json:"chapters"`
}

// AnalysisResponse 一次完整分析的响应载荷,列表做截断,完整数据在报告文件中
type AnalysisResponse struct {
	RunID                string                          `json:"run_id"`
	Summary              model.SummaryStats              `json:"summary"`
	HighRiskStudents     []model.HighRiskStudent         `json:"high_risk_students"`
	DifficultChapters    []model.ChapterDifficultyResult `json:"difficult_chapters"`
	CompletionImportance []model.FeatureImportance       `json:"completion_importance"`
	Recommendations      []model.Recommendation          `json:"recommendations"`
	ReportDir            string                          `json:"report_dir"`
	TextReport           string                          `json:"text_report"`
}

// UploadDataset 校验扩展名与大小后存入存储层,并做一次非严格校验给出数据概况
func (s *AnalysisService) UploadDataset(ctx context.Context, filename string, reader io.Reader, size int64) (*UploadResult, error) {
	if size > util.MaxUploadBytes {
		return nil, util.ErrFileTooLarge
	}
	ext, err := util.DatasetExt(filename)
	if err != nil {
		return nil, err
	}

	stored := fmt.Sprintf("%d_%s", time.Now().Unix(), util.SafeFilename(filename))
	key := util.DatasetPrefix + "/" + stored

	data, err := io.ReadAll(io.LimitReader(reader, util.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("读取上传内容失败: %w", err)
	}
	if len(data) > util.MaxUploadBytes {
		return nil, util.ErrFileTooLarge
	}

	url, err := s.Storage.Upload(ctx, key, strings.NewReader(string(data)), int64(len(data)), mimeForExt(ext))
	if err != nil {
		return nil, fmt.Errorf("保存数据集失败: %w", err)
	}

	// 上传阶段始终用非严格模式,把全部诊断一次性反馈给调用方
	records, report, err := s.Ingestion.Ingest(strings.NewReader(string(data)), formatForExt(ext), false)
	if err != nil {
		return nil, err
	}

	result := &UploadResult{
		Filename:   stored,
		URL:        url,
		Validation: report,
	}
	result.Students, result.Chapters = countEntities(records)

	logger.Log.Info("数据集上传完成",
		zap.String("stored", stored),
		zap.Int("accepted", report.AcceptedRows),
		zap.Int("rejected", report.RejectedRows))
	return result, nil
}

// RunAnalysis 对已上传的数据集执行完整管道,登记运行记录并持久化报告
func (s *AnalysisService) RunAnalysis(ctx context.Context, filename string) (*AnalysisResponse, error) {
	cfg := s.AnalyticsSnapshot()
	start := time.Now()
	tracer := otel.Tracer("analysis-pipeline")
	ctx, span := tracer.Start(ctx, "analysis.run")
	defer span.End()

	run := &model.AnalysisRun{Filename: filename, Status: model.RunStatusPending}
	if err := s.RunRepo.Create(run); err != nil {
		return nil, fmt.Errorf("登记分析任务失败: %w", err)
	}

	// 1. 读取数据集并校验
	_, stageSpan := tracer.Start(ctx, "analysis.validate")
	records, report, err := s.ingestDataset(ctx, filename, cfg.StrictValidation)
	stageSpan.End()
	if err != nil {
		s.finishFailed(run, start, err)
		return nil, err
	}
	run.TotalRows = report.TotalRows
	run.AcceptedRows = report.AcceptedRows
	run.RejectedRows = report.RejectedRows
	monitoring.AnalysisRowsRejected.Add(float64(report.RejectedRows))

	// 2. 特征构建
	_, stageSpan = tracer.Start(ctx, "analysis.features")
	students, chapters, err := s.Feature.BuildFeatures(records)
	stageSpan.End()
	if err != nil {
		s.finishFailed(run, start, err)
		return nil, err
	}
	run.StudentCount = len(students)
	run.ChapterCount = len(chapters)

	// 3. 完成率与流失风险预测
	_, stageSpan = tracer.Start(ctx, "analysis.predict")
	predictions, err := s.Prediction.Predict(students)
	stageSpan.End()
	if err != nil {
		s.finishFailed(run, start, err)
		return nil, err
	}

	// 4. 章节难度评分
	_, stageSpan = tracer.Start(ctx, "analysis.difficulty")
	scored, excluded := s.Difficulty.ScoreChapters(chapters, cfg.DifficultyWeights, cfg.MinChapterSample)
	stageSpan.End()

	// 5. 洞察报告
	_, stageSpan = tracer.Start(ctx, "analysis.insight")
	completionImp, err := s.Prediction.CompletionImportances()
	if err != nil {
		stageSpan.End()
		s.finishFailed(run, start, err)
		return nil, err
	}
	dropoutImp, err := s.Prediction.DropoutImportances()
	if err != nil {
		stageSpan.End()
		s.finishFailed(run, start, err)
		return nil, err
	}
	insight := s.Insight.GenerateReport(InsightInput{
		Validation:           report,
		Predictions:          predictions,
		Chapters:             scored,
		Excluded:             excluded,
		CompletionImportance: completionImp,
		DropoutImportance:    dropoutImp,
	})
	stageSpan.End()

	// 6. 报告产物落盘
	_, stageSpan = tracer.Start(ctx, "analysis.persist")
	artifacts, err := s.Report.Persist(ctx, run.ID, insight)
	stageSpan.End()
	if err != nil {
		s.finishFailed(run, start, err)
		return nil, err
	}

	run.Status = model.RunStatusCompleted
	run.HighRiskCount = insight.SummaryStats.HighRiskCount
	run.MediumRiskCount = insight.SummaryStats.MediumRiskCount
	run.LowRiskCount = insight.SummaryStats.LowRiskCount
	run.ReportDir = artifacts.Dir
	run.DurationMs = time.Since(start).Milliseconds()
	if err := s.RunRepo.Update(run); err != nil {
		logger.Log.Error("更新任务状态失败", zap.String("runId", run.ID), zap.Error(err))
	}

	monitoring.AnalysisRunsTotal.WithLabelValues(model.RunStatusCompleted).Inc()
	monitoring.AnalysisDuration.Observe(time.Since(start).Seconds())
	logger.Log.Info("分析完成",
		zap.String("runId", run.ID),
		zap.Int("students", run.StudentCount),
		zap.Int("highRisk", run.HighRiskCount),
		zap.Int64("durationMs", run.DurationMs))

	return &AnalysisResponse{
		RunID:                run.ID,
		Summary:              insight.SummaryStats,
		HighRiskStudents:     insight.HighRiskStudents[:headN(len(insight.HighRiskStudents), util.TopHighRiskRows)],
		DifficultChapters:    insight.DifficultChapters[:headN(len(insight.DifficultChapters), util.TopChapterRows)],
		CompletionImportance: insight.CompletionImportance[:headN(len(insight.CompletionImportance), util.TopFeatureRows)],
		Recommendations:      insight.Recommendations,
		ReportDir:            artifacts.Dir,
		TextReport:           artifacts.Text,
	}, nil
}

// GetRun 查询任务详情
func (s *AnalysisService) GetRun(id string) (*model.AnalysisRun, error) {
	return s.RunRepo.FindByID(id)
}

// ListRuns 任务历史分页
func (s *AnalysisService) ListRuns(page, pageSize int) ([]model.AnalysisRun, int64, error) {
	return s.RunRepo.List(page, pageSize)
}

// DeleteRun 删除任务记录及其报告产物,产物清理失败不阻塞删除
func (s *AnalysisService) DeleteRun(ctx context.Context, id string) error {
	run, err := s.RunRepo.FindByID(id)
	if err != nil {
		return err
	}

	if err := s.RunRepo.Delete(id); err != nil {
		return err
	}
	s.Report.DropCache(ctx, id)

	if run.ReportDir != "" {
		for _, key := range []string{
			run.ReportDir + "/" + ReportJSONName,
			run.ReportDir + "/" + ReportTextName,
			run.ReportDir + "/" + ReportZipName,
		} {
			if err := s.Storage.Delete(ctx, key); err != nil {
				logger.Log.Warn("清理报告产物失败", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return nil
}

// TrainModels 用已上传的数据集重新训练双模型,成功后立即替换在线模型。
// 保存路径非空时同时写出训练产物,供下次启动加载。
func (s *AnalysisService) TrainModels(ctx context.Context, filename, completionPath, dropoutPath string) (*TrainingResult, error) {
	cfg := s.AnalyticsSnapshot()

	key := util.DatasetPrefix + "/" + util.SafeFilename(filename)
	rc, err := s.Storage.Open(ctx, key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, util.ErrDatasetNotFound
		}
		return nil, err
	}
	defer rc.Close()

	ext := strings.ToLower(filepath.Ext(filename))
	result, err := s.Training.Train(rc, formatForExt(ext), cfg)
	if err != nil {
		return nil, err
	}

	if completionPath != "" && dropoutPath != "" {
		if err := s.Training.SaveModels(result, completionPath, dropoutPath); err != nil {
			return nil, err
		}
	}

	s.Prediction.SetModels(result.CompletionModel, result.DropoutModel)
	logger.Log.Info("在线模型已替换",
		zap.Int("samples", result.Samples),
		zap.Float64("completionAccuracy", result.CompletionAccuracy))
	return result, nil
}

// OpenReport 打开已完成任务的报告产物
func (s *AnalysisService) OpenReport(ctx context.Context, runID, kind string) (io.ReadCloser, string, string, error) {
	run, err := s.RunRepo.FindByID(runID)
	if err != nil {
		return nil, "", "", err
	}
	if run.Status != model.RunStatusCompleted {
		return nil, "", "", util.ErrRunNotCompleted
	}
	return s.Report.OpenArtifact(ctx, runID, kind)
}

func (s *AnalysisService) ingestDataset(ctx context.Context, filename string, strict bool) ([]model.ActivityRecord, *model.ValidationReport, error) {
	key := util.DatasetPrefix + "/" + util.SafeFilename(filename)
	rc, err := s.Storage.Open(ctx, key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, util.ErrDatasetNotFound
		}
		return nil, nil, err
	}
	defer rc.Close()

	ext := strings.ToLower(filepath.Ext(filename))
	return s.Ingestion.Ingest(rc, formatForExt(ext), strict)
}

func (s *AnalysisService) finishFailed(run *model.AnalysisRun, start time.Time, cause error) {
	run.Status = model.RunStatusFailed
	run.FailureReason = cause.Error()
	run.DurationMs = time.Since(start).Milliseconds()
	if err := s.RunRepo.Update(run); err != nil {
		logger.Log.Error("更新任务状态失败", zap.String("runId", run.ID), zap.Error(err))
	}
	monitoring.AnalysisRunsTotal.WithLabelValues(model.RunStatusFailed).Inc()
	logger.Log.Warn("分析失败",
		zap.String("runId", run.ID),
		zap.String("reason", run.FailureReason))
}

func formatForExt(ext string) string {
	if ext == ".json" {
		return FormatJSON
	}
	return FormatCSV
}

func mimeForExt(ext string) string {
	if ext == ".json" {
		return util.MimeJSON
	}
	return util.MimeCSV
}

func countEntities(records []model.ActivityRecord) (students, chapters int) {
	studentSet := make(map[string]bool)
	chapterSet := make(map[string]bool)
	for _, rec := range records {
		studentSet[rec.StudentID] = true
		chapterSet[fmt.Sprintf("%s|%d", rec.CourseID, rec.ChapterOrder)] = true
	}
	return len(studentSet), len(chapterSet)
}
