package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/model"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/util"
	"github.com/Divya20-05/Learning-Intelligence-Tool/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"
)

// 报告产物文件名,位于 reports/<run-id>/ 之下
const (
	ReportJSONName = "predictions.json"
	ReportTextName = "analysis_report.txt"
	ReportZipName  = "csv_reports.zip"
	csvSubdir      = "csv_reports"
)

// 报告下载类型
const (
	ReportKindJSON = "json"
	ReportKindText = "text"
	ReportKindCSV  = "csv"
)

const (
	reportCacheKeyPrefix = "analysis_report:"
	reportCacheTTL       = 24 * time.Hour
)

// ReportService 将洞察报告渲染为JSON/CSV/文本三种形态并持久化
type ReportService struct {
	Storage *StorageService
	Redis   *redis.Client
}

func NewReportService(storage *StorageService, rdb *redis.Client) *ReportService {
	return &ReportService{Storage: storage, Redis: rdb}
}

// ReportArtifacts 一次运行产出的报告文件位置
type ReportArtifacts struct {
	Dir     string `json:"dir"`
	JSONKey string `json:"json_key"`
	TextKey string `json:"text_key"`
	ZipKey  string `json:"zip_key"`
	Text    string `json:"-"`
}

// Persist 渲染并写入全部报告产物: 结构化JSON、CSV明细、CSV压缩包与文本报告。
// JSON报告同时写入Redis缓存,缓存失败只记日志不影响结果。
func (s *ReportService) Persist(ctx context.Context, runID string, report *model.InsightReport) (*ReportArtifacts, error) {
	dir := util.ReportPrefix + "/" + runID
	artifacts := &ReportArtifacts{
		Dir:     dir,
		JSONKey: dir + "/" + ReportJSONName,
		TextKey: dir + "/" + ReportTextName,
		ZipKey:  dir + "/" + ReportZipName,
	}

	jsonBytes, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化报告失败: %w", err)
	}
	if err := s.upload(ctx, artifacts.JSONKey, jsonBytes, util.MimeJSON); err != nil {
		return nil, err
	}

	csvs := s.BuildCSVs(report)
	for _, name := range sortedKeys(csvs) {
		key := dir + "/" + csvSubdir + "/" + name
		if err := s.upload(ctx, key, csvs[name], util.MimeCSV); err != nil {
			return nil, err
		}
	}

	zipBytes, err := buildCSVZip(csvs)
	if err != nil {
		return nil, fmt.Errorf("打包CSV报告失败: %w", err)
	}
	if err := s.upload(ctx, artifacts.ZipKey, zipBytes, util.MimeZip); err != nil {
		return nil, err
	}

	artifacts.Text = s.RenderText(report)
	if err := s.upload(ctx, artifacts.TextKey, []byte(artifacts.Text), util.MimeText); err != nil {
		return nil, err
	}

	s.cacheJSON(ctx, runID, jsonBytes)

	logger.Log.Info("报告产物写入完成",
		zap.String("runId", runID),
		zap.String("dir", dir),
		zap.Int("csvFiles", len(csvs)))
	return artifacts, nil
}

func (s *ReportService) upload(ctx context.Context, key string, data []byte, contentType string) error {
	if _, err := s.Storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return fmt.Errorf("写入%s失败: %w", key, err)
	}
	return nil
}

func (s *ReportService) cacheJSON(ctx context.Context, runID string, data []byte) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Set(ctx, reportCacheKeyPrefix+runID, data, reportCacheTTL).Err(); err != nil {
		logger.Log.Warn("报告缓存写入失败", zap.String("runId", runID), zap.Error(err))
	}
}

// CachedJSON 从Redis读取报告缓存
func (s *ReportService) CachedJSON(ctx context.Context, runID string) ([]byte, bool) {
	if s.Redis == nil {
		return nil, false
	}
	val, err := s.Redis.Get(ctx, reportCacheKeyPrefix+runID).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Log.Warn("报告缓存读取失败", zap.String("runId", runID), zap.Error(err))
		return nil, false
	}
	return val, true
}

// DropCache 删除报告缓存,任务删除时调用
func (s *ReportService) DropCache(ctx context.Context, runID string) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(ctx, reportCacheKeyPrefix+runID)
}

// OpenArtifact 按类型打开报告产物; JSON优先命中缓存
func (s *ReportService) OpenArtifact(ctx context.Context, runID, kind string) (io.ReadCloser, string, string, error) {
	dir := util.ReportPrefix + "/" + runID
	var key, contentType, filename string

	switch kind {
	case ReportKindJSON:
		if data, ok := s.CachedJSON(ctx, runID); ok {
			return io.NopCloser(bytes.NewReader(data)), util.MimeJSON, ReportJSONName, nil
		}
		key, contentType, filename = dir+"/"+ReportJSONName, util.MimeJSON, ReportJSONName
	case ReportKindText:
		key, contentType, filename = dir+"/"+ReportTextName, util.MimeText, ReportTextName
	case ReportKindCSV:
		key, contentType, filename = dir+"/"+ReportZipName, util.MimeZip, ReportZipName
	default:
		return nil, "", "", util.ErrReportNotFound
	}

	rc, err := s.Storage.Open(ctx, key)
	if err != nil {
		return nil, "", "", util.ErrReportNotFound
	}
	return rc, contentType, filename, nil
}

// BuildCSVs 渲染五张扁平表,每种输出一行一个实体
func (s *ReportService) BuildCSVs(report *model.InsightReport) map[string][]byte {
	csvs := make(map[string][]byte, 5)

	csvs["predictions.csv"] = renderCSV(
		[]string{"student_id", "completion_probability", "predicted_completion", "dropout_probability", "risk_level"},
		len(report.Predictions), func(i int) []string {
			p := report.Predictions[i]
			return []string{
				p.StudentID,
				formatProb(p.CompletionProbability),
				strconv.FormatBool(p.PredictedCompletion),
				formatProb(p.DropoutProbability),
				string(p.RiskLevel),
			}
		})

	csvs["high_risk_students.csv"] = renderCSV(
		[]string{"student_id", "risk_level", "dropout_probability", "completion_probability"},
		len(report.HighRiskStudents), func(i int) []string {
			h := report.HighRiskStudents[i]
			return []string{
				h.StudentID,
				string(h.RiskLevel),
				formatProb(h.DropoutProbability),
				formatProb(h.CompletionProbability),
			}
		})

	csvs["difficult_chapters.csv"] = renderCSV(
		[]string{"course_id", "chapter_order", "difficulty_score", "sample_size", "dropout_rate", "low_completion", "low_score", "high_time_spent"},
		len(report.DifficultChapters), func(i int) []string {
			ch := report.DifficultChapters[i]
			return []string{
				ch.CourseID,
				strconv.Itoa(ch.ChapterOrder),
				formatScore(ch.DifficultyScore),
				strconv.Itoa(ch.SampleSize),
				formatScore(ch.Factors.DropoutRate),
				formatScore(ch.Factors.LowCompletion),
				formatScore(ch.Factors.LowScore),
				formatScore(ch.Factors.HighTimeSpent),
			}
		})

	importanceRows := make([][]string, 0, len(report.CompletionImportance)+len(report.DropoutImportance))
	for _, fi := range report.CompletionImportance {
		importanceRows = append(importanceRows, []string{"completion", fi.Feature, formatProb(fi.Importance)})
	}
	for _, fi := range report.DropoutImportance {
		importanceRows = append(importanceRows, []string{"dropout", fi.Feature, formatProb(fi.Importance)})
	}
	csvs["feature_importance.csv"] = renderCSV(
		[]string{"model", "feature", "importance"},
		len(importanceRows), func(i int) []string { return importanceRows[i] })

	stats := report.SummaryStats
	summaryRows := [][]string{
		{"total_students", strconv.Itoa(stats.TotalStudents)},
		{"predicted_completions", strconv.Itoa(stats.PredictedCompletions)},
		{"predicted_dropouts", strconv.Itoa(stats.PredictedDropouts)},
		{"predicted_completion_rate", formatProb(stats.PredictedCompletionRate)},
		{"mean_completion_probability", formatProb(stats.MeanCompletionProb)},
		{"mean_dropout_probability", formatProb(stats.MeanDropoutProb)},
		{"high_risk_count", strconv.Itoa(stats.HighRiskCount)},
		{"medium_risk_count", strconv.Itoa(stats.MediumRiskCount)},
		{"low_risk_count", strconv.Itoa(stats.LowRiskCount)},
		{"high_risk_rate", formatProb(stats.HighRiskRate)},
		{"chapters_scored", strconv.Itoa(stats.ChaptersScored)},
		{"chapters_excluded", strconv.Itoa(stats.ChaptersExcluded)},
	}
	csvs["summary.csv"] = renderCSV(
		[]string{"metric", "value"},
		len(summaryRows), func(i int) []string { return summaryRows[i] })

	return csvs
}

// RenderText 纯文本报告,表格渲染为终端友好的圆角样式
func (s *ReportService) RenderText(report *model.InsightReport) string {
	var b strings.Builder
	b.WriteString("学习智能分析报告\n")
	b.WriteString("生成时间: " + report.GeneratedAt + "\n\n")

	stats := report.SummaryStats
	summary := newTextTable()
	summary.AppendHeader(table.Row{"指标", "数值"})
	summary.AppendRows([]table.Row{
		{"学生总数", stats.TotalStudents},
		{"预测完成人数", stats.PredictedCompletions},
		{"预测流失人数", stats.PredictedDropouts},
		{"预测完成率", formatPercent(stats.PredictedCompletionRate)},
		{"高风险人数", stats.HighRiskCount},
		{"中风险人数", stats.MediumRiskCount},
		{"低风险人数", stats.LowRiskCount},
		{"参与难度排名章节数", stats.ChaptersScored},
		{"样本不足被排除章节数", stats.ChaptersExcluded},
	})
	b.WriteString("[概要]\n")
	b.WriteString(summary.Render())
	b.WriteString("\n\n")

	if len(report.HighRiskStudents) > 0 {
		risk := newTextTable()
		risk.AppendHeader(table.Row{"学生", "风险等级", "流失概率", "完成概率"})
		for _, h := range report.HighRiskStudents[:headN(len(report.HighRiskStudents), util.TopHighRiskRows)] {
			risk.AppendRow(table.Row{h.StudentID, string(h.RiskLevel), formatProb(h.DropoutProbability), formatProb(h.CompletionProbability)})
		}
		b.WriteString("[风险名单]\n")
		b.WriteString(risk.Render())
		b.WriteString("\n\n")
	}

	if len(report.DifficultChapters) > 0 {
		chapters := newTextTable()
		chapters.AppendHeader(table.Row{"课程", "章节", "难度分", "样本量"})
		for _, ch := range report.DifficultChapters[:headN(len(report.DifficultChapters), util.TopChapterRows)] {
			chapters.AppendRow(table.Row{ch.CourseID, ch.ChapterOrder, formatScore(ch.DifficultyScore), ch.SampleSize})
		}
		b.WriteString("[高难度章节]\n")
		b.WriteString(chapters.Render())
		b.WriteString("\n\n")
	}

	if len(report.CompletionImportance) > 0 {
		importance := newTextTable()
		importance.AppendHeader(table.Row{"特征", "贡献度"})
		for _, fi := range report.CompletionImportance[:headN(len(report.CompletionImportance), util.TopFeatureRows)] {
			importance.AppendRow(table.Row{fi.Feature, formatProb(fi.Importance)})
		}
		b.WriteString("[完成率模型特征贡献]\n")
		b.WriteString(importance.Render())
		b.WriteString("\n\n")
	}

	b.WriteString("[教学建议]\n")
	for i, rec := range report.Recommendations {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, rec.Message))
	}

	if len(report.Diagnostics.RejectedRows) > 0 || len(report.Diagnostics.ExcludedChapters) > 0 {
		b.WriteString("\n[诊断]\n")
		if n := len(report.Diagnostics.RejectedRows); n > 0 {
			b.WriteString(fmt.Sprintf("校验拒绝: %d处违规\n", n))
		}
		for _, ex := range report.Diagnostics.ExcludedChapters {
			b.WriteString(ex.Reason + "\n")
		}
	}

	return b.String()
}

func newTextTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}

func renderCSV(header []string, rows int, row func(int) []string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write(header)
	for i := 0; i < rows; i++ {
		w.Write(row(i))
	}
	w.Flush()
	return buf.Bytes()
}

func buildCSVZip(csvs map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range sortedKeys(csvs) {
		w, err := zw.Create(csvSubdir + "/" + name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(csvs[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func headN(n, max int) int {
	if n < max {
		return n
	}
	return max
}

func formatProb(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}
