package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/model"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func persistFixtureReport(t *testing.T) (*ReportService, string, *ReportArtifacts, *model.InsightReport) {
	t.Helper()
	storage, dir := newLocalStorage(t)
	svc := NewReportService(storage, nil)

	report := NewInsightService().GenerateReport(insightFixture())
	artifacts, err := svc.Persist(context.Background(), "run-1", report)
	require.NoError(t, err)
	return svc, dir, artifacts, report
}

func TestPersistWritesAllArtifacts(t *testing.T) {
	_, dir, artifacts, _ := persistFixtureReport(t)

	assert.Equal(t, "reports/run-1", artifacts.Dir)
	assert.Equal(t, "reports/run-1/predictions.json", artifacts.JSONKey)
	assert.Equal(t, "reports/run-1/analysis_report.txt", artifacts.TextKey)
	assert.Equal(t, "reports/run-1/csv_reports.zip", artifacts.ZipKey)
	assert.NotEmpty(t, artifacts.Text)

	expected := []string{
		"reports/run-1/predictions.json",
		"reports/run-1/analysis_report.txt",
		"reports/run-1/csv_reports.zip",
		"reports/run-1/csv_reports/predictions.csv",
		"reports/run-1/csv_reports/high_risk_students.csv",
		"reports/run-1/csv_reports/difficult_chapters.csv",
		"reports/run-1/csv_reports/feature_importance.csv",
		"reports/run-1/csv_reports/summary.csv",
	}
	for _, key := range expected {
		_, err := os.Stat(filepath.Join(dir, key))
		assert.NoError(t, err, key)
	}
}

func TestPersistJSONRoundTrip(t *testing.T) {
	_, dir, artifacts, original := persistFixtureReport(t)

	data, err := os.ReadFile(filepath.Join(dir, artifacts.JSONKey))
	require.NoError(t, err)

	var decoded model.InsightReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original.SummaryStats, decoded.SummaryStats)
	assert.Equal(t, original.Predictions, decoded.Predictions)
	assert.Equal(t, original.HighRiskStudents, decoded.HighRiskStudents)
	assert.Equal(t, original.GeneratedAt, decoded.GeneratedAt)
}

func TestPersistCSVContents(t *testing.T) {
	_, dir, _, _ := persistFixtureReport(t)

	data, err := os.ReadFile(filepath.Join(dir, "reports/run-1/csv_reports/predictions.csv"))
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"student_id", "completion_probability", "predicted_completion", "dropout_probability", "risk_level"}, rows[0])
	assert.Equal(t, []string{"s0", "0.2000", "false", "0.8000", "High"}, rows[1])

	data, err = os.ReadFile(filepath.Join(dir, "reports/run-1/csv_reports/high_risk_students.csv"))
	require.NoError(t, err)
	rows, err = csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"s0", "High", "0.8000", "0.2000"}, rows[1])

	data, err = os.ReadFile(filepath.Join(dir, "reports/run-1/csv_reports/summary.csv"))
	require.NoError(t, err)
	rows, err = csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Contains(t, rows, []string{"total_students", "5"})
	assert.Contains(t, rows, []string{"high_risk_count", "3"})
}

func TestPersistZipEntries(t *testing.T) {
	_, dir, artifacts, _ := persistFixtureReport(t)

	data, err := os.ReadFile(filepath.Join(dir, artifacts.ZipKey))
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"csv_reports/difficult_chapters.csv",
		"csv_reports/feature_importance.csv",
		"csv_reports/high_risk_students.csv",
		"csv_reports/predictions.csv",
		"csv_reports/summary.csv",
	}, names)

	rc, err := zr.File[3].Open()
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	onDisk, err := os.ReadFile(filepath.Join(dir, "reports/run-1/csv_reports/predictions.csv"))
	require.NoError(t, err)
	assert.Equal(t, onDisk, content)
}

func TestOpenArtifactKinds(t *testing.T) {
	svc, _, _, _ := persistFixtureReport(t)
	ctx := context.Background()

	cases := []struct {
		kind        string
		contentType string
		filename    string
	}{
		{ReportKindJSON, util.MimeJSON, "predictions.json"},
		{ReportKindText, util.MimeText, "analysis_report.txt"},
		{ReportKindCSV, util.MimeZip, "csv_reports.zip"},
	}
	for _, tc := range cases {
		rc, contentType, filename, err := svc.OpenArtifact(ctx, "run-1", tc.kind)
		require.NoError(t, err, tc.kind)
		assert.Equal(t, tc.contentType, contentType)
		assert.Equal(t, tc.filename, filename)

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
		rc.Close()
	}
}

func TestOpenArtifactUnknownKind(t *testing.T) {
	svc, _, _, _ := persistFixtureReport(t)

	_, _, _, err := svc.OpenArtifact(context.Background(), "run-1", "pdf")
	assert.True(t, errors.Is(err, util.ErrReportNotFound))
}

func TestOpenArtifactMissingRun(t *testing.T) {
	storage, _ := newLocalStorage(t)
	svc := NewReportService(storage, nil)

	_, _, _, err := svc.OpenArtifact(context.Background(), "no-such-run", ReportKindJSON)
	assert.True(t, errors.Is(err, util.ErrReportNotFound))
}

func TestCacheHelpersWithoutRedis(t *testing.T) {
	storage, _ := newLocalStorage(t)
	svc := NewReportService(storage, nil)

	data, ok := svc.CachedJSON(context.Background(), "run-1")
	assert.False(t, ok)
	assert.Nil(t, data)
	svc.DropCache(context.Background(), "run-1")
}

func TestRenderTextSections(t *testing.T) {
	svc := &ReportService{}
	report := NewInsightService().GenerateReport(insightFixture())
	text := svc.RenderText(report)

	assert.Contains(t, text, "学习智能分析报告")
	assert.Contains(t, text, "[概要]")
	assert.Contains(t, text, "[风险名单]")
	assert.Contains(t, text, "[高难度章节]")
	assert.Contains(t, text, "[完成率模型特征贡献]")
	assert.Contains(t, text, "[教学建议]")
	assert.Contains(t, text, "[诊断]")
	assert.Contains(t, text, "学生总数")
	assert.Contains(t, text, "s0")
	assert.Contains(t, text, "校验拒绝: 1处违规")
	assert.Contains(t, text, "样本量不足")
}

// 风险名单在文本报告中截断到前10行,完整名单保留在CSV中
func TestRenderTextTruncatesHighRisk(t *testing.T) {
	predictions := make([]model.PredictionResult, 0, 12)
	for i := 0; i < 12; i++ {
		predictions = append(predictions, model.PredictionResult{
			StudentID:          fmt.Sprintf("stu%02d", i+1),
			DropoutProbability: 0.99 - float64(i)*0.01,
			RiskLevel:          model.RiskHigh,
		})
	}

	report := NewInsightService().GenerateReport(InsightInput{Predictions: predictions})
	text := (&ReportService{}).RenderText(report)

	assert.Contains(t, text, "stu10")
	assert.NotContains(t, text, "stu11")
	assert.NotContains(t, text, "stu12")
}
