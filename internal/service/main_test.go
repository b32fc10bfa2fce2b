package service

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/config"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/model"
	"github.com/Divya20-05/Learning-Intelligence-Tool/pkg/logger"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// recordsCSV 把记录渲染成带表头的CSV文本
func recordsCSV(records []model.ActivityRecord) string {
	var b strings.Builder
	b.WriteString("student_id,course_id,chapter_order,time_spent,score,completion_status\n")
	for _, rec := range records {
		b.WriteString(fmt.Sprintf("%s,%s,%d,%g,%g,%d\n",
			rec.StudentID, rec.CourseID, rec.ChapterOrder, rec.TimeSpent, rec.Score, rec.CompletionStatus))
	}
	return b.String()
}

// newLocalStorage 指向临时目录的本地存储,测试结束后自动清理
func newLocalStorage(t *testing.T) (*StorageService, string) {
	t.Helper()
	dir := t.TempDir()
	provider := &LocalStorageProvider{Config: &config.StorageConfig{
		Type:      "local",
		LocalPath: dir,
	}}
	return &StorageService{Provider: provider}, dir
}

// testAnalyticsConfig 与默认配置一致的分析参数
func testAnalyticsConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		CompletionThreshold: 0.5,
		RiskHighThreshold:   0.7,
		RiskMediumThreshold: 0.4,
		DifficultyWeights: config.DifficultyWeights{
			Dropout:    0.35,
			Completion: 0.25,
			Score:      0.20,
			Time:       0.20,
		},
		MinChapterSample: 3,
		StrictValidation: false,
		Seed:             42,
	}
}
