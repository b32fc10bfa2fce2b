package service

import (
	"testing"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreChapterWeightedSum(t *testing.T) {
	svc := NewDifficultyService()
	ch := model.ChapterFeatureVector{
		CourseID:       "c1",
		ChapterOrder:   1,
		DropoutRate:    0.5,
		CompletionRate: 0.5,
		ScoreMean:      60,
		TimeSpentMean:  40,
		SampleSize:     5,
	}

	result, err := svc.ScoreChapter(ch, testAnalyticsConfig().DifficultyWeights, 3, 40)
	require.NoError(t, err)

	assert.InDelta(t, 50, result.Factors.DropoutRate, 1e-9)
	assert.InDelta(t, 50, result.Factors.LowCompletion, 1e-9)
	assert.InDelta(t, 40, result.Factors.LowScore, 1e-9)
	assert.InDelta(t, 50, result.Factors.HighTimeSpent, 1e-9)
	// 0.35*50 + 0.25*50 + 0.20*40 + 0.20*50
	assert.InDelta(t, 48, result.DifficultyScore, 1e-9)
	assert.Equal(t, 5, result.SampleSize)
}

// 相对停留时长: 中位数处为50, 两倍中位数及以上封顶100, 中位数非正时为0
func TestScoreChapterTimeFactor(t *testing.T) {
	svc := NewDifficultyService()
	weights := testAnalyticsConfig().DifficultyWeights
	base := model.ChapterFeatureVector{CourseID: "c1", ChapterOrder: 1, SampleSize: 5, ScoreMean: 100, CompletionRate: 1}

	ch := base
	ch.TimeSpentMean = 10
	result, err := svc.ScoreChapter(ch, weights, 3, 10)
	require.NoError(t, err)
	assert.InDelta(t, 50, result.Factors.HighTimeSpent, 1e-9)

	ch.TimeSpentMean = 100
	result, err = svc.ScoreChapter(ch, weights, 3, 10)
	require.NoError(t, err)
	assert.InDelta(t, 100, result.Factors.HighTimeSpent, 1e-9)

	ch.TimeSpentMean = 100
	result, err = svc.ScoreChapter(ch, weights, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Factors.HighTimeSpent)
}

func TestScoreChapterFactorsClamped(t *testing.T) {
	svc := NewDifficultyService()
	ch := model.ChapterFeatureVector{
		CourseID:       "c1",
		ChapterOrder:   1,
		DropoutRate:    1.0,
		CompletionRate: 0,
		ScoreMean:      0,
		TimeSpentMean:  500,
		SampleSize:     5,
	}

	result, err := svc.ScoreChapter(ch, testAnalyticsConfig().DifficultyWeights, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Factors.DropoutRate)
	assert.Equal(t, 100.0, result.Factors.LowCompletion)
	assert.Equal(t, 100.0, result.Factors.LowScore)
	assert.Equal(t, 100.0, result.Factors.HighTimeSpent)
	assert.InDelta(t, 100, result.DifficultyScore, 1e-9)
}

func TestScoreChapterInsufficientSample(t *testing.T) {
	svc := NewDifficultyService()
	ch := model.ChapterFeatureVector{CourseID: "c1", ChapterOrder: 2, SampleSize: 2}

	_, err := svc.ScoreChapter(ch, testAnalyticsConfig().DifficultyWeights, 3, 10)
	require.Error(t, err)
	sampleErr, ok := err.(*model.InsufficientSampleError)
	require.True(t, ok)
	assert.Equal(t, "c1", sampleErr.CourseID)
	assert.Equal(t, 2, sampleErr.ChapterOrder)
	assert.Equal(t, 2, sampleErr.SampleSize)
	assert.Equal(t, 3, sampleErr.MinRequired)
}

// 样本量不足的章节进入排除清单,其余章节继续评分
func TestScoreChaptersExcludesSmallSamples(t *testing.T) {
	chapters := []model.ChapterFeatureVector{
		{CourseID: "c1", ChapterOrder: 1, DropoutRate: 0.2, CompletionRate: 0.8, ScoreMean: 70, TimeSpentMean: 30, SampleSize: 5},
		{CourseID: "c1", ChapterOrder: 2, DropoutRate: 0.9, CompletionRate: 0.1, ScoreMean: 40, TimeSpentMean: 30, SampleSize: 2},
		{CourseID: "c1", ChapterOrder: 3, DropoutRate: 0.5, CompletionRate: 0.5, ScoreMean: 60, TimeSpentMean: 30, SampleSize: 4},
	}

	svc := NewDifficultyService()
	results, excluded := svc.ScoreChapters(chapters, testAnalyticsConfig().DifficultyWeights, 3)

	require.Len(t, results, 2)
	require.Len(t, excluded, 1)
	assert.Equal(t, 2, excluded[0].ChapterOrder)
	assert.Equal(t, 2, excluded[0].SampleSize)
	assert.Equal(t, 3, excluded[0].MinRequired)
	assert.Contains(t, excluded[0].Reason, "样本量不足")

	for _, r := range results {
		assert.NotEqual(t, 2, r.ChapterOrder)
	}
}

// 排名: 难度分降序 -> 样本量降序 -> (course_id, chapter_order)升序
func TestScoreChaptersRankingOrder(t *testing.T) {
	chapters := []model.ChapterFeatureVector{
		{CourseID: "c1", ChapterOrder: 3, DropoutRate: 0.5, CompletionRate: 0.5, ScoreMean: 50, TimeSpentMean: 40, SampleSize: 10},
		{CourseID: "c1", ChapterOrder: 1, DropoutRate: 0.5, CompletionRate: 0.5, ScoreMean: 50, TimeSpentMean: 40, SampleSize: 20},
		{CourseID: "c1", ChapterOrder: 2, DropoutRate: 0.9, CompletionRate: 0.1, ScoreMean: 20, TimeSpentMean: 40, SampleSize: 5},
		{CourseID: "c1", ChapterOrder: 4, DropoutRate: 0, CompletionRate: 1, ScoreMean: 95, TimeSpentMean: 40, SampleSize: 5},
		{CourseID: "c1", ChapterOrder: 5, DropoutRate: 0.5, CompletionRate: 0.5, ScoreMean: 50, TimeSpentMean: 40, SampleSize: 10},
	}

	svc := NewDifficultyService()
	results, excluded := svc.ScoreChapters(chapters, testAnalyticsConfig().DifficultyWeights, 3)

	require.Empty(t, excluded)
	require.Len(t, results, 5)

	order := make([]int, len(results))
	for i, r := range results {
		order[i] = r.ChapterOrder
	}
	assert.Equal(t, []int{2, 1, 3, 5, 4}, order)
}

// 停留时长的参照中位数按课程计算,不跨课程混用
func TestScoreChaptersPerCourseMedian(t *testing.T) {
	chapters := []model.ChapterFeatureVector{
		{CourseID: "c1", ChapterOrder: 1, TimeSpentMean: 10, ScoreMean: 80, CompletionRate: 0.8, DropoutRate: 0.2, SampleSize: 5},
		{CourseID: "c1", ChapterOrder: 2, TimeSpentMean: 20, ScoreMean: 80, CompletionRate: 0.8, DropoutRate: 0.2, SampleSize: 5},
		{CourseID: "c1", ChapterOrder: 3, TimeSpentMean: 30, ScoreMean: 80, CompletionRate: 0.8, DropoutRate: 0.2, SampleSize: 5},
		{CourseID: "c2", ChapterOrder: 1, TimeSpentMean: 100, ScoreMean: 80, CompletionRate: 0.8, DropoutRate: 0.2, SampleSize: 5},
		{CourseID: "c2", ChapterOrder: 2, TimeSpentMean: 200, ScoreMean: 80, CompletionRate: 0.8, DropoutRate: 0.2, SampleSize: 5},
		{CourseID: "c2", ChapterOrder: 3, TimeSpentMean: 300, ScoreMean: 80, CompletionRate: 0.8, DropoutRate: 0.2, SampleSize: 5},
	}

	svc := NewDifficultyService()
	results, _ := svc.ScoreChapters(chapters, testAnalyticsConfig().DifficultyWeights, 3)
	require.Len(t, results, 6)

	byKey := make(map[string]map[int]model.ChapterDifficultyResult)
	for _, r := range results {
		if byKey[r.CourseID] == nil {
			byKey[r.CourseID] = make(map[int]model.ChapterDifficultyResult)
		}
		byKey[r.CourseID][r.ChapterOrder] = r
	}

	// c2第3章: 300 / (2*200) = 0.75
	assert.InDelta(t, 75, byKey["c2"][3].Factors.HighTimeSpent, 1e-9)
	// c1第3章: 30 / (2*20) = 0.75, 与c2同构
	assert.InDelta(t, 75, byKey["c1"][3].Factors.HighTimeSpent, 1e-9)
	// c1第1章: 10 / (2*20) = 0.25
	assert.InDelta(t, 25, byKey["c1"][1].Factors.HighTimeSpent, 1e-9)
}

func TestScoreChaptersDeterministic(t *testing.T) {
	chapters := []model.ChapterFeatureVector{
		{CourseID: "c1", ChapterOrder: 1, DropoutRate: 0.3, CompletionRate: 0.7, ScoreMean: 66, TimeSpentMean: 25, SampleSize: 7},
		{CourseID: "c2", ChapterOrder: 1, DropoutRate: 0.6, CompletionRate: 0.4, ScoreMean: 45, TimeSpentMean: 55, SampleSize: 9},
	}

	svc := NewDifficultyService()
	results1, excluded1 := svc.ScoreChapters(chapters, testAnalyticsConfig().DifficultyWeights, 3)
	results2, excluded2 := svc.ScoreChapters(chapters, testAnalyticsConfig().DifficultyWeights, 3)

	assert.Equal(t, results1, results2)
	assert.Equal(t, excluded1, excluded2)
}
