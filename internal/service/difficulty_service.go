package service

import (
	"errors"
	"sort"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/config"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/model"
	"github.com/Divya20-05/Learning-Intelligence-Tool/pkg/logger"

	"go.uber.org/zap"
)

// DifficultyService 章节难度评分,纯统计计算,不依赖训练模型
type DifficultyService struct{}

func NewDifficultyService() *DifficultyService {
	return &DifficultyService{}
}

// ScoreChapters 对全部章节评分并按难度排名。
// 样本量低于minSample的章节被排除并记入返回的排除清单,其余章节正常评分。
// 排名顺序: 难度分降序, 同分时样本量大的在前, 再同时按(course_id, chapter_order)升序。
func (s *DifficultyService) ScoreChapters(chapters []model.ChapterFeatureVector, weights config.DifficultyWeights, minSample int) ([]model.ChapterDifficultyResult, []model.ExcludedChapter) {
	medians := courseMedianTimes(chapters)

	results := make([]model.ChapterDifficultyResult, 0, len(chapters))
	var excluded []model.ExcludedChapter

	for i := range chapters {
		ch := chapters[i]
		result, err := s.ScoreChapter(ch, weights, minSample, medians[ch.CourseID])
		if err != nil {
			var sampleErr *model.InsufficientSampleError
			if errors.As(err, &sampleErr) {
				excluded = append(excluded, model.ExcludedChapter{
					CourseID:     sampleErr.CourseID,
					ChapterOrder: sampleErr.ChapterOrder,
					SampleSize:   sampleErr.SampleSize,
					MinRequired:  sampleErr.MinRequired,
					Reason:       sampleErr.Error(),
				})
				continue
			}
			// ScoreChapter只会返回样本量错误,这里仅作兜底
			logger.Log.Error("章节评分失败",
				zap.String("course", ch.CourseID),
				zap.Int("chapter", ch.ChapterOrder),
				zap.Error(err))
			continue
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].DifficultyScore != results[j].DifficultyScore {
			return results[i].DifficultyScore > results[j].DifficultyScore
		}
		if results[i].SampleSize != results[j].SampleSize {
			return results[i].SampleSize > results[j].SampleSize
		}
		if results[i].CourseID != results[j].CourseID {
			return results[i].CourseID < results[j].CourseID
		}
		return results[i].ChapterOrder < results[j].ChapterOrder
	})

	sort.Slice(excluded, func(i, j int) bool {
		if excluded[i].CourseID != excluded[j].CourseID {
			return excluded[i].CourseID < excluded[j].CourseID
		}
		return excluded[i].ChapterOrder < excluded[j].ChapterOrder
	})

	logger.Log.Info("章节难度评分完成",
		zap.Int("scored", len(results)),
		zap.Int("excluded", len(excluded)))
	return results, excluded
}

// ScoreChapter 单章节评分: 四个归一化子分的加权和。
// medianTime为该课程所有章节平均用时的中位数,用于衡量相对停留时长。
// 样本量不足时返回InsufficientSampleError。
func (s *DifficultyService) ScoreChapter(ch model.ChapterFeatureVector, weights config.DifficultyWeights, minSample int, medianTime float64) (model.ChapterDifficultyResult, error) {
	if ch.SampleSize < minSample {
		return model.ChapterDifficultyResult{}, &model.InsufficientSampleError{
			CourseID:     ch.CourseID,
			ChapterOrder: ch.ChapterOrder,
			SampleSize:   ch.SampleSize,
			MinRequired:  minSample,
		}
	}

	factors := model.DifficultyFactors{
		DropoutRate:   clampScore(ch.DropoutRate * 100),
		LowCompletion: clampScore((1 - ch.CompletionRate) * 100),
		LowScore:      clampScore(100 - ch.ScoreMean),
		HighTimeSpent: timeScore(ch.TimeSpentMean, medianTime),
	}

	score := weights.Dropout*factors.DropoutRate +
		weights.Completion*factors.LowCompletion +
		weights.Score*factors.LowScore +
		weights.Time*factors.HighTimeSpent

	return model.ChapterDifficultyResult{
		CourseID:        ch.CourseID,
		ChapterOrder:    ch.ChapterOrder,
		DifficultyScore: clampScore(score),
		SampleSize:      ch.SampleSize,
		Factors:         factors,
	}, nil
}

// timeScore 相对停留时长子分: 中位数处为50, 两倍中位数及以上为100
func timeScore(meanTime, medianTime float64) float64 {
	if medianTime <= 0 {
		return 0
	}
	ratio := meanTime / (2 * medianTime)
	if ratio > 1 {
		ratio = 1
	}
	return ratio * 100
}

// courseMedianTimes 每门课程章节平均用时的中位数
func courseMedianTimes(chapters []model.ChapterFeatureVector) map[string]float64 {
	byCourse := make(map[string][]float64)
	for _, ch := range chapters {
		byCourse[ch.CourseID] = append(byCourse[ch.CourseID], ch.TimeSpentMean)
	}

	medians := make(map[string]float64, len(byCourse))
	for course, times := range byCourse {
		medians[course] = median(times)
	}
	return medians
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
