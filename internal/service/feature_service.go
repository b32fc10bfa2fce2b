package service

import (
	"math"
	"sort"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/model"
	"github.com/Divya20-05/Learning-Intelligence-Tool/pkg/logger"

	"go.uber.org/zap"
)

type FeatureService struct{}

func NewFeatureService() *FeatureService {
	return &FeatureService{}
}

// BuildFeatures 将校验后的记录聚合为学生特征与章节特征。
// 输出顺序与输入行序无关: 学生按student_id升序,章节按(course_id, chapter_order)升序。
// 校验后数据集为空时返回InsufficientDataError。
func (s *FeatureService) BuildFeatures(records []model.ActivityRecord) ([]model.StudentFeatureVector, []model.ChapterFeatureVector, error) {
	if len(records) == 0 {
		return nil, nil, &model.InsufficientDataError{Reason: "没有通过校验的记录可供特征构建"}
	}

	students := s.buildStudentFeatures(records)
	chapters := s.buildChapterFeatures(records)

	logger.Log.Info("特征构建完成",
		zap.Int("records", len(records)),
		zap.Int("students", len(students)),
		zap.Int("chapters", len(chapters)))
	return students, chapters, nil
}

func (s *FeatureService) buildStudentFeatures(records []model.ActivityRecord) []model.StudentFeatureVector {
	grouped := make(map[string][]model.ActivityRecord)
	for _, rec := range records {
		grouped[rec.StudentID] = append(grouped[rec.StudentID], rec)
	}

	vectors := make([]model.StudentFeatureVector, 0, len(grouped))
	for studentID, recs := range grouped {
		times := make([]float64, len(recs))
		scores := make([]float64, len(recs))
		completed := 0
		lastChapter := 0
		for i, r := range recs {
			times[i] = r.TimeSpent
			scores[i] = r.Score
			completed += r.CompletionStatus
			if r.ChapterOrder > lastChapter {
				lastChapter = r.ChapterOrder
			}
		}

		vectors = append(vectors, model.StudentFeatureVector{
			StudentID:         studentID,
			ChaptersAttempted: len(recs),
			TimeSpentMean:     mean(times),
			TimeSpentStd:      populationStd(times),
			ScoreMean:         mean(scores),
			ScoreStd:          populationStd(scores),
			CompletionRatio:   float64(completed) / float64(len(recs)),
			ChaptersCompleted: completed,
			LastChapterOrder:  lastChapter,
		})
	}

	sort.Slice(vectors, func(i, j int) bool {
		return vectors[i].StudentID < vectors[j].StudentID
	})
	return vectors
}

func (s *FeatureService) buildChapterFeatures(records []model.ActivityRecord) []model.ChapterFeatureVector {
	type chapterKey struct {
		courseID string
		order    int
	}
	grouped := make(map[chapterKey][]model.ActivityRecord)
	for _, rec := range records {
		key := chapterKey{rec.CourseID, rec.ChapterOrder}
		grouped[key] = append(grouped[key], rec)
	}

	vectors := make([]model.ChapterFeatureVector, 0, len(grouped))
	for key, recs := range grouped {
		times := make([]float64, len(recs))
		scores := make([]float64, len(recs))
		completed := 0
		for i, r := range recs {
			times[i] = r.TimeSpent
			scores[i] = r.Score
			completed += r.CompletionStatus
		}

		completionRate := float64(completed) / float64(len(recs))
		vectors = append(vectors, model.ChapterFeatureVector{
			CourseID:       key.courseID,
			ChapterOrder:   key.order,
			DropoutRate:    1 - completionRate,
			TimeSpentMean:  mean(times),
			ScoreMean:      mean(scores),
			CompletionRate: completionRate,
			SampleSize:     len(recs),
		})
	}

	sort.Slice(vectors, func(i, j int) bool {
		if vectors[i].CourseID != vectors[j].CourseID {
			return vectors[i].CourseID < vectors[j].CourseID
		}
		return vectors[i].ChapterOrder < vectors[j].ChapterOrder
	})
	return vectors
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// populationStd 总体标准差(除以n),单条记录时自然为0
func populationStd(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}
