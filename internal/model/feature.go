package model

// 学生特征向量的固定列顺序,训练与推理共用同一套模式
const (
	FeatureChaptersAttempted = "chapters_attempted"
	FeatureTimeSpentMean     = "time_spent_mean"
	FeatureTimeSpentStd      = "time_spent_std"
	FeatureScoreMean         = "score_mean"
	FeatureScoreStd          = "score_std"
	FeatureCompletionRatio   = "completion_ratio"
	FeatureChaptersCompleted = "chapters_completed"
	FeatureLastChapterOrder  = "last_chapter_order"
)

// FeatureNames 返回特征列名的固定顺序副本
func FeatureNames() []string {
	return []string{
		FeatureChaptersAttempted,
		FeatureTimeSpentMean,
		FeatureTimeSpentStd,
		FeatureScoreMean,
		FeatureScoreStd,
		FeatureCompletionRatio,
		FeatureChaptersCompleted,
		FeatureLastChapterOrder,
	}
}

// StudentFeatureVector 按学生聚合出的特征向量
// swagger:model
type StudentFeatureVector struct {
	StudentID         string  `json:"student_id"`
	ChaptersAttempted int     `json:"chapters_attempted"`
	TimeSpentMean     float64 `json:"time_spent_mean"`
	TimeSpentStd      float64 `json:"time_spent_std"`
	ScoreMean         float64 `json:"score_mean"`
	ScoreStd          float64 `json:"score_std"`
	CompletionRatio   float64 `json:"completion_ratio"`
	ChaptersCompleted int     `json:"chapters_completed"`
	LastChapterOrder  int     `json:"last_chapter_order"`
}

// Values 按 FeatureNames 的顺序展开为模型输入
func (v *StudentFeatureVector) Values() []float64 {
	return []float64{
		float64(v.ChaptersAttempted),
		v.TimeSpentMean,
		v.TimeSpentStd,
		v.ScoreMean,
		v.ScoreStd,
		v.CompletionRatio,
		float64(v.ChaptersCompleted),
		float64(v.LastChapterOrder),
	}
}

// ChapterFeatureVector 按 (course_id, chapter_order) 聚合出的章节特征
// swagger:model
type ChapterFeatureVector struct {
	CourseID       string  `json:"course_id"`
	ChapterOrder   int     `json:"chapter_order"`
	DropoutRate    float64 `json:"dropout_rate"`
	TimeSpentMean  float64 `json:"time_spent_mean"`
	ScoreMean      float64 `json:"score_mean"`
	CompletionRate float64 `json:"completion_rate"`
	SampleSize     int     `json:"sample_size"`
}
