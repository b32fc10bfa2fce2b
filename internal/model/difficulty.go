package model

// DifficultyFactors 四个归一化到 [0,100] 的难度子分,加权前的中间量
// swagger:model
type DifficultyFactors struct {
	DropoutRate   float64 `json:"dropout_rate"`
	LowCompletion float64 `json:"low_completion"`
	LowScore      float64 `json:"low_score"`
	HighTimeSpent float64 `json:"high_time_spent"`
}

// ChapterDifficultyResult 单个章节的难度评分,评分后不可变
// swagger:model
type ChapterDifficultyResult struct {
	CourseID        string            `json:"course_id"`
	ChapterOrder    int               `json:"chapter_order"`
	DifficultyScore float64           `json:"difficulty_score"`
	SampleSize      int               `json:"sample_size"`
	Factors         DifficultyFactors `json:"contributing_factors"`
}

// ExcludedChapter 样本量不足被排除的章节,必须进入诊断信息而不是被静默丢弃
// swagger:model
type ExcludedChapter struct {
	CourseID     string `json:"course_id"`
	ChapterOrder int    `json:"chapter_order"`
	SampleSize   int    `json:"sample_size"`
	MinRequired  int    `json:"min_required"`
	Reason       string `json:"reason"`
}
