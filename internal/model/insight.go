package model

// SummaryStats 报告级汇总统计,仅由已计算结果聚合而来
// swagger:model
type SummaryStats struct {
	TotalStudents           int     `json:"total_students"`
	PredictedCompletions    int     `json:"predicted_completions"`
	PredictedDropouts       int     `json:"predicted_dropouts"`
	PredictedCompletionRate float64 `json:"predicted_completion_rate"`
	MeanCompletionProb      float64 `json:"mean_completion_probability"`
	MeanDropoutProb         float64 `json:"mean_dropout_probability"`
	HighRiskCount           int     `json:"high_risk_count"`
	MediumRiskCount         int     `json:"medium_risk_count"`
	LowRiskCount            int     `json:"low_risk_count"`
	HighRiskRate            float64 `json:"high_risk_rate"`
	ChaptersScored          int     `json:"chapters_scored"`
	ChaptersExcluded        int     `json:"chapters_excluded"`
}

// HighRiskStudent 风险名单中的一行,High 在前、Medium 次之
// swagger:model
type HighRiskStudent struct {
	StudentID             string    `json:"student_id"`
	RiskLevel             RiskLevel `json:"risk_level"`
	DropoutProbability    float64   `json:"dropout_probability"`
	CompletionProbability float64   `json:"completion_probability"`
}

// FeatureImportance 单个特征的相对贡献度
// swagger:model
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Recommendation 由规则表触发的教学建议
// swagger:model
type Recommendation struct {
	Trigger string `json:"trigger"`
	Message string `json:"message"`
}

// ReportDiagnostics 被拒绝/排除项的完整清单,随报告一起输出
// swagger:model
type ReportDiagnostics struct {
	RejectedRows     []RowViolation    `json:"rejected_rows,omitempty"`
	ExcludedChapters []ExcludedChapter `json:"excluded_chapters,omitempty"`
}

// InsightReport 管道最终产物,构建完成后各字段只读
// swagger:model
type InsightReport struct {
	GeneratedAt          string                    `json:"generated_at"`
	SummaryStats         SummaryStats              `json:"summary_stats"`
	Predictions          []PredictionResult        `json:"predictions"`
	HighRiskStudents     []HighRiskStudent         `json:"high_risk_students"`
	DifficultChapters    []ChapterDifficultyResult `json:"difficult_chapters"`
	CompletionImportance []FeatureImportance       `json:"completion_feature_importance"`
	DropoutImportance    []FeatureImportance       `json:"dropout_feature_importance"`
	Recommendations      []Recommendation          `json:"recommendations"`
	Diagnostics          ReportDiagnostics         `json:"diagnostics"`
}
