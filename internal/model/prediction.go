package model

// RiskLevel 流失风险等级
type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// PredictionResult 单个学生的预测结果,生成后不再修改
// swagger:model
type PredictionResult struct {
	StudentID             string    `json:"student_id"`
	CompletionProbability float64   `json:"completion_probability"`
	PredictedCompletion   bool      `json:"predicted_completion"`
	DropoutProbability    float64   `json:"dropout_probability"`
	RiskLevel             RiskLevel `json:"risk_level"`
}
