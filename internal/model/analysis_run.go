package model

// 分析任务状态
const (
	RunStatusPending   = "pending"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// AnalysisRun 一次分析任务的登记记录
// swagger:model
type AnalysisRun struct {
	UUIDBase
	Filename        string `gorm:"type:varchar(255);not null" json:"filename"`
	Status          string `gorm:"type:varchar(20);index;default:pending" json:"status"`
	TotalRows       int    `json:"totalRows"`
	AcceptedRows    int    `json:"acceptedRows"`
	RejectedRows    int    `json:"rejectedRows"`
	StudentCount    int    `json:"studentCount"`
	ChapterCount    int    `json:"chapterCount"`
	HighRiskCount   int    `json:"highRiskCount"`
	MediumRiskCount int    `json:"mediumRiskCount"`
	LowRiskCount    int    `json:"lowRiskCount"`
	ReportDir       string `gorm:"type:varchar(255)" json:"reportDir"`
	FailureReason   string `gorm:"type:varchar(500)" json:"failureReason,omitempty"`
	DurationMs      int64  `json:"durationMs"`
}

func (AnalysisRun) TableName() string {
	return "analysis_runs"
}
