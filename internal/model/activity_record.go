package model

// ActivityRecord 学习行为原始记录,校验通过后不可变
// swagger:model
type ActivityRecord struct {
	StudentID        string  `json:"student_id"`
	CourseID         string  `json:"course_id"`
	ChapterOrder     int     `json:"chapter_order"`
	TimeSpent        float64 `json:"time_spent"`
	Score            float64 `json:"score"`
	CompletionStatus int     `json:"completion_status"`
}

// 输入数据必须包含的六列,列名大小写敏感
var RequiredColumns = []string{
	"student_id",
	"course_id",
	"chapter_order",
	"time_spent",
	"score",
	"completion_status",
}

// RowViolation 单行校验失败的诊断信息
// swagger:model
type RowViolation struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value,omitempty"`
	Reason string `json:"reason"`
}

// ValidationReport 整批输入的校验结果,接受数+拒绝数恒等于总行数
// swagger:model
type ValidationReport struct {
	TotalRows    int            `json:"total_rows"`
	AcceptedRows int            `json:"accepted_rows"`
	RejectedRows int            `json:"rejected_rows"`
	Violations   []RowViolation `json:"violations,omitempty"`
}
