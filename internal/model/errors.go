package model

import "fmt"

// SchemaError 输入数据不符合模式,携带全部违规行的诊断而不是首个错误
type SchemaError struct {
	Violations []RowViolation
}

func (e *SchemaError) Error() string {
	if len(e.Violations) == 1 {
		v := e.Violations[0]
		return fmt.Sprintf("数据模式校验失败: 第%d行 列%s %s", v.Row, v.Column, v.Reason)
	}
	return fmt.Sprintf("数据模式校验失败: 共%d处违规", len(e.Violations))
}

// InsufficientDataError 校验后数据集为空,本次运行终止
type InsufficientDataError struct {
	Reason string
}

func (e *InsufficientDataError) Error() string {
	if e.Reason == "" {
		return "数据不足: 校验后数据集为空"
	}
	return "数据不足: " + e.Reason
}

// InsufficientSampleError 单个章节样本量低于最小阈值,该章节被排除但运行继续
type InsufficientSampleError struct {
	CourseID     string
	ChapterOrder int
	SampleSize   int
	MinRequired  int
}

func (e *InsufficientSampleError) Error() string {
	return fmt.Sprintf("课程%s第%d章样本量不足: %d条记录, 至少需要%d条",
		e.CourseID, e.ChapterOrder, e.SampleSize, e.MinRequired)
}

// ModelNotLoadedError 模型参数未加载即发起推理,属于致命配置错误
type ModelNotLoadedError struct {
	Model string
}

func (e *ModelNotLoadedError) Error() string {
	return fmt.Sprintf("模型未加载: %s, 请检查模型文件路径配置", e.Model)
}
