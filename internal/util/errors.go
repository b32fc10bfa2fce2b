package util

import "errors"

var (
	ErrRunNotFound      = errors.New("分析任务不存在")
	ErrRunNotCompleted  = errors.New("分析任务尚未完成")
	ErrDatasetNotFound  = errors.New("数据集文件不存在")
	ErrReportNotFound   = errors.New("报告文件不存在")
	ErrInvalidFileType  = errors.New("仅支持csv或json格式的数据集")
	ErrFileTooLarge     = errors.New("文件超出大小限制")
	ErrInvalidAccessKey = errors.New("访问密钥不正确")
)
