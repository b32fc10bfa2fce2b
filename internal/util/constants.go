package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 数据集上传相关常量
const (
	MaxUploadBytes = 16 << 20 // 单个数据集文件上限16MB

	DatasetPrefix = "datasets"
	ReportPrefix  = "reports"

	MimeCSV  = "text/csv"
	MimeJSON = "application/json"
	MimeText = "text/plain"
	MimeZip  = "application/zip"
)

var AllowedDatasetExtensions = []string{".csv", ".json"}

// 接口响应中列表的截断长度,完整列表始终保留在报告文件中
const (
	TopHighRiskRows = 10
	TopChapterRows  = 5
	TopFeatureRows  = 5
)
