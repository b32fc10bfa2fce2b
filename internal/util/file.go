package util

import (
	"path/filepath"
	"strings"
)

// DatasetExt 返回数据集文件的规范扩展名(小写),不支持的类型返回错误
func DatasetExt(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedDatasetExtensions {
		if ext == allowed {
			return ext, nil
		}
	}
	return ext, ErrInvalidFileType
}

// SafeFilename 去掉路径部分,防止存储键被穿越
func SafeFilename(name string) string {
	return filepath.Base(strings.ReplaceAll(name, "\\", "/"))
}
