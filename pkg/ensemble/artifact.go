package ensemble

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const ArtifactVersion = 1

// 模型种类标识
const (
	KindForest   = "random_forest"
	KindBoosting = "gradient_boosting"
)

// Artifact 训练产物的落盘格式,带版本号与特征模式
type Artifact struct {
	Version      int               `json:"version"`
	Kind         string            `json:"kind"`
	TrainedAt    time.Time         `json:"trained_at"`
	FeatureNames []string          `json:"feature_names"`
	Forest       *Forest           `json:"forest,omitempty"`
	Boosting     *GradientBoosting `json:"boosting,omitempty"`
}

// SaveForest 将随机森林写入JSON文件
func SaveForest(path string, f *Forest) error {
	return saveArtifact(path, Artifact{
		Version:      ArtifactVersion,
		Kind:         KindForest,
		TrainedAt:    time.Now().UTC(),
		FeatureNames: f.FeatureNames,
		Forest:       f,
	})
}

// SaveBoosting 将梯度提升模型写入JSON文件
func SaveBoosting(path string, b *GradientBoosting) error {
	return saveArtifact(path, Artifact{
		Version:      ArtifactVersion,
		Kind:         KindBoosting,
		TrainedAt:    time.Now().UTC(),
		FeatureNames: b.FeatureNames,
		Boosting:     b,
	})
}

func saveArtifact(path string, a Artifact) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建模型目录失败: %w", err)
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化模型失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入模型文件失败: %w", err)
	}
	return nil
}

// LoadModel 读取训练产物并校验特征模式,模式不一致直接报错
func LoadModel(path string, wantFeatures []string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取模型文件%s失败: %w", path, err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("解析模型文件%s失败: %w", path, err)
	}
	if a.Version != ArtifactVersion {
		return nil, fmt.Errorf("模型文件%s版本不兼容: %d", path, a.Version)
	}
	if err := checkFeatureSchema(a.FeatureNames, wantFeatures); err != nil {
		return nil, fmt.Errorf("模型文件%s: %w", path, err)
	}

	switch a.Kind {
	case KindForest:
		if a.Forest == nil {
			return nil, fmt.Errorf("模型文件%s缺少forest参数", path)
		}
		return a.Forest, nil
	case KindBoosting:
		if a.Boosting == nil {
			return nil, fmt.Errorf("模型文件%s缺少boosting参数", path)
		}
		return a.Boosting, nil
	default:
		return nil, fmt.Errorf("模型文件%s种类未知: %s", path, a.Kind)
	}
}

func checkFeatureSchema(got, want []string) error {
	if len(want) == 0 {
		return nil
	}
	if len(got) != len(want) {
		return fmt.Errorf("特征数量不一致: 模型%d当前%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("第%d个特征不一致: 模型%s当前%s", i, got[i], want[i])
		}
	}
	return nil
}
