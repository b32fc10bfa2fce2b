package ensemble

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// Model 两类学习器共用的能力接口: 概率预测 + 特征贡献度
type Model interface {
	Predict(features []float64) (float64, error)
	FeatureImportances() map[string]float64
}

// ForestConfig 随机森林训练参数
type ForestConfig struct {
	Trees       int
	MaxDepth    int
	MinSplit    int
	MaxFeatures int // 0表示取sqrt(特征数)
	Seed        int64
}

// DefaultForestConfig 默认训练参数
func DefaultForestConfig(seed int64) ForestConfig {
	return ForestConfig{
		Trees:    100,
		MaxDepth: 8,
		MinSplit: 2,
		Seed:     seed,
	}
}

// Forest 自助采样+特征子抽样的决策树集成,预测取成员投票均值
type Forest struct {
	FeatureNames []string  `json:"feature_names"`
	Trees        []Tree    `json:"trees"`
	Importances  []float64 `json:"importances"`
}

// TrainForest 在0/1标签上训练随机森林,同种子同数据结果完全一致
func TrainForest(xs [][]float64, ys []float64, names []string, cfg ForestConfig) (*Forest, error) {
	if err := checkTrainingSet(xs, ys, names); err != nil {
		return nil, err
	}
	if cfg.Trees <= 0 {
		return nil, errors.New("ensemble: 树的数量必须为正")
	}

	n := len(xs)
	d := len(names)
	mtry := cfg.MaxFeatures
	if mtry <= 0 {
		mtry = int(math.Ceil(math.Sqrt(float64(d))))
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	gc := growConfig{maxDepth: cfg.MaxDepth, minSplit: cfg.MinSplit, maxFeatures: mtry}

	f := &Forest{
		FeatureNames: append([]string(nil), names...),
		Trees:        make([]Tree, 0, cfg.Trees),
		Importances:  make([]float64, d),
	}

	idx := make([]int, n)
	for t := 0; t < cfg.Trees; t++ {
		// 有放回抽样n条,构成去相关的训练子集
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		f.Trees = append(f.Trees, growTree(xs, ys, idx, gc, rng, nil, f.Importances))
	}

	normalize(f.Importances)
	return f, nil
}

// Predict 成员投票均值,裁剪到[0,1]
func (f *Forest) Predict(x []float64) (float64, error) {
	if len(x) != len(f.FeatureNames) {
		return 0, fmt.Errorf("ensemble: 特征维度不匹配, 期望%d实际%d", len(f.FeatureNames), len(x))
	}
	sum := 0.0
	for i := range f.Trees {
		sum += f.Trees[i].Predict(x)
	}
	p := sum / float64(len(f.Trees))
	return clamp01(p), nil
}

// FeatureImportances 归一化的不纯度下降贡献,各项之和为1
func (f *Forest) FeatureImportances() map[string]float64 {
	return importanceMap(f.FeatureNames, f.Importances)
}

func checkTrainingSet(xs [][]float64, ys []float64, names []string) error {
	if len(xs) == 0 {
		return errors.New("ensemble: 训练集为空")
	}
	if len(xs) != len(ys) {
		return fmt.Errorf("ensemble: 样本数%d与标签数%d不一致", len(xs), len(ys))
	}
	if len(names) == 0 {
		return errors.New("ensemble: 特征名为空")
	}
	for i, x := range xs {
		if len(x) != len(names) {
			return fmt.Errorf("ensemble: 第%d个样本维度%d与特征名数量%d不一致", i, len(x), len(names))
		}
	}
	return nil
}

func normalize(v []float64) {
	total := 0.0
	for _, x := range v {
		total += x
	}
	if total <= 0 {
		return
	}
	for i := range v {
		v[i] /= total
	}
}

func importanceMap(names []string, values []float64) map[string]float64 {
	m := make(map[string]float64, len(names))
	for i, name := range names {
		m[name] = values[i]
	}
	return m
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
