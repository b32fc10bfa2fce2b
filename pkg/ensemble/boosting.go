package ensemble

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// BoostingConfig 梯度提升训练参数
type BoostingConfig struct {
	Rounds       int
	LearningRate float64
	MaxDepth     int
	MinSplit     int
	Subsample    float64 // 每轮行抽样比例,1表示全量
	Seed         int64
}

// DefaultBoostingConfig 默认训练参数
func DefaultBoostingConfig(seed int64) BoostingConfig {
	return BoostingConfig{
		Rounds:       100,
		LearningRate: 0.1,
		MaxDepth:     3,
		MinSplit:     2,
		Subsample:    1.0,
		Seed:         seed,
	}
}

// GradientBoosting 逐轮拟合前序残差的弱学习器序列,对数几率损失
type GradientBoosting struct {
	FeatureNames []string  `json:"feature_names"`
	InitScore    float64   `json:"init_score"`
	LearningRate float64   `json:"learning_rate"`
	Trees        []Tree    `json:"trees"`
	Importances  []float64 `json:"importances"`
}

// TrainBoosting 在0/1标签上训练梯度提升模型,同种子同数据结果完全一致
func TrainBoosting(xs [][]float64, ys []float64, names []string, cfg BoostingConfig) (*GradientBoosting, error) {
	if err := checkTrainingSet(xs, ys, names); err != nil {
		return nil, err
	}
	if cfg.Rounds <= 0 {
		return nil, errors.New("ensemble: 迭代轮数必须为正")
	}
	if cfg.LearningRate <= 0 {
		return nil, errors.New("ensemble: 学习率必须为正")
	}

	n := len(xs)
	d := len(names)

	// 初始分数取先验对数几率
	pos := 0.0
	for _, y := range ys {
		pos += y
	}
	prior := clampProb(pos / float64(n))
	init := math.Log(prior / (1 - prior))

	b := &GradientBoosting{
		FeatureNames: append([]string(nil), names...),
		InitScore:    init,
		LearningRate: cfg.LearningRate,
		Trees:        make([]Tree, 0, cfg.Rounds),
		Importances:  make([]float64, d),
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	gc := growConfig{maxDepth: cfg.MaxDepth, minSplit: cfg.MinSplit}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = init
	}
	residual := make([]float64, n)
	hessian := make([]float64, n)

	// 牛顿步叶子值: sum(残差)/sum(p(1-p))
	leaf := func(idx []int) float64 {
		num := 0.0
		den := 0.0
		for _, i := range idx {
			num += residual[i]
			den += hessian[i]
		}
		if den < 1e-10 {
			return 0
		}
		v := num / den
		if v > 4 {
			v = 4
		} else if v < -4 {
			v = -4
		}
		return v
	}

	for round := 0; round < cfg.Rounds; round++ {
		for i := 0; i < n; i++ {
			p := sigmoid(scores[i])
			residual[i] = ys[i] - p
			hessian[i] = p * (1 - p)
		}

		idx := sampleRows(n, cfg.Subsample, rng)
		tree := growTree(xs, residual, idx, gc, rng, leaf, b.Importances)
		b.Trees = append(b.Trees, tree)

		for i := 0; i < n; i++ {
			scores[i] += cfg.LearningRate * tree.Predict(xs[i])
		}
	}

	normalize(b.Importances)
	return b, nil
}

// Predict 累加各轮输出后过sigmoid,结果落在(0,1)
func (b *GradientBoosting) Predict(x []float64) (float64, error) {
	if len(x) != len(b.FeatureNames) {
		return 0, fmt.Errorf("ensemble: 特征维度不匹配, 期望%d实际%d", len(b.FeatureNames), len(x))
	}
	score := b.InitScore
	for i := range b.Trees {
		score += b.LearningRate * b.Trees[i].Predict(x)
	}
	return sigmoid(score), nil
}

// FeatureImportances 归一化的不纯度下降贡献,各项之和为1
func (b *GradientBoosting) FeatureImportances() map[string]float64 {
	return importanceMap(b.FeatureNames, b.Importances)
}

func sampleRows(n int, ratio float64, rng *rand.Rand) []int {
	if ratio >= 1 || ratio <= 0 {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	k := int(math.Ceil(ratio * float64(n)))
	if k < 1 {
		k = 1
	}
	perm := rng.Perm(n)[:k]
	return perm
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func clampProb(p float64) float64 {
	const eps = 1e-6
	if p < eps {
		return eps
	}
	if p > 1-eps {
		return 1 - eps
	}
	return p
}
