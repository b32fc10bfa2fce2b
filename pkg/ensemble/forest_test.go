package ensemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 构造在特征0上线性可分的数据集,特征1为无信息噪声
func separableSet(n int) ([][]float64, []float64) {
	xs := make([][]float64, 0, 2*n)
	ys := make([]float64, 0, 2*n)
	for i := 0; i < n; i++ {
		noise := float64(i%7) / 10.0
		xs = append(xs, []float64{0.8 + float64(i%5)/50.0, noise})
		ys = append(ys, 1)
		xs = append(xs, []float64{0.1 + float64(i%5)/50.0, noise})
		ys = append(ys, 0)
	}
	return xs, ys
}

var testFeatureNames = []string{"signal", "noise"}

func TestTrainForestValidatesInput(t *testing.T) {
	cfg := DefaultForestConfig(1)

	_, err := TrainForest(nil, nil, testFeatureNames, cfg)
	assert.Error(t, err)

	_, err = TrainForest([][]float64{{1, 2}}, []float64{1, 0}, testFeatureNames, cfg)
	assert.Error(t, err)

	_, err = TrainForest([][]float64{{1}}, []float64{1}, testFeatureNames, cfg)
	assert.Error(t, err)
}

func TestTrainForestDeterministicWithSeed(t *testing.T) {
	xs, ys := separableSet(20)
	cfg := DefaultForestConfig(42)
	cfg.Trees = 30

	f1, err := TrainForest(xs, ys, testFeatureNames, cfg)
	require.NoError(t, err)
	f2, err := TrainForest(xs, ys, testFeatureNames, cfg)
	require.NoError(t, err)

	probes := [][]float64{{0.85, 0.3}, {0.15, 0.3}, {0.5, 0.1}, {0.45, 0.6}}
	for _, x := range probes {
		p1, err := f1.Predict(x)
		require.NoError(t, err)
		p2, err := f2.Predict(x)
		require.NoError(t, err)
		assert.Equal(t, p1, p2)
	}
}

func TestForestPredictProbabilityRange(t *testing.T) {
	xs, ys := separableSet(15)
	cfg := DefaultForestConfig(7)
	cfg.Trees = 25

	f, err := TrainForest(xs, ys, testFeatureNames, cfg)
	require.NoError(t, err)

	for _, x := range xs {
		p, err := f.Predict(x)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestForestLearnsSeparableData(t *testing.T) {
	xs, ys := separableSet(25)
	cfg := DefaultForestConfig(3)

	f, err := TrainForest(xs, ys, testFeatureNames, cfg)
	require.NoError(t, err)

	pHigh, err := f.Predict([]float64{0.84, 0.2})
	require.NoError(t, err)
	pLow, err := f.Predict([]float64{0.12, 0.2})
	require.NoError(t, err)

	assert.Greater(t, pHigh, 0.8)
	assert.Less(t, pLow, 0.2)
}

func TestForestImportancesNormalized(t *testing.T) {
	xs, ys := separableSet(25)
	f, err := TrainForest(xs, ys, testFeatureNames, DefaultForestConfig(11))
	require.NoError(t, err)

	imp := f.FeatureImportances()
	require.Len(t, imp, 2)

	total := 0.0
	for _, v := range imp {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Greater(t, imp["signal"], imp["noise"])
}

func TestForestPredictDimensionMismatch(t *testing.T) {
	xs, ys := separableSet(10)
	f, err := TrainForest(xs, ys, testFeatureNames, DefaultForestConfig(5))
	require.NoError(t, err)

	_, err = f.Predict([]float64{0.5})
	assert.Error(t, err)
}

func TestForestSingleClassLabels(t *testing.T) {
	xs, _ := separableSet(10)
	ys := make([]float64, len(xs))
	for i := range ys {
		ys[i] = 1
	}

	f, err := TrainForest(xs, ys, testFeatureNames, DefaultForestConfig(9))
	require.NoError(t, err)

	p, err := f.Predict([]float64{0.5, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p, 1e-9)
}
