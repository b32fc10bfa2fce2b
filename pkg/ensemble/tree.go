package ensemble

import (
	"math/rand"
	"sort"
)

// Node 决策树的单个节点,扁平数组存储,可直接序列化
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Leaf      bool    `json:"leaf"`
}

// Tree 二叉回归树,节点按构建顺序存入切片,下标0为根
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Predict 从根节点走到叶子,返回叶子值
func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for !t.Nodes[i].Leaf {
		n := t.Nodes[i]
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return t.Nodes[i].Value
}

type growConfig struct {
	maxDepth    int
	minSplit    int
	maxFeatures int // 每次分裂随机考察的特征数,0表示全部
}

// leafFn 根据落入叶子的样本下标计算叶子输出,nil时取目标均值
type leafFn func(idx []int) float64

type grower struct {
	xs         [][]float64
	ys         []float64
	cfg        growConfig
	rng        *rand.Rand
	leaf       leafFn
	importance []float64 // 按特征累计的不纯度下降量,可为nil
	nodes      []Node
}

// growTree 以方差缩减为准则拟合回归树
func growTree(xs [][]float64, ys []float64, idx []int, cfg growConfig, rng *rand.Rand, leaf leafFn, importance []float64) Tree {
	g := &grower{xs: xs, ys: ys, cfg: cfg, rng: rng, leaf: leaf, importance: importance}
	g.build(idx, 0)
	return Tree{Nodes: g.nodes}
}

func (g *grower) leafValue(idx []int) float64 {
	if g.leaf != nil {
		return g.leaf(idx)
	}
	sum := 0.0
	for _, i := range idx {
		sum += g.ys[i]
	}
	return sum / float64(len(idx))
}

// build 递归生长,返回新建节点在nodes中的下标
func (g *grower) build(idx []int, depth int) int {
	pos := len(g.nodes)
	g.nodes = append(g.nodes, Node{})

	if depth >= g.cfg.maxDepth || len(idx) < g.cfg.minSplit {
		g.nodes[pos] = Node{Feature: -1, Value: g.leafValue(idx), Leaf: true}
		return pos
	}

	feat, thr, gain, ok := g.bestSplit(idx)
	if !ok || gain <= 0 {
		g.nodes[pos] = Node{Feature: -1, Value: g.leafValue(idx), Leaf: true}
		return pos
	}

	if g.importance != nil {
		g.importance[feat] += gain
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if g.xs[i][feat] <= thr {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := g.build(left, depth+1)
	r := g.build(right, depth+1)
	g.nodes[pos] = Node{Feature: feat, Threshold: thr, Left: l, Right: r}
	return pos
}

// bestSplit 在候选特征上穷举相邻取值的中点,选方差缩减量最大的分裂
func (g *grower) bestSplit(idx []int) (bestFeat int, bestThr float64, bestGain float64, ok bool) {
	n := len(idx)
	total := 0.0
	totalSq := 0.0
	for _, i := range idx {
		total += g.ys[i]
		totalSq += g.ys[i] * g.ys[i]
	}
	sseTotal := totalSq - total*total/float64(n)

	feats := g.candidateFeatures()
	sorted := make([]int, n)

	for _, f := range feats {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool {
			return g.xs[sorted[a]][f] < g.xs[sorted[b]][f]
		})

		leftSum := 0.0
		leftSq := 0.0
		for k := 1; k < n; k++ {
			y := g.ys[sorted[k-1]]
			leftSum += y
			leftSq += y * y

			prev := g.xs[sorted[k-1]][f]
			cur := g.xs[sorted[k]][f]
			if prev == cur {
				continue
			}

			rightSum := total - leftSum
			rightSq := totalSq - leftSq
			nl := float64(k)
			nr := float64(n - k)
			sseL := leftSq - leftSum*leftSum/nl
			sseR := rightSq - rightSum*rightSum/nr
			gain := sseTotal - sseL - sseR
			if gain > bestGain {
				bestFeat = f
				bestThr = (prev + cur) / 2
				bestGain = gain
				ok = true
			}
		}
	}
	return
}

// candidateFeatures 随机抽取maxFeatures个特征,保持升序以保证同种子下结果一致
func (g *grower) candidateFeatures() []int {
	d := len(g.xs[0])
	m := g.cfg.maxFeatures
	if m <= 0 || m >= d {
		feats := make([]int, d)
		for i := range feats {
			feats[i] = i
		}
		return feats
	}
	perm := g.rng.Perm(d)[:m]
	sort.Ints(perm)
	return perm
}
