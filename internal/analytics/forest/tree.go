package forest

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// leafFeature marks a node without a split
const leafFeature = -1

// Node is one node of a flattened regression tree
type Node struct {
	Feature   int     // split feature, or -1 for a leaf
	Threshold float64 // rows with x[Feature] <= Threshold go left
	Left      int32
	Right     int32
	Value     float64 // leaf prediction
	Samples   int     // training rows that reached the node
}

// Tree is a regression tree stored as a node slice rooted at index 0
type Tree struct {
	Nodes []Node
}

// Predict walks the tree for one feature vector
func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Feature == leafFeature {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = int(n.Left)
		} else {
			i = int(n.Right)
		}
	}
}

// Depth returns the maximum depth of the tree
func (t *Tree) Depth() int {
	var walk func(i, d int) int
	walk = func(i, d int) int {
		n := &t.Nodes[i]
		if n.Feature == leafFeature {
			return d
		}
		return max(walk(int(n.Left), d+1), walk(int(n.Right), d+1))
	}
	if len(t.Nodes) == 0 {
		return 0
	}
	return walk(0, 0)
}

// split describes the best split found for a node
type split struct {
	feature   int
	threshold float64
	score     float64
}

// treeBuilder grows a single tree
type treeBuilder struct {
	cfg       Config
	x         [][]float64
	y         []float64
	rng       *rand.Rand
	minSplit  int
	minLeaf   int
	nFeatures int
	nodes     []Node
}

func newTreeBuilder(cfg Config, x [][]float64, y []float64, rng *rand.Rand) *treeBuilder {
	n := len(y)
	minSplit := max(resolveCount(cfg.MinSamplesSplit, n), 2)
	minLeaf := max(resolveCount(cfg.MinSamplesLeaf, n), 1)
	return &treeBuilder{
		cfg:       cfg,
		x:         x,
		y:         y,
		rng:       rng,
		minSplit:  minSplit,
		minLeaf:   minLeaf,
		nFeatures: cfg.resolveFeatures(len(x[0])),
	}
}

// build grows the tree over the given sample indices
func (b *treeBuilder) build(samples []int) Tree {
	b.nodes = b.nodes[:0]
	b.grow(samples, 0)
	return Tree{Nodes: slices.Clone(b.nodes)}
}

func (b *treeBuilder) grow(samples []int, depth int) int32 {
	id := int32(len(b.nodes))
	b.nodes = append(b.nodes, Node{
		Feature: leafFeature,
		Value:   b.leafValue(samples),
		Samples: len(samples),
	})

	if len(samples) < b.minSplit || len(samples) < 2*b.minLeaf {
		return id
	}
	if b.cfg.MaxDepth > 0 && depth >= b.cfg.MaxDepth {
		return id
	}
	if b.constantTarget(samples) {
		return id
	}

	best, ok := b.bestSplit(samples)
	if !ok {
		return id
	}

	left := make([]int, 0, len(samples))
	right := make([]int, 0, len(samples))
	for _, s := range samples {
		if b.x[s][best.feature] <= best.threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	if len(left) < b.minLeaf || len(right) < b.minLeaf {
		return id
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[id].Feature = best.feature
	b.nodes[id].Threshold = best.threshold
	b.nodes[id].Left = l
	b.nodes[id].Right = r
	return id
}

func (b *treeBuilder) targets(samples []int) []float64 {
	ys := make([]float64, len(samples))
	for i, s := range samples {
		ys[i] = b.y[s]
	}
	return ys
}

func (b *treeBuilder) leafValue(samples []int) float64 {
	ys := b.targets(samples)
	if b.cfg.Criterion == AbsoluteError {
		slices.Sort(ys)
		return stat.Quantile(0.5, stat.Empirical, ys, nil)
	}
	return stat.Mean(ys, nil)
}

func (b *treeBuilder) constantTarget(samples []int) bool {
	first := b.y[samples[0]]
	for _, s := range samples[1:] {
		if b.y[s] != first {
			return false
		}
	}
	return true
}

// candidateFeatures draws the features examined at one node
func (b *treeBuilder) candidateFeatures() []int {
	total := len(b.x[0])
	features := make([]int, total)
	for i := range features {
		features[i] = i
	}
	if b.nFeatures >= total {
		return features
	}
	b.rng.Shuffle(total, func(i, j int) { features[i], features[j] = features[j], features[i] })
	return features[:b.nFeatures]
}

func (b *treeBuilder) bestSplit(samples []int) (split, bool) {
	parent := b.parentScore(samples)
	best := split{feature: leafFeature, score: math.Inf(1)}

	for _, f := range b.candidateFeatures() {
		var cand split
		var ok bool
		if b.cfg.Kind == ExtraTrees {
			cand, ok = b.randomSplit(samples, f)
		} else {
			cand, ok = b.exhaustiveSplit(samples, f)
		}
		if ok && cand.score < best.score {
			best = cand
		}
	}

	const eps = 1e-12
	if best.feature == leafFeature || !(best.score < parent-eps*math.Max(1, math.Abs(parent))) {
		return split{}, false
	}
	return best, true
}

// exhaustiveSplit scans every distinct threshold of feature f
func (b *treeBuilder) exhaustiveSplit(samples []int, f int) (split, bool) {
	order := slices.Clone(samples)
	slices.SortFunc(order, func(i, j int) int {
		if c := cmp.Compare(b.x[i][f], b.x[j][f]); c != 0 {
			return c
		}
		return cmp.Compare(i, j)
	})

	n := len(order)
	best := split{feature: leafFeature, score: math.Inf(1)}

	if b.cfg.Criterion == AbsoluteError {
		left := make([]float64, 0, n)
		right := b.targets(order)
		slices.Sort(right)
		for pos := 0; pos < n-1; pos++ {
			v := b.y[order[pos]]
			left = insertSorted(left, v)
			right = removeSorted(right, v)
			if !b.validPosition(order, f, pos) {
				continue
			}
			score := absDeviation(left) + absDeviation(right)
			if score < best.score {
				best = split{feature: f, threshold: midpoint(b.x[order[pos]][f], b.x[order[pos+1]][f]), score: score}
			}
		}
		return best, best.feature != leafFeature
	}

	total := b.accumulate(order)
	var left moments
	for pos := 0; pos < n-1; pos++ {
		left.add(b.y[order[pos]])
		if !b.validPosition(order, f, pos) {
			continue
		}
		score := b.cfg.Criterion.score(left, total.minus(left))
		if score < best.score {
			best = split{feature: f, threshold: midpoint(b.x[order[pos]][f], b.x[order[pos+1]][f]), score: score}
		}
	}
	return best, best.feature != leafFeature
}

// validPosition reports whether a split after sorted position pos separates
// distinct feature values and respects the minimum leaf size
func (b *treeBuilder) validPosition(order []int, f, pos int) bool {
	nLeft := pos + 1
	nRight := len(order) - nLeft
	if nLeft < b.minLeaf || nRight < b.minLeaf {
		return false
	}
	return b.x[order[pos]][f] < b.x[order[pos+1]][f]
}

// randomSplit evaluates one uniformly drawn threshold of feature f
func (b *treeBuilder) randomSplit(samples []int, f int) (split, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		v := b.x[s][f]
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if !(lo < hi) {
		return split{}, false
	}

	threshold := lo + b.rng.Float64()*(hi-lo)
	if threshold >= hi {
		threshold = lo
	}

	var left, right moments
	var leftYs, rightYs []float64
	for _, s := range samples {
		if b.x[s][f] <= threshold {
			left.add(b.y[s])
			leftYs = append(leftYs, b.y[s])
		} else {
			right.add(b.y[s])
			rightYs = append(rightYs, b.y[s])
		}
	}
	if left.n < b.minLeaf || right.n < b.minLeaf {
		return split{}, false
	}

	var score float64
	if b.cfg.Criterion == AbsoluteError {
		slices.Sort(leftYs)
		slices.Sort(rightYs)
		score = absDeviation(leftYs) + absDeviation(rightYs)
	} else {
		score = b.cfg.Criterion.score(left, right)
	}
	return split{feature: f, threshold: threshold, score: score}, true
}

// parentScore is the score of leaving the node unsplit, on the same scale
// as the split scores of the node's criterion
func (b *treeBuilder) parentScore(samples []int) float64 {
	switch b.cfg.Criterion {
	case AbsoluteError:
		ys := b.targets(samples)
		slices.Sort(ys)
		return absDeviation(ys)
	case FriedmanMSE:
		return 0
	default:
		return b.cfg.Criterion.score(b.accumulate(samples), moments{})
	}
}

func (b *treeBuilder) accumulate(samples []int) moments {
	var m moments
	for _, s := range samples {
		m.add(b.y[s])
	}
	return m
}

// moments holds the running statistics needed by the closed-form criteria
type moments struct {
	n     int
	sum   float64
	sumSq float64
}

func (m *moments) add(v float64) {
	m.n++
	m.sum += v
	m.sumSq += v * v
}

func (m moments) minus(o moments) moments {
	return moments{n: m.n - o.n, sum: m.sum - o.sum, sumSq: m.sumSq - o.sumSq}
}

func (m moments) sse() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sumSq - m.sum*m.sum/float64(m.n)
}

// poissonTerm is the split-dependent part of the half Poisson deviance
func (m moments) poissonTerm() float64 {
	if m.n == 0 {
		return 0
	}
	if m.sum <= 0 {
		return math.Inf(1)
	}
	return -m.sum * math.Log(m.sum/float64(m.n))
}

// score returns the impurity proxy of a two-way partition; lower is better
func (c Criterion) score(left, right moments) float64 {
	switch c {
	case FriedmanMSE:
		if left.n == 0 || right.n == 0 {
			return 0
		}
		diff := left.sum/float64(left.n) - right.sum/float64(right.n)
		return -float64(left.n*right.n) / float64(left.n+right.n) * diff * diff
	case Poisson:
		return left.poissonTerm() + right.poissonTerm()
	default:
		return left.sse() + right.sse()
	}
}

// absDeviation returns the sum of absolute deviations from the median of
// an ascending slice
func absDeviation(sorted []float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	med := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	dev := make([]float64, len(sorted))
	for i, v := range sorted {
		dev[i] = math.Abs(v - med)
	}
	return floats.Sum(dev)
}

func insertSorted(s []float64, v float64) []float64 {
	i, _ := slices.BinarySearch(s, v)
	return slices.Insert(s, i, v)
}

func removeSorted(s []float64, v float64) []float64 {
	i, found := slices.BinarySearch(s, v)
	if !found {
		return s
	}
	return slices.Delete(s, i, i+1)
}

func midpoint(a, b float64) float64 {
	m := a + (b-a)/2
	if m >= b {
		return a
	}
	return m
}
