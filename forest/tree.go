package forest

import (
	"math"
	"math/rand"
	"sort"
)

// node is one split or leaf of a fitted tree. Leaves have feature == -1.
type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	value     float64
}

// growConfig is the per-tree view of the training state shared by all nodes.
type growConfig struct {
	rows     [][]float64 // sample major, one value per predictor
	response []float64
	weights  []float64 // split candidate selection bias per predictor
	classes  []float64 // nil for regression

	mtry     int
	minLeaf  int
	maxDepth int

	// importance accumulates the impurity decrease per predictor for this tree.
	importance []float64
}

func growTree(rng *rand.Rand, cfg *growConfig, idx []int) *node {
	return cfg.grow(rng, idx, 0)
}

func (cfg *growConfig) grow(rng *rand.Rand, idx []int, depth int) *node {
	leafValue, impurity := cfg.leafStats(idx)
	if len(idx) < 2*cfg.minLeaf || impurity <= 0 {
		return &node{feature: -1, value: leafValue}
	}
	if cfg.maxDepth > 0 && depth >= cfg.maxDepth {
		return &node{feature: -1, value: leafValue}
	}

	best := cfg.bestSplit(rng, idx, impurity)
	if best.feature < 0 {
		return &node{feature: -1, value: leafValue}
	}

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if cfg.rows[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	cfg.importance[best.feature] += best.gain

	n := &node{
		feature:   best.feature,
		threshold: best.threshold,
	}
	n.left = cfg.grow(rng, left, depth+1)
	n.right = cfg.grow(rng, right, depth+1)
	return n
}

type split struct {
	feature   int
	threshold float64
	gain      float64
}

// bestSplit samples mtry candidate predictors biased by the weight vector and
// returns the impurity minimizing threshold among them. A predictor with weight
// 0 is never offered as a candidate.
func (cfg *growConfig) bestSplit(rng *rand.Rand, idx []int, parentImpurity float64) split {
	best := split{feature: -1}
	for _, f := range sampleCandidates(rng, cfg.weights, cfg.mtry) {
		threshold, childImpurity, ok := cfg.scanFeature(idx, f)
		if !ok {
			continue
		}
		gain := parentImpurity - childImpurity
		if gain > best.gain {
			best = split{feature: f, threshold: threshold, gain: gain}
		}
	}
	return best
}

// sampleCandidates draws up to mtry distinct predictor indices without
// replacement with probability proportional to weight, using the
// Efraimidis-Spirakis exponentiated key method.
func sampleCandidates(rng *rand.Rand, weights []float64, mtry int) []int {
	type keyed struct {
		key float64
		idx int
	}
	keys := make([]keyed, 0, len(weights))
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		keys = append(keys, keyed{key: math.Pow(rng.Float64(), 1.0/w), idx: i})
	}
	if mtry > len(keys) {
		mtry = len(keys)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].key > keys[j].key
	})

	out := make([]int, mtry)
	for i := 0; i < mtry; i++ {
		out[i] = keys[i].idx
	}
	return out
}

// scanFeature finds the threshold of feature f minimizing the summed child
// impurity over idx. Returns ok=false if no split satisfies the leaf minimum.
func (cfg *growConfig) scanFeature(idx []int, f int) (float64, float64, bool) {
	ordered := make([]int, len(idx))
	copy(ordered, idx)
	sort.Slice(ordered, func(i, j int) bool {
		return cfg.rows[ordered[i]][f] < cfg.rows[ordered[j]][f]
	})

	if cfg.classes != nil {
		return cfg.scanGini(ordered, f)
	}
	return cfg.scanVariance(ordered, f)
}

// scanVariance scans the split positions of a sorted index slice tracking the
// left/right sums incrementally. Impurity is the sum of squared errors, so the
// reported gain is an absolute error reduction weighted by node size.
func (cfg *growConfig) scanVariance(ordered []int, f int) (float64, float64, bool) {
	n := len(ordered)
	var totalSum, totalSq float64
	for _, i := range ordered {
		y := cfg.response[i]
		totalSum += y
		totalSq += y * y
	}

	var leftSum, leftSq float64
	bestImpurity := math.Inf(1)
	var bestThreshold float64
	found := false

	for pos := 1; pos < n; pos++ {
		y := cfg.response[ordered[pos-1]]
		leftSum += y
		leftSq += y * y

		prev := cfg.rows[ordered[pos-1]][f]
		cur := cfg.rows[ordered[pos]][f]
		if prev == cur {
			continue
		}
		if pos < cfg.minLeaf || n-pos < cfg.minLeaf {
			continue
		}

		nl := float64(pos)
		nr := float64(n - pos)
		rightSum := totalSum - leftSum
		rightSq := totalSq - leftSq
		impurity := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
		if impurity < bestImpurity {
			bestImpurity = impurity
			bestThreshold = (prev + cur) / 2
			found = true
		}
	}
	return bestThreshold, bestImpurity, found
}

// scanGini is the classification counterpart of scanVariance. Impurity is the
// gini index scaled by sample count.
func (cfg *growConfig) scanGini(ordered []int, f int) (float64, float64, bool) {
	n := len(ordered)
	k := len(cfg.classes)
	total := make([]int, k)
	for _, i := range ordered {
		total[cfg.classOf(i)]++
	}

	left := make([]int, k)
	bestImpurity := math.Inf(1)
	var bestThreshold float64
	found := false

	for pos := 1; pos < n; pos++ {
		left[cfg.classOf(ordered[pos-1])]++

		prev := cfg.rows[ordered[pos-1]][f]
		cur := cfg.rows[ordered[pos]][f]
		if prev == cur {
			continue
		}
		if pos < cfg.minLeaf || n-pos < cfg.minLeaf {
			continue
		}

		impurity := scaledGini(left, pos) + scaledGiniComplement(total, left, n-pos)
		if impurity < bestImpurity {
			bestImpurity = impurity
			bestThreshold = (prev + cur) / 2
			found = true
		}
	}
	return bestThreshold, bestImpurity, found
}

func scaledGini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	sumSq := 0.0
	for _, c := range counts {
		sumSq += float64(c) * float64(c)
	}
	return float64(n) - sumSq/float64(n)
}

func scaledGiniComplement(total, left []int, n int) float64 {
	if n == 0 {
		return 0
	}
	sumSq := 0.0
	for i := range total {
		c := float64(total[i] - left[i])
		sumSq += c * c
	}
	return float64(n) - sumSq/float64(n)
}

// leafStats returns the leaf prediction and impurity of a node over idx. For
// regression these are the mean and the sum of squared errors; for
// classification the majority class label and the scaled gini index.
func (cfg *growConfig) leafStats(idx []int) (float64, float64) {
	if cfg.classes != nil {
		counts := make([]int, len(cfg.classes))
		for _, i := range idx {
			counts[cfg.classOf(i)]++
		}
		majority := 0
		for c := range counts {
			if counts[c] > counts[majority] {
				majority = c
			}
		}
		return cfg.classes[majority], scaledGini(counts, len(idx))
	}

	var sum, sumSq float64
	for _, i := range idx {
		y := cfg.response[i]
		sum += y
		sumSq += y * y
	}
	n := float64(len(idx))
	mean := sum / n
	return mean, sumSq - sum*sum/n
}

func (cfg *growConfig) classOf(i int) int {
	y := cfg.response[i]
	for c, label := range cfg.classes {
		if label == y {
			return c
		}
	}
	return 0
}

// predict walks the tree for one sample row.
func (n *node) predict(row []float64) float64 {
	for n.feature >= 0 {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}
