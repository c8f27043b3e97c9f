package forest

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleCandidates(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	weights := []float64{1, 0, 2, 0, 3}

	for trial := 0; trial < 50; trial++ {
		picked := sampleCandidates(rng, weights, 2)
		require.Len(t, picked, 2)
		assert.NotEqual(t, picked[0], picked[1])
		for _, f := range picked {
			assert.Greater(t, weights[f], 0.0, "zero weight feature %d offered as candidate", f)
		}
	}
}

func TestSampleCandidatesClampsToActive(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	picked := sampleCandidates(rng, []float64{1, 0, 1}, 5)
	assert.Len(t, picked, 2)
}

func TestSampleCandidatesBias(t *testing.T) {
	// a predictor with 9x the weight should be offered far more often
	rng := rand.New(rand.NewSource(3))
	weights := []float64{9, 1, 1}

	counts := make([]int, 3)
	for trial := 0; trial < 2000; trial++ {
		for _, f := range sampleCandidates(rng, weights, 1) {
			counts[f]++
		}
	}
	assert.Greater(t, counts[0], 5*counts[1])
	assert.Greater(t, counts[0], 5*counts[2])
}

func TestGrowTreePureNodeIsLeaf(t *testing.T) {
	cfg := &growConfig{
		rows:       [][]float64{{1}, {2}, {3}, {4}},
		response:   []float64{5, 5, 5, 5},
		weights:    []float64{1},
		mtry:       1,
		minLeaf:    1,
		importance: make([]float64, 1),
	}
	root := growTree(rand.New(rand.NewSource(4)), cfg, []int{0, 1, 2, 3})

	assert.Equal(t, -1, root.feature)
	assert.Equal(t, 5.0, root.value)
	assert.Equal(t, 0.0, cfg.importance[0])
}

func TestGrowTreeSplitsOnSignal(t *testing.T) {
	// response steps at x0=2.5, noise feature is constant
	cfg := &growConfig{
		rows: [][]float64{
			{1, 7}, {2, 7}, {3, 7}, {4, 7},
		},
		response:   []float64{0, 0, 10, 10},
		weights:    []float64{1, 1},
		mtry:       2,
		minLeaf:    1,
		importance: make([]float64, 2),
	}
	root := growTree(rand.New(rand.NewSource(5)), cfg, []int{0, 1, 2, 3})

	require.Equal(t, 0, root.feature)
	assert.Equal(t, 2.5, root.threshold)
	assert.Greater(t, cfg.importance[0], 0.0)
	assert.Equal(t, 0.0, cfg.importance[1])

	assert.Equal(t, 0.0, root.predict([]float64{1, 7}))
	assert.Equal(t, 10.0, root.predict([]float64{4, 7}))
}

func TestClassLabels(t *testing.T) {
	classes := classLabels([]float64{2, 0, 1, 2, 0})
	assert.Equal(t, []float64{0, 1, 2}, classes)
}
