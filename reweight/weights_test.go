package reweight

import (
	"testing"

	"github.com/dkainer/iRF-LOOP/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestMtryFor(t *testing.T) {
	testData := map[string]struct {
		policy float64
		active int
		mtry   int
	}{
		"default sqrt": {
			0, 64, 8,
		},
		"default sqrt rounds down": {
			0, 10, 3,
		},
		"proportion": {
			0.3, 100, 30,
		},
		"proportion of one takes all": {
			1, 50, 50,
		},
		"absolute": {
			5, 100, 5,
		},
		"absolute clamped to active": {
			50, 12, 12,
		},
		"never below one": {
			0.1, 3, 1,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.mtry, mtryFor(td.policy, td.active))
		})
	}
}

func TestNormalizeImportances(t *testing.T) {
	testData := map[string]struct {
		raw  []float64
		next []float64
		err  error
	}{
		"all positive sums to one": {
			[]float64{2, 1, 1},
			[]float64{0.5, 0.25, 0.25},
			nil,
		},
		"negatives clamped after rescale": {
			[]float64{2, -1, 1},
			[]float64{0.5, 0, 0.25},
			nil,
		},
		"all zero is degenerate": {
			[]float64{0, 0, 0},
			nil,
			ErrDegenerateWeights,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			next, err := normalizeImportances(td.raw)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.InDeltaSlice(t, td.next, next, 1e-12)
			for _, w := range next {
				assert.GreaterOrEqual(t, w, 0.0)
				assert.LessOrEqual(t, w, 1.0)
			}
			assert.LessOrEqual(t, floats.Sum(next), 1.0+1e-12)
		})
	}
}

func TestCullByPValue(t *testing.T) {
	pvals := []engine.PValue{
		{Importance: 4, P: 0.001},
		{Importance: 2, P: 0.002},
		{Importance: 1, P: 0.9},
		{Importance: -1, P: 0.001},
	}

	next, err := cullByPValue(pvals, 0.2)
	require.Nil(t, err)

	// survivors are the two low p-value positive importances, renormalized
	assert.InDeltaSlice(t, []float64{4.0 / 6.0, 2.0 / 6.0, 0, 0}, next, 1e-12)
}

func TestCullByPValueAllCulled(t *testing.T) {
	pvals := []engine.PValue{
		{Importance: 4, P: 0.8},
		{Importance: 2, P: 0.9},
	}

	_, err := cullByPValue(pvals, 0.2)
	assert.ErrorIs(t, err, ErrDegenerateWeights)
}

func TestStoppingFloor(t *testing.T) {
	assert.Equal(t, 10.0, stoppingFloor(100))
	assert.Equal(t, 10.0, stoppingFloor(1000))
	assert.Equal(t, 20.0, stoppingFloor(2000))
}
