package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBenjaminiHochberg(t *testing.T) {
	testData := map[string]struct {
		p []float64
		q []float64
	}{
		"single value": {
			[]float64{0.05},
			[]float64{0.05},
		},
		"already sorted": {
			[]float64{0.01, 0.02, 0.03, 0.04},
			[]float64{0.04, 0.04, 0.04, 0.04},
		},
		"unsorted with monotone adjustment": {
			[]float64{0.01, 0.04, 0.03, 0.005},
			[]float64{0.02, 0.04, 0.04, 0.02},
		},
		"capped at one": {
			[]float64{0.9, 1.0},
			[]float64{1.0, 1.0},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			q, err := BenjaminiHochberg(td.p)
			require.Nil(t, err)
			assert.InDeltaSlice(t, td.q, q, 1e-12)
		})
	}
}

func TestBenjaminiHochbergEmpty(t *testing.T) {
	_, err := BenjaminiHochberg(nil)
	assert.ErrorIs(t, err, ErrNoPValues)
}
