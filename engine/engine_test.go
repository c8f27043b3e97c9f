package engine

import (
	"testing"

	"github.com/dkainer/iRF-LOOP/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainingDataValidate(t *testing.T) {
	valid := TrainingData{
		Predictors: []matrix.Column{
			{Name: "a", Values: []float64{1, 2}},
			{Name: "b", Values: []float64{3, 4}},
		},
		Response: matrix.Column{Name: "y", Values: []float64{0, 1}},
		Weights:  []float64{0.5, 0.5},
	}
	require.Nil(t, valid.Validate())

	noActive := valid
	noActive.Weights = []float64{0, 0}
	assert.ErrorIs(t, noActive.Validate(), ErrNoActivePredictors)

	shortWeights := valid
	shortWeights.Weights = []float64{1}
	assert.NotNil(t, shortWeights.Validate())

	ragged := valid
	ragged.Response = matrix.Column{Name: "y", Values: []float64{0}}
	assert.NotNil(t, ragged.Validate())
}

func TestConfusionAccuracy(t *testing.T) {
	c := &Confusion{
		Classes: []float64{0, 1},
		Counts:  [][]int{{8, 2}, {1, 9}},
	}
	assert.Equal(t, 20, c.Total())
	assert.InDelta(t, 17.0/20.0, c.Accuracy(), 1e-12)

	var empty *Confusion
	assert.Equal(t, 0, empty.Total())
	assert.Equal(t, 0.0, empty.Accuracy())
}
