// Package engine defines the contract of the random forest collaborator consumed
// by the reweighting loop. An implementation trains one forest on a weighted
// predictor set and reports per-predictor importance along with out-of-bag fit
// statistics. The reweighting and network layers only depend on this contract.
package engine

import (
	"context"
	"errors"

	"github.com/dkainer/iRF-LOOP/matrix"
)

var (
	ErrInsufficientSamples = errors.New("not enough samples to train a forest")
	ErrBadMtry             = errors.New("mtry must be between 1 and the number of predictors")
	ErrNoActivePredictors  = errors.New("no predictor has a positive selection weight")
)

// TrainingData is one (predictors, response) pair with a per-predictor selection
// weight vector. Weights bias which predictors are offered as split candidates;
// a predictor with weight 0 is never offered.
type TrainingData struct {
	Predictors []matrix.Column
	Response   matrix.Column

	// Weights is aligned with Predictors. All entries are >= 0.
	Weights []float64
}

// TrainOptions carries the per-training knobs resolved by the caller.
type TrainOptions struct {
	// Mtry is the absolute number of split candidates sampled at each node.
	Mtry int

	// TreeCount is the number of trees grown per forest.
	TreeCount int

	// Classification switches the forest from regression to classification. The
	// response values are then treated as discrete class labels.
	Classification bool

	// MinLeaf is the smallest sample count allowed in a leaf.
	MinLeaf int

	// MaxDepth bounds tree depth. Zero or negative grows full trees.
	MaxDepth int

	// Seed drives the engine's sampling. Two trainings with the same seed and
	// inputs produce the same forest.
	Seed int64
}

// Result is the outcome of training one forest.
type Result struct {
	// Importances holds one raw importance value per predictor, aligned with the
	// training data's predictor order. Values may be negative.
	Importances []float64

	// FitQuality is the variance explained on out-of-bag samples for regression,
	// or the out-of-bag accuracy for classification.
	FitQuality float64

	// PredictionError is the out-of-bag mean squared error for regression, or the
	// out-of-bag misclassification rate for classification.
	PredictionError float64

	// OOBPredictions holds one out-of-bag prediction per sample. A sample that
	// was in-bag for every tree carries NaN.
	OOBPredictions []float64

	// Confusion summarizes out-of-bag votes per class pair. Nil for regression.
	Confusion *Confusion
}

// PValue pairs a predictor's observed importance with its permutation p-value.
type PValue struct {
	Importance float64
	P          float64
}

// Trainer is the random forest collaborator. Implementations must be safe for
// concurrent use since the leave-one-out loop trains many forests in parallel.
type Trainer interface {
	// Train grows one forest and reports importance plus out-of-bag statistics.
	Train(ctx context.Context, data TrainingData, opt TrainOptions) (*Result, error)

	// ImportancePValues estimates a permutation p-value per predictor by training
	// against permuted responses. The returned slice is aligned with the
	// predictor order.
	ImportancePValues(ctx context.Context, data TrainingData, opt TrainOptions, permutations int) ([]PValue, error)
}

// Validate checks the structural invariants shared by every trainer.
func (d TrainingData) Validate() error {
	if len(d.Predictors) == 0 {
		return errors.New("no predictors")
	}
	rows := len(d.Response.Values)
	for _, p := range d.Predictors {
		if len(p.Values) != rows {
			return errors.New("predictor and response sample counts differ")
		}
	}
	if len(d.Weights) != len(d.Predictors) {
		return errors.New("weight vector length does not match predictor count")
	}
	var active int
	for _, w := range d.Weights {
		if w > 0 {
			active++
		}
	}
	if active == 0 {
		return ErrNoActivePredictors
	}
	return nil
}
