// Package reweight implements the iterative reweighting loop at the heart of
// the network builder. Each round trains one forest with the current
// per-predictor weight vector as split selection bias, derives the next weight
// vector from the reported importances, and stops once too few predictors
// remain informative or the round budget is spent.
package reweight

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkainer/iRF-LOOP/engine"
	"github.com/dkainer/iRF-LOOP/matrix"
)

var (
	ErrNoPredictors   = errors.New("predictor set is empty")
	ErrLengthMismatch = errors.New("response length does not match predictor rows")
)

// Engine runs the reweighting loop against one (predictors, response) pair at a
// time using a forest collaborator. It holds no per-run state and is safe for
// concurrent use as long as the collaborator is.
type Engine struct {
	opt     *Options
	trainer engine.Trainer
}

// New creates a reweighting engine backed by the given forest collaborator. If
// no options are provided a default is used.
func New(trainer engine.Trainer, opt *Options) (*Engine, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Engine{opt: opt, trainer: trainer}, nil
}

// Run iterates weighted forest trainings for one response. Round weights start
// uniform, and after each round the next vector is derived from the forest's
// raw importances, either by absolute sum normalization or by p-value culling.
// The returned history retains every round with SaveAll, otherwise the best
// fitting one.
func (e *Engine) Run(ctx context.Context, predictors []matrix.Column, response matrix.Column) (*History, error) {
	if len(predictors) == 0 {
		return nil, ErrNoPredictors
	}
	rows := len(response.Values)
	for _, p := range predictors {
		if len(p.Values) != rows {
			return nil, fmt.Errorf("%w, predictor %q has %d samples, response has %d",
				ErrLengthMismatch, p.Name, len(p.Values), rows)
		}
	}

	total := len(predictors)
	weights := uniformWeights(total)
	history := newHistory(e.opt.SaveAll)

	for round := 1; round <= e.opt.MaxRounds; round++ {
		data := engine.TrainingData{
			Predictors: predictors,
			Response:   response,
			Weights:    weights,
		}
		opt := engine.TrainOptions{
			Mtry:           mtryFor(e.opt.Mtry, activeCount(weights)),
			TreeCount:      e.opt.TreeCount,
			Classification: e.opt.Classification,
			MinLeaf:        e.opt.MinLeaf,
			MaxDepth:       e.opt.MaxDepth,
			Seed:           roundSeed(e.opt.Seed, round),
		}

		res, err := e.trainer.Train(ctx, data, opt)
		if err != nil {
			return nil, fmt.Errorf("forest training failed on round %d, %w", round, err)
		}

		next, err := e.nextWeights(ctx, data, opt, res)
		if errors.Is(err, ErrDegenerateWeights) {
			// Convergence signal rather than a crash: discard the round and
			// return what has been recorded, unless nothing has been.
			if history.Rounds() == 0 {
				return nil, fmt.Errorf("round %d, %w", round, err)
			}
			return history, nil
		}
		if err != nil {
			return nil, fmt.Errorf("unable to derive weights for round %d, %w", round, err)
		}

		// The recorded importance vector is the next round weight vector, not
		// the raw engine output.
		res.Importances = next
		history.add(round, res)
		weights = next

		if float64(activeCount(weights)) < stoppingFloor(total) {
			break
		}
	}
	return history, nil
}

func (e *Engine) nextWeights(ctx context.Context, data engine.TrainingData, opt engine.TrainOptions, res *engine.Result) ([]float64, error) {
	if !e.opt.PValueCulling {
		return normalizeImportances(res.Importances)
	}

	pvals, err := e.trainer.ImportancePValues(ctx, data, opt, e.opt.Permutations)
	if err != nil {
		return nil, fmt.Errorf("unable to compute importance p-values, %w", err)
	}
	return cullByPValue(pvals, e.opt.FDRThreshold)
}

// roundSeed derives a per-round collaborator seed so rounds with identical
// weights still grow distinct forests. A zero base seed stays zero, leaving
// seeding to the collaborator.
func roundSeed(base int64, round int) int64 {
	if base == 0 {
		return 0
	}
	return base + int64(round)*7919
}
