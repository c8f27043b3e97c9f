// Package irfloop builds a directed, weighted predictive network from a numeric
// feature matrix by iterative random forest leave-one-out prediction. Each
// feature in turn acts as the response of an iterative reweighting run against
// all other features, and every predictor that survives with a positive
// importance becomes a directed edge into the response.
package irfloop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dkainer/iRF-LOOP/engine"
	"github.com/dkainer/iRF-LOOP/matrix"
	"github.com/dkainer/iRF-LOOP/reweight"
)

var ErrTooFewColumns = errors.New("matrix needs at least 2 columns to build a network")

// FeatureError records a per-feature run failure kept out of the network when
// skipping is enabled.
type FeatureError struct {
	Index int // 1-based column index
	Name  string
	Err   error
}

func (f FeatureError) Error() string {
	return fmt.Sprintf("feature %d (%s): %v", f.Index, f.Name, f.Err)
}

func (f FeatureError) Unwrap() error {
	return f.Err
}

// Builder runs the leave-one-out loop over a feature matrix and assembles the
// resulting importance vectors into an edge list.
type Builder struct {
	opt     *Options
	trainer engine.Trainer
	logger  *slog.Logger

	skipped []FeatureError
}

// New creates a network builder backed by the given forest collaborator. If no
// options are provided a default is used.
func New(trainer engine.Trainer, opt *Options) (*Builder, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Builder{
		opt:     opt,
		trainer: trainer,
		logger:  slog.Default(),
	}, nil
}

// SetLogger replaces the builder's progress logger.
func (b *Builder) SetLogger(logger *slog.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// BuildNetwork runs one reweighting engine per response feature across a
// bounded worker pool and concatenates the per-feature edges. Edge order is
// canonical regardless of worker completion order: response features ascend by
// column index, and within one response the predictors keep matrix column
// order. A per-feature failure aborts the whole build and cancels in-flight
// work unless SkipFailures is set, in which case the feature is dropped and
// recorded under Skipped.
func (b *Builder) BuildNetwork(ctx context.Context, m *matrix.Matrix) (EdgeList, error) {
	if m.Columns() < 2 {
		return nil, ErrTooFewColumns
	}
	first, last, err := b.opt.resolveRange(m.Columns())
	if err != nil {
		return nil, fmt.Errorf("%w, [%d, %d] of %d columns", err, b.opt.FeatureRange.First, b.opt.FeatureRange.Last, m.Columns())
	}
	b.skipped = nil

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	count := last - first + 1
	edgesByFeature := make([]EdgeList, count)
	errsByFeature := make([]error, count)

	sem := make(chan struct{}, b.opt.WorkerCount)
	var wg sync.WaitGroup
	for g := first; g <= last; g++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(g int) {
			defer wg.Done()
			defer func() { <-sem }()

			if ctx.Err() != nil {
				errsByFeature[g-first] = ctx.Err()
				return
			}

			edges, err := b.buildFeature(ctx, m, g)
			if err != nil {
				errsByFeature[g-first] = err
				if !b.opt.SkipFailures {
					cancel()
				}
				return
			}
			edgesByFeature[g-first] = edges
		}(g)
	}
	wg.Wait()

	// Workers only cancel in abort mode, so a cancelled context here means the
	// caller gave up on the whole build.
	if b.opt.SkipFailures && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if !b.opt.SkipFailures {
		// A failing worker cancels the rest, so prefer surfacing the real
		// failure over the cancellation echoes it caused.
		if real := firstRealError(errsByFeature, m, first); real != nil {
			return nil, fmt.Errorf("network build failed, %w", real)
		}
		for _, err := range errsByFeature {
			if err != nil {
				return nil, fmt.Errorf("network build failed, %w", err)
			}
		}
	}

	var edges EdgeList
	for g := first; g <= last; g++ {
		err := errsByFeature[g-first]
		if err == nil {
			edges = append(edges, edgesByFeature[g-first]...)
			continue
		}
		name, _ := m.Name(g)
		ferr := FeatureError{Index: g + 1, Name: name, Err: err}
		b.logger.Warn("skipping failed feature", "feature", name, "index", g+1, "error", err)
		b.skipped = append(b.skipped, ferr)
	}
	return edges, nil
}

// firstRealError returns the lowest-index per-feature error that is not a
// worker cancellation echo.
func firstRealError(errs []error, m *matrix.Matrix, first int) error {
	for i, err := range errs {
		if err == nil || errors.Is(err, context.Canceled) {
			continue
		}
		name, _ := m.Name(first + i)
		return FeatureError{Index: first + i + 1, Name: name, Err: err}
	}
	return nil
}

// Skipped returns the features dropped by the last build when SkipFailures was
// set.
func (b *Builder) Skipped() []FeatureError {
	out := make([]FeatureError, len(b.skipped))
	copy(out, b.skipped)
	return out
}

// buildFeature runs the reweighting engine with column g as response and emits
// one edge per predictor with a positive importance in the best fitting round.
func (b *Builder) buildFeature(ctx context.Context, m *matrix.Matrix, g int) (EdgeList, error) {
	predictors, response, err := m.Split(g)
	if err != nil {
		return nil, err
	}

	ropt := *b.opt.ReweightOptions
	ropt.SaveAll = false
	ropt.Seed = featureSeed(b.opt.ReweightOptions.Seed, g)

	eng, err := reweight.New(b.trainer, &ropt)
	if err != nil {
		return nil, err
	}
	history, err := eng.Run(ctx, predictors, response)
	if err != nil {
		return nil, err
	}
	best, round, err := history.Best()
	if err != nil {
		return nil, err
	}
	b.logger.Debug("feature complete",
		"response", response.Name,
		"rounds", history.Rounds(),
		"best_round", round,
		"fit_quality", best.FitQuality,
	)

	var edges EdgeList
	for i, p := range predictors {
		if best.Importances[i] <= 0 {
			continue
		}
		edges = append(edges, Edge{
			Source:     p.Name,
			Target:     response.Name,
			Importance: best.Importances[i],
			FitQuality: best.FitQuality,
		})
	}
	return edges, nil
}

// featureSeed gives each response feature its own collaborator seed stream. A
// zero base seed stays zero, leaving seeding to the collaborator.
func featureSeed(base int64, g int) int64 {
	if base == 0 {
		return 0
	}
	return base + int64(g+1)*104729
}
