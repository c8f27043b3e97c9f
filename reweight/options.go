package reweight

import (
	"errors"
)

const (
	DefaultMaxRounds    = 10
	DefaultTreeCount    = 1000
	DefaultPermutations = 500
	DefaultFDRThreshold = 0.2
)

var (
	ErrNonPositiveRounds       = errors.New("max rounds must be at least 1")
	ErrNegativeMtry            = errors.New("mtry must be non-negative")
	ErrBadFDRThreshold         = errors.New("fdr threshold must be in (0, 1]")
	ErrNonPositivePermutations = errors.New("permutation count must be at least 1")
)

// Options configures one reweighting run against a single response.
type Options struct {
	// MaxRounds bounds how many forests are trained before giving up on
	// convergence.
	MaxRounds int

	// Mtry selects the split candidate policy. 0 uses the default
	// floor(sqrt(active)) where active is the number of predictors with a
	// positive weight in the current round. A value in (0, 1] is a proportion
	// of active predictors, so an mtry of exactly 1 means all of them. A value
	// above 1 is an absolute candidate count.
	Mtry float64

	// TreeCount is the forest size per round.
	TreeCount int

	// Classification switches the underlying forests from regression to
	// classification.
	Classification bool

	// PValueCulling zeroes the weight of predictors whose permutation
	// importance p-value fails a false discovery rate check instead of plain
	// importance normalization. Considerably slower.
	PValueCulling bool

	// Permutations is the permutation count used when PValueCulling is set.
	Permutations int

	// FDRThreshold is the corrected rate above which a predictor is culled.
	FDRThreshold float64

	// SaveAll retains every round's result in the history. When false only the
	// best fitting round is retained.
	SaveAll bool

	// MinLeaf, MaxDepth, and Seed are forwarded to the forest collaborator.
	MinLeaf  int
	MaxDepth int
	Seed     int64
}

// NewDefaultOptions returns a default set of reweighting options.
func NewDefaultOptions() *Options {
	return &Options{
		MaxRounds:    DefaultMaxRounds,
		TreeCount:    DefaultTreeCount,
		Permutations: DefaultPermutations,
		FDRThreshold: DefaultFDRThreshold,
	}
}

// Validate runs basic validation on reweighting options, filling in defaults
// for unset secondary knobs.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}

	if o.MaxRounds < 1 {
		return nil, ErrNonPositiveRounds
	}
	if o.Mtry < 0 {
		return nil, ErrNegativeMtry
	}
	if o.PValueCulling {
		if o.Permutations == 0 {
			o.Permutations = DefaultPermutations
		}
		if o.Permutations < 1 {
			return nil, ErrNonPositivePermutations
		}
		if o.FDRThreshold == 0 {
			o.FDRThreshold = DefaultFDRThreshold
		}
		if o.FDRThreshold <= 0 || o.FDRThreshold > 1 {
			return nil, ErrBadFDRThreshold
		}
	}
	if o.TreeCount <= 0 {
		o.TreeCount = DefaultTreeCount
	}
	return o, nil
}
