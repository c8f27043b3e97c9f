package irfloop

import (
	"errors"
	"runtime"

	"github.com/dkainer/iRF-LOOP/reweight"
)

var ErrInvalidRange = errors.New("feature range is out of bounds")

// Range restricts which matrix columns act as response during the leave-one-out
// loop. Indices are 1-based and inclusive on both ends.
type Range struct {
	First int
	Last  int
}

// Options configures a network build.
type Options struct {
	// ReweightOptions configures the per-response reweighting runs. SaveAll is
	// ignored here since the builder only consumes each run's best round.
	ReweightOptions *reweight.Options

	// FeatureRange restricts which columns act as response. Nil means all.
	FeatureRange *Range

	// WorkerCount bounds how many per-feature runs execute concurrently. Zero
	// or negative uses GOMAXPROCS.
	WorkerCount int

	// SkipFailures continues the build when a single per-feature run fails,
	// dropping that feature's edges. The default aborts the whole build on the
	// first failure for reproducibility.
	SkipFailures bool
}

// NewDefaultOptions returns a default set of network build options.
func NewDefaultOptions() *Options {
	return &Options{
		ReweightOptions: reweight.NewDefaultOptions(),
		WorkerCount:     runtime.GOMAXPROCS(0),
	}
}

// Validate runs basic validation on build options.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.ReweightOptions == nil {
		o.ReweightOptions = reweight.NewDefaultOptions()
	}
	if _, err := o.ReweightOptions.Validate(); err != nil {
		return nil, err
	}
	if o.WorkerCount <= 0 {
		o.WorkerCount = runtime.GOMAXPROCS(0)
	}
	if o.FeatureRange != nil && (o.FeatureRange.First < 1 || o.FeatureRange.First > o.FeatureRange.Last) {
		return nil, ErrInvalidRange
	}
	return o, nil
}

// resolveRange maps the optional 1-based range onto 0-based column bounds for a
// matrix with n columns.
func (o *Options) resolveRange(n int) (int, int, error) {
	if o.FeatureRange == nil {
		return 0, n - 1, nil
	}
	first, last := o.FeatureRange.First, o.FeatureRange.Last
	if first < 1 || last > n || first > last {
		return 0, 0, ErrInvalidRange
	}
	return first - 1, last - 1, nil
}
