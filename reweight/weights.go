package reweight

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/dkainer/iRF-LOOP/engine"
	"github.com/dkainer/iRF-LOOP/stats"
)

// ErrDegenerateWeights signals that a round produced an importance vector
// summing to exactly 0, leaving nothing to normalize. The run stops and keeps
// whatever history was recorded before the degenerate round.
var ErrDegenerateWeights = errors.New("importance sum is zero, weights are degenerate")

// uniformWeights is the round zero weight vector, 1/n per predictor.
func uniformWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	return w
}

// activeCount reports how many predictors still carry a positive weight.
func activeCount(weights []float64) int {
	var active int
	for _, w := range weights {
		if w > 0 {
			active++
		}
	}
	return active
}

// mtryFor resolves the split candidate policy against the number of active
// predictors. A policy of 0 is floor(sqrt(active)); a policy in (0, 1] is a
// proportion of active predictors, with 1 meaning all of them; above 1 it is an
// absolute count. The result is clamped to [1, active].
func mtryFor(policy float64, active int) int {
	var mtry int
	switch {
	case policy == 0:
		mtry = int(math.Floor(math.Sqrt(float64(active))))
	case policy <= 1:
		mtry = int(math.Floor(policy * float64(active)))
	default:
		mtry = int(policy)
	}

	if mtry < 1 {
		mtry = 1
	}
	if mtry > active {
		mtry = active
	}
	return mtry
}

// normalizeImportances rescales raw importances by the sum of their absolute
// values and clamps negative results to 0. The output sums to 1 only when no
// predictor was clamped.
func normalizeImportances(raw []float64) ([]float64, error) {
	sumAbs := floats.Norm(raw, 1)
	if sumAbs == 0 {
		return nil, ErrDegenerateWeights
	}

	next := make([]float64, len(raw))
	floats.ScaleTo(next, 1/sumAbs, raw)
	for i, w := range next {
		if w < 0 {
			next[i] = 0
		}
	}
	return next, nil
}

// cullByPValue zeroes predictors whose false discovery rate adjusted
// permutation p-value exceeds the threshold, then renormalizes the survivors by
// their sum.
func cullByPValue(pvals []engine.PValue, threshold float64) ([]float64, error) {
	ps := make([]float64, len(pvals))
	next := make([]float64, len(pvals))
	for i, pv := range pvals {
		ps[i] = pv.P
		if pv.Importance > 0 {
			next[i] = pv.Importance
		}
	}

	q, err := stats.BenjaminiHochberg(ps)
	if err != nil {
		return nil, fmt.Errorf("unable to adjust p-values, %w", err)
	}

	for i := range next {
		if q[i] > threshold {
			next[i] = 0
		}
	}
	sum := floats.Sum(next)
	if sum == 0 {
		return nil, ErrDegenerateWeights
	}
	floats.Scale(1/sum, next)
	return next, nil
}

// stoppingFloor is the active predictor count below which iteration stops,
// guarding against degenerate all-but-one-culled states.
func stoppingFloor(total int) float64 {
	return math.Max(0.01*float64(total), 10)
}
