// Package forest is the built-in random forest collaborator. It grows bagged
// CART trees whose split candidates are sampled with probability proportional
// to a per-predictor weight vector, which is what the iterative reweighting
// loop uses to bias successive forests toward informative predictors. Importance
// is the mean impurity decrease per predictor, and fit statistics come from
// out-of-bag samples only.
package forest

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/dkainer/iRF-LOOP/engine"
	"github.com/dkainer/iRF-LOOP/matrix"
)

const (
	DefaultTreeCount = 500
	DefaultMinLeaf   = 5
	MinSamples       = 5
)

// Options configures the parts of forest growth that the reweighting loop does
// not control per round.
type Options struct {
	// Workers bounds how many trees are grown concurrently. Zero or negative
	// uses GOMAXPROCS.
	Workers int
}

// NewDefaultOptions returns a default set of forest options.
func NewDefaultOptions() *Options {
	return &Options{
		Workers: runtime.GOMAXPROCS(0),
	}
}

// Engine is a weighted random forest implementation of the trainer contract.
// It is stateless across calls and safe for concurrent use.
type Engine struct {
	opt *Options
}

// New creates a forest engine. If no options are provided a default is used.
func New(opt *Options) *Engine {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	return &Engine{opt: opt}
}

// Train grows one forest and reports per-predictor importance along with
// out-of-bag fit statistics.
func (e *Engine) Train(ctx context.Context, data engine.TrainingData, opt engine.TrainOptions) (*engine.Result, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	rows := len(data.Response.Values)
	if rows < MinSamples {
		return nil, fmt.Errorf("%w, have %d, need at least %d", engine.ErrInsufficientSamples, rows, MinSamples)
	}
	if opt.Mtry < 1 || opt.Mtry > len(data.Predictors) {
		return nil, fmt.Errorf("%w, requested %d of %d", engine.ErrBadMtry, opt.Mtry, len(data.Predictors))
	}

	treeCount := opt.TreeCount
	if treeCount <= 0 {
		treeCount = DefaultTreeCount
	}
	minLeaf := opt.MinLeaf
	if minLeaf <= 0 {
		minLeaf = DefaultMinLeaf
		if opt.Classification {
			minLeaf = 1
		}
	}
	seed := opt.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	samples := rowMajor(data.Predictors, rows)
	var classes []float64
	if opt.Classification {
		classes = classLabels(data.Response.Values)
	}

	trees := make([]*fittedTree, treeCount)
	workers := e.opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for t := 0; t < treeCount; t++ {
		if err := ctx.Err(); err != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(t int) {
			defer wg.Done()
			defer func() { <-sem }()

			rng := rand.New(rand.NewSource(seed + int64(t)*seedStride))
			trees[t] = fitOne(rng, samples, data, classes, opt.Mtry, minLeaf, opt.MaxDepth)
		}(t)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return assemble(trees, samples, data.Response.Values, classes, len(data.Predictors), rows), nil
}

// seedStride spaces per-tree seeds apart so neighboring trees do not share
// low-entropy source states.
const seedStride = 0x9E3779B97F4A7C15 & 0x7FFFFFFFFFFFFFFF

type fittedTree struct {
	root       *node
	inBag      []int // in-bag count per sample
	importance []float64
}

func fitOne(rng *rand.Rand, samples [][]float64, data engine.TrainingData, classes []float64, mtry, minLeaf, maxDepth int) *fittedTree {
	rows := len(samples)
	inBag := make([]int, rows)
	idx := make([]int, rows)
	for i := 0; i < rows; i++ {
		j := rng.Intn(rows)
		idx[i] = j
		inBag[j]++
	}

	cfg := &growConfig{
		rows:       samples,
		response:   data.Response.Values,
		weights:    data.Weights,
		classes:    classes,
		mtry:       mtry,
		minLeaf:    minLeaf,
		maxDepth:   maxDepth,
		importance: make([]float64, len(data.Predictors)),
	}
	return &fittedTree{
		root:       growTree(rng, cfg, idx),
		inBag:      inBag,
		importance: cfg.importance,
	}
}

// assemble merges the fitted trees into the engine result: mean impurity
// decrease per predictor and out-of-bag predictions, error, and fit quality.
func assemble(trees []*fittedTree, samples [][]float64, response, classes []float64, predictors, rows int) *engine.Result {
	importances := make([]float64, predictors)
	for _, t := range trees {
		floats.Add(importances, t.importance)
	}
	floats.Scale(1/float64(len(trees)), importances)

	res := &engine.Result{Importances: importances}
	if classes != nil {
		res.OOBPredictions, res.Confusion = oobClassification(trees, samples, response, classes, rows)
		res.FitQuality = res.Confusion.Accuracy()
		res.PredictionError = 1 - res.FitQuality
		return res
	}

	res.OOBPredictions = oobRegression(trees, samples, rows)
	res.PredictionError, res.FitQuality = regressionQuality(res.OOBPredictions, response)
	return res
}

func oobRegression(trees []*fittedTree, samples [][]float64, rows int) []float64 {
	sums := make([]float64, rows)
	counts := make([]int, rows)
	for _, t := range trees {
		for i := 0; i < rows; i++ {
			if t.inBag[i] > 0 {
				continue
			}
			sums[i] += t.root.predict(samples[i])
			counts[i]++
		}
	}

	preds := make([]float64, rows)
	for i := 0; i < rows; i++ {
		if counts[i] == 0 {
			preds[i] = math.NaN()
			continue
		}
		preds[i] = sums[i] / float64(counts[i])
	}
	return preds
}

func regressionQuality(preds, response []float64) (mse, varianceExplained float64) {
	var count int
	for i := range preds {
		if math.IsNaN(preds[i]) {
			continue
		}
		diff := preds[i] - response[i]
		mse += diff * diff
		count++
	}
	if count == 0 {
		return math.NaN(), math.NaN()
	}
	mse /= float64(count)

	variance := stat.Variance(response, nil)
	if variance == 0 {
		return mse, 0
	}
	return mse, 1 - mse/variance
}

func oobClassification(trees []*fittedTree, samples [][]float64, response, classes []float64, rows int) ([]float64, *engine.Confusion) {
	votes := make([][]int, rows)
	for i := range votes {
		votes[i] = make([]int, len(classes))
	}
	for _, t := range trees {
		for i := 0; i < rows; i++ {
			if t.inBag[i] > 0 {
				continue
			}
			votes[i][classIndex(classes, t.root.predict(samples[i]))]++
		}
	}

	confusion := &engine.Confusion{
		Classes: classes,
		Counts:  make([][]int, len(classes)),
	}
	for c := range confusion.Counts {
		confusion.Counts[c] = make([]int, len(classes))
	}

	preds := make([]float64, rows)
	for i := 0; i < rows; i++ {
		total := 0
		winner := 0
		for c, v := range votes[i] {
			total += v
			if v > votes[i][winner] {
				winner = c
			}
		}
		if total == 0 {
			preds[i] = math.NaN()
			continue
		}
		preds[i] = classes[winner]
		confusion.Counts[classIndex(classes, response[i])][winner]++
	}
	return preds, confusion
}

// ImportancePValues estimates permutation p-values by refitting forests against
// shuffled responses and counting how often a null importance reaches the
// observed one.
func (e *Engine) ImportancePValues(ctx context.Context, data engine.TrainingData, opt engine.TrainOptions, permutations int) ([]engine.PValue, error) {
	if permutations < 1 {
		return nil, fmt.Errorf("permutation count must be positive, have %d", permutations)
	}
	observed, err := e.Train(ctx, data, opt)
	if err != nil {
		return nil, err
	}

	seed := opt.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	exceeded := make([]int, len(data.Predictors))
	permuted := data
	for s := 1; s <= permutations; s++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rng := rand.New(rand.NewSource(seed + int64(s)))
		shuffled := make([]float64, len(data.Response.Values))
		copy(shuffled, data.Response.Values)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		permuted.Response = matrix.Column{Name: data.Response.Name, Values: shuffled}

		permOpt := opt
		permOpt.Seed = seed + int64(s)*2654435761
		null, err := e.Train(ctx, permuted, permOpt)
		if err != nil {
			return nil, fmt.Errorf("permutation %d, %w", s, err)
		}
		for f := range exceeded {
			if null.Importances[f] >= observed.Importances[f] {
				exceeded[f]++
			}
		}
	}

	pvals := make([]engine.PValue, len(data.Predictors))
	for f := range pvals {
		pvals[f] = engine.PValue{
			Importance: observed.Importances[f],
			P:          float64(1+exceeded[f]) / float64(1+permutations),
		}
	}
	return pvals, nil
}

// rowMajor flattens the predictor columns into per-sample rows for tree
// traversal.
func rowMajor(predictors []matrix.Column, rows int) [][]float64 {
	samples := make([][]float64, rows)
	flat := make([]float64, rows*len(predictors))
	for i := 0; i < rows; i++ {
		row := flat[i*len(predictors) : (i+1)*len(predictors)]
		for f, p := range predictors {
			row[f] = p.Values[i]
		}
		samples[i] = row
	}
	return samples
}

// classLabels returns the sorted distinct response values treated as class
// labels in classification mode.
func classLabels(response []float64) []float64 {
	seen := make(map[float64]struct{})
	var classes []float64
	for _, y := range response {
		if _, exists := seen[y]; exists {
			continue
		}
		seen[y] = struct{}{}
		classes = append(classes, y)
	}
	sort.Float64s(classes)
	return classes
}

func classIndex(classes []float64, label float64) int {
	for c, l := range classes {
		if l == label {
			return c
		}
	}
	return 0
}
