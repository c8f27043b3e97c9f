package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	irfloop "github.com/dkainer/iRF-LOOP"
	"github.com/dkainer/iRF-LOOP/forest"
	"github.com/dkainer/iRF-LOOP/matrix"
	"github.com/dkainer/iRF-LOOP/reweight"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

type buildCmdConfig struct {
	input      string
	output     string
	columns    string
	response   string
	configFile string
	profileCPU bool

	buildConfig
}

func buildCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &buildCmdConfig{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a predictive network from a feature matrix",
		Long:  `Reads a csv, tsv, or npy feature matrix, runs one iterative reweighting per feature, and writes the resulting directed edge list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, rootConfig, config)
		},
	}

	cmd.Flags().StringVarP(&config.input, "input", "i", "", "feature matrix file (.csv, .tsv, or .npy)")
	cmd.Flags().StringVarP(&config.output, "output", "o", "edges.csv", "edge list output file (.csv or .json)")
	cmd.Flags().StringVar(&config.columns, "columns", "", "comma separated column names, required for npy input")
	cmd.Flags().StringVar(&config.response, "response", "", "run a single response feature selected by column name")
	cmd.Flags().StringVarP(&config.configFile, "config", "c", "", "yaml file with build options")
	cmd.Flags().BoolVar(&config.profileCPU, "profile", false, "write a cpu profile for the run")

	cmd.Flags().IntVar(&config.Iterations, "iterations", reweight.DefaultMaxRounds, "max reweighting rounds per feature")
	cmd.Flags().IntVar(&config.Trees, "trees", reweight.DefaultTreeCount, "trees per forest")
	cmd.Flags().Float64Var(&config.Mtry, "mtry", 0, "split candidate policy: 0 for sqrt, (0,1] as a proportion of active predictors, >1 as an absolute count")
	cmd.Flags().IntVar(&config.MinLeaf, "min-leaf", 0, "minimum samples per leaf, 0 for the engine default")
	cmd.Flags().IntVar(&config.MaxDepth, "max-depth", 0, "maximum tree depth, 0 for unbounded")
	cmd.Flags().Int64Var(&config.Seed, "seed", 0, "base random seed, 0 for time seeded")
	cmd.Flags().BoolVar(&config.Classification, "classification", false, "treat responses as class labels")
	cmd.Flags().BoolVar(&config.PValueCulling, "pvalue-culling", false, "cull features by FDR corrected permutation p-values (slow)")
	cmd.Flags().IntVar(&config.Permutations, "permutations", reweight.DefaultPermutations, "permutation count for p-value culling")
	cmd.Flags().IntVar(&config.RangeFirst, "first", 0, "first response column (1-based), 0 for all")
	cmd.Flags().IntVar(&config.RangeLast, "last", 0, "last response column (1-based), 0 for all")
	cmd.Flags().IntVar(&config.Workers, "workers", 0, "parallel feature runs, 0 for GOMAXPROCS")
	cmd.Flags().BoolVar(&config.SkipFailures, "skip-failures", false, "skip features whose runs fail instead of aborting")
	return cmd
}

func runBuild(cmd *cobra.Command, rootConfig *rootCmdConfig, config *buildCmdConfig) error {
	if config.input == "" {
		return fmt.Errorf("no input matrix provided")
	}
	if config.configFile != "" {
		if err := mergeConfigFile(cmd, config); err != nil {
			return err
		}
	}
	if config.profileCPU {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}
	logger := rootConfig.logger()

	m, err := readMatrix(config)
	if err != nil {
		return err
	}
	logger.Debug("matrix loaded", "features", m.Columns(), "samples", m.Rows())

	opt := &irfloop.Options{
		ReweightOptions: &reweight.Options{
			MaxRounds:      config.Iterations,
			TreeCount:      config.Trees,
			Mtry:           config.Mtry,
			MinLeaf:        config.MinLeaf,
			MaxDepth:       config.MaxDepth,
			Seed:           config.Seed,
			Classification: config.Classification,
			PValueCulling:  config.PValueCulling,
			Permutations:   config.Permutations,
		},
		WorkerCount:  config.Workers,
		SkipFailures: config.SkipFailures,
	}
	if config.RangeFirst != 0 || config.RangeLast != 0 {
		opt.FeatureRange = &irfloop.Range{First: config.RangeFirst, Last: config.RangeLast}
	}
	if config.response != "" {
		i, exists := m.Index(config.response)
		if !exists {
			return fmt.Errorf("response column %q not in the matrix", config.response)
		}
		opt.FeatureRange = &irfloop.Range{First: i + 1, Last: i + 1}
	}

	builder, err := irfloop.New(forest.New(nil), opt)
	if err != nil {
		return err
	}
	builder.SetLogger(logger)

	edges, err := builder.BuildNetwork(context.Background(), m)
	if err != nil {
		return err
	}
	for _, skipped := range builder.Skipped() {
		fmt.Fprintf(os.Stderr, "skipped %s\n", skipped)
	}

	if err := writeEdges(edges, config.output); err != nil {
		return err
	}
	fmt.Printf("wrote %d edges to %s\n", len(edges), config.output)
	return nil
}

// mergeConfigFile overlays yaml config values under flags that were not set on
// the command line.
func mergeConfigFile(cmd *cobra.Command, config *buildCmdConfig) error {
	fileConfig, err := loadBuildConfig(config.configFile)
	if err != nil {
		return err
	}
	flags := map[string]func(){
		"iterations":     func() { config.Iterations = fileConfig.Iterations },
		"trees":          func() { config.Trees = fileConfig.Trees },
		"mtry":           func() { config.Mtry = fileConfig.Mtry },
		"min-leaf":       func() { config.MinLeaf = fileConfig.MinLeaf },
		"max-depth":      func() { config.MaxDepth = fileConfig.MaxDepth },
		"seed":           func() { config.Seed = fileConfig.Seed },
		"classification": func() { config.Classification = fileConfig.Classification },
		"pvalue-culling": func() { config.PValueCulling = fileConfig.PValueCulling },
		"permutations":   func() { config.Permutations = fileConfig.Permutations },
		"first":          func() { config.RangeFirst = fileConfig.RangeFirst },
		"last":           func() { config.RangeLast = fileConfig.RangeLast },
		"workers":        func() { config.Workers = fileConfig.Workers },
		"skip-failures":  func() { config.SkipFailures = fileConfig.SkipFailures },
	}
	for name, apply := range flags {
		if !cmd.Flags().Changed(name) {
			apply()
		}
	}
	return nil
}

func readMatrix(config *buildCmdConfig) (*matrix.Matrix, error) {
	file, err := os.Open(config.input)
	if err != nil {
		return nil, fmt.Errorf("unable to open matrix file, %w", err)
	}
	defer file.Close()

	switch filepath.Ext(config.input) {
	case ".tsv":
		return matrix.ReadCSV(file, '\t')
	case ".npy":
		if config.columns == "" {
			return nil, fmt.Errorf("npy input requires --columns")
		}
		return matrix.ReadNPY(file, strings.Split(config.columns, ","))
	default:
		return matrix.ReadCSV(file, ',')
	}
}

func writeEdges(edges irfloop.EdgeList, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create output file, %w", err)
	}
	defer file.Close()

	if filepath.Ext(path) == ".json" {
		return edges.EncodeJSON(file)
	}
	return edges.WriteCSV(file)
}
