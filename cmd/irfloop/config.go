package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// buildConfig mirrors the build command flags so runs can be described in a
// yaml file instead. Flags set explicitly on the command line win over the
// file.
type buildConfig struct {
	Iterations     int     `yaml:"iterations"`
	Trees          int     `yaml:"trees"`
	Mtry           float64 `yaml:"mtry"`
	MinLeaf        int     `yaml:"min_leaf"`
	MaxDepth       int     `yaml:"max_depth"`
	Seed           int64   `yaml:"seed"`
	Classification bool    `yaml:"classification"`
	PValueCulling  bool    `yaml:"pvalue_culling"`
	Permutations   int     `yaml:"permutations"`
	RangeFirst     int     `yaml:"range_first"`
	RangeLast      int     `yaml:"range_last"`
	Workers        int     `yaml:"workers"`
	SkipFailures   bool    `yaml:"skip_failures"`
}

func loadBuildConfig(path string) (*buildConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file, %w", err)
	}
	config := &buildConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("unable to parse config file, %w", err)
	}
	return config, nil
}
