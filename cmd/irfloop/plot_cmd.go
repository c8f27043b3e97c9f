package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	irfloop "github.com/dkainer/iRF-LOOP"
	"github.com/spf13/cobra"
)

type plotCmdConfig struct {
	input  string
	output string
	target string
	topN   int
}

func plotCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &plotCmdConfig{}
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render an edge list as an html network graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(rootConfig, config)
		},
	}
	cmd.Flags().StringVarP(&config.input, "input", "i", "", "edge list file (.csv or .json)")
	cmd.Flags().StringVarP(&config.output, "output", "o", "network.html", "html output file")
	cmd.Flags().StringVar(&config.target, "target", "", "plot only the edges pointing at one response feature")
	cmd.Flags().IntVar(&config.topN, "top", 0, "plot only the n strongest edges, 0 for all")
	return cmd
}

func runPlot(rootConfig *rootCmdConfig, config *plotCmdConfig) error {
	if config.input == "" {
		return fmt.Errorf("no edge list provided")
	}
	edges, err := readEdges(config.input)
	if err != nil {
		return err
	}
	if config.target != "" {
		edges = edges.ForTarget(config.target)
		if len(edges) == 0 {
			return fmt.Errorf("no edges point at %q", config.target)
		}
	}
	if config.topN > 0 {
		edges = edges.TopN(config.topN)
	}

	if err := irfloop.PlotNetwork(edges, config.output); err != nil {
		return err
	}
	rootConfig.logger().Debug("network rendered", "edges", len(edges), "path", config.output)
	return nil
}

func readEdges(path string) (irfloop.EdgeList, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open edge list, %w", err)
	}
	defer file.Close()

	if filepath.Ext(path) == ".json" {
		return irfloop.DecodeJSONEdges(file)
	}
	return readEdgesCSV(file)
}

// readEdgesCSV parses the four column table written by the build command.
func readEdgesCSV(r io.Reader) (irfloop.EdgeList, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read edge list, %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("edge list is empty")
	}

	var edges irfloop.EdgeList
	for i, record := range records[1:] {
		if len(record) != 4 {
			return nil, fmt.Errorf("edge row %d has %d columns, expected 4", i+1, len(record))
		}
		importance, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("edge row %d has a non numeric importance, %w", i+1, err)
		}
		fitQuality, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("edge row %d has a non numeric fit quality, %w", i+1, err)
		}
		edges = append(edges, irfloop.Edge{
			Source:     record[0],
			Target:     record[1],
			Importance: importance,
			FitQuality: fitQuality,
		})
	}
	return edges, nil
}
