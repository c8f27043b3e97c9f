package irfloop

import (
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// GraphNetwork generates an echart directed graph of the edge list. Node size
// scales with degree so hub features stand out.
func GraphNetwork(title string, edges EdgeList) *charts.Graph {
	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	degree := make(map[string]int)
	for _, edge := range edges {
		degree[edge.Source]++
		degree[edge.Target]++
	}

	nodes := make([]opts.GraphNode, 0, len(degree))
	for _, name := range edges.Nodes() {
		nodes = append(nodes, opts.GraphNode{
			Name:       name,
			SymbolSize: 8 + 2*degree[name],
		})
	}

	links := make([]opts.GraphLink, 0, len(edges))
	for _, edge := range edges {
		links = append(links, opts.GraphLink{
			Source: edge.Source,
			Target: edge.Target,
			Value:  float32(edge.Importance),
		})
	}

	graph.AddSeries("network", nodes, links,
		charts.WithGraphChartOpts(
			opts.GraphChart{
				Layout:     "force",
				Force:      &opts.GraphForce{Repulsion: 400},
				EdgeSymbol: []string{"none", "arrow"},
			},
		),
	)
	return graph
}

// PlotNetwork renders the edge list to an html file as a force directed graph.
func PlotNetwork(edges EdgeList, path string) error {
	page := components.NewPage()
	page.AddCharts(GraphNetwork("Predictive Network", edges))

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return page.Render(io.MultiWriter(file))
}
