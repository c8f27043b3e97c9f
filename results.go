package irfloop

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

// Edge is one directed link of the predictive network: the source feature
// helped predict the target feature with the given normalized importance.
// Importance is always positive; edges that would be zero are never emitted.
// FitQuality carries the fit of the model that produced the edge, so every
// edge sharing a target shares a fit quality.
type Edge struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Importance float64 `json:"importance"`
	FitQuality float64 `json:"fit_quality"`
}

// EdgeList is the network output in canonical order: ascending response column,
// then predictor column order within one response.
type EdgeList []Edge

// ForTarget returns the edges pointing at one response feature.
func (e EdgeList) ForTarget(name string) EdgeList {
	var out EdgeList
	for _, edge := range e {
		if edge.Target == name {
			out = append(out, edge)
		}
	}
	return out
}

// TopN returns the n strongest edges by importance. The receiver is not
// modified and ties keep their canonical order.
func (e EdgeList) TopN(n int) EdgeList {
	out := make(EdgeList, len(e))
	copy(out, e)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Importance > out[j].Importance
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// Nodes returns the distinct feature names appearing in the edge list, in
// first-seen order.
func (e EdgeList) Nodes() []string {
	seen := make(map[string]struct{})
	var nodes []string
	for _, edge := range e {
		for _, name := range []string{edge.Source, edge.Target} {
			if _, exists := seen[name]; exists {
				continue
			}
			seen[name] = struct{}{}
			nodes = append(nodes, name)
		}
	}
	return nodes
}

// WriteCSV writes the edge list as a four column table with a header row.
func (e EdgeList) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"source", "target", "importance", "fit_quality"}); err != nil {
		return err
	}
	for _, edge := range e {
		record := []string{
			edge.Source,
			edge.Target,
			strconv.FormatFloat(edge.Importance, 'g', -1, 64),
			strconv.FormatFloat(edge.FitQuality, 'g', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeJSON writes the edge list as a JSON array.
func (e EdgeList) EncodeJSON(w io.Writer) error {
	return json.NewEncoder(w).Encode(e)
}

// DecodeJSONEdges reads an edge list previously written with EncodeJSON.
func DecodeJSONEdges(r io.Reader) (EdgeList, error) {
	var edges EdgeList
	if err := json.NewDecoder(r).Decode(&edges); err != nil {
		return nil, err
	}
	return edges, nil
}
