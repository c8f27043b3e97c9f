// Package matrix provides the named-column numeric feature matrix consumed by the
// network builder. Columns are sample-aligned and uniquely named. A matrix is
// immutable once constructed and safe to share across concurrent readers.
package matrix

import (
	"errors"
	"fmt"
)

var (
	ErrNoColumns         = errors.New("matrix must have at least one column")
	ErrDuplicateColumn   = errors.New("duplicate column name")
	ErrRaggedColumns     = errors.New("columns have differing lengths")
	ErrNameCountMismatch = errors.New("number of names does not match number of columns")
	ErrColumnOutOfRange  = errors.New("column index out of range")
)

// Column is a single named feature holding one value per sample.
type Column struct {
	Name   string
	Values []float64
}

// Matrix holds m samples by n named feature columns.
type Matrix struct {
	names []string
	idx   map[string]int
	cols  [][]float64
	rows  int
}

// New creates a matrix from a slice of column names and their values. All columns
// must have the same number of samples and names must be unique.
func New(names []string, cols [][]float64) (*Matrix, error) {
	if len(cols) == 0 {
		return nil, ErrNoColumns
	}
	if len(names) != len(cols) {
		return nil, fmt.Errorf("%w, %d names for %d columns", ErrNameCountMismatch, len(names), len(cols))
	}

	idx := make(map[string]int, len(names))
	rows := len(cols[0])
	for i, name := range names {
		if _, exists := idx[name]; exists {
			return nil, fmt.Errorf("%w, %q", ErrDuplicateColumn, name)
		}
		idx[name] = i
		if len(cols[i]) != rows {
			return nil, fmt.Errorf("%w, column %q has %d samples, expected %d", ErrRaggedColumns, name, len(cols[i]), rows)
		}
	}

	m := &Matrix{
		names: names,
		idx:   idx,
		cols:  cols,
		rows:  rows,
	}
	return m, nil
}

// Rows returns the number of samples.
func (m *Matrix) Rows() int {
	if m == nil {
		return 0
	}
	return m.rows
}

// Columns returns the number of features.
func (m *Matrix) Columns() int {
	if m == nil {
		return 0
	}
	return len(m.cols)
}

// Names returns a copy of the feature names in column order.
func (m *Matrix) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// Name returns the name of column i.
func (m *Matrix) Name(i int) (string, error) {
	if m == nil || i < 0 || i >= len(m.names) {
		return "", fmt.Errorf("%w, %d", ErrColumnOutOfRange, i)
	}
	return m.names[i], nil
}

// Index returns the column index of a feature name.
func (m *Matrix) Index(name string) (int, bool) {
	if m == nil {
		return -1, false
	}
	i, exists := m.idx[name]
	if !exists {
		return -1, false
	}
	return i, true
}

// Column returns column i as a named column. The values are not copied since the
// matrix is read-only.
func (m *Matrix) Column(i int) (Column, error) {
	if m == nil || i < 0 || i >= len(m.cols) {
		return Column{}, fmt.Errorf("%w, %d", ErrColumnOutOfRange, i)
	}
	return Column{Name: m.names[i], Values: m.cols[i]}, nil
}

// Split partitions the matrix into the response column at index i and the
// remaining columns as predictors, preserving column order.
func (m *Matrix) Split(i int) ([]Column, Column, error) {
	response, err := m.Column(i)
	if err != nil {
		return nil, Column{}, err
	}
	predictors := make([]Column, 0, len(m.cols)-1)
	for j := range m.cols {
		if j == i {
			continue
		}
		predictors = append(predictors, Column{Name: m.names[j], Values: m.cols[j]})
	}
	return predictors, response, nil
}
