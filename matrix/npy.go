package matrix

import (
	"fmt"
	"io"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// ReadNPY parses a two dimensional numpy array from r where rows are samples and
// columns are features. The npy format carries no column labels so the caller
// provides one name per column.
func ReadNPY(r io.Reader, names []string) (*Matrix, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("unable to open npy stream, %w", err)
	}

	var dense mat.Dense
	if err := nr.Read(&dense); err != nil {
		return nil, fmt.Errorf("unable to read npy matrix, %w", err)
	}

	rows, columns := dense.Dims()
	if len(names) != columns {
		return nil, fmt.Errorf("%w, %d names for %d columns", ErrNameCountMismatch, len(names), columns)
	}

	cols := make([][]float64, columns)
	for j := 0; j < columns; j++ {
		cols[j] = make([]float64, rows)
		mat.Col(cols[j], j, &dense)
	}
	return New(names, cols)
}
