package matrix

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var ErrNoHeader = errors.New("missing header row with feature names")

// ReadCSV parses a delimited matrix from r. The first row is the header with
// feature names and every following row holds one numeric value per feature.
func ReadCSV(r io.Reader, comma rune) (*Matrix, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read header row, %w", err)
	}

	names := make([]string, len(header))
	copy(names, header)
	cols := make([][]float64, len(names))

	row := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read row %d, %w", row, err)
		}
		for i, field := range record {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q is not numeric, %w", row, names[i], err)
			}
			cols[i] = append(cols[i], val)
		}
		row++
	}

	return New(names, cols)
}
