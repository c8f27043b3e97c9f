package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	testData := map[string]struct {
		names []string
		cols  [][]float64
		err   error
	}{
		"no columns": {
			nil,
			nil,
			ErrNoColumns,
		},
		"name count mismatch": {
			[]string{"a"},
			[][]float64{{1}, {2}},
			ErrNameCountMismatch,
		},
		"duplicate name": {
			[]string{"a", "a"},
			[][]float64{{1}, {2}},
			ErrDuplicateColumn,
		},
		"ragged columns": {
			[]string{"a", "b"},
			[][]float64{{1, 2}, {3}},
			ErrRaggedColumns,
		},
		"valid": {
			[]string{"a", "b"},
			[][]float64{{1, 2}, {3, 4}},
			nil,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			m, err := New(td.names, td.cols)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, len(td.names), m.Columns())
			assert.Equal(t, len(td.cols[0]), m.Rows())
			assert.Equal(t, td.names, m.Names())
		})
	}
}

func TestSplit(t *testing.T) {
	m, err := New(
		[]string{"a", "b", "c"},
		[][]float64{{1, 2}, {3, 4}, {5, 6}},
	)
	require.Nil(t, err)

	predictors, response, err := m.Split(1)
	require.Nil(t, err)

	assert.Equal(t, "b", response.Name)
	assert.Equal(t, []float64{3, 4}, response.Values)

	require.Len(t, predictors, 2)
	assert.Equal(t, "a", predictors[0].Name)
	assert.Equal(t, "c", predictors[1].Name)
	assert.Equal(t, []float64{1, 2}, predictors[0].Values)
	assert.Equal(t, []float64{5, 6}, predictors[1].Values)
}

func TestSplitOutOfRange(t *testing.T) {
	m, err := New([]string{"a", "b"}, [][]float64{{1}, {2}})
	require.Nil(t, err)

	_, _, err = m.Split(2)
	assert.ErrorIs(t, err, ErrColumnOutOfRange)

	_, _, err = m.Split(-1)
	assert.ErrorIs(t, err, ErrColumnOutOfRange)
}

func TestIndex(t *testing.T) {
	m, err := New([]string{"a", "b"}, [][]float64{{1}, {2}})
	require.Nil(t, err)

	i, exists := m.Index("b")
	assert.True(t, exists)
	assert.Equal(t, 1, i)

	_, exists = m.Index("z")
	assert.False(t, exists)
}
