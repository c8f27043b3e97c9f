package matrix

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	testData := map[string]struct {
		input string
		comma rune
		names []string
		rows  int
		err   bool
	}{
		"comma separated": {
			"a,b,c\n1,2,3\n4,5,6\n",
			',',
			[]string{"a", "b", "c"},
			2,
			false,
		},
		"tab separated": {
			"a\tb\n1\t2\n",
			'\t',
			[]string{"a", "b"},
			1,
			false,
		},
		"empty input": {
			"",
			',',
			nil,
			0,
			true,
		},
		"non numeric cell": {
			"a,b\n1,x\n",
			',',
			nil,
			0,
			true,
		},
		"ragged row": {
			"a,b\n1,2\n3\n",
			',',
			nil,
			0,
			true,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			m, err := ReadCSV(strings.NewReader(td.input), td.comma)
			if td.err {
				require.NotNil(t, err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.names, m.Names())
			assert.Equal(t, td.rows, m.Rows())
		})
	}
}

func TestReadCSVValues(t *testing.T) {
	m, err := ReadCSV(strings.NewReader("x,y\n1.5,-2\n0,3e2\n"), ',')
	require.Nil(t, err)

	col, err := m.Column(0)
	require.Nil(t, err)
	assert.Equal(t, []float64{1.5, 0}, col.Values)

	col, err = m.Column(1)
	require.Nil(t, err)
	assert.Equal(t, []float64{-2, 300}, col.Values)
}
