package irfloop

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEdges() EdgeList {
	return EdgeList{
		{Source: "b", Target: "a", Importance: 0.5, FitQuality: 0.9},
		{Source: "c", Target: "a", Importance: 0.1, FitQuality: 0.9},
		{Source: "a", Target: "b", Importance: 0.7, FitQuality: 0.4},
		{Source: "c", Target: "b", Importance: 0.3, FitQuality: 0.4},
	}
}

func TestForTarget(t *testing.T) {
	edges := testEdges().ForTarget("a")
	require.Len(t, edges, 2)
	assert.Equal(t, "b", edges[0].Source)
	assert.Equal(t, "c", edges[1].Source)
}

func TestTopN(t *testing.T) {
	edges := testEdges()
	top := edges.TopN(2)
	require.Len(t, top, 2)
	assert.Equal(t, 0.7, top[0].Importance)
	assert.Equal(t, 0.5, top[1].Importance)

	// receiver order untouched
	assert.Equal(t, 0.5, edges[0].Importance)

	assert.Len(t, edges.TopN(100), len(edges))
}

func TestNodes(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, testEdges().Nodes())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.Nil(t, testEdges().WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "source,target,importance,fit_quality", lines[0])
	assert.Equal(t, "b,a,0.5,0.9", lines[1])
}

func TestJSONRoundTrip(t *testing.T) {
	edges := testEdges()

	var buf bytes.Buffer
	require.Nil(t, edges.EncodeJSON(&buf))

	decoded, err := DecodeJSONEdges(&buf)
	require.Nil(t, err)
	assert.Equal(t, edges, decoded)
}
