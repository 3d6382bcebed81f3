package router_test

import (
	"strings"
	"testing"

	"github.com/evacsys/evacroute/router"
	"github.com/stretchr/testify/assert"
)

const squareMap = `NODES
1 101 0 0
2 102 10 0
3 103 10 10
4 104 0 10
EDGES
1 1 2 10
2 2 3 10
3 3 4 10
4 4 1 10
5 1 3 14.14
EXITS
103
`

func TestParseMapData(t *testing.T) {
	data, err := router.ParseMapData(strings.NewReader(squareMap))
	assert.NoError(t, err)
	assert.Len(t, data.Nodes, 4)
	assert.Len(t, data.Edges, 5)
	assert.Equal(t, []int32{103}, data.ExitAreas)
	assert.Equal(t, int32(101), data.Nodes[0].AreaID)
	assert.Equal(t, 14.14, data.Edges[4].Distance)
}

func TestParseMapDataMissingHeader(t *testing.T) {
	_, err := router.ParseMapData(strings.NewReader("1 101 0 0\n"))
	assert.Error(t, err)

	// nodes but no EDGES section
	_, err = router.ParseMapData(strings.NewReader("NODES\n1 101 0 0\n"))
	assert.Error(t, err)
}

func TestParseMapDataMalformedLine(t *testing.T) {
	_, err := router.ParseMapData(strings.NewReader("NODES\n1 101 0\nEDGES\n"))
	assert.Error(t, err)

	_, err = router.ParseMapData(strings.NewReader("NODES\n1 101 x 0\nEDGES\n"))
	assert.Error(t, err)
}

// N node lines and M edge lines yield exactly N nodes and M edges.
func TestLoadMapCounts(t *testing.T) {
	data, err := router.ParseMapData(strings.NewReader(squareMap))
	assert.NoError(t, err)

	r := router.New(router.DefaultOptions())
	assert.NoError(t, r.LoadMap(data))
	assert.Equal(t, 4, r.NodeCount())
	assert.Equal(t, 5, r.EdgeCount())
	assert.Equal(t, []int32{103}, r.ExitAreas())
}

func TestLoadMapUnknownExit(t *testing.T) {
	data, err := router.ParseMapData(strings.NewReader(squareMap))
	assert.NoError(t, err)
	data.ExitAreas = []int32{999}

	r := router.New(router.DefaultOptions())
	assert.ErrorIs(t, r.LoadMap(data), router.ErrAreaNotFound)
}
