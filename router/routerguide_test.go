package router_test

import (
	"testing"

	"github.com/evacsys/evacroute/fusion"
	"github.com/evacsys/evacroute/router"
	"github.com/stretchr/testify/assert"
)

func TestDirectionFromPath(t *testing.T) {
	path := func(x1, y1, x2, y2 float64) *router.Path {
		return &router.Path{Nodes: []router.PathNode{
			{ID: 1, X: x1, Y: y1},
			{ID: 2, X: x2, Y: y2},
		}}
	}

	d, err := router.DirectionFromPath(path(0, 0, 10, 1))
	assert.NoError(t, err)
	assert.Equal(t, router.DirectionEast, d)

	d, _ = router.DirectionFromPath(path(0, 0, -10, 1))
	assert.Equal(t, router.DirectionWest, d)

	// y grows southward
	d, _ = router.DirectionFromPath(path(0, 0, 1, 10))
	assert.Equal(t, router.DirectionSouth, d)

	d, _ = router.DirectionFromPath(path(0, 0, 1, -10))
	assert.Equal(t, router.DirectionNorth, d)

	// equal components resolve on the vertical axis
	d, _ = router.DirectionFromPath(path(0, 0, 5, 5))
	assert.Equal(t, router.DirectionSouth, d)
}

func TestDirectionFromPathInvalid(t *testing.T) {
	_, err := router.DirectionFromPath(nil)
	assert.ErrorIs(t, err, router.ErrInvalidPath)

	_, err = router.DirectionFromPath(&router.Path{Nodes: []router.PathNode{{ID: 1}}})
	assert.ErrorIs(t, err, router.ErrInvalidPath)
}

func TestNearestExit(t *testing.T) {
	r := router.New(router.DefaultOptions())
	assert.NoError(t, r.AddNode(1, 101, 0, 0))
	assert.NoError(t, r.AddNode(2, 102, 10, 0))
	assert.NoError(t, r.AddNode(3, 103, 50, 0))
	assert.NoError(t, r.AddEdge(1, 1, 2, 10))
	assert.NoError(t, r.AddEdge(2, 1, 3, 50))
	assert.NoError(t, r.SetExitAreas([]int32{102, 103}))

	exit, err := r.NearestExit(101)
	assert.NoError(t, err)
	assert.Equal(t, int32(102), exit)

	_, err = r.NearestExit(999)
	assert.ErrorIs(t, err, router.ErrAreaNotFound)
}

func TestNearestExitNoneConfigured(t *testing.T) {
	r := router.New(router.DefaultOptions())
	assert.NoError(t, r.AddNode(1, 101, 0, 0))

	_, err := r.NearestExit(101)
	assert.ErrorIs(t, err, router.ErrNoExit)
}

// 2x2 grid: area 101 at origin, exit area 104 opposite. Two routes exist;
// pushing hazard onto area 102 must steer the replanned route through 103.
func newGridRouter(t *testing.T) *router.Router {
	t.Helper()
	r := router.New(router.DefaultOptions())
	assert.NoError(t, r.AddNode(1, 101, 0, 0))
	assert.NoError(t, r.AddNode(2, 102, 10, 0))
	assert.NoError(t, r.AddNode(3, 103, 0, 10))
	assert.NoError(t, r.AddNode(4, 104, 10, 10))
	assert.NoError(t, r.AddEdge(1, 1, 2, 10))
	assert.NoError(t, r.AddEdge(2, 2, 4, 10))
	assert.NoError(t, r.AddEdge(3, 1, 3, 12))
	assert.NoError(t, r.AddEdge(4, 3, 4, 12))
	assert.NoError(t, r.SetExitAreas([]int32{104}))
	return r
}

func TestReplannerBootstrapAndSteadyState(t *testing.T) {
	r := newGridRouter(t)
	rp := router.NewReplanner(r, router.DefaultReplannerOptions())

	assert.Nil(t, rp.Active())
	assert.Equal(t, router.StateOnPath, rp.State())

	// first tick plans to the nearest exit
	p, changed, err := rp.Tick(101)
	assert.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []int32{1, 2, 4}, pathNodeIDs(p))

	// no hazard: path kept unchanged, no recomputation
	p2, changed, err := rp.Tick(101)
	assert.NoError(t, err)
	assert.False(t, changed)
	assert.Same(t, p, p2)
}

func TestReplannerAvoidsHazardousArea(t *testing.T) {
	r := newGridRouter(t)
	rp := router.NewReplanner(r, router.DefaultReplannerOptions())

	_, _, err := rp.Tick(101)
	assert.NoError(t, err)

	// push area 102 above the threshold
	env := fusion.EnvironmentalReading{TVOCppb: 1000, ECO2ppm: 1000}
	r.ApplyReading(env, router.DefaultRiskParams(), 102)

	p, changed, err := rp.Tick(101)
	assert.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []int32{1, 3, 4}, pathNodeIDs(p))
	assert.Equal(t, router.StateOnPath, rp.State())
}

func TestReplannerReportsNoRoute(t *testing.T) {
	r := router.New(router.DefaultOptions())
	assert.NoError(t, r.AddNode(1, 101, 0, 0))
	assert.NoError(t, r.AddNode(2, 102, 10, 0))
	// exit is only reachable against the edge direction
	assert.NoError(t, r.AddEdge(1, 2, 1, 10))
	assert.NoError(t, r.SetExitAreas([]int32{102}))

	rp := router.NewReplanner(r, router.DefaultReplannerOptions())
	_, changed, err := rp.Tick(101)
	assert.ErrorIs(t, err, router.ErrPathNotFound)
	assert.False(t, changed)
	assert.Equal(t, router.StateReplanning, rp.State())

	// non-fatal: the next tick retries
	_, _, err = rp.Tick(101)
	assert.ErrorIs(t, err, router.ErrPathNotFound)
	assert.Equal(t, router.StateReplanning, rp.State())
}

func TestReplannerCooldown(t *testing.T) {
	r := newGridRouter(t)
	opts := router.DefaultReplannerOptions()
	opts.CooldownTicks = 2
	rp := router.NewReplanner(r, opts)

	p, changed, err := rp.Tick(101)
	assert.NoError(t, err)
	assert.True(t, changed)

	// hazard appears immediately, but two ticks are suppressed
	env := fusion.EnvironmentalReading{TVOCppb: 1000, ECO2ppm: 1000}
	r.ApplyReading(env, router.DefaultRiskParams(), 102)

	for i := 0; i < 2; i++ {
		p2, changed, err := rp.Tick(101)
		assert.NoError(t, err)
		assert.False(t, changed)
		assert.Same(t, p, p2)
	}

	p3, changed, err := rp.Tick(101)
	assert.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []int32{1, 3, 4}, pathNodeIDs(p3))
}
