// Package router owns the building topology and everything that runs on it:
// the graph store, the risk update engine, the A* planner, the replanning
// policy and the direction translator.
package router

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/evacsys/evacroute/router/algo"
)

type Options struct {
	MaxNodes int
	MaxEdges int
	// risk aversion constant k in distance*(1+k*risk)
	RiskAversion float64
	// cap on A* node expansions per search, 0 means unbounded
	MaxExpansions int
}

func DefaultOptions() Options {
	return Options{
		MaxNodes:     DEFAULT_MAX_NODES,
		MaxEdges:     DEFAULT_MAX_EDGES,
		RiskAversion: algo.DEFAULT_RISK_AVERSION,
	}
}

type euclideanHeuristics struct{}

func (euclideanHeuristics) HeuristicEuclidean(p1, p2 geometry.Point) float64 {
	return geometry.Distance(p1, p2)
}

// Router holds the graph store and its derived indexes.
//
// Node/edge topology is write-once at load time. At runtime the risk engine
// is the single mutator (edge risks, area hazards) and planner searches are
// the readers; both sides go through the search graph's RBMutex, so a search
// always sees one consistent risk generation.
type Router struct {
	opts Options

	nodes map[int32]*Node
	edges map[int32]*Edge
	// node ids in insertion order; area resolution is first match over this
	nodeOrder []int32
	// area id -> node ids in insertion order
	areaNodes map[int32][]int32
	// area id -> current hazard intensity
	areaHazard *xsync.MapOf[int32, float64]
	exitAreas  []int32

	// node attr: node id, edge attr: edge id
	graph *algo.SearchGraph[int32, int32]
	// node id -> search graph index
	graphIdx map[int32]int
}

func New(opts Options) *Router {
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DEFAULT_MAX_NODES
	}
	if opts.MaxEdges <= 0 {
		opts.MaxEdges = DEFAULT_MAX_EDGES
	}
	return &Router{
		opts:       opts,
		nodes:      make(map[int32]*Node),
		edges:      make(map[int32]*Edge),
		nodeOrder:  make([]int32, 0),
		areaNodes:  make(map[int32][]int32),
		areaHazard: xsync.NewMapOf[int32, float64](),
		graph:      algo.NewSearchGraph[int32, int32](opts.RiskAversion, opts.MaxExpansions, euclideanHeuristics{}),
		graphIdx:   make(map[int32]int),
	}
}

// AddNode inserts one node. A rejected insert leaves the store unchanged.
func (r *Router) AddNode(id, areaID int32, x, y float64) error {
	if _, ok := r.nodes[id]; ok {
		return fmt.Errorf("node %d: %w", id, ErrDuplicateID)
	}
	if len(r.nodes) >= r.opts.MaxNodes {
		return fmt.Errorf("node %d: %w (max %d nodes)", id, ErrCapacityExceeded, r.opts.MaxNodes)
	}
	n := &Node{ID: id, AreaID: areaID, Pos: geometry.Point{X: x, Y: y}}
	r.nodes[id] = n
	r.nodeOrder = append(r.nodeOrder, id)
	r.areaNodes[areaID] = append(r.areaNodes[areaID], id)
	r.graphIdx[id] = r.graph.InitNode(n.Pos, id)
	return nil
}

// AddEdge inserts one directed edge. Both endpoints must already exist.
// A negative distance is clamped to zero rather than rejected.
func (r *Router) AddEdge(id, start, end int32, distance float64) error {
	if _, ok := r.edges[id]; ok {
		return fmt.Errorf("edge %d: %w", id, ErrDuplicateID)
	}
	if len(r.edges) >= r.opts.MaxEdges {
		return fmt.Errorf("edge %d: %w (max %d edges)", id, ErrCapacityExceeded, r.opts.MaxEdges)
	}
	if _, ok := r.nodes[start]; !ok {
		return fmt.Errorf("edge %d start node %d: %w", id, start, ErrUnknownEndpoint)
	}
	if _, ok := r.nodes[end]; !ok {
		return fmt.Errorf("edge %d end node %d: %w", id, end, ErrUnknownEndpoint)
	}
	if distance < 0 {
		log.Warnf("edge %d: negative distance %v clamped to 0", id, distance)
		distance = 0
	}
	e := &Edge{ID: id, Start: start, End: end, Distance: distance}
	r.edges[id] = e
	r.graph.InitEdge(r.graphIdx[start], r.graphIdx[end], distance, id)
	return nil
}

func (r *Router) NodeByID(id int32) (*Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// NodesByArea returns the area's nodes in insertion order.
func (r *Router) NodesByArea(areaID int32) []*Node {
	ids := r.areaNodes[areaID]
	nodes := make([]*Node, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, r.nodes[id])
	}
	return nodes
}

// firstNodeInArea resolves an area to its first loaded node. Duplicate
// area-to-node mappings are legal; first match wins.
func (r *Router) firstNodeInArea(areaID int32) (*Node, bool) {
	ids := r.areaNodes[areaID]
	if len(ids) == 0 {
		return nil, false
	}
	return r.nodes[ids[0]], true
}

func (r *Router) HasArea(areaID int32) bool {
	return len(r.areaNodes[areaID]) > 0
}

func (r *Router) NodeCount() int { return len(r.nodes) }
func (r *Router) EdgeCount() int { return len(r.edges) }

// EdgeRisk returns the current risk factor of an edge by id.
func (r *Router) EdgeRisk(id int32) (float64, bool) {
	e, ok := r.edges[id]
	if !ok {
		return 0, false
	}
	return e.Risk, true
}

// AreaHazard returns the current hazard intensity of an area, zero if the
// area has not been measured yet.
func (r *Router) AreaHazard(areaID int32) float64 {
	h, _ := r.areaHazard.Load(areaID)
	return h
}

// SetExitAreas replaces the exit area set. Each area must exist in the map.
func (r *Router) SetExitAreas(areas []int32) error {
	for _, a := range areas {
		if !r.HasArea(a) {
			return fmt.Errorf("exit area %d: %w", a, ErrAreaNotFound)
		}
	}
	r.exitAreas = areas
	return nil
}

func (r *Router) ExitAreas() []int32 { return r.exitAreas }

func (r *Router) Close() {}
