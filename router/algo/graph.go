package algo

import (
	"container/heap"
	"log"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/samber/lo"
)

type node[T any] struct {
	p    geometry.Point
	attr T
}

type edge[T any] struct {
	length float64
	risk   float64
	attr   T
}

// EdgeRisk is one entry of an atomic risk update generation.
type EdgeRisk struct {
	From, To int
	Risk     float64
}

// SearchGraph runs risk-weighted A* over a static topology.
//
// Nodes and edges are fixed after initialization; only edge risk factors
// change at runtime. Risk updates take the write lock and land as one
// generation, searches hold a read token for their full duration, so an
// in-flight search never observes a half-applied update.
type SearchGraph[NT any, ET any] struct {
	// 邻接表 in node -> out node -> edge
	edges []map[int]edge[ET]
	nodes []node[NT]
	// risk aversion constant k
	k float64
	// cap on popped nodes per search, 0 means unbounded
	maxExpansions int
	// A Star距离预估函数
	h IHeuristics

	mu *xsync.RBMutex
}

type IHeuristics interface {
	HeuristicEuclidean(geometry.Point, geometry.Point) float64
}

func NewSearchGraph[NT any, ET any](k float64, maxExpansions int, h IHeuristics) *SearchGraph[NT, ET] {
	if k < 0 {
		k = DEFAULT_RISK_AVERSION
	}
	return &SearchGraph[NT, ET]{
		edges:         make([]map[int]edge[ET], 0),
		nodes:         make([]node[NT], 0),
		k:             k,
		maxExpansions: maxExpansions,
		h:             h,
		mu:            xsync.NewRBMutex(),
	}
}

func (g *SearchGraph[NT, ET]) InitNode(p geometry.Point, attr NT) int {
	g.nodes = append(g.nodes, node[NT]{p: p, attr: attr})
	g.edges = append(g.edges, make(map[int]edge[ET]))
	return len(g.nodes) - 1
}

func (g *SearchGraph[NT, ET]) InitEdge(from, to int, length float64, attr ET) {
	if from >= len(g.edges) {
		log.Panicf("from node %d >= len(g.edges) %d", from, len(g.edges))
	}
	if to >= len(g.nodes) {
		log.Panicf("to node %d >= len(g.nodes) %d", to, len(g.nodes))
	}
	g.edges[from][to] = edge[ET]{
		length: length,
		risk:   0,
		attr:   attr,
	}
}

func (g *SearchGraph[NT, ET]) EdgeLength(from, to int) (float64, error) {
	t := g.mu.RLock()
	defer g.mu.RUnlock(t)
	e, ok := g.edges[from][to]
	if !ok {
		return 0, ErrEdgeNotFound
	}
	return e.length, nil
}

func (g *SearchGraph[NT, ET]) EdgeRiskValue(from, to int) (float64, error) {
	t := g.mu.RLock()
	defer g.mu.RUnlock(t)
	e, ok := g.edges[from][to]
	if !ok {
		return 0, ErrEdgeNotFound
	}
	return e.risk, nil
}

func (g *SearchGraph[NT, ET]) SetEdgeRisk(from, to int, risk float64) error {
	return g.SetEdgeRisks([]EdgeRisk{{From: from, To: to, Risk: risk}})
}

// SetEdgeRisks applies a whole risk generation atomically. Either every entry
// lands or none does; out-of-range risks are clamped into [0, 1].
func (g *SearchGraph[NT, ET]) SetEdgeRisks(risks []EdgeRisk) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range risks {
		if r.From < 0 || r.From >= len(g.edges) {
			return ErrEdgeNotFound
		}
		if _, ok := g.edges[r.From][r.To]; !ok {
			return ErrEdgeNotFound
		}
	}
	for _, r := range risks {
		e := g.edges[r.From][r.To]
		e.risk = lo.Clamp(r.Risk, 0, 1)
		g.edges[r.From][r.To] = e
	}
	return nil
}

// weight is the traversal cost used for edge selection. It is never smaller
// than the raw length, which keeps the Euclidean heuristic admissible.
func (g *SearchGraph[NT, ET]) weight(e edge[ET]) float64 {
	return e.length * (1 + g.k*e.risk)
}

// PathItem carries one visited node plus the edge leaving it (zero-valued on
// the final item). EdgeLength and EdgeRisk are the raw reporting metrics,
// distinct from the weighted cost.
type PathItem[NT any, ET any] struct {
	NodeAttr   NT
	EdgeAttr   ET
	EdgeLength float64
	EdgeRisk   float64
}

func (g *SearchGraph[NT, ET]) reconstructPath(cameFrom map[int]int, curNode int) ([]PathItem[NT, ET], float64) {
	pathBeforeReversed := []PathItem[NT, ET]{{NodeAttr: g.nodes[curNode].attr}}
	cost := .0
	for {
		if from, ok := cameFrom[curNode]; ok {
			e := g.edges[from][curNode]
			cost += g.weight(e)
			curNode = from
			pathBeforeReversed = append(pathBeforeReversed, PathItem[NT, ET]{
				NodeAttr:   g.nodes[curNode].attr,
				EdgeAttr:   e.attr,
				EdgeLength: e.length,
				EdgeRisk:   e.risk,
			})
		} else {
			break
		}
	}
	return lo.Reverse(pathBeforeReversed), cost
}

func (g *SearchGraph[NT, ET]) ShortestPath(start, end int) ([]PathItem[NT, ET], float64) {
	return g.ShortestPathAStar(start, end)
}

// A Star算法求最短路
func (g *SearchGraph[NT, ET]) ShortestPathAStar(start, end int) ([]PathItem[NT, ET], float64) {
	token := g.mu.RLock()
	defer g.mu.RUnlock(token)
	if start == end {
		return []PathItem[NT, ET]{{NodeAttr: g.nodes[start].attr}}, 0
	}
	openSet := make(PriorityQueue, 1)
	openSetMap := make(map[int]*Item, 1) // openSet value -> openSet item
	cameFrom := make(map[int]int)
	gScore := make(map[int]float64)
	gScore[start] = .0
	fScore := g.h.HeuristicEuclidean(g.nodes[start].p, g.nodes[end].p)
	openSet[0] = &Item{Value: start, Priority: fScore, Index: 0}
	openSetMap[start] = openSet[0]
	heap.Init(&openSet)
	expansions := 0
	for openSet.Len() > 0 {
		cur := heap.Pop(&openSet).(*Item).Value
		if cur == end {
			return g.reconstructPath(cameFrom, cur)
		}
		expansions++
		if g.maxExpansions > 0 && expansions > g.maxExpansions {
			// bounded search: expiry is reported as no path
			return nil, math.Inf(0)
		}
		for neighbor, e := range g.edges[cur] {
			gScoreTentative := gScore[cur] + g.weight(e)
			var gScoreNeighbor float64
			s, ok := gScore[neighbor]
			if ok {
				gScoreNeighbor = s
			} else {
				gScoreNeighbor = math.Inf(0)
			}
			if gScoreTentative < gScoreNeighbor {
				cameFrom[neighbor] = cur
				gScore[neighbor] = gScoreTentative
				fScore := gScoreTentative + g.h.HeuristicEuclidean(g.nodes[neighbor].p, g.nodes[end].p)
				if item, visited := openSetMap[neighbor]; visited && item.Index >= 0 {
					// 已经访问过的节点，修改其在heap中的优先级
					item.Priority = fScore
					heap.Fix(&openSet, item.Index)
				} else {
					// 新访问的节点
					item := &Item{Value: neighbor, Priority: fScore}
					heap.Push(&openSet, item)
					openSetMap[neighbor] = item
				}
			}
		}
	}
	return nil, math.Inf(0)
}
