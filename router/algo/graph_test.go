package algo_test

import (
	"math"
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/evacsys/evacroute/router/algo"
	"github.com/stretchr/testify/assert"
)

type testHeuristics struct{}

func (testHeuristics) HeuristicEuclidean(p1 geometry.Point, p2 geometry.Point) float64 {
	return geometry.Distance(p1, p2)
}

func TestSearchGraph(t *testing.T) {
	g := algo.NewSearchGraph[int, int](algo.DEFAULT_RISK_AVERSION, 0, testHeuristics{})

	// 初始化点
	n1 := g.InitNode(geometry.Point{X: 0, Y: 0}, 1)
	n2 := g.InitNode(geometry.Point{X: 0, Y: 1}, 2)
	n3 := g.InitNode(geometry.Point{X: 1, Y: 0}, 3)
	n4 := g.InitNode(geometry.Point{X: 1, Y: 1}, 4)

	// 初始化边
	g.InitEdge(n1, n2, 1, 12)
	g.InitEdge(n2, n3, 1, 23)
	g.InitEdge(n3, n4, 1, 34)

	length, err := g.EdgeLength(n1, n2)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, length)

	// 计算最短路
	path, cost := g.ShortestPath(n1, n4)
	assert.Len(t, path, 4)
	assert.Equal(t, 1, path[0].NodeAttr)
	assert.Equal(t, 12, path[0].EdgeAttr)
	assert.Equal(t, 2, path[1].NodeAttr)
	assert.Equal(t, 23, path[1].EdgeAttr)
	assert.Equal(t, 3, path[2].NodeAttr)
	assert.Equal(t, 34, path[2].EdgeAttr)
	assert.Equal(t, 4, path[3].NodeAttr)
	assert.Equal(t, 3.0, cost)

	path, cost = g.ShortestPath(n3, n3)
	assert.Len(t, path, 1)
	assert.Equal(t, 3, path[0].NodeAttr)
	assert.Equal(t, 0.0, cost)

	// 加入不可达的点
	n5 := g.InitNode(geometry.Point{X: 2, Y: 2}, 5)
	path, cost = g.ShortestPath(n1, n5)
	assert.Nil(t, path)
	assert.True(t, math.IsInf(cost, 0))
}

func TestSearchGraphRiskWeight(t *testing.T) {
	g := algo.NewSearchGraph[int, int](10, 0, testHeuristics{})

	n1 := g.InitNode(geometry.Point{X: 0, Y: 0}, 1)
	n2 := g.InitNode(geometry.Point{X: 0, Y: 1}, 2)
	n3 := g.InitNode(geometry.Point{X: 1, Y: 0}, 3)

	g.InitEdge(n1, n2, 10, 12)
	g.InitEdge(n1, n3, 2, 13)
	g.InitEdge(n3, n2, 1, 32)

	// 计算最短路：经由n3
	path, cost := g.ShortestPath(n1, n2)
	assert.Len(t, path, 3)
	assert.Equal(t, 13, path[0].EdgeAttr)
	assert.Equal(t, 32, path[1].EdgeAttr)
	assert.Equal(t, 3.0, cost)
	assert.Equal(t, 2.0, path[0].EdgeLength)
	assert.Equal(t, 0.0, path[0].EdgeRisk)

	// 抬高n1->n3的风险后，直达边更便宜：2*(1+10*0.5)+1 = 13 > 10
	assert.NoError(t, g.SetEdgeRisk(n1, n3, 0.5))
	path, cost = g.ShortestPath(n1, n2)
	assert.Len(t, path, 2)
	assert.Equal(t, 12, path[0].EdgeAttr)
	assert.Equal(t, 10.0, cost)

	// 风险清零后恢复原路
	assert.NoError(t, g.SetEdgeRisks([]algo.EdgeRisk{{From: n1, To: n3, Risk: 0}}))
	path, _ = g.ShortestPath(n1, n2)
	assert.Len(t, path, 3)
}

func TestSearchGraphRiskClampAndErrors(t *testing.T) {
	g := algo.NewSearchGraph[int, int](10, 0, testHeuristics{})
	n1 := g.InitNode(geometry.Point{X: 0, Y: 0}, 1)
	n2 := g.InitNode(geometry.Point{X: 0, Y: 1}, 2)
	g.InitEdge(n1, n2, 1, 12)

	// 越界风险被钳制到[0,1]
	assert.NoError(t, g.SetEdgeRisk(n1, n2, 3))
	risk, err := g.EdgeRiskValue(n1, n2)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, risk)

	assert.ErrorIs(t, g.SetEdgeRisk(n2, n1, 0.5), algo.ErrEdgeNotFound)
	// 原子性：一条未知边导致整组更新被拒绝
	assert.ErrorIs(t, g.SetEdgeRisks([]algo.EdgeRisk{
		{From: n1, To: n2, Risk: 0},
		{From: n2, To: n1, Risk: 0},
	}), algo.ErrEdgeNotFound)
	risk, _ = g.EdgeRiskValue(n1, n2)
	assert.Equal(t, 1.0, risk)
}

func TestSearchGraphMaxExpansions(t *testing.T) {
	g := algo.NewSearchGraph[int, int](10, 1, testHeuristics{})
	n1 := g.InitNode(geometry.Point{X: 0, Y: 0}, 1)
	n2 := g.InitNode(geometry.Point{X: 0, Y: 1}, 2)
	n3 := g.InitNode(geometry.Point{X: 0, Y: 2}, 3)
	g.InitEdge(n1, n2, 1, 12)
	g.InitEdge(n2, n3, 1, 23)

	// 上限为1时，搜索在到达n3前耗尽
	path, cost := g.ShortestPath(n1, n3)
	assert.Nil(t, path)
	assert.True(t, math.IsInf(cost, 0))
}
