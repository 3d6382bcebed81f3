package router

import (
	"fmt"
	"time"
)

// FindPath computes the risk-weighted shortest route between two areas.
// Each area resolves to its first loaded node. The returned path reports raw
// distance and unweighted risk sums; the weighted cost only drives edge
// selection inside the search.
func (r *Router) FindPath(startArea, endArea int32) (*Path, error) {
	start, ok := r.firstNodeInArea(startArea)
	if !ok {
		return nil, fmt.Errorf("start area %d: %w", startArea, ErrAreaNotFound)
	}
	end, ok := r.firstNodeInArea(endArea)
	if !ok {
		return nil, fmt.Errorf("end area %d: %w", endArea, ErrAreaNotFound)
	}

	items, _ := r.graph.ShortestPath(r.graphIdx[start.ID], r.graphIdx[end.ID])
	if items == nil {
		return nil, fmt.Errorf("area %d to area %d: %w", startArea, endArea, ErrPathNotFound)
	}

	path := &Path{
		Nodes:      make([]PathNode, 0, len(items)),
		ComputedAt: time.Now(),
	}
	for i, item := range items {
		n := r.nodes[item.NodeAttr]
		path.Nodes = append(path.Nodes, PathNode{
			ID:     n.ID,
			AreaID: n.AreaID,
			X:      n.Pos.X,
			Y:      n.Pos.Y,
		})
		if i < len(items)-1 {
			path.TotalDistance += item.EdgeLength
			path.TotalRisk += item.EdgeRisk
		}
	}
	log.Debugf("path from area %d to area %d: %d nodes, distance %.2f, risk %.2f",
		startArea, endArea, len(path.Nodes), path.TotalDistance, path.TotalRisk)
	return path, nil
}
