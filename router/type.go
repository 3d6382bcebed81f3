package router

import (
	"time"

	"git.fiblab.net/general/common/v2/geometry"
)

// Node is a point in the routing graph, tied to one area. Immutable after
// map load.
type Node struct {
	ID     int32
	AreaID int32
	Pos    geometry.Point
}

// Edge is a directed traversable connection. Risk is the only field that
// changes after load; it is rewritten by risk update generations.
type Edge struct {
	ID       int32
	Start    int32
	End      int32
	Distance float64
	Risk     float64
}

// PathNode is one visited node of a computed route.
type PathNode struct {
	ID     int32   `json:"id"`
	AreaID int32   `json:"area_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Path is an ordered route from start to end. TotalDistance and TotalRisk
// are raw sums over the traversed edges, not the weighted planning cost.
// Paths are replaced wholesale, never mutated in place.
type Path struct {
	Nodes         []PathNode `json:"nodes"`
	TotalDistance float64    `json:"total_distance"`
	TotalRisk     float64    `json:"total_risk"`
	ComputedAt    time.Time  `json:"computed_at"`
}

func (p *Path) StartArea() int32 {
	return p.Nodes[0].AreaID
}

func (p *Path) EndArea() int32 {
	return p.Nodes[len(p.Nodes)-1].AreaID
}

// Direction is the cardinal guidance symbol shown to occupants. The value
// order matches the display mapping of the guidance hardware.
type Direction int

const (
	DirectionEast Direction = iota
	DirectionNorth
	DirectionWest
	DirectionSouth
)

func (d Direction) String() string {
	switch d {
	case DirectionEast:
		return "east"
	case DirectionNorth:
		return "north"
	case DirectionWest:
		return "west"
	case DirectionSouth:
		return "south"
	}
	return "unknown"
}
