package router

import (
	"fmt"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
)

// ReplannerState is the two-state machine of the replanning policy.
type ReplannerState int

const (
	StateOnPath ReplannerState = iota
	StateReplanning
)

func (s ReplannerState) String() string {
	if s == StateReplanning {
		return "replanning"
	}
	return "on_path"
}

type ReplannerOptions struct {
	// area hazard above which the active route is discarded
	HazardThreshold float64 `yaml:"hazard_threshold"`
	// ticks to suppress hazard checks after a successful replan; 0 keeps
	// the policy edge-triggered with no debounce
	CooldownTicks int `yaml:"cooldown_ticks"`
}

func DefaultReplannerOptions() ReplannerOptions {
	return ReplannerOptions{HazardThreshold: DEFAULT_HAZARD_THRESHOLD}
}

// Replanner decides each tick whether the active route must be recomputed.
// While any node of the active path sits in an area whose hazard exceeds the
// threshold, it plans from the occupant's position to the nearest exit.
// A failed plan keeps the machine in StateReplanning and is retried on the
// next tick.
type Replanner struct {
	router   *Router
	opts     ReplannerOptions
	state    ReplannerState
	active   *Path
	cooldown int
}

func NewReplanner(r *Router, opts ReplannerOptions) *Replanner {
	if opts.HazardThreshold <= 0 {
		opts.HazardThreshold = DEFAULT_HAZARD_THRESHOLD
	}
	return &Replanner{router: r, opts: opts}
}

func (rp *Replanner) State() ReplannerState { return rp.state }

// Active returns the currently installed path, nil before the first plan.
func (rp *Replanner) Active() *Path { return rp.active }

// Tick runs one policy step. It returns the installed path (possibly the
// unchanged previous one), whether it was replaced this tick, and any
// recoverable planning failure.
func (rp *Replanner) Tick(currentArea int32) (*Path, bool, error) {
	if rp.state == StateOnPath {
		if rp.cooldown > 0 {
			rp.cooldown--
			return rp.active, false, nil
		}
		if rp.active != nil && !rp.pathHazardous() {
			// no node above threshold: keep the path untouched
			return rp.active, false, nil
		}
		rp.state = StateReplanning
	}

	exitArea, err := rp.router.NearestExit(currentArea)
	if err != nil {
		return rp.active, false, err
	}
	path, err := rp.router.FindPath(currentArea, exitArea)
	if err != nil {
		// no safe route currently exists; reported, retried next tick
		return rp.active, false, err
	}
	rp.active = path
	rp.state = StateOnPath
	rp.cooldown = rp.opts.CooldownTicks
	log.Infof("route replanned from area %d to exit area %d (%d nodes, distance %.2f)",
		currentArea, exitArea, len(path.Nodes), path.TotalDistance)
	return path, true, nil
}

func (rp *Replanner) pathHazardous() bool {
	for _, n := range rp.active.Nodes {
		if rp.router.AreaHazard(n.AreaID) > rp.opts.HazardThreshold {
			log.Warnf("node %d (area %d) on active path above hazard threshold", n.ID, n.AreaID)
			return true
		}
	}
	return false
}

// NearestExit picks the exit area whose first node is closest, by straight
// line, to the occupant's current area.
func (r *Router) NearestExit(fromArea int32) (int32, error) {
	from, ok := r.firstNodeInArea(fromArea)
	if !ok {
		return 0, fmt.Errorf("current area %d: %w", fromArea, ErrAreaNotFound)
	}
	if len(r.exitAreas) == 0 {
		return 0, ErrNoExit
	}
	best := int32(0)
	bestDist := math.Inf(0)
	for _, area := range r.exitAreas {
		n, ok := r.firstNodeInArea(area)
		if !ok {
			continue
		}
		if d := geometry.Distance(from.Pos, n.Pos); d < bestDist {
			best, bestDist = area, d
		}
	}
	if math.IsInf(bestDist, 0) {
		return 0, ErrNoExit
	}
	return best, nil
}

// DirectionFromPath reduces the path's first segment to a cardinal guidance
// symbol: dominant displacement axis wins, ties go to the vertical axis.
// The y axis grows southward, matching the display's screen coordinates.
func DirectionFromPath(p *Path) (Direction, error) {
	if p == nil || len(p.Nodes) < 2 {
		return 0, ErrInvalidPath
	}
	dx := p.Nodes[1].X - p.Nodes[0].X
	dy := p.Nodes[1].Y - p.Nodes[0].Y
	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return DirectionEast, nil
		}
		return DirectionWest, nil
	}
	if dy > 0 {
		return DirectionSouth, nil
	}
	return DirectionNorth, nil
}
