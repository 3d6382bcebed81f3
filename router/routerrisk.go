package router

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/evacsys/evacroute/fusion"
	"github.com/evacsys/evacroute/router/algo"
)

// RiskParams controls how a fused environmental reading maps to a hazard
// intensity in [0, 1].
type RiskParams struct {
	TVOCWeight    float64 `yaml:"tvoc_weight"`
	ECO2Weight    float64 `yaml:"eco2_weight"`
	Normalization float64 `yaml:"normalization"`
}

func DefaultRiskParams() RiskParams {
	return RiskParams{
		TVOCWeight:    1,
		ECO2Weight:    1,
		Normalization: DEFAULT_NORMALIZATION,
	}
}

// HazardIntensity is the weighted TVOC/eCO2 combination, clamped to [0, 1].
func (p RiskParams) HazardIntensity(env fusion.EnvironmentalReading) float64 {
	norm := p.Normalization
	if norm <= 0 {
		norm = DEFAULT_NORMALIZATION
	}
	h := (p.TVOCWeight*float64(env.TVOCppb) + p.ECO2Weight*float64(env.ECO2ppm)) / norm
	return lo.Clamp(h, 0, 1)
}

// ApplyReading maps one fused reading onto edge risks. With explicit areas
// the reading updates only those areas' hazards and the edges touching them;
// with none it applies to every area, which is all the sensing granularity
// the deployment has. The whole update lands as one atomic generation, so a
// concurrent search never sees it half-applied. Re-applying the same reading
// is a no-op on the resulting risk state.
func (r *Router) ApplyReading(env fusion.EnvironmentalReading, p RiskParams, areas ...int32) {
	h := p.HazardIntensity(env)

	target := make(map[int32]bool, len(areas))
	if len(areas) == 0 {
		for area := range r.areaNodes {
			target[area] = true
		}
	} else {
		for _, area := range areas {
			if !r.HasArea(area) {
				log.Warnf("risk update for unknown area %d dropped", area)
				continue
			}
			target[area] = true
		}
	}
	for area := range target {
		r.areaHazard.Store(area, h)
	}

	// an edge takes the worst hazard of its two endpoint areas
	risks := make([]algo.EdgeRisk, 0, len(r.edges))
	for _, e := range r.edges {
		startArea := r.nodes[e.Start].AreaID
		endArea := r.nodes[e.End].AreaID
		if !target[startArea] && !target[endArea] {
			continue
		}
		risk := lo.Clamp(math.Max(r.AreaHazard(startArea), r.AreaHazard(endArea)), 0, 1)
		e.Risk = risk
		risks = append(risks, algo.EdgeRisk{
			From: r.graphIdx[e.Start],
			To:   r.graphIdx[e.End],
			Risk: risk,
		})
	}
	if err := r.graph.SetEdgeRisks(risks); err != nil {
		// every entry refers to a loaded edge, so this cannot happen
		log.Errorf("risk generation rejected: %v", err)
	}
}

// UpdateEdgeRisk overrides one edge's risk factor directly, for corridors
// reported blocked or hazardous independently of the sensing pipeline.
// Out-of-range values are clamped to [0, 1].
func (r *Router) UpdateEdgeRisk(id int32, risk float64) error {
	e, ok := r.edges[id]
	if !ok {
		return fmt.Errorf("edge %d: %w", id, algo.ErrEdgeNotFound)
	}
	risk = lo.Clamp(risk, 0, 1)
	if err := r.graph.SetEdgeRisk(r.graphIdx[e.Start], r.graphIdx[e.End], risk); err != nil {
		return err
	}
	e.Risk = risk
	return nil
}
