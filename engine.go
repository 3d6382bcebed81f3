package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/evacsys/evacroute/fusion"
	"github.com/evacsys/evacroute/recorder"
	"github.com/evacsys/evacroute/router"
)

// Alert is the trigger+duration signal handed to the alert collaborators
// when gas readings exceed their thresholds.
type Alert struct {
	Raised   bool          `json:"raised"`
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"duration_ns,omitempty"`
	At       time.Time     `json:"at,omitempty"`
}

// Snapshot is the guidance output of one tick, published to the feed server
// and the event recorder.
type Snapshot struct {
	At        time.Time                   `json:"at"`
	Area      int32                       `json:"area"`
	Env       fusion.EnvironmentalReading `json:"environment"`
	Motion    fusion.MotionReading        `json:"motion"`
	Hazard    float64                     `json:"hazard"`
	Path      *router.Path                `json:"path,omitempty"`
	Direction string                      `json:"direction,omitempty"`
	State     string                      `json:"state"`
	Alert     Alert                       `json:"alert"`
	// recoverable planning failure of this tick, if any
	PlanError string `json:"plan_error,omitempty"`
}

// Engine drives the synchronous per-tick pipeline:
// fusion -> risk update -> replanning -> direction translation.
type Engine struct {
	cfg       Config
	router    *router.Router
	fuser     *fusion.Fuser
	replanner *router.Replanner
	rec       *recorder.Recorder // optional

	mu   sync.RWMutex
	snap Snapshot
}

func NewEngine(cfg Config, r *router.Router, rec *recorder.Recorder) *Engine {
	return &Engine{
		cfg:       cfg,
		router:    r,
		fuser:     fusion.NewFuser(cfg.Gas, cfg.Filter),
		replanner: router.NewReplanner(r, cfg.Replan),
		rec:       rec,
	}
}

// Step runs one pipeline tick over a raw sample and returns the published
// snapshot. It must be called from a single goroutine.
func (e *Engine) Step(sample Sample) Snapshot {
	env := e.fuser.FuseEnvironmental(sample.Env)
	motion := e.fuser.FuseMotion(sample.Motion)

	e.router.ApplyReading(env, e.cfg.Risk.RiskParams)

	snap := Snapshot{
		At:     time.Now(),
		Area:   sample.Area,
		Env:    env,
		Motion: motion,
		Hazard: e.router.AreaHazard(sample.Area),
	}

	path, changed, err := e.replanner.Tick(sample.Area)
	snap.Path = path
	snap.State = e.replanner.State().String()
	if err != nil {
		// no safe route right now; keep ticking and retry
		snap.PlanError = err.Error()
		if errors.Is(err, router.ErrPathNotFound) {
			log.Warnf("no safe route from area %d: %v", sample.Area, err)
		} else {
			log.Errorf("replanning failed: %v", err)
		}
		e.recordEvent("no_route", err.Error())
	}
	if changed {
		e.recordEvent("replan", fmt.Sprintf("area %d: %d nodes, distance %.2f",
			sample.Area, len(path.Nodes), path.TotalDistance))
	}
	if path != nil {
		if dir, err := router.DirectionFromPath(path); err == nil {
			snap.Direction = dir.String()
		} else {
			// single-node path: already at the exit
			log.Debugf("no direction: %v", err)
		}
	}

	snap.Alert = e.checkAlert(env)

	e.mu.Lock()
	e.snap = snap
	e.mu.Unlock()

	if e.rec != nil {
		if err := e.rec.Tick(recorder.TickRecord{
			At:            snap.At,
			Area:          snap.Area,
			TVOCppb:       env.TVOCppb,
			ECO2ppm:       env.ECO2ppm,
			Concentration: env.Concentration,
			Pitch:         motion.Pitch,
			Hazard:        snap.Hazard,
			Direction:     snap.Direction,
		}); err != nil {
			log.Errorf("event log tick failed: %v", err)
		}
	}
	return snap
}

func (e *Engine) checkAlert(env fusion.EnvironmentalReading) Alert {
	var reason string
	switch {
	case e.cfg.Alert.ConcentrationPPM > 0 && env.Concentration > e.cfg.Alert.ConcentrationPPM:
		reason = fmt.Sprintf("gas concentration %.1f ppm above %.1f",
			env.Concentration, e.cfg.Alert.ConcentrationPPM)
	case e.cfg.Alert.ECO2ppm > 0 && float64(env.ECO2ppm) > e.cfg.Alert.ECO2ppm:
		reason = fmt.Sprintf("eCO2 %d ppm above %.0f", env.ECO2ppm, e.cfg.Alert.ECO2ppm)
	default:
		return Alert{}
	}
	a := Alert{
		Raised:   true,
		Reason:   reason,
		Duration: time.Duration(e.cfg.Alert.DurationMS) * time.Millisecond,
		At:       time.Now(),
	}
	log.Warnf("alert: %s", reason)
	e.recordEvent("alert", reason)
	return a
}

func (e *Engine) recordEvent(kind, detail string) {
	if e.rec == nil {
		return
	}
	if err := e.rec.Event(kind, detail); err != nil {
		log.Errorf("event log %s failed: %v", kind, err)
	}
}

// Snapshot returns the last published tick output.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

// Run ticks the pipeline at the given interval until the source drains or
// the context is canceled.
func (e *Engine) Run(ctx context.Context, src SampleSource, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			sample, err := src.Next()
			if errors.Is(err, io.EOF) {
				log.Info("sample source drained")
				return nil
			}
			if err != nil {
				return fmt.Errorf("read sample: %w", err)
			}
			e.Step(sample)
		}
	}
}
