package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/evacsys/evacroute/fusion"
	"github.com/evacsys/evacroute/router"
)

// Config is the tuning file for the whole pipeline. Every field has a
// working default; an empty config path runs the reference calibration.
type Config struct {
	Risk struct {
		router.RiskParams `yaml:",inline"`
		// risk aversion constant k
		Aversion float64 `yaml:"aversion"`
	} `yaml:"risk"`
	Replan router.ReplannerOptions `yaml:"replan"`
	Gas    fusion.GasParams        `yaml:"gas"`
	Filter fusion.FilterParams     `yaml:"filter"`
	Alert  struct {
		// alert trigger thresholds for the raw guidance outputs
		ECO2ppm          float64 `yaml:"eco2_ppm"`
		ConcentrationPPM float64 `yaml:"concentration_ppm"`
		DurationMS       int     `yaml:"duration_ms"`
	} `yaml:"alert"`
	Limits struct {
		MaxNodes      int `yaml:"max_nodes"`
		MaxEdges      int `yaml:"max_edges"`
		MaxExpansions int `yaml:"max_expansions"`
	} `yaml:"limits"`
	// overrides the map file's EXITS section when non-empty
	ExitAreas []int32 `yaml:"exit_areas"`
}

func DefaultConfig() Config {
	cfg := Config{}
	cfg.Risk.RiskParams = router.DefaultRiskParams()
	cfg.Risk.Aversion = 10
	cfg.Replan = router.DefaultReplannerOptions()
	cfg.Gas = fusion.DefaultGasParams()
	cfg.Filter = fusion.DefaultFilterParams()
	cfg.Alert.ECO2ppm = 1000
	cfg.Alert.ConcentrationPPM = 200
	cfg.Alert.DurationMS = 3000
	return cfg
}

// LoadConfig reads a YAML tuning file over the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) RouterOptions() router.Options {
	return router.Options{
		MaxNodes:      c.Limits.MaxNodes,
		MaxEdges:      c.Limits.MaxEdges,
		RiskAversion:  c.Risk.Aversion,
		MaxExpansions: c.Limits.MaxExpansions,
	}
}
