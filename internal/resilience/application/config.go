package application

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	resilience "microgrid-resilience/internal/resilience/domain"
)

// ScenarioConfig defines one outage-coverage analysis scenario.
type ScenarioConfig struct {
	// TimestepHours is the fixed interval between samples (dt).
	TimestepHours float64 `yaml:"timestep_hours" json:"timestep_hours"`
	// CoverageTargetHours is the outage duration the DER mix must be sized for.
	CoverageTargetHours float64 `yaml:"coverage_target_hours" json:"coverage_target_hours"`
	// MaxOutageDurationHours bounds the post-hoc coverage curve.
	MaxOutageDurationHours float64 `yaml:"max_outage_duration_hours" json:"max_outage_duration_hours"`
	// N2Contingency requires coverage to hold with the largest unit failed.
	N2Contingency bool `yaml:"n2_contingency" json:"n2_contingency"`
	// PVDerate is the fraction of forecast PV output trusted during an
	// outage (nu). 0.8 means 80%-confidence output.
	PVDerate float64 `yaml:"pv_derate" json:"pv_derate"`
	// SOEMargin is the fraction of the per-step reliability check the stored
	// energy must cover before discharge is trusted (gamma).
	SOEMargin float64 `yaml:"soe_margin" json:"soe_margin"`
	// RTESelection picks the round-trip efficiency policy for pooled storage.
	RTESelection string `yaml:"rte_selection" json:"rte_selection"`
	// Workers bounds the coverage worker pool; 0 uses one per CPU.
	Workers int `yaml:"workers" json:"workers"`
	// PostFactoOnly skips the sizing feasibility constraint and only
	// produces the coverage curve and contribution reports.
	PostFactoOnly bool `yaml:"post_facto_only" json:"post_facto_only"`
}

// DefaultScenario returns the scenario defaults applied before any override.
func DefaultScenario() ScenarioConfig {
	return ScenarioConfig{
		TimestepHours:          1,
		CoverageTargetHours:    4,
		MaxOutageDurationHours: 24,
		PVDerate:               0.8,
		SOEMargin:              1,
		RTESelection:           string(resilience.RTESelectionWorst),
	}
}

// LoadScenario builds the default scenario from env overrides and, when
// RESILIENCE_SCENARIO points at a YAML file, merges that file over the env
// values.
func LoadScenario() (ScenarioConfig, error) {
	cfg := DefaultScenario()
	cfg.TimestepHours = getenvFloatDefault("RESILIENCE_TIMESTEP_HOURS", cfg.TimestepHours)
	cfg.CoverageTargetHours = getenvFloatDefault("RESILIENCE_COVERAGE_TARGET_HOURS", cfg.CoverageTargetHours)
	cfg.MaxOutageDurationHours = getenvFloatDefault("RESILIENCE_MAX_OUTAGE_HOURS", cfg.MaxOutageDurationHours)
	cfg.PVDerate = getenvFloatDefault("RESILIENCE_PV_DERATE", cfg.PVDerate)
	cfg.SOEMargin = getenvFloatDefault("RESILIENCE_SOE_MARGIN", cfg.SOEMargin)
	cfg.Workers = getenvIntDefault("RESILIENCE_WORKERS", cfg.Workers)
	if value := os.Getenv("RESILIENCE_RTE_SELECTION"); value != "" {
		cfg.RTESelection = value
	}
	cfg.N2Contingency = getenvBool("RESILIENCE_N2_CONTINGENCY")
	cfg.PostFactoOnly = getenvBool("RESILIENCE_POST_FACTO_ONLY")

	if path := os.Getenv("RESILIENCE_SCENARIO"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks scenario values before any simulation starts.
func (c ScenarioConfig) Validate() error {
	if c.TimestepHours <= 0 {
		return fmt.Errorf("scenario timestep_hours: %w", resilience.ErrNonPositiveTimestep)
	}
	if c.CoverageTargetHours <= 0 || c.MaxOutageDurationHours <= 0 {
		return fmt.Errorf("scenario outage durations: %w", resilience.ErrNonPositiveWindow)
	}
	if c.PVDerate < 0 || c.PVDerate > 1 {
		return fmt.Errorf("scenario pv_derate %v: %w", c.PVDerate, resilience.ErrInvalidFraction)
	}
	if c.SOEMargin < 0 || c.SOEMargin > 1 {
		return fmt.Errorf("scenario soe_margin %v: %w", c.SOEMargin, resilience.ErrInvalidFraction)
	}
	switch resilience.RTESelection(c.RTESelection) {
	case resilience.RTESelectionWorst, resilience.RTESelectionRandom, "":
	default:
		return fmt.Errorf("scenario rte_selection %q: %w", c.RTESelection, resilience.ErrInvalidRTESelection)
	}
	if c.Workers < 0 {
		return errors.New("scenario workers: negative worker count")
	}
	return nil
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string) bool {
	value := os.Getenv(key)
	return value == "1" || value == "true" || value == "yes"
}
