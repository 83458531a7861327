package application

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"time"

	"microgrid-resilience/internal/observability/metrics"
	resilience "microgrid-resilience/internal/resilience/domain"
)

var (
	// ErrAnalysisNotFound is returned when no stored analysis matches the id.
	ErrAnalysisNotFound = errors.New("application: analysis not found")
	// ErrNilRepository guards service construction.
	ErrNilRepository = errors.New("application: nil repository")
)

// Clock provides time for the service.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

// Now returns current time.
func (SystemClock) Now() time.Time { return time.Now() }

// IDFactory mints analysis identifiers.
type IDFactory interface {
	NewID() string
}

// AnalysisInput is everything one analysis consumes: the scenario, the
// critical load, the dispatch result series aligned to it, and the resolved
// DER capability snapshot. All series share the scenario timestep.
type AnalysisInput struct {
	Scenario         ScenarioConfig                 `json:"scenario"`
	CriticalLoadKW   resilience.Series              `json:"critical_load_kw"`
	PVMaxKW          resilience.Series              `json:"pv_max_kw"`
	SOETrajectoryKWh resilience.Series              `json:"soe_trajectory_kwh"`
	ESSUnits         []resilience.ESSUnitSpec       `json:"ess_units"`
	GeneratorUnits   []resilience.GeneratorUnitSpec `json:"generator_units"`
}

// AnalysisResult is the full outcome of one analysis run.
type AnalysisResult struct {
	ID               string                           `json:"id"`
	CreatedAt        time.Time                        `json:"created_at"`
	Scenario         ScenarioConfig                   `json:"scenario"`
	RequirementKWh   resilience.Series                `json:"requirement_kwh"`
	SizingConstraint *resilience.Inequality           `json:"sizing_constraint,omitempty"`
	Curve            resilience.LoadCoverageCurve     `json:"curve"`
	Histogram        resilience.CoverageHistogram     `json:"histogram"`
	Contributions    resilience.ContributionBreakdown `json:"contributions"`
}

// AnalysisSummary is the listing projection of a stored analysis.
type AnalysisSummary struct {
	ID                  string    `json:"id"`
	CreatedAt           time.Time `json:"created_at"`
	CoverageTargetHours float64   `json:"coverage_target_hours"`
	SimulatedStarts     int       `json:"simulated_starts"`
}

// AnalysisRepository persists analysis results.
type AnalysisRepository interface {
	Save(ctx context.Context, result *AnalysisResult) error
	Get(ctx context.Context, id string) (*AnalysisResult, error)
	List(ctx context.Context) ([]AnalysisSummary, error)
}

// Service runs resilience analyses and persists their results.
type Service struct {
	repo      AnalysisRepository
	logger    *log.Logger
	clock     Clock
	idFactory IDFactory
	rng       *rand.Rand
}

// Option configures the service.
type Option func(*Service)

// WithClock overrides the clock.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDFactory overrides the id factory.
func WithIDFactory(factory IDFactory) Option {
	return func(s *Service) {
		if factory != nil {
			s.idFactory = factory
		}
	}
}

// WithRand supplies the random source used by the random rte policy.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// NewService constructs the analysis service.
func NewService(repo AnalysisRepository, logger *log.Logger, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, ErrNilRepository
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Service{
		repo:      repo,
		logger:    logger,
		clock:     SystemClock{},
		idFactory: randomIDFactory{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run executes one analysis end to end: requirement, sizing constraint
// (unless post-facto only), exhaustive coverage simulation, contribution
// attribution. The result is persisted and returned.
func (s *Service) Run(ctx context.Context, input AnalysisInput) (*AnalysisResult, error) {
	started := s.clock.Now()
	result, err := s.run(ctx, input)
	elapsed := time.Since(started)
	if err != nil {
		metrics.ObserveAnalysis(metrics.ResultError, elapsed)
		return nil, err
	}
	metrics.ObserveAnalysis(metrics.ResultSuccess, elapsed)
	metrics.AddSimulatedStarts(len(input.CriticalLoadKW))
	s.logger.Printf("analysis complete: id=%s starts=%d curve_points=%d elapsed=%s",
		result.ID, len(input.CriticalLoadKW), len(result.Curve), elapsed)
	return result, nil
}

func (s *Service) run(ctx context.Context, input AnalysisInput) (*AnalysisResult, error) {
	cfg := input.Scenario
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateSeries(input); err != nil {
		return nil, err
	}

	dt := cfg.TimestepHours
	coverageSteps := resilience.CoverageTimesteps(cfg.CoverageTargetHours, dt)
	requirement, err := resilience.RollingRequirement(input.CriticalLoadKW, coverageSteps, dt)
	if err != nil {
		return nil, err
	}

	ess, err := resilience.AggregateESS(input.ESSUnits)
	if err != nil {
		return nil, err
	}
	generationRating, err := resilience.ResolveGeneration(input.GeneratorUnits, cfg.N2Contingency)
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		ID:             s.idFactory.NewID(),
		CreatedAt:      s.clock.Now(),
		Scenario:       cfg,
		RequirementKWh: requirement,
	}

	if !cfg.PostFactoOnly {
		var essDischarge float64
		if ess != nil {
			essDischarge = ess.DischargeMaxKW
		}
		constraint, err := resilience.BuildSizingConstraint(
			input.CriticalLoadKW,
			input.PVMaxKW,
			essDischarge+generationRating,
			cfg.N2Contingency,
			resilience.LargestGeneratorRating(input.GeneratorUnits),
			len(input.GeneratorUnits),
		)
		if err != nil {
			return nil, err
		}
		result.SizingConstraint = &constraint
	}

	sim, err := resilience.NewSimulator(ess, dt, cfg.SOEMargin, resilience.RTESelection(cfg.RTESelection), s.rng)
	if err != nil {
		return nil, err
	}
	builder, err := resilience.NewCurveBuilder(sim, dt, cfg.MaxOutageDurationHours, cfg.Workers)
	if err != nil {
		return nil, err
	}

	check, demand := resilience.NetOutageDemand(input.CriticalLoadKW, input.PVMaxKW, generationRating, cfg.PVDerate)
	curveStart := s.clock.Now()
	curve, histogram, err := builder.Build(ctx, check, demand, input.SOETrajectoryKWh)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("load coverage curve: starts=%d max_outage=%vh elapsed=%s",
		len(input.CriticalLoadKW), cfg.MaxOutageDurationHours, time.Since(curveStart))
	result.Curve = curve
	result.Histogram = histogram

	breakdown, err := resilience.AttributeContributions(
		requirement,
		input.PVMaxKW,
		input.SOETrajectoryKWh,
		len(input.GeneratorUnits) > 0,
		coverageSteps,
		dt,
	)
	if err != nil {
		return nil, err
	}
	result.Contributions = breakdown

	if err := s.repo.Save(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Get loads a stored analysis.
func (s *Service) Get(ctx context.Context, id string) (*AnalysisResult, error) {
	return s.repo.Get(ctx, id)
}

// List returns summaries of stored analyses, newest first.
func (s *Service) List(ctx context.Context) ([]AnalysisSummary, error) {
	return s.repo.List(ctx)
}

func validateSeries(input AnalysisInput) error {
	n := len(input.CriticalLoadKW)
	if n == 0 {
		return resilience.ErrEmptyCriticalLoad
	}
	if input.CriticalLoadKW.HasNaN() || input.PVMaxKW.HasNaN() || input.SOETrajectoryKWh.HasNaN() {
		return resilience.ErrNaNInSeries
	}
	if len(input.PVMaxKW) > 0 && len(input.PVMaxKW) != n {
		return resilience.ErrSeriesLengthMismatch
	}
	if len(input.SOETrajectoryKWh) > 0 && len(input.SOETrajectoryKWh) != n {
		return resilience.ErrSeriesLengthMismatch
	}
	if len(input.ESSUnits) > 0 && len(input.SOETrajectoryKWh) == 0 {
		return resilience.ErrMissingSOETrajectory
	}
	return nil
}
