package mesh

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Engine runs independent Monte-Carlo trials over a fixed layout
type Engine struct {
	// Strategy overrides Parameters.Strategy when set
	Strategy Strategy
	Verbose  bool
}

// NewEngine creates an engine that resolves its strategy from parameters
func NewEngine() *Engine {
	return &Engine{}
}

// ValidateParameters checks a parameter record against a layout before any
// sampling takes place.
func ValidateParameters(params Parameters, numLocations int) error {
	if params.Loc > numLocations {
		return fmt.Errorf("%w: loc=%d, points=%d", ErrTooManyLocations, params.Loc, numLocations)
	}
	if params.Loc < 1 {
		return fmt.Errorf("%w: loc must be >= 1, got %d", ErrInvalidConfig, params.Loc)
	}
	if params.Colors < 1 {
		return fmt.Errorf("%w: colors must be >= 1, got %d", ErrInvalidConfig, params.Colors)
	}
	if params.SamplesPerTrial < 1 {
		return fmt.Errorf("%w: samplesPerTrial must be >= 1, got %d", ErrInvalidConfig, params.SamplesPerTrial)
	}
	if params.Trials < 1 {
		return fmt.Errorf("%w: trials must be >= 1, got %d", ErrInvalidConfig, params.Trials)
	}
	if params.MinRadius < 0 || math.IsNaN(params.MinRadius) || math.IsInf(params.MinRadius, 0) {
		return fmt.Errorf("%w: minRadius must be finite and >= 0, got %v", ErrInvalidConfig, params.MinRadius)
	}
	if math.IsNaN(params.MinShare) || math.IsInf(params.MinShare, 0) {
		return fmt.Errorf("%w: minShare must be finite, got %v", ErrInvalidConfig, params.MinShare)
	}
	if params.MaxIterations < 0 {
		return fmt.Errorf("%w: maxIterations must be >= 0, got %d", ErrInvalidConfig, params.MaxIterations)
	}
	if !(params.ConfidenceLevel >= 0 && params.ConfidenceLevel < 1) {
		return fmt.Errorf("%w: confidenceLevel must be in [0, 1), got %v", ErrInvalidConfig, params.ConfidenceLevel)
	}
	if _, err := ParseBoundary(params.Boundary); err != nil {
		return err
	}
	return nil
}

// Run executes params.Trials trials and aggregates their validity rates.
// Each trial gets its own seed drawn up front from rng, so the result does not
// depend on params.Workers.
func (e *Engine) Run(ctx context.Context, label string, locations []Point, params Parameters, rng *rand.Rand) (*RunResult, error) {
	if err := ValidateParameters(params, len(locations)); err != nil {
		return nil, err
	}

	strategy := e.Strategy
	if strategy == nil {
		s, err := StrategyByName(params.Strategy)
		if err != nil {
			return nil, err
		}
		strategy = s
	}

	validator, err := NewValidator(locations, params)
	if err != nil {
		return nil, err
	}

	req := SampleRequest{
		Locations: locations,
		Colors:    params.Colors,
		Loc:       params.Loc,
		MinRadius: params.MinRadius,
		Boundary:  validator.Boundary,
	}

	seeds := make([]int64, params.Trials)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	started := time.Now()
	rates := make([]float64, params.Trials)

	runTrial := func(i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		gen := &Generator{Strategy: strategy, MaxIterations: params.MaxIterations}
		rate, err := trialRate(gen, validator, rand.New(rand.NewSource(seeds[i])), params.SamplesPerTrial, req)
		if err != nil {
			return fmt.Errorf("trial %d: %w", i+1, err)
		}
		rates[i] = rate
		if e.Verbose {
			log.Printf("[%s] trial %d/%d: %.4f valid", label, i+1, params.Trials, rate)
		}
		return nil
	}

	if params.Workers > 1 {
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(params.Workers)
		ctx = gCtx
		for i := range rates {
			g.Go(func() error { return runTrial(i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range rates {
			if err := runTrial(i); err != nil {
				return nil, err
			}
		}
	}

	mean, half, err := Summarize(rates, ZScore(params.ConfidenceLevel))
	if err != nil {
		return nil, err
	}

	return &RunResult{
		ID:              uuid.NewString(),
		Label:           label,
		Mean:            mean,
		HalfWidth:       half,
		TrialRates:      rates,
		Trials:          params.Trials,
		SamplesPerTrial: params.SamplesPerTrial,
		Locations:       len(locations),
		Strategy:        strategy.Name(),
		Started:         started,
		Elapsed:         time.Since(started),
	}, nil
}

// trialRate samples one batch of distinct assignments and returns the
// fraction that pass validation.
func trialRate(gen *Generator, v *Validator, rng *rand.Rand, samples int, req SampleRequest) (float64, error) {
	batch, err := gen.Generate(rng, samples, req)
	if err != nil {
		return 0, err
	}
	valid := 0
	for _, a := range batch {
		if v.IsValid(a) {
			valid++
		}
	}
	return float64(valid) / float64(samples), nil
}

// Estimate builds the experiment's layout and runs the engine on it
func (e *Engine) Estimate(ctx context.Context, exp *Experiment, params Parameters, rng *rand.Rand) (*RunResult, error) {
	locations, err := BuildLayout(exp, params)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, exp.Name, locations, params, rng)
}

// NewRand returns a seeded random source; seed 0 picks a time-based seed
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
