package mesh

import (
	"context"
	"math"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStrategy wraps a strategy and counts Sample calls
type countingStrategy struct {
	Strategy
	calls atomic.Int64
}

func (c *countingStrategy) Sample(rng *rand.Rand, req SampleRequest) (Assignment, bool) {
	c.calls.Add(1)
	return c.Strategy.Sample(rng, req)
}

func engineParams() Parameters {
	return Parameters{
		Colors:          2,
		Loc:             6,
		MinShare:        0,
		MinRadius:       0.5,
		SamplesPerTrial: 32,
		Trials:          4,
		Strategy:        StrategyFull,
	}
}

func TestEngineRun_AllValid(t *testing.T) {
	result, err := NewEngine().Run(context.Background(), "line", line(6, 1), engineParams(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, 1.0, result.Mean)
	assert.Equal(t, 0.0, result.HalfWidth)
	assert.Len(t, result.TrialRates, 4)
	assert.Equal(t, "line", result.Label)
	assert.Equal(t, StrategyFull, result.Strategy)
	assert.Equal(t, 6, result.Locations)
	assert.NotEmpty(t, result.ID)
}

func TestEngineRun_NoneValid(t *testing.T) {
	// six points within distance 5 cannot split two colors 10 apart
	params := engineParams()
	params.MinRadius = 10

	result, err := NewEngine().Run(context.Background(), "line", line(6, 1), params, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Mean)
	assert.Equal(t, 0.0, result.HalfWidth)
}

func TestEngineRun_RadiusBeyondSpan(t *testing.T) {
	// six points span 5, so two colors always leave a same-colored pair within 10
	tests := []struct {
		name     string
		strategy string
		loc      int
		boundary string
	}{
		{"full loc 2", StrategyFull, 2, "strict"},
		{"full loc 6", StrategyFull, 6, "strict"},
		{"full inclusive", StrategyFull, 4, "inclusive"},
		{"subset loc 3", StrategySubset, 3, "strict"},
		{"subset loc 6 inclusive", StrategySubset, 6, "inclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := engineParams()
			params.MinRadius = 10
			params.Strategy = tt.strategy
			params.Loc = tt.loc
			params.Boundary = tt.boundary
			params.SamplesPerTrial = 20

			result, err := NewEngine().Run(context.Background(), "line", line(6, 1), params, rand.New(rand.NewSource(5)))
			require.NoError(t, err)
			assert.Equal(t, 0.0, result.Mean)
			assert.Equal(t, 0.0, result.HalfWidth)
		})
	}
}

func TestEngineRun_SubsetTwoLocationsTwoColors(t *testing.T) {
	// a two-location subset is valid exactly when its colors differ
	params := engineParams()
	params.MinRadius = 10
	params.Strategy = StrategySubset
	params.Loc = 2
	params.SamplesPerTrial = 40
	params.Trials = 3

	result, err := NewEngine().Run(context.Background(), "line", line(6, 1), params, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	assert.Greater(t, result.Mean, 0.0)
	assert.Less(t, result.Mean, 1.0)
}

func TestEngineRun_RatesInRange(t *testing.T) {
	params := engineParams()
	params.Colors = 3
	params.MinRadius = 1.5
	params.MinShare = 0.2
	params.SamplesPerTrial = 200
	params.Trials = 5

	result, err := NewEngine().Run(context.Background(), "mixed", line(6, 1), params, rand.New(rand.NewSource(9)))
	require.NoError(t, err)

	for _, r := range result.TrialRates {
		assert.GreaterOrEqual(t, r, 0.0)
		assert.LessOrEqual(t, r, 1.0)
	}
	assert.GreaterOrEqual(t, result.HalfWidth, 0.0)
	assert.Greater(t, result.Mean, 0.0)
	assert.Less(t, result.Mean, 1.0)
}

func TestEngineRun_TooManyLocationsBeforeSampling(t *testing.T) {
	spy := &countingStrategy{Strategy: SubsetAssignment{}}
	engine := &Engine{Strategy: spy}

	params := engineParams()
	params.Loc = 7

	_, err := engine.Run(context.Background(), "short", line(6, 1), params, rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, ErrTooManyLocations)
	assert.Equal(t, int64(0), spy.calls.Load())
}

func TestEngineRun_WorkersMatchSequential(t *testing.T) {
	params := engineParams()
	params.Colors = 3
	params.MinRadius = 1.5
	params.SamplesPerTrial = 100
	params.Trials = 8

	seq, err := NewEngine().Run(context.Background(), "seq", line(6, 1), params, rand.New(rand.NewSource(77)))
	require.NoError(t, err)

	params.Workers = 4
	par, err := NewEngine().Run(context.Background(), "par", line(6, 1), params, rand.New(rand.NewSource(77)))
	require.NoError(t, err)

	assert.Equal(t, seq.TrialRates, par.TrialRates)
	assert.Equal(t, seq.Mean, par.Mean)
	assert.Equal(t, seq.HalfWidth, par.HalfWidth)
}

func TestEngineRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine().Run(ctx, "c", line(6, 1), engineParams(), rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineRun_IterationCapSurfaces(t *testing.T) {
	params := engineParams()
	params.Loc = 1
	params.Colors = 2
	params.SamplesPerTrial = 3
	params.MaxIterations = 50

	_, err := NewEngine().Run(context.Background(), "tiny", line(1, 1), params, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrIterationCap)
}

func TestValidateParameters(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Parameters)
		want   error
	}{
		{"loc too large", func(p *Parameters) { p.Loc = 10 }, ErrTooManyLocations},
		{"loc zero", func(p *Parameters) { p.Loc = 0 }, ErrInvalidConfig},
		{"no colors", func(p *Parameters) { p.Colors = 0 }, ErrInvalidConfig},
		{"no samples", func(p *Parameters) { p.SamplesPerTrial = 0 }, ErrInvalidConfig},
		{"no trials", func(p *Parameters) { p.Trials = 0 }, ErrInvalidConfig},
		{"negative radius", func(p *Parameters) { p.MinRadius = -1 }, ErrInvalidConfig},
		{"NaN radius", func(p *Parameters) { p.MinRadius = math.NaN() }, ErrInvalidConfig},
		{"infinite radius", func(p *Parameters) { p.MinRadius = math.Inf(1) }, ErrInvalidConfig},
		{"NaN share", func(p *Parameters) { p.MinShare = math.NaN() }, ErrInvalidConfig},
		{"infinite share", func(p *Parameters) { p.MinShare = math.Inf(-1) }, ErrInvalidConfig},
		{"NaN confidence", func(p *Parameters) { p.ConfidenceLevel = math.NaN() }, ErrInvalidConfig},
		{"negative cap", func(p *Parameters) { p.MaxIterations = -1 }, ErrInvalidConfig},
		{"confidence one", func(p *Parameters) { p.ConfidenceLevel = 1 }, ErrInvalidConfig},
		{"bad boundary", func(p *Parameters) { p.Boundary = "fuzzy" }, ErrInvalidConfig},
		{"ok", func(p *Parameters) {}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := engineParams()
			tt.mutate(&params)
			err := ValidateParameters(params, 6)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEngineEstimate_Grid(t *testing.T) {
	params := DefaultParameters()
	params.SamplesPerTrial = 50
	params.Trials = 2

	result, err := NewEngine().Estimate(context.Background(), &Experiment{Name: "Grid", Preset: PresetGrid}, params, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Equal(t, "Grid", result.Label)
	assert.Equal(t, 36, result.Locations)
}
