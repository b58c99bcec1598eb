package mesh

import (
	"fmt"
	"math/rand"
	"sort"
)

// Strategy names accepted in configuration
const (
	StrategyFull   = "full"
	StrategySubset = "subset"
	StrategyGreedy = "greedy"
)

// SampleRequest carries everything a strategy needs to draw one assignment
type SampleRequest struct {
	Locations []Point
	Colors    int
	Loc       int

	// MinRadius and Boundary are only consulted by strategies that build
	// separation-valid assignments directly.
	MinRadius float64
	Boundary  Boundary
}

// Strategy draws a single random assignment. ok is false when the attempt
// was abandoned and should be retried.
type Strategy interface {
	Name() string
	Sample(rng *rand.Rand, req SampleRequest) (a Assignment, ok bool)
}

// FullAssignment colors every location in the layout independently and uniformly
type FullAssignment struct{}

func (FullAssignment) Name() string { return StrategyFull }

func (FullAssignment) Sample(rng *rand.Rand, req SampleRequest) (Assignment, bool) {
	a := make(Assignment, len(req.Locations))
	for i := range req.Locations {
		a[i] = Placement{Location: i, Color: Color(rng.Intn(req.Colors))}
	}
	return a, true
}

// SubsetAssignment picks Loc distinct locations and colors each uniformly
type SubsetAssignment struct{}

func (SubsetAssignment) Name() string { return StrategySubset }

func (SubsetAssignment) Sample(rng *rand.Rand, req SampleRequest) (Assignment, bool) {
	perm := rng.Perm(len(req.Locations))[:req.Loc]
	a := make(Assignment, req.Loc)
	for i, loc := range perm {
		a[i] = Placement{Location: loc, Color: Color(rng.Intn(req.Colors))}
	}
	sort.Slice(a, func(i, j int) bool { return a[i].Location < a[j].Location })
	return a, true
}

// GreedyAssignment walks the layout in order and gives each location a random
// color that keeps it clear of every already-placed location of the same
// color. When no color fits, the attempt is abandoned.
type GreedyAssignment struct{}

func (GreedyAssignment) Name() string { return StrategyGreedy }

func (GreedyAssignment) Sample(rng *rand.Rand, req SampleRequest) (Assignment, bool) {
	a := make(Assignment, 0, len(req.Locations))
	candidates := make([]Color, 0, req.Colors)

	for i, pt := range req.Locations {
		candidates = candidates[:0]
		for c := 0; c < req.Colors; c++ {
			candidates = append(candidates, Color(c))
		}

		placed := false
		for len(candidates) > 0 {
			k := rng.Intn(len(candidates))
			color := candidates[k]
			if fits(a, req, pt, color) {
				a = append(a, Placement{Location: i, Color: color})
				placed = true
				break
			}
			candidates[k] = candidates[len(candidates)-1]
			candidates = candidates[:len(candidates)-1]
		}
		if !placed {
			return nil, false
		}
	}
	return a, true
}

func fits(a Assignment, req SampleRequest, pt Point, color Color) bool {
	for _, p := range a {
		if p.Color == color && req.Boundary.tooClose(Distance(pt, req.Locations[p.Location]), req.MinRadius) {
			return false
		}
	}
	return true
}

// StrategyByName resolves a configured strategy name. Empty means full.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case "", StrategyFull:
		return FullAssignment{}, nil
	case StrategySubset:
		return SubsetAssignment{}, nil
	case StrategyGreedy:
		return GreedyAssignment{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Generator collects distinct assignments by rejection sampling
type Generator struct {
	Strategy Strategy

	// MaxIterations caps the number of sampling attempts. Zero means no cap:
	// asking for more distinct assignments than exist then never returns.
	MaxIterations int
}

// NewGenerator creates a generator with no iteration cap
func NewGenerator(s Strategy) *Generator {
	return &Generator{Strategy: s}
}

// Generate returns exactly target structurally distinct assignments in the
// order they were first drawn.
func (g *Generator) Generate(rng *rand.Rand, target int, req SampleRequest) ([]Assignment, error) {
	if target < 0 {
		return nil, fmt.Errorf("%w: target count must be >= 0, got %d", ErrInvalidConfig, target)
	}
	if req.Colors < 1 {
		return nil, fmt.Errorf("%w: need at least one color", ErrInvalidConfig)
	}
	if req.Loc > len(req.Locations) {
		return nil, fmt.Errorf("%w: loc=%d, points=%d", ErrTooManyLocations, req.Loc, len(req.Locations))
	}

	seen := make(map[string]struct{}, target)
	result := make([]Assignment, 0, target)

	for iter := 0; len(result) < target; iter++ {
		if g.MaxIterations > 0 && iter >= g.MaxIterations {
			return result, fmt.Errorf("%w: %d of %d after %d attempts", ErrIterationCap, len(result), target, iter)
		}

		a, ok := g.Strategy.Sample(rng, req)
		if !ok {
			continue
		}
		key := a.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, a)
	}
	return result, nil
}
