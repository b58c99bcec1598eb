package mesh

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Point represents a 2D location coordinate
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// UnmarshalYAML accepts either a two-element sequence ([x, y]) or a mapping
// with x and y keys.
func (p *Point) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var xy []float64
		if err := value.Decode(&xy); err != nil {
			return err
		}
		if len(xy) != 2 {
			return fmt.Errorf("line %d: point needs 2 coordinates, got %d", value.Line, len(xy))
		}
		p.X, p.Y = xy[0], xy[1]
		return nil
	}

	type plain Point
	var raw plain
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*p = Point(raw)
	return nil
}

// Segment is a straight line between two endpoints
type Segment struct {
	A Point `json:"a"`
	B Point `json:"b"`
}

// UnmarshalYAML decodes a segment from a two-point sequence: [[x1, y1], [x2, y2]].
func (s *Segment) UnmarshalYAML(value *yaml.Node) error {
	var pts []Point
	if err := value.Decode(&pts); err != nil {
		return err
	}
	if len(pts) != 2 {
		return fmt.Errorf("line %d: segment needs 2 endpoints, got %d", value.Line, len(pts))
	}
	s.A, s.B = pts[0], pts[1]
	return nil
}

// MarshalYAML writes the segment in the same [[x1, y1], [x2, y2]] form it is read from
func (s Segment) MarshalYAML() (interface{}, error) {
	return [][2]float64{{s.A.X, s.A.Y}, {s.B.X, s.B.Y}}, nil
}

// Color is a zero-based label index in [0, N)
type Color int

// String renders the one-based label used in reports ("Color 1", "Color 2", ...)
func (c Color) String() string {
	return "Color " + strconv.Itoa(int(c)+1)
}

// Placement pairs a location index with its assigned color
type Placement struct {
	Location int   `json:"location"`
	Color    Color `json:"color"`
}

// Assignment is one color-to-location combination, sorted by location index
type Assignment []Placement

// Key returns the canonical structural form of the assignment. Two
// assignments share a key only if every (location, color) pair matches.
func (a Assignment) Key() string {
	var b strings.Builder
	b.Grow(len(a) * 6)
	for _, p := range a {
		b.WriteString(strconv.Itoa(p.Location))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(p.Color)))
		b.WriteByte(';')
	}
	return b.String()
}

// ColorAt returns the color placed on a location, if the assignment covers it
func (a Assignment) ColorAt(location int) (Color, bool) {
	for _, p := range a {
		if p.Location == location {
			return p.Color, true
		}
	}
	return 0, false
}

// Parameters is the explicit configuration record for one estimation run
type Parameters struct {
	Colors          int     `yaml:"colors" json:"colors"`                   // Number of distinct colors N
	Loc             int     `yaml:"loc" json:"loc"`                         // Locations per assignment
	MinShare        float64 `yaml:"minShare" json:"minShare"`               // Minimum share of each used color
	MinRadius       float64 `yaml:"minRadius" json:"minRadius"`             // Minimum same-color separation
	Divisions       int     `yaml:"divisions" json:"divisions"`             // Interior points per segment
	EdgeLength      float64 `yaml:"edgeLength" json:"edgeLength"`           // Target segment length
	SamplesPerTrial int     `yaml:"samplesPerTrial" json:"samplesPerTrial"` // Distinct assignments per trial
	Trials          int     `yaml:"trials" json:"trials"`
	Strategy        string  `yaml:"strategy,omitempty" json:"strategy,omitempty"` // "full" (default), "subset", "greedy"
	Boundary        string  `yaml:"boundary,omitempty" json:"boundary,omitempty"` // "strict" (default) or "inclusive"
	Seed            int64   `yaml:"seed,omitempty" json:"seed,omitempty"`         // 0 picks a time-based seed
	Workers         int     `yaml:"workers,omitempty" json:"workers,omitempty"`   // Parallel trials; <= 1 runs sequentially
	MaxIterations   int     `yaml:"maxIterations,omitempty" json:"maxIterations,omitempty"`
	ConfidenceLevel float64 `yaml:"confidenceLevel,omitempty" json:"confidenceLevel,omitempty"` // Default 0.95
}

// DefaultParameters returns the hexagon/rectangle study parameters
func DefaultParameters() Parameters {
	return Parameters{
		Colors:          3,
		Loc:             36,
		MinShare:        0.25,
		MinRadius:       2,
		Divisions:       3,
		EdgeLength:      33,
		SamplesPerTrial: 100000,
		Trials:          10,
		Strategy:        StrategyFull,
		Boundary:        "strict",
	}
}

// ParameterOverrides holds per-experiment overrides; nil fields inherit defaults
type ParameterOverrides struct {
	Colors          *int     `yaml:"colors,omitempty" json:"colors,omitempty"`
	Loc             *int     `yaml:"loc,omitempty" json:"loc,omitempty"`
	MinShare        *float64 `yaml:"minShare,omitempty" json:"minShare,omitempty"`
	MinRadius       *float64 `yaml:"minRadius,omitempty" json:"minRadius,omitempty"`
	Divisions       *int     `yaml:"divisions,omitempty" json:"divisions,omitempty"`
	EdgeLength      *float64 `yaml:"edgeLength,omitempty" json:"edgeLength,omitempty"`
	SamplesPerTrial *int     `yaml:"samplesPerTrial,omitempty" json:"samplesPerTrial,omitempty"`
	Trials          *int     `yaml:"trials,omitempty" json:"trials,omitempty"`
	Strategy        *string  `yaml:"strategy,omitempty" json:"strategy,omitempty"`
	Boundary        *string  `yaml:"boundary,omitempty" json:"boundary,omitempty"`
	Seed            *int64   `yaml:"seed,omitempty" json:"seed,omitempty"`
	Workers         *int     `yaml:"workers,omitempty" json:"workers,omitempty"`
	MaxIterations   *int     `yaml:"maxIterations,omitempty" json:"maxIterations,omitempty"`
	ConfidenceLevel *float64 `yaml:"confidenceLevel,omitempty" json:"confidenceLevel,omitempty"`
}

// Apply returns base with every non-nil override applied
func (o *ParameterOverrides) Apply(base Parameters) Parameters {
	if o == nil {
		return base
	}
	if o.Colors != nil {
		base.Colors = *o.Colors
	}
	if o.Loc != nil {
		base.Loc = *o.Loc
	}
	if o.MinShare != nil {
		base.MinShare = *o.MinShare
	}
	if o.MinRadius != nil {
		base.MinRadius = *o.MinRadius
	}
	if o.Divisions != nil {
		base.Divisions = *o.Divisions
	}
	if o.EdgeLength != nil {
		base.EdgeLength = *o.EdgeLength
	}
	if o.SamplesPerTrial != nil {
		base.SamplesPerTrial = *o.SamplesPerTrial
	}
	if o.Trials != nil {
		base.Trials = *o.Trials
	}
	if o.Strategy != nil {
		base.Strategy = *o.Strategy
	}
	if o.Boundary != nil {
		base.Boundary = *o.Boundary
	}
	if o.Seed != nil {
		base.Seed = *o.Seed
	}
	if o.Workers != nil {
		base.Workers = *o.Workers
	}
	if o.MaxIterations != nil {
		base.MaxIterations = *o.MaxIterations
	}
	if o.ConfidenceLevel != nil {
		base.ConfidenceLevel = *o.ConfidenceLevel
	}
	return base
}

// Experiment is one named layout plus parameter overrides from the config file
type Experiment struct {
	Name      string              `yaml:"name" json:"name"`
	Preset    string              `yaml:"preset,omitempty" json:"preset,omitempty"` // "hexagon", "rectangle", "grid"
	Segments  []Segment           `yaml:"segments,omitempty" json:"segments,omitempty"`
	Points    []Point             `yaml:"points,omitempty" json:"points,omitempty"`
	Overrides *ParameterOverrides `yaml:"overrides,omitempty" json:"overrides,omitempty"`
}

// Config represents the full configuration file
type Config struct {
	MQTT        MQTTConfig   `yaml:"mqtt" json:"mqtt"`
	Defaults    Parameters   `yaml:"defaults" json:"defaults"`
	Experiments []Experiment `yaml:"experiments" json:"experiments"`
	Palette     []string     `yaml:"palette,omitempty" json:"palette,omitempty"` // Hex colors used by renderers
}

// MQTTConfig holds MQTT connection settings
type MQTTConfig struct {
	Broker        string `yaml:"broker" json:"broker"`
	PublishPrefix string `yaml:"publishPrefix" json:"publishPrefix"`
	ClientID      string `yaml:"clientId" json:"clientId"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// GetExperiment returns the experiment with the given name
func (c *Config) GetExperiment(name string) *Experiment {
	for i := range c.Experiments {
		if c.Experiments[i].Name == name {
			return &c.Experiments[i]
		}
	}
	return nil
}

// ParametersFor returns the effective parameters for an experiment
func (c *Config) ParametersFor(e *Experiment) Parameters {
	return e.Overrides.Apply(c.Defaults)
}

// RunResult is the aggregated outcome of all trials for one layout
type RunResult struct {
	ID              string        `json:"id"`
	Label           string        `json:"label"`
	Mean            float64       `json:"mean"`
	HalfWidth       float64       `json:"halfWidth"`
	TrialRates      []float64     `json:"trialRates"`
	Trials          int           `json:"trials"`
	SamplesPerTrial int           `json:"samplesPerTrial"`
	Locations       int           `json:"locations"`
	Strategy        string        `json:"strategy"`
	Started         time.Time     `json:"started"`
	Elapsed         time.Duration `json:"elapsed"`
}
