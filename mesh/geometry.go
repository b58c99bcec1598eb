package mesh

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

func orbPoint(p Point) orb.Point {
	return orb.Point{p.X, p.Y}
}

// Distance returns the Euclidean distance between two points
func Distance(a, b Point) float64 {
	return planar.Distance(orbPoint(a), orbPoint(b))
}

// SegmentLength returns the Euclidean length of a segment
func SegmentLength(s Segment) float64 {
	return planar.Length(orb.LineString{orbPoint(s.A), orbPoint(s.B)})
}

// ScaleSegments rescales every segment to targetLength. Both endpoints are
// multiplied by targetLength/length, so the scaling is about the origin and
// not the segment midpoint.
func ScaleSegments(segments []Segment, targetLength float64) ([]Segment, error) {
	if targetLength <= 0 || math.IsNaN(targetLength) || math.IsInf(targetLength, 0) {
		return nil, fmt.Errorf("%w: edge length must be positive, got %v", ErrInvalidConfig, targetLength)
	}

	scaled := make([]Segment, len(segments))
	for i, s := range segments {
		length := SegmentLength(s)
		if length == 0 || math.IsNaN(length) || math.IsInf(length, 0) {
			return nil, fmt.Errorf("segment %d (%v -> %v): %w", i, s.A, s.B, ErrDegenerateSegment)
		}
		factor := targetLength / length
		scaled[i] = Scale(factor, factor).ApplySegment(s)
	}
	return scaled, nil
}

// Subdivide inserts divisions evenly spaced points strictly between the
// endpoints of each segment. Points are emitted segment by segment in input
// order; that order is the location index used by assignments.
func Subdivide(segments []Segment, divisions int) []Point {
	if divisions <= 0 {
		return nil
	}

	points := make([]Point, 0, len(segments)*divisions)
	steps := float64(divisions + 1)
	for _, s := range segments {
		dx := (s.B.X - s.A.X) / steps
		dy := (s.B.Y - s.A.Y) / steps
		for i := 1; i <= divisions; i++ {
			points = append(points, Point{
				X: s.A.X + float64(i)*dx,
				Y: s.A.Y + float64(i)*dy,
			})
		}
	}
	return points
}

// BuildLayout produces the ordered location set for an experiment. Explicit
// points bypass segment scaling and subdivision.
func BuildLayout(e *Experiment, params Parameters) ([]Point, error) {
	explicit := e.Points
	if len(explicit) == 0 && e.Preset == PresetGrid {
		explicit = GridPoints()
	}
	if len(explicit) > 0 {
		points := make([]Point, len(explicit))
		copy(points, explicit)
		return points, nil
	}

	segments, err := ExperimentSegments(e, params)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: experiment %q has no segments or points", ErrInvalidConfig, e.Name)
	}

	scaled, err := ScaleSegments(segments, params.EdgeLength)
	if err != nil {
		return nil, fmt.Errorf("scaling %q: %w", e.Name, err)
	}
	if params.Divisions < 1 {
		return nil, fmt.Errorf("%w: divisions must be >= 1, got %d", ErrInvalidConfig, params.Divisions)
	}
	return Subdivide(scaled, params.Divisions), nil
}

// ExperimentSegments resolves the raw (unscaled) segments of an experiment,
// expanding a named preset when no explicit segments are given.
func ExperimentSegments(e *Experiment, params Parameters) ([]Segment, error) {
	if len(e.Segments) > 0 {
		return e.Segments, nil
	}
	switch e.Preset {
	case "", PresetGrid:
		return nil, nil
	case PresetHexagon:
		return HexagonSegments(), nil
	case PresetRectangle:
		return RectangleSegments(params.EdgeLength), nil
	default:
		return nil, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, e.Preset)
	}
}

// SnapshotBound returns the box covering every location and every segment
// endpoint of a snapshot. Subdivided locations are strictly interior, so the
// segment endpoints usually extend past LayoutBound.
func SnapshotBound(l *LayoutSnapshot) orb.Bound {
	pts := make([]Point, 0, len(l.Points)+2*len(l.Segments))
	pts = append(pts, l.Points...)
	for _, s := range l.Segments {
		pts = append(pts, s.A, s.B)
	}
	return LayoutBound(pts)
}

// LayoutBound returns the bounding box of a set of points. An empty set
// yields the zero bound at the origin.
func LayoutBound(points []Point) orb.Bound {
	if len(points) == 0 {
		return orb.Bound{}
	}
	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		mp[i] = orbPoint(p)
	}
	return mp.Bound()
}
