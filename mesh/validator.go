package mesh

import "fmt"

// Boundary selects how a same-colored pair at exactly the minimum radius is treated
type Boundary int

const (
	// BoundaryStrict rejects a pair only when its distance is below the radius
	BoundaryStrict Boundary = iota
	// BoundaryInclusive also rejects a pair at exactly the radius
	BoundaryInclusive
)

// ParseBoundary converts a config string to a Boundary. Empty means strict.
func ParseBoundary(s string) (Boundary, error) {
	switch s {
	case "", "strict":
		return BoundaryStrict, nil
	case "inclusive":
		return BoundaryInclusive, nil
	default:
		return BoundaryStrict, fmt.Errorf("%w: boundary must be strict or inclusive, got %q", ErrInvalidConfig, s)
	}
}

func (b Boundary) String() string {
	if b == BoundaryInclusive {
		return "inclusive"
	}
	return "strict"
}

// tooClose reports whether distance d violates minRadius under the boundary rule
func (b Boundary) tooClose(d, minRadius float64) bool {
	if b == BoundaryInclusive {
		return d <= minRadius
	}
	return d < minRadius
}

// ColorShares returns occurrences/loc for every color used in the assignment.
// Unused colors are absent from the result.
func ColorShares(a Assignment, loc int) map[Color]float64 {
	counts := make(map[Color]int)
	for _, p := range a {
		counts[p.Color]++
	}
	shares := make(map[Color]float64, len(counts))
	for c, n := range counts {
		shares[c] = float64(n) / float64(loc)
	}
	return shares
}

// CheckShare reports whether every used color reaches minShare
func CheckShare(a Assignment, loc int, minShare float64) bool {
	for _, share := range ColorShares(a, loc) {
		if share < minShare {
			return false
		}
	}
	return true
}

// CheckSeparation reports whether every pair of same-colored locations is at
// least minRadius apart under the given boundary rule.
func CheckSeparation(a Assignment, locations []Point, minRadius float64, boundary Boundary) bool {
	for i := 0; i < len(a); i++ {
		pi := locations[a[i].Location]
		for j := i + 1; j < len(a); j++ {
			if a[i].Color != a[j].Color {
				continue
			}
			if boundary.tooClose(Distance(pi, locations[a[j].Location]), minRadius) {
				return false
			}
		}
	}
	return true
}

// Validator evaluates both constraints against a fixed layout
type Validator struct {
	Locations []Point
	Loc       int
	MinShare  float64
	MinRadius float64
	Boundary  Boundary
}

// NewValidator creates a validator for the given layout and parameters
func NewValidator(locations []Point, params Parameters) (*Validator, error) {
	boundary, err := ParseBoundary(params.Boundary)
	if err != nil {
		return nil, err
	}
	return &Validator{
		Locations: locations,
		Loc:       params.Loc,
		MinShare:  params.MinShare,
		MinRadius: params.MinRadius,
		Boundary:  boundary,
	}, nil
}

// IsValid reports whether the assignment passes the share constraint and then
// the separation constraint.
func (v *Validator) IsValid(a Assignment) bool {
	if !CheckShare(a, v.Loc, v.MinShare) {
		return false
	}
	return CheckSeparation(a, v.Locations, v.MinRadius, v.Boundary)
}
