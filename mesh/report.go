package mesh

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// FormatResult renders a run as "<label>: <mean>% ± <half>% valid combinations"
func FormatResult(label string, mean, halfWidth float64) string {
	return fmt.Sprintf("%s: %.2f%% ± %.2f%% valid combinations", label, mean*100, halfWidth*100)
}

// String implements fmt.Stringer using FormatResult
func (r *RunResult) String() string {
	return FormatResult(r.Label, r.Mean, r.HalfWidth)
}

// WriteAssignment prints every placement with its coordinate followed by the
// share of each color over loc, the same denominator the share check uses.
func WriteAssignment(w io.Writer, index int, a Assignment, locations []Point, numColors, loc int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\nCombination %d:\n", index)
	for _, p := range a {
		pt := locations[p.Location]
		fmt.Fprintf(&b, "Coordinate (%g, %g): %s\n", pt.X, pt.Y, p.Color)
	}

	shares := ColorShares(a, loc)
	parts := make([]string, 0, numColors)
	for c := 0; c < numColors; c++ {
		parts = append(parts, fmt.Sprintf("%s: %.2f%%", Color(c), shares[Color(c)]*100))
	}
	fmt.Fprintf(&b, "Color percentages: %s\n", strings.Join(parts, ", "))

	_, err := io.WriteString(w, b.String())
	return err
}

// SortedResults returns results ordered by label
func SortedResults(results map[string]*RunResult) []*RunResult {
	out := make([]*RunResult, 0, len(results))
	for _, r := range results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
