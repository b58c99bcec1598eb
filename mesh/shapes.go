package mesh

// Preset layout names accepted by experiments and the --layout flag
const (
	PresetHexagon   = "hexagon"
	PresetRectangle = "rectangle"
	PresetGrid      = "grid"
)

// PresetNames lists the built-in layouts in display order
func PresetNames() []string {
	return []string{PresetHexagon, PresetRectangle, PresetGrid}
}

func seg(x1, y1, x2, y2 float64) Segment {
	return Segment{A: Point{X: x1, Y: y1}, B: Point{X: x2, Y: y2}}
}

// HexagonSegments returns the six outer edges of a unit hexagon followed by
// the six spokes from its center.
func HexagonSegments() []Segment {
	const (
		cx = 0.8660254037844386
		rx = 1.7320508075688772
	)
	return []Segment{
		seg(cx, 2, 0, 1.5),
		seg(cx, 2, rx, 1.5),
		seg(rx, 1.5, rx, 0.5),
		seg(cx, 0, rx, 0.5),
		seg(0, 0.5, cx, 0),
		seg(0, 0.5, 0, 1.5),
		seg(cx, 2, cx, 1),
		seg(rx, 1.5, cx, 1),
		seg(rx, 0.5, cx, 1),
		seg(cx, 0, cx, 1),
		seg(0, 0.5, cx, 1),
		seg(0, 1.5, cx, 1),
	}
}

// RectangleSegments returns six rows of two unit segments. Rows are 2.5
// units apart once the layout is scaled to edgeLength.
func RectangleSegments(edgeLength float64) []Segment {
	if edgeLength <= 0 {
		edgeLength = 1
	}
	segments := make([]Segment, 0, 12)
	for row := 0; row < 6; row++ {
		y := float64(row) * 2.5 / edgeLength
		segments = append(segments, seg(0, y, 1, y), seg(1, y, 2, y))
	}
	return segments
}

// GridPoints returns a 6x6 grid of explicit coordinates: six columns split
// into two blocks of three, and rows 9.6 apart.
func GridPoints() []Point {
	xs := []float64{8.25, 16.5, 24.75, 41.25, 49.5, 57.75}
	ys := []float64{0, 9.6, 19.2, 28.8, 38.4, 48}
	points := make([]Point, 0, len(xs)*len(ys))
	for _, x := range xs {
		for _, y := range ys {
			points = append(points, Point{X: x, Y: y})
		}
	}
	return points
}
