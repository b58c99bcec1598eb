package mesh

// AffineMatrix maps layout coordinates into another frame:
// x' = A*x + B*y + Tx, y' = C*x + D*y + Ty.
type AffineMatrix struct {
	A  float64 `json:"a"`
	B  float64 `json:"b"`
	Tx float64 `json:"tx"`
	C  float64 `json:"c"`
	D  float64 `json:"d"`
	Ty float64 `json:"ty"`
}

// Translation shifts by (tx, ty)
func Translation(tx, ty float64) AffineMatrix {
	return AffineMatrix{A: 1, D: 1, Tx: tx, Ty: ty}
}

// Scale stretches about the origin
func Scale(sx, sy float64) AffineMatrix {
	return AffineMatrix{A: sx, D: sy}
}

// Apply maps a single point
func (m AffineMatrix) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.Tx,
		Y: m.C*p.X + m.D*p.Y + m.Ty,
	}
}

// ApplyAll maps every point into a new slice
func (m AffineMatrix) ApplyAll(points []Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = m.Apply(p)
	}
	return out
}

// ApplySegment maps both endpoints of a segment
func (m AffineMatrix) ApplySegment(s Segment) Segment {
	return Segment{A: m.Apply(s.A), B: m.Apply(s.B)}
}

// Then returns the transform that applies m first and next afterwards
func (m AffineMatrix) Then(next AffineMatrix) AffineMatrix {
	return AffineMatrix{
		A:  next.A*m.A + next.B*m.C,
		B:  next.A*m.B + next.B*m.D,
		Tx: next.A*m.Tx + next.B*m.Ty + next.Tx,
		C:  next.C*m.A + next.D*m.C,
		D:  next.C*m.B + next.D*m.D,
		Ty: next.C*m.Tx + next.D*m.Ty + next.Ty,
	}
}
