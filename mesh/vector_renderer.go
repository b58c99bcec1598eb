package mesh

import (
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// withAlpha returns c premultiplied to the given alpha, as canvas expects
func withAlpha(c color.RGBA, alpha uint8) color.RGBA {
	a := uint32(alpha)
	return color.RGBA{
		R: uint8(uint32(c.R) * a / 255),
		G: uint8(uint32(c.G) * a / 255),
		B: uint8(uint32(c.B) * a / 255),
		A: alpha,
	}
}

// VectorRenderer renders a layout snapshot as vector graphics
type VectorRenderer struct {
	Layout     *LayoutSnapshot
	Palette    []color.RGBA
	Padding    float64           // Padding in layout units
	MarkerSize float64           // Location marker radius in layout units
	ShowRadius bool              // Draw a MinRadius/2 halo around colored locations
	Resolution canvas.Resolution // Resolution for PNG output (default: 300 DPI)
}

// NewVectorRenderer creates a vector renderer with sizes derived from the
// layout extent.
func NewVectorRenderer(layout *LayoutSnapshot) *VectorRenderer {
	b := SnapshotBound(layout)
	span := math.Max(b.Max.X()-b.Min.X(), b.Max.Y()-b.Min.Y())
	if span <= 0 {
		span = 1
	}
	return &VectorRenderer{
		Layout:     layout,
		Palette:    DefaultPalette(),
		Padding:    span * 0.05,
		MarkerSize: span * 0.01,
		ShowRadius: true,
		Resolution: canvas.DPI(300),
	}
}

// canvasRenderer is an interface that both svg and rasterizer renderers implement
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

func (r *VectorRenderer) size() (width, height float64, toCanvas AffineMatrix) {
	b := SnapshotBound(r.Layout)
	width = (b.Max.X() - b.Min.X()) + 2*r.Padding
	height = (b.Max.Y() - b.Min.Y()) + 2*r.Padding
	toCanvas = Translation(r.Padding-b.Min.X(), r.Padding-b.Min.Y())
	return width, height, toCanvas
}

// RenderToSVG writes the layout as an SVG to the provided writer
func (r *VectorRenderer) RenderToSVG(w io.Writer) error {
	width, height, toCanvas := r.size()

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, width, height, toCanvas)

	return svgRenderer.Close()
}

// RenderToPNG writes the layout as a PNG to the provided writer
func (r *VectorRenderer) RenderToPNG(w io.Writer) error {
	width, height, toCanvas := r.size()

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, width, height, toCanvas)

	return png.Encode(w, rast)
}

// renderToCanvas draws background, segments, halos and markers
func (r *VectorRenderer) renderToCanvas(renderer canvasRenderer, width, height float64, toCanvas AffineMatrix) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	segStyle := canvas.DefaultStyle
	segStyle.Fill = canvas.Paint{Color: canvas.Transparent}
	segStyle.Stroke = canvas.Paint{Color: color.RGBA{211, 211, 211, 255}}
	segStyle.StrokeWidth = r.MarkerSize / 2

	for _, s := range r.Layout.Segments {
		a := toCanvas.Apply(s.A)
		b := toCanvas.Apply(s.B)
		p := &canvas.Path{}
		p.MoveTo(a.X, a.Y)
		p.LineTo(b.X, b.Y)
		renderer.RenderPath(p, segStyle, canvas.Identity)
	}

	points := toCanvas.ApplyAll(r.Layout.Points)

	if r.ShowRadius && r.Layout.MinRadius > 0 {
		for _, pl := range r.Layout.Sample {
			c := points[pl.Location]
			haloStyle := canvas.DefaultStyle
			haloStyle.Fill = canvas.Paint{Color: withAlpha(paletteColor(r.Palette, pl.Color), 40)}
			haloStyle.Stroke = canvas.Paint{Color: canvas.Transparent}
			halo := canvas.Circle(r.Layout.MinRadius / 2).Translate(c.X, c.Y)
			renderer.RenderPath(halo, haloStyle, canvas.Identity)
		}
	}

	for i, c := range points {
		fill := unassignedColor
		if col, ok := r.Layout.Sample.ColorAt(i); ok {
			fill = paletteColor(r.Palette, col)
		}

		markerStyle := canvas.DefaultStyle
		markerStyle.Fill = canvas.Paint{Color: fill}
		markerStyle.Stroke = canvas.Paint{Color: canvas.Black}
		markerStyle.StrokeWidth = r.MarkerSize / 5

		marker := canvas.Circle(r.MarkerSize).Translate(c.X, c.Y)
		renderer.RenderPath(marker, markerStyle, canvas.Identity)
	}
}
