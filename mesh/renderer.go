package mesh

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// unassignedColor is used for locations not covered by the sample assignment
var unassignedColor = color.RGBA{170, 170, 170, 255}

// DefaultPalette returns distinct colors for up to 6 labels; further labels wrap
func DefaultPalette() []color.RGBA {
	return []color.RGBA{
		{0, 0, 255, 255},   // Blue
		{255, 0, 0, 255},   // Red
		{0, 160, 0, 255},   // Green
		{255, 165, 0, 255}, // Orange
		{148, 0, 211, 255}, // Violet
		{0, 170, 170, 255}, // Teal
	}
}

// PaletteFromHex parses configured hex colors, falling back to the default
// palette when none are given.
func PaletteFromHex(hexColors []string) []color.RGBA {
	if len(hexColors) == 0 {
		return DefaultPalette()
	}
	palette := make([]color.RGBA, len(hexColors))
	for i, h := range hexColors {
		palette[i] = parseHexColor(h)
	}
	return palette
}

func paletteColor(palette []color.RGBA, c Color) color.RGBA {
	if len(palette) == 0 {
		palette = DefaultPalette()
	}
	return palette[int(c)%len(palette)]
}

// RasterRenderer draws a layout snapshot into an RGBA image
type RasterRenderer struct {
	Layout      *LayoutSnapshot
	Palette     []color.RGBA
	Scale       float64 // Pixels per layout unit
	Padding     int     // Padding around the image
	PointRadius int     // Marker radius in pixels
}

// NewRasterRenderer creates a renderer scaled so the longer side of the
// layout spans about 800 pixels.
func NewRasterRenderer(layout *LayoutSnapshot) *RasterRenderer {
	scale := 1.0
	b := SnapshotBound(layout)
	if span := math.Max(b.Max.X()-b.Min.X(), b.Max.Y()-b.Min.Y()); span > 0 {
		scale = 800 / span
	}
	return &RasterRenderer{
		Layout:      layout,
		Palette:     DefaultPalette(),
		Scale:       scale,
		Padding:     40,
		PointRadius: 6,
	}
}

// imageTransform returns the image size and the layout-to-pixel transform.
// Image rows grow downward, so y is flipped to match the y-up vector output.
func (r *RasterRenderer) imageTransform() (width, height int, m AffineMatrix) {
	b := SnapshotBound(r.Layout)

	width = int(math.Ceil((b.Max.X()-b.Min.X())*r.Scale)) + 2*r.Padding + 1
	height = int(math.Ceil((b.Max.Y()-b.Min.Y())*r.Scale)) + 2*r.Padding + 1

	pad := float64(r.Padding)
	m = Translation(-b.Min.X(), -b.Max.Y()).Then(Scale(r.Scale, -r.Scale)).Then(Translation(pad, pad))
	return width, height, m
}

// Render draws segments, colored location markers and a legend
func (r *RasterRenderer) Render() *image.RGBA {
	width, height, m := r.imageTransform()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{240, 240, 240, 255})
		}
	}

	toImage := func(p Point) (int, int) {
		q := m.Apply(p)
		return int(math.Round(q.X)), int(math.Round(q.Y))
	}

	for _, s := range r.Layout.Segments {
		x0, y0 := toImage(s.A)
		x1, y1 := toImage(s.B)
		drawLine(img, x0, y0, x1, y1, color.RGBA{200, 200, 200, 255})
	}

	for i, p := range r.Layout.Points {
		c := unassignedColor
		if col, ok := r.Layout.Sample.ColorAt(i); ok {
			c = paletteColor(r.Palette, col)
		}
		ix, iy := toImage(p)
		drawCircle(img, ix, iy, r.PointRadius, c)
	}

	r.drawLegend(img)
	return img
}

// SavePNG renders and writes the image to a file
func (r *RasterRenderer) SavePNG(path string) error {
	img := r.Render()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return png.Encode(f, img)
}

// drawLegend adds one swatch and label per color in the top-left corner
func (r *RasterRenderer) drawLegend(img *image.RGBA) {
	y := 15
	for c := 0; c < r.Layout.Colors; c++ {
		swatch := paletteColor(r.Palette, Color(c))
		for dy := 0; dy < 12; dy++ {
			for dx := 0; dx < 12; dx++ {
				img.Set(10+dx, y+dy-10, swatch)
			}
		}
		drawText(img, 28, y, Color(c).String(), color.RGBA{0, 0, 0, 255})
		y += 18
	}
	if r.Layout.Label != "" {
		drawText(img, 10, img.Bounds().Max.Y-10,
			fmt.Sprintf("%s (%d locations)", r.Layout.Label, len(r.Layout.Points)), color.RGBA{0, 0, 0, 255})
	}
}

// drawCircle draws a filled circle
func drawCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				x, y := cx+dx, cy+dy
				if x >= 0 && x < img.Bounds().Max.X && y >= 0 && y < img.Bounds().Max.Y {
					img.Set(x, y, c)
				}
			}
		}
	}
}

// drawLine draws a one-pixel line by stepping along the longer axis
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	steps := int(math.Max(math.Abs(float64(x1-x0)), math.Abs(float64(y1-y0))))
	if steps == 0 {
		img.Set(x0, y0, c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(float64(x0) + t*float64(x1-x0)))
		y := int(math.Round(float64(y0) + t*float64(y1-y0)))
		img.Set(x, y, c)
	}
}

// drawText renders text onto an image at the specified position
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// parseHexColor parses a hex color string like "#FF6B6B" to color.RGBA
func parseHexColor(hex string) color.RGBA {
	// Default to red if parsing fails
	defaultColor := color.RGBA{255, 0, 0, 255}

	if len(hex) == 0 {
		return defaultColor
	}

	if hex[0] == '#' {
		hex = hex[1:]
	}

	if len(hex) != 6 {
		return defaultColor
	}

	var r, g, b uint8
	_, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
	if err != nil {
		return defaultColor
	}

	return color.RGBA{r, g, b, 255}
}
