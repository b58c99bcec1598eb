package mesh

import "encoding/json"

// GeometryType represents the GeoJSON geometry type
type GeometryType string

const (
	GeometryPoint      GeometryType = "Point"
	GeometryLineString GeometryType = "LineString"
)

// Geometry represents a GeoJSON geometry object
type Geometry struct {
	Type        GeometryType    `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature represents a GeoJSON feature with geometry and properties
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   *Geometry              `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
	ID         interface{}            `json:"id,omitempty"`
}

// FeatureCollection represents a GeoJSON FeatureCollection
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
}

// NewFeatureCollection creates a new empty FeatureCollection
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]*Feature, 0),
	}
}

// AddFeature appends a feature to the collection
func (fc *FeatureCollection) AddFeature(f *Feature) {
	fc.Features = append(fc.Features, f)
}

// NewFeature creates a Feature with the given geometry and properties
func NewFeature(geom *Geometry, props map[string]interface{}) *Feature {
	if props == nil {
		props = make(map[string]interface{})
	}
	return &Feature{
		Type:       "Feature",
		Geometry:   geom,
		Properties: props,
	}
}

// PointToGeometry converts a location to a GeoJSON Point geometry
func PointToGeometry(p Point) *Geometry {
	coordsJSON, _ := json.Marshal([2]float64{p.X, p.Y})
	return &Geometry{
		Type:        GeometryPoint,
		Coordinates: coordsJSON,
	}
}

// SegmentToLineString converts a segment to a GeoJSON LineString geometry
func SegmentToLineString(s Segment) *Geometry {
	coordsJSON, _ := json.Marshal([][2]float64{{s.A.X, s.A.Y}, {s.B.X, s.B.Y}})
	return &Geometry{
		Type:        GeometryLineString,
		Coordinates: coordsJSON,
	}
}

// LayoutToFeatureCollection exports a layout snapshot as GeoJSON. Each
// location becomes a Point feature carrying its index and, when the sample
// covers it, its color; each segment becomes a LineString feature.
func LayoutToFeatureCollection(l *LayoutSnapshot) *FeatureCollection {
	fc := NewFeatureCollection()
	if l == nil {
		return fc
	}

	for i, s := range l.Segments {
		fc.AddFeature(NewFeature(SegmentToLineString(s), map[string]interface{}{
			"kind":    "segment",
			"segment": i,
			"layout":  l.Label,
		}))
	}

	for i, p := range l.Points {
		props := map[string]interface{}{
			"kind":     "location",
			"location": i,
			"layout":   l.Label,
		}
		if c, ok := l.Sample.ColorAt(i); ok {
			props["color"] = int(c)
			props["colorName"] = c.String()
		}
		f := NewFeature(PointToGeometry(p), props)
		f.ID = i
		fc.AddFeature(f)
	}

	return fc
}
