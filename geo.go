package routemap

import "fmt"

// GeoPoint is a WGS84 position in degrees.
type GeoPoint struct {
	Lat, Lon float64
}

// Geo is a convenience function to create a GeoPoint.
func Geo(lat, lon float64) GeoPoint {
	return GeoPoint{Lat: lat, Lon: lon}
}

func (g GeoPoint) String() string {
	return fmt.Sprintf("(%g, %g)", g.Lat, g.Lon)
}

// Quadrilateral holds the geographic positions of the four image corners.
type Quadrilateral struct {
	TopLeft     GeoPoint
	TopRight    GeoPoint
	BottomRight GeoPoint
	BottomLeft  GeoPoint
}

// Corners returns the corners in winding order: top-left, top-right,
// bottom-right, bottom-left.
func (q Quadrilateral) Corners() [4]GeoPoint {
	return [4]GeoPoint{q.TopLeft, q.TopRight, q.BottomRight, q.BottomLeft}
}

// Centroid returns the arithmetic mean of the four corners.
func (q Quadrilateral) Centroid() GeoPoint {
	var lat, lon float64
	for _, c := range q.Corners() {
		lat += c.Lat
		lon += c.Lon
	}
	return GeoPoint{Lat: lat / 4, Lon: lon / 4}
}
