package routemap

// Control is a course waypoint: a position plus its ordinal in the route.
// Index 0 is the start, the last index is the finish and the controls in
// between are numbered from 1.
type Control struct {
	Position GeoPoint
	Index    int
}

// Route is an ordered sequence of controls. Order is the direction of travel.
type Route struct {
	Name     string
	Controls []Control
}

// NewRoute creates a route visiting points in order, numbering the controls
// by position.
func NewRoute(name string, points ...GeoPoint) Route {
	controls := make([]Control, len(points))
	for i, p := range points {
		controls[i] = Control{Position: p, Index: i}
	}
	return Route{Name: name, Controls: controls}
}

// Len returns the number of controls.
func (r Route) Len() int {
	return len(r.Controls)
}

// Marker is the symbol drawn at a control.
type Marker uint8

const (
	// MarkerStart is an equilateral triangle pointing along the first leg.
	MarkerStart Marker = iota

	// MarkerControl is a numbered circle.
	MarkerControl

	// MarkerFinish is a pair of concentric circles.
	MarkerFinish
)

// String returns a string representation of the marker.
func (m Marker) String() string {
	switch m {
	case MarkerStart:
		return "Start"
	case MarkerControl:
		return "Control"
	case MarkerFinish:
		return "Finish"
	default:
		return "Unknown"
	}
}

// Markers returns the symbols for the control at position i of a route with
// n controls. A single-control route gets both the start and the finish
// symbol at the same place. Out-of-range positions return nil.
func Markers(i, n int) []Marker {
	switch {
	case i < 0 || i >= n:
		return nil
	case n == 1:
		return []Marker{MarkerStart, MarkerFinish}
	case i == 0:
		return []Marker{MarkerStart}
	case i == n-1:
		return []Marker{MarkerFinish}
	default:
		return []Marker{MarkerControl}
	}
}
