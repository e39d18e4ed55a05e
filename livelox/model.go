package livelox

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gogpu/routemap"
)

// classInfoRequest is the body of a ClassInfo call.
type classInfoRequest struct {
	ClassIDs         []string `json:"classIds"`
	CourseIDs        []string `json:"courseIds"`
	RelayLegs        []any    `json:"relayLegs"`
	RelayLegGroupIDs []any    `json:"relayLegGroupIds"`
	IncludeMap       bool     `json:"includeMap"`
	IncludeCourses   bool     `json:"includeCourses"`
	SkipStoreInCache bool     `json:"skipStoreInCache"`
}

func newClassInfoRequest(classID string) classInfoRequest {
	return classInfoRequest{
		ClassIDs:         []string{classID},
		RelayLegs:        []any{},
		RelayLegGroupIDs: []any{},
		IncludeMap:       true,
		IncludeCourses:   true,
	}
}

// ClassInfo is the part of a ClassInfo response needed to locate the class
// data.
type ClassInfo struct {
	General struct {
		ClassBlobURL string `json:"classBlobUrl"`
		Event        struct {
			Name string `json:"name"`
		} `json:"event"`
	} `json:"general"`
}

// BlobURL returns the address of the class blob.
func (c *ClassInfo) BlobURL() string { return c.General.ClassBlobURL }

// EventName returns the event name, or "" when the response has none.
func (c *ClassInfo) EventName() string { return c.General.Event.Name }

// Position is a WGS84 coordinate as Livelox encodes it.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geo converts p to a routemap.GeoPoint.
func (p Position) Geo() routemap.GeoPoint {
	return routemap.Geo(p.Latitude, p.Longitude)
}

// Map describes the orienteering map of a class.
type Map struct {
	URL                   string  `json:"url"`
	Name                  string  `json:"name"`
	Resolution            float64 `json:"resolution"`
	ImageFormat           string  `json:"imageFormat"`
	BoundingQuadrilateral struct {
		Vertices []Position `json:"vertices"`
	} `json:"boundingQuadrilateral"`
}

// CourseControl is one entry in a course's control sequence.
type CourseControl struct {
	Control struct {
		Code     string   `json:"code"`
		Position Position `json:"position"`
	} `json:"control"`
}

// Course is a control sequence on the map.
type Course struct {
	Name     string          `json:"name"`
	Controls []CourseControl `json:"controls"`
}

// ClassBlob holds the map and courses of one class.
type ClassBlob struct {
	Map     Map      `json:"map"`
	Courses []Course `json:"courses"`
}

// ReadClassBlob decodes a class blob saved to disk.
func ReadClassBlob(r io.Reader) (*ClassBlob, error) {
	var b ClassBlob
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	return &b, nil
}

// Quadrilateral returns the map calibration. Livelox lists the vertices
// bottom-left, bottom-right, top-right, top-left.
func (b *ClassBlob) Quadrilateral() (routemap.Quadrilateral, error) {
	v := b.Map.BoundingQuadrilateral.Vertices
	if len(v) != 4 {
		return routemap.Quadrilateral{}, fmt.Errorf("%w: bounding quadrilateral has %d vertices, want 4", ErrMalformedBlob, len(v))
	}
	return routemap.Quadrilateral{
		TopLeft:     v[3].Geo(),
		TopRight:    v[2].Geo(),
		BottomRight: v[1].Geo(),
		BottomLeft:  v[0].Geo(),
	}, nil
}

// Routes returns one route per course, in course order. Courses without
// controls are left out.
func (b *ClassBlob) Routes() []routemap.Route {
	routes := make([]routemap.Route, 0, len(b.Courses))
	for _, c := range b.Courses {
		if len(c.Controls) == 0 {
			continue
		}
		pts := make([]routemap.GeoPoint, len(c.Controls))
		for i, cc := range c.Controls {
			pts[i] = cc.Control.Position.Geo()
		}
		routes = append(routes, routemap.NewRoute(c.Name, pts...))
	}
	return routes
}
