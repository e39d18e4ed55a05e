// Package routemap draws orienteering courses onto calibrated raster maps.
//
// # Overview
//
// A map image is calibrated by the latitude/longitude of its four corners.
// The corners may form any non-degenerate quadrilateral on the ground, so
// rotated, skewed or perspective-distorted scans are handled the same way as
// north-up maps. routemap projects the corners with a spherical Mercator
// model, fits the projective transform (homography) that sends them to the
// pixel rectangle, and uses it to place course controls on the image.
//
// # Quick Start
//
//	q := routemap.Quadrilateral{
//	    TopLeft:     routemap.GeoPoint{Lat: 60, Lon: 10},
//	    TopRight:    routemap.GeoPoint{Lat: 60, Lon: 11},
//	    BottomRight: routemap.GeoPoint{Lat: 59, Lon: 11},
//	    BottomLeft:  routemap.GeoPoint{Lat: 59, Lon: 10},
//	}
//	r, err := routemap.NewRenderer(routemap.DefaultRenderConfig())
//	if err != nil {
//	    return err
//	}
//	out, err := r.RenderMap(mapImage, q, routes, 1.0)
//
// # Coordinate System
//
// Pixel coordinates follow image conventions:
//   - Origin (0,0) at the top-left corner
//   - X increases right
//   - Y increases down
//   - Angles in radians, 0 is right, increasing clockwise on screen
//
// # Drawing
//
// Each route is drawn into its own transparent layer: a triangle at the
// start, legs between controls, numbered circles at intermediate controls
// and a double circle at the finish. Layers are merged in route order and
// the result is composited over the map with a global opacity.
package routemap
