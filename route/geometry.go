package route

import (
	"errors"
	"fmt"

	"github.com/twpayne/go-polyline"

	"github.com/barikoi/barikoi-go/geo"
	"github.com/barikoi/barikoi-go/transport"
)

// Geometry is a decoded route line.
type Geometry []geo.Coordinate

// DecodeGeometry decodes a polyline encoded route geometry, the default
// "geometries" format of the route endpoints.
func DecodeGeometry(encoded string) (Geometry, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode polyline: %w", err)
	}
	g := make(Geometry, 0, len(coords))
	for _, c := range coords {
		g = append(g, geo.NewCoordinate(c[1], c[0]))
	}
	return g, nil
}

// Encode renders the geometry back to polyline format.
func (g Geometry) Encode() string {
	coords := make([][]float64, 0, len(g))
	for _, c := range g {
		coords = append(coords, []float64{c.Latitude, c.Longitude})
	}
	return string(polyline.EncodeCoords(coords))
}

// Length is the length of the line in meters.
func (g Geometry) Length() float64 {
	var total float64
	for i := 1; i < len(g); i++ {
		total += geo.Haversine(g[i-1], g[i])
	}
	return total
}

// Contains reports whether point lies within tolerance meters of the line.
func (g Geometry) Contains(point geo.Coordinate, tolerance float64) bool {
	return geo.IsPointNearPolyline(point, g, tolerance)
}

// ErrNoGeometry is returned when a route response carries no polyline.
var ErrNoGeometry = errors.New("route response has no polyline geometry")

// GeometryOf extracts and decodes the geometry of the first route in a
// /route or /match response.
func GeometryOf(res *transport.Result) (Geometry, error) {
	for _, key := range []string{"routes", "matchings"} {
		records := res.Records(key)
		if len(records) == 0 {
			continue
		}
		encoded, ok := records[0]["geometry"].(string)
		if !ok {
			return nil, ErrNoGeometry
		}
		return DecodeGeometry(encoded)
	}
	return nil, ErrNoGeometry
}
