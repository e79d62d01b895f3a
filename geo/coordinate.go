// Package geo holds the coordinate type shared by every Barikoi service and
// a few local distance helpers.
package geo

import (
	"fmt"
	"math"
	"strconv"
)

// Coordinate is a WGS84 point. Longitude comes first to match the order the
// Barikoi API uses in paths and query strings.
type Coordinate struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// NewCoordinate builds a coordinate from a longitude/latitude pair.
func NewCoordinate(lon, lat float64) Coordinate {
	return Coordinate{Longitude: lon, Latitude: lat}
}

// Validate checks the coordinate lies within [-180,180] x [-90,90]. NaN is
// outside both ranges.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("invalid latitude: %v (must be between -90 and 90)", c.Latitude)
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("invalid longitude: %v (must be between -180 and 180)", c.Longitude)
	}
	return nil
}

// LonLat renders "lon,lat", the form used inside route paths.
func (c Coordinate) LonLat() string {
	return FormatFloat(c.Longitude) + "," + FormatFloat(c.Latitude)
}

// LatLon renders "lat,lng", the form used by snap-to-road and waypoint points.
func (c Coordinate) LatLon() string {
	return FormatFloat(c.Latitude) + "," + FormatFloat(c.Longitude)
}

// FormatFloat prints the shortest representation that round-trips, so 1.0
// becomes "1" and 0.5 stays "0.5".
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
