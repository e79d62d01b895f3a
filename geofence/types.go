package geofence

import (
	"math"
	"strings"

	"github.com/barikoi/barikoi-go/geo"
	"github.com/barikoi/barikoi-go/transport"
)

// Point is a named circular geofence. Radius is in meters.
type Point struct {
	Name      string
	Latitude  float64
	Longitude float64
	Radius    float64
}

func (p Point) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return transport.NewValidationError("geofence name must not be empty")
	}
	if err := geo.NewCoordinate(p.Longitude, p.Latitude).Validate(); err != nil {
		return transport.NewValidationError("%v", err)
	}
	if !(p.Radius > 0) || math.IsInf(p.Radius, 1) {
		return transport.NewValidationError("radius must be greater than 0, got %v", p.Radius)
	}
	return nil
}

func (p Point) params() transport.Params {
	return transport.Params{
		"name":      p.Name,
		"latitude":  geo.FormatFloat(p.Latitude),
		"longitude": geo.FormatFloat(p.Longitude),
		"radius":    geo.FormatFloat(p.Radius),
	}
}

// NearbyStatus is the decoded answer of CheckNearby.
type NearbyStatus struct {
	Inside  bool   `json:"inside"`
	Message string `json:"message"`
	// Distance in meters, 0 when the API did not report one.
	Distance float64 `json:"distance,omitempty"`
}

// ParseNearby reads a CheckNearby result. The API answers with a message such
// as "Inside geofence" or "Outside geofence" and an optional distance, either
// at the top level or under "data".
func ParseNearby(res *transport.Result) NearbyStatus {
	msg := res.Message()
	lower := strings.ToLower(msg)
	status := NearbyStatus{
		Message: msg,
		Inside:  strings.Contains(lower, "inside") && !strings.Contains(lower, "not inside"),
	}
	if d, ok := distanceOf(res.Object()); ok {
		status.Distance = d
	} else if data, ok := res.Object()["data"].(map[string]any); ok {
		status.Distance, _ = distanceOf(data)
	}
	return status
}

func distanceOf(obj map[string]any) (float64, bool) {
	d, ok := obj["distance"].(float64)
	return d, ok
}
