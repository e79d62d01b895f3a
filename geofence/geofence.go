// Package geofence manages named circular geofences and checks whether a
// device is within range of a destination.
package geofence

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/barikoi/barikoi-go/geo"
	"github.com/barikoi/barikoi-go/transport"
)

var (
	checkNearbyEndpoint = transport.Endpoint{Name: "geofence.check_nearby", Path: "/check/nearby"}
	setPointEndpoint    = transport.Endpoint{Name: "geofence.set_point", Path: "/geofence/set/point"}
	getPointsEndpoint   = transport.Endpoint{Name: "geofence.points", Path: "/geofence/points"}
	checkPointEndpoint  = transport.Endpoint{Name: "geofence.check_point", Path: "/geofence/check/point"}
)

type Service struct {
	client *transport.Client
}

func NewService(client *transport.Client) *Service {
	return &Service{client: client}
}

// CheckNearby reports whether the current position is within radius meters
// of the destination. Use ParseNearby to read the answer.
func (s *Service) CheckNearby(ctx context.Context, destinationLatitude, destinationLongitude, currentLatitude, currentLongitude, radius float64) (*transport.Result, error) {
	destination := geo.NewCoordinate(destinationLongitude, destinationLatitude)
	if err := destination.Validate(); err != nil {
		return nil, transport.NewValidationError("destination: %v", err)
	}
	current := geo.NewCoordinate(currentLongitude, currentLatitude)
	if err := current.Validate(); err != nil {
		return nil, transport.NewValidationError("current: %v", err)
	}
	if !(radius > 0) || math.IsInf(radius, 1) {
		return nil, transport.NewValidationError("radius must be greater than 0, got %v", radius)
	}
	return s.client.Get(ctx, checkNearbyEndpoint, transport.Params{
		"destination_latitude":  geo.FormatFloat(destinationLatitude),
		"destination_longitude": geo.FormatFloat(destinationLongitude),
		"radius":                geo.FormatFloat(radius),
		"current_latitude":      geo.FormatFloat(currentLatitude),
		"current_longitude":     geo.FormatFloat(currentLongitude),
	})
}

// SetPoint creates a geofence.
func (s *Service) SetPoint(ctx context.Context, p Point) (*transport.Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.client.Post(ctx, setPointEndpoint, p.params())
}

func (s *Service) GetPoints(ctx context.Context) (*transport.Result, error) {
	return s.client.Get(ctx, getPointsEndpoint, nil)
}

func (s *Service) GetPoint(ctx context.Context, id string) (*transport.Result, error) {
	ep, err := pointEndpoint("geofence.point", "/geofence/point/", id)
	if err != nil {
		return nil, err
	}
	return s.client.Get(ctx, ep, nil)
}

// UpdatePoint replaces the geofence stored under id.
func (s *Service) UpdatePoint(ctx context.Context, id string, p Point) (*transport.Result, error) {
	ep, err := pointEndpoint("geofence.update_point", "/geofence/update/point/", id)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.client.Post(ctx, ep, p.params())
}

func (s *Service) DeletePoint(ctx context.Context, id string) (*transport.Result, error) {
	ep, err := pointEndpoint("geofence.delete_point", "/geofence/delete/point/", id)
	if err != nil {
		return nil, err
	}
	return s.client.Delete(ctx, ep, nil)
}

// CheckGeofence lists the stored geofences that contain a point.
func (s *Service) CheckGeofence(ctx context.Context, latitude, longitude float64) (*transport.Result, error) {
	point := geo.NewCoordinate(longitude, latitude)
	if err := point.Validate(); err != nil {
		return nil, transport.NewValidationError("%v", err)
	}
	return s.client.Get(ctx, checkPointEndpoint, transport.Params{
		"latitude":  geo.FormatFloat(latitude),
		"longitude": geo.FormatFloat(longitude),
	})
}

func pointEndpoint(name, prefix, id string) (transport.Endpoint, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return transport.Endpoint{}, transport.NewValidationError("geofence id must not be empty")
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return transport.Endpoint{}, transport.NewValidationError("geofence id %q must be numeric", id)
	}
	return transport.Endpoint{Name: name, Path: prefix + id}, nil
}
