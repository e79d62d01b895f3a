package watch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/barikoi/barikoi-go/geo"
)

// ErrSessionNotFound is returned by a SessionCache when no session is stored
// under the requested ID.
var ErrSessionNotFound = errors.New("session not found")

type Session struct {
	ID          string      `json:"session_id"`
	Destination Destination `json:"destination"`
	// Route is an optional polyline encoded path the device is expected to
	// follow.
	Route        string    `json:"route,omitempty"`
	LastPosition *Position `json:"last_position,omitempty"`
	// LastCheck is where the last geofence check was made.
	LastCheck *Position `json:"last_check,omitempty"`
	Inside    bool      `json:"inside"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Destination is the watched circle. Radius is in meters.
type Destination struct {
	Lat    float64 `json:"latitude"`
	Lon    float64 `json:"longitude"`
	Radius float64 `json:"radius"`
}

func (d Destination) Validate() error {
	if err := geo.NewCoordinate(d.Lon, d.Lat).Validate(); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if !(d.Radius > 0) || math.IsInf(d.Radius, 1) {
		return fmt.Errorf("radius must be greater than 0, got %v", d.Radius)
	}
	return nil
}

type Position struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Timestamp time.Time `json:"timestamp"`
}

func (p Position) Coordinate() geo.Coordinate {
	return geo.NewCoordinate(p.Lon, p.Lat)
}

type SessionCache interface {
	SetSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}
