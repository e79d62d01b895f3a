// Package watch tracks devices against a destination geofence. Each position
// update may trigger a Barikoi check-nearby call; enter and exit transitions
// are published as events.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/barikoi/barikoi-go/geo"
	"github.com/barikoi/barikoi-go/geofence"
	"github.com/barikoi/barikoi-go/internal/events"
	"github.com/barikoi/barikoi-go/route"
	"github.com/barikoi/barikoi-go/transport"
)

type NearbyChecker interface {
	CheckNearby(ctx context.Context, destinationLatitude, destinationLongitude, currentLatitude, currentLongitude, radius float64) (*transport.Result, error)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type TransitionObserver interface {
	ObserveTransition(action string)
}

type WatcherOptions struct {
	// MinMoveMeters is how far a device must move before it is checked again.
	MinMoveMeters float64
	// RouteToleranceMeters is the distance from Session.Route beyond which a
	// device is reported off route.
	RouteToleranceMeters float64
	Publisher            Publisher
	Observer             TransitionObserver
}

func DefaultWatcherOptions() WatcherOptions {
	return WatcherOptions{
		MinMoveMeters:        10,
		RouteToleranceMeters: 30,
	}
}

type Watcher struct {
	checker  NearbyChecker
	sessions SessionCache
	logger   *slog.Logger
	opts     WatcherOptions
	now      func() time.Time
}

func NewWatcher(checker NearbyChecker, sessions SessionCache, logger *slog.Logger, options ...WatcherOptions) *Watcher {
	opts := DefaultWatcherOptions()
	if len(options) > 0 {
		opts = options[0]
	}
	return &Watcher{
		checker:  checker,
		sessions: sessions,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

// Init is the payload that opens a watch session.
type Init struct {
	Destination Destination `json:"destination"`
	Route       string      `json:"route,omitempty"`
}

// Status is sent back to the device after each position update.
type Status struct {
	Inside   bool    `json:"inside"`
	Message  string  `json:"message,omitempty"`
	Distance float64 `json:"distance,omitempty"`
	// Checked is false when the device moved too little to be checked again
	// and the previous answer is repeated.
	Checked bool  `json:"checked"`
	OnRoute *bool `json:"on_route,omitempty"`
}

// Start stores a new session, replacing any previous one with the same ID.
func (w *Watcher) Start(ctx context.Context, sessionID string, req Init) (*Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if err := req.Destination.Validate(); err != nil {
		return nil, err
	}
	if req.Route != "" {
		if _, err := route.DecodeGeometry(req.Route); err != nil {
			return nil, err
		}
	}

	session := &Session{
		ID:          sessionID,
		Destination: req.Destination,
		Route:       req.Route,
		UpdatedAt:   w.now(),
	}
	if err := w.sessions.SetSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return session, nil
}

// Update records a new position and checks it against the destination when
// the device moved far enough since the last check.
func (w *Watcher) Update(ctx context.Context, sessionID string, pos Position) (*Status, error) {
	point := pos.Coordinate()
	if err := point.Validate(); err != nil {
		return nil, fmt.Errorf("invalid position: %w", err)
	}
	if pos.Timestamp.IsZero() {
		pos.Timestamp = w.now()
	}

	session, err := w.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	session.LastPosition = &pos
	session.UpdatedAt = w.now()

	status := &Status{Inside: session.Inside}
	if session.Route != "" {
		if g, err := route.DecodeGeometry(session.Route); err == nil {
			onRoute := g.Contains(point, w.opts.RouteToleranceMeters)
			status.OnRoute = &onRoute
		}
	}

	if session.LastCheck != nil && geo.Haversine(session.LastCheck.Coordinate(), point) < w.opts.MinMoveMeters {
		if err := w.sessions.SetSession(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to update session: %w", err)
		}
		return status, nil
	}

	d := session.Destination
	res, err := w.checker.CheckNearby(ctx, d.Lat, d.Lon, pos.Lat, pos.Lon, d.Radius)
	if err != nil {
		return nil, fmt.Errorf("failed to check geofence: %w", err)
	}
	nearby := geofence.ParseNearby(res)
	status.Checked = true
	status.Inside = nearby.Inside
	status.Message = nearby.Message
	status.Distance = nearby.Distance

	wasInside := session.Inside
	session.Inside = nearby.Inside
	session.LastCheck = &pos
	if err := w.sessions.SetSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if nearby.Inside != wasInside {
		action := events.ActionExit
		if nearby.Inside {
			action = events.ActionEnter
		}
		w.transition(ctx, session, action, nearby)
	}
	return status, nil
}

// End removes the session.
func (w *Watcher) End(ctx context.Context, sessionID string) error {
	if err := w.sessions.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (w *Watcher) transition(ctx context.Context, session *Session, action events.Action, nearby geofence.NearbyStatus) {
	w.logger.Info("geofence transition", "sessionID", session.ID, "action", action)
	if w.opts.Observer != nil {
		w.opts.Observer.ObserveTransition(string(action))
	}
	if w.opts.Publisher == nil {
		return
	}
	event := events.Event{
		SessionID:  session.ID,
		Action:     action,
		Latitude:   session.LastPosition.Lat,
		Longitude:  session.LastPosition.Lon,
		Distance:   nearby.Distance,
		Message:    nearby.Message,
		OccurredAt: w.now(),
	}
	if err := w.opts.Publisher.Publish(ctx, event); err != nil {
		w.logger.Warn("failed to publish transition", "sessionID", session.ID, "error", err)
	}
}
