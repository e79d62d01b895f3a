// Package barikoi is the entry point to the Barikoi location APIs. A Barikoi
// value owns one transport client shared by the location, route,
// administrative and geofence services, which are built on first use.
package barikoi

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/barikoi/barikoi-go/administrative"
	"github.com/barikoi/barikoi-go/geo"
	"github.com/barikoi/barikoi-go/geofence"
	"github.com/barikoi/barikoi-go/internal/config"
	"github.com/barikoi/barikoi-go/location"
	"github.com/barikoi/barikoi-go/route"
	"github.com/barikoi/barikoi-go/transport"
)

type settings struct {
	apiKey         *string
	baseURL        *string
	clientOptions  *transport.ClientOptions
	navigationHost string
}

type Option func(*settings)

// WithAPIKey overrides BARIKOI_API_KEY.
func WithAPIKey(key string) Option {
	return func(s *settings) { s.apiKey = &key }
}

// WithBaseURL overrides BARIKOI_BASE_URL.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) { s.baseURL = &baseURL }
}

// WithClientOptions replaces the transport options derived from the
// environment (timeout and rate limit).
func WithClientOptions(opts transport.ClientOptions) Option {
	return func(s *settings) { s.clientOptions = &opts }
}

// WithNavigationHost points CalculateRoute at another navigation host.
func WithNavigationHost(host string) Option {
	return func(s *settings) { s.navigationHost = host }
}

type Barikoi struct {
	client         *transport.Client
	navigationHost string

	locationOnce       sync.Once
	location           *location.Service
	routeOnce          sync.Once
	route              *route.Service
	administrativeOnce sync.Once
	administrative     *administrative.Service
	geofenceOnce       sync.Once
	geofence           *geofence.Service
}

// New builds a client. Settings not given as options are read from the
// environment, which is not consulted at all when every setting is explicit.
func New(options ...Option) (*Barikoi, error) {
	var s settings
	for _, opt := range options {
		opt(&s)
	}

	var defaults config.SDK
	if s.apiKey == nil || s.baseURL == nil || s.clientOptions == nil {
		var err error
		if defaults, err = config.LoadSDK(); err != nil {
			return nil, err
		}
	}
	apiKey := defaults.APIKey
	if s.apiKey != nil {
		apiKey = *s.apiKey
	}
	baseURL := defaults.BaseURL
	if s.baseURL != nil {
		baseURL = *s.baseURL
	}

	var clientOpts transport.ClientOptions
	if s.clientOptions != nil {
		clientOpts = *s.clientOptions
	} else {
		clientOpts = transport.DefaultClientOptions()
		if defaults.Timeout > 0 {
			clientOpts.Timeout = defaults.Timeout
		}
		if defaults.RateLimit > 0 {
			clientOpts.Limiter = rate.NewLimiter(rate.Limit(defaults.RateLimit), max(1, int(defaults.RateLimit)))
		}
	}

	return &Barikoi{
		client:         transport.NewClient(apiKey, baseURL, clientOpts),
		navigationHost: s.navigationHost,
	}, nil
}

// Client returns the transport client shared by every service.
func (b *Barikoi) Client() *transport.Client {
	return b.client
}

func (b *Barikoi) Location() *location.Service {
	b.locationOnce.Do(func() {
		b.location = location.NewService(b.client)
	})
	return b.location
}

func (b *Barikoi) Route() *route.Service {
	b.routeOnce.Do(func() {
		var opts []route.Option
		if b.navigationHost != "" {
			opts = append(opts, route.WithNavigationHost(b.navigationHost))
		}
		b.route = route.NewService(b.client, opts...)
	})
	return b.route
}

func (b *Barikoi) Administrative() *administrative.Service {
	b.administrativeOnce.Do(func() {
		b.administrative = administrative.NewService(b.client)
	})
	return b.administrative
}

func (b *Barikoi) Geofence() *geofence.Service {
	b.geofenceOnce.Do(func() {
		b.geofence = geofence.NewService(b.client)
	})
	return b.geofence
}

func (b *Barikoi) ReverseGeocode(ctx context.Context, longitude, latitude float64, opts transport.Options) (*transport.Result, error) {
	return b.Location().ReverseGeocode(ctx, longitude, latitude, opts)
}

func (b *Barikoi) Autocomplete(ctx context.Context, query string, opts transport.Options) (*transport.Result, error) {
	return b.Location().Autocomplete(ctx, query, opts)
}

func (b *Barikoi) SearchPlace(ctx context.Context, query string, opts transport.Options) (*transport.Result, error) {
	return b.Location().SearchPlace(ctx, query, opts)
}

func (b *Barikoi) Geocode(ctx context.Context, address string, opts transport.Options) (*transport.Result, error) {
	return b.Location().Geocode(ctx, address, opts)
}

func (b *Barikoi) PlaceDetails(ctx context.Context, placeCode string, opts transport.Options) (*transport.Result, error) {
	return b.Location().PlaceDetails(ctx, placeCode, opts)
}

func (b *Barikoi) SnapToRoad(ctx context.Context, latitude, longitude float64) (*transport.Result, error) {
	return b.Location().SnapToRoad(ctx, latitude, longitude)
}

// Nearby finds places within distance kilometres.
func (b *Barikoi) Nearby(ctx context.Context, longitude, latitude, distance float64, limit int, opts transport.Options) (*transport.Result, error) {
	return b.Location().Nearby(ctx, longitude, latitude, distance, limit, opts)
}

func (b *Barikoi) NearbyWithCategory(ctx context.Context, longitude, latitude float64, category string, distance float64, limit int) (*transport.Result, error) {
	return b.Location().NearbyWithCategory(ctx, longitude, latitude, category, distance, limit)
}

func (b *Barikoi) NearbyWithTypes(ctx context.Context, longitude, latitude float64, types []string, distance float64, limit int) (*transport.Result, error) {
	return b.Location().NearbyWithTypes(ctx, longitude, latitude, types, distance, limit)
}

func (b *Barikoi) PointInPolygon(ctx context.Context, longitude, latitude float64, polygon []geo.Coordinate) (*transport.Result, error) {
	return b.Location().PointInPolygon(ctx, longitude, latitude, polygon)
}

// CheckNearby reports whether the current position is within radius metres
// of the destination.
func (b *Barikoi) CheckNearby(ctx context.Context, destinationLatitude, destinationLongitude, currentLatitude, currentLongitude, radius float64) (*transport.Result, error) {
	return b.Geofence().CheckNearby(ctx, destinationLatitude, destinationLongitude, currentLatitude, currentLongitude, radius)
}

func (b *Barikoi) RouteOverview(ctx context.Context, points []geo.Coordinate, opts transport.Options) (*transport.Result, error) {
	return b.Route().Overview(ctx, points, opts)
}

func (b *Barikoi) RouteDetailed(ctx context.Context, points []geo.Coordinate, opts transport.Options) (*transport.Result, error) {
	return b.Route().Detailed(ctx, points, opts)
}

func (b *Barikoi) OptimizedRoute(ctx context.Context, source, destination string, waypoints []route.Waypoint, opts transport.Options) (*transport.Result, error) {
	return b.Route().OptimizedRoute(ctx, source, destination, waypoints, opts)
}

// DetailedNavigation calls the navigation API with turn by turn instructions.
func (b *Barikoi) DetailedNavigation(ctx context.Context, startLatitude, startLongitude, destinationLatitude, destinationLongitude float64, opts transport.Options) (*transport.Result, error) {
	return b.Route().CalculateRoute(ctx, startLatitude, startLongitude, destinationLatitude, destinationLongitude, opts)
}

// StartDestination is a trip from Start to Destination.
type StartDestination struct {
	Start       geo.Coordinate `json:"start"`
	Destination geo.Coordinate `json:"destination"`
}

func (sd StartDestination) Validate() error {
	if sd.Start.Validate() != nil {
		return transport.NewValidationError(`Invalid coordinates: "start" latitude must be between -90 and 90, longitude between -180 and 180.`)
	}
	if sd.Destination.Validate() != nil {
		return transport.NewValidationError(`Invalid coordinates: "destination" latitude must be between -90 and 90, longitude between -180 and 180.`)
	}
	return nil
}

// CalculateRouteBetween is DetailedNavigation for a StartDestination pair.
func (b *Barikoi) CalculateRouteBetween(ctx context.Context, trip StartDestination, opts transport.Options) (*transport.Result, error) {
	if err := trip.Validate(); err != nil {
		return nil, fmt.Errorf("failed to calculate route: %w", err)
	}
	return b.DetailedNavigation(ctx, trip.Start.Latitude, trip.Start.Longitude, trip.Destination.Latitude, trip.Destination.Longitude, opts)
}
