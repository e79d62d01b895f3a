// Package route wraps the Barikoi routing, optimization and map matching
// endpoints.
package route

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/barikoi/barikoi-go/geo"
	"github.com/barikoi/barikoi-go/transport"
)

var (
	optimizeEndpoint   = transport.Endpoint{Name: "route.optimize", Path: "/route/location/optimize"}
	navigationEndpoint = transport.Endpoint{Name: "route.navigation", Path: "/routing"}
	optimizedEndpoint  = transport.Endpoint{Name: "route.optimized", Path: "/route/optimized"}
)

const defaultGeometries = "polyline"

type Service struct {
	client *transport.Client
	// navigationHost, when set, replaces the base URL of CalculateRoute.
	navigationHost string
}

type Option func(*Service)

// WithNavigationHost sends CalculateRoute to a different API root.
func WithNavigationHost(host string) Option {
	return func(s *Service) {
		s.navigationHost = strings.TrimRight(host, "/")
	}
}

func NewService(client *transport.Client, opts ...Option) *Service {
	s := &Service{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Overview returns a route through points with its geometry, distance and
// duration. profile defaults to car.
func (s *Service) Overview(ctx context.Context, points []geo.Coordinate, opts transport.Options) (*transport.Result, error) {
	params, coords, err := prepareRoute(points, opts, true)
	if err != nil {
		return nil, err
	}
	ep := transport.Endpoint{Name: "route.overview", Path: "/route/" + coords}
	return s.client.Get(ctx, ep, params)
}

// Detailed is Overview with turn-by-turn options such as steps and
// alternatives.
func (s *Service) Detailed(ctx context.Context, points []geo.Coordinate, opts transport.Options) (*transport.Result, error) {
	params, coords, err := prepareRoute(points, opts, true)
	if err != nil {
		return nil, err
	}
	ep := transport.Endpoint{Name: "route.detailed", Path: "/route/" + coords}
	return s.client.Get(ctx, ep, params)
}

// Distance is Overview between two points.
func (s *Service) Distance(ctx context.Context, fromLongitude, fromLatitude, toLongitude, toLatitude float64, opts transport.Options) (*transport.Result, error) {
	return s.Overview(ctx, []geo.Coordinate{
		geo.NewCoordinate(fromLongitude, fromLatitude),
		geo.NewCoordinate(toLongitude, toLatitude),
	}, opts)
}

// Directions is Detailed between two points.
func (s *Service) Directions(ctx context.Context, fromLongitude, fromLatitude, toLongitude, toLatitude float64, opts transport.Options) (*transport.Result, error) {
	return s.Detailed(ctx, []geo.Coordinate{
		geo.NewCoordinate(fromLongitude, fromLatitude),
		geo.NewCoordinate(toLongitude, toLatitude),
	}, opts)
}

// Optimize reorders points to minimize travel. Points are sent as JSON.
func (s *Service) Optimize(ctx context.Context, points []geo.Coordinate, opts transport.Options) (*transport.Result, error) {
	if len(points) < 2 {
		return nil, transport.NewValidationError("at least 2 points must be provided")
	}
	for i, p := range points {
		if err := p.Validate(); err != nil {
			return nil, transport.NewValidationError("point %d: %v", i, err)
		}
	}
	opts, err := withProfile(opts)
	if err != nil {
		return nil, err
	}
	params, err := opts.Encode(transport.BoolTrueFalse)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(points)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal points: %w", err)
	}
	params["points"] = string(encoded)
	return s.client.Post(ctx, optimizeEndpoint, params)
}

// Match snaps a GPS trace onto the road network.
func (s *Service) Match(ctx context.Context, points []geo.Coordinate, opts transport.Options) (*transport.Result, error) {
	params, coords, err := prepareRoute(points, opts, false)
	if err != nil {
		return nil, err
	}
	ep := transport.Endpoint{Name: "route.match", Path: "/match/" + coords}
	return s.client.Get(ctx, ep, params)
}

// CalculateRoute returns turn-by-turn navigation between two points. The
// "type" option picks the engine (vh by default) and "profile" the vehicle
// (motorcycle by default); vh only supports motorcycle. An unsupported
// choice fails with a *transport.ValidationError whose Code is
// invalid_type, invalid_profile or unsupported_combination.
func (s *Service) CalculateRoute(ctx context.Context, startLatitude, startLongitude, destinationLatitude, destinationLongitude float64, opts transport.Options) (*transport.Result, error) {
	routeType, profile, err := navigationChoice(opts)
	if err != nil {
		return nil, err
	}
	start := geo.NewCoordinate(startLongitude, startLatitude)
	if err := start.Validate(); err != nil {
		return nil, transport.NewValidationError("start: %v", err)
	}
	destination := geo.NewCoordinate(destinationLongitude, destinationLatitude)
	if err := destination.Validate(); err != nil {
		return nil, transport.NewValidationError("destination: %v", err)
	}

	query := transport.Params{
		"type":    string(routeType),
		"profile": string(profile),
	}
	if cc, ok := opts["country_code"]; ok {
		query["country_code"] = fmt.Sprint(cc)
	}

	body := navigationRequest{Data: navigationData{
		Start:       latLng{Latitude: startLatitude, Longitude: startLongitude},
		Destination: latLng{Latitude: destinationLatitude, Longitude: destinationLongitude},
	}}
	ep := navigationEndpoint
	ep.Host = s.navigationHost
	return s.client.PostJSON(ctx, ep, query, body)
}

// OptimizedRoute routes from source to destination through waypoints, visited
// in ascending ID order. source and destination are "lat,lng". The only
// option is profile, which defaults to car and may be car, bike or motorcycle.
func (s *Service) OptimizedRoute(ctx context.Context, source, destination string, waypoints []Waypoint, opts transport.Options) (*transport.Result, error) {
	if len(waypoints) > MaxWaypoints {
		return nil, transport.NewRequestError("too_many_waypoints",
			fmt.Sprintf("Maximum %d waypoints allowed", MaxWaypoints),
			map[string]any{"provided": len(waypoints), "maximum": MaxWaypoints})
	}

	for _, key := range opts.Keys() {
		if key != "profile" {
			return nil, transport.NewValidationError("invalid optimized route option %q (allowed: profile)", key)
		}
	}
	profile := NavigationProfileCar
	if opts.Has("profile") {
		profile = NavigationProfile(fmt.Sprint(opts["profile"]))
	}
	if !profile.IsValid() {
		return nil, transport.NewRequestError("invalid_profile",
			fmt.Sprintf("Profile '%s' is not valid", profile),
			map[string]any{"supported_profiles": []string{
				string(NavigationProfileCar), string(NavigationProfileBike), string(NavigationProfileMotorcycle),
			}})
	}

	if _, err := parseLatLng(source); err != nil {
		return nil, transport.NewValidationError("source: %v", err)
	}
	if _, err := parseLatLng(destination); err != nil {
		return nil, transport.NewValidationError("destination: %v", err)
	}
	sorted := make([]Waypoint, len(waypoints))
	copy(sorted, waypoints)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, w := range sorted {
		if err := w.Validate(); err != nil {
			return nil, transport.NewValidationError("%v", err)
		}
	}

	body := map[string]any{
		"source":      source,
		"destination": destination,
		"waypoints":   sorted,
		"profile":     string(profile),
	}
	return s.client.PostJSONWithKeyInBody(ctx, optimizedEndpoint, body)
}

func navigationChoice(opts transport.Options) (NavigationType, NavigationProfile, error) {
	routeType := NavigationTypeVH
	if opts.Has("type") {
		routeType = NavigationType(fmt.Sprint(opts["type"]))
	}
	profile := NavigationProfileMotorcycle
	if opts.Has("profile") {
		profile = NavigationProfile(fmt.Sprint(opts["profile"]))
	}

	if !routeType.IsValid() {
		return "", "", transport.NewRequestError("invalid_type",
			fmt.Sprintf("Type '%s' is not valid", routeType),
			map[string]any{"supported_types": append([]string(nil), navigationTypes...)})
	}
	if !profile.IsValid() {
		return "", "", transport.NewRequestError("invalid_profile",
			fmt.Sprintf("Profile '%s' is not valid", profile),
			map[string]any{"supported_profiles": append([]string(nil), navigationProfiles...)})
	}
	if !routeType.Supports(profile) {
		return "", "", transport.NewRequestError("unsupported_combination",
			fmt.Sprintf("Profile '%s' not supported for type '%s'", profile, routeType),
			map[string]any{
				"type":               string(routeType),
				"profile":            string(profile),
				"supported_profiles": append([]string(nil), supportedProfiles[routeType]...),
			})
	}
	return routeType, profile, nil
}

// prepareRoute validates points and encodes them as "lon,lat;lon,lat". When
// checkProfile is set the profile option is defaulted and checked.
func prepareRoute(points []geo.Coordinate, opts transport.Options, checkProfile bool) (transport.Params, string, error) {
	if len(points) < 2 {
		return nil, "", transport.NewValidationError("at least 2 points must be provided")
	}
	coords := make([]string, 0, len(points))
	for i, p := range points {
		if err := p.Validate(); err != nil {
			return nil, "", transport.NewValidationError("point %d: %v", i, err)
		}
		coords = append(coords, p.LonLat())
	}

	opts = opts.Clone()
	if checkProfile {
		var err error
		if opts, err = withProfile(opts); err != nil {
			return nil, "", err
		}
	}
	if !opts.Has("geometries") {
		opts["geometries"] = defaultGeometries
	}
	params, err := opts.Encode(transport.BoolTrueFalse)
	if err != nil {
		return nil, "", err
	}
	return params, strings.Join(coords, ";"), nil
}

func withProfile(opts transport.Options) (transport.Options, error) {
	opts = opts.Clone()
	if !opts.Has("profile") {
		opts["profile"] = string(ProfileCar)
	}
	profile := Profile(fmt.Sprint(opts["profile"]))
	if !profile.IsValid() {
		return nil, transport.NewValidationError("invalid profile %q (accepted: %s, %s)", profile, ProfileCar, ProfileFoot)
	}
	return opts, nil
}
