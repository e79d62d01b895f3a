// Package location wraps the Barikoi geocoding, search and place endpoints.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/barikoi/barikoi-go/geo"
	"github.com/barikoi/barikoi-go/transport"
)

var (
	reverseGeocodeEndpoint = transport.Endpoint{Name: "location.reverse_geocode", Path: "/search/reverse/geocode"}
	autocompleteEndpoint   = transport.Endpoint{Name: "location.autocomplete", Path: "/search/autocomplete/place"}
	geocodeEndpoint        = transport.Endpoint{Name: "location.geocode", Path: "/search/rupantor/geocode"}
	searchPlaceEndpoint    = transport.Endpoint{Name: "location.search_place", Path: "/search-place"}
	snapToRoadEndpoint     = transport.Endpoint{Name: "location.snap_to_road", Path: "/routing/nearby"}
	pointInPolygonEndpoint = transport.Endpoint{Name: "location.point_in_polygon", Path: "/point/polygon"}
)

type Service struct {
	client *transport.Client
}

func NewService(client *transport.Client) *Service {
	return &Service{client: client}
}

// ReverseGeocode resolves a coordinate to an address. Boolean options such as
// district or post_code are sent as "true"/"false".
func (s *Service) ReverseGeocode(ctx context.Context, longitude, latitude float64, opts transport.Options) (*transport.Result, error) {
	point := geo.NewCoordinate(longitude, latitude)
	if err := point.Validate(); err != nil {
		return nil, transport.NewValidationError("%v", err)
	}
	params, err := opts.Encode(transport.BoolTrueFalse)
	if err != nil {
		return nil, err
	}
	params["longitude"] = geo.FormatFloat(longitude)
	params["latitude"] = geo.FormatFloat(latitude)
	return s.client.Get(ctx, reverseGeocodeEndpoint, params)
}

// Autocomplete returns place suggestions for a partial query. Only options
// listed in AutocompleteOptions are accepted.
func (s *Service) Autocomplete(ctx context.Context, query string, opts transport.Options) (*transport.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, transport.NewValidationError("query must not be empty")
	}
	for _, key := range opts.Keys() {
		if !AutocompleteOption(key).IsValid() {
			return nil, transport.NewValidationError("invalid autocomplete option %q (allowed: %s)", key, strings.Join(autocompleteOptionNames(), ", "))
		}
	}
	params, err := opts.Encode(transport.BoolTrueFalse)
	if err != nil {
		return nil, err
	}
	params["q"] = query
	return s.client.Get(ctx, autocompleteEndpoint, params)
}

// Geocode converts a free-form address to coordinates using the Rupantor
// engine. Boolean options are sent as "yes"/"no".
func (s *Service) Geocode(ctx context.Context, address string, opts transport.Options) (*transport.Result, error) {
	if strings.TrimSpace(address) == "" {
		return nil, transport.NewValidationError("address must not be empty")
	}
	params, err := opts.Encode(transport.BoolYesNo)
	if err != nil {
		return nil, err
	}
	params["q"] = address
	return s.client.Post(ctx, geocodeEndpoint, params)
}

func (s *Service) SearchPlace(ctx context.Context, query string, opts transport.Options) (*transport.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, transport.NewValidationError("query must not be empty")
	}
	params, err := opts.Encode(transport.BoolTrueFalse)
	if err != nil {
		return nil, err
	}
	params["q"] = query
	return s.client.Get(ctx, searchPlaceEndpoint, params)
}

// PlaceDetails fetches one place by its place code. A session_id option is
// forwarded when present.
func (s *Service) PlaceDetails(ctx context.Context, placeCode string, opts transport.Options) (*transport.Result, error) {
	placeCode = strings.TrimSpace(placeCode)
	if placeCode == "" {
		return nil, transport.NewValidationError("place code must not be empty")
	}
	params, err := opts.Encode(transport.BoolTrueFalse)
	if err != nil {
		return nil, err
	}
	ep := transport.Endpoint{Name: "location.place_details", Path: "/place/" + url.PathEscape(placeCode)}
	return s.client.Get(ctx, ep, params)
}

// Nearby lists places within distance kilometres of a point, at most limit
// results. The coordinate is not range checked.
func (s *Service) Nearby(ctx context.Context, longitude, latitude, distance float64, limit int, opts transport.Options) (*transport.Result, error) {
	params, err := nearbyParams(longitude, latitude, distance, limit, opts)
	if err != nil {
		return nil, err
	}
	ep := transport.Endpoint{Name: "location.nearby", Path: nearbyPath("/search/nearby", distance, limit)}
	return s.client.Get(ctx, ep, params)
}

// NearbyWithCategory is Nearby restricted to one place category.
func (s *Service) NearbyWithCategory(ctx context.Context, longitude, latitude float64, category string, distance float64, limit int) (*transport.Result, error) {
	if strings.TrimSpace(category) == "" {
		return nil, transport.NewValidationError("category must not be empty")
	}
	params, err := nearbyParams(longitude, latitude, distance, limit, nil)
	if err != nil {
		return nil, err
	}
	params["category"] = category
	ep := transport.Endpoint{Name: "location.nearby_category", Path: nearbyPath("/search/nearby/category", distance, limit)}
	return s.client.Get(ctx, ep, params)
}

// NearbyWithTypes is Nearby restricted to several place types.
func (s *Service) NearbyWithTypes(ctx context.Context, longitude, latitude float64, types []string, distance float64, limit int) (*transport.Result, error) {
	cleaned := make([]string, 0, len(types))
	for _, t := range types {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return nil, transport.NewValidationError("at least one place type is required")
	}
	params, err := nearbyParams(longitude, latitude, distance, limit, nil)
	if err != nil {
		return nil, err
	}
	params["ptype"] = strings.Join(cleaned, ",")
	ep := transport.Endpoint{Name: "location.nearby_types", Path: nearbyPath("/search/nearby/multi", distance, limit)}
	return s.client.Get(ctx, ep, params)
}

// SnapToRoad returns the closest road point to the given position.
func (s *Service) SnapToRoad(ctx context.Context, latitude, longitude float64) (*transport.Result, error) {
	point := geo.NewCoordinate(longitude, latitude)
	if err := point.Validate(); err != nil {
		return nil, transport.NewValidationError("%v", err)
	}
	return s.client.Get(ctx, snapToRoadEndpoint, transport.Params{"point": point.LatLon()})
}

// PointInPolygon checks whether a point lies inside polygon. The polygon is
// sent as a JSON array of [longitude, latitude] pairs.
func (s *Service) PointInPolygon(ctx context.Context, longitude, latitude float64, polygon []geo.Coordinate) (*transport.Result, error) {
	point := geo.NewCoordinate(longitude, latitude)
	if err := point.Validate(); err != nil {
		return nil, transport.NewValidationError("%v", err)
	}
	if len(polygon) < 3 {
		return nil, transport.NewValidationError("polygon needs at least 3 vertices, got %d", len(polygon))
	}
	vertices := make([][2]float64, 0, len(polygon))
	for i, v := range polygon {
		if err := v.Validate(); err != nil {
			return nil, transport.NewValidationError("polygon vertex %d: %v", i, err)
		}
		vertices = append(vertices, [2]float64{v.Longitude, v.Latitude})
	}
	encoded, err := json.Marshal(vertices)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal polygon: %w", err)
	}
	return s.client.Post(ctx, pointInPolygonEndpoint, transport.Params{
		"longitude": geo.FormatFloat(longitude),
		"latitude":  geo.FormatFloat(latitude),
		"polygon":   string(encoded),
	})
}

func nearbyParams(longitude, latitude, distance float64, limit int, opts transport.Options) (transport.Params, error) {
	if !(distance > 0) || math.IsInf(distance, 1) {
		return nil, transport.NewValidationError("distance must be positive, got %v", distance)
	}
	if limit <= 0 {
		return nil, transport.NewValidationError("limit must be positive, got %d", limit)
	}
	params, err := opts.Encode(transport.BoolTrueFalse)
	if err != nil {
		return nil, err
	}
	params["longitude"] = geo.FormatFloat(longitude)
	params["latitude"] = geo.FormatFloat(latitude)
	return params, nil
}

func nearbyPath(prefix string, distance float64, limit int) string {
	return prefix + "/" + geo.FormatFloat(distance) + "/" + strconv.Itoa(limit)
}
