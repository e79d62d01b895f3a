// Package administrative looks up Bangladeshi administrative boundaries:
// divisions, districts, subdistricts, thanas, unions, city areas, wards and
// zones.
//
// Boundary data rarely changes, so every call goes through the client's
// response cache when one is configured.
package administrative

import (
	"context"
	"net/url"
	"strings"

	"github.com/barikoi/barikoi-go/geo"
	"github.com/barikoi/barikoi-go/transport"
)

var (
	divisionsEndpoint    = transport.Endpoint{Name: "administrative.divisions", Path: "/divisions"}
	districtsEndpoint    = transport.Endpoint{Name: "administrative.districts", Path: "/districts"}
	subdistrictsEndpoint = transport.Endpoint{Name: "administrative.subdistricts", Path: "/subdistricts"}
	thanasEndpoint       = transport.Endpoint{Name: "administrative.thanas", Path: "/thanas"}
	unionsEndpoint       = transport.Endpoint{Name: "administrative.unions", Path: "/unions"}
	areasEndpoint        = transport.Endpoint{Name: "administrative.areas", Path: "/areas"}
	cityAreasEndpoint    = transport.Endpoint{Name: "administrative.city_areas", Path: "/city/areas"}
	wardZoneEndpoint     = transport.Endpoint{Name: "administrative.ward_zone", Path: "/ward-zone"}
	wardEndpoint         = transport.Endpoint{Name: "administrative.ward", Path: "/ward"}
	wardGeometryEndpoint = transport.Endpoint{Name: "administrative.ward_geometry", Path: "/ward/geometry"}
	zonesEndpoint        = transport.Endpoint{Name: "administrative.zones", Path: "/zones"}
	zoneEndpoint         = transport.Endpoint{Name: "administrative.zone", Path: "/zone"}
)

type Service struct {
	client *transport.Client
}

func NewService(client *transport.Client) *Service {
	return &Service{client: client}
}

func (s *Service) Divisions(ctx context.Context) (*transport.Result, error) {
	return s.client.GetCached(ctx, divisionsEndpoint, nil)
}

// Districts lists districts, optionally only those of one division.
func (s *Service) Districts(ctx context.Context, division string) (*transport.Result, error) {
	return s.client.GetCached(ctx, districtsEndpoint, filter("division", division))
}

func (s *Service) Subdistricts(ctx context.Context, district string) (*transport.Result, error) {
	return s.client.GetCached(ctx, subdistrictsEndpoint, filter("district", district))
}

func (s *Service) Thanas(ctx context.Context, district string) (*transport.Result, error) {
	return s.client.GetCached(ctx, thanasEndpoint, filter("district", district))
}

func (s *Service) Unions(ctx context.Context, subdistrict string) (*transport.Result, error) {
	return s.client.GetCached(ctx, unionsEndpoint, filter("subdistrict", subdistrict))
}

func (s *Service) Areas(ctx context.Context, city string) (*transport.Result, error) {
	return s.client.GetCached(ctx, areasEndpoint, filter("city", city))
}

// CityWithAreas returns cities with their areas nested.
func (s *Service) CityWithAreas(ctx context.Context, city string) (*transport.Result, error) {
	return s.client.GetCached(ctx, cityAreasEndpoint, filter("city", city))
}

// WardAndZone finds the ward and zone containing a point.
func (s *Service) WardAndZone(ctx context.Context, longitude, latitude float64) (*transport.Result, error) {
	return s.client.GetCached(ctx, wardZoneEndpoint, point(longitude, latitude))
}

func (s *Service) Ward(ctx context.Context, longitude, latitude float64) (*transport.Result, error) {
	return s.client.GetCached(ctx, wardEndpoint, point(longitude, latitude))
}

func (s *Service) AllWardGeometry(ctx context.Context) (*transport.Result, error) {
	return s.client.GetCached(ctx, wardGeometryEndpoint, nil)
}

func (s *Service) WardGeometry(ctx context.Context, wardID string) (*transport.Result, error) {
	wardID = strings.TrimSpace(wardID)
	if wardID == "" {
		return nil, transport.NewValidationError("ward id must not be empty")
	}
	ep := transport.Endpoint{Name: "administrative.ward_geometry_by_id", Path: "/ward/geometry/" + url.PathEscape(wardID)}
	return s.client.GetCached(ctx, ep, nil)
}

func (s *Service) Zones(ctx context.Context) (*transport.Result, error) {
	return s.client.GetCached(ctx, zonesEndpoint, nil)
}

func (s *Service) Zone(ctx context.Context, longitude, latitude float64) (*transport.Result, error) {
	return s.client.GetCached(ctx, zoneEndpoint, point(longitude, latitude))
}

// CityCorporation resolves the Dhaka city corporation a point falls in.
func (s *Service) CityCorporation(ctx context.Context, longitude, latitude float64) (*transport.Result, error) {
	ep := transport.Endpoint{
		Name: "administrative.city_corporation",
		Path: "/search/dncc/" + geo.FormatFloat(longitude) + "/" + geo.FormatFloat(latitude),
	}
	return s.client.GetCached(ctx, ep, nil)
}

func filter(key, value string) transport.Params {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return transport.Params{key: value}
}

func point(longitude, latitude float64) transport.Params {
	return transport.Params{
		"longitude": geo.FormatFloat(longitude),
		"latitude":  geo.FormatFloat(latitude),
	}
}
