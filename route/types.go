package route

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/barikoi/barikoi-go/geo"
)

// Profile selects the travel mode of the /route endpoints.
type Profile string

const (
	ProfileCar  Profile = "car"
	ProfileFoot Profile = "foot"
)

func (p Profile) IsValid() bool {
	switch p {
	case ProfileCar, ProfileFoot:
		return true
	default:
		return false
	}
}

// NavigationType is the routing engine used by CalculateRoute.
type NavigationType string

const (
	// NavigationTypeVH only routes motorcycles.
	NavigationTypeVH NavigationType = "vh"
	NavigationTypeGH NavigationType = "gh"
)

// NavigationProfile is the vehicle used by CalculateRoute and OptimizedRoute.
type NavigationProfile string

const (
	NavigationProfileBike       NavigationProfile = "bike"
	NavigationProfileMotorcycle NavigationProfile = "motorcycle"
	NavigationProfileCar        NavigationProfile = "car"
)

func (p NavigationProfile) IsValid() bool {
	switch p {
	case NavigationProfileBike, NavigationProfileMotorcycle, NavigationProfileCar:
		return true
	default:
		return false
	}
}

var (
	navigationTypes    = []string{string(NavigationTypeVH), string(NavigationTypeGH)}
	navigationProfiles = []string{string(NavigationProfileBike), string(NavigationProfileMotorcycle), string(NavigationProfileCar)}

	supportedProfiles = map[NavigationType][]string{
		NavigationTypeVH: {string(NavigationProfileMotorcycle)},
		NavigationTypeGH: {string(NavigationProfileMotorcycle), string(NavigationProfileCar), string(NavigationProfileBike)},
	}
)

func (t NavigationType) IsValid() bool {
	_, ok := supportedProfiles[t]
	return ok
}

// Supports reports whether the engine can route the given profile.
func (t NavigationType) Supports(p NavigationProfile) bool {
	for _, s := range supportedProfiles[t] {
		if s == string(p) {
			return true
		}
	}
	return false
}

// MaxWaypoints is the most waypoints OptimizedRoute accepts.
const MaxWaypoints = 50

// Waypoint is an intermediate stop. Point is "lat,lng".
type Waypoint struct {
	ID    int    `json:"id"`
	Point string `json:"point"`
}

func (w Waypoint) Validate() error {
	if _, err := parseLatLng(w.Point); err != nil {
		return fmt.Errorf("waypoint %d: %w", w.ID, err)
	}
	return nil
}

// parseLatLng reads a "lat,lng" string.
func parseLatLng(s string) (geo.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geo.Coordinate{}, fmt.Errorf("point %q must be \"lat,lng\"", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("point %q: invalid latitude", s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("point %q: invalid longitude", s)
	}
	c := geo.NewCoordinate(lng, lat)
	if err := c.Validate(); err != nil {
		return geo.Coordinate{}, err
	}
	return c, nil
}

// navigationRequest is the JSON body of the /routing endpoint.
type navigationRequest struct {
	Data navigationData `json:"data"`
}

type navigationData struct {
	Start       latLng `json:"start"`
	Destination latLng `json:"destination"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
