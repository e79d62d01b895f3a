package geo

import "math"

// EarthRadius is the WGS84 equatorial radius in meters.
const EarthRadius = 6378137.0

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b Coordinate) float64 {
	lat1, lat2 := radians(a.Latitude), radians(b.Latitude)
	halfLat := math.Sin(radians(b.Latitude-a.Latitude) / 2)
	halfLon := math.Sin(radians(b.Longitude-a.Longitude) / 2)

	h := halfLat*halfLat + math.Cos(lat1)*math.Cos(lat2)*halfLon*halfLon
	return 2 * EarthRadius * math.Asin(math.Min(1, math.Sqrt(h)))
}

// DistanceToPolyline returns the distance in meters from point to the
// closest segment of line, or +Inf for an empty line.
func DistanceToPolyline(point Coordinate, line []Coordinate) float64 {
	switch len(line) {
	case 0:
		return math.Inf(1)
	case 1:
		return Haversine(point, line[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(line); i++ {
		best = math.Min(best, segmentDistance(point, line[i-1], line[i]))
	}
	return best
}

// IsPointNearPolyline reports whether point lies within tolerance meters of
// line.
func IsPointNearPolyline(point Coordinate, line []Coordinate, tolerance float64) bool {
	return DistanceToPolyline(point, line) <= tolerance
}

// plane maps coordinates to meters on a flat tangent plane around a
// reference latitude. Accurate for the short segments of a route.
type plane struct {
	cosLat float64
}

func (p plane) xy(c Coordinate) (x, y float64) {
	return radians(c.Longitude) * EarthRadius * p.cosLat, radians(c.Latitude) * EarthRadius
}

func segmentDistance(point, from, to Coordinate) float64 {
	p := plane{cosLat: math.Cos(radians((from.Latitude + to.Latitude) / 2))}
	ax, ay := p.xy(from)
	bx, by := p.xy(to)
	px, py := p.xy(point)

	dx, dy := bx-ax, by-ay
	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lengthSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}
