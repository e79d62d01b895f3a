package geo

import (
	"math"
	"testing"
)

func TestCoordinateValidate(t *testing.T) {
	tests := []struct {
		name    string
		coord   Coordinate
		wantErr bool
	}{
		{"dhaka", NewCoordinate(90.3572, 23.8067), false},
		{"bounds", NewCoordinate(180, -90), false},
		{"latitude too high", NewCoordinate(90.3572, 91), true},
		{"latitude too low", NewCoordinate(90.3572, -90.0001), true},
		{"longitude too high", NewCoordinate(181, 23.8), true},
		{"longitude too low", NewCoordinate(-180.5, 23.8), true},
		{"latitude NaN", NewCoordinate(90.3572, math.NaN()), true},
		{"longitude NaN", NewCoordinate(math.NaN(), 23.8), true},
		{"longitude infinite", NewCoordinate(math.Inf(1), 23.8), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coord.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCoordinateFormatting(t *testing.T) {
	c := NewCoordinate(90.3572, 23.8067)
	if got := c.LonLat(); got != "90.3572,23.8067" {
		t.Errorf("LonLat() = %q", got)
	}
	if got := c.LatLon(); got != "23.8067,90.3572" {
		t.Errorf("LatLon() = %q", got)
	}
	if got := FormatFloat(1.0); got != "1" {
		t.Errorf("FormatFloat(1.0) = %q", got)
	}
	if got := FormatFloat(0.5); got != "0.5" {
		t.Errorf("FormatFloat(0.5) = %q", got)
	}
}

func TestHaversine(t *testing.T) {
	a := NewCoordinate(90.3572, 23.8067)
	if d := Haversine(a, a); d != 0 {
		t.Fatalf("distance to self = %v", d)
	}

	// One thousandth of a degree of latitude is roughly 111 meters.
	b := NewCoordinate(90.3572, 23.8077)
	d := Haversine(a, b)
	if math.Abs(d-111.3) > 1 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestIsPointNearPolyline(t *testing.T) {
	line := []Coordinate{
		NewCoordinate(90.3500, 23.8000),
		NewCoordinate(90.3600, 23.8000),
	}

	if IsPointNearPolyline(NewCoordinate(90.355, 23.8), nil, 10) {
		t.Error("empty polyline must never contain a point")
	}
	if !IsPointNearPolyline(NewCoordinate(90.355, 23.8001), line, 30) {
		t.Error("point ~11m off the segment should be inside a 30m tolerance")
	}
	if IsPointNearPolyline(NewCoordinate(90.355, 23.8100), line, 30) {
		t.Error("point ~1.1km off the segment should be outside a 30m tolerance")
	}
	if !IsPointNearPolyline(NewCoordinate(90.35, 23.8), line[:1], 1) {
		t.Error("single point polyline should match itself")
	}
}

func TestDistanceToPolyline(t *testing.T) {
	line := []Coordinate{
		NewCoordinate(90.3500, 23.8000),
		NewCoordinate(90.3600, 23.8000),
		NewCoordinate(90.3600, 23.8100),
	}

	if d := DistanceToPolyline(NewCoordinate(90.355, 23.8), nil); !math.IsInf(d, 1) {
		t.Fatalf("empty line distance = %v, want +Inf", d)
	}
	if d := DistanceToPolyline(NewCoordinate(90.355, 23.8), line); d > 0.01 {
		t.Fatalf("point on the first segment, got %v", d)
	}
	// Closest to the second leg, about 0.001 degrees of longitude east of it.
	d := DistanceToPolyline(NewCoordinate(90.361, 23.805), line)
	if math.Abs(d-102) > 2 {
		t.Fatalf("unexpected distance to the second leg: %v", d)
	}
	// Beyond the end of the line the distance is to the last vertex.
	end := NewCoordinate(90.3600, 23.8110)
	if got, want := DistanceToPolyline(end, line), Haversine(end, line[2]); math.Abs(got-want) > 0.5 {
		t.Fatalf("distance past the end = %v, want %v", got, want)
	}
}
