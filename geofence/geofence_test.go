package geofence

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/barikoi/barikoi-go/transport"
)

type captured struct {
	method string
	path   string
	query  url.Values
	form   url.Values
}

func newTestService(t *testing.T, status int, body string) (*Service, *[]captured) {
	t.Helper()
	var calls []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		calls = append(calls, captured{method: r.Method, path: r.URL.Path, query: r.URL.Query(), form: r.PostForm})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewService(transport.NewClient("test-key", srv.URL)), &calls
}

func TestCheckNearby(t *testing.T) {
	svc, calls := newTestService(t, http.StatusOK, `{"message":"Inside geofence","status":200,"data":{"distance":13.2}}`)

	res, err := svc.CheckNearby(context.Background(), 23.76245, 90.37852, 23.76241, 90.37864, 50)
	if err != nil {
		t.Fatalf("CheckNearby: %v", err)
	}
	got := (*calls)[0]
	if got.path != "/check/nearby" {
		t.Fatalf("unexpected path: %s", got.path)
	}
	want := map[string]string{
		"destination_latitude":  "23.76245",
		"destination_longitude": "90.37852",
		"current_latitude":      "23.76241",
		"current_longitude":     "90.37864",
		"radius":                "50",
	}
	for k, v := range want {
		if got.query.Get(k) != v {
			t.Errorf("%s = %q, want %q", k, got.query.Get(k), v)
		}
	}

	status := ParseNearby(res)
	if !status.Inside || status.Distance != 13.2 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestCheckNearbyValidation(t *testing.T) {
	tests := []struct {
		name                       string
		destLat, destLng, lat, lng float64
		radius                     float64
	}{
		{"destination latitude", 100, 90.37, 23.76, 90.37, 50},
		{"destination longitude", 23.76, 200, 23.76, 90.37, 50},
		{"current latitude", 23.76, 90.37, -91, 90.37, 50},
		{"current longitude", 23.76, 90.37, 23.76, -190, 50},
		{"zero radius", 23.76, 90.37, 23.76, 90.37, 0},
		{"negative radius", 23.76, 90.37, 23.76, 90.37, -5},
		{"NaN destination", math.NaN(), 90.37, 23.76, 90.37, 50},
		{"NaN current longitude", 23.76, 90.37, 23.76, math.NaN(), 50},
		{"NaN radius", 23.76, 90.37, 23.76, 90.37, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, calls := newTestService(t, http.StatusOK, `{}`)
			_, err := svc.CheckNearby(context.Background(), tt.destLat, tt.destLng, tt.lat, tt.lng, tt.radius)
			if transport.KindOf(err) != transport.KindInvalidInput {
				t.Fatalf("expected invalid input, got %v", err)
			}
			if len(*calls) != 0 {
				t.Fatalf("expected no network call")
			}
		})
	}
}

func TestPointCRUD(t *testing.T) {
	svc, calls := newTestService(t, http.StatusOK, `{"status":200}`)
	ctx := context.Background()
	p := Point{Name: "office", Latitude: 23.8067, Longitude: 90.3572, Radius: 100}

	if _, err := svc.SetPoint(ctx, p); err != nil {
		t.Fatalf("SetPoint: %v", err)
	}
	if _, err := svc.GetPoints(ctx); err != nil {
		t.Fatalf("GetPoints: %v", err)
	}
	if _, err := svc.GetPoint(ctx, "42"); err != nil {
		t.Fatalf("GetPoint: %v", err)
	}
	if _, err := svc.UpdatePoint(ctx, "42", p); err != nil {
		t.Fatalf("UpdatePoint: %v", err)
	}
	if _, err := svc.DeletePoint(ctx, "42"); err != nil {
		t.Fatalf("DeletePoint: %v", err)
	}
	if _, err := svc.CheckGeofence(ctx, 23.8067, 90.3572); err != nil {
		t.Fatalf("CheckGeofence: %v", err)
	}

	want := []struct{ method, path string }{
		{http.MethodPost, "/geofence/set/point"},
		{http.MethodGet, "/geofence/points"},
		{http.MethodGet, "/geofence/point/42"},
		{http.MethodPost, "/geofence/update/point/42"},
		{http.MethodDelete, "/geofence/delete/point/42"},
		{http.MethodGet, "/geofence/check/point"},
	}
	if len(*calls) != len(want) {
		t.Fatalf("got %d calls, want %d", len(*calls), len(want))
	}
	for i, w := range want {
		if (*calls)[i].method != w.method || (*calls)[i].path != w.path {
			t.Errorf("call %d = %s %s, want %s %s", i, (*calls)[i].method, (*calls)[i].path, w.method, w.path)
		}
	}
	set := (*calls)[0].form
	if set.Get("name") != "office" || set.Get("radius") != "100" || set.Get("api_key") != "test-key" {
		t.Fatalf("unexpected form: %v", set)
	}
}

func TestPointValidation(t *testing.T) {
	svc, calls := newTestService(t, http.StatusOK, `{}`)
	ctx := context.Background()

	bad := []Point{
		{Name: "", Latitude: 23.8, Longitude: 90.3, Radius: 10},
		{Name: "x", Latitude: 95, Longitude: 90.3, Radius: 10},
		{Name: "x", Latitude: 23.8, Longitude: 90.3, Radius: 0},
		{Name: "x", Latitude: 23.8, Longitude: 90.3, Radius: math.NaN()},
		{Name: "x", Latitude: math.NaN(), Longitude: 90.3, Radius: 10},
	}
	for _, p := range bad {
		if _, err := svc.SetPoint(ctx, p); !transport.IsValidation(err) {
			t.Errorf("SetPoint(%+v) = %v, want validation error", p, err)
		}
	}
	if _, err := svc.DeletePoint(ctx, "../points"); !transport.IsValidation(err) {
		t.Errorf("expected validation error for non numeric id, got %v", err)
	}
	if len(*calls) != 0 {
		t.Fatalf("expected no network calls, got %d", len(*calls))
	}
}

func TestParseNearby(t *testing.T) {
	tests := []struct {
		body   string
		inside bool
	}{
		{`{"message":"Inside geofence","distance":4.5}`, true},
		{`{"message":"Outside geofence"}`, false},
		{`{"message":"Not inside the radius"}`, false},
		{`{}`, false},
	}
	for _, tt := range tests {
		got := ParseNearby(transport.NewResult(200, []byte(tt.body)))
		if got.Inside != tt.inside {
			t.Errorf("ParseNearby(%s).Inside = %v, want %v", tt.body, got.Inside, tt.inside)
		}
	}
}

func TestCheckNearbyAuthFailure(t *testing.T) {
	svc, _ := newTestService(t, http.StatusUnauthorized, `{"message":"Invalid key"}`)
	_, err := svc.CheckNearby(context.Background(), 23.76, 90.37, 23.76, 90.37, 50)
	if transport.KindOf(err) != transport.KindAuthFailed {
		t.Fatalf("expected auth failure, got %v", err)
	}
}
