package barikoi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/barikoi/barikoi-go/geo"
	"github.com/barikoi/barikoi-go/transport"
)

type recorded struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
}

func (r *recorded) last(t *testing.T) (*http.Request, string) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		t.Fatal("no request recorded")
	}
	return r.requests[len(r.requests)-1], r.bodies[len(r.bodies)-1]
}

func newUpstream(t *testing.T, status int, response string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, r)
		rec.bodies = append(rec.bodies, string(body))
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestExplicitCredentialsOverrideEnvironment(t *testing.T) {
	t.Setenv("BARIKOI_API_KEY", "env-key")
	t.Setenv("BARIKOI_BASE_URL", "http://127.0.0.1:1/unused")

	srv, rec := newUpstream(t, http.StatusOK, `{"status":200,"place":{"address":"Mirpur"}}`)
	b, err := New(WithAPIKey("explicit-key"), WithBaseURL(srv.URL+"/v2/api"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := b.ReverseGeocode(context.Background(), 90.3572, 23.8067, transport.Options{"district": true})
	if err != nil {
		t.Fatalf("ReverseGeocode: %v", err)
	}
	if res.IsList() || res.Status() != 200 {
		t.Fatalf("unexpected result: %+v", res.Object())
	}
	if place, _ := res.Get("place"); place == nil {
		t.Fatalf("expected nested place, got %#v", res.Object())
	} else if _, ok := place.(map[string]any); !ok {
		t.Fatalf("expected nested place object, got %#v", place)
	}

	req, _ := rec.last(t)
	if req.URL.Path != "/v2/api/search/reverse/geocode" {
		t.Fatalf("unexpected path: %s", req.URL.Path)
	}
	q := req.URL.Query()
	if q.Get("api_key") != "explicit-key" || q.Get("district") != "true" {
		t.Fatalf("unexpected query: %s", req.URL.RawQuery)
	}
}

func TestEnvironmentDefaults(t *testing.T) {
	srv, rec := newUpstream(t, http.StatusOK, `[]`)
	t.Setenv("BARIKOI_API_KEY", "env-key")
	t.Setenv("BARIKOI_BASE_URL", srv.URL)

	b, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Client().APIKey() != "env-key" || b.Client().BaseURL() != srv.URL {
		t.Fatalf("unexpected credentials: %s %s", b.Client().APIKey(), b.Client().BaseURL())
	}
	if _, err := b.Administrative().Divisions(context.Background()); err != nil {
		t.Fatalf("Divisions: %v", err)
	}
	req, _ := rec.last(t)
	if req.URL.Query().Get("api_key") != "env-key" {
		t.Fatalf("unexpected query: %s", req.URL.RawQuery)
	}
}

func TestInvalidEnvironment(t *testing.T) {
	t.Setenv("BARIKOI_RATE_LIMIT", "-1")
	if _, err := New(); err == nil {
		t.Fatal("expected an error for a negative rate limit")
	}
	if _, err := New(WithAPIKey("k")); err == nil {
		t.Fatal("expected an error while the environment still supplies settings")
	}
}

func TestExplicitSettingsIgnoreMalformedEnvironment(t *testing.T) {
	t.Setenv("BARIKOI_TIMEOUT", "soon")
	t.Setenv("BARIKOI_RATE_LIMIT", "fast")

	srv, rec := newUpstream(t, http.StatusOK, `{"places":[]}`)
	b, err := New(WithAPIKey("explicit-key"), WithBaseURL(srv.URL), WithClientOptions(transport.DefaultClientOptions()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := b.SearchPlace(context.Background(), "mirpur", nil); err != nil {
		t.Fatalf("SearchPlace: %v", err)
	}
	req, _ := rec.last(t)
	if req.URL.Query().Get("api_key") != "explicit-key" {
		t.Fatalf("unexpected query: %s", req.URL.RawQuery)
	}
}

func TestServicesAreMemoized(t *testing.T) {
	b, err := New(WithAPIKey("k"), WithBaseURL("http://localhost"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var wg sync.WaitGroup
	var distinct atomic.Int32
	first := b.Location()
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.Location() != first {
				distinct.Add(1)
			}
		}()
	}
	wg.Wait()
	if distinct.Load() != 0 {
		t.Fatal("Location must return the same service")
	}
	if b.Route() != b.Route() || b.Administrative() != b.Administrative() || b.Geofence() != b.Geofence() {
		t.Fatal("services must be memoized")
	}

	other, _ := New(WithAPIKey("k"), WithBaseURL("http://localhost"))
	if other.Location() == first {
		t.Fatal("services must not be shared across instances")
	}
}

func TestAuthFailure(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusUnauthorized, `{"message":"Invalid key"}`)
	b, _ := New(WithAPIKey("bad"), WithBaseURL(srv.URL))

	_, err := b.Autocomplete(context.Background(), "dhaka", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if transport.KindOf(err) != transport.KindAuthFailed {
		t.Fatalf("unexpected kind: %v", transport.KindOf(err))
	}
	if !strings.Contains(err.Error(), "Authentication Failed") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestCalculateRouteBetween(t *testing.T) {
	srv, rec := newUpstream(t, http.StatusOK, `{"trip":{"legs":[]}}`)
	b, _ := New(WithAPIKey("k"), WithBaseURL("http://127.0.0.1:1"), WithNavigationHost(srv.URL))

	_, err := b.CalculateRouteBetween(context.Background(), StartDestination{
		Start:       geo.NewCoordinate(90.36, 23.80),
		Destination: geo.NewCoordinate(190, 23.75),
	}, nil)
	if !transport.IsValidation(err) || !strings.Contains(err.Error(), `"destination"`) {
		t.Fatalf("expected destination validation error, got %v", err)
	}
	rec.mu.Lock()
	n := len(rec.requests)
	rec.mu.Unlock()
	if n != 0 {
		t.Fatalf("invalid input must not reach the network, got %d requests", n)
	}

	res, err := b.CalculateRouteBetween(context.Background(), StartDestination{
		Start:       geo.NewCoordinate(90.36, 23.80),
		Destination: geo.NewCoordinate(90.41, 23.75),
	}, transport.Options{"type": "gh", "profile": "car"})
	if err != nil {
		t.Fatalf("CalculateRouteBetween: %v", err)
	}
	if trip, _ := res.Get("trip"); trip == nil {
		t.Fatalf("expected trip, got %#v", res.Object())
	}
	req, body := rec.last(t)
	if req.URL.Path != "/routing" || req.URL.Query().Get("key") != "k" {
		t.Fatalf("unexpected request: %s?%s", req.URL.Path, req.URL.RawQuery)
	}
	if !strings.Contains(body, `"latitude":23.8`) {
		t.Fatalf("unexpected body: %s", body)
	}
}
