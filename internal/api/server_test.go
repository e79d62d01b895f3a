package api

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/barikoi/barikoi-go/internal/config"
)

type nopConnections struct {
	sessions chan string
}

func (n *nopConnections) HandleNewConnection(sessionID string, conn *websocket.Conn) {
	n.sessions <- sessionID
	_ = conn.CloseNow()
}

func newTestServer(metrics http.Handler) (*Server, *nopConnections) {
	conns := &nopConnections{sessions: make(chan string, 1)}
	return NewServer(&config.Config{APIServerPort: "0"}, conns, metrics, slog.New(slog.DiscardHandler)), conns
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(nil)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "started") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestWatchRequiresSessionID(t *testing.T) {
	s, conns := newTestServer(nil)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/watch", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if len(conns.sessions) != 0 {
		t.Fatalf("no connection should be handed over")
	}
}

func TestMetricsRoute(t *testing.T) {
	s, _ := newTestServer(nil)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("metrics must not be served without a handler, got %d", rec.Code)
	}

	s, _ = newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("barikoi_up 1"))
	}))
	rec = httptest.NewRecorder()
	s.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "barikoi_up 1" {
		t.Fatalf("unexpected metrics response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestWatchHandsOverConnection(t *testing.T) {
	s, conns := newTestServer(nil)
	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/watch?session_id=abc"
	conn, _, err := websocket.Dial(t.Context(), url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	select {
	case id := <-conns.sessions:
		if id != "abc" {
			t.Fatalf("unexpected session: %s", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("connection was not handed over")
	}
}
