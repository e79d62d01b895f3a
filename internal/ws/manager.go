package ws

import (
	"context"
	"log/slog"
	"sync"

	"github.com/coder/websocket"

	"github.com/barikoi/barikoi-go/internal/watch"
)

// Watcher is the geofence tracking the clients drive.
type Watcher interface {
	Start(ctx context.Context, sessionID string, req watch.Init) (*watch.Session, error)
	Update(ctx context.Context, sessionID string, pos watch.Position) (*watch.Status, error)
	End(ctx context.Context, sessionID string) error
}

type ConnectionObserver interface {
	ClientConnected()
	ClientDisconnected()
}

type Manager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	ctx        context.Context
	cancel     context.CancelFunc
	logger     *slog.Logger
	watcher    Watcher
	observer   ConnectionObserver
}

func NewManager(ctx context.Context, logger *slog.Logger, watcher Watcher, observer ConnectionObserver) *Manager {
	ctx, cancel := context.WithCancel(ctx)
	return &Manager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
		watcher:    watcher,
		observer:   observer,
	}
}

func (m *Manager) Start() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			if previous, ok := m.clients[client.ID]; ok {
				delete(m.clients, previous.ID)
				m.disconnected()
				go previous.Close()
			}
			m.clients[client.ID] = client
			m.mu.Unlock()
			if m.observer != nil {
				m.observer.ClientConnected()
			}
			m.logger.Info("client connected", "clientID", client.ID)
		case client := <-m.unregister:
			m.mu.Lock()
			if current, ok := m.clients[client.ID]; ok && current == client {
				delete(m.clients, client.ID)
				m.disconnected()
				m.logger.Info("client disconnected", "clientID", client.ID)
			}
			m.mu.Unlock()
		case <-m.ctx.Done():
			return
		}
	}
}

// HandleNewConnection starts serving conn for a watch session.
func (m *Manager) HandleNewConnection(sessionID string, conn *websocket.Conn) {
	client := NewClient(m.ctx, sessionID, conn, m)
	client.Start()
}

// SendTo queues message for the client of sessionID. It reports false when
// that session has no client on this instance.
func (m *Manager) SendTo(sessionID string, message Message) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	client, ok := m.clients[sessionID]
	if !ok {
		return false
	}
	client.Send(message)
	return true
}

func (m *Manager) disconnected() {
	if m.observer != nil {
		m.observer.ClientDisconnected()
	}
}

func (m *Manager) Shutdown() {
	m.cancel()
	m.mu.Lock()
	for _, client := range m.clients {
		client.Close()
	}
	m.mu.Unlock()
}
