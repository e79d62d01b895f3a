package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/barikoi/barikoi-go/internal/watch"
)

const (
	// sendChannelSize controls the max number
	// of messages that can be queued for a client.
	sendChannelSize = 16
	pingPeriod      = (60 * 9 * time.Second) / 10
)

const (
	MessageInit       = "init"
	MessagePosition   = "position"
	MessageEnd        = "end"
	MessageSession    = "session"
	MessageGeofence   = "geofence"
	MessageTransition = "transition"
	MessageError      = "error"
)

type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewMessage marshals data into a message of the given type.
func NewMessage(msgType string, data any) (Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Data: raw}, nil
}

type Client struct {
	ID        string
	Conn      *websocket.Conn
	Manager   *Manager
	send      chan Message
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func NewClient(ctx context.Context, id string, conn *websocket.Conn, manager *Manager) *Client {
	ctx, cancel := context.WithCancel(ctx)
	return &Client{
		ID:      id,
		Conn:    conn,
		Manager: manager,
		send:    make(chan Message, sendChannelSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (c *Client) Start() {
	select {
	case c.Manager.register <- c:
	case <-c.Manager.ctx.Done():
		c.Close()
		return
	}
	go c.readPump()
	go c.writePump()
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		if err := c.Conn.Close(websocket.StatusNormalClosure, "bye"); err != nil {
			c.Manager.logger.Debug("failed to close connection", "clientID", c.ID, "error", err)
		}
	})
}

// Send queues msg without blocking. A client whose queue is full is
// disconnected.
func (c *Client) Send(msg Message) {
	if c.ctx.Err() != nil {
		return
	}
	select {
	case c.send <- msg:
	default:
		c.Manager.logger.Warn("send queue full, disconnecting client", "clientID", c.ID)
		go c.Close()
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.Manager.unregister <- c:
		case <-c.Manager.ctx.Done():
		}
		c.Close()
	}()

	for {
		var msg Message
		if err := wsjson.Read(c.ctx, c.Conn, &msg); err != nil {
			c.Manager.logger.Debug("failed to read message", "clientID", c.ID, "error", err)
			break
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			if err := wsjson.Write(c.ctx, c.Conn, msg); err != nil {
				c.Manager.logger.Warn("failed to write message", "clientID", c.ID, "error", err)
				return
			}
			c.Manager.logger.Debug("message sent", "clientID", c.ID, "type", msg.Type)
		case <-ticker.C:
			if err := c.Conn.Ping(c.ctx); err != nil {
				c.Manager.logger.Debug("failed to ping client", "clientID", c.ID, "error", err)
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) handleMessage(msg Message) {
	watcher := c.Manager.watcher
	switch msg.Type {
	case MessageInit:
		c.Manager.logger.Debug("received init message", "clientID", c.ID, "data", msg.Data)

		var req watch.Init
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			c.sendError("invalid init message", err)
			return
		}
		session, err := watcher.Start(c.ctx, c.ID, req)
		if err != nil {
			c.sendError("failed to start session", err)
			return
		}
		c.reply(MessageSession, session)
	case MessagePosition:
		c.Manager.logger.Debug("received position message", "clientID", c.ID, "data", msg.Data)

		var pos watch.Position
		if err := json.Unmarshal(msg.Data, &pos); err != nil {
			c.sendError("invalid position message", err)
			return
		}
		status, err := watcher.Update(c.ctx, c.ID, pos)
		if err != nil {
			c.sendError("failed to update position", err)
			return
		}
		c.reply(MessageGeofence, status)
	case MessageEnd:
		if err := watcher.End(c.ctx, c.ID); err != nil {
			c.sendError("failed to end session", err)
		}
	default:
		c.Manager.logger.Debug("received unknown type message", "clientID", c.ID, "type", msg.Type)
	}
}

func (c *Client) reply(msgType string, data any) {
	msg, err := NewMessage(msgType, data)
	if err != nil {
		c.Manager.logger.Warn("failed to marshal reply", "clientID", c.ID, "type", msgType, "error", err)
		return
	}
	c.Send(msg)
}

func (c *Client) sendError(message string, err error) {
	c.Manager.logger.Warn(message, "clientID", c.ID, "error", err)
	c.reply(MessageError, map[string]string{"message": message, "error": err.Error()})
}
