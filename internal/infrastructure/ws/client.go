package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	dto "github.com/sentrymeet/sentrymeet/internal/adapter/dto/transcription"
	"github.com/sentrymeet/sentrymeet/pkg/validator"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Base64 chunks for a 32ms quantum are under 2KB; leave generous room.
	maxMessageSize = 64 * 1024

	sendBufferSize = 64
)

// Session receives the connection's transcription events in arrival order.
// All methods are invoked from the read pump, one at a time.
type Session interface {
	Start(ctx context.Context, req dto.StartRequest)
	Audio(ctx context.Context, chunk string)
	Stop(ctx context.Context)
	Disconnect(ctx context.Context)
}

type outbound struct {
	event   string
	payload interface{}
}

// Client is one connected socket. The read pump dispatches inbound events
// to the bound session; the write pump drains the send queue.
type Client struct {
	conn    *websocket.Conn
	hub     *Hub
	session Session
	logger  *zap.Logger

	send chan outbound
	done chan struct{}
}

// NewClient wraps an upgraded websocket connection.
func NewClient(conn *websocket.Conn, hub *Hub, logger *zap.Logger) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		logger: logger,
		send:   make(chan outbound, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Bind attaches the session before Run is called.
func (c *Client) Bind(s Session) {
	c.session = s
}

// Enqueue queues an event for delivery. It never blocks; events to a slow
// consumer are dropped, matching the no-delivery-guarantee contract.
func (c *Client) Enqueue(event string, payload interface{}) {
	select {
	case c.send <- outbound{event: event, payload: payload}:
	case <-c.done:
	default:
		c.logger.Warn("dropping event for slow consumer", zap.String("event", event))
	}
}

// Run services the connection until it closes, then tears the session down.
func (c *Client) Run(ctx context.Context) {
	go c.writePump()
	c.readPump(ctx)

	close(c.done)
	c.hub.Leave(c)
	c.session.Disconnect(ctx)
	_ = c.conn.Close()
}

func (c *Client) readPump(ctx context.Context) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("socket read ended", zap.Error(err))
			}
			return
		}

		var env dto.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue // malformed frames are discarded
		}
		c.dispatch(ctx, env)
	}
}

func (c *Client) dispatch(ctx context.Context, env dto.Envelope) {
	switch env.Event {
	case dto.EventJoinRoom:
		var req dto.JoinRoomRequest
		if err := json.Unmarshal(env.Data, &req); err != nil || validator.Struct(req) != nil {
			return
		}
		c.hub.Join(c, req.RoomID)

	case dto.EventStart:
		var req dto.StartRequest
		if err := json.Unmarshal(env.Data, &req); err != nil || validator.Struct(req) != nil {
			c.Enqueue(dto.EventStatus, dto.StatusEvent{Status: "error", Reason: "invalid start payload"})
			return
		}
		c.session.Start(ctx, req)

	case dto.EventAudio:
		var req dto.AudioRequest
		if err := json.Unmarshal(env.Data, &req); err != nil || validator.Struct(req) != nil {
			return
		}
		c.session.Audio(ctx, req.Chunk)

	case dto.EventStop:
		c.session.Stop(ctx)

	default:
		// Unknown events are ignored.
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case out := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			env := map[string]interface{}{"event": out.event, "data": out.payload}
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
