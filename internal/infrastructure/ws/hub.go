// Package ws implements the socket transport: a per-connection client with
// read/write pumps and a room-keyed broadcast hub.
package ws

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisRoomPrefix = "sentrymeet:room:"

// Conn is the minimal surface the hub needs to deliver an event.
type Conn interface {
	Enqueue(event string, payload interface{})
}

// Hub fans events out to every connection joined to a room. Delivery is
// best effort to currently-joined members; there is no replay buffer.
// With a Redis client the publish path goes through pub/sub so broadcasts
// reach connections hosted on other instances; without one it delivers to
// local members directly.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[Conn]struct{}
	rdb    *redis.Client
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a hub. rdb may be nil for single-instance deployments.
func NewHub(rdb *redis.Client, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		rooms:  make(map[string]map[Conn]struct{}),
		rdb:    rdb,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	if rdb != nil {
		go h.runBridge()
	}
	return h
}

// Join subscribes a connection to a room's event stream.
func (h *Hub) Join(c Conn, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[Conn]struct{})
		h.rooms[roomID] = members
	}
	members[c] = struct{}{}
}

// Leave removes a connection from every room it joined.
func (h *Hub) Leave(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for roomID, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// Publish delivers the event to every currently-joined member of the room,
// including the publisher when joined. Publishing to an empty room is a
// no-op; the call never blocks on slow consumers.
func (h *Hub) Publish(ctx context.Context, roomID, event string, payload interface{}) {
	if h.rdb == nil {
		h.deliverLocal(roomID, event, payload)
		return
	}

	data, err := json.Marshal(struct {
		Event string      `json:"event"`
		Data  interface{} `json:"data"`
	}{event, payload})
	if err != nil {
		h.logger.Error("marshal broadcast", zap.String("event", event), zap.Error(err))
		return
	}

	if err := h.rdb.Publish(ctx, redisRoomPrefix+roomID, data).Err(); err != nil {
		// Degrade to local delivery so a Redis outage does not mute the room
		// for connections on this instance.
		h.logger.Warn("redis publish failed, delivering locally",
			zap.String("room_id", roomID), zap.Error(err))
		h.deliverLocal(roomID, event, payload)
	}
}

func (h *Hub) deliverLocal(roomID, event string, payload interface{}) {
	h.mu.RLock()
	members := make([]Conn, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		c.Enqueue(event, payload)
	}
}

// runBridge relays Redis pub/sub messages into local delivery. Our own
// publishes come back through here too, which is what delivers them to
// local members.
func (h *Hub) runBridge() {
	sub := h.rdb.PSubscribe(h.ctx, redisRoomPrefix+"*")
	defer sub.Close()

	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			roomID := strings.TrimPrefix(msg.Channel, redisRoomPrefix)

			var env struct {
				Event string          `json:"event"`
				Data  json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn("malformed bridge message", zap.Error(err))
				continue
			}
			h.deliverLocal(roomID, env.Event, env.Data)
		}
	}
}

// Close stops the Redis bridge, if any.
func (h *Hub) Close() {
	h.cancel()
}
