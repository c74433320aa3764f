package net

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"patrolarena/internal/sim"
)

const (
	writeWait      = 5 * time.Second
	readDeadline   = 60 * time.Second
	maxMessageSize = 4096
	sendQueueSize  = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The arena is an open demo surface; origin policy belongs to the
		// deployment in front of it.
		return true
	},
}

// ClientConn is the write side of one websocket connection. It satisfies
// sim.Subscriber: Enqueue never blocks, dropping the payload when the
// queue is full so a slow reader cannot stall the tick.
type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{ws: ws, send: make(chan []byte, sendQueueSize)}
}

// Enqueue queues a payload for the write pump, discarding on backpressure.
func (c *ClientConn) Enqueue(payload []byte) {
	select {
	case c.send <- payload:
	default:
	}
}

// Close shuts the connection down; safe to call from any goroutine and
// more than once.
func (c *ClientConn) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
		_ = c.ws.Close()
	})
}

func (c *ClientConn) writePump() {
	defer c.ws.Close()
	for payload := range c.send {
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	_ = c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump decodes inbound messages and forwards them to the room
// goroutine. Malformed JSON is discarded; unknown fields default to zero
// values, so a partial input message still parses per-field.
func (c *ClientConn) readPump(room *sim.Room, id string, log *zap.SugaredLogger) {
	defer c.ws.Close()
	defer room.RequestLeave(id)

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(readDeadline))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(readDeadline))

		var msg sim.ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Debugw("discarding malformed message", "id", id, "err", err)
			continue
		}
		room.Dispatch(id, msg)
	}
}

// HandleWS upgrades the connection, joins the requested room, and starts
// the connection pumps. The room replies with a "you" message before the
// first state broadcast can reach this subscriber.
func HandleWS(manager *sim.Manager, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("room")
		if roomID == "" {
			roomID = "room-1"
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warnw("upgrade failed", "err", err)
			return
		}

		room := manager.GetOrCreate(roomID)
		conn := NewClientConn(ws)

		entity, ok := room.Join(conn)
		if !ok {
			message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "room full")
			_ = ws.WriteMessage(websocket.CloseMessage, message)
			_ = ws.Close()
			return
		}

		go conn.writePump()
		go conn.readPump(room, entity.ID, log)
	}
}
