package netclient

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"patrolarena/internal/sim"
)

const (
	inboxSize         = 128
	heartbeatInterval = 2 * time.Second
	dialTimeout       = 10 * time.Second
)

// Client is a headless arena client. It dials a room, then runs
// prediction, reconciliation, and remote interpolation frame by frame.
//
// Network messages arrive asynchronously but are only applied inside
// Frame, before the frame's own work, so a frame never observes a
// partially applied update.
type Client struct {
	ws *websocket.Conn

	selfID    string
	config    sim.Config
	predictor *Predictor
	interp    *Interpolator

	inbox    chan []byte
	readErr  error
	errOnce  sync.Once
	closedCh chan struct{}

	lastIntent    sim.Intent
	lastHeartbeat time.Time
	lastState     sim.StateMessage
	self          sim.Entity
	haveSelf      bool
}

// Dial connects to the server's /ws endpoint and waits for the "you"
// handshake so the caller gets a fully initialized client.
func Dial(url string) (*Client, error) {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	ws, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		ws:       ws,
		inbox:    make(chan []byte, inboxSize),
		closedCh: make(chan struct{}),
	}

	if err := c.awaitYou(); err != nil {
		_ = ws.Close()
		return nil, err
	}

	go c.readLoop()
	return c, nil
}

// awaitYou blocks until the join handshake arrives.
func (c *Client) awaitYou() error {
	_ = c.ws.SetReadDeadline(time.Now().Add(dialTimeout))
	defer c.ws.SetReadDeadline(time.Time{})
	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return err
		}
		var you sim.YouMessage
		if err := json.Unmarshal(payload, &you); err != nil || you.Type != sim.MessageYou {
			continue
		}
		c.selfID = you.ID
		c.config = you.Config.Normalized()
		c.predictor = NewPredictor(c.config.Width, c.config.Height, c.config.MoveSpeed)
		c.interp = NewInterpolator()
		return nil
	}
}

func (c *Client) readLoop() {
	defer close(c.closedCh)
	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			c.errOnce.Do(func() { c.readErr = err })
			return
		}
		select {
		case c.inbox <- payload:
		default:
			// A stalled frame loop sheds old updates; the next state
			// message supersedes them anyway.
		}
	}
}

// ID returns the local entity identifier from the join handshake.
func (c *Client) ID() string {
	return c.selfID
}

// Config returns the room configuration from the join handshake.
func (c *Client) Config() sim.Config {
	return c.config
}

// Predicted returns the local entity's predicted position.
func (c *Client) Predicted() (float64, float64) {
	return c.predictor.Position()
}

// Self returns the last authoritative record for the local entity.
func (c *Client) Self() (sim.Entity, bool) {
	return c.self, c.haveSelf
}

// Players returns the entity set from the latest authoritative snapshot.
func (c *Client) Players() []sim.Entity {
	return c.lastState.Players
}

// Remote returns the smoothed display position of another entity.
func (c *Client) Remote(id string) (float64, float64, bool) {
	return c.interp.Display(id)
}

// Frame runs one client frame: apply every queued network message, step
// the predictor with the current intent, send the input when there is
// something to acknowledge, and advance remote smoothing.
func (c *Client) Frame(in sim.Intent, dt float64) error {
	if err := c.drainInbox(); err != nil {
		return err
	}

	seq := c.predictor.Step(in, dt)
	switch {
	case seq != 0:
		c.sendMessage(sim.ClientMessage{Type: sim.MessageInput, Up: in.Up, Down: in.Down, Left: in.Left, Right: in.Right, Seq: seq})
	case !c.lastIntent.Zero() && in.Zero():
		// Key release: tell the server to stop; no new sequence needed.
		c.sendMessage(sim.ClientMessage{Type: sim.MessageInput})
	}
	c.lastIntent = in

	c.interp.Frame(dt)
	c.maybeHeartbeat()
	return nil
}

// TogglePatrol requests a patrol flip. The server enforces its cooldown;
// rejected requests are silent.
func (c *Client) TogglePatrol() {
	c.sendMessage(sim.ClientMessage{Type: sim.MessageTogglePatrol})
}

// Close tears the connection down.
func (c *Client) Close() error {
	return c.ws.Close()
}

func (c *Client) drainInbox() error {
	for {
		select {
		case payload := <-c.inbox:
			c.handleMessage(payload)
		case <-c.closedCh:
			if c.readErr != nil {
				return c.readErr
			}
			return errors.New("connection closed")
		default:
			return nil
		}
	}
}

func (c *Client) handleMessage(payload []byte) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return
	}
	if probe.Type != sim.MessageState {
		return
	}
	var state sim.StateMessage
	if err := json.Unmarshal(payload, &state); err != nil {
		return
	}
	c.applyState(state)
}

// applyState routes the authoritative snapshot: the local entity goes
// through reconciliation, everyone else through the interpolator.
func (c *Client) applyState(state sim.StateMessage) {
	c.lastState = state
	present := make(map[string]struct{}, len(state.Players))
	for _, e := range state.Players {
		if e.ID == c.selfID {
			c.self = e
			c.haveSelf = true
			c.predictor.Reconcile(e)
			continue
		}
		present[e.ID] = struct{}{}
		c.interp.Observe(e)
	}
	c.interp.Prune(present)
}

func (c *Client) maybeHeartbeat() {
	now := time.Now()
	if now.Sub(c.lastHeartbeat) < heartbeatInterval {
		return
	}
	c.lastHeartbeat = now
	c.sendMessage(sim.ClientMessage{Type: sim.MessageHeartbeat, SentAt: now.UnixMilli()})
}

func (c *Client) sendMessage(msg sim.ClientMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_ = c.ws.WriteMessage(websocket.TextMessage, payload)
}
