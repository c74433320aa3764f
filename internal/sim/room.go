package sim

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"patrolarena/internal/telemetry"
)

const (
	heartbeatInterval = 2 * time.Second
	disconnectAfter   = 3 * heartbeatInterval
)

// Subscriber is the write side of a connection. Enqueue must never block;
// the transport drops on backpressure to keep the tick on time.
type Subscriber interface {
	Enqueue(payload []byte)
	Close()
}

type joinRequest struct {
	sub   Subscriber
	reply chan joinReply
}

type joinReply struct {
	entity Entity
	ok     bool
}

type inbound struct {
	id         string
	msg        ClientMessage
	receivedAt time.Time
}

// Room drives one world on a single goroutine. The fixed-tick step, the
// broadcast cadence, and every message handler run strictly serialized on
// that goroutine, so world state needs no locking. Rooms are independent
// and may run concurrently.
type Room struct {
	ID string

	world    *World
	counters *telemetry.RoomCounters
	log      *zap.SugaredLogger

	subscribers map[string]Subscriber

	joinCh  chan joinRequest
	leaveCh chan string
	msgCh   chan inbound
	stopCh  chan struct{}

	tick        atomic.Uint64
	playerCount atomic.Int64
}

// NewRoom builds a room around a fresh world. Call Run to start it.
func NewRoom(id string, cfg Config, log *zap.SugaredLogger) *Room {
	return &Room{
		ID:          id,
		world:       NewWorld(cfg, nil),
		counters:    &telemetry.RoomCounters{},
		log:         log,
		subscribers: make(map[string]Subscriber),
		joinCh:      make(chan joinRequest),
		leaveCh:     make(chan string, 64),
		msgCh:       make(chan inbound, 256),
		stopCh:      make(chan struct{}),
	}
}

// Join registers a connection with the room goroutine and returns its
// entity. The "you" message is enqueued before any state broadcast can
// reach the subscriber. Returns false when the room is at capacity.
func (r *Room) Join(sub Subscriber) (Entity, bool) {
	req := joinRequest{sub: sub, reply: make(chan joinReply, 1)}
	select {
	case r.joinCh <- req:
	case <-r.stopCh:
		return Entity{}, false
	}
	reply := <-req.reply
	return reply.entity, reply.ok
}

// RequestLeave asks the room goroutine to remove the connection. Buffered
// so the transport's read loop never deadlocks against the tick.
func (r *Room) RequestLeave(id string) {
	select {
	case r.leaveCh <- id:
	case <-r.stopCh:
	}
}

// Dispatch hands an inbound message to the room goroutine. When the queue
// is saturated the message is dropped; losing an intent snapshot is safe
// because the next one replaces it anyway.
func (r *Room) Dispatch(id string, msg ClientMessage) {
	select {
	case r.msgCh <- inbound{id: id, msg: msg, receivedAt: time.Now()}:
	default:
		r.counters.IncMessageDiscarded()
	}
}

// Stop terminates the room goroutine and closes every subscriber.
func (r *Room) Stop() {
	close(r.stopCh)
}

// Tick reports the current authoritative tick number.
func (r *Room) Tick() uint64 {
	return r.tick.Load()
}

// PlayerCount reports the number of live entities.
func (r *Room) PlayerCount() int {
	return int(r.playerCount.Load())
}

// Config returns the room's normalized configuration. It is fixed for the
// room's lifetime, so reading it off-goroutine is safe.
func (r *Room) Config() Config {
	return r.world.Config()
}

// Counters exposes the room's telemetry for diagnostics.
func (r *Room) Counters() *telemetry.RoomCounters {
	return r.counters
}

// Run owns the world until Stop. Simulation and broadcast cadences are
// deliberately decoupled: simulating faster than broadcasting keeps
// patrol motion responsive while bounding outbound bandwidth.
func (r *Room) Run() {
	cfg := r.world.Config()
	simTicker := time.NewTicker(cfg.TickInterval())
	broadcastTicker := time.NewTicker(cfg.BroadcastInterval())
	defer simTicker.Stop()
	defer broadcastTicker.Stop()

	budget := cfg.TickInterval().Seconds()
	last := time.Now()

	for {
		select {
		case <-r.stopCh:
			for _, sub := range r.subscribers {
				sub.Close()
			}
			return

		case req := <-r.joinCh:
			r.handleJoin(req)

		case id := <-r.leaveCh:
			r.handleLeave(id)

		case in := <-r.msgCh:
			r.handleMessage(in)

		case now := <-simTicker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 || dt > 4*budget {
				dt = budget
			}
			last = now

			start := time.Now()
			r.tick.Add(1)
			r.world.Step(dt)
			r.reapExpired(now)
			r.counters.RecordTick(time.Since(start))

		case <-broadcastTicker.C:
			r.broadcastState()
		}
	}
}

func (r *Room) handleJoin(req joinRequest) {
	entity, ok := r.world.Join(time.Now())
	if !ok {
		req.reply <- joinReply{ok: false}
		return
	}
	r.subscribers[entity.ID] = req.sub
	r.playerCount.Store(int64(r.world.Len()))

	you := YouMessage{Type: MessageYou, ID: entity.ID, Config: r.world.Config()}
	if payload, err := json.Marshal(you); err == nil {
		req.sub.Enqueue(payload)
	}
	r.log.Infow("player joined", "room", r.ID, "id", entity.ID, "players", r.world.Len())
	req.reply <- joinReply{entity: entity, ok: true}
}

func (r *Room) handleLeave(id string) {
	if !r.world.Leave(id) {
		return
	}
	if sub, ok := r.subscribers[id]; ok {
		delete(r.subscribers, id)
		sub.Close()
	}
	r.playerCount.Store(int64(r.world.Len()))
	r.log.Infow("player left", "room", r.ID, "id", id, "players", r.world.Len())
}

func (r *Room) handleMessage(in inbound) {
	switch in.msg.Type {
	case MessageInput:
		snap := InputSnapshot{Intent: in.msg.Intent(), Seq: in.msg.Seq}
		switch r.world.ApplyInput(in.id, snap, in.receivedAt) {
		case InputAccepted:
			r.counters.IncInputAccepted()
		case InputRateLimited:
			r.counters.IncInputRateLimited()
		case InputUnknownEntity:
			r.counters.IncInputUnknown()
		}

	case MessageTogglePatrol:
		if r.world.TogglePatrol(in.id, in.receivedAt) {
			r.counters.IncToggleAccepted()
		} else {
			r.counters.IncToggleCooled()
		}

	case MessageHeartbeat:
		rtt, ok := r.world.Heartbeat(in.id, in.receivedAt, in.msg.SentAt)
		if !ok {
			return
		}
		ack := HeartbeatAckMessage{
			Type:       MessageHeartbeat,
			ServerTime: in.receivedAt.UnixMilli(),
			ClientTime: in.msg.SentAt,
			RTTMillis:  rtt.Milliseconds(),
		}
		if payload, err := json.Marshal(ack); err == nil {
			if sub, ok := r.subscribers[in.id]; ok {
				sub.Enqueue(payload)
			}
		}

	default:
		r.counters.IncMessageDiscarded()
	}
}

// reapExpired drops entities whose heartbeat went silent. Runs on the tick
// so removal is atomic with respect to every other handler.
func (r *Room) reapExpired(now time.Time) {
	for _, id := range r.world.Expired(now, disconnectAfter) {
		r.counters.IncHeartbeatTimeout()
		r.log.Infow("heartbeat timeout", "room", r.ID, "id", id)
		r.handleLeave(id)
	}
}

// broadcastState publishes the full authoritative entity set to every
// subscriber. It runs on the room goroutine, so the snapshot is always
// tick-consistent; no partial tick is ever visible.
func (r *Room) broadcastState() {
	if len(r.subscribers) == 0 {
		return
	}
	msg := StateMessage{
		Type:       MessageState,
		Tick:       r.tick.Load(),
		ServerTime: time.Now().UnixMilli(),
		Players:    r.world.Snapshot(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		r.log.Errorw("marshal state", "room", r.ID, "err", err)
		return
	}
	for _, sub := range r.subscribers {
		sub.Enqueue(payload)
	}
	r.counters.RecordBroadcast(len(payload))
}
