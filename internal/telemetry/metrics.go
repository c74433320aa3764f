package telemetry

import (
	"sync/atomic"
	"time"
)

// RoomCounters tracks a room's runtime health. The room goroutine writes
// and the diagnostics endpoint reads, so every field is atomic.
type RoomCounters struct {
	ticks              atomic.Uint64
	tickNanos          atomic.Int64
	broadcasts         atomic.Uint64
	inputsAccepted     atomic.Uint64
	inputsRateLimited  atomic.Uint64
	inputsUnknown      atomic.Uint64
	togglesAccepted    atomic.Uint64
	togglesCooled      atomic.Uint64
	messagesDiscarded  atomic.Uint64
	heartbeatTimeouts  atomic.Uint64
	lastBroadcastBytes atomic.Uint64
}

func (c *RoomCounters) RecordTick(d time.Duration) {
	c.ticks.Add(1)
	c.tickNanos.Add(d.Nanoseconds())
}

func (c *RoomCounters) RecordBroadcast(bytes int) {
	c.broadcasts.Add(1)
	if bytes > 0 {
		c.lastBroadcastBytes.Store(uint64(bytes))
	}
}

func (c *RoomCounters) IncInputAccepted()    { c.inputsAccepted.Add(1) }
func (c *RoomCounters) IncInputRateLimited() { c.inputsRateLimited.Add(1) }
func (c *RoomCounters) IncInputUnknown()     { c.inputsUnknown.Add(1) }
func (c *RoomCounters) IncToggleAccepted()   { c.togglesAccepted.Add(1) }
func (c *RoomCounters) IncToggleCooled()     { c.togglesCooled.Add(1) }
func (c *RoomCounters) IncMessageDiscarded() { c.messagesDiscarded.Add(1) }
func (c *RoomCounters) IncHeartbeatTimeout() { c.heartbeatTimeouts.Add(1) }

// CountersSnapshot is the JSON view served by /diagnostics.
type CountersSnapshot struct {
	Ticks              uint64  `json:"ticks"`
	AvgTickMillis      float64 `json:"avgTickMillis"`
	Broadcasts         uint64  `json:"broadcasts"`
	InputsAccepted     uint64  `json:"inputsAccepted"`
	InputsRateLimited  uint64  `json:"inputsRateLimited"`
	InputsUnknown      uint64  `json:"inputsUnknown"`
	TogglesAccepted    uint64  `json:"togglesAccepted"`
	TogglesCooled      uint64  `json:"togglesCooled"`
	MessagesDiscarded  uint64  `json:"messagesDiscarded"`
	HeartbeatTimeouts  uint64  `json:"heartbeatTimeouts"`
	LastBroadcastBytes uint64  `json:"lastBroadcastBytes"`
}

// Snapshot copies the counters for serving.
func (c *RoomCounters) Snapshot() CountersSnapshot {
	ticks := c.ticks.Load()
	var avgMs float64
	if ticks > 0 {
		avgMs = float64(c.tickNanos.Load()) / float64(ticks) / 1e6
	}
	return CountersSnapshot{
		Ticks:              ticks,
		AvgTickMillis:      avgMs,
		Broadcasts:         c.broadcasts.Load(),
		InputsAccepted:     c.inputsAccepted.Load(),
		InputsRateLimited:  c.inputsRateLimited.Load(),
		InputsUnknown:      c.inputsUnknown.Load(),
		TogglesAccepted:    c.togglesAccepted.Load(),
		TogglesCooled:      c.togglesCooled.Load(),
		MessagesDiscarded:  c.messagesDiscarded.Load(),
		HeartbeatTimeouts:  c.heartbeatTimeouts.Load(),
		LastBroadcastBytes: c.lastBroadcastBytes.Load(),
	}
}
