package sim

import (
	"math"
	"math/rand"
	"time"
)

// Config captures the per-room tunables. Zero values are filled in by
// Normalized so a partially specified config file still works.
type Config struct {
	Width            float64 `json:"width" yaml:"width"`
	Height           float64 `json:"height" yaml:"height"`
	MaxPlayers       int     `json:"maxPlayers" yaml:"max_players"`
	TickRate         int     `json:"tickRate" yaml:"tick_rate"`
	BroadcastRate    int     `json:"broadcastRate" yaml:"broadcast_rate"`
	MoveSpeed        float64 `json:"moveSpeed" yaml:"move_speed"`
	InputsPerSecond  float64 `json:"inputsPerSecond" yaml:"inputs_per_second"`
	ToggleCooldownMs int     `json:"toggleCooldownMs" yaml:"toggle_cooldown_ms"`
	PatrolMargin     float64 `json:"patrolMargin" yaml:"patrol_margin"`
}

// DefaultConfig returns the room defaults: a 2000x2000 world simulated at
// 30 Hz and broadcast at 20 Hz.
func DefaultConfig() Config {
	return Config{
		Width:            2000,
		Height:           2000,
		MaxPlayers:       20,
		TickRate:         30,
		BroadcastRate:    20,
		MoveSpeed:        200,
		InputsPerSecond:  60,
		ToggleCooldownMs: 250,
		PatrolMargin:     100,
	}
}

// Normalized fills unset fields with defaults.
func (cfg Config) Normalized() Config {
	def := DefaultConfig()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = def.MaxPlayers
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = def.TickRate
	}
	if cfg.BroadcastRate <= 0 {
		cfg.BroadcastRate = def.BroadcastRate
	}
	if cfg.MoveSpeed <= 0 {
		cfg.MoveSpeed = def.MoveSpeed
	}
	if cfg.InputsPerSecond <= 0 {
		cfg.InputsPerSecond = def.InputsPerSecond
	}
	if cfg.ToggleCooldownMs <= 0 {
		cfg.ToggleCooldownMs = def.ToggleCooldownMs
	}
	if cfg.PatrolMargin <= 0 {
		cfg.PatrolMargin = def.PatrolMargin
	}
	return cfg
}

// TickInterval converts the tick rate to a ticker period.
func (cfg Config) TickInterval() time.Duration {
	return time.Second / time.Duration(cfg.TickRate)
}

// BroadcastInterval converts the broadcast rate to a ticker period.
func (cfg Config) BroadcastInterval() time.Duration {
	return time.Second / time.Duration(cfg.BroadcastRate)
}

// ToggleCooldown converts the patrol re-trigger interval.
func (cfg Config) ToggleCooldown() time.Duration {
	return time.Duration(cfg.ToggleCooldownMs) * time.Millisecond
}

// World owns the authoritative entity set, input snapshots, and rate
// buckets for one room. Every method must be called from the room
// goroutine; the maps are mutated without locking on that guarantee.
type World struct {
	cfg      Config
	entities map[string]*entityState
	intents  *Aggregator
	limiter  *RateLimiter
	toggles  *CooldownGate
	rng      *rand.Rand
}

// NewWorld builds an empty world. The RNG is injectable so patrol behavior
// is reproducible in tests; nil falls back to a time-seeded source.
func NewWorld(cfg Config, rng *rand.Rand) *World {
	cfg = cfg.Normalized()
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &World{
		cfg:      cfg,
		entities: make(map[string]*entityState),
		intents:  NewAggregator(),
		limiter:  NewRateLimiter(cfg.InputsPerSecond),
		toggles:  NewCooldownGate(cfg.ToggleCooldown()),
		rng:      rng,
	}
}

// Config returns the normalized room configuration.
func (w *World) Config() Config {
	return w.cfg
}

// Len reports the number of live entities.
func (w *World) Len() int {
	return len(w.entities)
}

// Join registers an entity, its input snapshot, and its rate bucket as one
// step, so no message can observe a half-registered connection. It returns
// false when the room is full.
func (w *World) Join(now time.Time) (Entity, bool) {
	if len(w.entities) >= w.cfg.MaxPlayers {
		return Entity{}, false
	}
	state := newEntityState(w.cfg, w.rng, now)
	w.entities[state.ID] = state
	w.intents.Register(state.ID)
	w.limiter.Register(state.ID, now)
	return state.Entity, true
}

// Leave removes the entity and all per-connection state as one step.
// Messages that arrive afterwards reference an unknown entity and drop.
func (w *World) Leave(id string) bool {
	if _, ok := w.entities[id]; !ok {
		return false
	}
	delete(w.entities, id)
	w.intents.Remove(id)
	w.limiter.Remove(id)
	w.toggles.Remove(id)
	return true
}

// InputResult says what happened to an inbound input message.
type InputResult int

const (
	InputAccepted InputResult = iota
	InputUnknownEntity
	InputRateLimited
)

// ApplyInput runs the rate limiter and, when the message is accepted,
// replaces the connection's intent snapshot. Dropped messages produce no
// feedback; the sender's previous snapshot keeps driving the simulation.
func (w *World) ApplyInput(id string, snap InputSnapshot, now time.Time) InputResult {
	state, ok := w.entities[id]
	if !ok {
		return InputUnknownEntity
	}
	if !w.limiter.Allow(id, now) {
		return InputRateLimited
	}
	w.intents.Set(id, snap, &state.Entity)
	return InputAccepted
}

// TogglePatrol flips patrol mode for the entity, subject to the re-trigger
// cooldown. Enabling patrol assigns a fresh waypoint immediately.
func (w *World) TogglePatrol(id string, now time.Time) bool {
	state, ok := w.entities[id]
	if !ok {
		return false
	}
	if !w.toggles.Allow(id, now) {
		return false
	}
	state.PatrolActive = !state.PatrolActive
	if state.PatrolActive {
		w.assignPatrolTarget(&state.Entity)
	}
	return true
}

// Heartbeat refreshes the entity's liveness clock and returns the measured
// round-trip time when the client included its send timestamp.
func (w *World) Heartbeat(id string, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	state, ok := w.entities[id]
	if !ok {
		return 0, false
	}
	state.lastHeartbeat = receivedAt
	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			state.lastRTT = rtt
		}
	}
	return state.lastRTT, true
}

// Expired returns the IDs of entities whose heartbeat is older than the
// deadline. The caller removes them and closes their connections.
func (w *World) Expired(now time.Time, timeout time.Duration) []string {
	var expired []string
	for id, state := range w.entities {
		if now.Sub(state.lastHeartbeat) > timeout {
			expired = append(expired, id)
		}
	}
	return expired
}

// Step advances every entity by one authoritative tick. The transition is
// a pure function of (entity state, current intent); entities never see
// each other, so iteration order does not matter.
func (w *World) Step(dt float64) {
	for id, state := range w.entities {
		snap := w.intents.Get(id)
		if state.PatrolActive && snap.Zero() {
			w.stepPatrol(&state.Entity, dt)
			continue
		}

		dirX, dirY := snap.Vector()
		state.X, state.Y = Integrate(state.X, state.Y, dirX, dirY, state.Speed, dt, w.cfg.Width, w.cfg.Height)
		if dirX != 0 || dirY != 0 {
			state.Angle = math.Atan2(dirY, dirX)
		}
		state.X = Quantize(state.X)
		state.Y = Quantize(state.Y)
	}
}

// Snapshot copies the broadcast view of every entity.
func (w *World) Snapshot() []Entity {
	entities := make([]Entity, 0, len(w.entities))
	for _, state := range w.entities {
		entities = append(entities, state.Entity)
	}
	return entities
}
