package sim

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Entity is the authoritative record for one connected session. It is the
// unit of broadcast: every field with a JSON tag is visible to clients.
type Entity struct {
	ID    string  `json:"id" jsonschema:"description=Connection identity assigned at join"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle" jsonschema:"description=Facing in radians from the last nonzero velocity"`
	Speed float64 `json:"speed"`
	Color string  `json:"color"`

	PatrolActive  bool    `json:"patrolActive"`
	PatrolTargetX float64 `json:"patrolTargetX,omitempty"`
	PatrolTargetY float64 `json:"patrolTargetY,omitempty"`

	// LastProcessedInputSeq is the highest input sequence the simulation has
	// applied for this entity. Clients reconcile predictions against it.
	LastProcessedInputSeq uint64 `json:"lastProcessedInputSeq"`
}

// entityState wraps the broadcast record with connection bookkeeping that
// never leaves the server.
type entityState struct {
	Entity
	lastHeartbeat time.Time
	lastRTT       time.Duration
}

var palette = []string{
	"#e6194b",
	"#3cb44b",
	"#ffe119",
	"#4363d8",
	"#f58231",
	"#911eb4",
	"#46f0f0",
	"#f032e6",
}

// newEntityState spawns an entity at a uniformly random in-bounds position
// with a palette color and a fresh identity.
func newEntityState(cfg Config, rng *rand.Rand, now time.Time) *entityState {
	return &entityState{
		Entity: Entity{
			ID:    uuid.NewString(),
			X:     Quantize(rng.Float64() * cfg.Width),
			Y:     Quantize(rng.Float64() * cfg.Height),
			Speed: cfg.MoveSpeed,
			Color: palette[rng.Intn(len(palette))],
		},
		lastHeartbeat: now,
	}
}
