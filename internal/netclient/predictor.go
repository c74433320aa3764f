package netclient

import (
	"math"

	"patrolarena/internal/sim"
)

const (
	// maxFrameDelta caps a frame step so a stalled tab does not integrate
	// one giant jump when frames resume.
	maxFrameDelta = 0.050

	// driftGainPerSecond is the small continuous pull toward the last
	// authoritative sample applied even while predicting. It bounds
	// float/timing divergence without a visible snap.
	driftGainPerSecond = 1.5

	// patrolBlendPerSecond is the exponential blend rate toward the
	// authoritative position while the server drives the entity on patrol.
	// AI motion is server-decided and never predicted.
	patrolBlendPerSecond = 8.0

	// maxPendingInputs bounds the replay buffer under sustained packet
	// loss or a stalled server; oldest records drop first.
	maxPendingInputs = 180
)

// PendingInput is one locally applied input awaiting acknowledgment.
type PendingInput struct {
	Seq    uint64
	Intent sim.Intent
	Dt     float64
}

// Predictor speculatively integrates the local player's inputs ahead of
// server confirmation, using the exact server-side movement formula.
type Predictor struct {
	width, height float64
	speed         float64

	x, y float64

	authX, authY float64
	authPatrol   bool
	haveAuth     bool

	nextSeq   uint64
	pending   []PendingInput
	driftGain float64
}

// NewPredictor builds a predictor for the given world bounds and the
// entity's fixed speed.
func NewPredictor(width, height, speed float64) *Predictor {
	return &Predictor{width: width, height: height, speed: speed, driftGain: driftGainPerSecond}
}

// SetDriftGain overrides the continuous correction gain. Zero disables the
// pull entirely, which is useful for deterministic replay checks.
func (p *Predictor) SetDriftGain(gain float64) {
	p.driftGain = gain
}

// Position returns the current predicted position.
func (p *Predictor) Position() (float64, float64) {
	return p.x, p.y
}

// PendingLen reports how many inputs await acknowledgment.
func (p *Predictor) PendingLen() int {
	return len(p.pending)
}

// Step advances the prediction by one rendered frame and records the
// input for replay. It returns the sequence number the caller must attach
// to the outgoing input message, or 0 when no message should be sent
// (patrol blending frames have no input to acknowledge).
func (p *Predictor) Step(in sim.Intent, dt float64) uint64 {
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}
	if dt < 0 {
		dt = 0
	}

	if p.authPatrol && in.Zero() {
		// Server-driven motion: converge on authority instead of guessing.
		blend := 1 - math.Exp(-patrolBlendPerSecond*dt)
		p.x += (p.authX - p.x) * blend
		p.y += (p.authY - p.y) * blend
		return 0
	}

	p.x, p.y = p.apply(p.x, p.y, in, dt)

	if p.haveAuth && p.driftGain > 0 {
		pull := math.Min(1, p.driftGain*dt)
		p.x += (p.authX - p.x) * pull
		p.y += (p.authY - p.y) * pull
	}

	if in.Zero() {
		// Nothing to acknowledge; an idle frame integrates to a no-op.
		return 0
	}
	p.nextSeq++
	p.record(PendingInput{Seq: p.nextSeq, Intent: in, Dt: dt})
	return p.nextSeq
}

// Reconcile processes an authoritative sample for the local entity: snap
// to server truth, discard acknowledged inputs, and replay the rest in
// submission order. Afterwards the visible position is exactly "server
// truth plus unacknowledged inputs".
func (p *Predictor) Reconcile(e sim.Entity) {
	p.authX, p.authY = e.X, e.Y
	p.authPatrol = e.PatrolActive
	p.haveAuth = true

	p.x, p.y = e.X, e.Y
	p.dropAcked(e.LastProcessedInputSeq)
	for _, rec := range p.pending {
		p.x, p.y = p.apply(p.x, p.y, rec.Intent, rec.Dt)
	}
}

// apply is the server's integration formula: unit-or-zero direction,
// speed scaling, bounds clamp.
func (p *Predictor) apply(x, y float64, in sim.Intent, dt float64) (float64, float64) {
	dirX, dirY := in.Vector()
	return sim.Integrate(x, y, dirX, dirY, p.speed, dt, p.width, p.height)
}

func (p *Predictor) record(rec PendingInput) {
	if len(p.pending) >= maxPendingInputs {
		p.pending = p.pending[1:]
	}
	p.pending = append(p.pending, rec)
}

func (p *Predictor) dropAcked(lastProcessed uint64) {
	keep := p.pending[:0]
	for _, rec := range p.pending {
		if rec.Seq > lastProcessed {
			keep = append(keep, rec)
		}
	}
	p.pending = keep
}
