package netclient

import (
	"math"

	"patrolarena/internal/sim"
)

// interpBlendPerSecond is the exponential smoothing rate for remote
// entities. Higher settles faster; it never overshoots the sample.
const interpBlendPerSecond = 12.0

type remoteEntity struct {
	sim.Entity
	displayX float64
	displayY float64
}

// Interpolator smooths every non-local entity toward its latest
// authoritative sample. It never predicts and never extrapolates past the
// last received position.
type Interpolator struct {
	remotes map[string]*remoteEntity
}

func NewInterpolator() *Interpolator {
	return &Interpolator{remotes: make(map[string]*remoteEntity)}
}

// Observe records the newest authoritative sample for an entity. First
// sight snaps the display position to the sample.
func (ip *Interpolator) Observe(e sim.Entity) {
	if remote, ok := ip.remotes[e.ID]; ok {
		remote.Entity = e
		return
	}
	ip.remotes[e.ID] = &remoteEntity{Entity: e, displayX: e.X, displayY: e.Y}
}

// Prune drops entities absent from the latest snapshot (disconnected).
func (ip *Interpolator) Prune(present map[string]struct{}) {
	for id := range ip.remotes {
		if _, ok := present[id]; !ok {
			delete(ip.remotes, id)
		}
	}
}

// Frame advances every display position toward its target sample.
func (ip *Interpolator) Frame(dt float64) {
	if dt <= 0 {
		return
	}
	blend := 1 - math.Exp(-interpBlendPerSecond*dt)
	for _, remote := range ip.remotes {
		remote.displayX += (remote.X - remote.displayX) * blend
		remote.displayY += (remote.Y - remote.displayY) * blend
	}
}

// Display returns the smoothed position for an entity.
func (ip *Interpolator) Display(id string) (float64, float64, bool) {
	remote, ok := ip.remotes[id]
	if !ok {
		return 0, 0, false
	}
	return remote.displayX, remote.displayY, true
}

// Len reports how many remote entities are tracked.
func (ip *Interpolator) Len() int {
	return len(ip.remotes)
}
