package sim

import "math"

const (
	// patrolArriveRadius is the distance at which a waypoint counts as
	// reached and a new one is picked.
	patrolArriveRadius = 5.0
)

// assignPatrolTarget picks a uniformly random waypoint inside the world
// inset by the configured margin, so targets never sit on the boundary.
func (w *World) assignPatrolTarget(e *Entity) {
	margin := w.cfg.PatrolMargin
	e.PatrolTargetX = margin + w.rng.Float64()*(w.cfg.Width-2*margin)
	e.PatrolTargetY = margin + w.rng.Float64()*(w.cfg.Height-2*margin)
}

// stepPatrol seeks the current waypoint for one tick. Reaching the arrive
// radius reassigns the waypoint and ends the tick early for this entity;
// motion resumes toward the new target on the next tick.
func (w *World) stepPatrol(e *Entity, dt float64) {
	dx := e.PatrolTargetX - e.X
	dy := e.PatrolTargetY - e.Y
	dist := math.Hypot(dx, dy)
	if dist < patrolArriveRadius {
		w.assignPatrolTarget(e)
		return
	}

	dirX := dx / dist
	dirY := dy / dist
	e.X, e.Y = Integrate(e.X, e.Y, dirX, dirY, e.Speed, dt, w.cfg.Width, w.cfg.Height)
	e.Angle = math.Atan2(dirY, dirX)
	e.X = Quantize(e.X)
	e.Y = Quantize(e.Y)
}
