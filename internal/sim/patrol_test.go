package sim

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func newTestWorld(cfg Config) *World {
	return NewWorld(cfg, rand.New(rand.NewSource(42)))
}

func TestPatrolTargetStaysInsideMargin(t *testing.T) {
	w := newTestWorld(Config{Width: 500, Height: 400, PatrolMargin: 50})
	e := &Entity{}
	for i := 0; i < 1000; i++ {
		w.assignPatrolTarget(e)
		if e.PatrolTargetX < 50 || e.PatrolTargetX > 450 {
			t.Fatalf("target x %v outside margin", e.PatrolTargetX)
		}
		if e.PatrolTargetY < 50 || e.PatrolTargetY > 350 {
			t.Fatalf("target y %v outside margin", e.PatrolTargetY)
		}
	}
}

func TestPatrolReassignsExactlyUnderArriveRadius(t *testing.T) {
	w := newTestWorld(DefaultConfig())
	e := &Entity{X: 1000, Y: 1000, Speed: 200, PatrolTargetX: 1004, PatrolTargetY: 1000}

	w.stepPatrol(e, 1.0/30.0)
	if e.PatrolTargetX == 1004 && e.PatrolTargetY == 1000 {
		t.Fatalf("waypoint 4 units away should be reassigned")
	}
	if e.X != 1000 || e.Y != 1000 {
		t.Fatalf("reassignment tick must not move the entity, got %v,%v", e.X, e.Y)
	}

	e = &Entity{X: 1000, Y: 1000, Speed: 200, PatrolTargetX: 1006, PatrolTargetY: 1000}
	w.stepPatrol(e, 1.0/30.0)
	if e.PatrolTargetX != 1006 {
		t.Fatalf("waypoint 6 units away should be kept")
	}
	if e.X <= 1000 {
		t.Fatalf("entity should seek the waypoint, x=%v", e.X)
	}
}

func TestPatrolSeekMatchesManualSpeed(t *testing.T) {
	w := newTestWorld(DefaultConfig())
	const dt = 1.0 / 30.0
	e := &Entity{X: 500, Y: 500, Speed: 200, PatrolTargetX: 1500, PatrolTargetY: 500}

	w.stepPatrol(e, dt)
	moved := math.Hypot(e.X-500, e.Y-500)
	want := 200 * dt
	if math.Abs(moved-want) > 0.01 {
		t.Fatalf("patrol displacement %v, want %v", moved, want)
	}
	if e.Angle != 0 {
		t.Fatalf("seeking straight right should face angle 0, got %v", e.Angle)
	}
}

func TestPatrolToggleAssignsWaypoint(t *testing.T) {
	w := newTestWorld(DefaultConfig())
	entity, ok := w.Join(time.Now())
	if !ok {
		t.Fatalf("join failed")
	}

	if !w.TogglePatrol(entity.ID, time.Now()) {
		t.Fatalf("toggle rejected")
	}
	state := w.entities[entity.ID]
	if !state.PatrolActive {
		t.Fatalf("patrol should be active after toggle")
	}
	margin := w.cfg.PatrolMargin
	if state.PatrolTargetX < margin || state.PatrolTargetX > w.cfg.Width-margin ||
		state.PatrolTargetY < margin || state.PatrolTargetY > w.cfg.Height-margin {
		t.Fatalf("waypoint %v,%v outside inset bounds", state.PatrolTargetX, state.PatrolTargetY)
	}
}

func TestPatrolToggleCooldown(t *testing.T) {
	w := newTestWorld(DefaultConfig())
	entity, _ := w.Join(time.Now())
	now := time.Now()

	if !w.TogglePatrol(entity.ID, now) {
		t.Fatalf("first toggle rejected")
	}
	if w.TogglePatrol(entity.ID, now.Add(100*time.Millisecond)) {
		t.Fatalf("toggle inside cooldown should be ignored")
	}
	if !w.TogglePatrol(entity.ID, now.Add(300*time.Millisecond)) {
		t.Fatalf("toggle after cooldown rejected")
	}
	if w.entities[entity.ID].PatrolActive {
		t.Fatalf("second accepted toggle should turn patrol off")
	}
}
