package sim

import (
	"math"
	"testing"
)

func TestIntentVectorDiagonalNormalization(t *testing.T) {
	cases := []struct {
		name   string
		intent Intent
		length float64
	}{
		{"idle", Intent{}, 0},
		{"single axis", Intent{Up: true}, 1},
		{"diagonal", Intent{Up: true, Left: true}, 1},
		{"opposing cancel", Intent{Left: true, Right: true}, 0},
		{"three keys", Intent{Up: true, Left: true, Right: true}, 1},
	}
	for _, tc := range cases {
		dx, dy := tc.intent.Vector()
		length := math.Hypot(dx, dy)
		if math.Abs(length-tc.length) > 1e-12 {
			t.Fatalf("%s: expected magnitude %v, got %v", tc.name, tc.length, length)
		}
	}
}

func TestDiagonalSpeedEqualsAxialSpeed(t *testing.T) {
	const (
		speed = 200.0
		dt    = 1.0 / 30.0
	)
	ax, ay := Integrate(1000, 1000, 1, 0, speed, dt, 2000, 2000)
	axial := math.Hypot(ax-1000, ay-1000)

	dx, dy := Intent{Up: true, Left: true}.Vector()
	bx, by := Integrate(1000, 1000, dx, dy, speed, dt, 2000, 2000)
	diagonal := math.Hypot(bx-1000, by-1000)

	if math.Abs(axial-diagonal) > 1e-9 {
		t.Fatalf("diagonal displacement %v != axial displacement %v", diagonal, axial)
	}
}

func TestIntegrateClampsToBounds(t *testing.T) {
	x, y := Integrate(1, 1, -1, -1, 500, 1, 100, 100)
	if x != 0 || y != 0 {
		t.Fatalf("expected clamp to origin, got %v,%v", x, y)
	}
	x, y = Integrate(99, 99, 1, 1, 500, 1, 100, 100)
	if x != 100 || y != 100 {
		t.Fatalf("expected clamp to far corner, got %v,%v", x, y)
	}
}

func TestQuantizeTwoDecimals(t *testing.T) {
	if got := Quantize(123.456789); got != 123.46 {
		t.Fatalf("expected 123.46, got %v", got)
	}
	if got := Quantize(-0.004); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}
