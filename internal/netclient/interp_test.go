package netclient

import (
	"testing"

	"github.com/stretchr/testify/require"

	"patrolarena/internal/sim"
)

func TestInterpolatorSnapsOnFirstSample(t *testing.T) {
	ip := NewInterpolator()
	ip.Observe(sim.Entity{ID: "a", X: 100, Y: 200})

	x, y, ok := ip.Display("a")
	require.True(t, ok)
	require.Equal(t, 100.0, x)
	require.Equal(t, 200.0, y)
}

func TestInterpolatorSmoothsTowardSample(t *testing.T) {
	ip := NewInterpolator()
	ip.Observe(sim.Entity{ID: "a", X: 0, Y: 0})
	ip.Observe(sim.Entity{ID: "a", X: 100, Y: 0})

	var prev float64
	for i := 0; i < 120; i++ {
		ip.Frame(1.0 / 60.0)
		x, _, _ := ip.Display("a")
		require.GreaterOrEqual(t, x, prev, "smoothing must be monotonic")
		require.LessOrEqual(t, x, 100.0, "smoothing must never extrapolate past the sample")
		prev = x
	}
	require.InDelta(t, 100.0, prev, 1.0, "display should settle near the sample")
}

func TestInterpolatorPrunesDisconnected(t *testing.T) {
	ip := NewInterpolator()
	ip.Observe(sim.Entity{ID: "a"})
	ip.Observe(sim.Entity{ID: "b"})
	require.Equal(t, 2, ip.Len())

	ip.Prune(map[string]struct{}{"b": {}})
	require.Equal(t, 1, ip.Len())
	_, _, ok := ip.Display("a")
	require.False(t, ok)
}
