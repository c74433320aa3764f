package sim

import "math"

// Intent is the latest directional input for one connection. The four axes
// are independent so opposing keys cancel out naturally.
type Intent struct {
	Up    bool `json:"up,omitempty"`
	Down  bool `json:"down,omitempty"`
	Left  bool `json:"left,omitempty"`
	Right bool `json:"right,omitempty"`
}

// Zero reports whether no direction is held.
func (in Intent) Zero() bool {
	return !in.Up && !in.Down && !in.Left && !in.Right
}

// Vector converts the held directions into a unit-or-zero movement vector.
// Diagonals are normalized so two held axes move no faster than one.
func (in Intent) Vector() (float64, float64) {
	var dx, dy float64
	if in.Up {
		dy -= 1
	}
	if in.Down {
		dy += 1
	}
	if in.Left {
		dx -= 1
	}
	if in.Right {
		dx += 1
	}
	length := math.Hypot(dx, dy)
	if length != 0 {
		dx /= length
		dy /= length
	}
	return dx, dy
}

// Integrate advances a position by a unit direction scaled by speed and dt,
// clamping the result to the world bounds. The same formula runs on the
// server tick and inside the client predictor, so it must stay pure.
func Integrate(x, y, dirX, dirY, speed, dt, width, height float64) (float64, float64) {
	x += dirX * speed * dt
	y += dirY * speed * dt
	return clamp(x, 0, width), clamp(y, 0, height)
}

// Quantize rounds a coordinate to two decimals so published positions stay
// small on the wire and identical across platforms.
func Quantize(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
