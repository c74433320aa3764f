package sim

import "time"

// RateBucket is the token-bucket state for one connection. Tokens refill
// continuously at the configured rate and cap at the bucket capacity, so
// there is no burst credit beyond one second of budget.
type RateBucket struct {
	tokens     float64
	lastRefill time.Time
}

// RateLimiter gates inbound input messages per connection. All mutation
// happens on the room goroutine, so no locking is needed.
type RateLimiter struct {
	rate     float64
	capacity float64
	buckets  map[string]*RateBucket
}

// NewRateLimiter builds a limiter with capacity equal to one second of the
// per-second budget.
func NewRateLimiter(perSecond float64) *RateLimiter {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &RateLimiter{
		rate:     perSecond,
		capacity: perSecond,
		buckets:  make(map[string]*RateBucket),
	}
}

// Register creates a full bucket for a freshly joined connection.
func (l *RateLimiter) Register(id string, now time.Time) {
	l.buckets[id] = &RateBucket{tokens: l.capacity, lastRefill: now}
}

// Remove forgets a connection's bucket.
func (l *RateLimiter) Remove(id string) {
	delete(l.buckets, id)
}

// Allow refills the connection's bucket and consumes one token. A missing
// bucket means the connection is unknown, which is a drop. Over-budget
// messages are dropped silently: the client's latest accepted snapshot
// simply persists.
func (l *RateLimiter) Allow(id string, now time.Time) bool {
	bucket, ok := l.buckets[id]
	if !ok {
		return false
	}
	elapsed := now.Sub(bucket.lastRefill).Seconds()
	if elapsed > 0 {
		bucket.tokens += elapsed * l.rate
		if bucket.tokens > l.capacity {
			bucket.tokens = l.capacity
		}
	}
	bucket.lastRefill = now
	if bucket.tokens < 1 {
		return false
	}
	bucket.tokens--
	return true
}

// CooldownGate enforces a minimum interval between accepted triggers per
// connection. The patrol toggle uses this instead of the token bucket
// because its throttling is a re-trigger interval, not a continuous budget.
type CooldownGate struct {
	interval time.Duration
	last     map[string]time.Time
}

func NewCooldownGate(interval time.Duration) *CooldownGate {
	return &CooldownGate{interval: interval, last: make(map[string]time.Time)}
}

// Allow accepts the trigger when the cooldown has elapsed since the last
// accepted one. Rejected triggers do not reset the window.
func (g *CooldownGate) Allow(id string, now time.Time) bool {
	if last, ok := g.last[id]; ok && now.Sub(last) < g.interval {
		return false
	}
	g.last[id] = now
	return true
}

// Remove forgets a connection's cooldown window.
func (g *CooldownGate) Remove(id string) {
	delete(g.last, id)
}
