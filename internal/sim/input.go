package sim

// InputSnapshot is the latest directional intent reported by a connection
// plus the client's sequence number for that report. Snapshots are not a
// queue: a new report replaces the previous one wholesale.
type InputSnapshot struct {
	Intent
	Seq uint64
}

// Aggregator holds the current intent per live connection. The simulation
// consumes "current intent", never a history, so merging is replacement.
type Aggregator struct {
	snapshots map[string]InputSnapshot
}

func NewAggregator() *Aggregator {
	return &Aggregator{snapshots: make(map[string]InputSnapshot)}
}

// Register seeds the all-false default for a freshly joined connection.
func (a *Aggregator) Register(id string) {
	a.snapshots[id] = InputSnapshot{}
}

// Remove forgets a connection's snapshot.
func (a *Aggregator) Remove(id string) {
	delete(a.snapshots, id)
}

// Set replaces the snapshot for a connection and stamps the entity in the
// same step: any nonzero intent takes manual control back from patrol, and
// the sequence number becomes the entity's acknowledgment watermark. This
// is the sole write path for LastProcessedInputSeq, which never decreases.
func (a *Aggregator) Set(id string, snap InputSnapshot, e *Entity) {
	a.snapshots[id] = snap
	if !snap.Zero() {
		e.PatrolActive = false
	}
	if snap.Seq > e.LastProcessedInputSeq {
		e.LastProcessedInputSeq = snap.Seq
	}
}

// Get returns the current snapshot, or the all-false default when the
// connection is unknown or has never reported.
func (a *Aggregator) Get(id string) InputSnapshot {
	return a.snapshots[id]
}

// Len reports how many connections currently have a snapshot.
func (a *Aggregator) Len() int {
	return len(a.snapshots)
}
