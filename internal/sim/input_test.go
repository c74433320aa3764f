package sim

import "testing"

func TestAggregatorLatestWins(t *testing.T) {
	agg := NewAggregator()
	agg.Register("c1")
	e := &Entity{}

	agg.Set("c1", InputSnapshot{Intent: Intent{Up: true}, Seq: 1}, e)
	agg.Set("c1", InputSnapshot{Intent: Intent{Left: true}, Seq: 2}, e)

	snap := agg.Get("c1")
	if snap.Up || !snap.Left {
		t.Fatalf("expected replacement, not merge: %+v", snap)
	}
}

func TestAggregatorDefaultsAllFalse(t *testing.T) {
	agg := NewAggregator()
	if snap := agg.Get("never-seen"); !snap.Zero() || snap.Seq != 0 {
		t.Fatalf("expected all-false default, got %+v", snap)
	}
}

func TestNonzeroIntentPreemptsPatrol(t *testing.T) {
	agg := NewAggregator()
	agg.Register("c1")
	e := &Entity{PatrolActive: true}

	agg.Set("c1", InputSnapshot{}, e)
	if !e.PatrolActive {
		t.Fatalf("all-false intent must not cancel patrol")
	}

	agg.Set("c1", InputSnapshot{Intent: Intent{Right: true}, Seq: 1}, e)
	if e.PatrolActive {
		t.Fatalf("manual intent must preempt patrol")
	}
}

func TestLastProcessedSeqNeverDecreases(t *testing.T) {
	agg := NewAggregator()
	agg.Register("c1")
	e := &Entity{}

	for _, seq := range []uint64{1, 5, 3, 0, 5, 7} {
		agg.Set("c1", InputSnapshot{Intent: Intent{Up: true}, Seq: seq}, e)
	}
	if e.LastProcessedInputSeq != 7 {
		t.Fatalf("expected watermark 7, got %d", e.LastProcessedInputSeq)
	}
}
