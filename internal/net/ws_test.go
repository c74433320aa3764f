package net

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"patrolarena/internal/netclient"
	"patrolarena/internal/sim"
	"patrolarena/internal/telemetry"
)

func startTestServer(t *testing.T) string {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.TickRate = 100
	cfg.BroadcastRate = 100
	manager := sim.NewManager(cfg, telemetry.NopLogger())
	t.Cleanup(manager.StopAll)

	server := httptest.NewServer(NewHandler(manager, telemetry.NopLogger()))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?room=it"
}

func TestEndToEndInputPredictionAndAck(t *testing.T) {
	wsURL := startTestServer(t)

	client, err := netclient.Dial(wsURL)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer client.Close()

	if client.ID() == "" {
		t.Fatalf("expected entity id from the you handshake")
	}
	cfg := client.Config()
	if cfg.Width != 2000 || cfg.Height != 2000 {
		t.Fatalf("unexpected room config %+v", cfg)
	}

	// Drive upward for a while; the server must acknowledge our
	// sequences and move the authoritative entity up.
	deadline := time.Now().Add(2 * time.Second)
	var spawnY float64
	haveSpawn := false
	for time.Now().Before(deadline) {
		if err := client.Frame(sim.Intent{Up: true}, 1.0/60.0); err != nil {
			t.Fatalf("frame: %v", err)
		}
		if self, ok := client.Self(); ok {
			if !haveSpawn {
				spawnY = self.Y
				haveSpawn = true
			}
			if self.LastProcessedInputSeq > 0 && (self.Y < spawnY || self.Y == 0) {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server never acknowledged upward movement")
}

func TestEndToEndTwoClientsSeeEachOther(t *testing.T) {
	wsURL := startTestServer(t)

	a, err := netclient.Dial(wsURL)
	if err != nil {
		t.Fatalf("dial a: %v", err)
	}
	defer a.Close()
	b, err := netclient.Dial(wsURL)
	if err != nil {
		t.Fatalf("dial b: %v", err)
	}
	defer b.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := a.Frame(sim.Intent{}, 1.0/60.0); err != nil {
			t.Fatalf("frame: %v", err)
		}
		if _, _, ok := a.Remote(b.ID()); ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("client a never observed client b")
}

func TestEndToEndPatrolToggle(t *testing.T) {
	wsURL := startTestServer(t)

	client, err := netclient.Dial(wsURL)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer client.Close()

	client.TogglePatrol()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := client.Frame(sim.Intent{}, 1.0/60.0); err != nil {
			t.Fatalf("frame: %v", err)
		}
		if self, ok := client.Self(); ok && self.PatrolActive {
			cfg := client.Config()
			if self.PatrolTargetX < cfg.PatrolMargin || self.PatrolTargetX > cfg.Width-cfg.PatrolMargin {
				t.Fatalf("patrol waypoint x %v outside inset bounds", self.PatrolTargetX)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("patrol never became active")
}
