// Command simclient is a headless bot that exercises the full client
// stack against a running server: prediction, reconciliation, remote
// interpolation, and the patrol toggle. Useful as a smoke test and as a
// reference for the wire protocol.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/url"
	"time"

	"patrolarena/internal/netclient"
	"patrolarena/internal/sim"
)

func main() {
	var (
		server   string
		room     string
		duration time.Duration
		fps      int
		patrol   bool
	)
	flag.StringVar(&server, "server", "localhost:8080", "host:port of the arena server")
	flag.StringVar(&room, "room", "room-1", "room to join")
	flag.DurationVar(&duration, "duration", 30*time.Second, "how long to run")
	flag.IntVar(&fps, "fps", 60, "client frame rate")
	flag.BoolVar(&patrol, "patrol", false, "toggle patrol on after joining and idle")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: server, Path: "/ws", RawQuery: "room=" + room}
	client, err := netclient.Dial(u.String())
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer client.Close()
	log.Printf("joined %s as %s", room, client.ID())

	if patrol {
		client.TogglePatrol()
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	frame := time.Second / time.Duration(fps)
	ticker := time.NewTicker(frame)
	defer ticker.Stop()
	deadline := time.Now().Add(duration)

	intent := sim.Intent{}
	nextTurn := time.Now()
	last := time.Now()

	for now := range ticker.C {
		if now.After(deadline) {
			break
		}
		dt := now.Sub(last).Seconds()
		last = now

		if !patrol && now.After(nextTurn) {
			intent = randomIntent(rng)
			nextTurn = now.Add(time.Duration(500+rng.Intn(1500)) * time.Millisecond)
		}

		if err := client.Frame(intent, dt); err != nil {
			log.Fatalf("frame: %v", err)
		}

		if self, ok := client.Self(); ok {
			px, py := client.Predicted()
			divergence := math.Hypot(px-self.X, py-self.Y)
			if divergence > 50 {
				log.Printf("divergence %.1f (predicted %.1f,%.1f authoritative %.1f,%.1f)",
					divergence, px, py, self.X, self.Y)
			}
		}
	}

	px, py := client.Predicted()
	fmt.Printf("final predicted position: %.2f, %.2f; %d players visible\n",
		px, py, len(client.Players()))
}

func randomIntent(rng *rand.Rand) sim.Intent {
	return sim.Intent{
		Up:    rng.Intn(3) == 0,
		Down:  rng.Intn(3) == 0,
		Left:  rng.Intn(3) == 0,
		Right: rng.Intn(3) == 0,
	}
}
