package net

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"patrolarena/internal/sim"
	"patrolarena/internal/telemetry"
)

type diagnosticsPayload struct {
	Room       string                     `json:"room"`
	ServerTime int64                      `json:"serverTime"`
	Tick       uint64                     `json:"tick"`
	Players    int                        `json:"players"`
	Config     sim.Config                 `json:"config"`
	Counters   telemetry.CountersSnapshot `json:"counters"`
}

// NewHandler wires the HTTP surface: websocket entry, health, and room
// diagnostics.
func NewHandler(manager *sim.Manager, log *zap.SugaredLogger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", HandleWS(manager, log))

	// Rendering clients are external; the root just identifies the service.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("patrolarena server\n"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("room")
		if roomID == "" {
			roomID = "room-1"
		}
		room, ok := manager.Get(roomID)
		if !ok {
			http.Error(w, "unknown room", http.StatusNotFound)
			return
		}
		payload := diagnosticsPayload{
			Room:       roomID,
			ServerTime: time.Now().UnixMilli(),
			Tick:       room.Tick(),
			Players:    room.PlayerCount(),
			Config:     room.Config(),
			Counters:   room.Counters().Snapshot(),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	})

	return mux
}
