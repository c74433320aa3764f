package sim

// Wire protocol. Clients send fire-and-forget ClientMessages; the server
// answers with a single "you" at join, heartbeat acks, and the periodic
// authoritative state publication. cmd/protoschema reflects these types
// into a JSON schema document for client authors.

// ClientMessage is the union of every inbound message. Missing booleans
// default to false, so a malformed input degrades per-field instead of
// rejecting the whole message.
type ClientMessage struct {
	Type   string `json:"type" jsonschema:"title=Message type,description=input | togglePatrol | heartbeat"`
	Up     bool   `json:"up,omitempty"`
	Down   bool   `json:"down,omitempty"`
	Left   bool   `json:"left,omitempty"`
	Right  bool   `json:"right,omitempty"`
	Seq    uint64 `json:"seq,omitempty" jsonschema:"description=Monotonic input sequence; optional but required for reconciliation"`
	SentAt int64  `json:"sentAt,omitempty" jsonschema:"description=Client clock in unix millis for heartbeat RTT"`
}

// Intent extracts the directional snapshot carried by an input message.
func (m ClientMessage) Intent() Intent {
	return Intent{Up: m.Up, Down: m.Down, Left: m.Left, Right: m.Right}
}

// YouMessage tells a connection its own entity identifier, once, right
// after join. The room config rides along so clients can run the same
// integration formula against the same bounds.
type YouMessage struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Config Config `json:"config"`
}

// StateMessage is the periodic full-snapshot publication.
type StateMessage struct {
	Type       string   `json:"type"`
	Tick       uint64   `json:"tick"`
	ServerTime int64    `json:"serverTime"`
	Players    []Entity `json:"players"`
}

// HeartbeatAckMessage echoes a heartbeat with the measured round trip.
type HeartbeatAckMessage struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}

const (
	MessageInput        = "input"
	MessageTogglePatrol = "togglePatrol"
	MessageHeartbeat    = "heartbeat"
	MessageYou          = "you"
	MessageState        = "state"
)
