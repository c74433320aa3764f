package sim

import (
	"encoding/json"
	"testing"
)

// Missing booleans must default to false per field rather than rejecting
// the whole message.
func TestClientMessageMissingFieldsDefaultFalse(t *testing.T) {
	var msg ClientMessage
	if err := json.Unmarshal([]byte(`{"type":"input","up":true}`), &msg); err != nil {
		t.Fatalf("partial input should parse: %v", err)
	}
	in := msg.Intent()
	if !in.Up || in.Down || in.Left || in.Right {
		t.Fatalf("unexpected intent %+v", in)
	}
	if msg.Seq != 0 {
		t.Fatalf("missing seq should default to 0, got %d", msg.Seq)
	}
}
