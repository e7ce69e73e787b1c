package protocol

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDurationRoundTrip(t *testing.T) {
	d := 90*time.Second + 250*time.Millisecond
	wire := FromDuration(d)
	if wire.ToDuration() != d {
		t.Fatalf("duration round trip failed: got %v want %v", wire.ToDuration(), d)
	}
}

func TestRequestJSONRoundTrip(t *testing.T) {
	raw := `{"type":"PlayerVolumeUp","payload":{"amount":5}}`
	var req Request
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if req.Type != ReqPlayerVolumeUp {
		t.Fatalf("got type %q", req.Type)
	}
	var p AmountPayload
	if err := json.Unmarshal(req.Payload, &p); err != nil {
		t.Fatalf("payload unmarshal failed: %v", err)
	}
	if p.Amount != 5 {
		t.Fatalf("got amount %d", p.Amount)
	}
}
