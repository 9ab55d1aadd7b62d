package relay

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fieldsense/irrigation-control/internal/irrigation"
)

func TestFormatPayload(t *testing.T) {
	cmd := irrigation.Command{
		State:    irrigation.RelayOn,
		IssuedAt: time.Date(2026, 6, 15, 13, 45, 0, 0, time.FixedZone("EEST", 3*3600)),
	}

	raw, err := FormatPayload(cmd)
	if err != nil {
		t.Fatalf("format payload: %v", err)
	}

	var got Payload
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if got.Command != "ON" {
		t.Fatalf("command = %q, want ON", got.Command)
	}
	if got.Timestamp != "2026-06-15T10:45:00Z" {
		t.Fatalf("timestamp = %q, want UTC RFC3339", got.Timestamp)
	}
}

func TestFakePublisherRecordsCommands(t *testing.T) {
	pub := NewFakePublisher()

	cmd := irrigation.Command{State: irrigation.RelayOff, IssuedAt: time.Now()}
	if err := pub.Publish(cmd); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(pub.Commands) != 1 || pub.Commands[0].State != irrigation.RelayOff {
		t.Fatalf("recorded commands = %+v, want one OFF", pub.Commands)
	}
	if len(pub.Payloads) != 1 {
		t.Fatalf("recorded payloads = %d, want 1", len(pub.Payloads))
	}
}
