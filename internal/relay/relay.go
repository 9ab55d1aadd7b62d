// Package relay publishes actuator commands to the irrigation controller
// over MQTT. The durable relay_command slot remains the source of truth; the
// MQTT path is the push channel the field controller subscribes to.
package relay

import (
	"encoding/json"
	"time"

	"github.com/fieldsense/irrigation-control/internal/irrigation"
)

// Topic is the MQTT topic for relay commands.
const Topic = "irrigation/relay/command"

// Publisher pushes relay commands to the broker.
type Publisher interface {
	// Publish sends a relay command. A failure is reported to the caller
	// but must never crash the process.
	Publish(cmd irrigation.Command) error

	// Close disconnects from the broker.
	Close() error
}

// Payload is the MQTT message structure, matching the relay_command slot.
type Payload struct {
	Command   string `json:"command"`
	Timestamp string `json:"timestamp"`
}

// FormatPayload creates the JSON payload for a relay command.
func FormatPayload(cmd irrigation.Command) ([]byte, error) {
	return json.Marshal(Payload{
		Command:   string(cmd.State),
		Timestamp: cmd.IssuedAt.UTC().Format(time.RFC3339),
	})
}
