package relay

import (
	"github.com/fieldsense/irrigation-control/internal/irrigation"
)

// FakePublisher records published commands for test assertions.
type FakePublisher struct {
	// Commands contains all relay commands that were published.
	Commands []irrigation.Command

	// Payloads contains the JSON payloads that were published.
	Payloads [][]byte

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the relay command.
func (f *FakePublisher) Publish(cmd irrigation.Command) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.Commands = append(f.Commands, cmd)

	payload, err := FormatPayload(cmd)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)

	return nil
}

// Close marks the publisher closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}
