// Package store persists irrigation decisions and the relay-command slot.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/fieldsense/irrigation-control/internal/irrigation"
)

// ErrNotFound is returned when no record is available for a query.
var ErrNotFound = errors.New("no record found")

// Store is the durable persistence contract. The decision log is
// append-only under the irrigation_data collection; the relay command is a
// single overwritten slot. Writes are atomic at the storage boundary.
type Store interface {
	// AppendDecision inserts a new immutable decision record.
	AppendDecision(ctx context.Context, d irrigation.Decision) error

	// LatestDecision returns the most recently recorded decision.
	LatestDecision(ctx context.Context) (irrigation.Decision, error)

	// DecisionsInRange returns decisions recorded between from and to,
	// inclusive, ordered by timestamp ascending.
	DecisionsInRange(ctx context.Context, from, to time.Time) ([]irrigation.Decision, error)

	// SetRelayCommand overwrites the current desired actuator state.
	// Last writer wins.
	SetRelayCommand(ctx context.Context, c irrigation.Command) error

	// RelayCommand returns the current desired actuator state.
	RelayCommand(ctx context.Context) (irrigation.Command, error)

	Close() error
}
