// Package policy defines the contract every replacement policy under
// simulation implements.
package policy

import (
	"github.com/Borislavv/go-cra-sim/internal/event"
)

// Policy replays a trace one event at a time. Record never fails on normal
// operation: unrepresentable events are dropped, invariant violations panic.
// Finished verifies terminal consistency once the trace is exhausted.
type Policy interface {
	Name() string
	Record(ev *event.AccessEvent)
	Finished() error
}
