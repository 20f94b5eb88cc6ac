package procnet

import (
	"errors"
	"fmt"
)

// ErrEmpty is the non-user-visible receive outcome for "no message
// pending"; run loops use it internally and it is exported only so tests
// can assert on it via errors.Is.
var ErrEmpty = errors.New("procnet: empty")

// ErrDisconnected is returned by Recv/TryRecv once every producer handle
// on a channel has been released and the receiver's queue has drained.
// Send/SendTo return a *SendError that wraps it once the target endpoint
// has been released.
var ErrDisconnected = errors.New("procnet: disconnected")

// SendError is returned by Send/SendTo when the target endpoint(s) have
// all been released. It carries the undelivered message back to the
// caller per spec.md §7.2.
type SendError struct {
	Channel ChannelID
	Message Message
}

func (e *SendError) Error() string {
	return fmt.Sprintf("procnet: send on channel %d: %v", e.Channel, ErrDisconnected)
}

func (e *SendError) Unwrap() error { return ErrDisconnected }

// DefErrorKind enumerates the validation error classes from spec.md §7.1.
type DefErrorKind int

const (
	UnknownProcessID DefErrorKind = iota
	UnknownChannelID
	TopologyCardinalityMismatch
	AsymmetricConnectivity
	AsyncRequiresSingleEndpoint
	IdSpaceSparse
	ResultVariantMismatch
	ProgramTransitionCoherence
)

func (k DefErrorKind) String() string {
	switch k {
	case UnknownProcessID:
		return "UnknownProcessID"
	case UnknownChannelID:
		return "UnknownChannelID"
	case TopologyCardinalityMismatch:
		return "TopologyCardinalityMismatch"
	case AsymmetricConnectivity:
		return "AsymmetricConnectivity"
	case AsyncRequiresSingleEndpoint:
		return "AsyncRequiresSingleEndpoint"
	case IdSpaceSparse:
		return "IdSpaceSparse"
	case ResultVariantMismatch:
		return "ResultVariantMismatch"
	case ProgramTransitionCoherence:
		return "ProgramTransitionCoherence"
	default:
		return "Unknown"
	}
}

// DefError is returned by Validate (and by program construction) when a
// Builder or Program violates one of the invariants I1–I7 / P1–P2. It
// never leaves a partially-built Def or Program reachable to the caller.
type DefError struct {
	Kind DefErrorKind
	// ProcessIDs/ChannelIDs name the offending id(s), as available for
	// the given Kind.
	ProcessIDs []ProcessID
	ChannelIDs []ChannelID
	// Detail is a short human-readable explanation.
	Detail string
}

func (e *DefError) Error() string {
	return fmt.Sprintf("procnet: invalid definition (%s): %s processes=%v channels=%v", e.Kind, e.Detail, e.ProcessIDs, e.ChannelIDs)
}

// RunError is returned by Session.Run/RunContinue when one or more process
// threads panicked. Results from the processes that completed normally
// are still returned alongside it; RunError never hides a result that was
// actually produced.
type RunError struct {
	Panics map[ProcessID]any
}

func (e *RunError) Error() string {
	return fmt.Sprintf("procnet: %d process(es) panicked: %v", len(e.Panics), e.Panics)
}
