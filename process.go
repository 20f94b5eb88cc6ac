package procnet

import "log/slog"

// ProcessState is a process's position in the Ready -> Running -> Ended
// lifecycle from spec.md §3/§4.3.
type ProcessState int

const (
	StateReady ProcessState = iota
	StateRunning
	StateEnded
)

func (s ProcessState) String() string {
	switch s {
	case StateReady:
		return "Ready"
	case StateRunning:
		return "Running"
	case StateEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// Process is the capability set a user callback receives. Its fields are
// owned exclusively by the goroutine running the process's loop — no
// other goroutine touches them while the process is Running, so no
// internal locking is needed (spec.md §5, "Shared resource policy").
type Process struct {
	id    ProcessID
	spec  ProcessSpec
	state ProcessState

	sourcepoints       map[ChannelID]Sourcepoint
	sourceSourcepoints map[ChannelID]SourceSourcepoint
	endpoints          map[ChannelID]Endpoint

	result    Result
	hasResult bool

	continuation    any
	hasContinuation bool

	log *slog.Logger
}

// ID returns the process's own id.
func (p *Process) ID() ProcessID { return p.id }

// Kind returns the process's run-loop discipline.
func (p *Process) Kind() Kind { return p.spec.Kind }

// State returns the process's current lifecycle state.
func (p *Process) State() ProcessState { return p.state }

// Send transmits msg on a Simplex or Sink sourcepoint. It never blocks
// and fails only once the consumer has released its endpoint.
func (p *Process) Send(channel ChannelID, msg Message) error {
	sp, ok := p.sourcepoints[channel]
	if !ok {
		panic("procnet: Send on a channel that is not a Simplex/Sink sourcepoint of this process")
	}
	return sp.Send(msg)
}

// SendTo transmits msg to a specific consumer on a Source sourcepoint. It
// never blocks and fails once that consumer has released, or when consumer
// is not a consumer of the channel.
func (p *Process) SendTo(channel ChannelID, consumer ProcessID, msg Message) error {
	sp, ok := p.sourceSourcepoints[channel]
	if !ok {
		panic("procnet: SendTo on a channel that is not a Source sourcepoint of this process")
	}
	return sp.SendTo(consumer, msg)
}

// SetResult stores the process's local result, later surfaced in the
// session-wide result map under this process's id.
func (p *Process) SetResult(r Result) {
	p.result = r
	p.hasResult = true
}

// Result returns the process's currently stored result, if any.
func (p *Process) Result() (Result, bool) {
	return p.result, p.hasResult
}

// Continuation returns the state forwarded into this process's
// Initialize call by a program transition, if any (spec.md §4.6).
func (p *Process) Continuation() (any, bool) {
	return p.continuation, p.hasContinuation
}

// Logger returns the process-scoped logger.
func (p *Process) Logger() *slog.Logger { return p.log }
