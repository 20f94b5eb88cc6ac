package procnet

// Topology names the three channel shapes from spec.md §3.
type Topology int

const (
	// SimplexTopology is unbounded single-producer single-consumer.
	SimplexTopology Topology = iota
	// SinkTopology is unbounded multi-producer single-consumer.
	SinkTopology
	// SourceTopology is unbounded single-producer multi-consumer,
	// unicast: the producer addresses a specific consumer per send.
	SourceTopology
)

func (t Topology) String() string {
	switch t {
	case SimplexTopology:
		return "Simplex"
	case SinkTopology:
		return "Sink"
	case SourceTopology:
		return "Source"
	default:
		return "Unknown"
	}
}

// Endpoint is the consumer-side handle of a channel, held by exactly one
// process regardless of topology (a Source channel hands out one Endpoint
// per consumer, each backed by its own private queue).
type Endpoint interface {
	// TryRecv never blocks. It returns (Envelope, nil) on delivery,
	// (Envelope{}, ErrEmpty) when nothing is pending, or
	// (Envelope{}, ErrDisconnected) when every producer has released and
	// the queue has drained.
	TryRecv() (Envelope, error)
	// Recv blocks until a message is delivered or the endpoint becomes
	// disconnected.
	Recv() (Envelope, error)
	// Release marks the endpoint as gone; subsequent Send/SendTo targeting
	// it observes ErrDisconnected once every endpoint sharing its queue
	// has also released (Sink/Simplex have exactly one).
	Release()
	// channel reports the id this endpoint was minted for. The runner
	// keys handle bundles by the channel id it allocated with and does
	// not call it.
	channel() ChannelID
}

// Sourcepoint is the producer-side handle of a Simplex or Sink channel.
type Sourcepoint interface {
	// Send never blocks and fails only once the consumer has released.
	Send(msg Message) error
	Release()
	channel() ChannelID
}

// SourceSourcepoint is the producer-side handle of a Source channel. It
// addresses a specific consumer per send (unicast, not multicast).
type SourceSourcepoint interface {
	SendTo(consumer ProcessID, msg Message) error
	Release()
	channel() ChannelID
}
