package procnet

import "sync"

// sourceState is the shared mutable state of a Source channel: one
// producer, many consumers, one unbounded queue per consumer. Unicast
// means the producer's SendTo indexes directly into the addressed
// consumer's queue — there is no broadcast/fan-out path.
type sourceState struct {
	mu               sync.Mutex
	queues           map[ProcessID]*queue
	conds            map[ProcessID]*sync.Cond
	producerReleased bool
	consumerReleased map[ProcessID]bool
}

type sourceSourcepoint struct {
	id ChannelID
	s  *sourceState
}

type sourceEndpoint struct {
	id   ChannelID
	self ProcessID
	s    *sourceState
}

// NewSource allocates a Source (SPMC unicast) channel for id, one queue
// per id in consumers, plus the single producer handle. The returned
// endpoints map is keyed by consumer ProcessID.
func NewSource(id ChannelID, consumers []ProcessID) (SourceSourcepoint, map[ProcessID]Endpoint) {
	s := &sourceState{
		queues:           make(map[ProcessID]*queue, len(consumers)),
		conds:            make(map[ProcessID]*sync.Cond, len(consumers)),
		consumerReleased: make(map[ProcessID]bool, len(consumers)),
	}
	endpoints := make(map[ProcessID]Endpoint, len(consumers))
	for _, c := range consumers {
		s.queues[c] = &queue{}
		s.conds[c] = sync.NewCond(&s.mu)
		endpoints[c] = &sourceEndpoint{id: id, self: c, s: s}
	}
	return &sourceSourcepoint{id: id, s: s}, endpoints
}

func (sp *sourceSourcepoint) channel() ChannelID { return sp.id }

func (sp *sourceSourcepoint) SendTo(consumer ProcessID, msg Message) error {
	s := sp.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consumerReleased[consumer] {
		return &SendError{Channel: sp.id, Message: msg}
	}
	q, ok := s.queues[consumer]
	if !ok {
		return &SendError{Channel: sp.id, Message: msg}
	}
	q.push(Envelope{Channel: sp.id, Payload: msg})
	s.conds[consumer].Signal()
	return nil
}

func (sp *sourceSourcepoint) Release() {
	s := sp.s
	s.mu.Lock()
	s.producerReleased = true
	for _, c := range s.conds {
		c.Broadcast()
	}
	s.mu.Unlock()
}

func (ep *sourceEndpoint) channel() ChannelID { return ep.id }

func (ep *sourceEndpoint) TryRecv() (Envelope, error) {
	s := ep.s
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queues[ep.self]
	if !q.empty() {
		return q.shift(), nil
	}
	if s.producerReleased {
		return Envelope{}, ErrDisconnected
	}
	return Envelope{}, ErrEmpty
}

func (ep *sourceEndpoint) Recv() (Envelope, error) {
	s := ep.s
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queues[ep.self]
	for q.empty() && !s.producerReleased {
		s.conds[ep.self].Wait()
	}
	if !q.empty() {
		return q.shift(), nil
	}
	return Envelope{}, ErrDisconnected
}

func (ep *sourceEndpoint) Release() {
	s := ep.s
	s.mu.Lock()
	s.consumerReleased[ep.self] = true
	s.mu.Unlock()
}
