package procnet

import "sync"

// simplexState is the shared mutable state of a Simplex channel: one
// producer, one consumer, one unbounded queue. Shape mirrors the teacher
// repo's Buffer/Repeater pairing in com.go, collapsed into a single
// mutex+cond guarded struct since there is exactly one reader and one
// writer side to synchronize, not an arbitrary fan-in.
type simplexState struct {
	mu               sync.Mutex
	cond             *sync.Cond
	q                queue
	producerReleased bool
	consumerReleased bool
}

type simplexSourcepoint struct {
	id ChannelID
	s  *simplexState
}

type simplexEndpoint struct {
	id ChannelID
	s  *simplexState
}

// NewSimplex allocates a Simplex (SPSC) channel for id and returns its
// producer and consumer handles.
func NewSimplex(id ChannelID) (Sourcepoint, Endpoint) {
	s := &simplexState{}
	s.cond = sync.NewCond(&s.mu)
	return &simplexSourcepoint{id: id, s: s}, &simplexEndpoint{id: id, s: s}
}

func (sp *simplexSourcepoint) channel() ChannelID { return sp.id }

func (sp *simplexSourcepoint) Send(msg Message) error {
	s := sp.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consumerReleased {
		return &SendError{Channel: sp.id, Message: msg}
	}
	s.q.push(Envelope{Channel: sp.id, Payload: msg})
	s.cond.Signal()
	return nil
}

func (sp *simplexSourcepoint) Release() {
	s := sp.s
	s.mu.Lock()
	s.producerReleased = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

func (ep *simplexEndpoint) channel() ChannelID { return ep.id }

func (ep *simplexEndpoint) TryRecv() (Envelope, error) {
	s := ep.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.q.empty() {
		return s.q.shift(), nil
	}
	if s.producerReleased {
		return Envelope{}, ErrDisconnected
	}
	return Envelope{}, ErrEmpty
}

func (ep *simplexEndpoint) Recv() (Envelope, error) {
	s := ep.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.q.empty() && !s.producerReleased {
		s.cond.Wait()
	}
	if !s.q.empty() {
		return s.q.shift(), nil
	}
	return Envelope{}, ErrDisconnected
}

func (ep *simplexEndpoint) Release() {
	s := ep.s
	s.mu.Lock()
	s.consumerReleased = true
	s.mu.Unlock()
}
