package procnet

import "sync"

// sinkState is the shared mutable state of a Sink channel: many
// producers, one consumer, one unbounded queue. Per-producer FIFO order
// is preserved because each producer's pushes happen while holding mu, in
// the order that producer called Send; interleave across producers is
// whichever goroutine acquires mu first, matching spec.md §5's ordering
// guarantees (a) and (b).
type sinkState struct {
	mu               sync.Mutex
	cond             *sync.Cond
	q                queue
	producerCount    int
	producerReleased int
	consumerReleased bool
}

type sinkSourcepoint struct {
	id       ChannelID
	s        *sinkState
	released bool
}

type sinkEndpoint struct {
	id ChannelID
	s  *sinkState
}

// NewSink allocates a Sink (MPSC) channel for id with the given number of
// producer handles, plus its single consumer handle.
func NewSink(id ChannelID, numProducers int) ([]Sourcepoint, Endpoint) {
	s := &sinkState{producerCount: numProducers}
	s.cond = sync.NewCond(&s.mu)
	producers := make([]Sourcepoint, numProducers)
	for i := range producers {
		producers[i] = &sinkSourcepoint{id: id, s: s}
	}
	return producers, &sinkEndpoint{id: id, s: s}
}

func (sp *sinkSourcepoint) channel() ChannelID { return sp.id }

func (sp *sinkSourcepoint) Send(msg Message) error {
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

func (sp *sinkSourcepoint) Release() {
	s := sp.s
	s.mu.Lock()
	if !sp.released {
		sp.released = true
		s.producerReleased++
		s.cond.Broadcast()
	}
	s.mu.Unlock()
}

func (ep *sinkEndpoint) channel() ChannelID { return ep.id }

func (s *sinkState) allProducersReleased() bool {
	return s.producerReleased >= s.producerCount
}

func (ep *sinkEndpoint) TryRecv() (Envelope, error) {
	s := ep.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.q.empty() {
		return s.q.shift(), nil
	}
	if s.allProducersReleased() {
		return Envelope{}, ErrDisconnected
	}
	return Envelope{}, ErrEmpty
}

func (ep *sinkEndpoint) Recv() (Envelope, error) {
	s := ep.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.q.empty() && !s.allProducersReleased() {
		s.cond.Wait()
	}
	if !s.q.empty() {
		return s.q.shift(), nil
	}
	return Envelope{}, ErrDisconnected
}

func (ep *sinkEndpoint) Release() {
	s := ep.s
	s.mu.Lock()
	s.consumerReleased = true
	s.mu.Unlock()
}
