package procnet

import "log/slog"

// SessionState is a running session's own lifecycle: Ready before Run is
// called, Running while process threads are live, Ended once results are
// collected. Results are readable only in Ended (spec.md §3).
type SessionState int

const (
	SessionReady SessionState = iota
	SessionRunning
	SessionEnded
)

// Session turns a validated Def into a live, running network of
// processes. A Session is single-use: call Run or RunContinue exactly
// once.
type Session struct {
	def   *Def
	log   *slog.Logger
	state SessionState
}

// SessionOption configures a Session at construction time.
type SessionOption func(*Session)

// WithLogger overrides the package default logger for this session and
// every process it spawns.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSession builds a Ready session from a validated Def.
func NewSession(def *Def, opts ...SessionOption) *Session {
	s := &Session{def: def, log: defaultLogger, state: SessionReady}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run spawns one thread per process, drives each to completion, and
// returns the collected result map. Equivalent to RunContinue(nil)
// discarding the forwarded-state map.
func (s *Session) Run() (map[ProcessID]Result, error) {
	results, _, err := s.RunContinue(nil)
	return results, err
}

type processOutcome struct {
	result    Result
	hasResult bool
	forwarded any
	panicVal  any
}

type processHandles struct {
	sourcepoints       map[ChannelID]Sourcepoint
	sourceSourcepoints map[ChannelID]SourceSourcepoint
	endpoints          map[ChannelID]Endpoint
}

func newProcessHandles() *processHandles {
	return &processHandles{
		sourcepoints:       make(map[ChannelID]Sourcepoint),
		sourceSourcepoints: make(map[ChannelID]SourceSourcepoint),
		endpoints:          make(map[ChannelID]Endpoint),
	}
}

// allocateChannels builds the three channel topologies from def and
// distributes sourcepoint/endpoint handles into per-process bundles. It
// also returns, per channel id, every Endpoint minted for that channel
// (one for Simplex/Sink, one per consumer for Source) so the runner can
// drain orphan messages after tear-down.
func allocateChannels(def *Def) (map[ProcessID]*processHandles, map[ChannelID][]Endpoint) {
	handles := make(map[ProcessID]*processHandles)
	ensure := func(pid ProcessID) *processHandles {
		h, ok := handles[pid]
		if !ok {
			h = newProcessHandles()
			handles[pid] = h
		}
		return h
	}

	teardown := make(map[ChannelID][]Endpoint)

	for _, cid := range def.ChannelIDs() {
		c, _ := def.Channel(cid)
		switch c.Topology {
		case SimplexTopology:
			sp, ep := NewSimplex(cid)
			ensure(c.Producers[0]).sourcepoints[cid] = sp
			ensure(c.Consumers[0]).endpoints[cid] = ep
			teardown[cid] = []Endpoint{ep}

		case SinkTopology:
			sps, ep := NewSink(cid, len(c.Producers))
			for i, pid := range c.Producers {
				ensure(pid).sourcepoints[cid] = sps[i]
			}
			ensure(c.Consumers[0]).endpoints[cid] = ep
			teardown[cid] = []Endpoint{ep}

		case SourceTopology:
			sp, eps := NewSource(cid, c.Consumers)
			ensure(c.Producers[0]).sourceSourcepoints[cid] = sp
			epList := make([]Endpoint, 0, len(eps))
			for pid, ep := range eps {
				ensure(pid).endpoints[cid] = ep
				epList = append(epList, ep)
			}
			teardown[cid] = epList
		}
	}

	return handles, teardown
}

func releaseProcessHandles(p *Process) {
	for _, sp := range p.sourcepoints {
		sp.Release()
	}
	for _, sp := range p.sourceSourcepoints {
		sp.Release()
	}
	for _, ep := range p.endpoints {
		ep.Release()
	}
}

func (s *Session) runProcess(pid ProcessID, h *processHandles, continuation any, hasContinuation bool, out chan<- processOutcome) {
	spec, _ := s.def.Process(pid)
	p := &Process{
		id:                 pid,
		spec:               spec,
		state:              StateReady,
		sourcepoints:       h.sourcepoints,
		sourceSourcepoints: h.sourceSourcepoints,
		endpoints:          h.endpoints,
		continuation:       continuation,
		hasContinuation:    hasContinuation,
		log:                s.log.With("process_id", pid),
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("process panicked", "process_id", pid, "panic", r)
			releaseProcessHandles(p)
			out <- processOutcome{panicVal: r}
		}
	}()

	p.state = StateRunning
	s.log.Info("process start", "process_id", pid, "kind", spec.Kind)

	brk := false
	if spec.Initialize != nil {
		brk = spec.Initialize(p) == Break
	}
	if !brk {
		runLoop(p)
	}

	var forwarded any
	if spec.Terminate != nil {
		forwarded = spec.Terminate(p)
	}
	p.state = StateEnded
	releaseProcessHandles(p)
	s.log.Info("process end", "process_id", pid)

	result, hasResult := p.Result()
	out <- processOutcome{result: result, hasResult: hasResult, forwarded: forwarded}
}

// RunContinue is Run plus per-process continuation state: continuations
// maps a process id to the value its Initialize sees via
// Process.Continuation. It returns the session's result map and, per
// process, the state that process's Terminate hook forwarded — the hook
// the program engine uses to pipe state across sessions (spec.md §4.5).
func (s *Session) RunContinue(continuations map[ProcessID]any) (map[ProcessID]Result, map[ProcessID]any, error) {
	s.state = SessionRunning

	handles, teardown := allocateChannels(s.def)

	processIDs := s.def.ProcessIDs()
	outcomes := make(map[ProcessID]chan processOutcome, len(processIDs))
	for _, pid := range processIDs {
		outcomes[pid] = make(chan processOutcome, 1)
	}

	for _, pid := range processIDs {
		h, ok := handles[pid]
		if !ok {
			h = newProcessHandles()
		}
		cont, hasCont := continuations[pid]
		go s.runProcess(pid, h, cont, hasCont, outcomes[pid])
	}

	results := make(map[ProcessID]Result)
	forwardedState := make(map[ProcessID]any)
	panics := make(map[ProcessID]any)

	for _, pid := range processIDs {
		oc := <-outcomes[pid]
		if oc.panicVal != nil {
			panics[pid] = oc.panicVal
			continue
		}
		if oc.hasResult {
			results[pid] = oc.result
		}
		if oc.forwarded != nil {
			forwardedState[pid] = oc.forwarded
		}
	}

	for cid, eps := range teardown {
		total := 0
		for _, ep := range eps {
			for {
				if _, err := ep.TryRecv(); err != nil {
					break
				}
				total++
			}
		}
		if total > 0 {
			s.log.Warn("orphan messages at session teardown", "channel_id", cid, "count", total)
		}
	}

	s.state = SessionEnded

	var err error
	if len(panics) > 0 {
		err = &RunError{Panics: panics}
	}
	return results, forwardedState, err
}
