package procnet

import "log/slog"

// Transition is a directed edge between two modes, labeled with a unique
// event id (P1). Continuation maps a subset of the source mode's process
// ids to a subset of the target mode's process ids; the map must be
// injective on its domain (P2) — unmapped target processes start with no
// continuation, i.e. their default initial state.
type Transition struct {
	Event        EventID
	From         ModeID
	To           ModeID
	Continuation map[ProcessID]ProcessID
}

// TransitionChoiceFunc inspects a finished mode's result map and either
// names the event to fire (true) or halts the program (false).
type TransitionChoiceFunc func(results map[ProcessID]Result) (EventID, bool)

// ProgramBuilder accumulates a candidate program: a set of modes (each a
// validated Def), a set of transitions between them, and one transition
// choice per mode.
type ProgramBuilder struct {
	modes          map[ModeID]*Def
	modeOrder      []ModeID
	transitionList []Transition
	choices        map[ModeID]TransitionChoiceFunc
	initial        ModeID
	hasInitial     bool
	log            *slog.Logger
}

// NewProgramBuilder returns an empty ProgramBuilder.
func NewProgramBuilder() *ProgramBuilder {
	return &ProgramBuilder{
		modes:   make(map[ModeID]*Def),
		choices: make(map[ModeID]TransitionChoiceFunc),
		log:     defaultLogger,
	}
}

// WithProgramLogger overrides the package default logger used by every
// session the resulting program runs.
func (b *ProgramBuilder) WithProgramLogger(l *slog.Logger) *ProgramBuilder {
	if l != nil {
		b.log = l
	}
	return b
}

// AddMode registers a validated session Def as mode id.
func (b *ProgramBuilder) AddMode(id ModeID, def *Def) *ProgramBuilder {
	if _, exists := b.modes[id]; !exists {
		b.modeOrder = append(b.modeOrder, id)
	}
	b.modes[id] = def
	return b
}

// SetInitial marks id as the program's initial mode.
func (b *ProgramBuilder) SetInitial(id ModeID) *ProgramBuilder {
	b.initial = id
	b.hasInitial = true
	return b
}

// SetChoice installs the transition choice function consulted once mode
// id's session completes.
func (b *ProgramBuilder) SetChoice(mode ModeID, f TransitionChoiceFunc) *ProgramBuilder {
	b.choices[mode] = f
	return b
}

// AddTransition registers t. t.Event must be unique across the whole
// program (P1); enforced at Build time. Every call appends, including a
// repeat of an already-used event id — Build rejects the duplicate
// rather than AddTransition silently overwriting the earlier one.
func (b *ProgramBuilder) AddTransition(t Transition) *ProgramBuilder {
	b.transitionList = append(b.transitionList, t)
	return b
}

// Build validates P1–P3 and returns a Program positioned at its initial
// mode, or a *DefError identifying the coherence violation.
func (b *ProgramBuilder) Build() (*Program, error) {
	if !b.hasInitial {
		return nil, &DefError{Kind: ProgramTransitionCoherence, Detail: "program has no initial mode"}
	}
	if _, ok := b.modes[b.initial]; !ok {
		return nil, &DefError{Kind: ProgramTransitionCoherence, Detail: "initial mode is not a declared mode"}
	}

	transitions := make(map[EventID]Transition, len(b.transitionList))
	eventOrder := make([]EventID, 0, len(b.transitionList))
	for _, t := range b.transitionList {
		if _, exists := transitions[t.Event]; exists {
			return nil, &DefError{Kind: ProgramTransitionCoherence, Detail: "event id labels more than one transition"}
		}
		transitions[t.Event] = t
		eventOrder = append(eventOrder, t.Event)
	}

	for _, e := range eventOrder {
		t := transitions[e]

		fromDef, ok := b.modes[t.From]
		if !ok {
			return nil, &DefError{Kind: ProgramTransitionCoherence, Detail: "transition names an undeclared source mode"}
		}
		toDef, ok := b.modes[t.To]
		if !ok {
			return nil, &DefError{Kind: ProgramTransitionCoherence, Detail: "transition names an undeclared target mode"}
		}

		seenTarget := make(map[ProcessID]bool, len(t.Continuation))
		for srcPID, dstPID := range t.Continuation {
			if _, ok := fromDef.Process(srcPID); !ok {
				return nil, &DefError{Kind: ProgramTransitionCoherence, ProcessIDs: []ProcessID{srcPID}, Detail: "continuation domain id is not a process of the source mode"}
			}
			if _, ok := toDef.Process(dstPID); !ok {
				return nil, &DefError{Kind: ProgramTransitionCoherence, ProcessIDs: []ProcessID{dstPID}, Detail: "continuation codomain id is not a process of the target mode"}
			}
			if seenTarget[dstPID] {
				return nil, &DefError{Kind: ProgramTransitionCoherence, ProcessIDs: []ProcessID{dstPID}, Detail: "continuation map is not injective: two source processes map to the same target process"}
			}
			seenTarget[dstPID] = true
		}
	}

	reachable := map[ModeID]bool{b.initial: true}
	frontier := []ModeID{b.initial}
	for len(frontier) > 0 {
		m := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		for _, e := range eventOrder {
			t := transitions[e]
			if t.From == m && !reachable[t.To] {
				reachable[t.To] = true
				frontier = append(frontier, t.To)
			}
		}
	}
	for _, id := range b.modeOrder {
		if !reachable[id] {
			b.log.Warn("mode is not reachable from the initial mode", "mode_id", id)
		}
	}

	modes := make(map[ModeID]*Def, len(b.modes))
	for id, def := range b.modes {
		modes[id] = def
	}
	choices := make(map[ModeID]TransitionChoiceFunc, len(b.choices))
	for id, f := range b.choices {
		choices[id] = f
	}

	p := &Program{
		modes:       modes,
		transitions: transitions,
		choices:     choices,
		initialMode: b.initial,
		log:         b.log,
	}
	p.Initial()
	return p, nil
}

// Program is a state machine whose nodes are sessions (modes) and whose
// edges carry per-process continuation state forward. It holds exactly
// one live session at a time plus pending continuations queued for the
// next one (spec.md §3, "Lifecycles").
type Program struct {
	modes       map[ModeID]*Def
	transitions map[EventID]Transition
	choices     map[ModeID]TransitionChoiceFunc
	initialMode ModeID

	current ModeID
	pending map[ProcessID]any
	halted  bool

	log *slog.Logger
}

// Initial resets the program to its initial mode with no pending
// continuations, discarding any in-progress run.
func (p *Program) Initial() *Program {
	p.current = p.initialMode
	p.pending = nil
	p.halted = false
	return p
}

// Current returns the mode the program is positioned at (or just halted
// in, after Step/Run returns halted=true).
func (p *Program) Current() ModeID { return p.current }

// Halted reports whether the program has finished (no further Step will
// do anything).
func (p *Program) Halted() bool { return p.halted }

// Step runs the current mode's session to completion, applies its
// transition choice, and advances to the next mode. It returns the
// results of the session that just ran. halted is true once the current
// mode's choice function returns false (or is nil), modeling "the
// program halts"; the current mode is left at the one that just ran.
func (p *Program) Step() (results map[ProcessID]Result, halted bool, err error) {
	if p.halted {
		return nil, true, nil
	}

	def, ok := p.modes[p.current]
	if !ok {
		return nil, true, &DefError{Kind: ProgramTransitionCoherence, Detail: "program is positioned at an undeclared mode"}
	}

	sess := NewSession(def, WithLogger(p.log))
	results, forwarded, err := sess.RunContinue(p.pending)
	if err != nil {
		return results, false, err
	}

	choice := p.choices[p.current]
	if choice == nil {
		p.halted = true
		return results, true, nil
	}
	event, ok := choice(results)
	if !ok {
		p.halted = true
		return results, true, nil
	}

	t, ok := p.transitions[event]
	if !ok {
		return results, false, &DefError{Kind: ProgramTransitionCoherence, Detail: "transition choice returned an unknown event id"}
	}

	next := make(map[ProcessID]any, len(t.Continuation))
	for srcPID, dstPID := range t.Continuation {
		if v, ok := forwarded[srcPID]; ok {
			next[dstPID] = v
		}
	}

	p.current = t.To
	p.pending = next
	return results, false, nil
}

// Run loops Step until the program halts or a Step returns an error.
func (p *Program) Run() (results map[ProcessID]Result, err error) {
	for {
		var halted bool
		results, halted, err = p.Step()
		if err != nil || halted {
			return results, err
		}
	}
}
