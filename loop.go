package procnet

import "errors"

// openSet tracks which of a polling process's endpoints it still
// services, per spec.md §4.4. It shrinks monotonically: once closed, an
// endpoint id never reopens within a session run.
type openSet struct {
	order []ChannelID
	open  map[ChannelID]bool
}

func newOpenSet(ids []ChannelID) *openSet {
	o := &openSet{
		order: append([]ChannelID(nil), ids...),
		open:  make(map[ChannelID]bool, len(ids)),
	}
	for _, id := range ids {
		o.open[id] = true
	}
	return o
}

func (o *openSet) isOpen(id ChannelID) bool { return o.open[id] }

func (o *openSet) close(id ChannelID) { o.open[id] = false }

func (o *openSet) empty() bool {
	for _, open := range o.open {
		if open {
			return false
		}
	}
	return true
}

// pollEndpoint drains cid until Empty, Disconnected, or handle_message
// returns Break, exactly matching the inner "loop: match try_recv()" of
// the Isochronous/Mesochronous/Anisochronous pseudocode in spec.md §4.4.
func pollEndpoint(p *Process, open *openSet, cid ChannelID) {
	ep := p.endpoints[cid]
	for {
		env, err := ep.TryRecv()
		switch {
		case err == nil:
			if p.spec.HandleMessage(p, env) == Break {
				open.close(cid)
				return
			}
		case errors.Is(err, ErrDisconnected):
			open.close(cid)
			p.log.Debug("endpoint disconnected", "process_id", p.id, "channel_id", cid)
			return
		default: // ErrEmpty
			return
		}
	}
}

// pollPass services every currently open endpoint once, in declared
// order.
func pollPass(p *Process, open *openSet) {
	for _, cid := range open.order {
		if open.isOpen(cid) {
			pollEndpoint(p, open, cid)
		}
	}
}

// runLoop dispatches to the run-loop implementation selected by the
// process's Kind. It returns once the process should terminate: the
// open set became empty (for processes with at least one endpoint), or
// update returned Break.
func runLoop(p *Process) {
	open := newOpenSet(p.spec.Endpoints)
	switch p.spec.Kind {
	case Isochronous:
		runIsochronous(p, open)
	case Mesochronous:
		runMesochronous(p, open)
	case Anisochronous:
		runAnisochronous(p, open)
	case Asynchronous:
		runAsynchronous(p, open)
	default:
		panic("procnet: unknown process kind")
	}
}
