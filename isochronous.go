package procnet

import "time"

// runIsochronous implements timed polling with catch-up: a missed tick
// schedule is reclaimed by advancing next_deadline by a fixed tick_ms
// each time regardless of how late "now" actually was (spec.md §4.4).
func runIsochronous(p *Process, open *openSet) {
	hasEndpoints := len(open.order) > 0
	tickDuration := time.Duration(p.spec.Params.TickMs) * time.Millisecond
	ticksPerUpdate := p.spec.Params.TicksPerUpdate
	if ticksPerUpdate <= 0 {
		ticksPerUpdate = 1
	}

	nextDeadline := time.Now().Add(tickDuration)
	tickInUpdate := 0

	for {
		if hasEndpoints && open.empty() {
			return
		}

		now := time.Now()
		if now.Before(nextDeadline) {
			time.Sleep(nextDeadline.Sub(now))
			continue
		}

		if now.Sub(nextDeadline) >= tickDuration {
			p.log.Warn("late tick", "process_id", p.id, "deadline", nextDeadline, "now", now)
		}

		pollPass(p, open)

		tickInUpdate++
		if tickInUpdate == ticksPerUpdate {
			if p.spec.Update(p) == Break {
				return
			}
			tickInUpdate = 0
		}

		nextDeadline = nextDeadline.Add(tickDuration)
	}
}
