package procnet

import "time"

// runMesochronous implements timed polling without catch-up: a missed
// tick is never reclaimed, since next_deadline is re-derived as
// max(now, next_deadline) + tick_ms after each tick rather than advanced
// along the fixed schedule (spec.md §4.4).
func runMesochronous(p *Process, open *openSet) {
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

		pollPass(p, open)

		tickInUpdate++
		if tickInUpdate == ticksPerUpdate {
			if p.spec.Update(p) == Break {
				return
			}
			tickInUpdate = 0
		}

		now = time.Now()
		if now.After(nextDeadline) {
			nextDeadline = now
		}
		nextDeadline = nextDeadline.Add(tickDuration)
	}
}
