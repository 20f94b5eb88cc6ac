package procnet

import (
	"testing"
	"time"
)

func TestIsochronousTicksOnSchedule(t *testing.T) {
	ticks := 0
	spec := ProcessSpec{
		Kind:      Isochronous,
		Params:    KindParams{TickMs: 5, TicksPerUpdate: 1},
		Endpoints: nil,
		Update: func(p *Process) ControlFlow {
			ticks++
			if ticks >= 4 {
				return Break
			}
			return Continue
		},
	}
	p := newTestProcess(0, spec, map[ChannelID]Endpoint{}, nil)

	start := time.Now()
	runLoop(p)
	elapsed := time.Since(start)

	if ticks != 4 {
		t.Fatalf("update called %d times, want exactly 4", ticks)
	}
	if elapsed < 3*5*time.Millisecond {
		t.Fatalf("elapsed %v is too short for 4 ticks of 5ms each", elapsed)
	}
}

func TestMesochronousDoesNotCatchUpMissedTicks(t *testing.T) {
	ticks := 0
	var slowReturned, secondCalled time.Time
	spec := ProcessSpec{
		Kind:      Mesochronous,
		Params:    KindParams{TickMs: 2, TicksPerUpdate: 1},
		Endpoints: nil,
		Update: func(p *Process) ControlFlow {
			ticks++
			if ticks == 2 {
				secondCalled = time.Now()
			}
			if ticks == 1 {
				// Simulate a slow update that overruns several tick
				// periods; Mesochronous must not fire a burst of
				// catch-up ticks once it returns.
				time.Sleep(20 * time.Millisecond)
				slowReturned = time.Now()
			}
			if ticks >= 3 {
				return Break
			}
			return Continue
		},
	}
	p := newTestProcess(0, spec, map[ChannelID]Endpoint{}, nil)
	runLoop(p)

	if ticks != 3 {
		t.Fatalf("update called %d times, want exactly 3 (no catch-up burst)", ticks)
	}
	if gap := secondCalled.Sub(slowReturned); gap < 2*time.Millisecond {
		t.Fatalf("second update ran %v after the slow first one returned, want at least one 2ms tick (no catch-up)", gap)
	}
}
