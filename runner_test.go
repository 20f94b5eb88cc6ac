package procnet

import "testing"

// buildIntSumSession wires a source process that emits ints 0..n-1 (then a
// nil sentinel) on a Simplex channel to a sink process that sums them into
// its result,
// exercising Session.Run end to end (spec.md's "IntSource/CharSink"
// style example).
func buildIntSumSession(t *testing.T, n int) *Def {
	t.Helper()
	b := NewBuilder()
	b.AddProcess(ProcessSpec{
		ID:        0,
		Kind:      Anisochronous,
		Sourcepoints: []ChannelID{0},
		Initialize: func(p *Process) ControlFlow {
			for i := 0; i < n; i++ {
				if err := p.Send(0, i); err != nil {
					p.Logger().Error("send failed", "err", err)
				}
			}
			p.Send(0, nil) // sentinel
			return Continue
		},
		Update: func(p *Process) ControlFlow { return Break },
	})
	b.AddProcess(ProcessSpec{
		ID:        1,
		Kind:      Anisochronous,
		Endpoints: []ChannelID{0},
		HasResult: true,
		HandleMessage: func(p *Process, env Envelope) ControlFlow {
			if env.Payload == nil {
				return Break
			}
			sum, _ := p.result.(int)
			p.SetResult(sum + env.Payload.(int))
			return Continue
		},
		Update: func(p *Process) ControlFlow { return Continue },
	})
	b.AddChannel(ChannelSpec{ID: 0, Topology: SimplexTopology, Producers: []ProcessID{0}, Consumers: []ProcessID{1}})

	def, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return def
}

func TestSessionRunProducesExpectedResult(t *testing.T) {
	def := buildIntSumSession(t, 5)
	sess := NewSession(def)
	results, err := sess.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	sum, ok := ExtractResult[int](results, 1)
	if !ok {
		t.Fatal("process 1 produced no int result")
	}
	if sum != 0+1+2+3+4 {
		t.Fatalf("sum = %d, want 10", sum)
	}
}

func TestSessionRunRecoversProcessPanic(t *testing.T) {
	b := NewBuilder()
	b.AddProcess(ProcessSpec{
		ID:   0,
		Kind: Anisochronous,
		Initialize: func(p *Process) ControlFlow {
			panic("boom")
		},
		Update: func(p *Process) ControlFlow { return Break },
	})
	def, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	_, err = NewSession(def).Run()
	if err == nil {
		t.Fatal("Run should return an error when a process panics")
	}
	runErr, ok := err.(*RunError)
	if !ok {
		t.Fatalf("err = %v (%T), want *RunError", err, err)
	}
	if _, ok := runErr.Panics[0]; !ok {
		t.Fatal("RunError should record the panic against process 0")
	}
}

func TestSessionRunContinueForwardsState(t *testing.T) {
	b := NewBuilder()
	b.AddProcess(ProcessSpec{
		ID:   0,
		Kind: Anisochronous,
		Initialize: func(p *Process) ControlFlow {
			if v, ok := p.Continuation(); ok {
				p.SetResult(v)
			}
			return Continue
		},
		Update:    func(p *Process) ControlFlow { return Break },
		Terminate: func(p *Process) any { return "forwarded-state" },
	})
	def, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	sess := NewSession(def)
	_, forwarded, err := sess.RunContinue(nil)
	if err != nil {
		t.Fatalf("RunContinue: %v", err)
	}
	if forwarded[0] != "forwarded-state" {
		t.Fatalf("forwarded[0] = %v, want forwarded-state", forwarded[0])
	}
}

func TestSessionDrainsOrphanMessages(t *testing.T) {
	b := NewBuilder()
	b.AddProcess(ProcessSpec{
		ID:           0,
		Kind:         Anisochronous,
		Sourcepoints: []ChannelID{0},
		Initialize: func(p *Process) ControlFlow {
			p.Send(0, "never read")
			return Continue
		},
		Update: func(p *Process) ControlFlow { return Break },
	})
	b.AddProcess(ProcessSpec{
		ID:        1,
		Kind:      Anisochronous,
		Endpoints: []ChannelID{0},
		// Ignores any message that happens to arrive before it
		// terminates via update on its very first pass, leaving
		// the sent message orphaned for the runner to detect.
		HandleMessage: func(p *Process, env Envelope) ControlFlow { return Continue },
		Update:         func(p *Process) ControlFlow { return Break },
	})
	b.AddChannel(ChannelSpec{ID: 0, Topology: SimplexTopology, Producers: []ProcessID{0}, Consumers: []ProcessID{1}})
	def, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// No assertion beyond "does not hang or panic": the orphan drain
	// happens after both goroutines have already exited, so this just
	// exercises that teardown path without deadlocking.
	if _, err := NewSession(def).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
