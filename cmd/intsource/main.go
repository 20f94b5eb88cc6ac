// Command intsource runs the IntSource scenario: one Isochronous
// generator sources a Source channel to two Asynchronous summers, one
// taking even values and the other odd, each terminating on a Quit
// message and reporting its running sum as its result.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/corewire/procnet"
)

// quit is the sentinel payload IntGen sends once it has emitted every
// value; both summers break their run loop on receipt.
type quit struct{}

const (
	procIntGen procnet.ProcessID = 0
	procSum1   procnet.ProcessID = 1
	procSum2   procnet.ProcessID = 2
	chanInts   procnet.ChannelID = 0
)

func buildIntSourceDef() (*procnet.Def, error) {
	b := procnet.NewBuilder()

	b.AddProcess(procnet.ProcessSpec{
		ID:           procIntGen,
		Kind:         procnet.Isochronous,
		Params:       procnet.KindParams{TickMs: 20, TicksPerUpdate: 1},
		Sourcepoints: []procnet.ChannelID{chanInts},
		Update:       intGenUpdate(),
	})

	for _, id := range []procnet.ProcessID{procSum1, procSum2} {
		b.AddProcess(procnet.ProcessSpec{
			ID:            id,
			Kind:          procnet.Asynchronous,
			Endpoints:     []procnet.ChannelID{chanInts},
			HasResult:     true,
			HandleMessage: summerHandleMessage,
		})
	}

	b.AddChannel(procnet.ChannelSpec{
		ID:        chanInts,
		Topology:  procnet.SourceTopology,
		Producers: []procnet.ProcessID{procIntGen},
		Consumers: []procnet.ProcessID{procSum1, procSum2},
	})

	return b.Build()
}

// intGenUpdate returns an Update hook that emits 0..10 alternately to
// Sum1/Sum2 one value per tick, then sends quit to both and breaks.
func intGenUpdate() procnet.UpdateFunc {
	next := 0
	return func(p *procnet.Process) procnet.ControlFlow {
		if next >= 10 {
			p.SendTo(chanInts, procSum1, quit{})
			p.SendTo(chanInts, procSum2, quit{})
			return procnet.Break
		}
		target := procSum2
		if next%2 == 0 {
			target = procSum1
		}
		p.SendTo(chanInts, target, next)
		next++
		return procnet.Continue
	}
}

func summerHandleMessage(p *procnet.Process, env procnet.Envelope) procnet.ControlFlow {
	if _, isQuit := env.Payload.(quit); isQuit {
		return procnet.Break
	}
	sum := 0
	if r, ok := p.Result(); ok {
		sum = r.(int)
	}
	p.SetResult(sum + env.Payload.(int))
	return procnet.Continue
}

func main() {
	def, err := buildIntSourceDef()
	if err != nil {
		slog.Error("invalid session definition", "err", err)
		os.Exit(1)
	}

	results, err := procnet.NewSession(def).Run()
	if err != nil {
		slog.Error("session run failed", "err", err)
		os.Exit(1)
	}

	sum1, _ := procnet.ExtractResult[int](results, procSum1)
	sum2, _ := procnet.ExtractResult[int](results, procSum2)
	fmt.Printf("Sum1.result = %d\n", sum1)
	fmt.Printf("Sum2.result = %d\n", sum2)
}
