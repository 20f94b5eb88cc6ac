// Command combined runs Myprogram: the IntSource session followed, via
// the ToCharSink transition, by the CharSink session. The transition
// choice reads Sum1+Sum2 from IntSource's results and prints the
// combined total before CharSink runs. Pass -dot to also write
// session.dot (IntSource's Def) and program.dot (the whole program) to
// the current directory.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/corewire/procnet"
)

type quit struct{}

const (
	modeIntSource procnet.ModeID = 0
	modeCharSink  procnet.ModeID = 1

	eventToCharSink procnet.EventID = 0
)

const (
	procIntGen procnet.ProcessID = 0
	procSum1   procnet.ProcessID = 1
	procSum2   procnet.ProcessID = 2
	chanInts   procnet.ChannelID = 0
)

func buildIntSourceDef() (*procnet.Def, error) {
	b := procnet.NewBuilder()

	next := 0
	b.AddProcess(procnet.ProcessSpec{
		ID:           procIntGen,
		Kind:         procnet.Isochronous,
		Params:       procnet.KindParams{TickMs: 20, TicksPerUpdate: 1},
		Sourcepoints: []procnet.ChannelID{chanInts},
		Update: func(p *procnet.Process) procnet.ControlFlow {
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
		},
	})

	for _, id := range []procnet.ProcessID{procSum1, procSum2} {
		b.AddProcess(procnet.ProcessSpec{
			ID:        id,
			Kind:      procnet.Asynchronous,
			Endpoints: []procnet.ChannelID{chanInts},
			HasResult: true,
			HandleMessage: func(p *procnet.Process, env procnet.Envelope) procnet.ControlFlow {
				if _, isQuit := env.Payload.(quit); isQuit {
					return procnet.Break
				}
				sum := 0
				if r, ok := p.Result(); ok {
					sum = r.(int)
				}
				p.SetResult(sum + env.Payload.(int))
				return procnet.Continue
			},
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

const (
	procCharGen     procnet.ProcessID = 0
	procCharCollect procnet.ProcessID = 1
	chanChars       procnet.ChannelID = 0
)

func buildCharSinkDef() (*procnet.Def, error) {
	b := procnet.NewBuilder()

	letters := []rune("apis")
	sent := 0
	b.AddProcess(procnet.ProcessSpec{
		ID:           procCharGen,
		Kind:         procnet.Anisochronous,
		Sourcepoints: []procnet.ChannelID{chanChars},
		Update: func(p *procnet.Process) procnet.ControlFlow {
			if sent >= len(letters) {
				return procnet.Break
			}
			p.Send(chanChars, letters[sent])
			sent++
			return procnet.Continue
		},
	})

	b.AddProcess(procnet.ProcessSpec{
		ID:        procCharCollect,
		Kind:      procnet.Mesochronous,
		Params:    procnet.KindParams{TickMs: 5, TicksPerUpdate: 1},
		Endpoints: []procnet.ChannelID{chanChars},
		HasResult: true,
		HandleMessage: func(p *procnet.Process, env procnet.Envelope) procnet.ControlFlow {
			s := ""
			if r, ok := p.Result(); ok {
				s = r.(string)
			}
			p.SetResult(s + string(env.Payload.(rune)))
			return procnet.Continue
		},
		Update: func(p *procnet.Process) procnet.ControlFlow { return procnet.Continue },
	})

	b.AddChannel(procnet.ChannelSpec{
		ID:        chanChars,
		Topology:  procnet.SinkTopology,
		Producers: []procnet.ProcessID{procCharGen},
		Consumers: []procnet.ProcessID{procCharCollect},
	})

	return b.Build()
}

func buildProgram() (*procnet.Program, error) {
	intSourceDef, err := buildIntSourceDef()
	if err != nil {
		return nil, fmt.Errorf("IntSource: %w", err)
	}
	charSinkDef, err := buildCharSinkDef()
	if err != nil {
		return nil, fmt.Errorf("CharSink: %w", err)
	}

	pb := procnet.NewProgramBuilder()
	pb.AddMode(modeIntSource, intSourceDef)
	pb.AddMode(modeCharSink, charSinkDef)
	pb.SetInitial(modeIntSource)

	pb.SetChoice(modeIntSource, func(results map[procnet.ProcessID]procnet.Result) (procnet.EventID, bool) {
		sum1, _ := procnet.ExtractResult[int](results, procSum1)
		sum2, _ := procnet.ExtractResult[int](results, procSum2)
		fmt.Printf("combined sums: %d\n", sum1+sum2)
		return eventToCharSink, true
	})

	pb.AddTransition(procnet.Transition{
		Event:        eventToCharSink,
		From:         modeIntSource,
		To:           modeCharSink,
		Continuation: map[procnet.ProcessID]procnet.ProcessID{},
	})

	return pb.Build()
}

func main() {
	dotFlag := flag.Bool("dot", false, "write session.dot and program.dot alongside running the program")
	flag.Parse()

	p, err := buildProgram()
	if err != nil {
		slog.Error("invalid program definition", "err", err)
		os.Exit(1)
	}

	if *dotFlag {
		if err := writeDotFiles(); err != nil {
			slog.Error("failed to write dot files", "err", err)
			os.Exit(1)
		}
	}

	results, err := p.Run()
	if err != nil {
		slog.Error("program run failed", "err", err)
		os.Exit(1)
	}

	charResult, _ := procnet.ExtractResult[string](results, procCharCollect)
	fmt.Printf("consumer.result = %q\n", charResult)
}

func writeDotFiles() error {
	intSourceDef, err := buildIntSourceDef()
	if err != nil {
		return err
	}
	if err := os.WriteFile("session.dot", []byte(procnet.DotDef(intSourceDef)), 0o644); err != nil {
		return err
	}

	p, err := buildProgram()
	if err != nil {
		return err
	}
	return os.WriteFile("program.dot", []byte(procnet.DotProgram(p)), 0o644)
}
