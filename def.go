package procnet

import (
	"errors"
	"sort"

	"golang.org/x/exp/maps"
)

// Def is an immutable, validated session description. The only way to
// obtain one is through Validate (or Builder.Build), which enforces
// invariants I1–I7 from spec.md §3 before any thread or channel exists.
type Def struct {
	processes map[ProcessID]ProcessSpec
	channels  map[ChannelID]ChannelSpec

	processIDs []ProcessID // dense, 0..n-1, sorted
	channelIDs []ChannelID // dense, 0..m-1, sorted

	resultProcesses map[ProcessID]bool // I7: the global-result variant set
}

// Process looks up a process spec by id.
func (d *Def) Process(id ProcessID) (ProcessSpec, bool) {
	p, ok := d.processes[id]
	return p, ok
}

// Channel looks up a channel spec by id.
func (d *Def) Channel(id ChannelID) (ChannelSpec, bool) {
	c, ok := d.channels[id]
	return c, ok
}

// ProcessIDs returns the dense, sorted set of process ids.
func (d *Def) ProcessIDs() []ProcessID {
	out := make([]ProcessID, len(d.processIDs))
	copy(out, d.processIDs)
	return out
}

// ChannelIDs returns the dense, sorted set of channel ids.
func (d *Def) ChannelIDs() []ChannelID {
	out := make([]ChannelID, len(d.channelIDs))
	copy(out, d.channelIDs)
	return out
}

// HasResult reports whether id declared a local result type (I7).
func (d *Def) HasResult(id ProcessID) bool {
	return d.resultProcesses[id]
}

// Validate walks a Builder's declared processes and channels and enforces
// I1–I7. It allocates no threads and no channels (it is pure). On success
// it returns an immutable Def; on failure, a *DefError identifying the
// offending id(s), which is also logged at ERROR on the package logger.
func Validate(b *Builder) (def *Def, err error) {
	defer func() {
		if err != nil {
			defaultLogger.Error("invalid session definition", "err", err)
		}
	}()

	processIDs := maps.Keys(b.processes)
	sort.Slice(processIDs, func(i, j int) bool { return processIDs[i] < processIDs[j] })

	channelIDs := maps.Keys(b.channels)
	sort.Slice(channelIDs, func(i, j int) bool { return channelIDs[i] < channelIDs[j] })

	// I6: dense, zero-based id spaces.
	if err := checkDense("process", len(processIDs), func(i int) bool {
		return processIDs[i] == ProcessID(i)
	}); err != nil {
		return nil, &DefError{Kind: IdSpaceSparse, ProcessIDs: processIDs, Detail: err.Error()}
	}
	if err := checkDense("channel", len(channelIDs), func(i int) bool {
		return channelIDs[i] == ChannelID(i)
	}); err != nil {
		return nil, &DefError{Kind: IdSpaceSparse, ChannelIDs: channelIDs, Detail: err.Error()}
	}

	// I1, I2, I3, I5 per channel.
	for _, cid := range channelIDs {
		c := b.channels[cid]

		if len(c.Producers) == 0 || len(c.Consumers) == 0 {
			return nil, &DefError{
				Kind:       TopologyCardinalityMismatch,
				ChannelIDs: []ChannelID{cid},
				Detail:     "channel must have at least one producer and one consumer",
			}
		}

		for _, pid := range c.Producers {
			if _, ok := b.processes[pid]; !ok {
				return nil, &DefError{Kind: UnknownProcessID, ProcessIDs: []ProcessID{pid}, ChannelIDs: []ChannelID{cid}, Detail: "channel names an undeclared producer"}
			}
		}
		for _, pid := range c.Consumers {
			if _, ok := b.processes[pid]; !ok {
				return nil, &DefError{Kind: UnknownProcessID, ProcessIDs: []ProcessID{pid}, ChannelIDs: []ChannelID{cid}, Detail: "channel names an undeclared consumer"}
			}
		}

		switch c.Topology {
		case SimplexTopology:
			if len(c.Producers) != 1 || len(c.Consumers) != 1 {
				return nil, &DefError{Kind: TopologyCardinalityMismatch, ChannelIDs: []ChannelID{cid}, Detail: "Simplex requires exactly one producer and one consumer"}
			}
		case SinkTopology:
			if len(c.Consumers) != 1 {
				return nil, &DefError{Kind: TopologyCardinalityMismatch, ChannelIDs: []ChannelID{cid}, Detail: "Sink requires exactly one consumer"}
			}
		case SourceTopology:
			if len(c.Producers) != 1 {
				return nil, &DefError{Kind: TopologyCardinalityMismatch, ChannelIDs: []ChannelID{cid}, Detail: "Source requires exactly one producer"}
			}
		default:
			return nil, &DefError{Kind: TopologyCardinalityMismatch, ChannelIDs: []ChannelID{cid}, Detail: "unknown topology"}
		}

		// I3: symmetric connectivity.
		for _, pid := range c.Producers {
			if !containsChannel(b.processes[pid].Sourcepoints, cid) {
				return nil, &DefError{Kind: AsymmetricConnectivity, ProcessIDs: []ProcessID{pid}, ChannelIDs: []ChannelID{cid}, Detail: "producer does not declare this channel as a sourcepoint"}
			}
		}
		for _, pid := range c.Consumers {
			if !containsChannel(b.processes[pid].Endpoints, cid) {
				return nil, &DefError{Kind: AsymmetricConnectivity, ProcessIDs: []ProcessID{pid}, ChannelIDs: []ChannelID{cid}, Detail: "consumer does not declare this channel as an endpoint"}
			}
		}
	}

	// I1 (reverse direction) + I4 per process: every sourcepoint/endpoint
	// a process declares must resolve to a channel that actually lists it.
	for _, pid := range processIDs {
		p := b.processes[pid]

		for _, cid := range p.Sourcepoints {
			c, ok := b.channels[cid]
			if !ok {
				return nil, &DefError{Kind: UnknownChannelID, ProcessIDs: []ProcessID{pid}, ChannelIDs: []ChannelID{cid}, Detail: "process declares an undeclared sourcepoint channel"}
			}
			if !containsProcess(c.Producers, pid) {
				return nil, &DefError{Kind: AsymmetricConnectivity, ProcessIDs: []ProcessID{pid}, ChannelIDs: []ChannelID{cid}, Detail: "process declares a sourcepoint the channel does not list as a producer"}
			}
		}
		for _, cid := range p.Endpoints {
			c, ok := b.channels[cid]
			if !ok {
				return nil, &DefError{Kind: UnknownChannelID, ProcessIDs: []ProcessID{pid}, ChannelIDs: []ChannelID{cid}, Detail: "process declares an undeclared endpoint channel"}
			}
			if !containsProcess(c.Consumers, pid) {
				return nil, &DefError{Kind: AsymmetricConnectivity, ProcessIDs: []ProcessID{pid}, ChannelIDs: []ChannelID{cid}, Detail: "process declares an endpoint the channel does not list as a consumer"}
			}
		}

		if p.Kind == Asynchronous && len(p.Endpoints) != 1 {
			return nil, &DefError{Kind: AsyncRequiresSingleEndpoint, ProcessIDs: []ProcessID{pid}, Detail: "Asynchronous process must have exactly one endpoint"}
		}
	}

	processes := make(map[ProcessID]ProcessSpec, len(b.processes))
	for id, p := range b.processes {
		processes[id] = p
	}
	channels := make(map[ChannelID]ChannelSpec, len(b.channels))
	for id, c := range b.channels {
		channels[id] = c
	}

	resultProcesses := make(map[ProcessID]bool, len(processes))
	for id, p := range processes {
		if p.HasResult {
			resultProcesses[id] = true
		}
	}

	return &Def{
		processes:       processes,
		channels:        channels,
		processIDs:      processIDs,
		channelIDs:      channelIDs,
		resultProcesses: resultProcesses,
	}, nil
}

func checkDense(_ string, n int, atIsI func(i int) bool) error {
	for i := 0; i < n; i++ {
		if !atIsI(i) {
			return errSparse
		}
	}
	return nil
}

var errSparse = errors.New("id space is not dense and zero-based")

func containsChannel(ids []ChannelID, target ChannelID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

func containsProcess(ids []ProcessID, target ProcessID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
