package procnet

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

// DotDef renders def as a Graphviz directed graph: processes are boxes,
// channels are nodes shaped by topology, and edges run producer process
// -> channel -> consumer process (spec.md §4.7). Deterministic given def
// (R3): ids are walked in sorted order.
func DotDef(def *Def) string {
	var b strings.Builder
	b.WriteString("digraph session {\n")

	for _, pid := range def.ProcessIDs() {
		p, _ := def.Process(pid)
		fmt.Fprintf(&b, "  p%d [shape=box, label=%s];\n", pid, dotLabel(fmt.Sprintf("process %d\n%s", pid, p.Kind)))
	}

	for _, cid := range def.ChannelIDs() {
		c, _ := def.Channel(cid)
		fmt.Fprintf(&b, "  c%d [shape=%s, label=%s];\n", cid, channelShape(c.Topology), dotLabel(fmt.Sprintf("channel %d\n%s", cid, c.Topology)))
		for _, pid := range c.Producers {
			fmt.Fprintf(&b, "  p%d -> c%d;\n", pid, cid)
		}
		for _, pid := range c.Consumers {
			fmt.Fprintf(&b, "  c%d -> p%d;\n", cid, pid)
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// DotProgram renders p as a Graphviz directed graph of modes and
// transitions: mode nodes are boxes, transition edges are labeled with
// their event id (spec.md §4.7).
func DotProgram(p *Program) string {
	var b strings.Builder
	b.WriteString("digraph program {\n")

	modeIDs := maps.Keys(p.modes)
	sort.Slice(modeIDs, func(i, j int) bool { return modeIDs[i] < modeIDs[j] })
	for _, id := range modeIDs {
		fmt.Fprintf(&b, "  m%d [shape=box, label=%s];\n", id, dotLabel(fmt.Sprintf("mode %d", id)))
	}

	eventIDs := maps.Keys(p.transitions)
	sort.Slice(eventIDs, func(i, j int) bool { return eventIDs[i] < eventIDs[j] })
	for _, e := range eventIDs {
		t := p.transitions[e]
		fmt.Fprintf(&b, "  m%d -> m%d [label=%s];\n", t.From, t.To, dotLabel(fmt.Sprintf("event %d", e)))
	}

	b.WriteString("}\n")
	return b.String()
}

func channelShape(t Topology) string {
	switch t {
	case SimplexTopology:
		return "diamond"
	case SinkTopology:
		return "invtriangle"
	case SourceTopology:
		return "triangle"
	default:
		return "ellipse"
	}
}

func dotLabel(s string) string {
	return "\"" + escapeDotLabel(s) + "\""
}

// escapeDotLabel follows Graphviz's plain quoted-string label escaping
// (not the HTML-label form, which dotLabel doesn't produce): backslash
// and double-quote are backslash-escaped, and newlines become
// Graphviz's own \n line-break escape rather than a literal newline,
// which would break the quoted string.
func escapeDotLabel(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString("\\\\")
		case '"':
			b.WriteString("\\\"")
		case '\n':
			b.WriteString("\\n")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
