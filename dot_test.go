package procnet

import (
	"strings"
	"testing"
)

func simpleDef(t *testing.T) *Def {
	t.Helper()
	b := NewBuilder()
	b.AddProcess(simpleProcess(0, []ChannelID{0}, nil))
	b.AddProcess(simpleProcess(1, nil, []ChannelID{0}))
	b.AddChannel(ChannelSpec{ID: 0, Topology: SimplexTopology, Producers: []ProcessID{0}, Consumers: []ProcessID{1}})
	def, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return def
}

func TestDotDefIsDeterministic(t *testing.T) {
	def := simpleDef(t)
	a := DotDef(def)
	b := DotDef(def)
	if a != b {
		t.Fatal("DotDef should be deterministic for the same Def")
	}
	if !strings.Contains(a, "digraph session") {
		t.Fatal("DotDef output should open a digraph named session")
	}
	if !strings.Contains(a, "p0 -> c0") || !strings.Contains(a, "c0 -> p1") {
		t.Fatalf("DotDef output missing expected edges:\n%s", a)
	}
}

// dotLabel wraps escapeDotLabel's result in a plain quoted Graphviz
// string, so escaping follows quoted-string rules (only \ and " are
// metacharacters) rather than HTML-label entity rules; < > & are passed
// through unescaped since a plain quoted string never interprets them.
func TestDotDefEscapesLabelMetacharacters(t *testing.T) {
	got := escapeDotLabel(`a<b>c&d"e\f` + "\n" + "g")
	if strings.ContainsAny(got, `"`) && !strings.Contains(got, `\"`) {
		t.Fatalf("escapeDotLabel left an unescaped quote: %q", got)
	}
	if !strings.Contains(got, `\\`) {
		t.Fatalf("escapeDotLabel should backslash-escape a literal backslash: %q", got)
	}
	if !strings.Contains(got, `a<b>c&d`) {
		t.Fatalf("escapeDotLabel should leave < > & unescaped in a plain quoted label: %q", got)
	}
	if !strings.Contains(escapeDotLabel("line1\nline2"), `\n`) {
		t.Fatal("escapeDotLabel should turn a literal newline into the \\n escape")
	}
}

func TestDotProgramRendersModesAndTransitions(t *testing.T) {
	def := simpleDef(t)
	pb := NewProgramBuilder()
	pb.AddMode(0, def)
	pb.SetInitial(0)
	p, err := pb.Build()
	if err != nil {
		t.Fatalf("Build program: %v", err)
	}

	out := DotProgram(p)
	if !strings.Contains(out, "digraph program") {
		t.Fatal("DotProgram output should open a digraph named program")
	}
	if !strings.Contains(out, "m0") {
		t.Fatalf("DotProgram output missing mode node:\n%s", out)
	}
}
