package render

import (
	"strings"
	"testing"

	"github.com/materialkit/matdump/pkg/scene"
)

func cyclicLibrary() *scene.MemLibrary {
	a := scene.NewNode("a", "tex_a", "Texmap")
	b := scene.NewNode("b", "tex_b", "Texmap")
	a.Set("other", b)
	b.Set("other", a)

	shared := scene.NewNode("s", "shared", "Checker")

	m1 := scene.NewNode("m1", "looped", "Material").Set("diffuse", a)
	m2 := scene.NewNode("m2", "plain", "Material").
		Set("diffuse", shared).
		Set("bump", shared)

	return scene.NewLibrary("demo", m1, m2)
}

func TestBuildGraph(t *testing.T) {
	g, err := BuildGraph(cyclicLibrary(), 0)
	if err != nil {
		t.Fatalf("BuildGraph() error = %v", err)
	}

	if g.Library != "demo" {
		t.Errorf("library = %q", g.Library)
	}

	// m1, m2, a, b, s: shared nodes are collected once.
	if len(g.Nodes) != 5 {
		t.Fatalf("nodes = %d, want 5: %+v", len(g.Nodes), g.Nodes)
	}

	topLevel := 0
	for _, n := range g.Nodes {
		if n.TopLevel {
			topLevel++
		}
	}
	if topLevel != 2 {
		t.Errorf("top-level nodes = %d, want 2", topLevel)
	}

	// m1->a, a->b, b->a (cycle), m2->s twice.
	if len(g.Edges) != 5 {
		t.Fatalf("edges = %d, want 5: %+v", len(g.Edges), g.Edges)
	}

	cycles := 0
	for _, e := range g.Edges {
		if e.Cycle {
			cycles++
			if e.From != "b" || e.To != "a" {
				t.Errorf("cycle edge = %+v, want b->a", e)
			}
		}
	}
	if cycles != 1 {
		t.Errorf("cycle edges = %d, want 1", cycles)
	}
}

func TestBuildGraphEnumerationFailure(t *testing.T) {
	broken := scene.NewNode("x", "broken", "Material").
		FailEnumeration(errTest)
	lib := scene.NewLibrary("fragile", broken)

	g, err := BuildGraph(lib, 0)
	if err != nil {
		t.Fatalf("BuildGraph() error = %v", err)
	}
	if len(g.Nodes) != 1 || len(g.Edges) != 0 {
		t.Errorf("graph = %d nodes / %d edges, want 1/0", len(g.Nodes), len(g.Edges))
	}
}

var errTest = &testError{}

type testError struct{}

func (*testError) Error() string { return "induced failure" }

func TestToDOT(t *testing.T) {
	g, err := BuildGraph(cyclicLibrary(), 0)
	if err != nil {
		t.Fatalf("BuildGraph() error = %v", err)
	}

	dot := ToDOT(g)

	if !strings.HasPrefix(dot, "digraph materials {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("DOT framing wrong:\n%s", dot)
	}
	if !strings.Contains(dot, `"m1" [label="looped\nMaterial", fillcolor=lightblue];`) {
		t.Errorf("top-level node missing highlight:\n%s", dot)
	}
	if !strings.Contains(dot, `"b" -> "a" [label="other", style=dashed, color=red];`) {
		t.Errorf("cycle edge should render dashed:\n%s", dot)
	}
	if !strings.Contains(dot, `"m2" -> "s" [label="bump"];`) {
		t.Errorf("plain edge missing:\n%s", dot)
	}
}
