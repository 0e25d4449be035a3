package walk

import (
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/materialkit/matdump/pkg/encode"
	"github.com/materialkit/matdump/pkg/errors"
	"github.com/materialkit/matdump/pkg/scene"
)

type testSink struct {
	b strings.Builder
}

func (s *testSink) Append(fragment string) { s.b.WriteString(fragment) }
func (s *testSink) String() string         { return s.b.String() }

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func walkDoc(t *testing.T, style encode.Style, maxDepth int, root scene.Node) string {
	t.Helper()
	sink := &testSink{}
	New(style, maxDepth, quietLogger()).Walk(root, sink)
	return sink.String()
}

func TestWalkFlat(t *testing.T) {
	mat := scene.NewNode("m1", "flat", "Material").
		Set("shine", 30).
		Set("two_sided", true)

	doc := walkDoc(t, encode.StyleTaggedScalar, 0, mat)

	want := "# material: flat\n# class: Material\nshine: 30\ntwo_sided: true\n"
	if doc != want {
		t.Errorf("document = %q, want %q", doc, want)
	}
}

func TestWalkNestedReference(t *testing.T) {
	tex := scene.NewNode("t1", "noise_small", "Noise").Set("size", 2.5)
	mat := scene.NewNode("m1", "rock", "Material").Set("bump", tex)

	doc := walkDoc(t, encode.StyleTaggedScalar, 0, mat)

	if !strings.Contains(doc, "bump: !node Noise\n") {
		t.Errorf("reference point should open a node block:\n%s", doc)
	}
	if !strings.Contains(doc, "  size: 2.5\n") {
		t.Errorf("referenced node's properties should nest one level deeper:\n%s", doc)
	}
}

func TestWalkCyclePlaceholder(t *testing.T) {
	a := scene.NewNode("a", "tex_a", "Texmap")
	b := scene.NewNode("b", "tex_b", "Texmap")
	a.Set("other", b)
	b.Set("other", a)
	mat := scene.NewNode("m", "looped", "Material").Set("diffuse", a)

	doc := walkDoc(t, encode.StyleTaggedScalar, 0, mat)

	if got := strings.Count(doc, "!cycle"); got != 1 {
		t.Errorf("cycle placeholders = %d, want exactly 1:\n%s", got, doc)
	}
	// The cycle closes back to the material, two levels down.
	if !strings.Contains(doc, "    other: !cycle\n") {
		t.Errorf("cycle placeholder should sit at the closing edge:\n%s", doc)
	}
}

func TestWalkSelfReference(t *testing.T) {
	mat := scene.NewNode("m", "selfie", "Material")
	mat.Set("reflection", mat)

	doc := walkDoc(t, encode.StyleTaggedScalar, 0, mat)

	if !strings.Contains(doc, "reflection: !cycle\n") {
		t.Errorf("self reference should be cut immediately:\n%s", doc)
	}
}

// A node referenced from two sibling branches is not a cycle and expands in
// both places.
func TestWalkSharedNodeExpandsTwice(t *testing.T) {
	shared := scene.NewNode("s", "shared_map", "Checker").Set("soften", 0.1)
	mat := scene.NewNode("m", "tiles", "Material").
		Set("diffuse", shared).
		Set("bump", shared)

	doc := walkDoc(t, encode.StyleTaggedScalar, 0, mat)

	if got := strings.Count(doc, "soften: 0.1"); got != 2 {
		t.Errorf("shared node expanded %d times, want 2:\n%s", got, doc)
	}
	if strings.Contains(doc, "!cycle") {
		t.Errorf("sibling sharing is not a cycle:\n%s", doc)
	}
}

func TestWalkDepthCap(t *testing.T) {
	// chain: mat -> n0 -> n1 -> n2 -> ...
	deepest := scene.NewNode("n9", "leaf", "Texmap").Set("marker", 1)
	head := scene.Node(deepest)
	for i := 8; i >= 0; i-- {
		n := scene.NewNode("n"+string(rune('0'+i)), "link", "Texmap")
		n.Set("next", head)
		head = n
	}
	mat := scene.NewNode("m", "chain", "Material").Set("diffuse", head)

	doc := walkDoc(t, encode.StyleTaggedScalar, 3, mat)

	if !strings.Contains(doc, "!pruned") {
		t.Errorf("over-deep chain should be pruned:\n%s", doc)
	}
	if strings.Contains(doc, "marker") {
		t.Errorf("nothing beyond the cap may appear:\n%s", doc)
	}
}

func TestWalkIsolatesReadFailures(t *testing.T) {
	mat := scene.NewNode("m", "wobbly", "Material").
		Set("first", 1).
		Set("second", 0).
		Set("third", 3).
		FailRead("second", errors.New(errors.ErrCodePropertyRead, "host refused"))

	doc := walkDoc(t, encode.StyleTaggedScalar, 0, mat)

	if !strings.Contains(doc, "first: 1\n") || !strings.Contains(doc, "third: 3\n") {
		t.Errorf("surviving properties must still be emitted:\n%s", doc)
	}
	if strings.Contains(doc, "second") {
		t.Errorf("failed property must be absent:\n%s", doc)
	}
}

func TestWalkEnumerationFailureYieldsEmptyNode(t *testing.T) {
	broken := scene.NewNode("b", "broken_map", "Texmap").
		Set("hidden", 9).
		FailEnumeration(errors.New(errors.ErrCodeIntrospection, "no interface"))
	mat := scene.NewNode("m", "tolerant", "Material").
		Set("diffuse", broken).
		Set("shine", 10)

	doc := walkDoc(t, encode.StyleTaggedScalar, 0, mat)

	if !strings.Contains(doc, "diffuse: !node Texmap\n") {
		t.Errorf("broken node still appears as an empty block:\n%s", doc)
	}
	if strings.Contains(doc, "hidden") {
		t.Errorf("unenumerable properties must not leak:\n%s", doc)
	}
	if !strings.Contains(doc, "shine: 10\n") {
		t.Errorf("traversal must continue past the broken node:\n%s", doc)
	}
}

func TestWalkFlowDocumentIsValidJSON(t *testing.T) {
	tex := scene.NewNode("t", "cell", "Cellular").Set("size", 0.5)
	mat := scene.NewNode("m", "organic", "Material").
		Set("diffuse", tex).
		Set("shine", 15).
		Set("self_illum", 0.0)

	doc := walkDoc(t, encode.StyleFlowMapping, 0, mat)

	if !json.Valid([]byte(doc)) {
		t.Fatalf("flow document is not valid JSON:\n%s", doc)
	}
}

func TestWalkDeterministic(t *testing.T) {
	tex := scene.NewNode("t", "noise", "Noise").Set("size", 1.5)
	mat := scene.NewNode("m", "steady", "Material").
		Set("diffuse", tex).
		Set("shine", 42)

	first := walkDoc(t, encode.StylePrefixedKey, 0, mat)
	for i := 0; i < 5; i++ {
		if doc := walkDoc(t, encode.StylePrefixedKey, 0, mat); doc != first {
			t.Fatalf("run %d differs:\n%s\nvs\n%s", i, doc, first)
		}
	}
}

func TestWalkPrefixedKeysAreFullPaths(t *testing.T) {
	coords := scene.NewNode("c", "uv", "UVGen").Set("blur", 0.5)
	tex := scene.NewNode("t", "wood", "Bitmaptexture").Set("coords", coords)
	mat := scene.NewNode("m", "desk", "Material").Set("texmap_diffuse", tex)

	doc := walkDoc(t, encode.StylePrefixedKey, 0, mat)

	if !strings.Contains(doc, "texmap_diffuse.coords.blur: 0.5\n") {
		t.Errorf("nested keys must be dot-joined at top level:\n%s", doc)
	}
}
