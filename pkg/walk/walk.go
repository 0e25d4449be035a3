// Package walk drives the depth-first traversal of a material's property
// graph. The walker reads properties through the reflector, descends into
// node references, and streams encoder fragments into a sink in traversal
// order. It cannot fail: enumeration errors, read errors, and coercion
// errors are logged and isolated, and cycles and runaway reference chains
// are cut with placeholder tokens.
package walk

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/materialkit/matdump/pkg/classify"
	"github.com/materialkit/matdump/pkg/encode"
	"github.com/materialkit/matdump/pkg/introspect"
	"github.com/materialkit/matdump/pkg/scene"
)

// DefaultMaxDepth caps reference-chain descent. Authored material trees stay
// well below this; only broken or adversarial graphs reach it.
const DefaultMaxDepth = 20

// Sink receives encoder fragments in traversal order. It is append-only;
// the walker never reads back or rewrites what it emitted.
type Sink interface {
	Append(fragment string)
}

// Walker traverses one material tree per Walk call. It is stateless between
// calls; all per-traversal state lives on the call stack.
type Walker struct {
	reflector introspect.Reflector
	enc       encode.Encoder
	maxDepth  int
	logger    *log.Logger
}

// New creates a walker for the given style. maxDepth <= 0 selects
// [DefaultMaxDepth]. A nil logger falls back to log.Default().
func New(style encode.Style, maxDepth int, logger *log.Logger) *Walker {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Walker{
		enc:      encode.NewEncoder(style),
		maxDepth: maxDepth,
		logger:   logger,
	}
}

// visitState tracks one root-to-current-node path. visited is keyed by node
// identity, not name, so same-named siblings are not mistaken for cycles;
// entries are removed on return, so a node referenced from two unrelated
// branches is legitimately expanded twice.
type visitState struct {
	visited map[string]bool
	depth   int
}

// Walk exports one top-level material into sink. It always runs to
// completion; every failure mode degrades to a log line plus a partial but
// well-formed document.
func (w *Walker) Walk(root scene.Node, sink Sink) {
	sink.Append(w.enc.BeginDocument(root.Name(), root.Class()))
	st := &visitState{visited: map[string]bool{root.Identity(): true}}
	w.visit(root, nil, st, sink)
	sink.Append(w.enc.EndDocument())
}

func (w *Walker) visit(node scene.Node, path []string, st *visitState, sink Sink) {
	names, err := w.reflector.PropertyNames(node)
	if err != nil {
		// Treat the node as having zero properties.
		w.logger.Warn("property enumeration failed", "node", node.Name(), "path", joinPath(path), "err", err)
		return
	}

	first := true
	for _, name := range names {
		prop, err := w.reflector.Read(node, name)
		if err != nil {
			w.logger.Warn("skipping unreadable property", "node", node.Name(), "property", name, "err", err)
			continue
		}

		entryPath := childPath(path, name)
		v := prop.Value

		if v.Kind != classify.KindNodeRef {
			frag, cerr := w.enc.Entry(entryPath, v, first)
			if cerr != nil {
				w.logger.Warn("value coercion failed, emitting sentinel", "path", joinPath(entryPath), "err", cerr)
			}
			sink.Append(frag)
			first = false
			continue
		}

		switch {
		case st.visited[v.RefID]:
			w.logger.Debug("cycle detected", "path", joinPath(entryPath), "target", v.RefID)
			sink.Append(w.enc.Placeholder(entryPath, encode.PlaceholderCycle, first))
		case st.depth >= w.maxDepth:
			w.logger.Debug("depth cap reached", "path", joinPath(entryPath), "depth", st.depth)
			sink.Append(w.enc.Placeholder(entryPath, encode.PlaceholderPruned, first))
		default:
			sink.Append(w.enc.OpenNode(entryPath, v.Ref.Class(), first))
			st.visited[v.RefID] = true
			st.depth++
			w.visit(v.Ref, entryPath, st, sink)
			st.depth--
			delete(st.visited, v.RefID)
			sink.Append(w.enc.CloseNode(entryPath))
		}
		first = false
	}
}

// childPath copies rather than appends in place: sibling branches must not
// share backing arrays while the recursion still holds references.
func childPath(path []string, name string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = name
	return out
}

func joinPath(path []string) string {
	if len(path) == 0 {
		return "<root>"
	}
	return strings.Join(path, ".")
}
