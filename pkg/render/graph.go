// Package render draws the reference structure of a material library as a
// node-link diagram. The walker-facing traversal collects materials, texture
// maps, and the reference edges between them; the result renders to Graphviz
// DOT and, through Graphviz, to SVG or PNG.
package render

import (
	"github.com/materialkit/matdump/pkg/classify"
	"github.com/materialkit/matdump/pkg/errors"
	"github.com/materialkit/matdump/pkg/introspect"
	"github.com/materialkit/matdump/pkg/scene"
)

// GraphNode is one material or texture-map vertex.
type GraphNode struct {
	ID       string
	Label    string
	Class    string
	TopLevel bool
}

// GraphEdge is one reference from a node property to another node.
// Cycle marks edges that close a reference cycle; they render dashed.
type GraphEdge struct {
	From     string
	To       string
	Property string
	Cycle    bool
}

// Graph is the collected reference structure of one library.
type Graph struct {
	Library string
	Nodes   []GraphNode
	Edges   []GraphEdge
}

// BuildGraph walks every top-level material and collects nodes and reference
// edges. Unlike the exporter, shared nodes are collected once; the diagram
// shows structure, not expansion. Introspection failures skip the affected
// node or property, mirroring the export traversal's isolation rules.
func BuildGraph(lib scene.Library, maxDepth int) (*Graph, error) {
	materials, err := lib.Materials()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSceneLoad, err, "enumerate materials of %q", lib.Name())
	}
	if maxDepth <= 0 {
		maxDepth = 20
	}

	b := &graphBuilder{
		graph:    &Graph{Library: lib.Name()},
		seen:     make(map[string]bool),
		maxDepth: maxDepth,
	}
	for _, m := range materials {
		b.addNode(m, true)
		b.collect(m, map[string]bool{m.Identity(): true}, 0)
	}
	return b.graph, nil
}

type graphBuilder struct {
	graph     *Graph
	reflector introspect.Reflector
	seen      map[string]bool
	maxDepth  int
}

func (b *graphBuilder) addNode(n scene.Node, topLevel bool) bool {
	if b.seen[n.Identity()] {
		return false
	}
	b.seen[n.Identity()] = true
	b.graph.Nodes = append(b.graph.Nodes, GraphNode{
		ID:       n.Identity(),
		Label:    n.Name(),
		Class:    n.Class(),
		TopLevel: topLevel,
	})
	return true
}

func (b *graphBuilder) collect(node scene.Node, onPath map[string]bool, depth int) {
	names, err := b.reflector.PropertyNames(node)
	if err != nil {
		return
	}
	for _, name := range names {
		prop, err := b.reflector.Read(node, name)
		if err != nil || prop.Value.Kind != classify.KindNodeRef {
			continue
		}
		target := prop.Value.Ref
		isCycle := onPath[prop.Value.RefID]
		b.graph.Edges = append(b.graph.Edges, GraphEdge{
			From:     node.Identity(),
			To:       prop.Value.RefID,
			Property: name,
			Cycle:    isCycle,
		})
		fresh := b.addNode(target, false)
		if isCycle || depth >= b.maxDepth || !fresh {
			continue
		}
		onPath[prop.Value.RefID] = true
		b.collect(target, onPath, depth+1)
		delete(onPath, prop.Value.RefID)
	}
}
