package scene

import "fmt"

// MemNode is an in-memory [Node] implementation. It backs the JSON scene
// loader and the test suites, and supports fault injection so traversal code
// can be exercised against enumeration and read failures.
//
// Properties keep insertion order. The zero value is not usable; use NewNode.
type MemNode struct {
	id    string
	name  string
	class string

	order []string
	props map[string]any

	enumErr  error
	readErrs map[string]error
}

// NewNode creates a node with the given identity, display name and class.
func NewNode(id, name, class string) *MemNode {
	return &MemNode{
		id:       id,
		name:     name,
		class:    class,
		props:    make(map[string]any),
		readErrs: make(map[string]error),
	}
}

// Set adds or replaces a property. New properties append to the enumeration
// order; replacing keeps the original position. Returns the node for chaining.
func (n *MemNode) Set(name string, value any) *MemNode {
	if _, ok := n.props[name]; !ok {
		n.order = append(n.order, name)
	}
	n.props[name] = value
	return n
}

// FailEnumeration makes PropertyNames return err.
func (n *MemNode) FailEnumeration(err error) *MemNode {
	n.enumErr = err
	return n
}

// FailRead makes Property(name) return err. The property still enumerates,
// mirroring hosts where the name list succeeds but the read throws.
func (n *MemNode) FailRead(name string, err error) *MemNode {
	if _, ok := n.props[name]; !ok {
		n.order = append(n.order, name)
		n.props[name] = nil
	}
	n.readErrs[name] = err
	return n
}

// Identity returns the node's stable identity.
func (n *MemNode) Identity() string { return n.id }

// Name returns the display name.
func (n *MemNode) Name() string { return n.name }

// Class returns the host class name.
func (n *MemNode) Class() string { return n.class }

// PropertyNames returns property names in insertion order.
func (n *MemNode) PropertyNames() ([]string, error) {
	if n.enumErr != nil {
		return nil, n.enumErr
	}
	out := make([]string, len(n.order))
	copy(out, n.order)
	return out, nil
}

// Property reads a property value by name.
func (n *MemNode) Property(name string) (any, error) {
	if err, ok := n.readErrs[name]; ok {
		return nil, err
	}
	v, ok := n.props[name]
	if !ok {
		return nil, fmt.Errorf("no such property: %s", name)
	}
	return v, nil
}

// MemLibrary is an in-memory [Library].
type MemLibrary struct {
	name      string
	materials []Node
	err       error
}

// NewLibrary creates a library with the given name and materials.
func NewLibrary(name string, materials ...Node) *MemLibrary {
	return &MemLibrary{name: name, materials: materials}
}

// FailMaterials makes Materials return err.
func (l *MemLibrary) FailMaterials(err error) *MemLibrary {
	l.err = err
	return l
}

// Add appends a material, preserving library order.
func (l *MemLibrary) Add(n Node) *MemLibrary {
	l.materials = append(l.materials, n)
	return l
}

// Name returns the library name.
func (l *MemLibrary) Name() string { return l.name }

// Materials returns the top-level materials in library order.
func (l *MemLibrary) Materials() ([]Node, error) {
	if l.err != nil {
		return nil, l.err
	}
	out := make([]Node, len(l.materials))
	copy(out, l.materials)
	return out, nil
}

var (
	_ Node    = (*MemNode)(nil)
	_ Library = (*MemLibrary)(nil)
)
