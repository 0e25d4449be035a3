// Package introspect reads properties off live scene nodes with failure
// isolation. The host object model is unreliable: enumerating a corrupted
// node's properties can fail, and individual reads can fail or panic.
// The Reflector converts all of that into error returns scoped to a single
// property or a single node, so no host misbehavior can cross a component
// boundary as a panic.
package introspect

import (
	"github.com/materialkit/matdump/pkg/classify"
	"github.com/materialkit/matdump/pkg/errors"
	"github.com/materialkit/matdump/pkg/scene"
)

// Property is one classified property of one node.
type Property struct {
	Name  string
	Value classify.Value
}

// Reflector wraps the host introspection calls. The zero value is ready to use.
type Reflector struct{}

// PropertyNames enumerates a node's property names in authoring order.
// On failure (error or panic from the host) it returns a nil slice and an
// INTROSPECTION_FAILED error; callers treat the node as having zero
// properties and continue.
func (Reflector) PropertyNames(node scene.Node) (names []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			names = nil
			err = errors.New(errors.ErrCodeIntrospection, "enumerating %q panicked: %v", node.Name(), r)
		}
	}()

	names, herr := node.PropertyNames()
	if herr != nil {
		return nil, errors.Wrap(errors.ErrCodeIntrospection, herr, "enumerate %q", node.Name())
	}
	return names, nil
}

// Read reads and classifies one property. On failure it returns a
// PROPERTY_READ_FAILED error; the caller skips this entry, records a
// diagnostic, and continues with the next property. A failed read never
// aborts the enclosing node's traversal.
func (Reflector) Read(node scene.Node, name string) (p Property, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = Property{}
			err = errors.New(errors.ErrCodePropertyRead, "reading %q.%s panicked: %v", node.Name(), name, r)
		}
	}()

	raw, herr := node.Property(name)
	if herr != nil {
		return Property{}, errors.Wrap(errors.ErrCodePropertyRead, herr, "read %q.%s", node.Name(), name)
	}
	return Property{Name: name, Value: classify.Classify(raw)}, nil
}
