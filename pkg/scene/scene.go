// Package scene defines the introspection surface over a host material
// library. The exporter never owns the object graph: materials and texture
// maps live in an external scene and are visible only through the [Node]
// interface, which enumerates property names and reads values one at a time.
//
// Both operations are fallible. Hosts are known to fail enumeration on
// corrupted nodes and to fail individual property reads, so callers must
// treat every call as a potential error and degrade gracefully.
//
// The concrete value types in this package (Color, Point2/3/4, Matrix3,
// BitSet, Name) mirror the host's parameter types. A property value returned
// by [Node.Property] is one of these, a native Go scalar, a []any sequence,
// another [Node], or something the exporter does not understand at all.
package scene

// Name is an interned bare identifier, distinct from a string value.
// Hosts use names for enum-like parameters (e.g. #repeat, #multiply).
type Name string

// Color is a 4-channel color with each channel in the 0-255 domain.
// Channels are floats because hosts interpolate colors sub-integrally.
type Color struct {
	R, G, B, A float64
}

// Point2 is a 2-component vector.
type Point2 struct {
	X, Y float64
}

// Point3 is a 3-component vector.
type Point3 struct {
	X, Y, Z float64
}

// Point4 is a 4-component vector.
type Point4 struct {
	X, Y, Z, W float64
}

// Matrix3 is a 3D transform: three basis rows plus a translation row.
type Matrix3 struct {
	Rows [4]Point3
}

// BitSet holds the positions of set bits in ascending order.
type BitSet []int

// Node is a material or texture-map object in the source graph.
//
// Identity returns a handle identity that is stable for the lifetime of the
// traversal and distinguishes two nodes even when they share a name. Cycle
// detection relies on it.
//
// PropertyNames returns property names in authoring order. It may fail on
// corrupted nodes; callers treat failure as "zero properties".
//
// Property reads a single property by name. A failed read must not prevent
// reading the remaining properties.
type Node interface {
	Identity() string
	Name() string
	Class() string
	PropertyNames() ([]string, error)
	Property(name string) (any, error)
}

// Library is an ordered collection of top-level materials.
// Materials returns them in library order, which the exporter preserves.
type Library interface {
	Name() string
	Materials() ([]Node, error)
}
