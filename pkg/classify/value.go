// Package classify maps arbitrary host property values onto a closed
// semantic type model. Every value an exporter can meet is represented by a
// [Value] with exactly one [Kind]; anything the model does not cover becomes
// KindUnknown rather than an error, so classification never fails.
package classify

import "github.com/materialkit/matdump/pkg/scene"

// Kind is the semantic type tag of a classified value.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindString
	KindName
	KindColor
	KindPoint2
	KindPoint3
	KindPoint4
	KindMatrix3
	KindBitSet
	KindSequence
	KindNodeRef
	KindUnknown
)

// String returns the tag name used in encoded output.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindName:
		return "name"
	case KindColor:
		return "color"
	case KindPoint2:
		return "point2"
	case KindPoint3:
		return "point3"
	case KindPoint4:
		return "point4"
	case KindMatrix3:
		return "matrix3"
	case KindBitSet:
		return "bits"
	case KindSequence:
		return "sequence"
	case KindNodeRef:
		return "node"
	default:
		return "unknown"
	}
}

// FloatClass splits KindFloat into the numeric sub-states the encoder must
// special-case: the textual number grammar cannot represent infinities or
// NaN with digits.
type FloatClass uint8

const (
	FloatFinite FloatClass = iota
	FloatPosInf
	FloatNegInf
	FloatNaN
)

// Value is the closed tagged union produced by [Classify]. Only the fields
// relevant to Kind are meaningful; the rest stay zero.
type Value struct {
	Kind Kind

	Int        int64
	Float      float64
	FloatClass FloatClass
	Bool       bool
	Str        string // KindString, KindName, and the coerced text of KindUnknown

	Color   scene.Color
	Point2  scene.Point2
	Point3  scene.Point3
	Point4  scene.Point4
	Matrix3 scene.Matrix3
	Bits    []int

	Seq []Value

	// Ref is the live handle for KindNodeRef; RefID is its identity and is
	// what equality and decoding use (a decoded value has no live handle).
	Ref   scene.Node
	RefID string

	// Raw holds the original handle for KindUnknown so callers can attempt
	// textual coercion later.
	Raw any
}

// Int64 wraps an integer.
func Int64(v int64) Value { return Value{Kind: KindInt, Int: v} }

// Float64 wraps a finite float.
func Float64(v float64) Value { return Value{Kind: KindFloat, Float: v} }

// Equal reports semantic equality between two classified values.
// Float NaN compares equal to NaN (the sub-state is compared, not the bits),
// and node references compare by identity.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInt:
		return v.Int == o.Int
	case KindFloat:
		if v.FloatClass != o.FloatClass {
			return false
		}
		return v.FloatClass != FloatFinite || v.Float == o.Float
	case KindBool:
		return v.Bool == o.Bool
	case KindString, KindName:
		return v.Str == o.Str
	case KindColor:
		return v.Color == o.Color
	case KindPoint2:
		return v.Point2 == o.Point2
	case KindPoint3:
		return v.Point3 == o.Point3
	case KindPoint4:
		return v.Point4 == o.Point4
	case KindMatrix3:
		return v.Matrix3 == o.Matrix3
	case KindBitSet:
		if len(v.Bits) != len(o.Bits) {
			return false
		}
		for i := range v.Bits {
			if v.Bits[i] != o.Bits[i] {
				return false
			}
		}
		return true
	case KindSequence:
		if len(v.Seq) != len(o.Seq) {
			return false
		}
		for i := range v.Seq {
			if !v.Seq[i].Equal(o.Seq[i]) {
				return false
			}
		}
		return true
	case KindNodeRef:
		return v.RefID == o.RefID
	default:
		return v.Str == o.Str
	}
}
