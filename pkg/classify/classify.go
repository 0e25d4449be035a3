package classify

import (
	"fmt"
	"math"

	"github.com/materialkit/matdump/pkg/errors"
	"github.com/materialkit/matdump/pkg/scene"
)

// Classify maps a raw host value to a [Value]. It never fails: values outside
// the known model come back as KindUnknown wrapping the original handle.
//
// Exact-type checks run before structural ones. Several host types are also
// structurally sequence-like or reference-like (a BitSet indexes like a
// sequence, a Matrix3 is four rows), so testing the concrete type first is
// what keeps them from being misclassified.
func Classify(raw any) Value {
	switch v := raw.(type) {
	case int:
		return Value{Kind: KindInt, Int: int64(v)}
	case int8:
		return Value{Kind: KindInt, Int: int64(v)}
	case int16:
		return Value{Kind: KindInt, Int: int64(v)}
	case int32:
		return Value{Kind: KindInt, Int: int64(v)}
	case int64:
		return Value{Kind: KindInt, Int: v}
	case uint:
		return Value{Kind: KindInt, Int: int64(v)}
	case uint8:
		return Value{Kind: KindInt, Int: int64(v)}
	case uint16:
		return Value{Kind: KindInt, Int: int64(v)}
	case uint32:
		return Value{Kind: KindInt, Int: int64(v)}
	case float32:
		return classifyFloat(float64(v))
	case float64:
		return classifyFloat(v)
	case bool:
		return Value{Kind: KindBool, Bool: v}
	case string:
		return Value{Kind: KindString, Str: v}
	case scene.Name:
		return Value{Kind: KindName, Str: string(v)}
	case scene.Color:
		return Value{Kind: KindColor, Color: v}
	case scene.Point2:
		return Value{Kind: KindPoint2, Point2: v}
	case scene.Point3:
		return Value{Kind: KindPoint3, Point3: v}
	case scene.Point4:
		return Value{Kind: KindPoint4, Point4: v}
	case scene.Matrix3:
		return Value{Kind: KindMatrix3, Matrix3: v}
	case scene.BitSet:
		bits := make([]int, len(v))
		copy(bits, v)
		return Value{Kind: KindBitSet, Bits: bits}
	}

	// Structural checks only after every exact type has had its chance.
	switch v := raw.(type) {
	case scene.Node:
		if v == nil {
			return Value{Kind: KindUnknown, Raw: nil}
		}
		return Value{Kind: KindNodeRef, Ref: v, RefID: v.Identity()}
	case []any:
		seq := make([]Value, len(v))
		for i, el := range v {
			seq[i] = Classify(el)
		}
		return Value{Kind: KindSequence, Seq: seq}
	}

	return Value{Kind: KindUnknown, Raw: raw}
}

func classifyFloat(f float64) Value {
	v := Value{Kind: KindFloat, Float: f}
	switch {
	case math.IsNaN(f):
		v.FloatClass = FloatNaN
	case math.IsInf(f, 1):
		v.FloatClass = FloatPosInf
	case math.IsInf(f, -1):
		v.FloatClass = FloatNegInf
	}
	return v
}

// Coerce renders an unknown value as text. Hosts expose objects whose string
// conversion itself throws; that surfaces here as a panic from a Stringer,
// which is caught and reported as a coercion error so the caller can fall
// back to a sentinel.
func Coerce(raw any) (s string, err error) {
	if raw == nil {
		return "undefined", nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeCoercion, "string conversion panicked: %v", r)
		}
	}()
	switch v := raw.(type) {
	case fmt.Stringer:
		return v.String(), nil
	case error:
		return v.Error(), nil
	default:
		return fmt.Sprintf("%v", raw), nil
	}
}
