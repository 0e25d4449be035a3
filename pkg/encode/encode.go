package encode

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/materialkit/matdump/pkg/classify"
)

// Encoder renders document fragments for one style. It is stateless: every
// method is a pure function of its arguments, and the caller (the graph
// walker) owns all traversal state, including the "first sibling" flag the
// flow-mapping grammar needs for comma placement.
type Encoder struct {
	style Style
}

// NewEncoder creates an encoder for the given style.
func NewEncoder(style Style) Encoder {
	return Encoder{style: style}
}

// Style returns the encoder's grammar style.
func (e Encoder) Style() Style { return e.style }

// BeginDocument opens the document for one top-level material.
func (e Encoder) BeginDocument(material, class string) string {
	if e.style == StyleFlowMapping {
		return "{\n  \"material\": " + jsonString(material) +
			",\n  \"class\": " + jsonString(class) +
			",\n  \"properties\": {"
	}
	return "# material: " + material + "\n# class: " + class + "\n"
}

// EndDocument closes the document.
func (e Encoder) EndDocument() string {
	if e.style == StyleFlowMapping {
		return "\n  }\n}\n"
	}
	return ""
}

// Entry renders one scalar property. path is the entry's full key path,
// ending with the property name. first reports whether this is the first
// emitted child of the enclosing node.
//
// A non-nil error means the value was opaque and its textual coercion
// failed; the returned fragment is still valid (it carries the sentinel
// literal) and must be appended regardless.
func (e Encoder) Entry(path []string, v classify.Value, first bool) (string, error) {
	scalar, err := EncodeScalar(v, e.style)
	switch e.style {
	case StyleFlowMapping:
		return e.sep(first) + e.flowIndent(len(path)-1) + jsonString(path[len(path)-1]) + ": " + scalar, err
	case StylePrefixedKey:
		return strings.Join(path, ".") + ": " + scalar + "\n", err
	default:
		return yamlIndent(len(path)-1) + path[len(path)-1] + ": " + scalar + "\n", err
	}
}

// OpenNode opens the nested content of a node reference at path. The
// referenced node's content follows at the deeper path; the reference point
// itself never inlines it.
func (e Encoder) OpenNode(path []string, class string, first bool) string {
	switch e.style {
	case StyleFlowMapping:
		return e.sep(first) + e.flowIndent(len(path)-1) + jsonString(path[len(path)-1]) +
			": {\"type\": \"node\", \"class\": " + jsonString(class) + ", \"properties\": {"
	case StylePrefixedKey:
		return strings.Join(path, ".") + ": !node " + quoteSingle(class) + "\n"
	default:
		return yamlIndent(len(path)-1) + path[len(path)-1] + ": !node " + class + "\n"
	}
}

// CloseNode closes a node opened with OpenNode.
func (e Encoder) CloseNode(path []string) string {
	if e.style == StyleFlowMapping {
		return "\n" + e.flowIndent(len(path)-1) + "}}"
	}
	return ""
}

// Placeholder renders a terminal token at path for a branch the walker will
// not descend into. reason is [PlaceholderCycle] or [PlaceholderPruned].
func (e Encoder) Placeholder(path []string, reason string, first bool) string {
	switch e.style {
	case StyleFlowMapping:
		return e.sep(first) + e.flowIndent(len(path)-1) + jsonString(path[len(path)-1]) +
			": {\"type\": " + jsonString(reason) + "}"
	case StylePrefixedKey:
		return strings.Join(path, ".") + ": !" + reason + "\n"
	default:
		return yamlIndent(len(path)-1) + path[len(path)-1] + ": !" + reason + "\n"
	}
}

func (e Encoder) sep(first bool) string {
	if first {
		return "\n"
	}
	return ",\n"
}

// flowIndent indents flow-mapping entries two levels below the document
// frame plus one level per node depth.
func (e Encoder) flowIndent(depth int) string {
	return strings.Repeat("  ", depth+2)
}

func yamlIndent(depth int) string {
	return strings.Repeat("  ", depth)
}

// EncodeScalar renders a single classified value in the given style's value
// grammar, without a key. A non-nil error reports a failed opaque coercion;
// the returned text is then the sentinel form and still valid.
func EncodeScalar(v classify.Value, style Style) (string, error) {
	if style == StyleFlowMapping {
		return jsonScalar(v)
	}
	return yamlScalar(v, style == StylePrefixedKey)
}

func yamlScalar(v classify.Value, single bool) (string, error) {
	switch v.Kind {
	case classify.KindInt:
		return strconv.FormatInt(v.Int, 10), nil
	case classify.KindFloat:
		switch v.FloatClass {
		case classify.FloatPosInf:
			return yamlPosInf, nil
		case classify.FloatNegInf:
			return yamlNegInf, nil
		case classify.FloatNaN:
			return yamlNaN, nil
		default:
			return formatFloat(v.Float), nil
		}
	case classify.KindBool:
		return strconv.FormatBool(v.Bool), nil
	case classify.KindString:
		return quote(v.Str, single), nil
	case classify.KindName:
		return "!name " + v.Str, nil
	case classify.KindColor:
		return "!color " + floatList(v.Color.R, v.Color.G, v.Color.B, v.Color.A), nil
	case classify.KindPoint2:
		return "!point2 " + floatList(v.Point2.X, v.Point2.Y), nil
	case classify.KindPoint3:
		return "!point3 " + floatList(v.Point3.X, v.Point3.Y, v.Point3.Z), nil
	case classify.KindPoint4:
		return "!point4 " + floatList(v.Point4.X, v.Point4.Y, v.Point4.Z, v.Point4.W), nil
	case classify.KindMatrix3:
		rows := make([]string, 4)
		for i, r := range v.Matrix3.Rows {
			rows[i] = floatList(r.X, r.Y, r.Z)
		}
		return "!matrix3 [" + strings.Join(rows, ", ") + "]", nil
	case classify.KindBitSet:
		return "!bits " + intList(v.Bits), nil
	case classify.KindSequence:
		els := make([]string, len(v.Seq))
		var firstErr error
		for i, el := range v.Seq {
			s, err := yamlScalar(el, single)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			els[i] = s
		}
		return "[" + strings.Join(els, ", ") + "]", firstErr
	case classify.KindNodeRef:
		return "!ref " + quote(v.RefID, single), nil
	default:
		text, err := opaqueText(v)
		return "!opaque " + quote(text, single), err
	}
}

func jsonScalar(v classify.Value) (string, error) {
	tag := func(value string) string {
		return "{\"type\": " + jsonString(v.Kind.String()) + ", \"value\": " + value + "}"
	}
	switch v.Kind {
	case classify.KindInt:
		return tag(strconv.FormatInt(v.Int, 10)), nil
	case classify.KindFloat:
		switch v.FloatClass {
		case classify.FloatPosInf:
			return tag(jsonString(jsonPosInf)), nil
		case classify.FloatNegInf:
			return tag(jsonString(jsonNegInf)), nil
		case classify.FloatNaN:
			return tag(jsonString(jsonNaN)), nil
		default:
			return tag(formatFloat(v.Float)), nil
		}
	case classify.KindBool:
		return tag(strconv.FormatBool(v.Bool)), nil
	case classify.KindString, classify.KindName:
		return tag(jsonString(v.Str)), nil
	case classify.KindColor:
		return tag("[" + floatItems(v.Color.R, v.Color.G, v.Color.B, v.Color.A) + "]"), nil
	case classify.KindPoint2:
		return tag("[" + floatItems(v.Point2.X, v.Point2.Y) + "]"), nil
	case classify.KindPoint3:
		return tag("[" + floatItems(v.Point3.X, v.Point3.Y, v.Point3.Z) + "]"), nil
	case classify.KindPoint4:
		return tag("[" + floatItems(v.Point4.X, v.Point4.Y, v.Point4.Z, v.Point4.W) + "]"), nil
	case classify.KindMatrix3:
		rows := make([]string, 4)
		for i, r := range v.Matrix3.Rows {
			rows[i] = "[" + floatItems(r.X, r.Y, r.Z) + "]"
		}
		return tag("[" + strings.Join(rows, ", ") + "]"), nil
	case classify.KindBitSet:
		return tag(intList(v.Bits)), nil
	case classify.KindSequence:
		els := make([]string, len(v.Seq))
		var firstErr error
		for i, el := range v.Seq {
			s, err := jsonScalar(el)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			els[i] = s
		}
		return tag("[" + strings.Join(els, ", ") + "]"), firstErr
	case classify.KindNodeRef:
		return "{\"type\": \"ref\", \"value\": " + jsonString(v.RefID) + "}", nil
	default:
		text, err := opaqueText(v)
		return "{\"type\": \"opaque\", \"value\": " + jsonString(text) + "}", err
	}
}

// opaqueText resolves the display text of an unknown value: the already
// coerced text if present, otherwise a coercion attempt on the raw handle.
// On coercion failure the sentinel literal stands in.
func opaqueText(v classify.Value) (string, error) {
	if v.Str != "" {
		return v.Str, nil
	}
	text, err := classify.Coerce(v.Raw)
	if err != nil {
		return SentinelUnprintable, err
	}
	return text, nil
}

// formatFloat renders a finite float, guaranteeing a decimal point so the
// float/int distinction survives re-reading even for whole values.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.Contains(s, ".") {
		return s
	}
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		return s[:i] + ".0" + s[i:]
	}
	return s + ".0"
}

func floatItems(fs ...float64) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = formatFloat(f)
	}
	return strings.Join(parts, ", ")
}

func floatList(fs ...float64) string {
	return "[" + floatItems(fs...) + "]"
}

func intList(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func quote(s string, single bool) string {
	if single {
		return quoteSingle(s)
	}
	return strconv.Quote(s)
}

// quoteSingle wraps s in single quotes with quote doubling as the only
// escape, so backslash-heavy path strings pass through untouched.
func quoteSingle(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
