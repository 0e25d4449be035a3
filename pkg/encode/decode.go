package encode

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/materialkit/matdump/pkg/classify"
	"github.com/materialkit/matdump/pkg/errors"
	"github.com/materialkit/matdump/pkg/scene"
)

// DecodeScalar parses a single value token produced by [EncodeScalar] back
// into a classified value. Node references decode with identity only (there
// is no live handle on the reading side), and opaque values decode to their
// coerced text.
func DecodeScalar(token string, style Style) (classify.Value, error) {
	if style == StyleFlowMapping {
		return decodeJSONScalar([]byte(token))
	}
	return decodeYAMLScalar(token, style == StylePrefixedKey)
}

func decodeErr(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidInput, format, args...)
}

func decodeJSONScalar(token []byte) (classify.Value, error) {
	var t struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(token, &t); err != nil {
		return classify.Value{}, decodeErr("malformed flow scalar: %v", err)
	}

	switch t.Type {
	case "int":
		n, err := strconv.ParseInt(strings.TrimSpace(string(t.Value)), 10, 64)
		if err != nil {
			return classify.Value{}, decodeErr("malformed int: %s", t.Value)
		}
		return classify.Value{Kind: classify.KindInt, Int: n}, nil
	case "float":
		return decodeJSONFloat(t.Value)
	case "bool":
		var b bool
		if err := json.Unmarshal(t.Value, &b); err != nil {
			return classify.Value{}, decodeErr("malformed bool: %s", t.Value)
		}
		return classify.Value{Kind: classify.KindBool, Bool: b}, nil
	case "string", "name", "opaque", "ref":
		var s string
		if err := json.Unmarshal(t.Value, &s); err != nil {
			return classify.Value{}, decodeErr("malformed %s: %s", t.Type, t.Value)
		}
		switch t.Type {
		case "string":
			return classify.Value{Kind: classify.KindString, Str: s}, nil
		case "name":
			return classify.Value{Kind: classify.KindName, Str: s}, nil
		case "ref":
			return classify.Value{Kind: classify.KindNodeRef, RefID: s}, nil
		default:
			return classify.Value{Kind: classify.KindUnknown, Str: s}, nil
		}
	case "color", "point2", "point3", "point4":
		var fs []float64
		if err := json.Unmarshal(t.Value, &fs); err != nil {
			return classify.Value{}, decodeErr("malformed %s: %s", t.Type, t.Value)
		}
		return valueFromComponents(t.Type, fs)
	case "matrix3":
		var rows [][]float64
		if err := json.Unmarshal(t.Value, &rows); err != nil {
			return classify.Value{}, decodeErr("malformed matrix3: %s", t.Value)
		}
		return matrixFromRows(rows)
	case "bits":
		var bits []int
		if err := json.Unmarshal(t.Value, &bits); err != nil {
			return classify.Value{}, decodeErr("malformed bits: %s", t.Value)
		}
		return classify.Value{Kind: classify.KindBitSet, Bits: bits}, nil
	case "sequence":
		var els []json.RawMessage
		if err := json.Unmarshal(t.Value, &els); err != nil {
			return classify.Value{}, decodeErr("malformed sequence: %s", t.Value)
		}
		seq := make([]classify.Value, len(els))
		for i, el := range els {
			v, err := decodeJSONScalar(el)
			if err != nil {
				return classify.Value{}, err
			}
			seq[i] = v
		}
		return classify.Value{Kind: classify.KindSequence, Seq: seq}, nil
	default:
		return classify.Value{}, decodeErr("unknown type tag %q", t.Type)
	}
}

func decodeJSONFloat(raw json.RawMessage) (classify.Value, error) {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, "\"") {
		var token string
		if err := json.Unmarshal(raw, &token); err != nil {
			return classify.Value{}, decodeErr("malformed float token: %s", raw)
		}
		switch token {
		case jsonPosInf:
			return classify.Value{Kind: classify.KindFloat, FloatClass: classify.FloatPosInf}, nil
		case jsonNegInf:
			return classify.Value{Kind: classify.KindFloat, FloatClass: classify.FloatNegInf}, nil
		case jsonNaN:
			return classify.Value{Kind: classify.KindFloat, FloatClass: classify.FloatNaN}, nil
		default:
			return classify.Value{}, decodeErr("unknown float token %q", token)
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return classify.Value{}, decodeErr("malformed float: %s", raw)
	}
	return classify.Value{Kind: classify.KindFloat, Float: f}, nil
}

func decodeYAMLScalar(token string, single bool) (classify.Value, error) {
	s := strings.TrimSpace(token)
	if s == "" {
		return classify.Value{}, decodeErr("empty scalar")
	}

	if strings.HasPrefix(s, "!") {
		return decodeTagged(s, single)
	}

	switch s {
	case "true":
		return classify.Value{Kind: classify.KindBool, Bool: true}, nil
	case "false":
		return classify.Value{Kind: classify.KindBool, Bool: false}, nil
	case yamlPosInf:
		return classify.Value{Kind: classify.KindFloat, FloatClass: classify.FloatPosInf}, nil
	case yamlNegInf:
		return classify.Value{Kind: classify.KindFloat, FloatClass: classify.FloatNegInf}, nil
	case yamlNaN:
		return classify.Value{Kind: classify.KindFloat, FloatClass: classify.FloatNaN}, nil
	}

	switch s[0] {
	case '[':
		els, err := splitFlowList(s)
		if err != nil {
			return classify.Value{}, err
		}
		seq := make([]classify.Value, len(els))
		for i, el := range els {
			v, err := decodeYAMLScalar(el, single)
			if err != nil {
				return classify.Value{}, err
			}
			seq[i] = v
		}
		return classify.Value{Kind: classify.KindSequence, Seq: seq}, nil
	case '"', '\'':
		str, err := unquote(s, single)
		if err != nil {
			return classify.Value{}, err
		}
		return classify.Value{Kind: classify.KindString, Str: str}, nil
	}

	// A decimal point or exponent marks a float; everything else numeric is
	// an int. The emitter guarantees finite floats always carry one.
	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return classify.Value{}, decodeErr("unrecognized scalar %q", s)
		}
		return classify.Value{Kind: classify.KindFloat, Float: f}, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return classify.Value{}, decodeErr("unrecognized scalar %q", s)
	}
	return classify.Value{Kind: classify.KindInt, Int: n}, nil
}

func decodeTagged(s string, single bool) (classify.Value, error) {
	tag := s
	rest := ""
	if i := strings.IndexByte(s, ' '); i >= 0 {
		tag, rest = s[:i], strings.TrimSpace(s[i+1:])
	}

	switch tag {
	case "!name":
		if rest == "" {
			return classify.Value{}, decodeErr("empty name")
		}
		return classify.Value{Kind: classify.KindName, Str: rest}, nil
	case "!color", "!point2", "!point3", "!point4":
		fs, err := parseFloatList(rest)
		if err != nil {
			return classify.Value{}, err
		}
		return valueFromComponents(tag[1:], fs)
	case "!matrix3":
		rowTokens, err := splitFlowList(rest)
		if err != nil {
			return classify.Value{}, err
		}
		rows := make([][]float64, len(rowTokens))
		for i, rt := range rowTokens {
			fs, err := parseFloatList(rt)
			if err != nil {
				return classify.Value{}, err
			}
			rows[i] = fs
		}
		return matrixFromRows(rows)
	case "!bits":
		els, err := splitFlowList(rest)
		if err != nil {
			return classify.Value{}, err
		}
		bits := make([]int, len(els))
		for i, el := range els {
			n, err := strconv.Atoi(el)
			if err != nil {
				return classify.Value{}, decodeErr("malformed bit position %q", el)
			}
			bits[i] = n
		}
		return classify.Value{Kind: classify.KindBitSet, Bits: bits}, nil
	case "!ref":
		id, err := unquote(rest, single)
		if err != nil {
			return classify.Value{}, err
		}
		return classify.Value{Kind: classify.KindNodeRef, RefID: id}, nil
	case "!opaque":
		text, err := unquote(rest, single)
		if err != nil {
			return classify.Value{}, err
		}
		return classify.Value{Kind: classify.KindUnknown, Str: text}, nil
	default:
		return classify.Value{}, decodeErr("unknown tag %q", tag)
	}
}

func valueFromComponents(kind string, fs []float64) (classify.Value, error) {
	want := map[string]int{"color": 4, "point2": 2, "point3": 3, "point4": 4}[kind]
	if len(fs) != want {
		return classify.Value{}, decodeErr("%s needs %d components, got %d", kind, want, len(fs))
	}
	switch kind {
	case "color":
		return classify.Value{Kind: classify.KindColor, Color: scene.Color{R: fs[0], G: fs[1], B: fs[2], A: fs[3]}}, nil
	case "point2":
		return classify.Value{Kind: classify.KindPoint2, Point2: scene.Point2{X: fs[0], Y: fs[1]}}, nil
	case "point3":
		return classify.Value{Kind: classify.KindPoint3, Point3: scene.Point3{X: fs[0], Y: fs[1], Z: fs[2]}}, nil
	default:
		return classify.Value{Kind: classify.KindPoint4, Point4: scene.Point4{X: fs[0], Y: fs[1], Z: fs[2], W: fs[3]}}, nil
	}
}

func matrixFromRows(rows [][]float64) (classify.Value, error) {
	if len(rows) != 4 {
		return classify.Value{}, decodeErr("matrix3 needs 4 rows, got %d", len(rows))
	}
	var m scene.Matrix3
	for i, r := range rows {
		if len(r) != 3 {
			return classify.Value{}, decodeErr("matrix3 row %d needs 3 components, got %d", i, len(r))
		}
		m.Rows[i] = scene.Point3{X: r[0], Y: r[1], Z: r[2]}
	}
	return classify.Value{Kind: classify.KindMatrix3, Matrix3: m}, nil
}

func parseFloatList(s string) ([]float64, error) {
	els, err := splitFlowList(s)
	if err != nil {
		return nil, err
	}
	fs := make([]float64, len(els))
	for i, el := range els {
		f, perr := strconv.ParseFloat(el, 64)
		if perr != nil {
			return nil, decodeErr("malformed number %q", el)
		}
		fs[i] = f
	}
	return fs, nil
}

// splitFlowList splits a bracketed flow list into its top-level elements,
// honoring nested brackets and both quoting styles.
func splitFlowList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, decodeErr("malformed list %q", s)
	}
	inner := s[1 : len(s)-1]
	if strings.TrimSpace(inner) == "" {
		return nil, nil
	}

	var parts []string
	depth := 0
	var q byte
	start := 0
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if q != 0 {
			if q == '"' && c == '\\' {
				i++
				continue
			}
			if c == q {
				if q == '\'' && i+1 < len(inner) && inner[i+1] == '\'' {
					i++ // doubled single quote stays inside the string
					continue
				}
				q = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			q = c
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 || q != 0 {
		return nil, decodeErr("unbalanced list %q", s)
	}
	parts = append(parts, strings.TrimSpace(inner[start:]))
	return parts, nil
}

func unquote(s string, single bool) (string, error) {
	if single {
		if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
			return "", decodeErr("malformed single-quoted string %q", s)
		}
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'"), nil
	}
	out, err := strconv.Unquote(s)
	if err != nil {
		return "", decodeErr("malformed quoted string %q", s)
	}
	return out, nil
}
