// Package encode renders classified values as text and parses them back.
//
// Three grammar styles are supported, reflecting the format's evolution:
//
//   - [StyleFlowMapping]: JSON documents where every leaf is a small mapping
//     {"type": <tag>, "value": <literal>} and nodes nest as objects.
//   - [StyleTaggedScalar]: YAML-family documents where native scalars are
//     bare literals and non-native values carry a local tag (!color, !point3,
//     !matrix3, !bits, !name, ...). Nodes nest as indented block mappings.
//   - [StylePrefixedKey]: same value grammar as tagged-scalar, but every key
//     below the root is the full dot-joined key path emitted at top level,
//     and string scalars are single-quoted so backslash-heavy path strings
//     need no escape processing.
//
// All styles round-trip the full value model, including the float special
// states, via [DecodeScalar].
package encode

import "github.com/materialkit/matdump/pkg/errors"

// Style selects the output grammar variant.
type Style int

const (
	// StyleFlowMapping emits JSON with {"type": ..., "value": ...} leaves.
	StyleFlowMapping Style = iota
	// StyleTaggedScalar emits YAML with locally tagged non-native scalars.
	StyleTaggedScalar
	// StylePrefixedKey emits YAML with full dot-joined keys below the root.
	StylePrefixedKey
)

// ParseStyle converts a user-supplied style name to a Style.
func ParseStyle(name string) (Style, error) {
	switch name {
	case "flow":
		return StyleFlowMapping, nil
	case "tagged":
		return StyleTaggedScalar, nil
	case "prefixed":
		return StylePrefixedKey, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidStyle, "unknown style %q (want flow, tagged, or prefixed)", name)
	}
}

// String returns the style's flag name.
func (s Style) String() string {
	switch s {
	case StyleFlowMapping:
		return "flow"
	case StyleTaggedScalar:
		return "tagged"
	case StylePrefixedKey:
		return "prefixed"
	default:
		return "unknown"
	}
}

// Extension returns the output file extension for the style's format family.
func (s Style) Extension() string {
	if s == StyleFlowMapping {
		return ".json"
	}
	return ".yaml"
}

// Reserved literal tokens for the float special states. The underlying
// number grammars cannot represent these with digits.
const (
	yamlPosInf = ".inf"
	yamlNegInf = "-.inf"
	yamlNaN    = ".nan"

	jsonPosInf = "inf"
	jsonNegInf = "-inf"
	jsonNaN    = "nan"
)

// Placeholder reasons emitted by the walker when a branch is cut.
const (
	PlaceholderCycle  = "cycle"  // target already on the current path
	PlaceholderPruned = "pruned" // depth cap reached
)

// SentinelUnprintable replaces the text of an opaque value whose string
// coercion failed.
const SentinelUnprintable = "<unprintable>"
