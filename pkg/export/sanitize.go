package export

import "strings"

// UnnamedPlaceholder stands in for material names that sanitize to nothing.
const UnnamedPlaceholder = "_unnamed_"

// maxFilenameLen bounds sanitized names; most filesystems cap path
// components at 255 bytes and the style extension still has to fit.
const maxFilenameLen = 200

// Sanitize converts a raw material name into a safe filename stem.
// Characters that are unsafe in filenames (\ / : * ? " < > |) and spaces
// become underscores, runs of underscores collapse to one, and the result
// is truncated to 200 characters. An empty result becomes
// [UnnamedPlaceholder]. Sanitize is idempotent.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastUnderscore := false
	for _, r := range name {
		if strings.ContainsRune(`\/:*?"<>| `, r) {
			r = '_'
		}
		if r == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		b.WriteRune(r)
	}

	out := b.String()
	if runes := []rune(out); len(runes) > maxFilenameLen {
		out = string(runes[:maxFilenameLen])
	}
	if out == "" {
		return UnnamedPlaceholder
	}
	return out
}
