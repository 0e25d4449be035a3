// Package export assembles encoded documents for a material library and
// hands them to a file writer. One fresh sink per top-level material, one
// output file per sink; a failed material never halts the batch.
package export

import "strings"

// Sink is an append-only text buffer for one material's document. Encoder
// fragments arrive in traversal order; there is no random access and no
// rewriting.
type Sink struct {
	b strings.Builder
}

// NewSink creates an empty sink.
func NewSink() *Sink {
	return &Sink{}
}

// Append adds a fragment to the end of the buffer.
func (s *Sink) Append(fragment string) {
	s.b.WriteString(fragment)
}

// Len returns the number of buffered bytes.
func (s *Sink) Len() int {
	return s.b.Len()
}

// Document returns the assembled text. The sink should not be appended to
// afterwards; the document is considered final.
func (s *Sink) Document() string {
	return s.b.String()
}
