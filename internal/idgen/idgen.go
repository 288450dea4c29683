// Package idgen produces identifiers for new graph nodes and edges.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator returns a distinct identifier on every call. Implementations are safe
// for concurrent use.
type Generator interface {
	Next() string
}

// UUID generates random (version 4) UUIDs.
type UUID struct{}

// NewUUID returns the default generator.
func NewUUID() UUID { return UUID{} }

// Next returns a new random UUID.
func (UUID) Next() string { return uuid.NewString() }

// Sequence generates prefix-1, prefix-2, ... It is deterministic, which keeps
// synthesized graphs reproducible.
type Sequence struct {
	prefix string
	n      atomic.Uint64
}

// NewSequence returns a sequence generator. An empty prefix yields bare numbers.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (s *Sequence) Next() string {
	n := strconv.FormatUint(s.n.Add(1), 10)
	if s.prefix == "" {
		return n
	}
	return s.prefix + "-" + n
}
