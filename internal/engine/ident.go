package engine

import (
	"sync"

	"github.com/google/uuid"
)

// MatchTokenGenerator produces the unique token identifying one match.
// The token keys every journal row the match writes, so separate
// matches sharing a database never interleave.
//
// Implemented by UUIDv7Generator (production) and FixedGenerator
// (tests).
type MatchTokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 match tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, so tokens
// sort by match creation time, which keeps journal browsing sane.
//
// Thread-safety: stateless, safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined match tokens for testing, which
// enables deterministic golden comparisons.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
//
// Example:
//
//	gen := NewFixedGenerator("match-1", "match-2")
//	gen.Generate() // "match-1"
//	gen.Generate() // "match-2"
//	gen.Generate() // panic: all tokens exhausted
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
//
// Panics once all tokens are consumed, to fail fast on test
// misconfiguration.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("FixedGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
