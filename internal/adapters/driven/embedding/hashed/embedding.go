// Package hashed provides a deterministic local embedder built on feature
// hashing. It needs no network, no model files, and always produces the same
// vector for the same text, which keeps semantic scoring available offline.
package hashed

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/forgefit-labs/discovery/internal/core/ports/driven"
)

// Ensure Embedder implements the interface.
var _ driven.Embedder = (*Embedder)(nil)

// DefaultDimensions is the vector width when none is configured.
const DefaultDimensions = 128

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// Config holds configuration for the hashed embedder.
type Config struct {
	// Dimensions is the vector width (default: 128).
	Dimensions int
}

// Embedder maps text to a fixed-width vector by hashing its words into
// buckets and L2-normalizing the counts. Texts sharing vocabulary land in
// overlapping buckets, so cosine similarity tracks lexical overlap.
type Embedder struct {
	dimensions int
}

// New creates a hashed embedder.
func New(cfg Config) *Embedder {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	return &Embedder{dimensions: cfg.Dimensions}
}

// Embed produces the vector for text. Never fails; empty text yields a zero
// vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimensions)

	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	for _, word := range words {
		h := fnv.New64a()
		h.Write([]byte(word))
		sum := h.Sum64()

		// Split the hash into a bucket and a sign bit. The sign keeps
		// unrelated words from all pushing the vector the same way.
		bucket := sum % uint64(e.dimensions)
		if sum>>63 == 0 {
			vec[bucket]++
		} else {
			vec[bucket]--
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// ModelName returns the identifier of the hashing scheme.
func (e *Embedder) ModelName() string {
	return "hashed-fnv64a"
}

// Ping always succeeds; there is no remote service.
func (e *Embedder) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (e *Embedder) Close() error {
	return nil
}
