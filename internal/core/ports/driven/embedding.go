package driven

import "context"

// Embedder maps text to a fixed-length vector for semantic comparison.
//
// Implementations may include:
//   - Remote sentence-embedding providers (OpenAI-compatible APIs)
//   - The local hashed bag-of-words fallback
//
// An embedder may return an empty vector when the input carries no signal;
// callers must treat an empty vector as "no semantic score", not an error.
type Embedder interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding strategy in use.
	ModelName() string

	// Ping validates the provider is reachable. Used once at construction
	// to pick a strategy; the choice is never re-probed per call.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
