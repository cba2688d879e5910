package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates no embedding strategy is configured.
	// Semantic scoring degrades to keyword-only search.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable indicates the live generation capability is
	// disabled or unreachable. The policy refuses to trigger generation.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrGenerationFailed indicates zero candidates survived both the live
	// and the deterministic path. This is the only total-failure condition
	// the pipeline surfaces.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrSuperseded indicates the work was cancelled because a newer query
	// replaced it before completion.
	ErrSuperseded = errors.New("superseded by newer query")

	// ErrToolMalformed indicates a tool response could not be parsed even
	// after recovery.
	ErrToolMalformed = errors.New("malformed tool response")
)
