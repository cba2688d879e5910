// Package domain contains the core business entities of the workout
// discovery engine: workout documents, user preferences, session history,
// search and ranking results, and generated candidates.
//
// The domain layer has no dependencies on infrastructure. Entities are
// plain values; anything mutable lives behind a service or store.
package domain
