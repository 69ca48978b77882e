package projection

import "time"

// Metadata carries the persistence timestamps attached to a stored aggregate.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Projection pairs an aggregate with the metadata recorded when it was stored.
type Projection[T any] struct {
	Entity   T
	Metadata Metadata
}

// Of wraps an entity with its persistence timestamps.
func Of[T any](entity T, createdAt, updatedAt time.Time) *Projection[T] {
	return &Projection[T]{
		Entity:   entity,
		Metadata: Metadata{CreatedAt: createdAt, UpdatedAt: updatedAt},
	}
}
