// Package projection pairs aggregates with the timestamps their store keeps for them.
package projection

import "time"

// Metadata captures persistence timestamps shared by projections.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Created returns metadata for a row first written at the given instant.
func Created(at time.Time) Metadata {
	return Metadata{CreatedAt: at, UpdatedAt: at}
}

// Touch records a later write.
func (m *Metadata) Touch(at time.Time) {
	m.UpdatedAt = at
}

// Projection represents an aggregate view plus persistence metadata.
type Projection[T any] struct {
	Entity   T
	Metadata Metadata
}

// New wraps an entity with its persistence timestamps.
func New[T any](entity T, createdAt, updatedAt time.Time) *Projection[T] {
	return &Projection[T]{
		Entity:   entity,
		Metadata: Metadata{CreatedAt: createdAt, UpdatedAt: updatedAt},
	}
}
