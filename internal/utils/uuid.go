// Package utils provides small helpers shared across the engine:
// identifier generation and HTTP response writing.
package utils

import "github.com/google/uuid"

// UUIDGenerator produces time-ordered identifiers for queued operations.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a UUIDv7, falling back to a random UUIDv4 when the
// system clock source is unavailable.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
