// Package idgen provides pluggable ID generation.
//
// Components that mint identifiers (reports, request traces) accept a
// Generator so tests can pin IDs while production uses UUIDv7.
package idgen

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator that produces RFC 9562 UUID v7 strings.
// Time-sortable and globally unique.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID
// (e.g. "rep_", "trc_").
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Fixed returns a Generator that always yields id.
func Fixed(id string) Generator {
	return func() string { return id }
}

// Default is UUIDv7. Prefixed variants compose on top.
var Default Generator = UUIDv7()

// New produces an ID using the Default generator.
func New() string {
	return Default()
}

// Parse validates a UUID string, with or without a prefix separated by
// an underscore, and returns its canonical form.
func Parse(s string) (string, error) {
	raw := s
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '_' {
			raw = s[i+1:]
			break
		}
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("idgen: invalid UUID: %w", err)
	}
	return s[:len(s)-len(raw)] + u.String(), nil
}
