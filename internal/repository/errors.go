// Package repository implements MySQL persistence for the booking core.
// Lookup methods return a nil record (not an error) when nothing matches;
// conditional state transitions report whether they won via a bool so
// callers can distinguish a lost race from a failure.
package repository

import "errors"

// ErrConflict is returned when a write cannot proceed because of
// conflicting existing state, such as a duplicate promo code.
var ErrConflict = errors.New("conflict")
