package storage

import (
	"context"
	"errors"
)

// Persisted keys. The values are kept compatible with what the browser
// version of the tracker wrote to localStorage.
const (
	KeyWorkouts  = "gymWorkouts"
	KeyExercises = "gymExercises"
	// KeyWorkoutsQuarantine holds workout records that could not be read back.
	KeyWorkoutsQuarantine = "gymWorkoutsQuarantine"
)

var ErrNotFound = errors.New("not found")

//go:generate mockgen -source=$GOFILE -destination=store_mocks_test.go -package=storage_test

// Store is a whole-value key/value persistence adapter.
// Save overwrites the previous value of the key entirely.
// Load returns ErrNotFound for a key that was never written.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
	Close() error
}
