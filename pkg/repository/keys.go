package repository

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// KeyGenerator produces a fresh key for ports whose backend does not assign one.
type KeyGenerator[K comparable] func() K

// UUIDKeys generates random (version 4) UUID strings.
func UUIDKeys() KeyGenerator[string] {
	return uuid.NewString
}

// SequenceKeys generates 1, 2, 3, ... and is safe for concurrent use.
func SequenceKeys() KeyGenerator[int64] {
	var next atomic.Int64
	return func() int64 {
		return next.Add(1)
	}
}
