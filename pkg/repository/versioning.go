package repository

import "fmt"

// Versioned is implemented by entities that support optimistic locking.
// Ports compare the version on update and increment it on success.
type Versioned interface {
	GetVersion() int64
	SetVersion(version int64)
}

// OptimisticLockError is returned when an update carries a stale version.
type OptimisticLockError struct {
	EntityID string
	Expected int64
	Actual   int64
}

// Error implements the error interface.
func (e *OptimisticLockError) Error() string {
	return fmt.Sprintf("optimistic lock failed for entity %s: expected version %d, got %d",
		e.EntityID, e.Expected, e.Actual)
}

// NewOptimisticLockError creates a new OptimisticLockError.
func NewOptimisticLockError(entityID any, expected, actual int64) *OptimisticLockError {
	return &OptimisticLockError{
		EntityID: fmt.Sprint(entityID),
		Expected: expected,
		Actual:   actual,
	}
}

// asVersioned returns the Versioned view of entity, if any.
func asVersioned[E any](entity *E) (Versioned, bool) {
	v, ok := any(entity).(Versioned)
	return v, ok
}

// CheckVersion compares the version of a Versioned incoming entity with the
// stored one. Non-versioned entities always pass.
func CheckVersion[E any](id any, stored, incoming *E) error {
	in, ok := asVersioned(incoming)
	if !ok {
		return nil
	}
	current, ok := asVersioned(stored)
	if !ok {
		return nil
	}
	if in.GetVersion() != current.GetVersion() {
		return NewOptimisticLockError(id, in.GetVersion(), current.GetVersion())
	}
	return nil
}

// BumpVersion increments the version of a Versioned entity.
func BumpVersion[E any](entity *E) {
	if v, ok := asVersioned(entity); ok {
		v.SetVersion(v.GetVersion() + 1)
	}
}
