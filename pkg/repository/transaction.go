package repository

import "context"

// TransactionManager provides transaction management capabilities.
type TransactionManager interface {
	// WithTransaction executes fn within a transaction carried by the context
	// passed to fn. It rolls back when fn returns an error and commits otherwise.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// noTransaction runs fn directly.
type noTransaction struct{}

func (noTransaction) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
