package repositories

import "context"

// UnitOfWork executes a function within a transaction scope. Every
// validation failure inside fn aborts the whole operation with no partial
// state change; this is the contract-call atomicity analog the settlement
// state machine relies on.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
