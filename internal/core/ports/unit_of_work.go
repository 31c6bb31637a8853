package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is one business transaction. Repositories it hands out share the
// transaction started by Begin.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	// Rollback is safe to call after Commit; it is a no-op then.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	DeliveryPartnerRepository() DeliveryPartnerRepository
}
