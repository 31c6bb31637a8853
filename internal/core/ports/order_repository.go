// Package ports defines the contracts between the order lifecycle core and its
// infrastructure: repositories, the unit of work and the external collaborators
// (catalog, stock, notifications).
package ports

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
)

// OrderRepository persists whole order graphs. An order, its sub-orders, refund requests
// and delivery assignments are always read and written together.
type OrderRepository interface {
	// Add persists a new order aggregate.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update writes the full graph back. It fails with errs.ErrConflict when the stored
	// order changed since aggregate.Version() and with errs.ErrObjectNotFound when it is gone.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get loads an order graph by the id of the order.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAwaitingDelivery returns up to limit orders with a Shipped container that has no
	// active assignment, oldest first.
	GetAwaitingDelivery(ctx context.Context, limit int) ([]*order.Order, error)

	// GetByDeliveryPartner returns the orders with a container assigned to partnerID.
	GetByDeliveryPartner(ctx context.Context, partnerID kernel.UUID) ([]*order.Order, error)
}
