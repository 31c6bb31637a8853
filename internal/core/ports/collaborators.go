package ports

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/kernel"
)

// StockAdjuster returns refunded units to inventory. It is called after a RefundSuccess
// has been committed.
type StockAdjuster interface {
	Restock(ctx context.Context, productID kernel.UUID, qty int) error
}

// EventKind names what happened to an order.
type EventKind string

const (
	EventOrderPlaced       EventKind = "order.placed"
	EventStatusChanged     EventKind = "order.status_changed"
	EventRefundRequested   EventKind = "refund.requested"
	EventRefundResolved    EventKind = "refund.resolved"
	EventDeliveryAssigned  EventKind = "delivery.assigned"
	EventDeliveryUpdated   EventKind = "delivery.updated"
	EventPartnerRegistered EventKind = "partner.registered"
)

// Event is what the notifier receives after a committed mutation.
type Event struct {
	Kind        EventKind
	OrderID     kernel.UUID
	ContainerID kernel.UUID
	Actor       string
	// State is the new status of whatever changed, in display form.
	State string
	At    time.Time
}

// Notifier dispatches notifications (toasts, e-mails, webhooks) for committed mutations.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Product is the display data of a catalog entry.
type Product struct {
	ID       kernel.UUID
	Name     string
	Category string
}

// Catalog looks products up for display only.
type Catalog interface {
	Product(ctx context.Context, productID kernel.UUID) (Product, error)
}
