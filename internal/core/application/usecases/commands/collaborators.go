package commands

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Collaborators are the services called after a mutation has been committed. Either may
// be nil. Their failures never undo the mutation; they are logged at warn level.
type Collaborators struct {
	Stock    ports.StockAdjuster
	Notifier ports.Notifier
	Now      func() time.Time
}

func (c Collaborators) now() time.Time {
	if c.Now == nil {
		return time.Now().UTC()
	}
	return c.Now()
}

func (c Collaborators) notify(ctx context.Context, event ports.Event) {
	if c.Notifier == nil {
		return
	}
	if event.At.IsZero() {
		event.At = c.now()
	}
	if err := c.Notifier.Notify(ctx, event); err != nil {
		zctx.From(ctx).Warn("Notification failed",
			zap.String("kind", string(event.Kind)),
			zap.Stringer("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}

func (c Collaborators) restock(ctx context.Context, productID kernel.UUID, qty int) {
	if c.Stock == nil {
		return
	}
	if err := c.Stock.Restock(ctx, productID, qty); err != nil {
		zctx.From(ctx).Warn("Restock failed",
			zap.Stringer("product_id", productID),
			zap.Int("qty", qty),
			zap.Error(err),
		)
	}
}
