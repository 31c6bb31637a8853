package commands

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"

	"github.com/go-faster/errors"
)

// ResolveRefundCommandHandler applies a refund decision and, once committed, returns
// refunded units to stock.
type ResolveRefundCommandHandler struct {
	uowFactory    OrderUoWFactory
	reconciler    services.RefundReconciler
	collaborators Collaborators
	attempts      int
}

func NewResolveRefundCommandHandler(
	uowFactory OrderUoWFactory,
	reconciler services.RefundReconciler,
	collaborators Collaborators,
	attempts int,
) ResolveRefundCommandHandler {
	return ResolveRefundCommandHandler{
		uowFactory:    uowFactory,
		reconciler:    reconciler,
		collaborators: collaborators,
		attempts:      attempts,
	}
}

func (h ResolveRefundCommandHandler) Handle(ctx context.Context, cmd ResolveRefundCommand) (_ *order.Order, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	ctx, span := startSpan(ctx, "ResolveRefund")
	defer func() { endSpan(span, err) }()

	var (
		updated   *order.Order
		productID kernel.UUID
		qty       int
	)
	err = retryOnConflict(ctx, h.attempts, func(ctx context.Context) error {
		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return errors.Wrap(err, "begin")
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		orderRepo := uow.OrderRepository()
		o, err := orderRepo.Get(ctx, cmd.OrderID())
		if err != nil {
			return errors.Wrap(err, "load order")
		}

		c, err := h.reconciler.ResolveInOrder(o, cmd.ContainerID(), cmd.Index(), cmd.Decision(), cmd.Actor(), cmd.RejectReason())
		if err != nil {
			return err
		}

		if err = orderRepo.Update(ctx, o); err != nil {
			return errors.Wrap(err, "save order")
		}

		if err = uow.Commit(ctx); err != nil {
			return errors.Wrap(err, "commit")
		}

		updated = o
		request, _ := c.RefundRequest(cmd.Index())
		if item, itemErr := c.Item(request.ItemID()); itemErr == nil {
			productID, qty = item.ProductID(), request.RefundedQty()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cmd.Decision() == order.RefundSuccess && qty > 0 {
		h.collaborators.restock(ctx, productID, qty)
	}
	h.collaborators.notify(ctx, ports.Event{
		Kind:        ports.EventRefundResolved,
		OrderID:     updated.ID(),
		ContainerID: cmd.ContainerID(),
		Actor:       cmd.Actor().String(),
		State:       cmd.Decision().String(),
	})
	return updated, nil
}
