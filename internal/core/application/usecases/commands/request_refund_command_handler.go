package commands

import (
	"context"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"

	"github.com/go-faster/errors"
)

// RequestRefundCommandHandler opens a refund request on behalf of the owning customer.
type RequestRefundCommandHandler struct {
	uowFactory    OrderUoWFactory
	reconciler    services.RefundReconciler
	collaborators Collaborators
	attempts      int
}

func NewRequestRefundCommandHandler(
	uowFactory OrderUoWFactory,
	reconciler services.RefundReconciler,
	collaborators Collaborators,
	attempts int,
) RequestRefundCommandHandler {
	return RequestRefundCommandHandler{
		uowFactory:    uowFactory,
		reconciler:    reconciler,
		collaborators: collaborators,
		attempts:      attempts,
	}
}

// Handle returns the updated order and the index of the new request in its container.
func (h RequestRefundCommandHandler) Handle(
	ctx context.Context,
	cmd RequestRefundCommand,
) (_ *order.Order, _ order.Container, _ int, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, nil, 0, err
	}

	ctx, span := startSpan(ctx, "RequestRefund")
	defer func() { endSpan(span, err) }()

	var (
		updated   *order.Order
		container order.Container
		index     int
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

		c, idx, err := h.reconciler.RequestRefund(o, cmd.ItemID(), cmd.Quantity(), cmd.Reason(), cmd.Image(), cmd.Actor())
		if err != nil {
			return err
		}

		if err = orderRepo.Update(ctx, o); err != nil {
			return errors.Wrap(err, "save order")
		}

		if err = uow.Commit(ctx); err != nil {
			return errors.Wrap(err, "commit")
		}

		updated, container, index = o, c, idx
		return nil
	})
	if err != nil {
		return nil, nil, 0, err
	}

	h.collaborators.notify(ctx, ports.Event{
		Kind:        ports.EventRefundRequested,
		OrderID:     updated.ID(),
		ContainerID: container.ID(),
		Actor:       cmd.Actor().String(),
		State:       container.Status().String(),
	})
	return updated, container, index, nil
}
