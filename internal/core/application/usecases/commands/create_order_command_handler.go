package commands

import (
	"context"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"

	"github.com/go-faster/errors"
)

// CreateOrderCommandHandler stores a new order graph and announces it.
type CreateOrderCommandHandler struct {
	uowFactory    OrderUoWFactory
	collaborators Collaborators
}

func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory, collaborators Collaborators) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory:    uowFactory,
		collaborators: collaborators,
	}
}

func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (_ *order.Order, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	ctx, span := startSpan(ctx, "CreateOrder")
	defer func() { endSpan(span, err) }()

	o, err := order.NewOrder(
		cmd.OrderID(),
		cmd.Customer().ID(),
		cmd.Items(),
		cmd.TotalPrice(),
		cmd.Address(),
		cmd.PaymentStatus(),
		h.collaborators.now(),
	)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, errors.Wrap(err, "begin")
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return nil, errors.Wrap(err, "add order")
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit")
	}

	h.collaborators.notify(ctx, ports.Event{
		Kind:    ports.EventOrderPlaced,
		OrderID: o.ID(),
		Actor:   cmd.Customer().String(),
		State:   o.Status().String(),
	})
	return o, nil
}
