package commands

import (
	"context"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"

	"github.com/go-faster/errors"
)

// AssignDeliveryCommandHandler hands a container to a delivery partner. The order and the
// partner's slot are written in the same transaction. The partner is only looked up once
// the actor may assign the container.
type AssignDeliveryCommandHandler struct {
	uowFactory    UoWFactory
	authority     services.TransitionAuthority
	collaborators Collaborators
	attempts      int
}

func NewAssignDeliveryCommandHandler(
	uowFactory UoWFactory,
	authority services.TransitionAuthority,
	collaborators Collaborators,
	attempts int,
) AssignDeliveryCommandHandler {
	return AssignDeliveryCommandHandler{
		uowFactory:    uowFactory,
		authority:     authority,
		collaborators: collaborators,
		attempts:      attempts,
	}
}

func (h AssignDeliveryCommandHandler) Handle(ctx context.Context, cmd AssignDeliveryCommand) (_ *order.Order, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	ctx, span := startSpan(ctx, "AssignDelivery")
	defer func() { endSpan(span, err) }()

	var updated *order.Order
	err = retryOnConflict(ctx, h.attempts, func(ctx context.Context) error {
		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return errors.Wrap(err, "begin")
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		orderRepo := uow.OrderRepository()
		partnerRepo := uow.DeliveryPartnerRepository()

		o, err := orderRepo.Get(ctx, cmd.OrderID())
		if err != nil {
			return errors.Wrap(err, "load order")
		}

		if _, err = h.authority.AssignDelivery(o, cmd.ContainerID(), cmd.PartnerID(), cmd.Actor()); err != nil {
			return err
		}

		p, err := partnerRepo.Get(ctx, cmd.PartnerID())
		if err != nil {
			return errors.Wrap(err, "load delivery partner")
		}

		if err = p.Take(cmd.ContainerID()); err != nil {
			return err
		}

		if err = orderRepo.Update(ctx, o); err != nil {
			return errors.Wrap(err, "save order")
		}

		if err = partnerRepo.Update(ctx, p); err != nil {
			return errors.Wrap(err, "save delivery partner")
		}

		if err = uow.Commit(ctx); err != nil {
			return errors.Wrap(err, "commit")
		}

		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.collaborators.notify(ctx, ports.Event{
		Kind:        ports.EventDeliveryAssigned,
		OrderID:     updated.ID(),
		ContainerID: cmd.ContainerID(),
		Actor:       cmd.Actor().String(),
		State:       order.DeliveryPending.String(),
	})
	return updated, nil
}
