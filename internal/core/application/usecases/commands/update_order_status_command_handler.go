package commands

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"github.com/go-faster/errors"
)

// UpdateOrderStatusCommandHandler applies a status edit through the TransitionAuthority.
// A cancel that declines an active delivery frees the partner's slot in the same transaction.
type UpdateOrderStatusCommandHandler struct {
	uowFactory    UoWFactory
	authority     services.TransitionAuthority
	collaborators Collaborators
	attempts      int
}

func NewUpdateOrderStatusCommandHandler(
	uowFactory UoWFactory,
	authority services.TransitionAuthority,
	collaborators Collaborators,
	attempts int,
) UpdateOrderStatusCommandHandler {
	return UpdateOrderStatusCommandHandler{
		uowFactory:    uowFactory,
		authority:     authority,
		collaborators: collaborators,
		attempts:      attempts,
	}
}

// Handle loads the order, applies the edit, saves the whole graph and returns it.
// A failed transition leaves the stored order untouched.
func (h UpdateOrderStatusCommandHandler) Handle(ctx context.Context, cmd UpdateOrderStatusCommand) (_ *order.Order, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	ctx, span := startSpan(ctx, "UpdateOrderStatus")
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
		o, err := orderRepo.Get(ctx, cmd.OrderID())
		if err != nil {
			return errors.Wrap(err, "load order")
		}

		held := activeDelivery(o, cmd.ContainerID())
		if _, err = h.authority.UpdateOrderStatus(o, cmd.ContainerID(), cmd.Status(), cmd.Actor()); err != nil {
			return err
		}

		if err = orderRepo.Update(ctx, o); err != nil {
			return errors.Wrap(err, "save order")
		}

		if held != nil && !held.Status().IsActive() {
			err = releaseSlot(ctx, uow.DeliveryPartnerRepository(), held.PartnerID(), cmd.ContainerID())
			if err != nil {
				return err
			}
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
		Kind:        ports.EventStatusChanged,
		OrderID:     updated.ID(),
		ContainerID: cmd.ContainerID(),
		Actor:       cmd.Actor().String(),
		State:       cmd.Status().String(),
	})
	return updated, nil
}

func activeDelivery(o *order.Order, containerID kernel.UUID) *order.DeliveryAssignment {
	c, err := o.Container(containerID)
	if err != nil || c.Delivery() == nil || !c.Delivery().Status().IsActive() {
		return nil
	}
	return c.Delivery()
}

// releaseSlot frees the slot containerID holds on partnerID. Unknown partners and
// slots are left alone.
func releaseSlot(ctx context.Context, partnerRepo ports.DeliveryPartnerRepository, partnerID, containerID kernel.UUID) error {
	p, err := partnerRepo.Get(ctx, partnerID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "load delivery partner")
	}

	if err = p.Release(containerID); err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return nil
		}
		return err
	}
	return errors.Wrap(partnerRepo.Update(ctx, p), "save delivery partner")
}
