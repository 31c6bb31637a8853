package commands

import (
	"context"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"github.com/go-faster/errors"
)

// UpdateDeliveryAssignmentCommandHandler records delivery progress. A completed or
// declined assignment frees the slot it held on the partner.
type UpdateDeliveryAssignmentCommandHandler struct {
	uowFactory    UoWFactory
	authority     services.TransitionAuthority
	collaborators Collaborators
	attempts      int
}

func NewUpdateDeliveryAssignmentCommandHandler(
	uowFactory UoWFactory,
	authority services.TransitionAuthority,
	collaborators Collaborators,
	attempts int,
) UpdateDeliveryAssignmentCommandHandler {
	return UpdateDeliveryAssignmentCommandHandler{
		uowFactory:    uowFactory,
		authority:     authority,
		collaborators: collaborators,
		attempts:      attempts,
	}
}

func (h UpdateDeliveryAssignmentCommandHandler) Handle(
	ctx context.Context,
	cmd UpdateDeliveryAssignmentCommand,
) (_ *order.Order, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	ctx, span := startSpan(ctx, "UpdateDeliveryAssignment")
	defer func() { endSpan(span, err) }()

	var (
		updated *order.Order
		touched []order.Container
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

		containers, err := h.authority.UpdateDeliveryAssignment(o, cmd.ContainerID(), cmd.Status(), cmd.Actor())
		if err != nil {
			return err
		}

		if err = orderRepo.Update(ctx, o); err != nil {
			return errors.Wrap(err, "save order")
		}

		if cmd.Status().IsTerminal() {
			if err = h.releaseSlots(ctx, uow.DeliveryPartnerRepository(), cmd, containers); err != nil {
				return err
			}
		}

		if err = uow.Commit(ctx); err != nil {
			return errors.Wrap(err, "commit")
		}

		updated, touched = o, containers
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, c := range touched {
		h.collaborators.notify(ctx, ports.Event{
			Kind:        ports.EventDeliveryUpdated,
			OrderID:     updated.ID(),
			ContainerID: c.ID(),
			Actor:       cmd.Actor().String(),
			State:       cmd.Status().String(),
		})
	}
	return updated, nil
}

func (h UpdateDeliveryAssignmentCommandHandler) releaseSlots(
	ctx context.Context,
	partnerRepo ports.DeliveryPartnerRepository,
	cmd UpdateDeliveryAssignmentCommand,
	containers []order.Container,
) error {
	p, err := partnerRepo.Get(ctx, cmd.Actor().ID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		// not registered as a partner, nothing to free
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "load delivery partner")
	}

	for _, c := range containers {
		if err = p.Release(c.ID()); err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
			return err
		}
	}

	return errors.Wrap(partnerRepo.Update(ctx, p), "save delivery partner")
}
