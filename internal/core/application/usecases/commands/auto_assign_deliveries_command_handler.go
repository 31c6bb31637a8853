package commands

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/partner"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

var (
	ErrNoFreeDeliveryPartners  = errors.New("no free delivery partners found")
	ErrNoOrderAwaitingDelivery = errors.New("no order awaiting delivery")
)

// IsNothingToDispatch reports whether err only says that a dispatch pass found no work
// or ran out of partners.
func IsNothingToDispatch(err error) bool {
	return errors.Is(err, ErrNoOrderAwaitingDelivery) || errors.Is(err, ErrNoFreeDeliveryPartners)
}

// AutoAssignDeliveriesCommandHandler matches Shipped containers with free delivery
// partners. All orders of a batch and every touched partner are written in one
// transaction; a conflict reruns the whole batch.
type AutoAssignDeliveriesCommandHandler struct {
	uowFactory    UoWFactory
	dispatcher    services.DeliveryDispatcher
	collaborators Collaborators
	attempts      int
}

func NewAutoAssignDeliveriesCommandHandler(
	uowFactory UoWFactory,
	dispatcher services.DeliveryDispatcher,
	collaborators Collaborators,
	attempts int,
) AutoAssignDeliveriesCommandHandler {
	return AutoAssignDeliveriesCommandHandler{
		uowFactory:    uowFactory,
		dispatcher:    dispatcher,
		collaborators: collaborators,
		attempts:      attempts,
	}
}

// Handle returns how many containers got a delivery partner. ErrNoOrderAwaitingDelivery
// and ErrNoFreeDeliveryPartners mean there was nothing to do; ErrNoFreeDeliveryPartners is
// also returned, with a positive count, when partners ran out part way.
func (h AutoAssignDeliveriesCommandHandler) Handle(
	ctx context.Context,
	cmd AutoAssignDeliveriesCommand,
) (_ int, err error) {
	if err = cmd.Validate(); err != nil {
		return 0, err
	}

	ctx, span := startSpan(ctx, "AutoAssignDeliveries")
	defer func() { endSpan(span, err) }()

	type assignment struct {
		orderID kernel.UUID
		dispatch services.Dispatch
	}

	var (
		assigned  []assignment
		exhausted bool
	)
	err = retryOnConflict(ctx, h.attempts, func(ctx context.Context) error {
		assigned, exhausted = nil, false

		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return errors.Wrap(err, "begin")
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		partnerRepo := uow.DeliveryPartnerRepository()
		orderRepo := uow.OrderRepository()

		orders, err := orderRepo.GetAwaitingDelivery(ctx, cmd.Batch())
		if err != nil {
			return errors.Wrap(err, "load orders awaiting delivery")
		}
		if len(orders) == 0 {
			return ErrNoOrderAwaitingDelivery
		}

		partners, err := partnerRepo.GetAllWithCapacity(ctx)
		if err != nil {
			return errors.Wrap(err, "load delivery partners")
		}
		if len(partners) == 0 {
			return ErrNoFreeDeliveryPartners
		}

		touched := make(map[kernel.UUID]*partner.DeliveryPartner)
		for _, o := range orders {
			dispatched, dispatchErr := h.dispatcher.Dispatch(o, partners)
			if len(dispatched) > 0 {
				if err = orderRepo.Update(ctx, o); err != nil {
					return errors.Wrap(err, "save order")
				}
			}
			for _, d := range dispatched {
				touched[d.Partner.ID()] = d.Partner
				assigned = append(assigned, assignment{orderID: o.ID(), dispatch: d})
			}

			if errors.Is(dispatchErr, services.ErrDeliveryPartnerNotFound) {
				exhausted = true
				break
			}
			if dispatchErr != nil {
				zctx.From(ctx).Warn("Dispatch failed, skipping order",
					zap.Stringer("order_id", o.ID()),
					zap.Error(dispatchErr),
				)
			}
		}

		for _, p := range touched {
			if err = partnerRepo.Update(ctx, p); err != nil {
				return errors.Wrap(err, "save delivery partner")
			}
		}

		return errors.Wrap(uow.Commit(ctx), "commit")
	})
	if err != nil {
		return 0, err
	}

	for _, a := range assigned {
		h.collaborators.notify(ctx, ports.Event{
			Kind:        ports.EventDeliveryAssigned,
			OrderID:     a.orderID,
			ContainerID: a.dispatch.ContainerID,
			Actor:       kernel.SystemActor().String(),
			State:       a.dispatch.Partner.Name(),
		})
	}

	if exhausted {
		return len(assigned), ErrNoFreeDeliveryPartners
	}
	return len(assigned), nil
}
