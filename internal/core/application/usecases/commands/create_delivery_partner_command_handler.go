package commands

import (
	"context"

	"marketplace/internal/core/domain/model/partner"
	"marketplace/internal/core/ports"

	"github.com/go-faster/errors"
)

type CreateDeliveryPartnerCommandHandler struct {
	uowFactory    PartnerUoWFactory
	collaborators Collaborators
}

func NewCreateDeliveryPartnerCommandHandler(
	uowFactory PartnerUoWFactory,
	collaborators Collaborators,
) CreateDeliveryPartnerCommandHandler {
	return CreateDeliveryPartnerCommandHandler{
		uowFactory:    uowFactory,
		collaborators: collaborators,
	}
}

func (h CreateDeliveryPartnerCommandHandler) Handle(
	ctx context.Context,
	cmd CreateDeliveryPartnerCommand,
) (_ *partner.DeliveryPartner, err error) {
	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	ctx, span := startSpan(ctx, "CreateDeliveryPartner")
	defer func() { endSpan(span, err) }()

	p, err := partner.NewDeliveryPartner(cmd.PartnerID(), cmd.Name(), cmd.Capacity())
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

	if err = uow.DeliveryPartnerRepository().Add(ctx, p); err != nil {
		return nil, errors.Wrap(err, "add delivery partner")
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit")
	}

	h.collaborators.notify(ctx, ports.Event{
		Kind:  ports.EventPartnerRegistered,
		Actor: cmd.Actor().String(),
		State: p.Name(),
	})
	return p, nil
}
