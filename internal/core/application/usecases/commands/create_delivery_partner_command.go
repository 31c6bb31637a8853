package commands

import (
	"errors"
	"strings"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	ErrCreateDeliveryPartnerCommandIsNotConstructed = errors.New(
		"CreateDeliveryPartnerCommand must be created via NewCreateDeliveryPartnerCommand constructor",
	)
	ErrPartnerNameIsRequired = errs.NewValueIsRequiredError("name")
)

const maxPartnerCapacity = 100

type CreateDeliveryPartnerCommand struct { //nolint:recvcheck //using for validation
	partnerID kernel.UUID
	name      string
	capacity  int
	actor     kernel.Actor

	guard guard.ConstructorGuard
}

func NewCreateDeliveryPartnerCommand(
	partnerID kernel.UUID,
	name string,
	capacity int,
	actor kernel.Actor,
) (CreateDeliveryPartnerCommand, error) {
	var nameErr, capacityErr error
	name = strings.TrimSpace(name)
	if name == "" {
		nameErr = ErrPartnerNameIsRequired
	}
	if capacity < 1 || capacity > maxPartnerCapacity {
		capacityErr = errs.NewValueIsOutOfRangeError("capacity", capacity, 1, maxPartnerCapacity)
	}
	if err := errors.Join(partnerID.Validate(), nameErr, capacityErr, actor.Validate()); err != nil {
		return CreateDeliveryPartnerCommand{}, err
	}

	if !actor.IsAdmin() {
		return CreateDeliveryPartnerCommand{}, errs.NewForbiddenError(actor.String(), "register delivery partners")
	}

	return CreateDeliveryPartnerCommand{
		partnerID: partnerID,
		name:      name,
		capacity:  capacity,
		actor:     actor,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c CreateDeliveryPartnerCommand) Validate() error {
	return c.guard.Validate(ErrCreateDeliveryPartnerCommandIsNotConstructed)
}

func (c CreateDeliveryPartnerCommand) PartnerID() kernel.UUID {
	return c.partnerID
}

func (c CreateDeliveryPartnerCommand) Name() string {
	return c.name
}

func (c CreateDeliveryPartnerCommand) Capacity() int {
	return c.capacity
}

func (c CreateDeliveryPartnerCommand) Actor() kernel.Actor {
	return c.actor
}
