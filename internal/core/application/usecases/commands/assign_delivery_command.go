package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrAssignDeliveryCommandIsNotConstructed = errors.New(
	"AssignDeliveryCommand must be created via NewAssignDeliveryCommand constructor",
)

type AssignDeliveryCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	containerID kernel.UUID
	partnerID   kernel.UUID
	actor       kernel.Actor

	guard guard.ConstructorGuard
}

func NewAssignDeliveryCommand(
	orderID, containerID, partnerID kernel.UUID,
	actor kernel.Actor,
) (AssignDeliveryCommand, error) {
	if err := errors.Join(
		orderID.Validate(),
		containerID.Validate(),
		partnerID.Validate(),
		actor.Validate(),
	); err != nil {
		return AssignDeliveryCommand{}, err
	}

	return AssignDeliveryCommand{
		orderID:     orderID,
		containerID: containerID,
		partnerID:   partnerID,
		actor:       actor,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c AssignDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrAssignDeliveryCommandIsNotConstructed)
}

func (c AssignDeliveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c AssignDeliveryCommand) ContainerID() kernel.UUID {
	return c.containerID
}

func (c AssignDeliveryCommand) PartnerID() kernel.UUID {
	return c.partnerID
}

func (c AssignDeliveryCommand) Actor() kernel.Actor {
	return c.actor
}
