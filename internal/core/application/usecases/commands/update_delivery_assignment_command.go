package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/guard"
)

var ErrUpdateDeliveryAssignmentCommandIsNotConstructed = errors.New(
	"UpdateDeliveryAssignmentCommand must be created via NewUpdateDeliveryAssignmentCommand constructor",
)

// UpdateDeliveryAssignmentCommand reports delivery progress. Without a container id it
// applies to every active assignment of the actor on the order.
type UpdateDeliveryAssignmentCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	containerID *kernel.UUID
	status      order.DeliveryStatus
	actor       kernel.Actor

	guard guard.ConstructorGuard
}

func NewUpdateDeliveryAssignmentCommand(
	orderID kernel.UUID,
	containerID *kernel.UUID,
	status order.DeliveryStatus,
	actor kernel.Actor,
) (UpdateDeliveryAssignmentCommand, error) {
	var containerErr error
	if containerID != nil {
		containerErr = containerID.Validate()
	}
	if err := errors.Join(orderID.Validate(), containerErr, status.Validate(), actor.Validate()); err != nil {
		return UpdateDeliveryAssignmentCommand{}, err
	}

	var id *kernel.UUID
	if containerID != nil {
		c := *containerID
		id = &c
	}

	return UpdateDeliveryAssignmentCommand{
		orderID:     orderID,
		containerID: id,
		status:      status,
		actor:       actor,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateDeliveryAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDeliveryAssignmentCommandIsNotConstructed)
}

func (c UpdateDeliveryAssignmentCommand) OrderID() kernel.UUID {
	return c.orderID
}

// ContainerID is nil when every active assignment of the actor is meant.
func (c UpdateDeliveryAssignmentCommand) ContainerID() *kernel.UUID {
	if c.containerID == nil {
		return nil
	}
	id := *c.containerID
	return &id
}

func (c UpdateDeliveryAssignmentCommand) Status() order.DeliveryStatus {
	return c.status
}

func (c UpdateDeliveryAssignmentCommand) Actor() kernel.Actor {
	return c.actor
}
