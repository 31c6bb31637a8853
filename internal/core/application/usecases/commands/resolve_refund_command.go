package commands

import (
	"errors"
	"strings"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/guard"
)

var ErrResolveRefundCommandIsNotConstructed = errors.New(
	"ResolveRefundCommand must be created via NewResolveRefundCommand constructor",
)

// ResolveRefundCommand decides the refund request at index of a container.
// The index and the reject reason are checked against the container by the reconciler.
type ResolveRefundCommand struct { //nolint:recvcheck //using for validation
	orderID      kernel.UUID
	containerID  kernel.UUID
	index        int
	decision     order.RefundStatus
	actor        kernel.Actor
	rejectReason string

	guard guard.ConstructorGuard
}

func NewResolveRefundCommand(
	orderID, containerID kernel.UUID,
	index int,
	decision order.RefundStatus,
	actor kernel.Actor,
	rejectReason string,
) (ResolveRefundCommand, error) {
	if err := errors.Join(
		orderID.Validate(),
		containerID.Validate(),
		decision.Validate(),
		actor.Validate(),
	); err != nil {
		return ResolveRefundCommand{}, err
	}

	return ResolveRefundCommand{
		orderID:      orderID,
		containerID:  containerID,
		index:        index,
		decision:     decision,
		actor:        actor,
		rejectReason: strings.TrimSpace(rejectReason),
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c ResolveRefundCommand) Validate() error {
	return c.guard.Validate(ErrResolveRefundCommandIsNotConstructed)
}

func (c ResolveRefundCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ResolveRefundCommand) ContainerID() kernel.UUID {
	return c.containerID
}

func (c ResolveRefundCommand) Index() int {
	return c.index
}

func (c ResolveRefundCommand) Decision() order.RefundStatus {
	return c.decision
}

func (c ResolveRefundCommand) Actor() kernel.Actor {
	return c.actor
}

func (c ResolveRefundCommand) RejectReason() string {
	return c.rejectReason
}
