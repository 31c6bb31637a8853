package commands

import (
	"errors"
	"strings"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrRequestRefundCommandIsNotConstructed = errors.New(
	"RequestRefundCommand must be created via NewRequestRefundCommand constructor",
)

// RequestRefundCommand is a customer claim against qty units of one cart item.
// Quantity and reason are checked by the order itself, after the ownership check.
type RequestRefundCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	itemID  kernel.UUID
	qty     int
	reason  string
	image   string
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

func NewRequestRefundCommand(
	orderID, itemID kernel.UUID,
	qty int,
	reason, image string,
	actor kernel.Actor,
) (RequestRefundCommand, error) {
	if err := errors.Join(orderID.Validate(), itemID.Validate(), actor.Validate()); err != nil {
		return RequestRefundCommand{}, err
	}

	return RequestRefundCommand{
		orderID: orderID,
		itemID:  itemID,
		qty:     qty,
		reason:  strings.TrimSpace(reason),
		image:   strings.TrimSpace(image),
		actor:   actor,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c RequestRefundCommand) Validate() error {
	return c.guard.Validate(ErrRequestRefundCommandIsNotConstructed)
}

func (c RequestRefundCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c RequestRefundCommand) ItemID() kernel.UUID {
	return c.itemID
}

func (c RequestRefundCommand) Quantity() int {
	return c.qty
}

func (c RequestRefundCommand) Reason() string {
	return c.reason
}

func (c RequestRefundCommand) Image() string {
	return c.image
}

func (c RequestRefundCommand) Actor() kernel.Actor {
	return c.actor
}
