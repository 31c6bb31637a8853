package commands

import (
	"errors"

	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var ErrAutoAssignDeliveriesCommandIsNotConstructed = errors.New(
	"AutoAssignDeliveriesCommand must be created via NewAutoAssignDeliveriesCommand constructor",
)

const maxAutoAssignBatch = 500

// AutoAssignDeliveriesCommand triggers one pass of the delivery dispatcher over at most
// batch orders that have Shipped containers without a delivery partner.
//
// Example:
//
//	cmd, _ := NewAutoAssignDeliveriesCommand(50)
//	handler := NewAutoAssignDeliveriesCommandHandler(uowFactory, dispatcher, collaborators)
//	assigned, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, ErrNoFreeDeliveryPartners) {
//	    log.Printf("every partner is busy, %d assigned", assigned)
//	}
type AutoAssignDeliveriesCommand struct {
	batch int

	guard guard.ConstructorGuard
}

func NewAutoAssignDeliveriesCommand(batch int) (AutoAssignDeliveriesCommand, error) {
	if batch < 1 || batch > maxAutoAssignBatch {
		return AutoAssignDeliveriesCommand{}, errs.NewValueIsOutOfRangeError("batch", batch, 1, maxAutoAssignBatch)
	}

	return AutoAssignDeliveriesCommand{
		batch: batch,
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (c *AutoAssignDeliveriesCommand) Validate() error {
	return c.guard.Validate(
		ErrAutoAssignDeliveriesCommandIsNotConstructed,
	)
}

func (c *AutoAssignDeliveriesCommand) Batch() int {
	return c.batch
}
