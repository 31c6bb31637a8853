package services

import (
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"
)

// TransitionAuthority validates and applies role gated status changes on an order graph.
// Status edits and delivery assignments are for Admins and the Seller owning the
// container; delivery progress is for the assigned delivery partner only.
//
// Every successful call leaves a master order rolled up from its sub-orders. Stock and
// notifications are left to the caller.
type TransitionAuthority struct {
	now func() time.Time
}

// NewTransitionAuthority returns an authority stamping assignments with now (time.Now when nil).
func NewTransitionAuthority(now func() time.Time) TransitionAuthority {
	if now == nil {
		now = time.Now
	}
	return TransitionAuthority{now: now}
}

// UpdateOrderStatus moves container containerID of o to requested.
//
// containerID is the order id of a non-master order and a sub-order id otherwise.
// Errors, in the order they are checked: NotFound, Forbidden, NoOp, InvalidTransition.
func (a TransitionAuthority) UpdateOrderStatus(
	o *order.Order,
	containerID kernel.UUID,
	requested order.Status,
	actor kernel.Actor,
) (order.Container, error) {
	c, err := o.Container(containerID)
	if err != nil {
		return nil, err
	}
	if err = authorizeShopAction(actor, c, "update status of "+containerID.String()); err != nil {
		return nil, err
	}
	if err = c.ChangeStatus(requested); err != nil {
		return nil, err
	}

	o.RollUp()
	return c, nil
}

// AssignDelivery attaches delivery partner partnerID to container containerID in state pending.
// A completed assignment fails with AlreadyTerminal, a pending or accepted one with
// InvalidTransition; a declined one is replaced.
func (a TransitionAuthority) AssignDelivery(
	o *order.Order,
	containerID kernel.UUID,
	partnerID kernel.UUID,
	actor kernel.Actor,
) (order.Container, error) {
	c, err := o.Container(containerID)
	if err != nil {
		return nil, err
	}
	if err = authorizeShopAction(actor, c, "assign delivery of "+containerID.String()); err != nil {
		return nil, err
	}
	if err = c.AssignDelivery(partnerID, a.now()); err != nil {
		return nil, err
	}

	o.RollUp()
	return c, nil
}

// UpdateDeliveryAssignment moves the delivery assignments of actor on o to requested.
//
// With a containerID only that container is touched. Without one, every container
// assigned to actor with an active assignment is touched; all of them are validated
// before any is changed. Completing a delivery marks its container Delivered.
func (a TransitionAuthority) UpdateDeliveryAssignment(
	o *order.Order,
	containerID *kernel.UUID,
	requested order.DeliveryStatus,
	actor kernel.Actor,
) ([]order.Container, error) {
	targets, err := deliveryTargets(o, containerID, actor)
	if err != nil {
		return nil, err
	}

	for _, c := range targets {
		if err = c.ValidateDeliveryUpdate(requested); err != nil {
			return nil, err
		}
	}
	for _, c := range targets {
		if err = c.UpdateDelivery(requested); err != nil {
			return nil, err
		}
	}

	o.RollUp()
	return targets, nil
}

func deliveryTargets(o *order.Order, containerID *kernel.UUID, actor kernel.Actor) ([]order.Container, error) {
	action := "update delivery of order " + o.ID().String()
	if actor.Validate() != nil {
		return nil, errs.NewForbiddenError("anonymous", action)
	}

	if containerID != nil {
		c, err := o.Container(*containerID)
		if err != nil {
			return nil, err
		}
		if c.Delivery() == nil {
			return nil, errs.NewObjectNotFoundError("delivery", containerID.String())
		}
		if !c.Delivery().IsAssignedTo(actor.ID()) {
			return nil, errs.NewForbiddenError(actor.String(), action)
		}
		return []order.Container{c}, nil
	}

	assigned := o.DeliveriesOf(actor.ID())
	if len(assigned) == 0 {
		if o.HasDelivery() {
			return nil, errs.NewForbiddenError(actor.String(), action)
		}
		return nil, errs.NewObjectNotFoundError("delivery", o.ID().String())
	}

	var active []order.Container
	for _, c := range assigned {
		if c.Delivery().Status().IsActive() {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		// only terminal assignments left, let validation report it
		return assigned[:1], nil
	}
	return active, nil
}

// authorizeShopAction allows Admins and the Seller owning the container's shop.
func authorizeShopAction(actor kernel.Actor, c order.Container, action string) error {
	if actor.Validate() != nil {
		return errs.NewForbiddenError("anonymous", action)
	}
	if actor.IsAdmin() || actor.OwnsShop(c.ShopID()) {
		return nil
	}
	return errs.NewForbiddenError(actor.String(), action)
}
