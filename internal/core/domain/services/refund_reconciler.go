package services

import (
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"
)

// RefundPolicy configures the refund workflow of the platform.
type RefundPolicy struct {
	// TwoStepVendorFlow lets the owning seller acknowledge a request (VendorApproved)
	// before an admin finalizes it. Admins may always finalize straight from Pending.
	TwoStepVendorFlow bool
}

// RefundReconciler opens refund requests and applies refund decisions.
//
// The refunded quantity of an item, summed over its RefundSuccess requests, never exceeds
// the ordered quantity, and a decided request is never touched again. The reconciler
// does not compute badges; callers ask the StatusAggregator after a resolution.
type RefundReconciler struct {
	policy RefundPolicy
	now    func() time.Time
}

func NewRefundReconciler(policy RefundPolicy, now func() time.Time) RefundReconciler {
	if now == nil {
		now = time.Now
	}
	return RefundReconciler{policy: policy, now: now}
}

func (r RefundReconciler) Policy() RefundPolicy {
	return r.policy
}

// Resolve applies decision to the refund request at index of container c.
//
// Errors, in the order they are checked: NotFound for a bad index, Forbidden from the
// role gate, InvalidTransition for VendorApproved outside the two-step flow,
// AlreadyResolved, MissingReason for a rejection without reason, OverRefund.
func (r RefundReconciler) Resolve(
	c order.Container,
	index int,
	decision order.RefundStatus,
	actor kernel.Actor,
	rejectReason string,
) error {
	request, err := c.RefundRequest(index)
	if err != nil {
		return err
	}
	if err = r.authorize(c, decision, actor); err != nil {
		return err
	}
	if decision == order.VendorApproved && !r.policy.TwoStepVendorFlow {
		return errs.NewInvalidTransitionError("refund request", request.Status().String(), decision.String())
	}

	return c.ResolveRefund(index, decision, rejectReason)
}

// ResolveInOrder resolves a refund request of container containerID of o and rolls the
// order up.
func (r RefundReconciler) ResolveInOrder(
	o *order.Order,
	containerID kernel.UUID,
	index int,
	decision order.RefundStatus,
	actor kernel.Actor,
	rejectReason string,
) (order.Container, error) {
	c, err := o.Container(containerID)
	if err != nil {
		return nil, err
	}
	if err = r.Resolve(c, index, decision, actor, rejectReason); err != nil {
		return nil, err
	}

	o.RollUp()
	return c, nil
}

// RequestRefund opens a Pending request for qty units of cart item itemID on behalf of
// the customer who placed o. It returns the container holding the item and the index of
// the new request there.
func (r RefundReconciler) RequestRefund(
	o *order.Order,
	itemID kernel.UUID,
	qty int,
	reason, image string,
	actor kernel.Actor,
) (order.Container, int, error) {
	if actor.Validate() != nil || actor.Role() != kernel.Customer || !o.IsOwnedBy(actor.ID()) {
		return nil, 0, errs.NewForbiddenError(actorName(actor), "request a refund on order "+o.ID().String())
	}

	c, err := o.ContainerForItem(itemID)
	if err != nil {
		return nil, 0, err
	}
	index, err := c.OpenRefund(itemID, qty, reason, image, r.now())
	if err != nil {
		return nil, 0, err
	}

	o.RollUp()
	return c, index, nil
}

// authorize is the role gate: Admins decide everything, the owning Seller may only
// acknowledge (VendorApproved) and only in the two-step flow.
func (r RefundReconciler) authorize(c order.Container, decision order.RefundStatus, actor kernel.Actor) error {
	action := "set refund request to " + decision.String()
	if actor.Validate() != nil {
		return errs.NewForbiddenError("anonymous", action)
	}

	switch {
	case actor.IsAdmin():
		return nil
	case actor.OwnsShop(c.ShopID()) && r.policy.TwoStepVendorFlow && decision == order.VendorApproved:
		return nil
	default:
		return errs.NewForbiddenError(actor.String(), action)
	}
}

func actorName(actor kernel.Actor) string {
	if actor.Validate() != nil {
		return "anonymous"
	}
	return actor.String()
}
