package services

import (
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"
)

// RefundBadge is the display-only refund summary shown on top of an order status.
type RefundBadge int

const (
	NoBadge RefundBadge = iota
	BadgeRefundRequested
	BadgeVendorApproved
	BadgeRefundRejected
	BadgeRefundProcessed
)

func (b RefundBadge) String() string {
	switch b {
	case BadgeRefundRequested:
		return "Refund Requested"
	case BadgeVendorApproved:
		return "Vendor Approved"
	case BadgeRefundRejected:
		return "Refund Rejected"
	case BadgeRefundProcessed:
		return "Refund Processed"
	default:
		return ""
	}
}

// RefundBadgeFor applies the badge precedence to a flattened set of refund statuses and
// the top level status of whatever is being viewed:
//
//	RefundSuccess anywhere or top "Refund Processed"   -> Refund Processed
//	Rejected anywhere                                   -> Refund Rejected
//	VendorApproved anywhere                             -> Vendor Approved
//	Pending anywhere or top "Refund Requested"          -> Refund Requested
//	otherwise                                           -> no badge
func RefundBadgeFor(statuses []order.RefundStatus, top order.Status) RefundBadge {
	var success, rejected, approved, pending bool
	for _, s := range statuses {
		switch s { //nolint:exhaustive // unknown statuses carry no signal
		case order.RefundSuccess:
			success = true
		case order.Rejected:
			rejected = true
		case order.VendorApproved:
			approved = true
		case order.Pending:
			pending = true
		}
	}

	switch {
	case success || top == order.RefundProcessed:
		return BadgeRefundProcessed
	case rejected:
		return BadgeRefundRejected
	case approved:
		return BadgeVendorApproved
	case pending || top == order.RefundRequested:
		return BadgeRefundRequested
	default:
		return NoBadge
	}
}

// OrderView is what a viewer sees of an order.
type OrderView struct {
	// DisplayStatus is the badge when there is one, the base status otherwise.
	DisplayStatus string
	BaseStatus    order.Status
	Badge         RefundBadge
	// Containers are the containers visible to the viewer.
	Containers []order.Container
}

// Visibility is how much of the refund management view a viewer gets.
type Visibility int

const (
	VisibilityNone Visibility = iota
	VisibilityReadOnly
	VisibilityManage
)

func (v Visibility) String() string {
	switch v {
	case VisibilityReadOnly:
		return "read-only"
	case VisibilityManage:
		return "manage"
	default:
		return "none"
	}
}

// RefundAccess is the refund management view granted to a viewer.
type RefundAccess struct {
	Visibility Visibility
	Entries    []order.RefundEntry
}

// StatusAggregator is stateless and safe for concurrent use.
type StatusAggregator struct{}

func NewStatusAggregator() StatusAggregator {
	return StatusAggregator{}
}

// Aggregate computes the view of o for viewer.
//
// Admins and the owning customer see the whole order. A seller sees the sub-order of its
// shop and a delivery partner the containers assigned to it. Anyone else gets Forbidden.
func (StatusAggregator) Aggregate(o *order.Order, viewer kernel.Actor) (OrderView, error) {
	if err := o.Validate(); err != nil {
		return OrderView{}, err
	}

	containers, whole, err := visibleContainers(o, viewer)
	if err != nil {
		return OrderView{}, err
	}

	var (
		refundStatuses []order.RefundStatus
		statuses       []order.Status
	)
	for _, c := range containers {
		statuses = append(statuses, c.Status())
		for _, r := range c.RefundRequests() {
			refundStatuses = append(refundStatuses, r.Status())
		}
	}

	base := order.CombineStatuses(statuses)
	if whole {
		base = o.Status()
	}
	badge := RefundBadgeFor(refundStatuses, base)

	view := OrderView{
		DisplayStatus: base.String(),
		BaseStatus:    base,
		Badge:         badge,
		Containers:    containers,
	}
	if badge != NoBadge {
		view.DisplayStatus = badge.String()
	}
	return view, nil
}

// RefundAccess decides whether viewer may see or manage the refund requests of o.
//
//   - Admin: manage when any refund activity exists or the order is Refund Requested,
//     Processing refund, Refund Processed or Delivered
//   - Seller: manage the requests of its own shop's container
//   - Delivery partner: read-only over the containers assigned to it
//   - Customer: never
func (StatusAggregator) RefundAccess(o *order.Order, viewer kernel.Actor) RefundAccess {
	if o.Validate() != nil || viewer.Validate() != nil {
		return RefundAccess{}
	}

	all := o.AllRefundRequests()
	switch viewer.Role() { //nolint:exhaustive // customers and unknown roles see nothing
	case kernel.Admin:
		switch o.Status() { //nolint:exhaustive // only these statuses open the view
		case order.RefundRequested, order.ProcessingRefund, order.RefundProcessed, order.Delivered:
			return RefundAccess{Visibility: VisibilityManage, Entries: all}
		}
		if len(all) > 0 {
			return RefundAccess{Visibility: VisibilityManage, Entries: all}
		}
	case kernel.Seller:
		entries := filterEntries(all, func(c order.Container) bool { return viewer.OwnsShop(c.ShopID()) })
		if len(entries) > 0 {
			return RefundAccess{Visibility: VisibilityManage, Entries: entries}
		}
	case kernel.Delivery:
		if len(o.DeliveriesOf(viewer.ID())) > 0 {
			entries := filterEntries(all, func(c order.Container) bool { return c.Delivery().IsAssignedTo(viewer.ID()) })
			return RefundAccess{Visibility: VisibilityReadOnly, Entries: entries}
		}
	}
	return RefundAccess{}
}

// visibleContainers returns the containers viewer may see and whether that is the whole order.
func visibleContainers(o *order.Order, viewer kernel.Actor) ([]order.Container, bool, error) {
	if err := viewer.Validate(); err != nil {
		return nil, false, errs.NewForbiddenError("anonymous", "view order "+o.ID().String())
	}

	var containers []order.Container
	switch viewer.Role() { //nolint:exhaustive // remaining roles are forbidden below
	case kernel.Admin:
		return o.RefundContainers(), true, nil
	case kernel.Customer:
		if o.IsOwnedBy(viewer.ID()) {
			return o.RefundContainers(), true, nil
		}
	case kernel.Seller:
		for _, c := range o.RefundContainers() {
			if viewer.OwnsShop(c.ShopID()) {
				containers = append(containers, c)
			}
		}
	case kernel.Delivery:
		containers = o.DeliveriesOf(viewer.ID())
	}

	if len(containers) == 0 {
		return nil, false, errs.NewForbiddenError(viewer.String(), "view order "+o.ID().String())
	}
	return containers, false, nil
}

func filterEntries(entries []order.RefundEntry, keep func(order.Container) bool) []order.RefundEntry {
	var out []order.RefundEntry
	for _, e := range entries {
		if keep(e.Container) {
			out = append(out, e)
		}
	}
	return out
}
