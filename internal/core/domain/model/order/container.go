package order

import (
	"slices"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
)

// Container is whatever fulfils a part of a checkout: a non-master Order fulfilling
// itself, or one SubOrder of a master Order. Refund requests and delivery assignments
// live on containers only.
//
// The interface is sealed; *Order and *SubOrder are the only implementations.
type Container interface {
	ID() kernel.UUID
	ShopID() kernel.UUID
	Status() Status
	PreRefundStatus() Status
	Items() []*CartItem
	Item(itemID kernel.UUID) (*CartItem, error)
	RefundRequests() []*RefundRequest
	RefundRequest(index int) (*RefundRequest, error)
	Delivery() *DeliveryAssignment
	RefundedQuantity(itemID kernel.UUID) int
	ReservedQuantity(itemID kernel.UUID) int

	ValidateStatusChange(target Status) error
	ChangeStatus(target Status) error
	OpenRefund(itemID kernel.UUID, qty int, reason, image string, at time.Time) (int, error)
	ValidateRefundDecision(index int, decision RefundStatus, rejectReason string) error
	ResolveRefund(index int, decision RefundStatus, rejectReason string) error
	ValidateAssignDelivery(partnerID kernel.UUID) error
	AssignDelivery(partnerID kernel.UUID, at time.Time) error
	ValidateDeliveryUpdate(target DeliveryStatus) error
	UpdateDelivery(target DeliveryStatus) error

	state() *fulfilment
}

// fulfilment is the state shared by both container shapes.
type fulfilment struct {
	id              kernel.UUID
	shopID          kernel.UUID
	status          Status
	preRefundStatus Status
	items           []*CartItem
	refundRequests  []*RefundRequest
	delivery        *DeliveryAssignment
}

// ContainerState carries the persisted fields of a container into RestoreSubOrder and
// RestoreOrder.
type ContainerState struct {
	ID              kernel.UUID
	ShopID          kernel.UUID
	Status          Status
	PreRefundStatus Status
	Items           []*CartItem
	RefundRequests  []*RefundRequest
	Delivery        *DeliveryAssignment
}

func restoreFulfilment(s ContainerState) fulfilment {
	return fulfilment{
		id:              s.ID,
		shopID:          s.ShopID,
		status:          s.Status,
		preRefundStatus: s.PreRefundStatus,
		items:           slices.Clone(s.Items),
		refundRequests:  slices.Clone(s.RefundRequests),
		delivery:        s.Delivery,
	}
}

func (f *fulfilment) state() *fulfilment { return f }

func (f *fulfilment) ID() kernel.UUID { return f.id }

// ShopID returns the fulfilling shop.
func (f *fulfilment) ShopID() kernel.UUID { return f.shopID }

func (f *fulfilment) Status() Status { return f.status }

// PreRefundStatus is the status the container returns to when every refund request is rejected.
func (f *fulfilment) PreRefundStatus() Status { return f.preRefundStatus }

func (f *fulfilment) Items() []*CartItem { return slices.Clone(f.items) }

func (f *fulfilment) Item(itemID kernel.UUID) (*CartItem, error) {
	for _, item := range f.items {
		if item.ID().IsEqual(itemID) {
			return item, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("item id", itemID)
}

func (f *fulfilment) RefundRequests() []*RefundRequest { return slices.Clone(f.refundRequests) }

func (f *fulfilment) RefundRequest(index int) (*RefundRequest, error) {
	if index < 0 || index >= len(f.refundRequests) {
		return nil, errs.NewObjectNotFoundError("refund request index", index)
	}
	return f.refundRequests[index], nil
}

// Delivery returns the current assignment or nil.
func (f *fulfilment) Delivery() *DeliveryAssignment { return f.delivery }

// RefundedQuantity sums refundedQty over the RefundSuccess requests for itemID.
func (f *fulfilment) RefundedQuantity(itemID kernel.UUID) int {
	total := 0
	for _, r := range f.refundRequests {
		if r.ItemID().IsEqual(itemID) && r.Status() == RefundSuccess {
			total += r.RefundedQty()
		}
	}
	return total
}

// ReservedQuantity sums refundedQty over every request for itemID that was not rejected.
func (f *fulfilment) ReservedQuantity(itemID kernel.UUID) int {
	total := 0
	for _, r := range f.refundRequests {
		if r.ItemID().IsEqual(itemID) && r.Status() != Rejected {
			total += r.RefundedQty()
		}
	}
	return total
}

func (f *fulfilment) ValidateStatusChange(target Status) error {
	_, err := f.status.Advance(target)
	return err
}

// ChangeStatus applies a status edit validated by Status.Advance. Canceling declines
// an active delivery assignment.
func (f *fulfilment) ChangeStatus(target Status) error {
	next, err := f.status.Advance(target)
	if err != nil {
		return err
	}
	f.status = next
	if next == Canceled && f.delivery != nil && f.delivery.Status().IsActive() {
		f.delivery.status = DeliveryDeclined
	}
	return nil
}

// OpenRefund appends a Pending request for qty units of itemID and returns its index.
// The quantity may not exceed what is left after every request that was not rejected.
func (f *fulfilment) OpenRefund(itemID kernel.UUID, qty int, reason, image string, at time.Time) (int, error) {
	if err := f.status.ValidateRefundable(); err != nil {
		return 0, err
	}
	item, err := f.Item(itemID)
	if err != nil {
		return 0, err
	}
	if reserved := f.ReservedQuantity(itemID); reserved+qty > item.Quantity() && qty > 0 {
		return 0, errs.NewOverRefundError(itemID.String(), item.Quantity(), reserved, qty)
	}
	request, err := NewRefundRequest(itemID, item.Quantity(), qty, reason, image, at)
	if err != nil {
		return 0, err
	}

	if !f.status.IsRefundPhase() {
		f.preRefundStatus = f.status
	}
	f.refundRequests = append(f.refundRequests, request)
	f.syncRefundStatus()
	return len(f.refundRequests) - 1, nil
}

func (f *fulfilment) ValidateRefundDecision(index int, decision RefundStatus, rejectReason string) error {
	request, err := f.RefundRequest(index)
	if err != nil {
		return err
	}
	if err = request.validateDecision(index, decision, rejectReason); err != nil {
		return err
	}
	if decision != RefundSuccess {
		return nil
	}

	originalQty := request.OriginalQty()
	if item, itemErr := f.Item(request.ItemID()); itemErr == nil {
		originalQty = item.Quantity()
	}
	if refunded := f.RefundedQuantity(request.ItemID()); refunded+request.RefundedQty() > originalQty {
		return errs.NewOverRefundError(request.ItemID().String(), originalQty, refunded, request.RefundedQty())
	}
	return nil
}

// ResolveRefund applies decision to the request at index and re-derives the container status.
func (f *fulfilment) ResolveRefund(index int, decision RefundStatus, rejectReason string) error {
	if err := f.ValidateRefundDecision(index, decision, rejectReason); err != nil {
		return err
	}
	f.refundRequests[index].apply(decision, rejectReason)
	f.syncRefundStatus()
	return nil
}

// syncRefundStatus derives the container status from its refund requests:
//   - open requests, one of them vendor approved or something already refunded: Processing refund
//   - open requests otherwise: Refund Requested
//   - all closed with at least one RefundSuccess: Refund Processed
//   - all rejected: the pre-refund status
func (f *fulfilment) syncRefundStatus() {
	if len(f.refundRequests) == 0 {
		return
	}

	var open, progressed, succeeded bool
	for _, r := range f.refundRequests {
		switch r.Status() { //nolint:exhaustive // unknown statuses are ignored
		case Pending:
			open = true
		case VendorApproved:
			open, progressed = true, true
		case RefundSuccess:
			succeeded = true
		}
	}

	switch {
	case open && (progressed || succeeded):
		f.status = ProcessingRefund
	case open:
		f.status = RefundRequested
	case succeeded:
		f.status = RefundProcessed
	case f.status.IsRefundPhase() && f.preRefundStatus != Unknown:
		f.status = f.preRefundStatus
	}
}

func (f *fulfilment) ValidateAssignDelivery(partnerID kernel.UUID) error {
	if err := partnerID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("delivery partner id", err)
	}
	if f.delivery != nil {
		switch {
		case f.delivery.Status() == DeliveryCompleted:
			return errs.NewAlreadyTerminalError("delivery", f.delivery.Status().String())
		case f.delivery.Status().IsActive():
			return errs.NewInvalidTransitionError("delivery", f.delivery.Status().String(), DeliveryPending.String())
		}
	}
	return f.status.ValidateDeliverable()
}

// AssignDelivery attaches partnerID in state pending. A declined assignment is replaced.
func (f *fulfilment) AssignDelivery(partnerID kernel.UUID, at time.Time) error {
	if err := f.ValidateAssignDelivery(partnerID); err != nil {
		return err
	}
	f.delivery = newDeliveryAssignment(partnerID, at)
	return nil
}

func (f *fulfilment) ValidateDeliveryUpdate(target DeliveryStatus) error {
	if f.delivery == nil {
		return errs.NewObjectNotFoundError("delivery", f.id)
	}
	if _, err := f.delivery.Status().TransitionTo(target); err != nil {
		return err
	}
	// a canceled container can only let go of its partner
	if f.status == Canceled && target != DeliveryDeclined {
		return errs.NewInvalidTransitionError("delivery", f.delivery.Status().String(), target.String())
	}
	return nil
}

// UpdateDelivery moves the assignment to target. Completing a delivery marks a container
// that is still on the main line as Delivered. In the refund branch the container returns
// to Delivered once every request is rejected.
func (f *fulfilment) UpdateDelivery(target DeliveryStatus) error {
	if err := f.ValidateDeliveryUpdate(target); err != nil {
		return err
	}
	f.delivery.status = target
	if target != DeliveryCompleted {
		return nil
	}
	switch {
	case f.status.IsMainLine():
		f.status = Delivered
	case f.status.IsRefundPhase() && f.preRefundStatus.IsMainLine():
		f.preRefundStatus = Delivered
	}
	return nil
}
