package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var ErrRefundRequestIsNotConstructed = errors.New("RefundRequest must be created via NewRefundRequest")

// RefundRequest is a customer claim against refundedQty units of one cart item.
// It is owned by the container (order or sub-order) holding the item and only that
// container mutates it.
type RefundRequest struct {
	itemID       kernel.UUID
	originalQty  int
	refundedQty  int
	reason       string
	image        string
	status       RefundStatus
	rejectReason string
	requestedAt  time.Time
	guard        guard.ConstructorGuard
}

// NewRefundRequest creates a Pending request. image is an optional evidence reference.
func NewRefundRequest(
	itemID kernel.UUID,
	originalQty, refundedQty int,
	reason, image string,
	requestedAt time.Time,
) (*RefundRequest, error) {
	var err error
	if e := itemID.Validate(); e != nil {
		err = errors.Join(err, errs.NewValueIsRequiredErrorWithCause("item id", e))
	}
	if originalQty <= 0 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause(
			"original quantity", fmt.Errorf("%d is not greater than 0", originalQty)))
	}
	if refundedQty < 1 || (originalQty > 0 && refundedQty > originalQty) {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("refunded quantity", refundedQty, 1, originalQty))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("reason"))
	}
	if err != nil {
		return nil, err
	}

	return &RefundRequest{
		itemID:      itemID,
		originalQty: originalQty,
		refundedQty: refundedQty,
		reason:      reason,
		image:       strings.TrimSpace(image),
		status:      Pending,
		requestedAt: requestedAt.UTC(),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// RestoreRefundRequest rebuilds a request from storage without re-running creation rules.
func RestoreRefundRequest(
	itemID kernel.UUID,
	originalQty, refundedQty int,
	reason, image string,
	status RefundStatus,
	rejectReason string,
	requestedAt time.Time,
) *RefundRequest {
	return &RefundRequest{
		itemID:       itemID,
		originalQty:  originalQty,
		refundedQty:  refundedQty,
		reason:       reason,
		image:        image,
		status:       status,
		rejectReason: rejectReason,
		requestedAt:  requestedAt,
		guard:        guard.NewConstructorGuard(),
	}
}

func (r *RefundRequest) Validate() error {
	if r == nil {
		return ErrRefundRequestIsNotConstructed
	}
	return r.guard.Validate(ErrRefundRequestIsNotConstructed)
}

func (r *RefundRequest) ItemID() kernel.UUID { return r.itemID }
func (r *RefundRequest) OriginalQty() int { return r.originalQty }
func (r *RefundRequest) RefundedQty() int { return r.refundedQty }
func (r *RefundRequest) Reason() string { return r.reason }
func (r *RefundRequest) Image() string { return r.image }
func (r *RefundRequest) Status() RefundStatus { return r.status }
func (r *RefundRequest) RejectReason() string { return r.rejectReason }
func (r *RefundRequest) RequestedAt() time.Time { return r.requestedAt }

// validateDecision checks decision against the current state without mutating.
// index only decorates the errors.
func (r *RefundRequest) validateDecision(index int, decision RefundStatus, rejectReason string) error {
	if err := decision.Validate(); err != nil {
		return err
	}
	if r.status.IsFinal() {
		return errs.NewAlreadyResolvedError(index, r.status.String())
	}

	switch decision { //nolint:exhaustive // UnknownRefundStatus fails Validate above
	case Pending:
		return errs.NewInvalidTransitionError("refund request", r.status.String(), decision.String())
	case VendorApproved:
		if r.status == VendorApproved {
			return errs.NewNoOpError("refund request", r.status.String())
		}
	case Rejected:
		if strings.TrimSpace(rejectReason) == "" {
			return errs.NewMissingReasonError("reject reason")
		}
	}
	return nil
}

func (r *RefundRequest) apply(decision RefundStatus, rejectReason string) {
	r.status = decision
	if decision == Rejected {
		r.rejectReason = strings.TrimSpace(rejectReason)
	}
}
