package order

import (
	"fmt"
	"strings"

	"marketplace/internal/pkg/errs"
)

// Status is the lifecycle state shared by orders and sub-orders.
//
// State transitions:
//
//	Processing ──> Shipped ──> Delivered
//	    │             │
//	    └─────────────┴──> Canceled
//
//	Shipped | Delivered ──> Refund Requested ──> Processing refund ──> Refund Processed
//	                               │                    │
//	                               └────────────────────┴──> (all rejected) pre-refund status
//
// Delivered, Canceled and Refund Processed are terminal for status edits. Refund branch
// statuses are never requested directly; they follow from the container's refund requests.
type Status int

const (
	// Unknown (0) catches uninitialized values.
	Unknown Status = iota
	Processing
	Shipped
	Delivered
	Canceled
	RefundRequested
	ProcessingRefund
	RefundProcessed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:          "Unknown",
		Processing:       "Processing",
		Shipped:          "Shipped",
		Delivered:        "Delivered",
		Canceled:         "Canceled",
		RefundRequested:  "Refund Requested",
		ProcessingRefund: "Processing refund",
		RefundProcessed:  "Refund Processed",
	}
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// ParseStatus accepts the display form ("Refund Requested") case insensitively.
func ParseStatus(s string) (Status, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for status, name := range getStatusStrings() {
		if status != Unknown && strings.ToLower(name) == needle {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and values outside the enum.
func (s Status) Validate() error {
	if s <= Unknown || s > RefundProcessed {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// rank orders the main line. Statuses off the main line rank 0.
func (s Status) rank() int {
	switch s { //nolint:exhaustive // only the main line is ranked
	case Processing:
		return 1
	case Shipped:
		return 2
	case Delivered:
		return 3
	default:
		return 0
	}
}

// refundPhase orders the refund branch. Statuses off the branch rank 0.
func (s Status) refundPhase() int {
	switch s { //nolint:exhaustive // only the refund branch is ranked
	case RefundRequested:
		return 1
	case ProcessingRefund:
		return 2
	case RefundProcessed:
		return 3
	default:
		return 0
	}
}

func (s Status) IsTerminal() bool {
	return s == Delivered || s == Canceled || s == RefundProcessed
}

// IsRefundPhase reports whether the status belongs to the refund branch.
func (s Status) IsRefundPhase() bool {
	return s.refundPhase() > 0
}

// IsMainLine reports whether the status is one of Processing, Shipped or Delivered.
func (s Status) IsMainLine() bool {
	return s.rank() > 0
}

// Advance validates an edit from s to target and returns target.
//
// The checks run in a fixed order: NoOp for an unchanged status, then InvalidTransition
// when s is terminal, when s is in the refund branch, when target is a refund status,
// or when target is not strictly later on the main line. Canceled is accepted from
// Processing and Shipped.
func (s Status) Advance(target Status) (Status, error) {
	if err := target.Validate(); err != nil {
		return Unknown, err
	}
	if target == s {
		return Unknown, errs.NewNoOpError("order status", s.String())
	}
	if s.IsTerminal() || s.IsRefundPhase() || target.IsRefundPhase() {
		return Unknown, errs.NewInvalidTransitionError("order status", s.String(), target.String())
	}
	if target == Canceled {
		return Canceled, nil
	}
	if target.rank() <= s.rank() {
		return Unknown, errs.NewInvalidTransitionError("order status", s.String(), target.String())
	}
	return target, nil
}

// ValidateRefundable checks that a customer may open a refund request from s.
func (s Status) ValidateRefundable() error {
	switch s { //nolint:exhaustive // everything else is rejected
	case Shipped, Delivered, RefundRequested, ProcessingRefund:
		return nil
	default:
		return errs.NewInvalidTransitionError("order status", s.String(), RefundRequested.String())
	}
}

// ValidateDeliverable checks that a delivery partner may be attached in s.
func (s Status) ValidateDeliverable() error {
	if s != Processing && s != Shipped {
		return errs.NewInvalidTransitionErrorWithCause("delivery", s.String(), "assigned",
			fmt.Errorf("%s is not a valid status to assign a delivery partner", s))
	}
	return nil
}
