package order

import (
	"fmt"
	"strings"

	"marketplace/internal/pkg/errs"
)

// RefundStatus is the state of a single refund request.
//
//	Pending ──> VendorApproved ──> RefundSuccess | Rejected
//	   └──────────────────────────> RefundSuccess | Rejected
//
// RefundSuccess and Rejected are final.
type RefundStatus int

const (
	UnknownRefundStatus RefundStatus = iota
	Pending
	VendorApproved
	Rejected
	RefundSuccess
)

func getRefundStatusStrings() map[RefundStatus]string {
	return map[RefundStatus]string{
		UnknownRefundStatus: "Unknown",
		Pending:             "Pending",
		VendorApproved:      "VendorApproved",
		Rejected:            "Rejected",
		RefundSuccess:       "RefundSuccess",
	}
}

func (s RefundStatus) String() string {
	if str, ok := getRefundStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// ParseRefundStatus accepts the names returned by String, case insensitively.
func ParseRefundStatus(s string) (RefundStatus, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for status, name := range getRefundStatusStrings() {
		if status != UnknownRefundStatus && strings.ToLower(name) == needle {
			return status, nil
		}
	}
	return UnknownRefundStatus, errs.NewValueIsInvalidErrorWithCause(
		"refund status", fmt.Errorf("%q is not a valid refund status", s))
}

func (s RefundStatus) Validate() error {
	if s <= UnknownRefundStatus || s > RefundSuccess {
		return errs.NewValueIsInvalidErrorWithCause("refund status", fmt.Errorf("%d is not a valid refund status", s))
	}
	return nil
}

func (s RefundStatus) IsFinal() bool {
	return s == Rejected || s == RefundSuccess
}

// IsDecided reports whether somebody has acted on the request.
func (s RefundStatus) IsDecided() bool {
	return s != Pending && s != UnknownRefundStatus
}
