package order

import (
	"fmt"
	"strings"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
)

// DeliveryStatus is the state of a delivery assignment.
//
//	pending ──> accepted ──> completed
//	   └──────> declined
//
// completed and declined are terminal.
type DeliveryStatus int

const (
	UnknownDeliveryStatus DeliveryStatus = iota
	DeliveryPending
	DeliveryAccepted
	DeliveryCompleted
	DeliveryDeclined
)

func getDeliveryStatusStrings() map[DeliveryStatus]string {
	return map[DeliveryStatus]string{
		UnknownDeliveryStatus: "unknown",
		DeliveryPending:       "pending",
		DeliveryAccepted:      "accepted",
		DeliveryCompleted:     "completed",
		DeliveryDeclined:      "declined",
	}
}

func (s DeliveryStatus) String() string {
	if str, ok := getDeliveryStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for status, name := range getDeliveryStatusStrings() {
		if status != UnknownDeliveryStatus && name == needle {
			return status, nil
		}
	}
	return UnknownDeliveryStatus, errs.NewValueIsInvalidErrorWithCause(
		"delivery status", fmt.Errorf("%q is not a valid delivery status", s))
}

func (s DeliveryStatus) Validate() error {
	if s <= UnknownDeliveryStatus || s > DeliveryDeclined {
		return errs.NewValueIsInvalidErrorWithCause("delivery status", fmt.Errorf("%d is not a valid delivery status", s))
	}
	return nil
}

func (s DeliveryStatus) IsTerminal() bool {
	return s == DeliveryCompleted || s == DeliveryDeclined
}

// IsActive reports whether the assignment still occupies the partner.
func (s DeliveryStatus) IsActive() bool {
	return s == DeliveryPending || s == DeliveryAccepted
}

// TransitionTo validates s -> target.
func (s DeliveryStatus) TransitionTo(target DeliveryStatus) (DeliveryStatus, error) {
	if err := target.Validate(); err != nil {
		return UnknownDeliveryStatus, err
	}
	if s.IsTerminal() {
		return UnknownDeliveryStatus, errs.NewAlreadyTerminalError("delivery", s.String())
	}

	legal := (s == DeliveryPending && (target == DeliveryAccepted || target == DeliveryDeclined)) ||
		(s == DeliveryAccepted && target == DeliveryCompleted)
	if !legal {
		return UnknownDeliveryStatus, errs.NewInvalidTransitionError("delivery", s.String(), target.String())
	}
	return target, nil
}

// DeliveryAssignment attaches a delivery partner to exactly one container. The partner
// references it; the container owns it.
type DeliveryAssignment struct {
	partnerID  kernel.UUID
	status     DeliveryStatus
	assignedAt time.Time
}

func newDeliveryAssignment(partnerID kernel.UUID, at time.Time) *DeliveryAssignment {
	return &DeliveryAssignment{partnerID: partnerID, status: DeliveryPending, assignedAt: at.UTC()}
}

// RestoreDeliveryAssignment rebuilds an assignment from storage.
func RestoreDeliveryAssignment(partnerID kernel.UUID, status DeliveryStatus, assignedAt time.Time) *DeliveryAssignment {
	return &DeliveryAssignment{partnerID: partnerID, status: status, assignedAt: assignedAt}
}

func (d *DeliveryAssignment) PartnerID() kernel.UUID { return d.partnerID }

func (d *DeliveryAssignment) Status() DeliveryStatus { return d.status }

func (d *DeliveryAssignment) AssignedAt() time.Time { return d.assignedAt }

// IsAssignedTo reports whether partnerID is the assigned delivery partner.
func (d *DeliveryAssignment) IsAssignedTo(partnerID kernel.UUID) bool {
	return d != nil && d.partnerID.IsEqual(partnerID)
}
