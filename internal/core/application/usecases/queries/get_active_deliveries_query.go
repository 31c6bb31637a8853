package queries

import (
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	ErrGetActiveDeliveriesQueryIsNotConstructed = errors.New(
		"GetActiveDeliveriesQuery must be created via NewGetActiveDeliveriesQuery constructor",
	)
)

// GetActiveDeliveriesQuery lists the pending and accepted deliveries of one partner.
// Admins may ask for any partner, a delivery partner only for itself.
type GetActiveDeliveriesQuery struct {
	partnerID kernel.UUID
	actor     kernel.Actor
	guard     guard.ConstructorGuard
}

func NewGetActiveDeliveriesQuery(partnerID kernel.UUID, actor kernel.Actor) (GetActiveDeliveriesQuery, error) {
	if err := partnerID.Validate(); err != nil {
		return GetActiveDeliveriesQuery{}, errs.NewValueIsRequiredErrorWithCause("partner id", err)
	}
	if err := actor.Validate(); err != nil {
		return GetActiveDeliveriesQuery{}, errs.NewValueIsRequiredErrorWithCause("actor", err)
	}
	if !actor.IsAdmin() && (actor.Role() != kernel.Delivery || !actor.ID().IsEqual(partnerID)) {
		return GetActiveDeliveriesQuery{}, errs.NewForbiddenError(actor.String(),
			"list deliveries of "+partnerID.String())
	}

	return GetActiveDeliveriesQuery{
		partnerID: partnerID,
		actor:     actor,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (q GetActiveDeliveriesQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveDeliveriesQueryIsNotConstructed)
}

func (q GetActiveDeliveriesQuery) PartnerID() kernel.UUID {
	return q.partnerID
}

func (q GetActiveDeliveriesQuery) Actor() kernel.Actor {
	return q.actor
}

// GetActiveDeliveriesQueryResponse is one container on the partner's route.
type GetActiveDeliveriesQueryResponse struct {
	ContainerID kernel.UUID
	OrderID     kernel.UUID
	Status      string
	AssignedAt  time.Time
	Address     kernel.ShippingAddress
}
