package services

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/partner"
)

// ErrDeliveryPartnerNotFound is returned when no partner has a free slot for a container.
var ErrDeliveryPartnerNotFound = errors.New("delivery partner not found")

// Dispatch is one assignment made by the DeliveryDispatcher.
type Dispatch struct {
	ContainerID kernel.UUID
	Partner     *partner.DeliveryPartner
}

// DeliveryDispatcher assigns delivery partners to the Shipped containers of an order that
// have no assignment (or only a declined one).
//
// Business rules:
//   - Partners must have free capacity
//   - The least loaded partner wins, ties go to the first partner given
//   - Assignments are made with the system admin identity through the TransitionAuthority
//
// Example usage:
//
//	dispatcher := services.NewDeliveryDispatcher(authority)
//	dispatched, err := dispatcher.Dispatch(o, partners)
//	if errors.Is(err, services.ErrDeliveryPartnerNotFound) {
//	    // every partner is busy, try again on the next tick
//	}
type DeliveryDispatcher struct {
	authority TransitionAuthority
}

func NewDeliveryDispatcher(authority TransitionAuthority) DeliveryDispatcher {
	return DeliveryDispatcher{authority: authority}
}

// Dispatch assigns partners to every container of o awaiting delivery and occupies a
// slot of each chosen partner. When partners run out part way, the assignments made so
// far are returned together with ErrDeliveryPartnerNotFound.
func (d DeliveryDispatcher) Dispatch(o *order.Order, partners []*partner.DeliveryPartner) ([]Dispatch, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	for _, p := range partners {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	var dispatched []Dispatch
	for _, c := range o.RefundContainers() {
		if c.Status() != order.Shipped || (c.Delivery() != nil && c.Delivery().Status() != order.DeliveryDeclined) {
			continue
		}

		best := leastLoaded(partners)
		if best == nil {
			return dispatched, ErrDeliveryPartnerNotFound
		}
		if err := best.Take(c.ID()); err != nil {
			return dispatched, err
		}
		if _, err := d.authority.AssignDelivery(o, c.ID(), best.ID(), kernel.SystemActor()); err != nil {
			_ = best.Release(c.ID())
			return dispatched, err
		}
		dispatched = append(dispatched, Dispatch{ContainerID: c.ID(), Partner: best})
	}

	return dispatched, nil
}

func leastLoaded(partners []*partner.DeliveryPartner) *partner.DeliveryPartner {
	var best *partner.DeliveryPartner
	for _, p := range partners {
		if !p.CanTake() {
			continue
		}
		if best == nil || p.Load() < best.Load() {
			best = p
		}
	}
	return best
}
