// Package queries contains read operations for retrieving system state.
// Queries return read models shaped for one use case and never mutate anything.
package queries

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var (
	ErrGetDeliveryPartnersQueryIsNotConstructed = errors.New(
		"GetDeliveryPartnersQuery must be created via NewGetDeliveryPartnersQuery constructor",
	)
)

// GetDeliveryPartnersQuery lists every delivery partner with its current load.
//
// Example:
//
//	query := NewGetDeliveryPartnersQuery()
//	handler := NewGetDeliveryPartnersQueryHandler(db)
//
//	partners, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to retrieve partners: %w", err)
//	}
type GetDeliveryPartnersQuery struct {
	guard guard.ConstructorGuard
}

func NewGetDeliveryPartnersQuery() GetDeliveryPartnersQuery {
	return GetDeliveryPartnersQuery{guard: guard.NewConstructorGuard()}
}

func (q GetDeliveryPartnersQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryPartnersQueryIsNotConstructed)
}

// GetDeliveryPartnersQueryResponse is one partner in the read model.
type GetDeliveryPartnersQueryResponse struct {
	ID       kernel.UUID
	Name     string
	Capacity int
	// Active is the number of containers the partner is delivering right now.
	Active int
}
