package ports

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/partner"
)

// DeliveryPartnerRepository persists delivery partners with their active deliveries.
type DeliveryPartnerRepository interface {
	Add(ctx context.Context, p *partner.DeliveryPartner) error
	Update(ctx context.Context, p *partner.DeliveryPartner) error
	Get(ctx context.Context, id kernel.UUID) (*partner.DeliveryPartner, error)

	// GetAllWithCapacity returns the partners with at least one free slot.
	GetAllWithCapacity(ctx context.Context) ([]*partner.DeliveryPartner, error)
}
