// Package partnerrepo provides data transfer objects and mapping functions for delivery
// partner persistence.
package partnerrepo

import (
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/partner"

	"github.com/google/uuid"
)

// PartnerDTO represents the database structure for persisting delivery partners.
type PartnerDTO struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"type:varchar(255);not null"`
	Capacity int       `gorm:"type:int;not null"`
	Version  int       `gorm:"not null;default:0"`
	Slots    []SlotDTO `gorm:"foreignKey:PartnerID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for delivery partners.
func (PartnerDTO) TableName() string {
	return "delivery_partners"
}

// SlotDTO is one container a partner is currently delivering.
type SlotDTO struct {
	PartnerID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContainerID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position    int       `gorm:"type:int;not null"`
}

// TableName specifies the database table name for partner slots.
func (SlotDTO) TableName() string {
	return "delivery_partner_slots"
}

func fromDomain(p *partner.DeliveryPartner) PartnerDTO {
	partnerID := p.ID().Bytes()
	active := p.ActiveDeliveries()
	slots := make([]SlotDTO, 0, len(active))
	for i, containerID := range active {
		slots = append(slots, SlotDTO{
			PartnerID:   partnerID,
			ContainerID: containerID.Bytes(),
			Position:    i,
		})
	}

	return PartnerDTO{
		ID:       partnerID,
		Name:     p.Name(),
		Capacity: p.Capacity(),
		Version:  p.Version(),
		Slots:    slots,
	}
}

// toDomain rebuilds the partner with RestoreDeliveryPartner. Slots must be ordered by Position.
func toDomain(dto PartnerDTO) (*partner.DeliveryPartner, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	active := make([]kernel.UUID, 0, len(dto.Slots))
	for _, slot := range dto.Slots {
		containerID, idErr := kernel.UUIDFromBytes(slot.ContainerID[:])
		if idErr != nil {
			return nil, idErr
		}
		active = append(active, containerID)
	}

	return partner.RestoreDeliveryPartner(id, dto.Name, dto.Capacity, active, dto.Version)
}
