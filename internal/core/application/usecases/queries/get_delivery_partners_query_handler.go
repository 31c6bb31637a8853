package queries

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetDeliveryPartnersQueryHandler reads partners straight from the database.
type GetDeliveryPartnersQueryHandler struct {
	db *gorm.DB
}

func NewGetDeliveryPartnersQueryHandler(db *gorm.DB) GetDeliveryPartnersQueryHandler {
	return GetDeliveryPartnersQueryHandler{db: db}
}

// Handle returns all partners ordered by name.
func (h GetDeliveryPartnersQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryPartnersQuery,
) ([]GetDeliveryPartnersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	partners := make([]GetDeliveryPartnersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			p.id,
			p.name,
			p.capacity,
			COUNT(s.container_id) AS active
		FROM delivery_partners p
		LEFT JOIN delivery_partner_slots s ON s.partner_id = p.id
		GROUP BY p.id, p.name, p.capacity
		ORDER BY p.name, p.id
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var partner GetDeliveryPartnersQueryResponse
		var id uuid.UUID

		if err = rows.Scan(&id, &partner.Name, &partner.Capacity, &partner.Active); err != nil {
			return nil, err
		}

		partnerID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		partner.ID = partnerID
		partners = append(partners, partner)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return partners, nil
}
