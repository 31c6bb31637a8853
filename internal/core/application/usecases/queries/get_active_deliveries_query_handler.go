package queries

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveDeliveriesQueryHandler reads the delivery index joined with the shipping
// address kept in the order document.
type GetActiveDeliveriesQueryHandler struct {
	db *gorm.DB
}

func NewGetActiveDeliveriesQueryHandler(db *gorm.DB) GetActiveDeliveriesQueryHandler {
	return GetActiveDeliveriesQueryHandler{db: db}
}

// Handle returns the partner's pending and accepted deliveries, oldest assignment first.
func (h GetActiveDeliveriesQueryHandler) Handle(
	ctx context.Context,
	query GetActiveDeliveriesQuery,
) ([]GetActiveDeliveriesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	deliveries := make([]GetActiveDeliveriesQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			d.container_id,
			d.order_id,
			d.status,
			d.assigned_at,
			o.document->'address'->>'line',
			o.document->'address'->>'city',
			COALESCE(o.document->'address'->>'postal_code', ''),
			o.document->'address'->>'country'
		FROM order_deliveries d
		JOIN orders o ON o.id = d.order_id
		WHERE d.partner_id = ? AND d.status IN ?
		ORDER BY d.assigned_at, d.container_id
	`, query.PartnerID().Bytes(), []int{int(order.DeliveryPending), int(order.DeliveryAccepted)}).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			delivery                        GetActiveDeliveriesQueryResponse
			containerID, orderID            uuid.UUID
			status                          int
			assignedAt                      time.Time
			line, city, postalCode, country string
		)

		if err = rows.Scan(&containerID, &orderID, &status, &assignedAt,
			&line, &city, &postalCode, &country); err != nil {
			return nil, err
		}

		if delivery.ContainerID, err = kernel.UUIDFromBytes(containerID[:]); err != nil {
			return nil, err
		}
		if delivery.OrderID, err = kernel.UUIDFromBytes(orderID[:]); err != nil {
			return nil, err
		}
		if delivery.Address, err = kernel.NewShippingAddress(line, city, postalCode, country); err != nil {
			return nil, err
		}
		delivery.Status = order.DeliveryStatus(status).String()
		delivery.AssignedAt = assignedAt.UTC()
		deliveries = append(deliveries, delivery)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return deliveries, nil
}
