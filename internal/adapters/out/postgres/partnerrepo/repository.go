package partnerrepo

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/partner"
	"marketplace/internal/pkg/errs"

	"github.com/go-faster/errors"
	"gorm.io/gorm"
)

// GormPartnerRepository implements DeliveryPartnerRepository using GORM.
type GormPartnerRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormPartnerRepository(db *gorm.DB, tracker aggregateTracker) *GormPartnerRepository {
	return &GormPartnerRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new delivery partner together with its slots.
func (r *GormPartnerRepository) Add(ctx context.Context, aggregate *partner.DeliveryPartner) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return errors.Wrap(err, "insert delivery partner")
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves the partner row and replaces its slots. The row must still be at the
// version the aggregate was loaded with, otherwise ErrConflict is returned.
func (r *GormPartnerRepository) Update(ctx context.Context, aggregate *partner.DeliveryPartner) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&PartnerDTO{}).
		Where("id = ? AND version = ?", dto.ID, dto.Version).
		Updates(map[string]any{
			"name":     dto.Name,
			"capacity": dto.Capacity,
			"version":  gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "update delivery partner")
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&PartnerDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return errors.Wrap(err, "count delivery partner")
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("delivery partner", aggregate.ID().String())
		}
		return errs.NewConflictError("delivery partner", aggregate.ID().String(), aggregate.Version())
	}

	if err := db.Where("partner_id = ?", dto.ID).Delete(&SlotDTO{}).Error; err != nil {
		return errors.Wrap(err, "clear slots")
	}
	if len(dto.Slots) > 0 {
		if err := db.Create(&dto.Slots).Error; err != nil {
			return errors.Wrap(err, "insert slots")
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a delivery partner by ID.
func (r *GormPartnerRepository) Get(ctx context.Context, id kernel.UUID) (*partner.DeliveryPartner, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto PartnerDTO
	if err := r.db.WithContext(ctx).
		Preload("Slots", orderedSlots).
		First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("delivery partner", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllWithCapacity retrieves the partners holding fewer containers than their
// capacity, ordered by name.
func (r *GormPartnerRepository) GetAllWithCapacity(ctx context.Context) ([]*partner.DeliveryPartner, error) {
	var dtos []PartnerDTO
	if err := r.db.WithContext(ctx).
		Preload("Slots", orderedSlots).
		Where(`capacity > (
			SELECT COUNT(*) FROM delivery_partner_slots s WHERE s.partner_id = delivery_partners.id
		)`).
		Order("name, id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	partners := make([]*partner.DeliveryPartner, 0, len(dtos))
	for _, dto := range dtos {
		p, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		partners = append(partners, p)
	}

	return partners, nil
}

func orderedSlots(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}
