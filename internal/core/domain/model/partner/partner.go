package partner

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	ErrNameIsRequired                  = errs.NewValueIsRequiredError("name")
	ErrDeliveryPartnerIsNotConstructed = errors.New("DeliveryPartner must be created via NewDeliveryPartner constructor")
	// ErrNoCapacity is returned by Take when every slot of the partner is busy.
	ErrNoCapacity = errors.New("delivery partner has no free capacity")
)

// DeliveryPartner carries at most capacity containers at the same time.
//
// Example:
//
//	p, err := partner.NewDeliveryPartner(kernel.NewUUID(), "Swift Couriers", 5)
//	if err != nil {
//	    return err
//	}
//	if p.CanTake() {
//	    _ = p.Take(containerID)
//	}
type DeliveryPartner struct {
	id       kernel.UUID
	name     string
	capacity int
	active   []kernel.UUID
	version  int
	guard    guard.ConstructorGuard
}

func NewDeliveryPartner(id kernel.UUID, name string, capacity int) (*DeliveryPartner, error) {
	return RestoreDeliveryPartner(id, name, capacity, nil, 0)
}

// RestoreDeliveryPartner reconstructs a partner from storage, including the containers
// it is working on and the version it was stored at.
func RestoreDeliveryPartner(
	id kernel.UUID,
	name string,
	capacity int,
	active []kernel.UUID,
	version int,
) (*DeliveryPartner, error) {
	p := &DeliveryPartner{
		version: version,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setID(id),
		p.setName(name),
		p.setCapacity(capacity),
		p.setActive(active),
	); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *DeliveryPartner) Validate() error {
	if p == nil {
		return ErrDeliveryPartnerIsNotConstructed
	}
	return p.guard.Validate(ErrDeliveryPartnerIsNotConstructed)
}

func (p *DeliveryPartner) IsEqual(other *DeliveryPartner) bool {
	return other != nil && p.id.IsEqual(other.id)
}

func (p *DeliveryPartner) ID() kernel.UUID {
	return p.id
}

func (p *DeliveryPartner) Name() string {
	return p.name
}

func (p *DeliveryPartner) Capacity() int {
	return p.capacity
}

// Version is the persisted revision the partner was loaded at.
func (p *DeliveryPartner) Version() int {
	return p.version
}

// ActiveDeliveries returns the ids of the containers the partner is working on.
func (p *DeliveryPartner) ActiveDeliveries() []kernel.UUID {
	return slices.Clone(p.active)
}

func (p *DeliveryPartner) Load() int {
	return len(p.active)
}

func (p *DeliveryPartner) FreeCapacity() int {
	return p.capacity - len(p.active)
}

func (p *DeliveryPartner) CanTake() bool {
	return p.FreeCapacity() > 0
}

// Holds reports whether containerID is one of the partner's active deliveries.
func (p *DeliveryPartner) Holds(containerID kernel.UUID) bool {
	return slices.ContainsFunc(p.active, containerID.IsEqual)
}

// Take occupies one slot with containerID. Taking a container twice is a no-op error.
func (p *DeliveryPartner) Take(containerID kernel.UUID) error {
	if err := containerID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("container id", err)
	}
	if p.Holds(containerID) {
		return errs.NewNoOpError("delivery of "+containerID.String(), "held by "+p.name)
	}
	if !p.CanTake() {
		return ErrNoCapacity
	}

	p.active = append(p.active, containerID)
	return nil
}

// Release frees the slot held by containerID.
func (p *DeliveryPartner) Release(containerID kernel.UUID) error {
	idx := slices.IndexFunc(p.active, containerID.IsEqual)
	if idx < 0 {
		return errs.NewObjectNotFoundError("container id", containerID)
	}

	p.active = slices.Delete(p.active, idx, idx+1)
	return nil
}

func (p *DeliveryPartner) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	p.id = id
	return nil
}

func (p *DeliveryPartner) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	p.name = name
	return nil
}

func (p *DeliveryPartner) setCapacity(capacity int) error {
	if capacity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("capacity", fmt.Errorf("%d is not greater than 0", capacity))
	}
	p.capacity = capacity
	return nil
}

func (p *DeliveryPartner) setActive(active []kernel.UUID) error {
	if len(active) > p.capacity && p.capacity > 0 {
		return errs.NewValueIsOutOfRangeError("active deliveries", len(active), 0, p.capacity)
	}
	p.active = slices.Clone(active)
	return nil
}
