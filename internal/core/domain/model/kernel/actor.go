package kernel

import (
	"errors"
	"fmt"
	"strings"

	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

// ErrActorIsNotConstructed is returned when an Actor was not built by one of its constructors.
var ErrActorIsNotConstructed = errors.New("Actor must be created via NewAdmin, NewSeller, NewDeliveryPartner or NewCustomer")

// Role is the kind of actor asking for a read or a mutation.
type Role int

const (
	UnknownRole Role = iota
	Admin
	Seller
	Delivery
	Customer
)

func getRoleStrings() map[Role]string {
	return map[Role]string{
		UnknownRole: "unknown",
		Admin:       "admin",
		Seller:      "seller",
		Delivery:    "delivery",
		Customer:    "customer",
	}
}

func (r Role) String() string {
	if s, ok := getRoleStrings()[r]; ok {
		return s
	}
	return fmt.Sprintf("Role(%d)", r)
}

// Validate returns an error for UnknownRole and out of range values.
func (r Role) Validate() error {
	if r <= UnknownRole || r > Customer {
		return errs.NewValueIsOutOfRangeError("role", int(r), int(Admin), int(Customer))
	}
	return nil
}

// ParseRole converts the textual role ("admin", "seller", "delivery", "customer") into a Role.
// Matching is case insensitive.
func ParseRole(s string) (Role, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for role, name := range getRoleStrings() {
		if role != UnknownRole && name == needle {
			return role, nil
		}
	}
	return UnknownRole, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", s))
}

// Actor is the identity the transition authority checks against. A Seller always carries
// the shop it acts for; other roles never do.
type Actor struct {
	role   Role
	id     UUID
	shopID UUID
	guard  guard.ConstructorGuard
}

func newActor(role Role, id UUID, shopID UUID) (Actor, error) {
	if err := id.Validate(); err != nil {
		return Actor{}, errs.NewValueIsRequiredErrorWithCause("actor id", err)
	}
	return Actor{role: role, id: id, shopID: shopID, guard: guard.NewConstructorGuard()}, nil
}

func NewAdmin(id UUID) (Actor, error) {
	return newActor(Admin, id, UUID{})
}

// NewSeller builds a seller acting for shopID.
func NewSeller(id UUID, shopID UUID) (Actor, error) {
	if err := shopID.Validate(); err != nil {
		return Actor{}, errs.NewValueIsRequiredErrorWithCause("shop id", err)
	}
	return newActor(Seller, id, shopID)
}

func NewDeliveryPartner(id UUID) (Actor, error) {
	return newActor(Delivery, id, UUID{})
}

func NewCustomer(id UUID) (Actor, error) {
	return newActor(Customer, id, UUID{})
}

// NewActor builds an actor of any role, used by transports that receive the role as data.
// shopID is ignored for every role but Seller.
func NewActor(role Role, id UUID, shopID UUID) (Actor, error) {
	switch role {
	case Admin:
		return NewAdmin(id)
	case Seller:
		return NewSeller(id, shopID)
	case Delivery:
		return NewDeliveryPartner(id)
	case Customer:
		return NewCustomer(id)
	default:
		return Actor{}, role.Validate()
	}
}

// SystemActor is the admin identity used by background jobs.
func SystemActor() Actor {
	actor, _ := NewAdmin(MustUUIDFromString("00000000-0000-4000-8000-000000000001"))
	return actor
}

func (a Actor) Role() Role {
	return a.role
}

func (a Actor) ID() UUID {
	return a.id
}

// ShopID returns the seller's shop and false for every other role.
func (a Actor) ShopID() (UUID, bool) {
	if a.role != Seller {
		return UUID{}, false
	}
	return a.shopID, true
}

func (a Actor) IsAdmin() bool {
	return a.role == Admin
}

// OwnsShop reports whether the actor is the seller of shopID.
func (a Actor) OwnsShop(shopID UUID) bool {
	return a.role == Seller && a.shopID.IsEqual(shopID)
}

// Validate ensures the actor was created through a constructor.
func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

func (a Actor) String() string {
	if a.role == Seller {
		return fmt.Sprintf("%s %s of shop %s", a.role, a.id, a.shopID)
	}
	return fmt.Sprintf("%s %s", a.role, a.id)
}
