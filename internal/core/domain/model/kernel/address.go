package kernel

import (
	"errors"
	"fmt"
	"strings"

	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

// ErrShippingAddressIsNotConstructed is returned for a zero ShippingAddress.
var ErrShippingAddressIsNotConstructed = errors.New("ShippingAddress must be created via NewShippingAddress")

// ShippingAddress is the destination of an order. The core never interprets it beyond
// requiring the fields a courier needs to find the door.
type ShippingAddress struct {
	line       string
	city       string
	postalCode string
	country    string
	guard      guard.ConstructorGuard
}

// NewShippingAddress trims every field and requires line, city and country.
// postalCode may be empty.
func NewShippingAddress(line, city, postalCode, country string) (ShippingAddress, error) {
	a := ShippingAddress{
		line:       strings.TrimSpace(line),
		city:       strings.TrimSpace(city),
		postalCode: strings.TrimSpace(postalCode),
		country:    strings.TrimSpace(country),
		guard:      guard.NewConstructorGuard(),
	}

	var err error
	if a.line == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("address line"))
	}
	if a.city == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("city"))
	}
	if a.country == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("country"))
	}
	if err != nil {
		return ShippingAddress{}, err
	}

	return a, nil
}

func (a ShippingAddress) Line() string { return a.line }
func (a ShippingAddress) City() string { return a.city }
func (a ShippingAddress) PostalCode() string { return a.postalCode }
func (a ShippingAddress) Country() string { return a.country }

func (a ShippingAddress) IsEqual(other ShippingAddress) bool {
	return a.line == other.line &&
		a.city == other.city &&
		a.postalCode == other.postalCode &&
		a.country == other.country
}

func (a ShippingAddress) Validate() error {
	return a.guard.Validate(ErrShippingAddressIsNotConstructed)
}

func (a ShippingAddress) String() string {
	if a.postalCode == "" {
		return fmt.Sprintf("%s, %s, %s", a.line, a.city, a.country)
	}
	return fmt.Sprintf("%s, %s %s, %s", a.line, a.postalCode, a.city, a.country)
}
