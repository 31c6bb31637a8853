package order

import (
	"errors"
	"fmt"
	"maps"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrCartItemIsNotConstructed = errors.New("CartItem must be created via NewCartItem")

// CartItem is one line of a checkout: a product of one shop, a quantity, a unit price
// and the selected variant attributes (size, colour, ...). Prices are opaque inputs.
type CartItem struct {
	id         kernel.UUID
	productID  kernel.UUID
	shopID     kernel.UUID
	quantity   int
	unitPrice  decimal.Decimal
	attributes map[string]string
	guard      guard.ConstructorGuard
}

// NewCartItem validates and creates a cart line. attributes may be nil.
func NewCartItem(
	id, productID, shopID kernel.UUID,
	quantity int,
	unitPrice decimal.Decimal,
	attributes map[string]string,
) (*CartItem, error) {
	var err error
	if e := id.Validate(); e != nil {
		err = errors.Join(err, errs.NewValueIsRequiredErrorWithCause("item id", e))
	}
	if e := productID.Validate(); e != nil {
		err = errors.Join(err, errs.NewValueIsRequiredErrorWithCause("product id", e))
	}
	if e := shopID.Validate(); e != nil {
		err = errors.Join(err, errs.NewValueIsRequiredErrorWithCause("shop id", e))
	}
	if quantity <= 0 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause(
			"quantity", fmt.Errorf("%d is not greater than 0", quantity)))
	}
	if unitPrice.IsNegative() {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause(
			"unit price", fmt.Errorf("%s is negative", unitPrice)))
	}
	if err != nil {
		return nil, err
	}

	return RestoreCartItem(id, productID, shopID, quantity, unitPrice, attributes), nil
}

// RestoreCartItem rebuilds a cart line from storage.
func RestoreCartItem(
	id, productID, shopID kernel.UUID,
	quantity int,
	unitPrice decimal.Decimal,
	attributes map[string]string,
) *CartItem {
	return &CartItem{
		id:         id,
		productID:  productID,
		shopID:     shopID,
		quantity:   quantity,
		unitPrice:  unitPrice,
		attributes: maps.Clone(attributes),
		guard:      guard.NewConstructorGuard(),
	}
}

func (i *CartItem) Validate() error {
	if i == nil {
		return ErrCartItemIsNotConstructed
	}
	return i.guard.Validate(ErrCartItemIsNotConstructed)
}

func (i *CartItem) ID() kernel.UUID { return i.id }

func (i *CartItem) ProductID() kernel.UUID { return i.productID }

func (i *CartItem) ShopID() kernel.UUID { return i.shopID }

// Quantity is the ordered quantity, the upper bound of everything ever refunded for the item.
func (i *CartItem) Quantity() int { return i.quantity }

func (i *CartItem) UnitPrice() decimal.Decimal { return i.unitPrice }

// Attributes returns a copy of the selected variant attributes.
func (i *CartItem) Attributes() map[string]string { return maps.Clone(i.attributes) }

func (i *CartItem) Subtotal() decimal.Decimal {
	return i.unitPrice.Mul(decimal.NewFromInt(int64(i.quantity)))
}
