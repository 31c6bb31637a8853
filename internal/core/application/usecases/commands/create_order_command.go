package commands

import (
	"errors"
	"strings"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrCartIsEmpty = errs.NewValueIsRequiredError("cart")
)

// CartLine is one line of a checkout as received from the storefront.
type CartLine struct {
	ItemID     kernel.UUID
	ProductID  kernel.UUID
	ShopID     kernel.UUID
	Quantity   int
	UnitPrice  decimal.Decimal
	Attributes map[string]string
}

// CreateOrderCommand places a checkout. Lines of several shops produce a master order.
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	customer      kernel.Actor
	items         []*order.CartItem
	totalPrice    decimal.Decimal
	address       kernel.ShippingAddress
	paymentStatus string

	guard guard.ConstructorGuard
}

func NewCreateOrderCommand(
	orderID kernel.UUID,
	customer kernel.Actor,
	lines []CartLine,
	totalPrice decimal.Decimal,
	address kernel.ShippingAddress,
	paymentStatus string,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		totalPrice:    totalPrice,
		paymentStatus: strings.TrimSpace(paymentStatus),
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCustomer(customer),
		cmd.setItems(lines),
		cmd.setAddress(address),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) Customer() kernel.Actor {
	return c.customer
}

func (c CreateOrderCommand) Items() []*order.CartItem {
	return c.items
}

func (c CreateOrderCommand) TotalPrice() decimal.Decimal {
	return c.totalPrice
}

func (c CreateOrderCommand) Address() kernel.ShippingAddress {
	return c.address
}

func (c CreateOrderCommand) PaymentStatus() string {
	return c.paymentStatus
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCustomer(customer kernel.Actor) error {
	if err := customer.Validate(); err != nil {
		return err
	}
	if customer.Role() != kernel.Customer {
		return errs.NewForbiddenError(customer.String(), "place an order")
	}
	c.customer = customer
	return nil
}

func (c *CreateOrderCommand) setItems(lines []CartLine) error {
	if len(lines) == 0 {
		return ErrCartIsEmpty
	}

	var err error
	for _, line := range lines {
		item, itemErr := order.NewCartItem(line.ItemID, line.ProductID, line.ShopID,
			line.Quantity, line.UnitPrice, line.Attributes)
		if itemErr != nil {
			err = errors.Join(err, itemErr)
			continue
		}
		c.items = append(c.items, item)
	}
	return err
}

func (c *CreateOrderCommand) setAddress(address kernel.ShippingAddress) error {
	if err := address.Validate(); err != nil {
		return err
	}
	c.address = address
	return nil
}
