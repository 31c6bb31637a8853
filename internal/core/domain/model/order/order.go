package order

import (
	"errors"
	"slices"
	"strings"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

// Order is the aggregate root of a checkout and the unit of atomic persistence: its
// sub-orders, refund requests and delivery assignments are loaded, mutated and saved
// together.
//
// A non-master order (one shop) is its own container. A master order (several shops)
// owns one SubOrder per shop and its status is derived by RollUp.
type Order struct {
	fulfilment

	customerID      kernel.UUID
	isMaster        bool
	cart            []*CartItem
	subOrders       []*SubOrder
	totalPrice      decimal.Decimal
	shippingAddress kernel.ShippingAddress
	paymentStatus   string
	createdAt       time.Time
	version         int
	guard           guard.ConstructorGuard
}

var _ Container = (*Order)(nil)

// NewOrder builds the graph for a checkout. Items are grouped by shop in order of first
// appearance; a cart spanning several shops yields a master order with one Processing
// sub-order per shop. totalPrice and paymentStatus are taken as given.
//
// Example:
//
//	item, _ := order.NewCartItem(kernel.NewUUID(), productID, shopID, 2, decimal.RequireFromString("9.99"), nil)
//	o, err := order.NewOrder(kernel.NewUUID(), customerID, []*order.CartItem{item},
//	    decimal.RequireFromString("19.98"), address, "paid", time.Now())
func NewOrder(
	id, customerID kernel.UUID,
	cart []*CartItem,
	totalPrice decimal.Decimal,
	shippingAddress kernel.ShippingAddress,
	paymentStatus string,
	createdAt time.Time,
) (*Order, error) {
	var err error
	if e := id.Validate(); e != nil {
		err = errors.Join(err, errs.NewValueIsRequiredErrorWithCause("order id", e))
	}
	if e := customerID.Validate(); e != nil {
		err = errors.Join(err, errs.NewValueIsRequiredErrorWithCause("customer id", e))
	}
	if e := shippingAddress.Validate(); e != nil {
		err = errors.Join(err, e)
	}
	if totalPrice.IsNegative() {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("total price", totalPrice, 0, "unbounded"))
	}
	if len(cart) == 0 {
		err = errors.Join(err, errs.NewValueIsRequiredError("cart"))
	}
	seen := make(map[kernel.UUID]struct{}, len(cart))
	for _, item := range cart {
		if e := item.Validate(); e != nil {
			err = errors.Join(err, e)
			continue
		}
		if _, dup := seen[item.ID()]; dup {
			err = errors.Join(err, errs.NewValueIsInvalidError("duplicate cart item "+item.ID().String()))
		}
		seen[item.ID()] = struct{}{}
	}
	if err != nil {
		return nil, err
	}

	o := &Order{
		fulfilment:      fulfilment{id: id, status: Processing},
		customerID:      customerID,
		cart:            slices.Clone(cart),
		totalPrice:      totalPrice,
		shippingAddress: shippingAddress,
		paymentStatus:   strings.TrimSpace(paymentStatus),
		createdAt:       createdAt.UTC(),
		guard:           guard.NewConstructorGuard(),
	}

	groups := groupByShop(o.cart)
	if len(groups) == 1 {
		o.shopID = groups[0].shopID
		o.items = o.cart
		return o, nil
	}

	o.isMaster = true
	for _, g := range groups {
		o.subOrders = append(o.subOrders, &SubOrder{fulfilment: fulfilment{
			id:     kernel.NewUUID(),
			shopID: g.shopID,
			status: Processing,
			items:  g.items,
		}})
	}
	return o, nil
}

type shopGroup struct {
	shopID kernel.UUID
	items  []*CartItem
}

func groupByShop(cart []*CartItem) []shopGroup {
	var groups []shopGroup
	for _, item := range cart {
		idx := slices.IndexFunc(groups, func(g shopGroup) bool { return g.shopID.IsEqual(item.ShopID()) })
		if idx < 0 {
			groups = append(groups, shopGroup{shopID: item.ShopID()})
			idx = len(groups) - 1
		}
		groups[idx].items = append(groups[idx].items, item)
	}
	return groups
}

// RestoreOrder rebuilds an Order from storage. self carries the order's own container
// fields; for a non-master order its items are the cart.
func RestoreOrder(
	self ContainerState,
	customerID kernel.UUID,
	isMaster bool,
	cart []*CartItem,
	subOrders []*SubOrder,
	totalPrice decimal.Decimal,
	shippingAddress kernel.ShippingAddress,
	paymentStatus string,
	createdAt time.Time,
	version int,
) *Order {
	o := &Order{
		fulfilment:      restoreFulfilment(self),
		customerID:      customerID,
		isMaster:        isMaster,
		cart:            slices.Clone(cart),
		subOrders:       slices.Clone(subOrders),
		totalPrice:      totalPrice,
		shippingAddress: shippingAddress,
		paymentStatus:   paymentStatus,
		createdAt:       createdAt,
		version:         version,
		guard:           guard.NewConstructorGuard(),
	}
	if !isMaster {
		o.items = o.cart
	}
	return o
}

func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) CustomerID() kernel.UUID { return o.customerID }

// IsMaster reports whether the order decomposes into sub-orders.
func (o *Order) IsMaster() bool { return o.isMaster }

func (o *Order) Cart() []*CartItem { return slices.Clone(o.cart) }

func (o *Order) SubOrders() []*SubOrder { return slices.Clone(o.subOrders) }

func (o *Order) TotalPrice() decimal.Decimal { return o.totalPrice }

func (o *Order) ShippingAddress() kernel.ShippingAddress { return o.shippingAddress }

func (o *Order) PaymentStatus() string { return o.paymentStatus }

func (o *Order) CreatedAt() time.Time { return o.createdAt }

// Version is the persisted revision the order was loaded at.
func (o *Order) Version() int { return o.version }

// IsOwnedBy reports whether customerID placed the order.
func (o *Order) IsOwnedBy(customerID kernel.UUID) bool {
	return o.customerID.IsEqual(customerID)
}

// RefundContainers returns the order itself when it is not a master, its sub-orders otherwise.
func (o *Order) RefundContainers() []Container {
	if !o.isMaster {
		return []Container{o}
	}
	containers := make([]Container, 0, len(o.subOrders))
	for _, s := range o.subOrders {
		containers = append(containers, s)
	}
	return containers
}

// Container finds a container by id. The id of a master order is not a container.
func (o *Order) Container(id kernel.UUID) (Container, error) {
	for _, c := range o.RefundContainers() {
		if c.ID().IsEqual(id) {
			return c, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("container id", id)
}

func (o *Order) ContainerForShop(shopID kernel.UUID) (Container, error) {
	for _, c := range o.RefundContainers() {
		if c.ShopID().IsEqual(shopID) {
			return c, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("shop id", shopID)
}

// ContainerForItem finds the container holding cart item itemID.
func (o *Order) ContainerForItem(itemID kernel.UUID) (Container, error) {
	for _, c := range o.RefundContainers() {
		if _, err := c.Item(itemID); err == nil {
			return c, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("item id", itemID)
}

// RefundEntry is a refund request together with the container holding it and its index there.
type RefundEntry struct {
	Container Container
	Index     int
	Request   *RefundRequest
}

// AllRefundRequests flattens the refund requests of every container, in container order.
func (o *Order) AllRefundRequests() []RefundEntry {
	var entries []RefundEntry
	for _, c := range o.RefundContainers() {
		for i, r := range c.RefundRequests() {
			entries = append(entries, RefundEntry{Container: c, Index: i, Request: r})
		}
	}
	return entries
}

// DeliveriesOf returns the containers assigned to partnerID, whatever the assignment state.
func (o *Order) DeliveriesOf(partnerID kernel.UUID) []Container {
	var containers []Container
	for _, c := range o.RefundContainers() {
		if c.Delivery().IsAssignedTo(partnerID) {
			containers = append(containers, c)
		}
	}
	return containers
}

// HasDelivery reports whether any container carries a delivery assignment.
func (o *Order) HasDelivery() bool {
	for _, c := range o.RefundContainers() {
		if c.Delivery() != nil {
			return true
		}
	}
	return false
}

// AwaitsDelivery reports whether some Shipped container has no active or completed assignment.
func (o *Order) AwaitsDelivery() bool {
	for _, c := range o.RefundContainers() {
		if c.Status() == Shipped && (c.Delivery() == nil || c.Delivery().Status() == DeliveryDeclined) {
			return true
		}
	}
	return false
}

// RollUp derives a master order's status from its sub-orders with CombineStatuses.
// It does nothing for a non-master order.
func (o *Order) RollUp() {
	if !o.isMaster || len(o.subOrders) == 0 {
		return
	}

	statuses := make([]Status, 0, len(o.subOrders))
	for _, s := range o.subOrders {
		statuses = append(statuses, s.Status())
	}
	if combined := CombineStatuses(statuses); combined != Unknown {
		o.status = combined
	}
}

// CombineStatuses folds container statuses into one:
//   - every status Canceled: Canceled
//   - any status in the refund branch: the furthest refund phase
//   - otherwise the earliest main-line status that is not canceled
//
// It returns Unknown for an empty or unrecognised input.
func CombineStatuses(statuses []Status) Status {
	var furthestRefund, earliestMain Status
	canceled := 0
	for _, st := range statuses {
		switch {
		case st == Canceled:
			canceled++
		case st.IsRefundPhase():
			if st.refundPhase() > furthestRefund.refundPhase() {
				furthestRefund = st
			}
		case st.IsMainLine():
			if earliestMain == Unknown || st.rank() < earliestMain.rank() {
				earliestMain = st
			}
		}
	}

	switch {
	case len(statuses) > 0 && canceled == len(statuses):
		return Canceled
	case furthestRefund != Unknown:
		return furthestRefund
	default:
		return earliestMain
	}
}
