package services_test

import (
	"testing"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	shopA = kernel.MustUUIDFromString("aaaaaaaa-0000-4000-8000-000000000001")
	shopB = kernel.MustUUIDFromString("bbbbbbbb-0000-4000-8000-000000000002")
	now   = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock = func() time.Time { return now }
)

type fixture struct {
	order    *order.Order
	customer kernel.Actor
	admin    kernel.Actor
	sellerA  kernel.Actor
	sellerB  kernel.Actor
	itemA    *order.CartItem
	itemB    *order.CartItem
}

// splitOrder builds a master order with one item of qtyA units from shop A and one of
// two units from shop B.
func splitOrder(t *testing.T, qtyA int) fixture {
	t.Helper()
	return buildOrder(t, qtyA, true)
}

// singleOrder builds a non-master order of shop A.
func singleOrder(t *testing.T, qty int) fixture {
	t.Helper()
	return buildOrder(t, qty, false)
}

func buildOrder(t *testing.T, qtyA int, split bool) fixture {
	t.Helper()
	itemA, err := order.NewCartItem(kernel.NewUUID(), kernel.NewUUID(), shopA, qtyA, decimal.RequireFromString("5"), nil)
	require.NoError(t, err)
	cart := []*order.CartItem{itemA}

	var itemB *order.CartItem
	if split {
		itemB, err = order.NewCartItem(kernel.NewUUID(), kernel.NewUUID(), shopB, 2, decimal.RequireFromString("7"), nil)
		require.NoError(t, err)
		cart = append(cart, itemB)
	}

	address, err := kernel.NewShippingAddress("1 Main St", "Springfield", "", "US")
	require.NoError(t, err)
	customerID := kernel.NewUUID()
	o, err := order.NewOrder(kernel.NewUUID(), customerID, cart, decimal.RequireFromString("29"), address, "paid", now)
	require.NoError(t, err)

	customer, _ := kernel.NewCustomer(customerID)
	admin, _ := kernel.NewAdmin(kernel.NewUUID())
	sellerA, _ := kernel.NewSeller(kernel.NewUUID(), shopA)
	sellerB, _ := kernel.NewSeller(kernel.NewUUID(), shopB)

	return fixture{
		order: o, customer: customer, admin: admin, sellerA: sellerA, sellerB: sellerB,
		itemA: itemA, itemB: itemB,
	}
}

func (f fixture) container(t *testing.T, item *order.CartItem) order.Container {
	t.Helper()
	c, err := f.order.ContainerForItem(item.ID())
	require.NoError(t, err)
	return c
}

func deliveryActor(t *testing.T) kernel.Actor {
	t.Helper()
	actor, err := kernel.NewDeliveryPartner(kernel.NewUUID())
	require.NoError(t, err)
	return actor
}
