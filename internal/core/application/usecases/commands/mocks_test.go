package commands_test

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/partner"
	"marketplace/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	shopA = kernel.MustUUIDFromString("aaaaaaaa-0000-4000-8000-000000000001")
	shopB = kernel.MustUUIDFromString("bbbbbbbb-0000-4000-8000-000000000002")
	now   = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAwaitingDelivery(ctx context.Context, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByDeliveryPartner(ctx context.Context, id kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockPartnerRepository struct{ mock.Mock }

func (m *MockPartnerRepository) Add(ctx context.Context, p *partner.DeliveryPartner) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPartnerRepository) Update(ctx context.Context, p *partner.DeliveryPartner) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPartnerRepository) Get(ctx context.Context, id kernel.UUID) (*partner.DeliveryPartner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.DeliveryPartner), args.Error(1)
}

func (m *MockPartnerRepository) GetAllWithCapacity(ctx context.Context) ([]*partner.DeliveryPartner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*partner.DeliveryPartner), args.Error(1)
}

type MockTx struct{ mock.Mock }

func (m *MockTx) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockTx) DeliveryPartnerRepository() ports.DeliveryPartnerRepository {
	args := m.Called()
	return args.Get(0).(ports.DeliveryPartnerRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockPartnerUoWFactory struct{ mock.Mock }

func (m *MockPartnerUoWFactory) Create() commands.PartnerUoW {
	args := m.Called()
	return args.Get(0).(commands.PartnerUoW)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, event ports.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockStock struct{ mock.Mock }

func (m *MockStock) Restock(ctx context.Context, productID kernel.UUID, qty int) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func eventOfKind(kind ports.EventKind) any {
	return mock.MatchedBy(func(e ports.Event) bool { return e.Kind == kind })
}

func collaborators(notifier *MockNotifier, stock *MockStock) commands.Collaborators {
	c := commands.Collaborators{Now: func() time.Time { return now }}
	if notifier != nil {
		c.Notifier = notifier
	}
	if stock != nil {
		c.Stock = stock
	}
	return c
}

func testAddress(t *testing.T) kernel.ShippingAddress {
	t.Helper()
	address, err := kernel.NewShippingAddress("1 Main St", "Springfield", "12345", "US")
	require.NoError(t, err)
	return address
}

type orderFixture struct {
	order    *order.Order
	customer kernel.Actor
	admin    kernel.Actor
	sellerA  kernel.Actor
	itemA    *order.CartItem
	itemB    *order.CartItem
}

// splitOrder builds a master order with qtyA units from shop A and two units from shop B.
func splitOrder(t *testing.T, qtyA int) orderFixture {
	t.Helper()
	itemA, err := order.NewCartItem(kernel.NewUUID(), kernel.NewUUID(), shopA, qtyA, decimal.RequireFromString("5"), nil)
	require.NoError(t, err)
	itemB, err := order.NewCartItem(kernel.NewUUID(), kernel.NewUUID(), shopB, 2, decimal.RequireFromString("7"), nil)
	require.NoError(t, err)

	customerID := kernel.NewUUID()
	o, err := order.NewOrder(kernel.NewUUID(), customerID, []*order.CartItem{itemA, itemB},
		decimal.RequireFromString("29"), testAddress(t), "paid", now)
	require.NoError(t, err)

	customer, err := kernel.NewCustomer(customerID)
	require.NoError(t, err)
	admin, err := kernel.NewAdmin(kernel.NewUUID())
	require.NoError(t, err)
	sellerA, err := kernel.NewSeller(kernel.NewUUID(), shopA)
	require.NoError(t, err)

	return orderFixture{order: o, customer: customer, admin: admin, sellerA: sellerA, itemA: itemA, itemB: itemB}
}

func (f orderFixture) container(t *testing.T, item *order.CartItem) order.Container {
	t.Helper()
	c, err := f.order.ContainerForItem(item.ID())
	require.NoError(t, err)
	return c
}

// ship moves the container holding item to Shipped.
func (f orderFixture) ship(t *testing.T, item *order.CartItem) order.Container {
	t.Helper()
	c := f.container(t, item)
	require.NoError(t, c.ChangeStatus(order.Shipped))
	f.order.RollUp()
	return c
}
