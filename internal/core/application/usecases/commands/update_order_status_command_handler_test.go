package commands_test

import (
	"errors"
	"testing"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// singleShopOrder builds a non-master order of shop A. Orders built with the same id
// are interchangeable snapshots of one stored order.
func singleShopOrder(t *testing.T, id, customerID kernel.UUID) *order.Order {
	t.Helper()
	item, err := order.NewCartItem(
		kernel.MustUUIDFromString("cccccccc-0000-4000-8000-000000000003"),
		kernel.MustUUIDFromString("dddddddd-0000-4000-8000-000000000004"),
		shopA, 3, decimal.RequireFromString("5"), nil,
	)
	require.NoError(t, err)
	o, err := order.NewOrder(id, customerID, []*order.CartItem{item}, decimal.RequireFromString("15"),
		testAddress(t), "paid", now)
	require.NoError(t, err)
	return o
}

func newStatusHandler(factory commands.UoWFactory, notifier *MockNotifier) commands.UpdateOrderStatusCommandHandler {
	return commands.NewUpdateOrderStatusCommandHandler(factory, services.NewTransitionAuthority(nil),
		collaborators(notifier, nil), commands.DefaultConflictAttempts)
}

func TestUpdateOrderStatusCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	f := splitOrder(t, 1)
	sub := f.container(t, f.itemA)

	cmd, err := commands.NewUpdateOrderStatusCommand(f.order.ID(), sub.ID(), order.Shipped, f.sellerA)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockTx)
	notifier := new(MockNotifier)
	mock.InOrder(
		uow.On("Begin", mock.Anything).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, f.order.ID()).Return(f.order, nil).Once(),
		repo.On("Update", mock.Anything, f.order).Return(nil).Once(),
		uow.On("Commit", mock.Anything).Return(nil).Once(),
		uow.On("Rollback", mock.Anything).Return(nil).Once(),
		notifier.On("Notify", mock.Anything, mock.MatchedBy(func(e ports.Event) bool {
			return e.Kind == ports.EventStatusChanged && e.ContainerID.IsEqual(sub.ID()) && e.State == "Shipped"
		})).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	o, err := newStatusHandler(factory, notifier).Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, order.Shipped, sub.Status())
	// shop B is still Processing, so the master stays at the earliest status
	assert.Equal(t, order.Processing, o.Status())
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestUpdateOrderStatusCommandHandler_Handle_CancelReleasesPartnerSlot(t *testing.T) {
	ctx := t.Context()
	f := splitOrder(t, 1)
	c := f.ship(t, f.itemA)
	p := newPartner(t, 1)
	require.NoError(t, c.AssignDelivery(p.ID(), now))
	require.NoError(t, p.Take(c.ID()))

	cmd, err := commands.NewUpdateOrderStatusCommand(f.order.ID(), c.ID(), order.Canceled, f.sellerA)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	partnerRepo := new(MockPartnerRepository)
	uow := new(MockTx)
	mock.InOrder(
		uow.On("Begin", mock.Anything).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", mock.Anything, f.order.ID()).Return(f.order, nil).Once(),
		orderRepo.On("Update", mock.Anything, f.order).Return(nil).Once(),
		uow.On("DeliveryPartnerRepository").Return(partnerRepo).Once(),
		partnerRepo.On("Get", mock.Anything, p.ID()).Return(p, nil).Once(),
		partnerRepo.On("Update", mock.Anything, p).Return(nil).Once(),
		uow.On("Commit", mock.Anything).Return(nil).Once(),
		uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	_, err = newStatusHandler(factory, nil).Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, order.Canceled, c.Status())
	assert.Equal(t, order.DeliveryDeclined, c.Delivery().Status())
	assert.False(t, p.Holds(c.ID()))
	assert.True(t, p.CanTake())
	partnerRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestUpdateOrderStatusCommandHandler_Handle_ShipWithoutDeliveryLeavesPartners(t *testing.T) {
	ctx := t.Context()
	orderID, customerID := kernel.NewUUID(), kernel.NewUUID()
	admin, _ := kernel.NewAdmin(kernel.NewUUID())
	o := singleShopOrder(t, orderID, customerID)
	require.NoError(t, o.AssignDelivery(kernel.NewUUID(), now))

	cmd, err := commands.NewUpdateOrderStatusCommand(orderID, orderID, order.Shipped, admin)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockTx)
	expectSave(uow, repo, o)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	_, err = newStatusHandler(factory, nil).Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, order.DeliveryPending, o.Delivery().Status())
	uow.AssertNotCalled(t, "DeliveryPartnerRepository")
}

func TestUpdateOrderStatusCommandHandler_Handle_ForbiddenDoesNotWrite(t *testing.T) {
	ctx := t.Context()
	f := splitOrder(t, 1)
	subB := f.container(t, f.itemB)

	cmd, err := commands.NewUpdateOrderStatusCommand(f.order.ID(), subB.ID(), order.Shipped, f.sellerA)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockTx)
	mock.InOrder(
		uow.On("Begin", mock.Anything).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, f.order.ID()).Return(f.order, nil).Once(),
		uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	_, err = newStatusHandler(factory, nil).Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrForbidden)
	assert.Equal(t, order.Processing, subB.Status())
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestUpdateOrderStatusCommandHandler_Handle_NotFound(t *testing.T) {
	ctx := t.Context()
	admin, _ := kernel.NewAdmin(kernel.NewUUID())
	orderID := kernel.NewUUID()

	cmd, err := commands.NewUpdateOrderStatusCommand(orderID, orderID, order.Shipped, admin)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockTx)
	mock.InOrder(
		uow.On("Begin", mock.Anything).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, orderID).Return(nil, errs.NewObjectNotFoundError("order id", orderID)).Once(),
		uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	_, err = newStatusHandler(factory, nil).Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestUpdateOrderStatusCommandHandler_Handle_RetriesOnConflict(t *testing.T) {
	ctx := t.Context()
	orderID, customerID := kernel.NewUUID(), kernel.NewUUID()
	stale := singleShopOrder(t, orderID, customerID)
	fresh := singleShopOrder(t, orderID, customerID)
	admin, _ := kernel.NewAdmin(kernel.NewUUID())

	cmd, err := commands.NewUpdateOrderStatusCommand(orderID, orderID, order.Shipped, admin)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	first, second := new(MockTx), new(MockTx)
	mock.InOrder(
		first.On("Begin", mock.Anything).Return(nil).Once(),
		first.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, orderID).Return(stale, nil).Once(),
		repo.On("Update", mock.Anything, stale).Return(errs.NewConflictError("order", orderID.String(), 1)).Once(),
		first.On("Rollback", mock.Anything).Return(nil).Once(),
		second.On("Begin", mock.Anything).Return(nil).Once(),
		second.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, orderID).Return(fresh, nil).Once(),
		repo.On("Update", mock.Anything, fresh).Return(nil).Once(),
		second.On("Commit", mock.Anything).Return(nil).Once(),
		second.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(first).Once()
	factory.On("Create").Return(second).Once()

	o, err := newStatusHandler(factory, nil).Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Same(t, fresh, o)
	assert.Equal(t, order.Shipped, o.Status())
	factory.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestUpdateOrderStatusCommandHandler_Handle_ConflictExhausted(t *testing.T) {
	ctx := t.Context()
	orderID, customerID := kernel.NewUUID(), kernel.NewUUID()
	admin, _ := kernel.NewAdmin(kernel.NewUUID())

	cmd, err := commands.NewUpdateOrderStatusCommand(orderID, orderID, order.Canceled, admin)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockTx)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("OrderRepository").Return(repo)
	uow.On("Rollback", mock.Anything).Return(nil)
	for range 2 {
		repo.On("Get", mock.Anything, orderID).Return(singleShopOrder(t, orderID, customerID), nil).Once()
	}
	repo.On("Update", mock.Anything, mock.Anything).Return(errs.NewConflictError("order", orderID.String(), 1))

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow)

	h := commands.NewUpdateOrderStatusCommandHandler(factory, services.NewTransitionAuthority(nil),
		collaborators(nil, nil), 2)
	_, err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrConflict)
	factory.AssertNumberOfCalls(t, "Create", 2)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestUpdateOrderStatusCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := t.Context()
	admin, _ := kernel.NewAdmin(kernel.NewUUID())
	cmd, err := commands.NewUpdateOrderStatusCommand(kernel.NewUUID(), kernel.NewUUID(), order.Shipped, admin)
	require.NoError(t, err)

	uow := new(MockTx)
	factory := new(MockUoWFactory)
	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", mock.Anything).Return(errors.New("begin error")).Once(),
	)

	_, err = newStatusHandler(factory, nil).Handle(ctx, cmd)
	require.ErrorContains(t, err, "begin error")
}
