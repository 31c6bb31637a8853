package commands_test

import (
	"errors"
	"testing"
	"time"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/partner"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPartner(t *testing.T, capacity int) *partner.DeliveryPartner {
	t.Helper()
	p, err := partner.NewDeliveryPartner(kernel.NewUUID(), "Swift Couriers", capacity)
	require.NoError(t, err)
	return p
}

func authority() services.TransitionAuthority {
	return services.NewTransitionAuthority(func() time.Time { return now })
}

func TestAssignDeliveryCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	f := splitOrder(t, 1)
	c := f.ship(t, f.itemA)
	p := newPartner(t, 2)

	cmd, err := commands.NewAssignDeliveryCommand(f.order.ID(), c.ID(), p.ID(), f.sellerA)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	partnerRepo := new(MockPartnerRepository)
	uow := new(MockTx)
	notifier := new(MockNotifier)
	mock.InOrder(
		uow.On("Begin", mock.Anything).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		uow.On("DeliveryPartnerRepository").Return(partnerRepo).Once(),
		orderRepo.On("Get", mock.Anything, f.order.ID()).Return(f.order, nil).Once(),
		partnerRepo.On("Get", mock.Anything, p.ID()).Return(p, nil).Once(),
		orderRepo.On("Update", mock.Anything, f.order).Return(nil).Once(),
		partnerRepo.On("Update", mock.Anything, p).Return(nil).Once(),
		uow.On("Commit", mock.Anything).Return(nil).Once(),
		uow.On("Rollback", mock.Anything).Return(nil).Once(),
		notifier.On("Notify", mock.Anything, eventOfKind(ports.EventDeliveryAssigned)).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewAssignDeliveryCommandHandler(factory, authority(), collaborators(notifier, nil), 1)
	_, err = h.Handle(ctx, cmd)
	require.NoError(t, err)

	require.NotNil(t, c.Delivery())
	assert.Equal(t, order.DeliveryPending, c.Delivery().Status())
	assert.True(t, c.Delivery().IsAssignedTo(p.ID()))
	assert.Equal(t, now, c.Delivery().AssignedAt())
	assert.True(t, p.Holds(c.ID()))
	orderRepo.AssertExpectations(t)
	partnerRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestAssignDeliveryCommandHandler_Handle_PartnerAtCapacity(t *testing.T) {
	ctx := t.Context()
	f := splitOrder(t, 1)
	c := f.ship(t, f.itemA)
	p := newPartner(t, 1)
	require.NoError(t, p.Take(kernel.NewUUID()))

	cmd, err := commands.NewAssignDeliveryCommand(f.order.ID(), c.ID(), p.ID(), f.admin)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	partnerRepo := new(MockPartnerRepository)
	uow := new(MockTx)
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("DeliveryPartnerRepository").Return(partnerRepo).Once()
	orderRepo.On("Get", mock.Anything, f.order.ID()).Return(f.order, nil).Once()
	partnerRepo.On("Get", mock.Anything, p.ID()).Return(p, nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewAssignDeliveryCommandHandler(factory, authority(), collaborators(nil, nil), 1)
	_, err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, partner.ErrNoCapacity)
	orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestAssignDeliveryCommandHandler_Handle_OtherShopIsForbiddenBeforePartnerLookup(t *testing.T) {
	ctx := t.Context()
	f := splitOrder(t, 1)
	c := f.ship(t, f.itemA)
	unknownPartner := kernel.NewUUID()

	cmd, err := commands.NewAssignDeliveryCommand(f.order.ID(), c.ID(), unknownPartner, f.sellerB)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	partnerRepo := new(MockPartnerRepository)
	uow := new(MockTx)
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("DeliveryPartnerRepository").Return(partnerRepo).Once()
	orderRepo.On("Get", mock.Anything, f.order.ID()).Return(f.order, nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewAssignDeliveryCommandHandler(factory, authority(), collaborators(nil, nil), 1)
	_, err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrForbidden)
	partnerRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	assert.Nil(t, c.Delivery())
}

func TestAssignDeliveryCommandHandler_Handle_RetriesWhenPartnerChanged(t *testing.T) {
	ctx := t.Context()
	orderID, customerID := kernel.NewUUID(), kernel.NewUUID()
	stale, fresh := singleShopOrder(t, orderID, customerID), singleShopOrder(t, orderID, customerID)
	admin, _ := kernel.NewAdmin(kernel.NewUUID())
	partnerID := kernel.NewUUID()
	staleP, err := partner.RestoreDeliveryPartner(partnerID, "Swift Couriers", 1, nil, 0)
	require.NoError(t, err)
	// meanwhile another assignment took the only slot
	freshP, err := partner.RestoreDeliveryPartner(partnerID, "Swift Couriers", 1, []kernel.UUID{kernel.NewUUID()}, 1)
	require.NoError(t, err)

	cmd, err := commands.NewAssignDeliveryCommand(orderID, orderID, partnerID, admin)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	partnerRepo := new(MockPartnerRepository)
	first, second := new(MockTx), new(MockTx)
	for _, uow := range []*MockTx{first, second} {
		uow.On("Begin", mock.Anything).Return(nil).Once()
		uow.On("OrderRepository").Return(orderRepo).Once()
		uow.On("DeliveryPartnerRepository").Return(partnerRepo).Once()
		uow.On("Rollback", mock.Anything).Return(nil).Once()
	}
	orderRepo.On("Get", mock.Anything, orderID).Return(stale, nil).Once()
	orderRepo.On("Get", mock.Anything, orderID).Return(fresh, nil).Once()
	partnerRepo.On("Get", mock.Anything, partnerID).Return(staleP, nil).Once()
	partnerRepo.On("Get", mock.Anything, partnerID).Return(freshP, nil).Once()
	orderRepo.On("Update", mock.Anything, stale).Return(nil).Once()
	partnerRepo.On("Update", mock.Anything, staleP).
		Return(errs.NewConflictError("delivery partner", partnerID.String(), 0)).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(first).Once()
	factory.On("Create").Return(second).Once()

	h := commands.NewAssignDeliveryCommandHandler(factory, authority(), collaborators(nil, nil), 2)
	_, err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, partner.ErrNoCapacity)
	factory.AssertNumberOfCalls(t, "Create", 2)
	first.AssertNotCalled(t, "Commit", mock.Anything)
	second.AssertNotCalled(t, "Commit", mock.Anything)
	orderRepo.AssertNumberOfCalls(t, "Update", 1)
}

func TestAssignDeliveryCommandHandler_Handle_NotShipped(t *testing.T) {
	ctx := t.Context()
	f := splitOrder(t, 1)
	c := f.container(t, f.itemA)
	require.NoError(t, c.ChangeStatus(order.Canceled))
	p := newPartner(t, 1)

	cmd, err := commands.NewAssignDeliveryCommand(f.order.ID(), c.ID(), p.ID(), f.admin)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	partnerRepo := new(MockPartnerRepository)
	uow := new(MockTx)
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("DeliveryPartnerRepository").Return(partnerRepo).Once()
	orderRepo.On("Get", mock.Anything, f.order.ID()).Return(f.order, nil).Once()
	partnerRepo.On("Get", mock.Anything, p.ID()).Return(p, nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewAssignDeliveryCommandHandler(factory, authority(), collaborators(nil, nil), 1)
	_, err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
	assert.Zero(t, p.Load())
}

func TestUpdateDeliveryAssignmentCommandHandler_Handle_CompletedReleasesSlot(t *testing.T) {
	ctx := t.Context()
	f := splitOrder(t, 1)
	c := f.ship(t, f.itemA)
	p := newPartner(t, 2)
	require.NoError(t, c.AssignDelivery(p.ID(), now))
	require.NoError(t, p.Take(c.ID()))
	require.NoError(t, c.UpdateDelivery(order.DeliveryAccepted))

	actor, err := kernel.NewDeliveryPartner(p.ID())
	require.NoError(t, err)
	cmd, err := commands.NewUpdateDeliveryAssignmentCommand(f.order.ID(), nil, order.DeliveryCompleted, actor)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	partnerRepo := new(MockPartnerRepository)
	uow := new(MockTx)
	notifier := new(MockNotifier)
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
		notifier.On("Notify", mock.Anything, mock.MatchedBy(func(e ports.Event) bool {
			return e.Kind == ports.EventDeliveryUpdated && e.ContainerID.IsEqual(c.ID()) && e.State == "completed"
		})).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewUpdateDeliveryAssignmentCommandHandler(factory, authority(), collaborators(notifier, nil), 1)
	_, err = h.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, order.Delivered, c.Status())
	assert.False(t, p.Holds(c.ID()))
	partnerRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestUpdateDeliveryAssignmentCommandHandler_Handle_AcceptedKeepsSlot(t *testing.T) {
	ctx := t.Context()
	f := splitOrder(t, 1)
	c := f.ship(t, f.itemA)
	p := newPartner(t, 2)
	require.NoError(t, c.AssignDelivery(p.ID(), now))

	actor, _ := kernel.NewDeliveryPartner(p.ID())
	containerID := c.ID()
	cmd, err := commands.NewUpdateDeliveryAssignmentCommand(f.order.ID(), &containerID, order.DeliveryAccepted, actor)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockTx)
	expectSave(uow, orderRepo, f.order)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewUpdateDeliveryAssignmentCommandHandler(factory, authority(), collaborators(nil, nil), 1)
	_, err = h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, order.DeliveryAccepted, c.Delivery().Status())
	assert.Equal(t, order.Shipped, c.Status())
	uow.AssertNotCalled(t, "DeliveryPartnerRepository")
}

func TestUpdateDeliveryAssignmentCommandHandler_Handle_SomebodyElse(t *testing.T) {
	ctx := t.Context()
	f := splitOrder(t, 1)
	c := f.ship(t, f.itemA)
	require.NoError(t, c.AssignDelivery(kernel.NewUUID(), now))

	stranger, _ := kernel.NewDeliveryPartner(kernel.NewUUID())
	cmd, err := commands.NewUpdateDeliveryAssignmentCommand(f.order.ID(), nil, order.DeliveryAccepted, stranger)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockTx)
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	orderRepo.On("Get", mock.Anything, f.order.ID()).Return(f.order, nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewUpdateDeliveryAssignmentCommandHandler(factory, authority(), collaborators(nil, nil), 1)
	_, err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrForbidden)
	assert.Equal(t, order.DeliveryPending, c.Delivery().Status())
}

func TestCreateDeliveryPartnerCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	admin, _ := kernel.NewAdmin(kernel.NewUUID())
	cmd, err := commands.NewCreateDeliveryPartnerCommand(kernel.NewUUID(), "Swift", 3, admin)
	require.NoError(t, err)

	repo := new(MockPartnerRepository)
	uow := new(MockTx)
	notifier := new(MockNotifier)
	mock.InOrder(
		uow.On("Begin", mock.Anything).Return(nil).Once(),
		uow.On("DeliveryPartnerRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.AnythingOfType("*partner.DeliveryPartner")).Return(nil).Once(),
		uow.On("Commit", mock.Anything).Return(nil).Once(),
		uow.On("Rollback", mock.Anything).Return(nil).Once(),
		notifier.On("Notify", mock.Anything, eventOfKind(ports.EventPartnerRegistered)).Return(nil).Once(),
	)

	factory := new(MockPartnerUoWFactory)
	factory.On("Create").Return(uow).Once()

	p, err := commands.NewCreateDeliveryPartnerCommandHandler(factory, collaborators(notifier, nil)).Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, cmd.PartnerID(), p.ID())
	assert.Equal(t, 3, p.FreeCapacity())
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestCreateDeliveryPartnerCommandHandler_Handle_AddError(t *testing.T) {
	ctx := t.Context()
	admin, _ := kernel.NewAdmin(kernel.NewUUID())
	cmd, err := commands.NewCreateDeliveryPartnerCommand(kernel.NewUUID(), "Swift", 3, admin)
	require.NoError(t, err)

	repo := new(MockPartnerRepository)
	uow := new(MockTx)
	mock.InOrder(
		uow.On("Begin", mock.Anything).Return(nil).Once(),
		uow.On("DeliveryPartnerRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.Anything).Return(errors.New("add error")).Once(),
		uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	factory := new(MockPartnerUoWFactory)
	factory.On("Create").Return(uow).Once()

	_, err = commands.NewCreateDeliveryPartnerCommandHandler(factory, collaborators(nil, nil)).Handle(ctx, cmd)
	require.ErrorContains(t, err, "add error")
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestAutoAssignDeliveriesCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	first := splitOrder(t, 1)
	first.ship(t, first.itemA)
	first.ship(t, first.itemB)
	second := splitOrder(t, 1)
	cSecond := second.ship(t, second.itemA)

	busy := newPartner(t, 3)
	require.NoError(t, busy.Take(kernel.NewUUID()))
	idle := newPartner(t, 3)

	cmd, err := commands.NewAutoAssignDeliveriesCommand(10)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	partnerRepo := new(MockPartnerRepository)
	uow := new(MockTx)
	notifier := new(MockNotifier)
	mock.InOrder(
		uow.On("Begin", mock.Anything).Return(nil).Once(),
		uow.On("DeliveryPartnerRepository").Return(partnerRepo).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("GetAwaitingDelivery", mock.Anything, 10).
			Return([]*order.Order{first.order, second.order}, nil).Once(),
		partnerRepo.On("GetAllWithCapacity", mock.Anything).
			Return([]*partner.DeliveryPartner{busy, idle}, nil).Once(),
		orderRepo.On("Update", mock.Anything, first.order).Return(nil).Once(),
		orderRepo.On("Update", mock.Anything, second.order).Return(nil).Once(),
	)
	partnerRepo.On("Update", mock.Anything, busy).Return(nil).Once()
	partnerRepo.On("Update", mock.Anything, idle).Return(nil).Once()
	uow.On("Commit", mock.Anything).Return(nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()
	notifier.On("Notify", mock.Anything, eventOfKind(ports.EventDeliveryAssigned)).Return(nil).Times(3)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewAutoAssignDeliveriesCommandHandler(factory, services.NewDeliveryDispatcher(authority()),
		collaborators(notifier, nil), 1)
	assigned, err := h.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, 3, assigned)
	// least loaded first: idle takes the first container, then both are even and busy wins the tie
	assert.Equal(t, 2, idle.Load())
	assert.Equal(t, 2, busy.Load())
	require.NotNil(t, cSecond.Delivery())
	assert.True(t, cSecond.Delivery().IsAssignedTo(idle.ID()))
	orderRepo.AssertExpectations(t)
	partnerRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestAutoAssignDeliveriesCommandHandler_Handle_NoOrders(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewAutoAssignDeliveriesCommand(5)

	orderRepo := new(MockOrderRepository)
	partnerRepo := new(MockPartnerRepository)
	uow := new(MockTx)
	mock.InOrder(
		uow.On("Begin", mock.Anything).Return(nil).Once(),
		uow.On("DeliveryPartnerRepository").Return(partnerRepo).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("GetAwaitingDelivery", mock.Anything, 5).Return([]*order.Order{}, nil).Once(),
		uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewAutoAssignDeliveriesCommandHandler(factory, services.NewDeliveryDispatcher(authority()),
		collaborators(nil, nil), 1)
	assigned, err := h.Handle(ctx, cmd)
	require.ErrorIs(t, err, commands.ErrNoOrderAwaitingDelivery)
	assert.Zero(t, assigned)
	partnerRepo.AssertNotCalled(t, "GetAllWithCapacity", mock.Anything)
}

func TestAutoAssignDeliveriesCommandHandler_Handle_NoPartners(t *testing.T) {
	ctx := t.Context()
	f := splitOrder(t, 1)
	f.ship(t, f.itemA)
	cmd, _ := commands.NewAutoAssignDeliveriesCommand(5)

	orderRepo := new(MockOrderRepository)
	partnerRepo := new(MockPartnerRepository)
	uow := new(MockTx)
	mock.InOrder(
		uow.On("Begin", mock.Anything).Return(nil).Once(),
		uow.On("DeliveryPartnerRepository").Return(partnerRepo).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("GetAwaitingDelivery", mock.Anything, 5).Return([]*order.Order{f.order}, nil).Once(),
		partnerRepo.On("GetAllWithCapacity", mock.Anything).Return([]*partner.DeliveryPartner{}, nil).Once(),
		uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewAutoAssignDeliveriesCommandHandler(factory, services.NewDeliveryDispatcher(authority()),
		collaborators(nil, nil), 1)
	_, err := h.Handle(ctx, cmd)
	require.ErrorIs(t, err, commands.ErrNoFreeDeliveryPartners)
	orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAutoAssignDeliveriesCommandHandler_Handle_PartnersRunOut(t *testing.T) {
	ctx := t.Context()
	f := splitOrder(t, 1)
	f.ship(t, f.itemA)
	f.ship(t, f.itemB)
	only := newPartner(t, 1)
	cmd, _ := commands.NewAutoAssignDeliveriesCommand(5)

	orderRepo := new(MockOrderRepository)
	partnerRepo := new(MockPartnerRepository)
	uow := new(MockTx)
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("DeliveryPartnerRepository").Return(partnerRepo).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	orderRepo.On("GetAwaitingDelivery", mock.Anything, 5).Return([]*order.Order{f.order}, nil).Once()
	partnerRepo.On("GetAllWithCapacity", mock.Anything).Return([]*partner.DeliveryPartner{only}, nil).Once()
	orderRepo.On("Update", mock.Anything, f.order).Return(nil).Once()
	partnerRepo.On("Update", mock.Anything, only).Return(nil).Once()
	uow.On("Commit", mock.Anything).Return(nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewAutoAssignDeliveriesCommandHandler(factory, services.NewDeliveryDispatcher(authority()),
		collaborators(nil, nil), 1)
	assigned, err := h.Handle(ctx, cmd)
	require.ErrorIs(t, err, commands.ErrNoFreeDeliveryPartners)
	assert.Equal(t, 1, assigned)
	assert.Equal(t, 1, only.Load())
	uow.AssertExpectations(t)
}
