package services_test

import (
	"testing"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/partner"
	"marketplace/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPartner(t *testing.T, name string, capacity int, busy int) *partner.DeliveryPartner {
	t.Helper()
	p, err := partner.NewDeliveryPartner(kernel.NewUUID(), name, capacity)
	require.NoError(t, err)
	for range busy {
		require.NoError(t, p.Take(kernel.NewUUID()))
	}
	return p
}

func TestDeliveryDispatcher_Dispatch(t *testing.T) {
	authority := services.NewTransitionAuthority(clock)
	dispatcher := services.NewDeliveryDispatcher(authority)

	t.Run("should dispatch shipped containers to the least loaded partners", func(t *testing.T) {
		f := splitOrder(t, 1)
		for _, item := range []*order.CartItem{f.itemA, f.itemB} {
			_, err := authority.UpdateOrderStatus(f.order, f.container(t, item).ID(), order.Shipped, f.admin)
			require.NoError(t, err)
		}
		busy := newPartner(t, "Busy", 3, 2)
		idle := newPartner(t, "Idle", 1, 0)
		spare := newPartner(t, "Spare", 2, 1)

		dispatched, err := dispatcher.Dispatch(f.order, []*partner.DeliveryPartner{busy, idle, spare})

		require.NoError(t, err)
		require.Len(t, dispatched, 2)
		assert.True(t, dispatched[0].Partner.IsEqual(idle))
		assert.True(t, dispatched[1].Partner.IsEqual(spare))
		assert.True(t, f.container(t, f.itemA).Delivery().IsAssignedTo(idle.ID()))
		assert.True(t, idle.Holds(f.container(t, f.itemA).ID()))
		assert.False(t, f.order.AwaitsDelivery())
	})

	t.Run("should skip containers that are not shipped", func(t *testing.T) {
		f := singleOrder(t, 1)

		dispatched, err := dispatcher.Dispatch(f.order, []*partner.DeliveryPartner{newPartner(t, "Idle", 1, 0)})

		require.NoError(t, err)
		assert.Empty(t, dispatched)
		assert.Nil(t, f.order.Delivery())
	})

	t.Run("should return error when every partner is busy", func(t *testing.T) {
		f := singleOrder(t, 1)
		require.NoError(t, f.order.ChangeStatus(order.Shipped))
		full := newPartner(t, "Full", 1, 1)

		dispatched, err := dispatcher.Dispatch(f.order, []*partner.DeliveryPartner{full})

		require.ErrorIs(t, err, services.ErrDeliveryPartnerNotFound)
		assert.Empty(t, dispatched)
		assert.Nil(t, f.order.Delivery())
	})

	t.Run("should return error when no partners are given", func(t *testing.T) {
		f := singleOrder(t, 1)
		require.NoError(t, f.order.ChangeStatus(order.Shipped))

		_, err := dispatcher.Dispatch(f.order, nil)

		require.ErrorIs(t, err, services.ErrDeliveryPartnerNotFound)
	})

	t.Run("should reject invalid partners", func(t *testing.T) {
		f := singleOrder(t, 1)

		_, err := dispatcher.Dispatch(f.order, []*partner.DeliveryPartner{{}})

		require.ErrorIs(t, err, partner.ErrDeliveryPartnerIsNotConstructed)
	})
}
