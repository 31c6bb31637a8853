package queries

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// OrderReader loads order graphs. ports.OrderRepository satisfies it.
type OrderReader interface {
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}

// GetOrderViewQueryHandler loads the aggregate and runs the status aggregator over it;
// the badge and visibility rules live in the domain, not in SQL.
type GetOrderViewQueryHandler struct {
	orders     OrderReader
	aggregator services.StatusAggregator
	catalog    ports.Catalog
}

// NewGetOrderViewQueryHandler creates the handler. catalog may be nil, product names are
// left empty then.
func NewGetOrderViewQueryHandler(
	orders OrderReader,
	aggregator services.StatusAggregator,
	catalog ports.Catalog,
) GetOrderViewQueryHandler {
	return GetOrderViewQueryHandler{orders: orders, aggregator: aggregator, catalog: catalog}
}

func (h GetOrderViewQueryHandler) Handle(
	ctx context.Context,
	query GetOrderViewQuery,
) (GetOrderViewQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderViewQueryResponse{}, err
	}

	o, err := h.orders.Get(ctx, query.OrderID())
	if err != nil {
		return GetOrderViewQueryResponse{}, errors.Wrap(err, "load order")
	}

	view, err := h.aggregator.Aggregate(o, query.Viewer())
	if err != nil {
		return GetOrderViewQueryResponse{}, err
	}
	access := h.aggregator.RefundAccess(o, query.Viewer())

	names := productNames{catalog: h.catalog, seen: make(map[kernel.UUID]ports.Product)}

	resp := GetOrderViewQueryResponse{
		OrderID:       o.ID(),
		IsMaster:      o.IsMaster(),
		DisplayStatus: view.DisplayStatus,
		BaseStatus:    view.BaseStatus.String(),
		Badge:         view.Badge.String(),
		TotalPrice:    o.TotalPrice(),
		PaymentStatus: o.PaymentStatus(),
		Address:       o.ShippingAddress(),
		CreatedAt:     o.CreatedAt(),
		Containers:    make([]ContainerView, 0, len(view.Containers)),
		Refunds: RefundsView{
			Visibility: access.Visibility.String(),
			CanManage:  access.Visibility == services.VisibilityManage,
			Requests:   make([]RefundRequestView, 0, len(access.Entries)),
		},
	}

	for _, c := range view.Containers {
		cv := ContainerView{
			ID:     c.ID(),
			ShopID: c.ShopID(),
			Status: c.Status().String(),
		}
		for _, item := range c.Items() {
			product := names.lookup(ctx, item.ProductID())
			cv.Items = append(cv.Items, ItemView{
				ID:          item.ID(),
				ProductID:   item.ProductID(),
				ProductName: product.Name,
				Category:    product.Category,
				Quantity:    item.Quantity(),
				UnitPrice:   item.UnitPrice(),
				Attributes:  item.Attributes(),
			})
		}
		if d := c.Delivery(); d != nil {
			cv.Delivery = &DeliveryView{
				PartnerID:  d.PartnerID(),
				Status:     d.Status().String(),
				AssignedAt: d.AssignedAt(),
			}
		}
		resp.Containers = append(resp.Containers, cv)
	}

	for _, e := range access.Entries {
		r := e.Request
		rv := RefundRequestView{
			ContainerID:  e.Container.ID(),
			Index:        e.Index,
			ItemID:       r.ItemID(),
			OriginalQty:  r.OriginalQty(),
			RefundedQty:  r.RefundedQty(),
			Reason:       r.Reason(),
			Image:        r.Image(),
			Status:       r.Status().String(),
			RejectReason: r.RejectReason(),
			RequestedAt:  r.RequestedAt(),
		}
		if item, itemErr := e.Container.Item(r.ItemID()); itemErr == nil {
			rv.ProductName = names.lookup(ctx, item.ProductID()).Name
		}
		resp.Refunds.Requests = append(resp.Refunds.Requests, rv)
	}

	return resp, nil
}

// productNames memoizes catalog lookups for one request.
type productNames struct {
	catalog ports.Catalog
	seen    map[kernel.UUID]ports.Product
}

func (p productNames) lookup(ctx context.Context, productID kernel.UUID) ports.Product {
	if product, ok := p.seen[productID]; ok {
		return product
	}
	if p.catalog == nil {
		return ports.Product{ID: productID}
	}

	product, err := p.catalog.Product(ctx, productID)
	if err != nil {
		zctx.From(ctx).Warn("Catalog lookup failed",
			zap.Stringer("product_id", productID),
			zap.Error(err),
		)
		product = ports.Product{ID: productID}
	}
	p.seen[productID] = product
	return product
}
