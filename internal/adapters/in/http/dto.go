package http

import (
	"time"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// Request bodies. Field names follow api/openapi.yaml.
type (
	AddressBody struct {
		Line       string `json:"line"`
		City       string `json:"city"`
		PostalCode string `json:"postalCode"`
		Country    string `json:"country"`
	}

	CartLineBody struct {
		ItemID     *openapi_types.UUID `json:"itemId,omitempty"`
		ProductID  openapi_types.UUID  `json:"productId"`
		ShopID     openapi_types.UUID  `json:"shopId"`
		Quantity   int                 `json:"quantity"`
		UnitPrice  string              `json:"unitPrice"`
		Attributes map[string]string   `json:"attributes,omitempty"`
	}

	NewOrderBody struct {
		OrderID       *openapi_types.UUID `json:"orderId,omitempty"`
		Cart          []CartLineBody      `json:"cart"`
		TotalPrice    string              `json:"totalPrice"`
		Address       AddressBody         `json:"address"`
		PaymentStatus string              `json:"paymentStatus"`
	}

	StatusChangeBody struct {
		Status string `json:"status"`
	}

	NewRefundBody struct {
		ItemID   openapi_types.UUID `json:"itemId"`
		Quantity int                `json:"quantity"`
		Reason   string             `json:"reason"`
		Image    string             `json:"image"`
	}

	RefundDecisionBody struct {
		Decision     string `json:"decision"`
		RejectReason string `json:"rejectReason"`
	}

	DeliveryAssignmentBody struct {
		PartnerID openapi_types.UUID `json:"partnerId"`
	}

	DeliveryUpdateBody struct {
		ContainerID *openapi_types.UUID `json:"containerId,omitempty"`
		Status      string              `json:"status"`
	}

	NewDeliveryPartnerBody struct {
		PartnerID *openapi_types.UUID `json:"partnerId,omitempty"`
		Name      string              `json:"name"`
		Capacity  int                 `json:"capacity"`
	}

	DispatchRunBody struct {
		Batch int `json:"batch"`
	}
)

func toKernelUUID(name string, id openapi_types.UUID) (kernel.UUID, error) {
	out, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return out, nil
}

// optionalUUID returns a fresh id when the client did not pick one.
func optionalUUID(name string, id *openapi_types.UUID) (kernel.UUID, error) {
	if id == nil {
		return kernel.NewUUID(), nil
	}
	return toKernelUUID(name, *id)
}

func parseMoney(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return d, nil
}

func (b AddressBody) toDomain() (kernel.ShippingAddress, error) {
	return kernel.NewShippingAddress(b.Line, b.City, b.PostalCode, b.Country)
}

func (b CartLineBody) toDomain() (commands.CartLine, error) {
	itemID, err := optionalUUID("itemId", b.ItemID)
	if err != nil {
		return commands.CartLine{}, err
	}
	productID, err := toKernelUUID("productId", b.ProductID)
	if err != nil {
		return commands.CartLine{}, err
	}
	shopID, err := toKernelUUID("shopId", b.ShopID)
	if err != nil {
		return commands.CartLine{}, err
	}
	price, err := parseMoney("unitPrice", b.UnitPrice)
	if err != nil {
		return commands.CartLine{}, err
	}

	return commands.CartLine{
		ItemID:     itemID,
		ProductID:  productID,
		ShopID:     shopID,
		Quantity:   b.Quantity,
		UnitPrice:  price,
		Attributes: b.Attributes,
	}, nil
}

// Responses.
type (
	DeliveryResponse struct {
		PartnerID  string    `json:"partnerId"`
		Status     string    `json:"status"`
		AssignedAt time.Time `json:"assignedAt"`
	}

	ContainerResponse struct {
		ID       string            `json:"id"`
		ShopID   string            `json:"shopId"`
		Status   string            `json:"status"`
		Delivery *DeliveryResponse `json:"delivery,omitempty"`
	}

	OrderSummaryResponse struct {
		ID         string              `json:"id"`
		IsMaster   bool                `json:"isMaster"`
		Status     string              `json:"status"`
		Containers []ContainerResponse `json:"containers"`
	}

	RefundOpenedResponse struct {
		ContainerID     string               `json:"containerId"`
		Index           int                  `json:"index"`
		ContainerStatus string               `json:"containerStatus"`
		Order           OrderSummaryResponse `json:"order"`
	}

	DeliveryPartnerResponse struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Capacity int    `json:"capacity"`
		Active   int    `json:"active"`
	}

	ActiveDeliveryResponse struct {
		ContainerID string      `json:"containerId"`
		OrderID     string      `json:"orderId"`
		Status      string      `json:"status"`
		AssignedAt  time.Time   `json:"assignedAt"`
		Address     AddressBody `json:"address"`
	}

	DispatchResponse struct {
		Assigned int `json:"assigned"`
	}
)

func newDeliveryResponse(d *order.DeliveryAssignment) *DeliveryResponse {
	if d == nil {
		return nil
	}
	return &DeliveryResponse{
		PartnerID:  d.PartnerID().String(),
		Status:     d.Status().String(),
		AssignedAt: d.AssignedAt(),
	}
}

func newOrderSummary(o *order.Order) OrderSummaryResponse {
	containers := o.RefundContainers()
	resp := OrderSummaryResponse{
		ID:         o.ID().String(),
		IsMaster:   o.IsMaster(),
		Status:     o.Status().String(),
		Containers: make([]ContainerResponse, 0, len(containers)),
	}
	for _, c := range containers {
		resp.Containers = append(resp.Containers, ContainerResponse{
			ID:       c.ID().String(),
			ShopID:   c.ShopID().String(),
			Status:   c.Status().String(),
			Delivery: newDeliveryResponse(c.Delivery()),
		})
	}
	return resp
}

func newAddressBody(a kernel.ShippingAddress) AddressBody {
	return AddressBody{
		Line:       a.Line(),
		City:       a.City(),
		PostalCode: a.PostalCode(),
		Country:    a.Country(),
	}
}

// Order view, as returned by GET /orders/{orderId}.
type (
	OrderViewResponse struct {
		ID            string                  `json:"id"`
		IsMaster      bool                    `json:"isMaster"`
		DisplayStatus string                  `json:"displayStatus"`
		BaseStatus    string                  `json:"baseStatus"`
		Badge         string                  `json:"badge,omitempty"`
		TotalPrice    string                  `json:"totalPrice"`
		PaymentStatus string                  `json:"paymentStatus"`
		Address       AddressBody             `json:"address"`
		CreatedAt     time.Time               `json:"createdAt"`
		Containers    []ContainerViewResponse `json:"containers"`
		Refunds       RefundsViewResponse     `json:"refunds"`
	}

	ContainerViewResponse struct {
		ID       string             `json:"id"`
		ShopID   string             `json:"shopId"`
		Status   string             `json:"status"`
		Items    []ItemViewResponse `json:"items"`
		Delivery *DeliveryResponse  `json:"delivery,omitempty"`
	}

	ItemViewResponse struct {
		ID          string            `json:"id"`
		ProductID   string            `json:"productId"`
		ProductName string            `json:"productName,omitempty"`
		Category    string            `json:"category,omitempty"`
		Quantity    int               `json:"quantity"`
		UnitPrice   string            `json:"unitPrice"`
		Attributes  map[string]string `json:"attributes,omitempty"`
	}

	RefundsViewResponse struct {
		Visibility string                      `json:"visibility"`
		CanManage  bool                        `json:"canManage"`
		Requests   []RefundRequestViewResponse `json:"requests"`
	}

	RefundRequestViewResponse struct {
		ContainerID  string    `json:"containerId"`
		Index        int       `json:"index"`
		ItemID       string    `json:"itemId"`
		ProductName  string    `json:"productName,omitempty"`
		OriginalQty  int       `json:"originalQty"`
		RefundedQty  int       `json:"refundedQty"`
		Reason       string    `json:"reason"`
		Image        string    `json:"image,omitempty"`
		Status       string    `json:"status"`
		RejectReason string    `json:"rejectReason,omitempty"`
		RequestedAt  time.Time `json:"requestedAt"`
	}
)

func newOrderView(v queries.GetOrderViewQueryResponse) OrderViewResponse {
	resp := OrderViewResponse{
		ID:            v.OrderID.String(),
		IsMaster:      v.IsMaster,
		DisplayStatus: v.DisplayStatus,
		BaseStatus:    v.BaseStatus,
		Badge:         v.Badge,
		TotalPrice:    v.TotalPrice.StringFixed(2),
		PaymentStatus: v.PaymentStatus,
		Address:       newAddressBody(v.Address),
		CreatedAt:     v.CreatedAt,
		Containers:    make([]ContainerViewResponse, 0, len(v.Containers)),
		Refunds: RefundsViewResponse{
			Visibility: v.Refunds.Visibility,
			CanManage:  v.Refunds.CanManage,
			Requests:   make([]RefundRequestViewResponse, 0, len(v.Refunds.Requests)),
		},
	}

	for _, c := range v.Containers {
		cv := ContainerViewResponse{
			ID:     c.ID.String(),
			ShopID: c.ShopID.String(),
			Status: c.Status,
			Items:  make([]ItemViewResponse, 0, len(c.Items)),
		}
		if c.Delivery != nil {
			cv.Delivery = &DeliveryResponse{
				PartnerID:  c.Delivery.PartnerID.String(),
				Status:     c.Delivery.Status,
				AssignedAt: c.Delivery.AssignedAt,
			}
		}
		for _, item := range c.Items {
			cv.Items = append(cv.Items, ItemViewResponse{
				ID:          item.ID.String(),
				ProductID:   item.ProductID.String(),
				ProductName: item.ProductName,
				Category:    item.Category,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice.StringFixed(2),
				Attributes:  item.Attributes,
			})
		}
		resp.Containers = append(resp.Containers, cv)
	}

	for _, r := range v.Refunds.Requests {
		resp.Refunds.Requests = append(resp.Refunds.Requests, RefundRequestViewResponse{
			ContainerID:  r.ContainerID.String(),
			Index:        r.Index,
			ItemID:       r.ItemID.String(),
			ProductName:  r.ProductName,
			OriginalQty:  r.OriginalQty,
			RefundedQty:  r.RefundedQty,
			Reason:       r.Reason,
			Image:        r.Image,
			Status:       r.Status,
			RejectReason: r.RejectReason,
			RequestedAt:  r.RequestedAt,
		})
	}

	return resp
}
