package queries

import (
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrGetOrderViewQueryIsNotConstructed = errors.New(
		"GetOrderViewQuery must be created via NewGetOrderViewQuery constructor",
	)
)

// GetOrderViewQuery asks for an order as a given viewer sees it.
type GetOrderViewQuery struct {
	orderID kernel.UUID
	viewer  kernel.Actor
	guard   guard.ConstructorGuard
}

func NewGetOrderViewQuery(orderID kernel.UUID, viewer kernel.Actor) (GetOrderViewQuery, error) {
	if err := errors.Join(orderID.Validate(), viewer.Validate()); err != nil {
		return GetOrderViewQuery{}, err
	}

	return GetOrderViewQuery{
		orderID: orderID,
		viewer:  viewer,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q GetOrderViewQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderViewQueryIsNotConstructed)
}

func (q GetOrderViewQuery) OrderID() kernel.UUID { return q.orderID }
func (q GetOrderViewQuery) Viewer() kernel.Actor { return q.viewer }

// GetOrderViewQueryResponse is the role filtered read model of one order.
type GetOrderViewQueryResponse struct {
	OrderID       kernel.UUID
	IsMaster      bool
	DisplayStatus string
	BaseStatus    string
	// Badge is empty when there is no refund activity to show.
	Badge         string
	TotalPrice    decimal.Decimal
	PaymentStatus string
	Address       kernel.ShippingAddress
	CreatedAt     time.Time
	Containers    []ContainerView
	Refunds       RefundsView
}

// ContainerView is a visible container with its items and delivery.
type ContainerView struct {
	ID       kernel.UUID
	ShopID   kernel.UUID
	Status   string
	Items    []ItemView
	Delivery *DeliveryView
}

type ItemView struct {
	ID          kernel.UUID
	ProductID   kernel.UUID
	ProductName string
	Category    string
	Quantity    int
	UnitPrice   decimal.Decimal
	Attributes  map[string]string
}

type DeliveryView struct {
	PartnerID  kernel.UUID
	Status     string
	AssignedAt time.Time
}

// RefundsView is the refund management panel. Visibility is "none", "read-only" or "manage".
type RefundsView struct {
	Visibility string
	CanManage  bool
	Requests   []RefundRequestView
}

type RefundRequestView struct {
	ContainerID  kernel.UUID
	Index        int
	ItemID       kernel.UUID
	ProductName  string
	OriginalQty  int
	RefundedQty  int
	Reason       string
	Image        string
	Status       string
	RejectReason string
	RequestedAt  time.Time
}
