// Package orderrepo persists order graphs. An order, its sub-orders, refund requests and
// delivery assignments are one jsonb document in one row of the orders table; the
// columns next to it are indexes for lookups and the version used for optimistic locking.
package orderrepo

import (
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderDTO represents one stored order graph.
type OrderDTO struct {
	ID               uuid.UUID                         `gorm:"type:uuid;primaryKey"`
	CustomerID       uuid.UUID                         `gorm:"type:uuid;not null;index"`
	Status           int                               `gorm:"type:smallint;not null;index"`
	IsMaster         bool                              `gorm:"not null"`
	AwaitingDelivery bool                              `gorm:"not null;index"`
	Version          int                               `gorm:"not null;default:0"`
	Document         datatypes.JSONType[OrderDocument] `gorm:"type:jsonb;not null"`
	Deliveries       []DeliveryDTO                     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time                         `gorm:"not null;index"`
	UpdatedAt        time.Time
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// DeliveryDTO is one row per container with a delivery partner. The rows are derived
// from the document on every write and exist to find orders by partner.
type DeliveryDTO struct {
	ContainerID uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	PartnerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Status      int       `gorm:"type:smallint;not null"`
	AssignedAt  time.Time `gorm:"not null"`
}

// TableName specifies the database table name for delivery assignment rows.
func (DeliveryDTO) TableName() string {
	return "order_deliveries"
}

// OrderDocument is the jsonb body of an order row.
type OrderDocument struct {
	Self          ContainerDocument   `json:"self"`
	Cart          []CartItemDocument  `json:"cart"`
	SubOrders     []ContainerDocument `json:"sub_orders,omitempty"`
	TotalPrice    decimal.Decimal     `json:"total_price"`
	Address       AddressDocument     `json:"shipping_address"`
	PaymentStatus string              `json:"payment_status"`
}

// ContainerDocument holds the container fields of the order itself or of a sub-order.
// Items are referenced by cart item id.
type ContainerDocument struct {
	ID              uuid.UUID               `json:"id"`
	ShopID          uuid.UUID               `json:"shop_id"`
	Status          int                     `json:"status"`
	PreRefundStatus int                     `json:"pre_refund_status,omitempty"`
	ItemIDs         []uuid.UUID             `json:"item_ids,omitempty"`
	RefundRequests  []RefundRequestDocument `json:"refund_requests,omitempty"`
	Delivery        *DeliveryDocument       `json:"delivery,omitempty"`
}

type CartItemDocument struct {
	ID         uuid.UUID         `json:"id"`
	ProductID  uuid.UUID         `json:"product_id"`
	ShopID     uuid.UUID         `json:"shop_id"`
	Quantity   int               `json:"quantity"`
	UnitPrice  decimal.Decimal   `json:"unit_price"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type RefundRequestDocument struct {
	ItemID       uuid.UUID `json:"item_id"`
	OriginalQty  int       `json:"original_qty"`
	RefundedQty  int       `json:"refunded_qty"`
	Reason       string    `json:"reason"`
	Image        string    `json:"image,omitempty"`
	Status       int       `json:"status"`
	RejectReason string    `json:"reject_reason,omitempty"`
	RequestedAt  time.Time `json:"requested_at"`
}

type DeliveryDocument struct {
	PartnerID  uuid.UUID `json:"partner_id"`
	Status     int       `json:"status"`
	AssignedAt time.Time `json:"assigned_at"`
}

type AddressDocument struct {
	Line       string `json:"line"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
}

// fromDomain converts an order aggregate to its row. Version is the version the
// aggregate was loaded with.
func fromDomain(aggregate *order.Order) OrderDTO {
	doc := OrderDocument{
		Self:          containerFromDomain(aggregate),
		Cart:          make([]CartItemDocument, 0, len(aggregate.Cart())),
		TotalPrice:    aggregate.TotalPrice(),
		PaymentStatus: aggregate.PaymentStatus(),
		Address: AddressDocument{
			Line:       aggregate.ShippingAddress().Line(),
			City:       aggregate.ShippingAddress().City(),
			PostalCode: aggregate.ShippingAddress().PostalCode(),
			Country:    aggregate.ShippingAddress().Country(),
		},
	}
	for _, item := range aggregate.Cart() {
		doc.Cart = append(doc.Cart, CartItemDocument{
			ID:         item.ID().Bytes(),
			ProductID:  item.ProductID().Bytes(),
			ShopID:     item.ShopID().Bytes(),
			Quantity:   item.Quantity(),
			UnitPrice:  item.UnitPrice(),
			Attributes: item.Attributes(),
		})
	}
	for _, sub := range aggregate.SubOrders() {
		doc.SubOrders = append(doc.SubOrders, containerFromDomain(sub))
	}

	orderID := aggregate.ID().Bytes()
	var deliveries []DeliveryDTO
	for _, c := range aggregate.RefundContainers() {
		if d := c.Delivery(); d != nil {
			deliveries = append(deliveries, DeliveryDTO{
				ContainerID: c.ID().Bytes(),
				OrderID:     orderID,
				PartnerID:   d.PartnerID().Bytes(),
				Status:      int(d.Status()),
				AssignedAt:  d.AssignedAt(),
			})
		}
	}

	return OrderDTO{
		ID:               orderID,
		CustomerID:       aggregate.CustomerID().Bytes(),
		Status:           int(aggregate.Status()),
		IsMaster:         aggregate.IsMaster(),
		AwaitingDelivery: aggregate.AwaitsDelivery(),
		Version:          aggregate.Version(),
		Document:         datatypes.NewJSONType(doc),
		Deliveries:       deliveries,
		CreatedAt:        aggregate.CreatedAt(),
	}
}

func containerFromDomain(c order.Container) ContainerDocument {
	doc := ContainerDocument{
		ID:              c.ID().Bytes(),
		Status:          int(c.Status()),
		PreRefundStatus: int(c.PreRefundStatus()),
	}
	if !c.ShopID().IsZero() {
		doc.ShopID = c.ShopID().Bytes()
	}
	for _, item := range c.Items() {
		doc.ItemIDs = append(doc.ItemIDs, item.ID().Bytes())
	}
	for _, r := range c.RefundRequests() {
		doc.RefundRequests = append(doc.RefundRequests, RefundRequestDocument{
			ItemID:       r.ItemID().Bytes(),
			OriginalQty:  r.OriginalQty(),
			RefundedQty:  r.RefundedQty(),
			Reason:       r.Reason(),
			Image:        r.Image(),
			Status:       int(r.Status()),
			RejectReason: r.RejectReason(),
			RequestedAt:  r.RequestedAt(),
		})
	}
	if d := c.Delivery(); d != nil {
		doc.Delivery = &DeliveryDocument{
			PartnerID:  d.PartnerID().Bytes(),
			Status:     int(d.Status()),
			AssignedAt: d.AssignedAt(),
		}
	}
	return doc
}

// toDomain rebuilds the order aggregate from its row using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	doc := dto.Document.Data()

	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}

	address, err := kernel.NewShippingAddress(doc.Address.Line, doc.Address.City, doc.Address.PostalCode,
		doc.Address.Country)
	if err != nil {
		return nil, err
	}

	cart := make([]*order.CartItem, 0, len(doc.Cart))
	byID := make(map[uuid.UUID]*order.CartItem, len(doc.Cart))
	for _, itemDoc := range doc.Cart {
		item, itemErr := cartItemToDomain(itemDoc)
		if itemErr != nil {
			return nil, itemErr
		}
		cart = append(cart, item)
		byID[itemDoc.ID] = item
	}

	self, err := containerToDomain(doc.Self, byID)
	if err != nil {
		return nil, err
	}

	subOrders := make([]*order.SubOrder, 0, len(doc.SubOrders))
	for _, subDoc := range doc.SubOrders {
		state, subErr := containerToDomain(subDoc, byID)
		if subErr != nil {
			return nil, subErr
		}
		subOrders = append(subOrders, order.RestoreSubOrder(state))
	}

	return order.RestoreOrder(self, customerID, dto.IsMaster, cart, subOrders, doc.TotalPrice, address,
		doc.PaymentStatus, dto.CreatedAt.UTC(), dto.Version), nil
}

func cartItemToDomain(doc CartItemDocument) (*order.CartItem, error) {
	id, err := kernel.UUIDFromBytes(doc.ID[:])
	if err != nil {
		return nil, err
	}
	productID, err := kernel.UUIDFromBytes(doc.ProductID[:])
	if err != nil {
		return nil, err
	}
	shopID, err := kernel.UUIDFromBytes(doc.ShopID[:])
	if err != nil {
		return nil, err
	}
	return order.RestoreCartItem(id, productID, shopID, doc.Quantity, doc.UnitPrice, doc.Attributes), nil
}

func containerToDomain(doc ContainerDocument, items map[uuid.UUID]*order.CartItem) (order.ContainerState, error) {
	id, err := kernel.UUIDFromBytes(doc.ID[:])
	if err != nil {
		return order.ContainerState{}, err
	}

	state := order.ContainerState{
		ID:              id,
		Status:          order.Status(doc.Status),
		PreRefundStatus: order.Status(doc.PreRefundStatus),
	}
	if doc.ShopID != uuid.Nil {
		if state.ShopID, err = kernel.UUIDFromBytes(doc.ShopID[:]); err != nil {
			return order.ContainerState{}, err
		}
	}

	for _, itemID := range doc.ItemIDs {
		item, ok := items[itemID]
		if !ok {
			return order.ContainerState{}, errs.NewValueIsInvalidErrorWithCause("container items",
				fmt.Errorf("item %s of container %s is not in the cart", itemID, doc.ID))
		}
		state.Items = append(state.Items, item)
	}

	for _, r := range doc.RefundRequests {
		itemID, idErr := kernel.UUIDFromBytes(r.ItemID[:])
		if idErr != nil {
			return order.ContainerState{}, idErr
		}
		state.RefundRequests = append(state.RefundRequests, order.RestoreRefundRequest(itemID, r.OriginalQty,
			r.RefundedQty, r.Reason, r.Image, order.RefundStatus(r.Status), r.RejectReason, r.RequestedAt.UTC()))
	}

	if d := doc.Delivery; d != nil {
		partnerID, idErr := kernel.UUIDFromBytes(d.PartnerID[:])
		if idErr != nil {
			return order.ContainerState{}, idErr
		}
		state.Delivery = order.RestoreDeliveryAssignment(partnerID, order.DeliveryStatus(d.Status), d.AssignedAt.UTC())
	}

	return state, nil
}
