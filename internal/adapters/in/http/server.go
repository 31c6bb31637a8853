package http

import (
	"context"
	"fmt"
	"net/http"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/partner"
	"marketplace/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Use case ports of the HTTP adapter. The command and query handlers satisfy them.
type (
	CreateOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*order.Order, error)
	}
	UpdateOrderStatusHandler interface {
		Handle(ctx context.Context, cmd commands.UpdateOrderStatusCommand) (*order.Order, error)
	}
	RequestRefundHandler interface {
		Handle(ctx context.Context, cmd commands.RequestRefundCommand) (*order.Order, order.Container, int, error)
	}
	ResolveRefundHandler interface {
		Handle(ctx context.Context, cmd commands.ResolveRefundCommand) (*order.Order, error)
	}
	AssignDeliveryHandler interface {
		Handle(ctx context.Context, cmd commands.AssignDeliveryCommand) (*order.Order, error)
	}
	UpdateDeliveryAssignmentHandler interface {
		Handle(ctx context.Context, cmd commands.UpdateDeliveryAssignmentCommand) (*order.Order, error)
	}
	AutoAssignDeliveriesHandler interface {
		Handle(ctx context.Context, cmd commands.AutoAssignDeliveriesCommand) (int, error)
	}
	CreateDeliveryPartnerHandler interface {
		Handle(ctx context.Context, cmd commands.CreateDeliveryPartnerCommand) (*partner.DeliveryPartner, error)
	}
	GetOrderViewHandler interface {
		Handle(ctx context.Context, query queries.GetOrderViewQuery) (queries.GetOrderViewQueryResponse, error)
	}
	GetDeliveryPartnersHandler interface {
		Handle(ctx context.Context, query queries.GetDeliveryPartnersQuery) ([]queries.GetDeliveryPartnersQueryResponse, error)
	}
	GetActiveDeliveriesHandler interface {
		Handle(ctx context.Context, query queries.GetActiveDeliveriesQuery) ([]queries.GetActiveDeliveriesQueryResponse, error)
	}
)

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	CreateOrder              CreateOrderHandler
	UpdateOrderStatus        UpdateOrderStatusHandler
	RequestRefund            RequestRefundHandler
	ResolveRefund            ResolveRefundHandler
	AssignDelivery           AssignDeliveryHandler
	UpdateDeliveryAssignment UpdateDeliveryAssignmentHandler
	AutoAssignDeliveries     AutoAssignDeliveriesHandler
	CreateDeliveryPartner    CreateDeliveryPartnerHandler
	GetOrderView             GetOrderViewHandler
	GetDeliveryPartners      GetDeliveryPartnersHandler
	GetActiveDeliveries      GetActiveDeliveriesHandler
}

// defaultDispatchBatch is used when POST /deliveries/dispatch names no batch.
const defaultDispatchBatch = 50

// Server translates HTTP requests into commands and queries.
// Every error is returned to echo and rendered by ErrorHandler.
type Server struct {
	handlers Handlers
}

func NewServer(handlers Handlers) *Server {
	return &Server{handlers: handlers}
}

// uuidParam binds a path parameter the way generated oapi-codegen wrappers do.
func uuidParam(c echo.Context, name string) (kernel.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return toKernelUUID(name, id)
}

func intParam(c echo.Context, name string) (int, error) {
	var v int
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return v, nil
}

// PlaceOrder handles POST /api/v1/orders.
func (s *Server) PlaceOrder(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}

	var body NewOrderBody
	if err := c.Bind(&body); err != nil {
		return err
	}

	orderID, err := optionalUUID("orderId", body.OrderID)
	if err != nil {
		return err
	}
	lines := make([]commands.CartLine, 0, len(body.Cart))
	for _, b := range body.Cart {
		line, err := b.toDomain()
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}
	total, err := parseMoney("totalPrice", body.TotalPrice)
	if err != nil {
		return err
	}
	address, err := body.Address.toDomain()
	if err != nil {
		return err
	}

	cmd, err := commands.NewCreateOrderCommand(orderID, actor, lines, total, address, body.PaymentStatus)
	if err != nil {
		return err
	}

	o, err := s.handlers.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newOrderSummary(o))
}

// GetOrderView handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrderView(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}
	orderID, err := uuidParam(c, "orderId")
	if err != nil {
		return err
	}

	query, err := queries.NewGetOrderViewQuery(orderID, actor)
	if err != nil {
		return err
	}

	view, err := s.handlers.GetOrderView.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newOrderView(view))
}

// UpdateOrderStatus handles PUT /api/v1/orders/{orderId}/containers/{containerId}/status.
func (s *Server) UpdateOrderStatus(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}
	orderID, err := uuidParam(c, "orderId")
	if err != nil {
		return err
	}
	containerID, err := uuidParam(c, "containerId")
	if err != nil {
		return err
	}

	var body StatusChangeBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	status, err := order.ParseStatus(body.Status)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateOrderStatusCommand(orderID, containerID, status, actor)
	if err != nil {
		return err
	}

	o, err := s.handlers.UpdateOrderStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newOrderSummary(o))
}

// RequestRefund handles POST /api/v1/orders/{orderId}/refunds.
func (s *Server) RequestRefund(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}
	orderID, err := uuidParam(c, "orderId")
	if err != nil {
		return err
	}

	var body NewRefundBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	itemID, err := toKernelUUID("itemId", body.ItemID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewRequestRefundCommand(orderID, itemID, body.Quantity, body.Reason, body.Image, actor)
	if err != nil {
		return err
	}

	o, container, index, err := s.handlers.RequestRefund.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, RefundOpenedResponse{
		ContainerID:     container.ID().String(),
		Index:           index,
		ContainerStatus: container.Status().String(),
		Order:           newOrderSummary(o),
	})
}

// ResolveRefund handles PUT /api/v1/orders/{orderId}/containers/{containerId}/refunds/{index}.
func (s *Server) ResolveRefund(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}
	orderID, err := uuidParam(c, "orderId")
	if err != nil {
		return err
	}
	containerID, err := uuidParam(c, "containerId")
	if err != nil {
		return err
	}
	index, err := intParam(c, "index")
	if err != nil {
		return err
	}

	var body RefundDecisionBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	decision, err := order.ParseRefundStatus(body.Decision)
	if err != nil {
		return err
	}

	cmd, err := commands.NewResolveRefundCommand(orderID, containerID, index, decision, actor, body.RejectReason)
	if err != nil {
		return err
	}

	o, err := s.handlers.ResolveRefund.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newOrderSummary(o))
}

// AssignDelivery handles PUT /api/v1/orders/{orderId}/containers/{containerId}/delivery.
func (s *Server) AssignDelivery(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}
	orderID, err := uuidParam(c, "orderId")
	if err != nil {
		return err
	}
	containerID, err := uuidParam(c, "containerId")
	if err != nil {
		return err
	}

	var body DeliveryAssignmentBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	partnerID, err := toKernelUUID("partnerId", body.PartnerID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAssignDeliveryCommand(orderID, containerID, partnerID, actor)
	if err != nil {
		return err
	}

	o, err := s.handlers.AssignDelivery.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newOrderSummary(o))
}

// UpdateDeliveryAssignment handles PATCH /api/v1/orders/{orderId}/delivery.
func (s *Server) UpdateDeliveryAssignment(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}
	orderID, err := uuidParam(c, "orderId")
	if err != nil {
		return err
	}

	var body DeliveryUpdateBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	status, err := order.ParseDeliveryStatus(body.Status)
	if err != nil {
		return err
	}
	var containerID *kernel.UUID
	if body.ContainerID != nil {
		id, err := toKernelUUID("containerId", *body.ContainerID)
		if err != nil {
			return err
		}
		containerID = &id
	}

	cmd, err := commands.NewUpdateDeliveryAssignmentCommand(orderID, containerID, status, actor)
	if err != nil {
		return err
	}

	o, err := s.handlers.UpdateDeliveryAssignment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newOrderSummary(o))
}

// RegisterDeliveryPartner handles POST /api/v1/delivery-partners.
func (s *Server) RegisterDeliveryPartner(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}

	var body NewDeliveryPartnerBody
	if err := c.Bind(&body); err != nil {
		return err
	}
	partnerID, err := optionalUUID("partnerId", body.PartnerID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCreateDeliveryPartnerCommand(partnerID, body.Name, body.Capacity, actor)
	if err != nil {
		return err
	}

	p, err := s.handlers.CreateDeliveryPartner.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, DeliveryPartnerResponse{
		ID:       p.ID().String(),
		Name:     p.Name(),
		Capacity: p.Capacity(),
		Active:   p.Load(),
	})
}

// ListDeliveryPartners handles GET /api/v1/delivery-partners.
func (s *Server) ListDeliveryPartners(c echo.Context) error {
	if _, err := ActorFrom(c); err != nil {
		return err
	}

	partners, err := s.handlers.GetDeliveryPartners.Handle(c.Request().Context(), queries.NewGetDeliveryPartnersQuery())
	if err != nil {
		return err
	}

	response := make([]DeliveryPartnerResponse, len(partners))
	for i, p := range partners {
		response[i] = DeliveryPartnerResponse{
			ID:       p.ID.String(),
			Name:     p.Name,
			Capacity: p.Capacity,
			Active:   p.Active,
		}
	}

	return c.JSON(http.StatusOK, response)
}

// ListActiveDeliveries handles GET /api/v1/delivery-partners/{partnerId}/deliveries.
func (s *Server) ListActiveDeliveries(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}
	partnerID, err := uuidParam(c, "partnerId")
	if err != nil {
		return err
	}

	query, err := queries.NewGetActiveDeliveriesQuery(partnerID, actor)
	if err != nil {
		return err
	}

	deliveries, err := s.handlers.GetActiveDeliveries.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]ActiveDeliveryResponse, len(deliveries))
	for i, d := range deliveries {
		response[i] = ActiveDeliveryResponse{
			ContainerID: d.ContainerID.String(),
			OrderID:     d.OrderID.String(),
			Status:      d.Status,
			AssignedAt:  d.AssignedAt,
			Address:     newAddressBody(d.Address),
		}
	}

	return c.JSON(http.StatusOK, response)
}

// DispatchDeliveries handles POST /api/v1/deliveries/dispatch, one auto-assignment pass.
// Finding nothing to assign is not an error here.
func (s *Server) DispatchDeliveries(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return errs.NewForbiddenError(actor.String(), "dispatch deliveries")
	}

	body := DispatchRunBody{Batch: defaultDispatchBatch}
	if err := c.Bind(&body); err != nil {
		return err
	}
	if body.Batch == 0 {
		body.Batch = defaultDispatchBatch
	}

	cmd, err := commands.NewAutoAssignDeliveriesCommand(body.Batch)
	if err != nil {
		return err
	}

	assigned, err := s.handlers.AutoAssignDeliveries.Handle(c.Request().Context(), cmd)
	if err != nil && !commands.IsNothingToDispatch(err) {
		return err
	}

	return c.JSON(http.StatusOK, DispatchResponse{Assigned: assigned})
}
