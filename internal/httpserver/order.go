package httpserver

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	who, err := requester(c)
	if err != nil {
		return err
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order", "invalid body", err)
	}
	req.IdempotencyKey = strings.TrimSpace(c.Request().Header.Get(headerIdempotencyKey))

	order, err := h.Svc.PlaceOrder(ctx, who.ID, req)
	if err != nil {
		return fail(l, "create_order", err)
	}

	l.Info("create_order_success", "order_id", order.OrderID)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	who, err := requester(c)
	if err != nil {
		return err
	}

	order, err := h.Svc.GetOrder(ctx, c.Param("id"), who)
	if err != nil {
		return fail(l, "get_order", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) GetOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order_status")

	who, err := requester(c)
	if err != nil {
		return err
	}

	view, err := h.Svc.GetOrderStatus(ctx, c.Param("id"), who)
	if err != nil {
		return fail(l, "get_order_status", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *OrderHTTP) GetUserOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_user_orders")

	who, err := requester(c)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return badRequest(l, "get_user_orders", "userId is not a uuid", err)
	}

	orders, err := h.Svc.ListOrdersForUser(ctx, userID, who)
	if err != nil {
		return fail(l, "get_user_orders", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetAllOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_all_orders")

	who, err := requester(c)
	if err != nil {
		return err
	}

	orders, err := h.Svc.ListAllOrders(ctx, who)
	if err != nil {
		return fail(l, "get_all_orders", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_status", "invalid body", err)
	}

	order, err := h.Svc.UpdateStatus(ctx, c.Param("id"), req)
	if err != nil {
		return fail(l, "update_status", err)
	}

	l.Info("update_status_success", "order_id", order.OrderID)
	return c.JSON(http.StatusOK, order)
}
