package httpserver

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/dp_pos/internal/domain"
	"github.com/Skotchmaster/dp_pos/internal/service"
	"github.com/Skotchmaster/dp_pos/internal/transport"
	"github.com/Skotchmaster/dp_pos/pkg/logging"
)

const headerIdempotencyKey = "Idempotency-Key"

type OrderHTTP struct {
	Svc      *service.OrderService
	Invoices *service.InvoiceService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}

	p := pageFrom(c)
	today, _ := strconv.ParseBool(c.QueryParam("today"))
	total, orders, err := h.Svc.ListOrders(ctx, sess, service.OrderQuery{
		Status: c.QueryParam("status"),
		Type:   c.QueryParam("type"),
		Phone:  c.QueryParam("phone"),
		Today:  today,
		Offset: p.offset,
		Limit:  p.limit,
	})
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, paged(p, total, orders))
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := parseID(l, "get_order_error", c)
	if err != nil {
		return err
	}

	o, err := h.Svc.GetOrder(ctx, sess, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}

	var req transport.CreateOrderRequest
	if err := bind(l, "create_order_error", c, &req); err != nil {
		return err
	}
	res, err := h.Svc.CreateOrder(ctx, sess, req, c.Request().Header.Get(headerIdempotencyKey))
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	return c.JSON(status, res)
}

func (h *OrderHTTP) RecordPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.record_payment")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := parseID(l, "record_payment_error", c)
	if err != nil {
		return err
	}

	var req transport.PaymentRequest
	if err := bind(l, "record_payment_error", c, &req); err != nil {
		return err
	}
	res, err := h.Svc.RecordPayment(ctx, sess, id, req.Amount, c.Request().Header.Get(headerIdempotencyKey))
	if err != nil {
		return fail(l, "record_payment_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel_order")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := parseID(l, "cancel_order_error", c)
	if err != nil {
		return err
	}

	res, err := h.Svc.CancelOrder(ctx, sess, id)
	if err != nil {
		return fail(l, "cancel_order_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete_order")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := parseID(l, "delete_order_error", c)
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteOrder(ctx, sess, id); err != nil {
		return fail(l, "delete_order_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHTTP) Invoice(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.invoice")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := parseID(l, "invoice_error", c)
	if err != nil {
		return err
	}

	v, err := h.Invoices.OrderInvoice(ctx, sess, id)
	if err != nil {
		return fail(l, "invoice_error", err)
	}
	return writeInvoice(c, v)
}

// writeInvoice answers with JSON, or a printable receipt for ?format=text.
func writeInvoice(c echo.Context, v domain.InvoiceView) error {
	if c.QueryParam("format") != "text" {
		return c.JSON(http.StatusOK, v)
	}
	var buf bytes.Buffer
	if err := domain.WriteReceipt(&buf, v); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot render receipt")
	}
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, buf.Bytes())
}
