package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/dp_pos/internal/service"
	"github.com/Skotchmaster/dp_pos/internal/transport"
	"github.com/Skotchmaster/dp_pos/pkg/logging"
)

type CustomerHTTP struct {
	Svc *service.CustomerService
}

func (h *CustomerHTTP) ListCustomers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.list_customers")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}

	p := pageFrom(c)
	total, customers, err := h.Svc.ListCustomers(ctx, sess, p.offset, p.limit)
	if err != nil {
		return fail(l, "list_customers_error", err)
	}
	return c.JSON(http.StatusOK, paged(p, total, customers))
}

func (h *CustomerHTTP) GetCustomer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.get_customer")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := parseID(l, "get_customer_error", c)
	if err != nil {
		return err
	}

	cust, err := h.Svc.GetCustomer(ctx, sess, id)
	if err != nil {
		return fail(l, "get_customer_error", err)
	}
	return c.JSON(http.StatusOK, cust)
}

func (h *CustomerHTTP) CreateCustomer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.create_customer")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}

	var req transport.CreateCustomerRequest
	if err := bind(l, "create_customer_error", c, &req); err != nil {
		return err
	}
	cust, err := h.Svc.CreateCustomer(ctx, sess, req)
	if err != nil {
		return fail(l, "create_customer_error", err)
	}
	return c.JSON(http.StatusCreated, cust)
}

func (h *CustomerHTTP) PatchCustomer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.patch_customer")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := parseID(l, "patch_customer_error", c)
	if err != nil {
		return err
	}

	var req transport.PatchCustomerRequest
	if err := bind(l, "patch_customer_error", c, &req); err != nil {
		return err
	}
	cust, err := h.Svc.PatchCustomer(ctx, sess, id, req)
	if err != nil {
		return fail(l, "patch_customer_error", err)
	}

	l.Info("patch_customer_success", "customer_id", id)
	return c.JSON(http.StatusOK, cust)
}

func (h *CustomerHTTP) DeleteCustomer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.delete_customer")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := parseID(l, "delete_customer_error", c)
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteCustomer(ctx, sess, id); err != nil {
		return fail(l, "delete_customer_error", err)
	}

	l.Info("delete_customer_success", "customer_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CustomerHTTP) Recalculate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.recalculate")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := parseID(l, "recalculate_error", c)
	if err != nil {
		return err
	}

	cust, err := h.Svc.RecalculateBalance(ctx, sess, id)
	if err != nil {
		return fail(l, "recalculate_error", err)
	}
	return c.JSON(http.StatusOK, cust)
}

func (h *CustomerHTTP) SearchCustomers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.search_customers")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}

	p := pageFrom(c)
	total, customers, err := h.Svc.SearchCustomers(ctx, sess, c.QueryParam("q"), p.offset, p.limit)
	if err != nil {
		return fail(l, "search_customers_error", err)
	}
	return c.JSON(http.StatusOK, paged(p, total, customers))
}

func (h *CustomerHTTP) Remind(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.remind")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := parseID(l, "remind_error", c)
	if err != nil {
		return err
	}

	rep, err := h.Svc.Remind(ctx, sess, id)
	if err != nil {
		return fail(l, "remind_error", err)
	}

	l.Info("remind_done", "customer_id", id, "sent", rep.Sent)
	return c.JSON(http.StatusOK, rep)
}
