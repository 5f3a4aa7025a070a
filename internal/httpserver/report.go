package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/dp_pos/internal/service"
	"github.com/Skotchmaster/dp_pos/pkg/logging"
)

type ReportHTTP struct {
	Svc      *service.ReportService
	Invoices *service.InvoiceService
}

func (h *ReportHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.dashboard")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}

	d, err := h.Svc.Dashboard(ctx, sess)
	if err != nil {
		return fail(l, "dashboard_error", err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *ReportHTTP) OrderStats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.order_stats")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}

	today, _ := strconv.ParseBool(c.QueryParam("today"))
	s, err := h.Svc.OrderStats(ctx, sess, today)
	if err != nil {
		return fail(l, "order_stats_error", err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *ReportHTTP) CustomerSummaries(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.customer_summaries")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}

	rows, err := h.Svc.CustomerSummaries(ctx, sess)
	if err != nil {
		return fail(l, "customer_summaries_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": rows})
}

func (h *ReportHTTP) CustomerInvoice(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.customer_invoice")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := parseID(l, "customer_invoice_error", c)
	if err != nil {
		return err
	}

	v, err := h.Invoices.CustomerInvoice(ctx, sess, id)
	if err != nil {
		return fail(l, "customer_invoice_error", err)
	}
	return writeInvoice(c, v)
}
