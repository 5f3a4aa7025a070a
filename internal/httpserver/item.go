package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/dp_pos/internal/service"
	"github.com/Skotchmaster/dp_pos/internal/transport"
	"github.com/Skotchmaster/dp_pos/pkg/logging"
)

type ItemHTTP struct {
	Svc *service.ItemService
}

func (h *ItemHTTP) ListItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.list_items")

	p := pageFrom(c)
	total, items, err := h.Svc.ListItems(ctx, p.offset, p.limit)
	if err != nil {
		return fail(l, "list_items_error", err)
	}
	return c.JSON(http.StatusOK, paged(p, total, items))
}

func (h *ItemHTTP) GetItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.get_item")
	id, err := parseID(l, "get_item_error", c)
	if err != nil {
		return err
	}

	it, err := h.Svc.GetItem(ctx, id)
	if err != nil {
		return fail(l, "get_item_error", err)
	}
	return c.JSON(http.StatusOK, it)
}

func (h *ItemHTTP) LowStock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.low_stock")

	items, err := h.Svc.LowStock(ctx)
	if err != nil {
		return fail(l, "low_stock_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": items})
}

func (h *ItemHTTP) SearchItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.search_items")

	p := pageFrom(c)
	total, items, err := h.Svc.SearchItems(ctx, c.QueryParam("q"), p.offset, p.limit)
	if err != nil {
		return fail(l, "search_items_error", err)
	}
	return c.JSON(http.StatusOK, paged(p, total, items))
}

func (h *ItemHTTP) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.create_item")

	var req transport.CreateItemRequest
	if err := bind(l, "create_item_error", c, &req); err != nil {
		return err
	}
	it, err := h.Svc.CreateItem(ctx, req)
	if err != nil {
		return fail(l, "create_item_error", err)
	}

	l.Info("create_item_success", "item_id", it.ID)
	return c.JSON(http.StatusCreated, it)
}

func (h *ItemHTTP) PatchItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.patch_item")
	id, err := parseID(l, "patch_item_error", c)
	if err != nil {
		return err
	}

	var req transport.PatchItemRequest
	if err := bind(l, "patch_item_error", c, &req); err != nil {
		return err
	}
	it, err := h.Svc.PatchItem(ctx, id, req)
	if err != nil {
		return fail(l, "patch_item_error", err)
	}

	l.Info("patch_item_success", "item_id", id)
	return c.JSON(http.StatusOK, it)
}

func (h *ItemHTTP) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.delete_item")
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	id, err := parseID(l, "delete_item_error", c)
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteItem(ctx, sess, id); err != nil {
		return fail(l, "delete_item_error", err)
	}

	l.Info("delete_item_success", "item_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *ItemHTTP) Reindex(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.reindex")

	n, err := h.Svc.Reindex(ctx)
	if err != nil {
		return fail(l, "reindex_error", err)
	}

	l.Info("reindex_success", "items", n)
	return c.JSON(http.StatusOK, map[string]any{"indexed": n})
}
