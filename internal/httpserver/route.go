package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	middleware "github.com/Skotchmaster/dp_pos/pkg/middleware/auth"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	AuthHandler     *AuthHTTP
	CustomerHandler *CustomerHTTP
	ItemHandler     *ItemHTTP
	OrderHandler    *OrderHTTP
	ReportHandler   *ReportHTTP
	JWTSecret       []byte
	Sessions        middleware.SessionStore
	Ready           []Pinger
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		for _, p := range d.Ready {
			if err := p.Ping(ctx); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	authMW := middleware.NewSessionMiddleware(d.JWTSecret, d.Sessions)

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.Logout, authMW.RequireAuth)

	customers := e.Group("/customers", authMW.RequireAuth)
	customers.GET("", d.CustomerHandler.ListCustomers)
	customers.POST("", d.CustomerHandler.CreateCustomer)
	customers.GET("/search", d.CustomerHandler.SearchCustomers)
	customers.GET("/:id", d.CustomerHandler.GetCustomer)
	customers.PATCH("/:id", d.CustomerHandler.PatchCustomer)
	customers.POST("/:id/recalculate", d.CustomerHandler.Recalculate)

	items := e.Group("/items", authMW.RequireAuth)
	items.GET("", d.ItemHandler.ListItems)
	items.POST("", d.ItemHandler.CreateItem)
	items.GET("/low-stock", d.ItemHandler.LowStock)
	items.GET("/search", d.ItemHandler.SearchItems)
	items.GET("/:id", d.ItemHandler.GetItem)
	items.PATCH("/:id", d.ItemHandler.PatchItem)

	orders := e.Group("/orders", authMW.RequireAuth)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.POST("/:id/payments", d.OrderHandler.RecordPayment)
	orders.POST("/:id/cancel", d.OrderHandler.CancelOrder)
	orders.GET("/:id/invoice", d.OrderHandler.Invoice)

	reports := e.Group("/reports", authMW.RequireAuth)
	reports.GET("/dashboard", d.ReportHandler.Dashboard)
	reports.GET("/orders", d.ReportHandler.OrderStats)

	e.DELETE("/customers/:id", d.CustomerHandler.DeleteCustomer, authMW.RequireAdmin)
	e.DELETE("/items/:id", d.ItemHandler.DeleteItem, authMW.RequireAdmin)
	e.DELETE("/orders/:id", d.OrderHandler.DeleteOrder, authMW.RequireAdmin)

	admin := e.Group("/management", authMW.RequireAdmin)
	admin.GET("/customers", d.ReportHandler.CustomerSummaries)
	admin.GET("/customers/:id/invoice", d.ReportHandler.CustomerInvoice)
	admin.POST("/customers/:id/remind", d.CustomerHandler.Remind)
	admin.POST("/users", d.AuthHandler.CreateUser)
	admin.POST("/items/reindex", d.ItemHandler.Reindex)
}
