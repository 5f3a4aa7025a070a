package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/dp_pos/internal/models"
	"github.com/Skotchmaster/dp_pos/internal/transport"
)

func TestReports(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	ctx := context.Background()
	nimal := env.customer(t, "Nimal", "0771234567", models.BranchHead)
	kamal := env.customer(t, "Kamal", "0712222222", models.BranchHead)
	env.customer(t, "Sunil", "0703333333", models.BranchSub)
	a4 := env.item(t, "A4 Print", 20, "10")
	env.item(t, "Binding", 5, "100")

	_, err := env.orders.CreateOrder(ctx, headUser, standardOrder(nimal, "10", catalogLine(a4, 3)), "")
	require.NoError(t, err)
	_, err = env.orders.CreateOrder(ctx, headUser, standardOrder(kamal, "20", catalogLine(a4, 2)), "")
	require.NoError(t, err)
	cancelled, err := env.orders.CreateOrder(ctx, headUser, standardOrder(kamal, "0", catalogLine(a4, 1)), "")
	require.NoError(t, err)
	_, err = env.orders.CancelOrder(ctx, headUser, cancelled.Order.ID)
	require.NoError(t, err)
	_, err = env.orders.CreateOrder(ctx, subUser, customOrder("0709999999", "0",
		transport.CreateOrderLine{ItemName: "Banner", Quantity: 1, Price: dec("500")}), "")
	require.NoError(t, err)

	svc := &ReportService{
		Customers:   env.repo,
		Items:       env.repo,
		Orders:      env.repo,
		StepTimeout: time.Second,
		Now:         func() time.Time { return cancelled.Order.CreatedAt },
	}

	t.Run("dashboard", func(t *testing.T) {
		d, err := svc.Dashboard(ctx, headUser)
		require.NoError(t, err)
		assert.Equal(t, 2, d.TodayOrders)
		assert.Equal(t, 2, d.TodayCustomers)
		assert.Equal(t, 5, d.TodayItemsSold)
		assert.Equal(t, "50.00", d.TodayIncome.StringFixed(2))
		assert.Equal(t, 1, d.LowStockItems, "binding is below the threshold")
		// 15 prints at 10 plus 5 bindings at 100.
		assert.Equal(t, "650.00", d.StockValue.StringFixed(2))
		assert.Equal(t, 1, d.CustomersOwing)
		assert.Equal(t, 1, d.CustomersSettled)
		assert.Equal(t, 3, d.Orders.Total)
	})

	t.Run("order stats", func(t *testing.T) {
		s, err := svc.OrderStats(ctx, headUser, false)
		require.NoError(t, err)
		assert.Equal(t, 3, s.Total)
		assert.Equal(t, 1, s.Pending)
		assert.Equal(t, 1, s.Completed)
		assert.Equal(t, 1, s.Cancelled)
		assert.Equal(t, "20.00", s.PendingValue.StringFixed(2))
		assert.Equal(t, "20.00", s.Revenue.StringFixed(2))

		s, err = svc.OrderStats(ctx, subUser, true)
		require.NoError(t, err)
		assert.Equal(t, 1, s.Total)
	})

	t.Run("customer summaries", func(t *testing.T) {
		rows, err := svc.CustomerSummaries(ctx, headUser)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "0712222222", rows[0].CustomerPhone)
		assert.Equal(t, 1, rows[0].TotalOrders)
		assert.Equal(t, "0.00", rows[0].TotalBalance.StringFixed(2))
		assert.Equal(t, "Nimal", rows[1].CustomerName)
		assert.Equal(t, "20.00", rows[1].TotalBalance.StringFixed(2))
	})
}
