package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/dp_pos/internal/models"
)

func TestGroupByCustomer(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := order(now, "150", line("A4 Print", 2, "100"))
	b := order(now, "0", line("Case", 1, "40"))
	c := order(now, "0", line("Mug", 1, "300"))
	c.CustomerPhone, c.CustomerName = "0710000000", "Kamal"
	cancelled := order(now, "0", line("Banner", 1, "900"))
	cancelled.Status = models.OrderStatusCancelled

	got := GroupByCustomer([]models.Order{a, b, c, cancelled})
	require.Len(t, got, 2)

	assert.Equal(t, "0710000000", got[0].CustomerPhone)
	assert.Equal(t, 1, got[0].TotalOrders)

	nimal := got[1]
	assert.Equal(t, "Nimal", nimal.CustomerName)
	assert.Equal(t, 2, nimal.TotalOrders)
	assert.Equal(t, "240.00", nimal.TotalAmount.StringFixed(2))
	assert.Equal(t, "150.00", nimal.TotalPaid.StringFixed(2))
	assert.Equal(t, "90.00", nimal.TotalBalance.StringFixed(2))
}

func TestSameDay_UsesLocalCalendar(t *testing.T) {
	t.Parallel()

	colombo := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, 3, 10, 0, 30, 0, 0, colombo)

	// 19:15 UTC on the 9th is already the 10th in Colombo.
	assert.True(t, SameDay(time.Date(2026, 3, 9, 19, 15, 0, 0, time.UTC), now))
	assert.False(t, SameDay(time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC), now))
	assert.False(t, SameDay(time.Date(2025, 3, 10, 1, 0, 0, 0, colombo), now))
}

func TestLowStockAndStockValue(t *testing.T) {
	t.Parallel()

	items := []models.Item{
		{ItemName: "Case", Qty: 9, UnitPrice: dec("10")},
		{ItemName: "Mug", Qty: 10, UnitPrice: dec("250")},
		{ItemName: "Paper", Qty: 0, UnitPrice: dec("2.5")},
	}

	low := LowStock(items)
	require.Len(t, low, 2)
	assert.Equal(t, "Case", low[0].ItemName)
	assert.Equal(t, "Paper", low[1].ItemName)
	assert.Equal(t, "2590.00", StockValue(items).StringFixed(2))
}

func TestStatsFor(t *testing.T) {
	t.Parallel()

	now := time.Now()
	pending := order(now, "150", line("A4 Print", 2, "100"))
	done := order(now, "40", line("Case", 1, "40"))
	cancelled := order(now, "0", line("Banner", 1, "900"))
	cancelled.Status = models.OrderStatusCancelled

	s := StatsFor([]models.Order{pending, done, cancelled})
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 1, s.Cancelled)
	assert.Equal(t, "50.00", s.PendingValue.StringFixed(2))
	assert.Equal(t, "40.00", s.Revenue.StringFixed(2))
}

func TestBuildDashboard(t *testing.T) {
	t.Parallel()

	now := time.Now()
	today1 := order(now, "150", line("A4 Print", 2, "100"))
	today2 := order(now, "0", line("Case", 3, "10"))
	old := order(now.AddDate(0, 0, -2), "0", line("Mug", 5, "250"))

	customers := []models.Customer{
		{Phone: "0771234567", Balance: dec("80")},
		{Phone: "0710000000", Balance: dec("0")},
	}
	items := []models.Item{{ItemName: "Case", Qty: 4, UnitPrice: dec("10")}}

	d := BuildDashboard(customers, items, []models.Order{today1, today2, old}, now)
	assert.Equal(t, 2, d.TodayOrders)
	assert.Equal(t, 1, d.TodayCustomers)
	assert.Equal(t, 5, d.TodayItemsSold)
	assert.Equal(t, "230.00", d.TodayIncome.StringFixed(2))
	assert.Equal(t, 1, d.LowStockItems)
	assert.Equal(t, "40.00", d.StockValue.StringFixed(2))
	assert.Equal(t, 1, d.CustomersOwing)
	assert.Equal(t, 1, d.CustomersSettled)
	assert.Equal(t, 3, d.Orders.Total)
}
