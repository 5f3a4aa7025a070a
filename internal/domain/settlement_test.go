package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/dp_pos/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSettle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		total   string
		paid    string
		balance string
		status  models.OrderStatus
	}{
		{name: "partial payment", total: "200", paid: "150", balance: "50.00", status: models.OrderStatusPending},
		{name: "nothing paid", total: "99.99", paid: "0", balance: "99.99", status: models.OrderStatusPending},
		{name: "paid in full", total: "200", paid: "200", balance: "0.00", status: models.OrderStatusCompleted},
		{name: "overpaid clamps", total: "200", paid: "250", balance: "0.00", status: models.OrderStatusCompleted},
		{name: "free order", total: "0", paid: "0", balance: "0.00", status: models.OrderStatusCompleted},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Settle(dec(tt.total), dec(tt.paid))
			assert.Equal(t, tt.balance, got.Balance.StringFixed(2))
			assert.Equal(t, tt.status, got.Status)
		})
	}
}

func TestBuildItems_RecomputesLineTotals(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	items, total := BuildItems([]Line{
		{ItemID: &id, ItemName: "A4 Print", Quantity: 2, Price: dec("100")},
		{ItemName: "Lamination", Quantity: 3, Price: dec("12.50")},
	})

	require.Len(t, items, 2)
	assert.Equal(t, "200.00", items[0].Total.StringFixed(2))
	assert.Equal(t, "37.50", items[1].Total.StringFixed(2))
	assert.Equal(t, 1, items[1].Position)
	assert.Equal(t, "237.50", total.StringFixed(2))
}

func TestLineTotal_IsExact(t *testing.T) {
	t.Parallel()

	price := dec("0.333")
	got := LineTotal(3, price)
	assert.True(t, got.Equal(price.Mul(decimal.NewFromInt(3))), got.String())
	assert.Equal(t, "0.999", got.String())
}

func TestWholeCents(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"0", "10", "12.5", "12.50", "12.500", "-3.25"} {
		assert.True(t, WholeCents(dec(s)), s)
	}
	for _, s := range []string{"0.333", "49.999", "0.001"} {
		assert.False(t, WholeCents(dec(s)), s)
	}
}

func TestReprice_KeepsInvariant(t *testing.T) {
	t.Parallel()

	o := models.Order{
		PaidAmount: dec("10"),
		Status:     models.OrderStatusPending,
		Items: []models.OrderItem{
			{ItemName: "Case", Quantity: 4, Price: dec("5"), Total: dec("999")},
		},
	}
	Reprice(&o)

	assert.Equal(t, "20.00", o.Items[0].Total.StringFixed(2))
	assert.Equal(t, "20.00", o.TotalAmount.StringFixed(2))
	assert.Equal(t, "10.00", o.BalanceAmount.StringFixed(2))
	assert.Equal(t, models.OrderStatusPending, o.Status)

	o.Status = models.OrderStatusCancelled
	o.PaidAmount = dec("20")
	Reprice(&o)
	assert.Equal(t, models.OrderStatusCancelled, o.Status)
	assert.True(t, o.BalanceAmount.IsZero())
}

func TestApplyPayment(t *testing.T) {
	t.Parallel()

	o := models.Order{TotalAmount: dec("200"), PaidAmount: dec("150"), BalanceAmount: dec("50")}

	got := ApplyPayment(o, dec("20"))
	assert.Equal(t, "170.00", got.Paid.StringFixed(2))
	assert.Equal(t, "30.00", got.Balance.StringFixed(2))
	assert.Equal(t, models.OrderStatusPending, got.Status)

	got = ApplyPayment(o, dec("50"))
	assert.Equal(t, "200.00", got.Paid.StringFixed(2))
	assert.True(t, got.Balance.IsZero())
	assert.Equal(t, models.OrderStatusCompleted, got.Status)

	got = ApplyPayment(o, dec("80"))
	assert.True(t, got.Balance.IsZero(), "balance never goes negative")
}

func TestApplyPayment_InstallmentsReachZero(t *testing.T) {
	t.Parallel()

	o := models.Order{TotalAmount: dec("100"), PaidAmount: dec("0"), BalanceAmount: dec("100")}
	for _, amt := range []string{"33.33", "33.33", "33.34"} {
		next := ApplyPayment(o, dec(amt))
		o.PaidAmount, o.BalanceAmount, o.Status = next.Paid, next.Balance, next.Status
	}

	assert.True(t, o.BalanceAmount.IsZero())
	assert.Equal(t, models.OrderStatusCompleted, o.Status)
	assert.Equal(t, "100.00", o.PaidAmount.StringFixed(2))
}

func TestOutstandingBalance_SkipsCancelled(t *testing.T) {
	t.Parallel()

	orders := []models.Order{
		{BalanceAmount: dec("50"), Status: models.OrderStatusPending},
		{BalanceAmount: dec("0"), Status: models.OrderStatusCompleted},
		{BalanceAmount: dec("70"), Status: models.OrderStatusCancelled},
		{BalanceAmount: dec("12.5"), Status: models.OrderStatusPending},
	}
	assert.Equal(t, "62.50", OutstandingBalance(orders).StringFixed(2))
}
