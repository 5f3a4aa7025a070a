package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/dp_pos/internal/models"
	"github.com/Skotchmaster/dp_pos/internal/transport"
)

func customOrder(phone, paid string, lines ...transport.CreateOrderLine) transport.CreateOrderRequest {
	return transport.CreateOrderRequest{
		OrderType:     string(models.OrderTypeCustom),
		CustomerName:  "Walk-in",
		CustomerPhone: phone,
		Items:         lines,
		PaidAmount:    dec(paid),
	}
}

func TestCustomerInvoice_MergesOpenOrders(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	ctx := context.Background()
	svc := &InvoiceService{Customers: env.repo, Orders: env.repo, StepTimeout: time.Second}
	c := env.customer(t, "Nimal", "0771234567", models.BranchHead)

	_, err := env.orders.CreateOrder(ctx, headUser, customOrder(c.Phone, "0",
		transport.CreateOrderLine{ItemName: "Case", Quantity: 2, Price: dec("10")}), "")
	require.NoError(t, err)
	_, err = env.orders.CreateOrder(ctx, headUser, customOrder(c.Phone, "5",
		transport.CreateOrderLine{ItemName: "Case", Quantity: 3, Price: dec("10")}), "")
	require.NoError(t, err)
	// Settled jobs stay off the combined invoice.
	_, err = env.orders.CreateOrder(ctx, headUser, customOrder(c.Phone, "99",
		transport.CreateOrderLine{ItemName: "Banner", Quantity: 1, Price: dec("99")}), "")
	require.NoError(t, err)

	v, err := svc.CustomerInvoice(ctx, headUser, c.ID)
	require.NoError(t, err)

	assert.Equal(t, "combined-"+c.Phone, v.ID)
	assert.Equal(t, "Nimal", v.CustomerName)
	assert.Len(t, v.OrderIDs, 2)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "Case", v.Items[0].ItemName)
	assert.Equal(t, 5, v.Items[0].Quantity)
	assert.Equal(t, "10.00", v.Items[0].Price.StringFixed(2))
	assert.Equal(t, "50.00", v.Items[0].Total.StringFixed(2))
	assert.Equal(t, "50.00", v.TotalAmount.StringFixed(2))
	assert.Equal(t, "5.00", v.PaidAmount.StringFixed(2))
	assert.Equal(t, "45.00", v.BalanceAmount.StringFixed(2))
	assert.Equal(t, models.OrderStatusPending, v.Status)

	_, err = svc.CustomerInvoice(ctx, subUser, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerInvoice_NoOpenOrders(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	svc := &InvoiceService{Customers: env.repo, Orders: env.repo, StepTimeout: time.Second}
	c := env.customer(t, "Nimal", "0771234567", models.BranchHead)

	v, err := svc.CustomerInvoice(context.Background(), headUser, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "combined-0771234567", v.ID)
	assert.Empty(t, v.Items)
	assert.NotNil(t, v.Items)
	assert.Empty(t, v.OrderIDs)
	assert.True(t, v.TotalAmount.IsZero())
	assert.Equal(t, models.BranchHead, v.Branch)
}

func TestOrderInvoice(t *testing.T) {
	t.Parallel()

	env := newEnv(t)
	ctx := context.Background()
	svc := &InvoiceService{Customers: env.repo, Orders: env.repo, StepTimeout: time.Second}
	c := env.customer(t, "Nimal", "0771234567", models.BranchHead)
	it := env.item(t, "A4 Print", 20, "10")

	res, err := env.orders.CreateOrder(ctx, headUser, standardOrder(c, "20", catalogLine(it, 4)), "")
	require.NoError(t, err)

	v, err := svc.OrderInvoice(ctx, headUser, res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Order.ID.String(), v.ID)
	require.Len(t, v.Items, 1)
	assert.Equal(t, 4, v.Items[0].Quantity)
	assert.Equal(t, "40.00", v.TotalAmount.StringFixed(2))
	assert.Equal(t, "20.00", v.BalanceAmount.StringFixed(2))

	_, err = svc.OrderInvoice(ctx, headUser, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
