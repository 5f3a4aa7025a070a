package domain

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/dp_pos/internal/models"
)

func order(created time.Time, paid string, items ...models.OrderItem) models.Order {
	o := models.Order{
		ID:            uuid.New(),
		CustomerName:  "Nimal",
		CustomerPhone: "0771234567",
		Branch:        models.BranchHead,
		PaidAmount:    dec(paid),
		CreatedAt:     created,
		Items:         items,
	}
	Reprice(&o)
	return o
}

func line(name string, qty int, price string) models.OrderItem {
	return models.OrderItem{ItemName: name, Quantity: qty, Price: dec(price)}
}

func TestComposeInvoice_MergesByName(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := order(now.Add(-time.Hour), "0", line("Case", 2, "10"))
	b := order(now, "15", line("Case", 3, "10"))

	v := ComposeInvoice([]models.Order{a, b})
	require.Len(t, v.Items, 1)
	assert.Equal(t, "Case", v.Items[0].ItemName)
	assert.Equal(t, 5, v.Items[0].Quantity)
	assert.Equal(t, "50.00", v.Items[0].Total.StringFixed(2))
	assert.Equal(t, "50.00", v.TotalAmount.StringFixed(2))
	assert.Equal(t, "15.00", v.PaidAmount.StringFixed(2))
	assert.Equal(t, "35.00", v.BalanceAmount.StringFixed(2))
	assert.Equal(t, models.OrderStatusPending, v.Status)
	assert.Equal(t, "combined-0771234567", v.ID)
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, v.OrderIDs)
}

func TestComposeInvoice_IDKeyWinsOverName(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	now := time.Now()
	catalog := models.OrderItem{ItemID: &id, ItemName: "Case", Quantity: 1, Price: dec("10")}
	renamed := models.OrderItem{ItemID: &id, ItemName: "Phone Case", Quantity: 1, Price: dec("12")}
	free := line("Case", 1, "8")

	v := ComposeInvoice([]models.Order{
		order(now.Add(-time.Minute), "0", catalog, free),
		order(now, "0", renamed),
	})

	require.Len(t, v.Items, 2)
	byKey := map[string]InvoiceLine{}
	for _, l := range v.Items {
		if l.ItemID != nil {
			byKey["id"] = l
		} else {
			byKey["name"] = l
		}
	}
	assert.Equal(t, 2, byKey["id"].Quantity)
	assert.Equal(t, "Case", byKey["id"].ItemName, "first occurrence names the line")
	assert.Equal(t, "10.00", byKey["id"].Price.StringFixed(2), "first occurrence sets the price")
	assert.Equal(t, "22.00", byKey["id"].Total.StringFixed(2))
	assert.Equal(t, 1, byKey["name"].Quantity)
}

func TestComposeInvoice_OrderIndependent(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := order(now.Add(-2*time.Hour), "20", line("Case", 2, "10"), line("Banner", 1, "500"))
	b := order(now.Add(-time.Hour), "0", line("Case", 3, "11"))
	c := order(now, "100", line("Mug", 4, "250"))

	first := ComposeInvoice([]models.Order{a, b, c})
	second := ComposeInvoice([]models.Order{c, a, b})
	third := ComposeInvoice([]models.Order{b, c, a})

	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
	assert.Equal(t, first, ComposeInvoice([]models.Order{a, b, c}), "composing twice gives the same view")
}

func TestComposeInvoice_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	now := time.Now()
	orders := []models.Order{
		order(now, "0", line("Case", 3, "10")),
		order(now.Add(-time.Hour), "0", line("Case", 2, "10")),
	}
	before := orders[0]

	_ = ComposeInvoice(orders)
	assert.Equal(t, before, orders[0])
	assert.Equal(t, 3, orders[0].Items[0].Quantity)
}

func TestComposeInvoice_PriceFallsBackToAverage(t *testing.T) {
	t.Parallel()

	o := order(time.Now(), "0")
	o.Items = []models.OrderItem{{ItemName: "Design fee", Quantity: 4, Total: dec("100")}}
	o.TotalAmount = dec("100")

	v := ComposeInvoice([]models.Order{o})
	require.Len(t, v.Items, 1)
	assert.Equal(t, "25.00", v.Items[0].Price.StringFixed(2))
	assert.Equal(t, o.ID.String(), v.ID)
}

func TestComposeInvoice_Empty(t *testing.T) {
	t.Parallel()

	v := ComposeInvoice(nil)
	assert.Empty(t, v.Items)
	assert.True(t, v.TotalAmount.IsZero())
	assert.Equal(t, models.OrderStatusCompleted, v.Status)
}

func TestWriteReceipt(t *testing.T) {
	t.Parallel()

	v := ComposeInvoice([]models.Order{order(time.Now(), "150", line("A4 Print", 2, "100"))})

	var buf bytes.Buffer
	require.NoError(t, WriteReceipt(&buf, v))
	out := buf.String()
	assert.Contains(t, out, "DP Communication")
	assert.Contains(t, out, "A4 Print")
	assert.Contains(t, out, "LKR 200.00")
	assert.Contains(t, out, "LKR 50.00")
}
