package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/dp_pos/internal/models"
)

type InvoiceLine struct {
	ItemID   *uuid.UUID      `json:"itemId,omitempty"`
	ItemName string          `json:"itemName"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

type InvoiceView struct {
	ID            string             `json:"id"`
	CustomerName  string             `json:"customerName"`
	CustomerPhone string             `json:"customerPhone"`
	Branch        string             `json:"branch"`
	OrderIDs      []uuid.UUID        `json:"orderIds"`
	Items         []InvoiceLine      `json:"items"`
	TotalAmount   decimal.Decimal    `json:"totalAmount"`
	PaidAmount    decimal.Decimal    `json:"paidAmount"`
	BalanceAmount decimal.Decimal    `json:"balanceAmount"`
	Status        models.OrderStatus `json:"status"`
	Date          time.Time          `json:"date"`
}

// MergeKey groups invoice lines. Catalog lines merge by item id; free-text
// lines fall back to their name, which can fold distinct custom entries
// that happen to share a name.
func MergeKey(it models.OrderItem) string {
	if it.ItemID != nil && *it.ItemID != uuid.Nil {
		return "id:" + it.ItemID.String()
	}
	return "name:" + strings.TrimSpace(it.ItemName)
}

// ComposeInvoice merges the lines of orders into one printable view. The
// first occurrence of a line, in creation order, decides its displayed price.
// The input slice is not modified.
func ComposeInvoice(orders []models.Order) InvoiceView {
	sorted := make([]models.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID.String() < sorted[j].ID.String()
	})

	var v InvoiceView
	index := map[string]int{}
	keys := []string{}
	paid := decimal.Zero

	for _, o := range sorted {
		v.OrderIDs = append(v.OrderIDs, o.ID)
		paid = paid.Add(o.PaidAmount)
		if o.CreatedAt.After(v.Date) {
			v.Date = o.CreatedAt
		}

		items := make([]models.OrderItem, len(o.Items))
		copy(items, o.Items)
		sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })

		for _, it := range items {
			key := MergeKey(it)
			if i, ok := index[key]; ok {
				v.Items[i].Quantity += it.Quantity
				v.Items[i].Total = v.Items[i].Total.Add(it.Total)
				continue
			}
			price := it.Price
			if price.IsZero() && it.Quantity > 0 {
				price = it.Total.Div(decimal.NewFromInt(int64(it.Quantity))).Round(2)
			}
			index[key] = len(v.Items)
			keys = append(keys, key)
			v.Items = append(v.Items, InvoiceLine{
				ItemID:   it.ItemID,
				ItemName: it.ItemName,
				Quantity: it.Quantity,
				Price:    price,
				Total:    it.Total,
			})
		}
	}

	// Stable output regardless of which order came first.
	order := make([]int, len(v.Items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return keys[order[a]] < keys[order[b]] })
	lines := make([]InvoiceLine, 0, len(v.Items))
	total := decimal.Zero
	for _, i := range order {
		lines = append(lines, v.Items[i])
		total = total.Add(v.Items[i].Total)
	}
	v.Items = lines

	v.TotalAmount = total
	v.PaidAmount = paid
	v.BalanceAmount = total.Sub(paid)
	v.Status = StatusFor(v.BalanceAmount)

	if len(sorted) > 0 {
		last := sorted[len(sorted)-1]
		v.CustomerName = last.CustomerName
		v.CustomerPhone = last.CustomerPhone
		v.Branch = last.Branch
		if len(sorted) == 1 {
			v.ID = last.ID.String()
		} else {
			v.ID = "combined-" + last.CustomerPhone
		}
	}
	return v
}
