// Package domain holds the pure money math behind orders, payments, invoices
// and the reporting views. Nothing here touches storage.
package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/dp_pos/internal/models"
)

// Line is a priced order line before it is persisted.
type Line struct {
	ItemID   *uuid.UUID
	ItemName string
	Quantity int
	Price    decimal.Decimal
}

type Totals struct {
	Total   decimal.Decimal
	Paid    decimal.Decimal
	Balance decimal.Decimal
	Status  models.OrderStatus
}

// LineTotal is exact: prices carry at most two decimal places, so the
// product does too.
func LineTotal(quantity int, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// WholeCents reports whether d fits a money column without rounding.
func WholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2))
}

// StatusFor derives the status of an order that is not cancelled.
func StatusFor(balance decimal.Decimal) models.OrderStatus {
	if balance.IsPositive() {
		return models.OrderStatusPending
	}
	return models.OrderStatusCompleted
}

// Settle computes balance and status from a total and the amount paid so far.
// Overpayment clamps the balance at zero.
func Settle(total, paid decimal.Decimal) Totals {
	balance := total.Sub(paid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	return Totals{
		Total:   total,
		Paid:    paid,
		Balance: balance,
		Status:  StatusFor(balance),
	}
}

// BuildItems turns priced lines into order items with their totals recomputed,
// and returns the order total.
func BuildItems(lines []Line) ([]models.OrderItem, decimal.Decimal) {
	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero
	for i, l := range lines {
		lt := LineTotal(l.Quantity, l.Price)
		items = append(items, models.OrderItem{
			ItemID:   l.ItemID,
			ItemName: l.ItemName,
			Quantity: l.Quantity,
			Price:    l.Price,
			Total:    lt,
			Position: i,
		})
		total = total.Add(lt)
	}
	return items, total
}

// Reprice recomputes every line total and the order figures in place,
// keeping the paid amount. Cancelled orders keep their status.
func Reprice(o *models.Order) {
	total := decimal.Zero
	for i := range o.Items {
		o.Items[i].Total = LineTotal(o.Items[i].Quantity, o.Items[i].Price)
		total = total.Add(o.Items[i].Total)
	}
	t := Settle(total, o.PaidAmount)
	o.TotalAmount, o.BalanceAmount = t.Total, t.Balance
	if o.Status != models.OrderStatusCancelled {
		o.Status = t.Status
	}
}

// ApplyPayment returns the order figures after receiving amount. The balance
// never drops below zero; callers reject overpayment before getting here.
func ApplyPayment(o models.Order, amount decimal.Decimal) Totals {
	paid := o.PaidAmount.Add(amount)
	balance := o.BalanceAmount.Sub(amount)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	return Totals{
		Total:   o.TotalAmount,
		Paid:    paid,
		Balance: balance,
		Status:  StatusFor(balance),
	}
}

// OutstandingBalance is what a customer owes across orders: the sum of
// balances of every order that is not cancelled.
func OutstandingBalance(orders []models.Order) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range orders {
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		sum = sum.Add(o.BalanceAmount)
	}
	return sum
}
