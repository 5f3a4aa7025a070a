package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/dp_pos/internal/models"
)

const LowStockThreshold = 10

type CustomerSummary struct {
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
	TotalOrders   int             `json:"totalOrders"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`
	TotalBalance  decimal.Decimal `json:"totalBalance"`
}

// GroupByCustomer sums orders per customer phone. Cancelled orders are left
// out. The result is sorted by phone.
func GroupByCustomer(orders []models.Order) []CustomerSummary {
	byPhone := map[string]*CustomerSummary{}
	for _, o := range orders {
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		s, ok := byPhone[o.CustomerPhone]
		if !ok {
			s = &CustomerSummary{CustomerName: o.CustomerName, CustomerPhone: o.CustomerPhone}
			byPhone[o.CustomerPhone] = s
		}
		s.TotalOrders++
		s.TotalAmount = s.TotalAmount.Add(o.TotalAmount)
		s.TotalPaid = s.TotalPaid.Add(o.PaidAmount)
		s.TotalBalance = s.TotalBalance.Add(o.BalanceAmount)
	}

	out := make([]CustomerSummary, 0, len(byPhone))
	for _, s := range byPhone {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerPhone < out[j].CustomerPhone })
	return out
}

// SameDay compares calendar dates in now's location.
func SameDay(t, now time.Time) bool {
	ty, tm, td := t.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	return ty == ny && tm == nm && td == nd
}

func OrdersOn(orders []models.Order, now time.Time) []models.Order {
	out := []models.Order{}
	for _, o := range orders {
		if SameDay(o.CreatedAt, now) {
			out = append(out, o)
		}
	}
	return out
}

func LowStock(items []models.Item) []models.Item {
	out := []models.Item{}
	for _, it := range items {
		if it.Qty < LowStockThreshold {
			out = append(out, it)
		}
	}
	return out
}

func StockValue(items []models.Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return sum
}

type OrderStats struct {
	Total        int             `json:"total"`
	Pending      int             `json:"pending"`
	Completed    int             `json:"completed"`
	Cancelled    int             `json:"cancelled"`
	PendingValue decimal.Decimal `json:"pendingValue"`
	Revenue      decimal.Decimal `json:"revenue"`
}

func StatsFor(orders []models.Order) OrderStats {
	var s OrderStats
	for _, o := range orders {
		s.Total++
		switch o.Status {
		case models.OrderStatusPending:
			s.Pending++
			s.PendingValue = s.PendingValue.Add(o.BalanceAmount)
		case models.OrderStatusCompleted:
			s.Completed++
			s.Revenue = s.Revenue.Add(o.TotalAmount)
		case models.OrderStatusCancelled:
			s.Cancelled++
		}
	}
	return s
}

type Dashboard struct {
	TodayOrders      int             `json:"todayOrders"`
	TodayCustomers   int             `json:"todayCustomers"`
	TodayItemsSold   int             `json:"todayItemsSold"`
	TodayIncome      decimal.Decimal `json:"todayIncome"`
	LowStockItems    int             `json:"lowStockItems"`
	StockValue       decimal.Decimal `json:"stockValue"`
	CustomersOwing   int             `json:"customersOwing"`
	CustomersSettled int             `json:"customersSettled"`
	Orders           OrderStats      `json:"orders"`
}

func BuildDashboard(customers []models.Customer, items []models.Item, orders []models.Order, now time.Time) Dashboard {
	d := Dashboard{
		LowStockItems: len(LowStock(items)),
		StockValue:    StockValue(items),
		Orders:        StatsFor(orders),
	}

	phones := map[string]struct{}{}
	for _, o := range OrdersOn(orders, now) {
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		d.TodayOrders++
		phones[o.CustomerPhone] = struct{}{}
		d.TodayIncome = d.TodayIncome.Add(o.TotalAmount)
		for _, it := range o.Items {
			d.TodayItemsSold += it.Quantity
		}
	}
	d.TodayCustomers = len(phones)

	for _, c := range customers {
		if c.Balance.IsPositive() {
			d.CustomersOwing++
		} else {
			d.CustomersSettled++
		}
	}
	return d
}
