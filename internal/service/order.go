package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/dp_pos/internal/domain"
	"github.com/Skotchmaster/dp_pos/internal/events"
	"github.com/Skotchmaster/dp_pos/internal/models"
	"github.com/Skotchmaster/dp_pos/internal/notify"
	"github.com/Skotchmaster/dp_pos/internal/repo"
	"github.com/Skotchmaster/dp_pos/internal/transport"
	"github.com/Skotchmaster/dp_pos/pkg/logging"
	"github.com/Skotchmaster/dp_pos/pkg/session"
)

const (
	scopeOrder   = "order"
	scopePayment = "payment"
)

// OrderService runs the settlement workflows. Every collaborator call gets
// StepTimeout; a failure rolls back the steps already applied.
type OrderService struct {
	Customers CustomerStore
	Items     ItemStore
	Orders    OrderStore

	Notifier Notifier
	Events   EventPublisher
	Idem     IdempotencyStore
	Topic    string

	StepTimeout time.Duration
	Location    *time.Location
	Now         func() time.Time
}

type OrderResult struct {
	Order        *models.Order  `json:"order"`
	Warnings     []string       `json:"warnings"`
	Notification *notify.Report `json:"notification,omitempty"`
	Replayed     bool           `json:"replayed,omitempty"`
}

type OrderQuery struct {
	Status string
	Type   string
	Phone  string
	Today  bool
	Offset int
	Limit  int
}

func (s *OrderService) CreateOrder(ctx context.Context, sess session.Session, req transport.CreateOrderRequest, idemKey string) (*OrderResult, error) {
	l := logging.FromContext(ctx).With("svc", "order.create_order", "branch", sess.Branch)

	orderType := models.OrderType(strings.TrimSpace(req.OrderType))
	if orderType == "" {
		orderType = models.OrderTypeCustom
		if req.CustomerID != nil {
			orderType = models.OrderTypeStandard
		}
	}
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, scopeOrder, idemKey)
	if err != nil {
		return nil, err
	}
	defer release()

	if prev, err := s.replayed(ctx, scopeOrder, idemKey); err != nil {
		return nil, err
	} else if prev != nil {
		l.Info("create_order_replayed", "order_id", prev.ID)
		return &OrderResult{Order: prev, Warnings: []string{}, Replayed: true}, nil
	}

	order := &models.Order{OrderType: orderType, Branch: sess.Branch}
	var lines []domain.Line
	switch orderType {
	case models.OrderTypeStandard:
		lines, err = s.standardLines(ctx, sess, req, order)
	case models.OrderTypeCustom:
		lines, err = customLines(req, order)
	default:
		err = fmt.Errorf("%w: unknown order type %q", ErrValidation, orderType)
	}
	if err != nil {
		return nil, err
	}

	items, total := domain.BuildItems(lines)
	if req.PaidAmount.GreaterThan(total) {
		return nil, fmt.Errorf("%w: payment exceeds total", ErrValidation)
	}
	t := domain.Settle(total, req.PaidAmount)
	order.Items = items
	order.TotalAmount, order.PaidAmount, order.BalanceAmount, order.Status = t.Total, t.Paid, t.Balance, t.Status

	sg := newSaga("create_order")
	if err := s.call(ctx, func(ctx context.Context) error {
		_, err := s.Orders.CreateOrder(ctx, order)
		return err
	}); err != nil {
		return nil, s.abort(ctx, sg, "", "persist_order", err)
	}
	key := order.ID.String()
	sg.done("persist_order", func(ctx context.Context) error { return s.Orders.DeleteOrder(ctx, order.ID) })

	warnings := []string{}
	var short []models.OrderItem
	if orderType == models.OrderTypeStandard {
		for i := range order.Items {
			line := &order.Items[i]
			itemID, qty, lineID := *line.ItemID, line.Quantity, line.ID

			var ok bool
			if err := s.call(ctx, func(ctx context.Context) error {
				var err error
				ok, err = s.Items.DecrementStock(ctx, itemID, qty)
				return err
			}); err != nil {
				return nil, s.abort(ctx, sg, key, "decrement_stock", err)
			}
			if !ok {
				stockShortages.Inc()
				short = append(short, *line)
				warnings = append(warnings, "insufficient stock for "+line.ItemName)
				l.Warn("stock_shortage", "order_id", order.ID, "item_id", itemID, "quantity", qty)
				continue
			}
			sg.done("decrement_stock", func(ctx context.Context) error { return s.Items.IncrementStock(ctx, itemID, qty) })

			if err := s.call(ctx, func(ctx context.Context) error {
				return s.Orders.MarkStockDeducted(ctx, lineID, true)
			}); err != nil {
				return nil, s.abort(ctx, sg, key, "mark_stock_deducted", err)
			}
			line.StockDeducted = true
		}

		if err := s.recalc(ctx, *order.CustomerID); err != nil {
			return nil, s.abort(ctx, sg, key, "recalculate_balance", err)
		}
	}

	s.remember(ctx, scopeOrder, idemKey, order.ID)
	settlements.WithLabelValues("create_order", "ok").Inc()

	res := &OrderResult{Order: order, Warnings: warnings}
	res.Notification = s.notify(ctx, notify.KindOrderPlaced, order.CustomerPhone, notify.Data{
		Name:  order.CustomerName,
		Phone: order.CustomerPhone,
		Total: order.TotalAmount,
		Paid:  order.PaidAmount,
	})

	s.publish(ctx, key, map[string]any{
		"type":          events.TypeOrderCreated,
		"orderID":       key,
		"orderType":     order.OrderType,
		"branch":        order.Branch,
		"customerPhone": order.CustomerPhone,
		"total":         order.TotalAmount.StringFixed(2),
		"paid":          order.PaidAmount.StringFixed(2),
		"balance":       order.BalanceAmount.StringFixed(2),
		"status":        order.Status,
	})
	for _, line := range short {
		s.publish(ctx, key, map[string]any{
			"type":     events.TypeStockShortage,
			"orderID":  key,
			"itemID":   line.ItemID.String(),
			"itemName": line.ItemName,
			"quantity": line.Quantity,
		})
	}

	l.Info("create_order_success", "order_id", order.ID, "total", order.TotalAmount.StringFixed(2), "warnings", len(warnings))
	return res, nil
}

func validateOrderRequest(req transport.CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: items required", ErrValidation)
	}
	if req.PaidAmount.IsNegative() {
		return fmt.Errorf("%w: paid amount must be >= 0", ErrValidation)
	}
	if err := checkCents("paid amount", req.PaidAmount); err != nil {
		return err
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be > 0", ErrValidation)
		}
		if it.Price.IsNegative() {
			return fmt.Errorf("%w: price must be >= 0", ErrValidation)
		}
		if err := checkCents("price", it.Price); err != nil {
			return err
		}
	}
	return nil
}

// checkCents rejects amounts finer than the money columns store.
func checkCents(field string, d decimal.Decimal) error {
	if !domain.WholeCents(d) {
		return fmt.Errorf("%w: %s has more than two decimal places", ErrValidation, field)
	}
	return nil
}

// standardLines prices every line from the catalog and links the order to
// its customer.
func (s *OrderService) standardLines(ctx context.Context, sess session.Session, req transport.CreateOrderRequest, order *models.Order) ([]domain.Line, error) {
	if req.CustomerID == nil || *req.CustomerID == uuid.Nil {
		return nil, fmt.Errorf("%w: customer id required for standard orders", ErrValidation)
	}

	var cust *models.Customer
	if err := s.call(ctx, func(ctx context.Context) error {
		var err error
		cust, err = s.Customers.GetCustomer(ctx, *req.CustomerID)
		return err
	}); err != nil {
		return nil, fmt.Errorf("load customer: %w", classify(err))
	}
	if !visible(sess, cust.Branch) {
		return nil, fmt.Errorf("%w: customer %s", ErrNotFound, cust.ID)
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ItemID == nil || *it.ItemID == uuid.Nil {
			return nil, fmt.Errorf("%w: item id required for standard orders", ErrValidation)
		}
		ids = append(ids, *it.ItemID)
	}

	var catalog map[uuid.UUID]models.Item
	if err := s.call(ctx, func(ctx context.Context) error {
		var err error
		catalog, err = s.Items.GetItemsByIDs(ctx, ids)
		return err
	}); err != nil {
		return nil, fmt.Errorf("load items: %w", classify(err))
	}

	lines := make([]domain.Line, 0, len(req.Items))
	for _, it := range req.Items {
		c, ok := catalog[*it.ItemID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown item %s", ErrValidation, *it.ItemID)
		}
		id := c.ID
		lines = append(lines, domain.Line{ItemID: &id, ItemName: c.ItemName, Quantity: it.Quantity, Price: c.UnitPrice})
	}

	order.CustomerID = &cust.ID
	order.CustomerName = cust.Name
	order.CustomerPhone = cust.Phone
	order.Branch = cust.Branch
	return lines, nil
}

// customLines takes free-text lines for a walk-in job. Nothing links them to
// the catalog or to a customer record.
func customLines(req transport.CreateOrderRequest, order *models.Order) ([]domain.Line, error) {
	name, phone := strings.TrimSpace(req.CustomerName), strings.TrimSpace(req.CustomerPhone)
	if name == "" || phone == "" {
		return nil, fmt.Errorf("%w: customer name and phone required for custom orders", ErrValidation)
	}

	lines := make([]domain.Line, 0, len(req.Items))
	for _, it := range req.Items {
		itemName := strings.TrimSpace(it.ItemName)
		if itemName == "" {
			return nil, fmt.Errorf("%w: item name required", ErrValidation)
		}
		lines = append(lines, domain.Line{ItemName: itemName, Quantity: it.Quantity, Price: it.Price})
	}

	order.CustomerName = name
	order.CustomerPhone = phone
	return lines, nil
}

func (s *OrderService) RecordPayment(ctx context.Context, sess session.Session, orderID uuid.UUID, amount decimal.Decimal, idemKey string) (*OrderResult, error) {
	l := logging.FromContext(ctx).With("svc", "order.record_payment", "order_id", orderID)

	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment must be > 0", ErrValidation)
	}
	if err := checkCents("payment", amount); err != nil {
		return nil, err
	}

	// A payment key only dedups retries against the same order.
	if idemKey != "" {
		idemKey = orderID.String() + ":" + idemKey
	}
	release, err := s.lock(ctx, scopePayment, idemKey)
	if err != nil {
		return nil, err
	}
	defer release()

	if prev, err := s.replayed(ctx, scopePayment, idemKey); err != nil {
		return nil, err
	} else if prev != nil {
		l.Info("record_payment_replayed")
		return &OrderResult{Order: prev, Warnings: []string{}, Replayed: true}, nil
	}

	order, err := s.loadVisible(ctx, sess, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, fmt.Errorf("%w: order is cancelled", ErrConflict)
	}
	if amount.GreaterThan(order.BalanceAmount) {
		return nil, fmt.Errorf("%w: payment exceeds balance", ErrValidation)
	}

	prev := *order
	t := domain.ApplyPayment(*order, amount)
	order.PaidAmount, order.BalanceAmount, order.Status = t.Paid, t.Balance, t.Status

	sg := newSaga("record_payment")
	key := order.ID.String()
	if err := s.call(ctx, func(ctx context.Context) error { return s.Orders.SaveOrderHeader(ctx, order, &prev) }); err != nil {
		return nil, s.abort(ctx, sg, key, "persist_order", err)
	}
	sg.done("persist_order", func(ctx context.Context) error { return s.Orders.SaveOrderHeader(ctx, &prev, order) })

	if order.CustomerID != nil {
		if err := s.recalc(ctx, *order.CustomerID); err != nil {
			return nil, s.abort(ctx, sg, key, "recalculate_balance", err)
		}
	}

	s.remember(ctx, scopePayment, idemKey, order.ID)
	settlements.WithLabelValues("record_payment", "ok").Inc()

	res := &OrderResult{Order: order, Warnings: []string{}}
	res.Notification = s.notify(ctx, notify.KindPaymentReceived, order.CustomerPhone, notify.Data{
		Name:    order.CustomerName,
		Phone:   order.CustomerPhone,
		Amount:  amount,
		Balance: order.BalanceAmount,
	})
	s.publish(ctx, key, map[string]any{
		"type":    events.TypePaymentRecorded,
		"orderID": key,
		"amount":  amount.StringFixed(2),
		"paid":    order.PaidAmount.StringFixed(2),
		"balance": order.BalanceAmount.StringFixed(2),
		"status":  order.Status,
	})

	l.Info("record_payment_success", "amount", amount.StringFixed(2), "status", order.Status)
	return res, nil
}

// CancelOrder voids a pending order. Stock taken by its lines goes back and
// the order stops counting toward the customer's balance.
func (s *OrderService) CancelOrder(ctx context.Context, sess session.Session, orderID uuid.UUID) (*OrderResult, error) {
	l := logging.FromContext(ctx).With("svc", "order.cancel_order", "order_id", orderID)

	order, err := s.loadVisible(ctx, sess, orderID)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case models.OrderStatusCancelled:
		return nil, fmt.Errorf("%w: order already cancelled", ErrConflict)
	case models.OrderStatusCompleted:
		return nil, fmt.Errorf("%w: completed orders cannot be cancelled", ErrConflict)
	}

	prev := *order
	order.Status = models.OrderStatusCancelled

	sg := newSaga("cancel_order")
	key := order.ID.String()
	if err := s.call(ctx, func(ctx context.Context) error { return s.Orders.SaveOrderHeader(ctx, order, &prev) }); err != nil {
		return nil, s.abort(ctx, sg, key, "persist_order", err)
	}
	sg.done("persist_order", func(ctx context.Context) error { return s.Orders.SaveOrderHeader(ctx, &prev, order) })

	warnings, err := s.restoreStock(ctx, sg, key, order)
	if err != nil {
		return nil, err
	}

	if order.CustomerID != nil {
		if err := s.recalc(ctx, *order.CustomerID); err != nil {
			return nil, s.abort(ctx, sg, key, "recalculate_balance", err)
		}
	}

	settlements.WithLabelValues("cancel_order", "ok").Inc()
	s.publish(ctx, key, map[string]any{
		"type":    events.TypeOrderCancelled,
		"orderID": key,
		"branch":  order.Branch,
	})

	l.Info("cancel_order_success", "warnings", len(warnings))
	return &OrderResult{Order: order, Warnings: warnings}, nil
}

// DeleteOrder removes an order for good. Admin only.
func (s *OrderService) DeleteOrder(ctx context.Context, sess session.Session, orderID uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "order.delete_order", "order_id", orderID)

	if !sess.IsAdmin() {
		return fmt.Errorf("%w: admin only", ErrForbidden)
	}
	order, err := s.loadVisible(ctx, sess, orderID)
	if err != nil {
		return err
	}
	snapshot := *order
	snapshot.Items = append([]models.OrderItem(nil), order.Items...)

	sg := newSaga("delete_order")
	key := order.ID.String()
	if _, err := s.restoreStock(ctx, sg, key, order); err != nil {
		return err
	}

	if err := s.call(ctx, func(ctx context.Context) error { return s.Orders.DeleteOrder(ctx, order.ID) }); err != nil {
		return s.abort(ctx, sg, key, "delete_order", err)
	}
	sg.done("delete_order", func(ctx context.Context) error {
		restored := snapshot
		restored.Items = append([]models.OrderItem(nil), snapshot.Items...)
		_, err := s.Orders.CreateOrder(ctx, &restored)
		return err
	})

	if order.CustomerID != nil {
		if err := s.recalc(ctx, *order.CustomerID); err != nil {
			return s.abort(ctx, sg, key, "recalculate_balance", err)
		}
	}

	settlements.WithLabelValues("delete_order", "ok").Inc()
	s.publish(ctx, key, map[string]any{
		"type":    events.TypeOrderDeleted,
		"orderID": key,
		"branch":  order.Branch,
	})
	l.Info("delete_order_success")
	return nil
}

// restoreStock puts back the stock of every line that took some. Items gone
// from the catalog are reported as warnings.
func (s *OrderService) restoreStock(ctx context.Context, sg *saga, key string, order *models.Order) ([]string, error) {
	warnings := []string{}
	for i := range order.Items {
		line := &order.Items[i]
		if !line.StockDeducted || line.ItemID == nil {
			continue
		}
		itemID, qty, lineID := *line.ItemID, line.Quantity, line.ID

		err := s.call(ctx, func(ctx context.Context) error { return s.Items.IncrementStock(ctx, itemID, qty) })
		if errors.Is(err, gorm.ErrRecordNotFound) {
			warnings = append(warnings, "item no longer in catalog: "+line.ItemName)
			continue
		}
		if err != nil {
			return nil, s.abort(ctx, sg, key, "restore_stock", err)
		}
		sg.done("restore_stock", func(ctx context.Context) error {
			_, err := s.Items.DecrementStock(ctx, itemID, qty)
			return err
		})

		if err := s.call(ctx, func(ctx context.Context) error {
			return s.Orders.MarkStockDeducted(ctx, lineID, false)
		}); err != nil {
			return nil, s.abort(ctx, sg, key, "mark_stock_deducted", err)
		}
		sg.done("mark_stock_deducted", func(ctx context.Context) error {
			return s.Orders.MarkStockDeducted(ctx, lineID, true)
		})
		line.StockDeducted = false
	}
	return warnings, nil
}

func (s *OrderService) GetOrder(ctx context.Context, sess session.Session, id uuid.UUID) (*models.Order, error) {
	return s.loadVisible(ctx, sess, id)
}

// ListOrders lists the orders of the session's branch, newest first.
func (s *OrderService) ListOrders(ctx context.Context, sess session.Session, q OrderQuery) (int64, []models.Order, error) {
	f := repo.OrderFilter{
		Branch:    sess.Branch,
		Status:    models.OrderStatus(q.Status),
		OrderType: models.OrderType(q.Type),
		Phone:     q.Phone,
		Offset:    q.Offset,
		Limit:     q.Limit,
	}
	switch f.Status {
	case "", models.OrderStatusPending, models.OrderStatusCompleted, models.OrderStatusCancelled:
	default:
		return 0, nil, fmt.Errorf("%w: unknown status %q", ErrValidation, q.Status)
	}
	switch f.OrderType {
	case "", models.OrderTypeStandard, models.OrderTypeCustom:
	default:
		return 0, nil, fmt.Errorf("%w: unknown order type %q", ErrValidation, q.Type)
	}
	if q.Today {
		f.From, f.To = dayBounds(s.now())
	}

	var (
		total  int64
		orders []models.Order
	)
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		total, orders, err = s.Orders.ListOrders(ctx, f)
		return err
	})
	if err != nil {
		return 0, nil, classify(err)
	}
	return total, orders, nil
}

func (s *OrderService) loadVisible(ctx context.Context, sess session.Session, id uuid.UUID) (*models.Order, error) {
	var order *models.Order
	if err := s.call(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.Orders.GetOrder(ctx, id)
		return err
	}); err != nil {
		return nil, classify(err)
	}
	if !visible(sess, order.Branch) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	return order, nil
}

func (s *OrderService) now() time.Time {
	return clock(s.Now, s.Location)
}

func (s *OrderService) call(ctx context.Context, fn func(ctx context.Context) error) error {
	sctx, cancel := withStepTimeout(ctx, s.StepTimeout)
	defer cancel()
	return fn(sctx)
}

// recalc refreshes the stored balance of a customer. A customer deleted in
// the meantime is skipped: orders only hold a weak reference.
func (s *OrderService) recalc(ctx context.Context, customerID uuid.UUID) error {
	err := s.call(ctx, func(ctx context.Context) error {
		_, err := s.Customers.RecalculateCustomerBalance(ctx, customerID)
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logging.FromContext(ctx).Warn("recalculate_skipped", "customer_id", customerID, "reason", "customer deleted")
		return nil
	}
	return err
}

// abort compensates what sg has applied and reports the failing step.
func (s *OrderService) abort(ctx context.Context, sg *saga, key, step string, err error) error {
	l := logging.FromContext(ctx).With("svc", "order."+sg.op, "order_id", key)
	serr := &StepError{Step: step, Err: classify(err)}
	settlements.WithLabelValues(sg.op, "failed").Inc()

	if len(sg.applied) == 0 {
		l.Warn(sg.op+"_failed", "step", step, "error", err)
		return serr
	}

	compensations.WithLabelValues(sg.op, step).Inc()
	if cerr := sg.compensate(context.WithoutCancel(ctx), s.StepTimeout); cerr != nil {
		l.Error("saga_compensation_failed", "step", step, "error", err, "compensation_error", cerr)
		return errors.Join(serr, fmt.Errorf("%w: %w", ErrCompensationFailed, cerr))
	}
	l.Warn("saga_compensated", "step", step, "undone", len(sg.applied), "error", err)
	s.publish(ctx, key, map[string]any{
		"type":    events.TypeSagaCompensated,
		"orderID": key,
		"op":      sg.op,
		"step":    step,
	})
	return serr
}

func (s *OrderService) notify(ctx context.Context, kind notify.Kind, phone string, data notify.Data) *notify.Report {
	if s.Notifier == nil {
		return nil
	}
	rep, _ := s.Notifier.Notify(ctx, kind, phone, data)
	return &rep
}

// publish is best-effort: settlement has already committed.
func (s *OrderService) publish(ctx context.Context, key string, event map[string]any) {
	if s.Events == nil {
		return
	}
	err := s.call(context.WithoutCancel(ctx), func(ctx context.Context) error {
		return s.Events.PublishEvent(ctx, s.Topic, key, event)
	})
	if err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "type", event["type"], "key", key, "error", err)
	}
}

// lock claims an idempotency key for the duration of one call.
func (s *OrderService) lock(ctx context.Context, scope, key string) (func(), error) {
	if s.Idem == nil || key == "" {
		return func() {}, nil
	}
	ok, err := s.Idem.TryLock(ctx, scope, key)
	if err != nil {
		return nil, fmt.Errorf("idempotency lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: request with this idempotency key is in progress", ErrConflict)
	}
	return func() {
		if err := s.Idem.Release(context.WithoutCancel(ctx), scope, key); err != nil {
			logging.FromContext(ctx).Warn("idempotency_release_failed", "scope", scope, "error", err)
		}
	}, nil
}

// replayed returns the order a previous call with the same key produced.
func (s *OrderService) replayed(ctx context.Context, scope, key string) (*models.Order, error) {
	if s.Idem == nil || key == "" {
		return nil, nil
	}
	val, ok, err := s.Idem.Recall(ctx, scope, key)
	if err != nil {
		return nil, fmt.Errorf("idempotency recall: %w", err)
	}
	if !ok {
		return nil, nil
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return nil, fmt.Errorf("idempotency recall: %w", err)
	}
	o, err := s.Orders.GetOrder(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	return o, nil
}

func (s *OrderService) remember(ctx context.Context, scope, key string, id uuid.UUID) {
	if s.Idem == nil || key == "" {
		return
	}
	if err := s.Idem.Remember(ctx, scope, key, id.String()); err != nil {
		logging.FromContext(ctx).Warn("idempotency_remember_failed", "scope", scope, "error", err)
	}
}

func visible(sess session.Session, branch string) bool {
	return sess.IsAdmin() || sess.Branch == branch
}

func clock(now func() time.Time, loc *time.Location) time.Time {
	t := time.Now()
	if now != nil {
		t = now()
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t
}

// dayBounds returns the UTC range covering now's local calendar day.
func dayBounds(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}
