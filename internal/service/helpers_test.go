package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/dp_pos/internal/idempotency"
	"github.com/Skotchmaster/dp_pos/internal/models"
	"github.com/Skotchmaster/dp_pos/internal/notify"
	"github.com/Skotchmaster/dp_pos/internal/repo"
	pkgdb "github.com/Skotchmaster/dp_pos/pkg/db"
	"github.com/Skotchmaster/dp_pos/pkg/session"
)

var (
	headUser = session.Session{ID: "jti-user", UserID: uuid.New(), Role: session.RoleUser, Branch: models.BranchHead}
	subUser  = session.Session{ID: "jti-sub", UserID: uuid.New(), Role: session.RoleUser, Branch: models.BranchSub}
	admin    = session.Session{ID: "jti-admin", UserID: uuid.New(), Role: session.RoleAdmin, Branch: models.BranchHead}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	db, err := pkgdb.Open(context.Background(), "sqlite::memory:")
	require.NoError(t, err)
	r := &repo.GormRepo{DB: db}
	require.NoError(t, r.Migrate(context.Background()))
	return r
}

// fakeSender records texts and answers with whatever result is set.
type fakeSender struct {
	mu     sync.Mutex
	texts  []string
	phones [][]string
	result *notify.GatewayResult
	err    error
}

func (f *fakeSender) SendMessage(_ context.Context, phones []string, text string) (*notify.GatewayResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	f.phones = append(f.phones, phones)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &notify.GatewayResult{Success: true}, nil
}

func (f *fakeSender) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type recordedEvents struct {
	mu     sync.Mutex
	events []map[string]any
}

func (r *recordedEvents) PublishEvent(_ context.Context, _, _ string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event.(map[string]any))
	return nil
}

func (r *recordedEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e["type"].(string))
	}
	return out
}

// customers counts balance recalculations and can be told to fail them.
type customers struct {
	CustomerStore
	mu         sync.Mutex
	recalcs    int
	failRecalc error
}

func (c *customers) RecalculateCustomerBalance(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	c.mu.Lock()
	c.recalcs++
	fail := c.failRecalc
	c.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	return c.CustomerStore.RecalculateCustomerBalance(ctx, id)
}

func (c *customers) recalcCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recalcs
}

// stalledItems never finishes a stock decrement before the deadline.
type stalledItems struct {
	ItemStore
}

func (stalledItems) DecrementStock(ctx context.Context, _ uuid.UUID, _ int) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

// racingOrders runs cut once, right after the first order read, so another
// request can land between that read and the write that follows it.
type racingOrders struct {
	OrderStore
	cut func()
}

func (r *racingOrders) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, err := r.OrderStore.GetOrder(ctx, id)
	if cut := r.cut; cut != nil {
		r.cut = nil
		cut()
	}
	return o, err
}

// undeletableOrders refuses to delete, so a create cannot be rolled back.
type undeletableOrders struct {
	OrderStore
}

func (undeletableOrders) DeleteOrder(context.Context, uuid.UUID) error {
	return errors.New("delete refused")
}

type testEnv struct {
	repo      *repo.GormRepo
	customers *customers
	sender    *fakeSender
	events    *recordedEvents
	idem      *idempotency.MemoryStore
	orders    *OrderService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	r := newRepo(t)
	env := &testEnv{
		repo:      r,
		customers: &customers{CustomerStore: r},
		sender:    &fakeSender{},
		events:    &recordedEvents{},
		idem:      idempotency.NewMemoryStore(time.Hour),
	}
	env.orders = &OrderService{
		Customers:   env.customers,
		Items:       r,
		Orders:      r,
		Notifier:    notify.NewDispatcher(env.sender, time.Second),
		Events:      env.events,
		Idem:        env.idem,
		Topic:       "order_events",
		StepTimeout: 2 * time.Second,
	}
	return env
}

func (e *testEnv) customer(t *testing.T, name, phone, branch string) *models.Customer {
	t.Helper()

	c, err := e.repo.CreateCustomer(context.Background(), &models.Customer{Name: name, Phone: phone, Branch: branch})
	require.NoError(t, err)
	return c
}

func (e *testEnv) item(t *testing.T, name string, qty int, price string) *models.Item {
	t.Helper()

	it, err := e.repo.CreateItem(context.Background(), &models.Item{ItemName: name, Qty: qty, UnitPrice: dec(price)})
	require.NoError(t, err)
	return it
}

func (e *testEnv) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()

	it, err := e.repo.GetItem(context.Background(), id)
	require.NoError(t, err)
	return it.Qty
}

func (e *testEnv) balance(t *testing.T, id uuid.UUID) string {
	t.Helper()

	c, err := e.repo.GetCustomer(context.Background(), id)
	require.NoError(t, err)
	return c.Balance.StringFixed(2)
}
