package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/dp_pos/internal/domain"
	"github.com/Skotchmaster/dp_pos/internal/models"
	"github.com/Skotchmaster/dp_pos/internal/repo"
	"github.com/Skotchmaster/dp_pos/pkg/session"
)

// ReportService derives the read-only views shown on the dashboard and the
// management pages. Everything is computed over the session's branch.
type ReportService struct {
	Customers   CustomerStore
	Items       ItemStore
	Orders      OrderStore
	StepTimeout time.Duration
	Location    *time.Location
	Now         func() time.Time
}

func (s *ReportService) Dashboard(ctx context.Context, sess session.Session) (domain.Dashboard, error) {
	sctx, cancel := withStepTimeout(ctx, s.StepTimeout)
	defer cancel()

	var (
		customers []models.Customer
		items     []models.Item
		orders    []models.Order
	)
	g, gctx := errgroup.WithContext(sctx)
	g.Go(func() error {
		var err error
		_, customers, err = s.Customers.ListCustomers(gctx, sess.Branch, 0, 0)
		return err
	})
	g.Go(func() error {
		var err error
		_, items, err = s.Items.ListItems(gctx, 0, 0)
		return err
	})
	g.Go(func() error {
		var err error
		_, orders, err = s.Orders.ListOrders(gctx, repo.OrderFilter{Branch: sess.Branch})
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Dashboard{}, classify(err)
	}

	return domain.BuildDashboard(customers, items, orders, clock(s.Now, s.Location)), nil
}

// OrderStats counts the branch's orders, optionally only today's.
func (s *ReportService) OrderStats(ctx context.Context, sess session.Session, today bool) (domain.OrderStats, error) {
	f := repo.OrderFilter{Branch: sess.Branch}
	if today {
		f.From, f.To = dayBounds(clock(s.Now, s.Location))
	}
	orders, err := s.listOrders(ctx, f)
	if err != nil {
		return domain.OrderStats{}, err
	}
	return domain.StatsFor(orders), nil
}

// CustomerSummaries groups the branch's orders by customer phone.
func (s *ReportService) CustomerSummaries(ctx context.Context, sess session.Session) ([]domain.CustomerSummary, error) {
	orders, err := s.listOrders(ctx, repo.OrderFilter{Branch: sess.Branch})
	if err != nil {
		return nil, err
	}
	return domain.GroupByCustomer(orders), nil
}

func (s *ReportService) listOrders(ctx context.Context, f repo.OrderFilter) ([]models.Order, error) {
	sctx, cancel := withStepTimeout(ctx, s.StepTimeout)
	defer cancel()

	_, orders, err := s.Orders.ListOrders(sctx, f)
	if err != nil {
		return nil, classify(err)
	}
	return orders, nil
}
