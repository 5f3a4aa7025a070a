package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/dp_pos/internal/models"
	"github.com/Skotchmaster/dp_pos/internal/notify"
	"github.com/Skotchmaster/dp_pos/internal/search"
	"github.com/Skotchmaster/dp_pos/internal/transport"
	"github.com/Skotchmaster/dp_pos/pkg/logging"
	"github.com/Skotchmaster/dp_pos/pkg/session"
)

type CustomerService struct {
	Customers   CustomerStore
	Index       Indexer
	Notifier    Notifier
	StepTimeout time.Duration
}

// ReminderRun summarises one batch of balance reminders.
type ReminderRun struct {
	Customers int             `json:"customers"`
	Sent      int             `json:"sent"`
	Failed    int             `json:"failed"`
	Reports   []notify.Report `json:"reports"`
}

func (s *CustomerService) ListCustomers(ctx context.Context, sess session.Session, offset, limit int) (int64, []models.Customer, error) {
	var (
		total     int64
		customers []models.Customer
	)
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		total, customers, err = s.Customers.ListCustomers(ctx, sess.Branch, offset, limit)
		return err
	})
	return total, customers, classify(err)
}

func (s *CustomerService) GetCustomer(ctx context.Context, sess session.Session, id uuid.UUID) (*models.Customer, error) {
	var c *models.Customer
	if err := s.call(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.Customers.GetCustomer(ctx, id)
		return err
	}); err != nil {
		return nil, classify(err)
	}
	if !visible(sess, c.Branch) {
		return nil, fmt.Errorf("%w: customer %s", ErrNotFound, id)
	}
	return c, nil
}

func (s *CustomerService) CreateCustomer(ctx context.Context, sess session.Session, req transport.CreateCustomerRequest) (*models.Customer, error) {
	l := logging.FromContext(ctx).With("svc", "customer.create_customer")

	name, phone := strings.TrimSpace(req.Name), strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		return nil, fmt.Errorf("%w: name and phone required", ErrValidation)
	}
	branch := sess.Branch
	if req.Branch != "" {
		if !models.ValidBranch(req.Branch) {
			return nil, fmt.Errorf("%w: unknown branch %q", ErrValidation, req.Branch)
		}
		if req.Branch != sess.Branch && !sess.IsAdmin() {
			return nil, fmt.Errorf("%w: cannot create customers for another branch", ErrForbidden)
		}
		branch = req.Branch
	}

	c := &models.Customer{Name: name, Phone: phone, Branch: branch}
	if err := s.call(ctx, func(ctx context.Context) error {
		_, err := s.Customers.CreateCustomer(ctx, c)
		return err
	}); err != nil {
		return nil, classify(err)
	}

	s.index(ctx, *c)
	l.Info("create_customer_success", "customer_id", c.ID, "branch", c.Branch)
	return c, nil
}

func (s *CustomerService) PatchCustomer(ctx context.Context, sess session.Session, id uuid.UUID, req transport.PatchCustomerRequest) (*models.Customer, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if req.Phone != nil && strings.TrimSpace(*req.Phone) == "" {
		return nil, fmt.Errorf("%w: phone cannot be empty", ErrValidation)
	}
	if _, err := s.GetCustomer(ctx, sess, id); err != nil {
		return nil, err
	}

	var c *models.Customer
	if err := s.call(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.Customers.PatchCustomer(ctx, id, req)
		return err
	}); err != nil {
		return nil, classify(err)
	}
	s.index(ctx, *c)
	return c, nil
}

// DeleteCustomer removes the record only; orders keep their copy of the
// customer's name and phone.
func (s *CustomerService) DeleteCustomer(ctx context.Context, sess session.Session, id uuid.UUID) error {
	if !sess.IsAdmin() {
		return fmt.Errorf("%w: admin only", ErrForbidden)
	}
	if err := s.call(ctx, func(ctx context.Context) error { return s.Customers.DeleteCustomer(ctx, id) }); err != nil {
		return classify(err)
	}
	if s.Index != nil {
		if err := s.call(ctx, func(ctx context.Context) error {
			return s.Index.Delete(ctx, search.CustomersIndex, id.String())
		}); err != nil {
			logging.FromContext(ctx).Warn("unindex_customer_failed", "customer_id", id, "error", err)
		}
	}
	return nil
}

func (s *CustomerService) RecalculateBalance(ctx context.Context, sess session.Session, id uuid.UUID) (*models.Customer, error) {
	if _, err := s.GetCustomer(ctx, sess, id); err != nil {
		return nil, err
	}
	var c *models.Customer
	if err := s.call(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.Customers.RecalculateCustomerBalance(ctx, id)
		return err
	}); err != nil {
		return nil, classify(err)
	}
	return c, nil
}

// SearchCustomers matches by name or phone within the session's branch. The
// database answers when the search index is missing or failing.
func (s *CustomerService) SearchCustomers(ctx context.Context, sess session.Session, q string, offset, limit int) (int64, []models.Customer, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, fmt.Errorf("%w: query required", ErrValidation)
	}

	var (
		total     int64
		customers []models.Customer
	)
	if s.Index != nil {
		err := s.call(ctx, func(ctx context.Context) error {
			var err error
			total, customers, err = s.Index.SearchCustomers(ctx, sess.Branch, q, offset, limit)
			return err
		})
		if err == nil {
			return total, customers, nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "index", search.CustomersIndex, "error", err)
	}

	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		total, customers, err = s.Customers.SearchCustomersByName(ctx, sess.Branch, q, offset, limit)
		return err
	})
	return total, customers, classify(err)
}

// Remind sends one customer a reminder of what they owe, using a freshly
// recalculated balance. Admin only.
func (s *CustomerService) Remind(ctx context.Context, sess session.Session, id uuid.UUID) (*notify.Report, error) {
	if !sess.IsAdmin() {
		return nil, fmt.Errorf("%w: admin only", ErrForbidden)
	}
	c, err := s.RecalculateBalance(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if !c.Balance.IsPositive() {
		return nil, fmt.Errorf("%w: customer has no outstanding balance", ErrConflict)
	}
	if s.Notifier == nil {
		return nil, fmt.Errorf("%w: notifications are not configured", ErrConflict)
	}

	rep, _ := s.Notifier.Notify(ctx, notify.KindBalanceReminder, c.Phone, notify.Data{
		Name:    c.Name,
		Phone:   c.Phone,
		Balance: c.Balance,
	})
	return &rep, nil
}

// SendReminders messages every customer with a positive balance, in every
// branch. One failed recipient does not stop the batch.
func (s *CustomerService) SendReminders(ctx context.Context) (*ReminderRun, error) {
	l := logging.FromContext(ctx).With("svc", "customer.send_reminders")

	var owing []models.Customer
	if err := s.call(ctx, func(ctx context.Context) error {
		var err error
		owing, err = s.Customers.CustomersOwing(ctx)
		return err
	}); err != nil {
		return nil, classify(err)
	}

	run := &ReminderRun{Customers: len(owing), Reports: []notify.Report{}}
	if s.Notifier == nil {
		l.Warn("send_reminders_skipped", "reason", "notifications are not configured", "customers", len(owing))
		return run, nil
	}
	for _, c := range owing {
		if ctx.Err() != nil {
			return run, ctx.Err()
		}
		rep, err := s.Notifier.Notify(ctx, notify.KindBalanceReminder, c.Phone, notify.Data{
			Name:    c.Name,
			Phone:   c.Phone,
			Balance: c.Balance,
		})
		if err != nil {
			run.Failed++
		} else {
			run.Sent++
		}
		run.Reports = append(run.Reports, rep)
	}

	l.Info("send_reminders_done", "customers", run.Customers, "sent", run.Sent, "failed", run.Failed)
	return run, nil
}

func (s *CustomerService) index(ctx context.Context, c models.Customer) {
	if s.Index == nil {
		return
	}
	if err := s.call(ctx, func(ctx context.Context) error { return s.Index.IndexCustomer(ctx, c) }); err != nil {
		logging.FromContext(ctx).Warn("index_customer_failed", "customer_id", c.ID, "error", err)
	}
}

func (s *CustomerService) call(ctx context.Context, fn func(ctx context.Context) error) error {
	sctx, cancel := withStepTimeout(ctx, s.StepTimeout)
	defer cancel()
	return fn(sctx)
}
