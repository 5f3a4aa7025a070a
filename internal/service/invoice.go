package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/dp_pos/internal/domain"
	"github.com/Skotchmaster/dp_pos/internal/models"
	"github.com/Skotchmaster/dp_pos/pkg/session"
)

type InvoiceService struct {
	Customers   CustomerStore
	Orders      OrderStore
	StepTimeout time.Duration
}

// CustomerInvoice combines every pending order of a customer, linked by id or
// taken as a walk-in job under the same phone, into one invoice.
func (s *InvoiceService) CustomerInvoice(ctx context.Context, sess session.Session, customerID uuid.UUID) (domain.InvoiceView, error) {
	cs := CustomerService{Customers: s.Customers, StepTimeout: s.StepTimeout}
	c, err := cs.GetCustomer(ctx, sess, customerID)
	if err != nil {
		return domain.InvoiceView{}, err
	}

	var orders []models.Order
	sctx, cancel := withStepTimeout(ctx, s.StepTimeout)
	defer cancel()
	if orders, err = s.Orders.OpenOrdersForCustomer(sctx, c); err != nil {
		return domain.InvoiceView{}, classify(err)
	}

	v := domain.ComposeInvoice(orders)
	if len(orders) == 0 {
		v.ID = "combined-" + c.Phone
		v.Date = time.Now().UTC()
	}
	v.CustomerName, v.CustomerPhone, v.Branch = c.Name, c.Phone, c.Branch
	if v.Items == nil {
		v.Items = []domain.InvoiceLine{}
	}
	if v.OrderIDs == nil {
		v.OrderIDs = []uuid.UUID{}
	}
	return v, nil
}

func (s *InvoiceService) OrderInvoice(ctx context.Context, sess session.Session, orderID uuid.UUID) (domain.InvoiceView, error) {
	svc := OrderService{Orders: s.Orders, StepTimeout: s.StepTimeout}
	o, err := svc.GetOrder(ctx, sess, orderID)
	if err != nil {
		return domain.InvoiceView{}, err
	}
	return domain.ComposeInvoice([]models.Order{*o}), nil
}
