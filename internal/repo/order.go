package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/dp_pos/internal/models"
)

type OrderFilter struct {
	Branch     string
	Status     models.OrderStatus
	OrderType  models.OrderType
	Phone      string
	CustomerID *uuid.UUID
	From, To   time.Time
	Offset     int
	Limit      int
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) (*models.Order, error) {
	if err := r.DB.WithContext(ctx).Create(o).Error; err != nil {
		return nil, err
	}
	return o, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Preload("Items", preloadItems).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.Branch != "" {
		q = q.Where("branch = ?", f.Branch)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.OrderType != "" {
		q = q.Where("order_type = ?", f.OrderType)
	}
	if f.Phone != "" {
		q = q.Where("customer_phone = ?", f.Phone)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("created_at < ?", f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	var orders []models.Order
	if err := q.Preload("Items", preloadItems).Order("created_at DESC").Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// OpenOrdersForCustomer returns pending orders that belong to the customer by
// id or by phone within the customer's branch, oldest first.
func (r *GormRepo) OpenOrdersForCustomer(ctx context.Context, c *models.Customer) ([]models.Order, error) {
	db := r.DB.WithContext(ctx)
	var orders []models.Order
	err := db.Preload("Items", preloadItems).
		Where("status = ?", models.OrderStatusPending).
		Where(db.Where("customer_id = ?", c.ID).Or("customer_phone = ? AND branch = ?", c.Phone, c.Branch)).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ErrStaleOrder means the stored order no longer matches what the caller read.
var ErrStaleOrder = errors.New("order was changed by another request")

// SaveOrderHeader replaces every order column. Line items are left alone.
// The write only lands while the stored paid amount and status still equal
// those of seen; otherwise it returns ErrStaleOrder.
func (r *GormRepo) SaveOrderHeader(ctx context.Context, o, seen *models.Order) error {
	db := r.DB.WithContext(ctx)
	res := db.Model(o).
		Where("paid_amount = ? AND status = ?", seen.PaidAmount, seen.Status).
		Select("*").
		Omit(clause.Associations, "id", "created_at").
		Updates(o)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := db.Model(&models.Order{}).Where("id = ?", o.ID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrStaleOrder
}

func (r *GormRepo) MarkStockDeducted(ctx context.Context, orderItemID uuid.UUID, deducted bool) error {
	return r.DB.WithContext(ctx).Model(&models.OrderItem{}).
		Where("id = ?", orderItemID).
		Update("stock_deducted", deducted).Error
}

func (r *GormRepo) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
