package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/dp_pos/internal/domain"
	"github.com/Skotchmaster/dp_pos/internal/models"
	"github.com/Skotchmaster/dp_pos/internal/transport"
)

func (r *GormRepo) ListCustomers(ctx context.Context, branch string, offset, limit int) (int64, []models.Customer, error) {
	q := r.DB.WithContext(ctx).Model(&models.Customer{})
	if branch != "" {
		q = q.Where("branch = ?", branch)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var customers []models.Customer
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Order("name ASC").Find(&customers).Error; err != nil {
		return 0, nil, err
	}
	return total, customers, nil
}

func (r *GormRepo) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var c models.Customer
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) FindCustomerByPhone(ctx context.Context, phone, branch string) (*models.Customer, error) {
	var c models.Customer
	if err := r.DB.WithContext(ctx).Where("phone = ? AND branch = ?", phone, branch).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) CreateCustomer(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	if err := r.DB.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// SearchCustomersByName is the database fallback when no search index is
// configured.
func (r *GormRepo) SearchCustomersByName(ctx context.Context, branch, q string, offset, limit int) (int64, []models.Customer, error) {
	like := "%" + strings.ToLower(q) + "%"
	db := r.DB.WithContext(ctx)
	query := db.Model(&models.Customer{}).
		Where("branch = ?", branch).
		Where(db.Where("LOWER(name) LIKE ?", like).Or("phone LIKE ?", like))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var out []models.Customer
	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return 0, nil, err
	}
	return total, out, nil
}

func (r *GormRepo) PatchCustomer(ctx context.Context, id uuid.UUID, req transport.PatchCustomerRequest) (*models.Customer, error) {
	var c models.Customer
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}

	if err := r.DB.WithContext(ctx).Save(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Customer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CustomersOwing lists customers with a positive balance in every branch.
func (r *GormRepo) CustomersOwing(ctx context.Context) ([]models.Customer, error) {
	var out []models.Customer
	if err := r.DB.WithContext(ctx).Where("balance > 0").Order("branch, name").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// RecalculateCustomerBalance rebuilds the stored balance from the orders
// linked to the customer that are not cancelled. Walk-in orders carry no
// customer id and never count.
func (r *GormRepo) RecalculateCustomerBalance(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var c models.Customer
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&c).Error; err != nil {
			return err
		}

		var orders []models.Order
		if err := tx.
			Where("customer_id = ? AND status <> ?", id, models.OrderStatusCancelled).
			Find(&orders).Error; err != nil {
			return err
		}

		c.Balance = domain.OutstandingBalance(orders)
		return tx.Model(&c).Update("balance", c.Balance).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}
