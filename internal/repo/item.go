package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/dp_pos/internal/models"
	"github.com/Skotchmaster/dp_pos/internal/transport"
)

func (r *GormRepo) ListItems(ctx context.Context, offset, limit int) (int64, []models.Item, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Item{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	q := r.DB.WithContext(ctx).Model(&models.Item{}).Order("item_name ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	var items []models.Item
	if err := q.Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// SearchItemsByName is the database fallback when no search index is
// configured.
func (r *GormRepo) SearchItemsByName(ctx context.Context, q string, offset, limit int) (int64, []models.Item, error) {
	query := r.DB.WithContext(ctx).Model(&models.Item{}).Where("LOWER(item_name) LIKE ?", "%"+strings.ToLower(q)+"%")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var out []models.Item
	if err := query.Order("item_name ASC").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return 0, nil, err
	}
	return total, out, nil
}

func (r *GormRepo) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var it models.Item
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *GormRepo) GetItemsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Item, error) {
	var items []models.Item
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.Item, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

func (r *GormRepo) CreateItem(ctx context.Context, it *models.Item) (*models.Item, error) {
	if err := r.DB.WithContext(ctx).Create(it).Error; err != nil {
		return nil, err
	}
	return it, nil
}

func (r *GormRepo) PatchItem(ctx context.Context, id uuid.UUID, req transport.PatchItemRequest) (*models.Item, error) {
	var it models.Item
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&it).Error; err != nil {
		return nil, err
	}

	if req.ItemName != nil {
		it.ItemName = *req.ItemName
	}
	if req.Qty != nil {
		it.Qty = *req.Qty
	}
	if req.UnitPrice != nil {
		it.UnitPrice = *req.UnitPrice
	}

	if err := r.DB.WithContext(ctx).Save(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *GormRepo) DeleteItem(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Item{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStock takes n units only if at least n are on hand. It reports
// false, without error, when the stock is short.
func (r *GormRepo) DecrementStock(ctx context.Context, id uuid.UUID, n int) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND qty >= ?", id, n).
		Update("qty", gorm.Expr("qty - ?", n))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormRepo) IncrementStock(ctx context.Context, id uuid.UUID, n int) error {
	res := r.DB.WithContext(ctx).Model(&models.Item{}).
		Where("id = ?", id).
		Update("qty", gorm.Expr("qty + ?", n))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
