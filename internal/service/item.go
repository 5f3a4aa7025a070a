package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/dp_pos/internal/domain"
	"github.com/Skotchmaster/dp_pos/internal/models"
	"github.com/Skotchmaster/dp_pos/internal/search"
	"github.com/Skotchmaster/dp_pos/internal/transport"
	"github.com/Skotchmaster/dp_pos/pkg/logging"
	"github.com/Skotchmaster/dp_pos/pkg/session"
)

type ItemService struct {
	Items       ItemStore
	Index       Indexer
	StepTimeout time.Duration
}

func (s *ItemService) ListItems(ctx context.Context, offset, limit int) (int64, []models.Item, error) {
	var (
		total int64
		items []models.Item
	)
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		total, items, err = s.Items.ListItems(ctx, offset, limit)
		return err
	})
	return total, items, classify(err)
}

func (s *ItemService) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var it *models.Item
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		it, err = s.Items.GetItem(ctx, id)
		return err
	})
	if err != nil {
		return nil, classify(err)
	}
	return it, nil
}

func (s *ItemService) CreateItem(ctx context.Context, req transport.CreateItemRequest) (*models.Item, error) {
	name := strings.TrimSpace(req.ItemName)
	if name == "" {
		return nil, fmt.Errorf("%w: item name required", ErrValidation)
	}
	if req.Qty < 0 {
		return nil, fmt.Errorf("%w: qty must be >= 0", ErrValidation)
	}
	if req.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price must be >= 0", ErrValidation)
	}
	if err := checkCents("unit price", req.UnitPrice); err != nil {
		return nil, err
	}

	it := &models.Item{ItemName: name, Qty: req.Qty, UnitPrice: req.UnitPrice}
	if err := s.call(ctx, func(ctx context.Context) error {
		_, err := s.Items.CreateItem(ctx, it)
		return err
	}); err != nil {
		return nil, classify(err)
	}
	s.index(ctx, *it)
	return it, nil
}

func (s *ItemService) PatchItem(ctx context.Context, id uuid.UUID, req transport.PatchItemRequest) (*models.Item, error) {
	if req.ItemName != nil && strings.TrimSpace(*req.ItemName) == "" {
		return nil, fmt.Errorf("%w: item name cannot be empty", ErrValidation)
	}
	if req.Qty != nil && *req.Qty < 0 {
		return nil, fmt.Errorf("%w: qty must be >= 0", ErrValidation)
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: unit price must be >= 0", ErrValidation)
		}
		if err := checkCents("unit price", *req.UnitPrice); err != nil {
			return nil, err
		}
	}

	var it *models.Item
	if err := s.call(ctx, func(ctx context.Context) error {
		var err error
		it, err = s.Items.PatchItem(ctx, id, req)
		return err
	}); err != nil {
		return nil, classify(err)
	}
	s.index(ctx, *it)
	return it, nil
}

// DeleteItem drops an item from the catalog. Order lines keep its name.
func (s *ItemService) DeleteItem(ctx context.Context, sess session.Session, id uuid.UUID) error {
	if !sess.IsAdmin() {
		return fmt.Errorf("%w: admin only", ErrForbidden)
	}
	if err := s.call(ctx, func(ctx context.Context) error { return s.Items.DeleteItem(ctx, id) }); err != nil {
		return classify(err)
	}
	if s.Index != nil {
		if err := s.call(ctx, func(ctx context.Context) error {
			return s.Index.Delete(ctx, search.ItemsIndex, id.String())
		}); err != nil {
			logging.FromContext(ctx).Warn("unindex_item_failed", "item_id", id, "error", err)
		}
	}
	return nil
}

// LowStock lists every item below the reorder threshold.
func (s *ItemService) LowStock(ctx context.Context) ([]models.Item, error) {
	_, items, err := s.ListItems(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	return domain.LowStock(items), nil
}

func (s *ItemService) SearchItems(ctx context.Context, q string, offset, limit int) (int64, []models.Item, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, fmt.Errorf("%w: query required", ErrValidation)
	}

	var (
		total int64
		items []models.Item
	)
	if s.Index != nil {
		err := s.call(ctx, func(ctx context.Context) error {
			var err error
			total, items, err = s.Index.SearchItems(ctx, q, offset, limit)
			return err
		})
		if err == nil {
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "index", search.ItemsIndex, "error", err)
	}

	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		total, items, err = s.Items.SearchItemsByName(ctx, q, offset, limit)
		return err
	})
	return total, items, classify(err)
}

// Reindex pushes the whole catalog into the search index.
func (s *ItemService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	_, items, err := s.ListItems(ctx, 0, 0)
	if err != nil {
		return 0, err
	}
	for _, it := range items {
		if err := s.call(ctx, func(ctx context.Context) error { return s.Index.IndexItem(ctx, it) }); err != nil {
			return 0, fmt.Errorf("index item %s: %w", it.ID, err)
		}
	}
	return len(items), nil
}

func (s *ItemService) index(ctx context.Context, it models.Item) {
	if s.Index == nil {
		return
	}
	if err := s.call(ctx, func(ctx context.Context) error { return s.Index.IndexItem(ctx, it) }); err != nil {
		logging.FromContext(ctx).Warn("index_item_failed", "item_id", it.ID, "error", err)
	}
}

func (s *ItemService) call(ctx context.Context, fn func(ctx context.Context) error) error {
	sctx, cancel := withStepTimeout(ctx, s.StepTimeout)
	defer cancel()
	return fn(sctx)
}
