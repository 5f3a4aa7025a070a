package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/dp_pos/internal/models"
	"github.com/Skotchmaster/dp_pos/internal/notify"
	"github.com/Skotchmaster/dp_pos/internal/repo"
	"github.com/Skotchmaster/dp_pos/internal/transport"
)

// The stores are satisfied by *repo.GormRepo. Tests wrap it to inject
// collaborator failures.

type CustomerStore interface {
	ListCustomers(ctx context.Context, branch string, offset, limit int) (int64, []models.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindCustomerByPhone(ctx context.Context, phone, branch string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, c *models.Customer) (*models.Customer, error)
	PatchCustomer(ctx context.Context, id uuid.UUID, req transport.PatchCustomerRequest) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
	CustomersOwing(ctx context.Context) ([]models.Customer, error)
	RecalculateCustomerBalance(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	SearchCustomersByName(ctx context.Context, branch, q string, offset, limit int) (int64, []models.Customer, error)
}

type ItemStore interface {
	ListItems(ctx context.Context, offset, limit int) (int64, []models.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetItemsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Item, error)
	CreateItem(ctx context.Context, it *models.Item) (*models.Item, error)
	PatchItem(ctx context.Context, id uuid.UUID, req transport.PatchItemRequest) (*models.Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	DecrementStock(ctx context.Context, id uuid.UUID, n int) (bool, error)
	IncrementStock(ctx context.Context, id uuid.UUID, n int) error
	SearchItemsByName(ctx context.Context, q string, offset, limit int) (int64, []models.Item, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *models.Order) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, f repo.OrderFilter) (int64, []models.Order, error)
	OpenOrdersForCustomer(ctx context.Context, c *models.Customer) ([]models.Order, error)
	SaveOrderHeader(ctx context.Context, o, seen *models.Order) error
	MarkStockDeducted(ctx context.Context, orderItemID uuid.UUID, deducted bool) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

type UserStore interface {
	CreateUserIfNotExists(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateSession(ctx context.Context, s *models.Session) error
	RevokeSession(ctx context.Context, jti string) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

type Notifier interface {
	Notify(ctx context.Context, kind notify.Kind, phone string, data notify.Data) (notify.Report, error)
	Send(ctx context.Context, kind notify.Kind, phones []string, data notify.Data) (notify.Report, error)
}

// Indexer keeps the search index in step with the catalog and customer book.
// Searches go to the database when no indexer is configured.
type Indexer interface {
	IndexItem(ctx context.Context, it models.Item) error
	IndexCustomer(ctx context.Context, c models.Customer) error
	Delete(ctx context.Context, index, id string) error
	SearchItems(ctx context.Context, q string, from, size int) (int64, []models.Item, error)
	SearchCustomers(ctx context.Context, branch, q string, from, size int) (int64, []models.Customer, error)
}
