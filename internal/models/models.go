package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type OrderType string

const (
	OrderTypeStandard OrderType = "standard"
	OrderTypeCustom   OrderType = "custom"
)

const (
	BranchHead = "DPHeadbranch"
	BranchSub  = "DPSubBranch"
)

func ValidBranch(b string) bool { return b == BranchHead || b == BranchSub }

type Customer struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"                          json:"id"`
	Name      string          `gorm:"not null"                                      json:"name"`
	Phone     string          `gorm:"not null;uniqueIndex:idx_customer_phone_branch" json:"phone"`
	Branch    string          `gorm:"not null;uniqueIndex:idx_customer_phone_branch" json:"branch"`
	Balance   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"          json:"balance"`
	CreatedAt time.Time       `gorm:"<-:create"                                     json:"createdAt"`
	UpdatedAt time.Time       `                                                     json:"updatedAt"`
}

type Item struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"            json:"id"`
	ItemName  string          `gorm:"not null;uniqueIndex"            json:"itemName"`
	Qty       int             `gorm:"not null;default:0;check:qty>=0" json:"qty"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"     json:"unitPrice"`
	CreatedAt time.Time       `gorm:"<-:create"                       json:"createdAt"`
	UpdatedAt time.Time       `                                       json:"updatedAt"`
}

type OrderItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"        json:"id"`
	OrderID       uuid.UUID       `gorm:"type:uuid;index;not null"    json:"orderId"`
	ItemID        *uuid.UUID      `gorm:"type:uuid;index"             json:"itemId,omitempty"`
	ItemName      string          `gorm:"not null"                    json:"itemName"`
	Quantity      int             `gorm:"not null;check:quantity>0"   json:"quantity"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	StockDeducted bool            `gorm:"not null;default:false"      json:"stockDeducted"`
	Position      int             `gorm:"not null;default:0"          json:"-"`
}

type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"                                json:"id"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index"                                     json:"customerId,omitempty"`
	CustomerName  string          `gorm:"not null"                                            json:"customerName"`
	CustomerPhone string          `gorm:"not null;index"                                      json:"customerPhone"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"      json:"items"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"                         json:"totalAmount"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"                         json:"paidAmount"`
	BalanceAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"                         json:"balanceAmount"`
	Status        OrderStatus     `gorm:"type:varchar(16);not null;index"                     json:"status"`
	OrderType     OrderType       `gorm:"type:varchar(16);not null"                           json:"orderType"`
	Branch        string          `gorm:"not null;index"                                      json:"branch"`
	CreatedAt     time.Time       `gorm:"<-:create;index"                                     json:"createdAt"`
	UpdatedAt     time.Time       `                                                           json:"updatedAt"`
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"  json:"email"`
	PasswordHash string    `gorm:"not null"              json:"-"`
	Role         string    `gorm:"not null"              json:"role"`
	Branch       string    `gorm:"not null"              json:"branch"`
	Phone        string    `                             json:"phone,omitempty"`
	CreatedAt    time.Time `gorm:"<-:create"             json:"createdAt"`
}

// Session is a server-side login record; the access token carries its ID as jti.
type Session struct {
	ID        string    `gorm:"primaryKey"               json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	Role      string    `gorm:"not null"                 json:"role"`
	Branch    string    `gorm:"not null"                 json:"branch"`
	ExpiresAt time.Time `gorm:"not null"                 json:"expiresAt"`
	Revoked   bool      `gorm:"default:false"            json:"revoked"`
	CreatedAt time.Time `gorm:"<-:create"                json:"createdAt"`
}

func (c *Customer) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (i *Item) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (oi *OrderItem) BeforeCreate(*gorm.DB) error {
	if oi.ID == uuid.Nil {
		oi.ID = uuid.New()
	}
	return nil
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{&Customer{}, &Item{}, &Order{}, &OrderItem{}, &User{}, &Session{}}
}
