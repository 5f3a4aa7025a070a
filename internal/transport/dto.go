package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateCustomerRequest struct {
	Name   string `json:"name"   validate:"required"`
	Phone  string `json:"phone"  validate:"required"`
	Branch string `json:"branch" validate:"omitempty,oneof=DPHeadbranch DPSubBranch"`
}

type PatchCustomerRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

type CreateItemRequest struct {
	ItemName  string          `json:"itemName" validate:"required"`
	Qty       int             `json:"qty"      validate:"min=0"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type PatchItemRequest struct {
	ItemName  *string          `json:"itemName"`
	Qty       *int             `json:"qty"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
}

// CreateOrderLine is either a catalog line (ItemID set, price comes from the
// catalog) or a free-text line for custom orders.
type CreateOrderLine struct {
	ItemID   *uuid.UUID      `json:"itemId"`
	ItemName string          `json:"itemName"`
	Quantity int             `json:"quantity" validate:"gt=0"`
	Price    decimal.Decimal `json:"price"`
}

type CreateOrderRequest struct {
	OrderType     string            `json:"orderType"     validate:"omitempty,oneof=standard custom"`
	CustomerID    *uuid.UUID        `json:"customerId"`
	CustomerName  string            `json:"customerName"`
	CustomerPhone string            `json:"customerPhone"`
	Items         []CreateOrderLine `json:"items"         validate:"required,min=1,dive"`
	PaidAmount    decimal.Decimal   `json:"paidAmount"`
}

type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"omitempty,oneof=admin user"`
	Branch   string `json:"branch"   validate:"required,oneof=DPHeadbranch DPSubBranch"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}
