package transport

import (
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderLine struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity"  validate:"min=1"`
}

type CreateOrderRequest struct {
	Products        []OrderLine            `json:"products"        validate:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"   validate:"omitempty,max=50"`

	// IdempotencyKey comes from the Idempotency-Key header.
	IdempotencyKey string `json:"-" validate:"omitempty,max=128"`
}

type UpdateStatusRequest struct {
	OrderStatus   *string `json:"orderStatus"`
	PaymentStatus *string `json:"paymentStatus"`
}

type CreateProductRequest struct {
	Name        string           `json:"name"        validate:"required,max=200"`
	Description string           `json:"description" validate:"required"`
	Price       *decimal.Decimal `json:"price"       validate:"required"`
	Category    string           `json:"category"    validate:"required,max=100"`
	Stock       *int             `json:"stock"       validate:"omitempty,min=0"`
	Images      []string         `json:"images"      validate:"omitempty,dive,required"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,min=1"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"    validate:"omitempty,min=1,max=100"`
	Stock       *int             `json:"stock"       validate:"omitempty,min=0"`
	Images      *[]string        `json:"images"`
}

type ProductListQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
	Sort     string
}

type ProductPage struct {
	Products      []models.Product `json:"products"`
	CurrentPage   int              `json:"currentPage"`
	TotalPages    int64            `json:"totalPages"`
	TotalProducts int64            `json:"totalProducts"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   int64       `json:"expires_at"`
	User        models.User `json:"user"`
}
