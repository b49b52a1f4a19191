package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPending || s == PaymentStatusCompleted
}

type ShippingAddress struct {
	Name    string `gorm:"size:200;not null" json:"name"    validate:"required"`
	Phone   string `gorm:"size:50;not null"  json:"phone"   validate:"required"`
	Address string `gorm:"size:500;not null" json:"address" validate:"required"`
	City    string `gorm:"size:100;not null" json:"city"    validate:"required"`
	Pincode string `gorm:"size:20;not null"  json:"pincode" validate:"required"`
}

// Order is written once at checkout. Afterwards only OrderStatus and PaymentStatus change.
type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"                         json:"id"`
	OrderID         string          `gorm:"size:40;not null;uniqueIndex"                 json:"orderId"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"                     json:"userId"`
	Items           []OrderItem     `gorm:"foreignKey:OrderRef;constraint:OnDelete:CASCADE" json:"products"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null"                  json:"totalAmount"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_"            json:"shippingAddress"`
	PaymentMethod   string          `gorm:"size:50;not null;default:'Card'"              json:"paymentMethod"`
	OrderStatus     OrderStatus     `gorm:"size:20;not null;index"                       json:"orderStatus"`
	PaymentStatus   PaymentStatus   `gorm:"size:20;not null;index"                       json:"paymentStatus"`
	CreatedAt       time.Time       `gorm:"index"                                        json:"createdAt"`
	UpdatedAt       time.Time       `                                                    json:"updatedAt"`

	User *UserSummary `gorm:"-" json:"user,omitempty"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"         json:"-"`
	OrderRef  uuid.UUID       `gorm:"type:uuid;not null;index"     json:"-"`
	Position  int             `gorm:"not null;default:0"           json:"-"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"     json:"productId"`
	Quantity  int             `gorm:"not null;check:quantity >= 1" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"price"`

	Product *ProductSummary `gorm:"-" json:"product,omitempty"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal is the captured unit price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// StatusPatch carries the optional fields of a status update.
type StatusPatch struct {
	OrderStatus   *OrderStatus   `json:"orderStatus,omitempty"`
	PaymentStatus *PaymentStatus `json:"paymentStatus,omitempty"`
}

func (p StatusPatch) Empty() bool {
	return p.OrderStatus == nil && p.PaymentStatus == nil
}

// OrderStatusView is the cached projection served by the status endpoint.
type OrderStatusView struct {
	OrderID       string        `json:"orderId"`
	UserID        uuid.UUID     `json:"userId"`
	OrderStatus   OrderStatus   `json:"orderStatus"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (o Order) StatusView() OrderStatusView {
	return OrderStatusView{
		OrderID:       o.OrderID,
		UserID:        o.UserID,
		OrderStatus:   o.OrderStatus,
		PaymentStatus: o.PaymentStatus,
		UpdatedAt:     o.UpdatedAt,
	}
}
