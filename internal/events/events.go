package events

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicOrders   = "order_events"
	TopicProducts = "product_events"
)

const (
	TypeOrderCreated       = "order_created"
	TypeOrderStatusUpdated = "order_status_updated"
	TypeProductCreated     = "product_created"
	TypeProductUpdated     = "product_updated"
	TypeProductDeleted     = "product_deleted"
)

const envelopeVersion = 1

// Envelope wraps every message on the bus. Payload holds one of the payload types below.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderLine struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderPayload struct {
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id"`
	Items         []OrderLine     `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	OrderStatus   string          `json:"order_status"`
	PaymentStatus string          `json:"payment_status"`
}

type ProductPayload struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Category  string          `json:"category,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}
