package service

import (
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	topicOrders   = events.TopicOrders
	topicProducts = events.TopicProducts
)

func orderPayload(o *models.Order) events.OrderPayload {
	lines := make([]events.OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, events.OrderLine{ProductID: it.ProductID.String(), Quantity: it.Quantity, Price: it.Price})
	}
	return events.OrderPayload{
		OrderID:       o.OrderID,
		UserID:        o.UserID.String(),
		Items:         lines,
		TotalAmount:   o.TotalAmount,
		OrderStatus:   string(o.OrderStatus),
		PaymentStatus: string(o.PaymentStatus),
	}
}

func productPayload(p models.Product) events.ProductPayload {
	return events.ProductPayload{
		ProductID: p.ID.String(),
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price,
		Stock:     p.Stock,
	}
}
