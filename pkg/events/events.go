// Package events records order lifecycle changes. Services hand events to a
// Dispatcher, whose actor writes an audit log entry and publishes the event
// to the message broker when one is configured.
package events

import (
	"context"
	"time"

	"github.com/example/storefront/pkg/models"
)

const ServiceName = "storefront"

const (
	ActionCreated   = "created"
	ActionPaid      = "paid"
	ActionDelivered = "delivered"
)

type OrderEvent struct {
	Action     string                 `json:"action"`
	OrderID    string                 `json:"orderId"`
	UserID     string                 `json:"userId"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}

// RoutingKey is the broker routing key, e.g. "order.paid".
func (e *OrderEvent) RoutingKey() string {
	return "order." + e.Action
}

// Ack is the actor's reply when an event is sent with a request.
type Ack struct {
	Audited   bool
	Published bool
}

type AuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type Broker interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// Emitter is what services depend on.
type Emitter interface {
	Emit(evt *OrderEvent)
}

func NewOrderEvent(action string, order *models.Order) *OrderEvent {
	return &OrderEvent{
		Action:  action,
		OrderID: order.ID.Hex(),
		UserID:  order.User.Hex(),
		Data: map[string]interface{}{
			"totalPrice":  order.TotalPrice,
			"isPaid":      order.IsPaid,
			"isDelivered": order.IsDelivered,
		},
		OccurredAt: time.Now(),
	}
}
