package events

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeChargeCreated       = "charge.created"
	EventTypeChargeStatusChanged = "charge.status_changed"
)

func newBaseEvent(eventType string) BaseEvent {
	return BaseEvent{ID: uuid.NewString(), Type: eventType}
}

// ChargeCreatedEvent is published once the gateway accepted a charge.
type ChargeCreatedEvent struct {
	BaseEvent
	TransactionID string          `json:"transaction_id"`
	OrderID       string          `json:"order_id"`
	CustomerName  string          `json:"customer_name"`
	Amount        decimal.Decimal `json:"amount"`
}

func NewChargeCreatedEvent(transactionID, orderID, customerName string, amount decimal.Decimal) *ChargeCreatedEvent {
	return &ChargeCreatedEvent{
		BaseEvent:     newBaseEvent(EventTypeChargeCreated),
		TransactionID: transactionID,
		OrderID:       orderID,
		CustomerName:  customerName,
		Amount:        amount,
	}
}

// ChargeStatusChangedEvent carries a status notification received from the
// gateway webhook. Status is the raw gateway value.
type ChargeStatusChangedEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Amount  string `json:"amount"`
}

func NewChargeStatusChangedEvent(orderID, status, amount string) *ChargeStatusChangedEvent {
	return &ChargeStatusChangedEvent{
		BaseEvent: newBaseEvent(EventTypeChargeStatusChanged),
		OrderID:   orderID,
		Status:    status,
		Amount:    amount,
	}
}
