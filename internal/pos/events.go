package pos

import (
	"encoding/json"
	"time"
)

const (
	EventSessionSettled         = "SessionSettled"
	EventCustomerOrderSubmitted = "CustomerOrderSubmitted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // usually the table name
	Payload       json.RawMessage `json:"payload"`
}

type SessionSettledPayload struct {
	TableName      string          `json:"table_name"`
	Lines          []OrderLineItem `json:"lines"`
	Subtotal       float64         `json:"subtotal"`
	TotalAmount    float64         `json:"total_amount"`
	AmountReceived float64         `json:"amount_received"`
	Method         PaymentMethod   `json:"method"`
	Change         float64         `json:"change"`
}

type CustomerOrderSubmittedPayload struct {
	OrderID       string          `json:"order_id"`
	TableName     string          `json:"table_name"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerNotes string          `json:"customer_notes,omitempty"`
	Items         []OrderLineItem `json:"items"`
}
