package pos

type TableStatus string

const (
	TableAvailable   TableStatus = "available"
	TableOccupied    TableStatus = "occupied"
	TableReserved    TableStatus = "reserved"
	TableJoined      TableStatus = "joined"
	TableUnavailable TableStatus = "unavailable"
)

type Table struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Seats       int         `json:"seats"`
	Status      TableStatus `json:"status"`
	JoinGroupID string      `json:"join_group_id,omitempty"`
	JoinedWith  string      `json:"joined_with,omitempty"` // display only, e.g. "joined with T4"
}

// JoinGroup is a set of >=2 tables seated as one unit.
// A table belongs to at most one group at a time.
type JoinGroup struct {
	ID       string   `json:"id"`
	TableIDs []string `json:"table_ids"`
}

type OrderLineItem struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"` // always >= 1; a line at <=0 is removed, never stored
}

type OrderSession struct {
	TableName     string          `json:"table_name"`
	Lines         []OrderLineItem `json:"lines"`
	Discount      Charge          `json:"discount"`
	ServiceCharge Charge          `json:"service_charge"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerNotes string          `json:"customer_notes,omitempty"`
}

// BillTotals is derived from a session snapshot, never stored on its own.
type BillTotals struct {
	Subtotal            float64 `json:"subtotal"`
	DiscountAmount      float64 `json:"discount_amount"`
	ServiceChargeAmount float64 `json:"service_charge_amount"`
	Total               float64 `json:"total"`
}

type PaymentMethod string

const (
	PayCash PaymentMethod = "cash"
	PayCard PaymentMethod = "card"
)

type PaymentRecord struct {
	AmountReceived float64       `json:"amount_received"`
	Method         PaymentMethod `json:"method"`
	Change         float64       `json:"change"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderActive    OrderStatus = "active"
	OrderCompleted OrderStatus = "completed"
)

// CustomerSubmittedOrder is a self-service order waiting for a staff merge.
// Owned by the external queue; the engine only reads it and issues deletes.
type CustomerSubmittedOrder struct {
	ID            string          `json:"id"`
	TableName     string          `json:"table_name"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerNotes string          `json:"customer_notes,omitempty"`
	Items         []OrderLineItem `json:"items"`
	Status        OrderStatus     `json:"status"`
}

// ActiveOrderSummary is a cached projection used by table pickers.
// Refreshed wholesale, never partially patched.
type ActiveOrderSummary struct {
	TableName   string  `json:"table_name"`
	TotalAmount float64 `json:"total_amount"`
	ItemCount   int     `json:"item_count"`
}

// SessionSnapshot is the wire form handed to the persistence gateway.
type SessionSnapshot struct {
	TableName     string          `json:"table_name"`
	Lines         []OrderLineItem `json:"lines"`
	Discount      Charge          `json:"discount"`
	ServiceCharge Charge          `json:"service_charge"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerNotes string          `json:"customer_notes,omitempty"`
	Subtotal      float64         `json:"subtotal"`
	TotalAmount   float64         `json:"total_amount"`
}

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Schedule dates use the "2006-01-02" layout.
type Schedule struct {
	TableID    string      `json:"table_id"`
	Date       string      `json:"date"`
	Timeslots  []string    `json:"timeslots"`
	Status     TableStatus `json:"status"`
	JoinedWith string      `json:"joined_with,omitempty"`
}

type Reservation struct {
	ID      string            `json:"id"`
	TableID string            `json:"table_id"`
	Date    string            `json:"date"`
	Status  ReservationStatus `json:"status"`
}
