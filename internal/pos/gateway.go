package pos

import "context"

// SessionGateway is the durable store for per-table drafts.
// GetSession returns ErrNotFound when no draft exists for the table.
type SessionGateway interface {
	GetSession(ctx context.Context, tableName string) (*SessionSnapshot, error)
	SaveSession(ctx context.Context, snap SessionSnapshot) error
	CompleteSession(ctx context.Context, tableName string, pay PaymentRecord) error
	ListActiveSessions(ctx context.Context) ([]ActiveOrderSummary, error)
}

// TableGateway persists table status, join groups and schedules.
type TableGateway interface {
	ListTables(ctx context.Context) ([]Table, error)
	Join(ctx context.Context, groupID string, tableIDs []string) error
	Unjoin(ctx context.Context, tableIDs []string) error
	SetSchedule(ctx context.Context, sch Schedule) error
	ListSchedules(ctx context.Context, date string) ([]Schedule, error)
	ListReservations(ctx context.Context, date string) ([]Reservation, error)
}

// QueueGateway is the externally fed customer-order queue.
// DeleteOrder on an entry that is already gone returns nil.
type QueueGateway interface {
	ListPending(ctx context.Context) ([]CustomerSubmittedOrder, error)
	DeleteOrder(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status OrderStatus) error
}
