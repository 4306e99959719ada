package redisx

import "time"

const (
	// Cached table picker summary: active_order:{table_name} -> ActiveOrderSummary JSON
	KeyActiveOrder = "active_order:%s"

	// Dedup event processing: dedup:{service}:{id} (id = event_id)
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLActiveOrder = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
