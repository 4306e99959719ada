package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-table-pos.git/internal/redisx"
)

// Index is the read-mostly cache of per-table order summaries used by table
// pickers. It is replaced wholesale on Refresh and allowed to be stale in
// between; summaries are also written through to Redis so other terminals
// can read them without hitting the store.
type Index struct {
	mu      sync.RWMutex
	gw      SessionGateway
	rdb     *redis.Client // optional
	log     *logrus.Logger
	byTable map[string]ActiveOrderSummary
}

func NewIndex(gw SessionGateway, rdb *redis.Client, log *logrus.Logger) *Index {
	return &Index{
		gw:      gw,
		rdb:     rdb,
		log:     log,
		byTable: map[string]ActiveOrderSummary{},
	}
}

// Refresh reloads every summary from the gateway and swaps the whole map.
func (x *Index) Refresh(ctx context.Context) error {
	sums, err := x.gw.ListActiveSessions(ctx)
	if err != nil {
		return fmt.Errorf("list active sessions: %w", err)
	}
	byTable := make(map[string]ActiveOrderSummary, len(sums))
	for _, s := range sums {
		byTable[s.TableName] = s
	}

	x.mu.Lock()
	x.byTable = byTable
	x.mu.Unlock()

	if x.rdb != nil {
		for _, s := range sums {
			key := fmt.Sprintf(redisx.KeyActiveOrder, s.TableName)
			b, _ := json.Marshal(s)
			if err := x.rdb.Set(ctx, key, b, redisx.TTLActiveOrder).Err(); err != nil {
				x.log.WithError(err).WithField("table", s.TableName).Warn("index cache write failed")
				break
			}
		}
	}
	return nil
}

// Total returns the cached total for a table, falling back to the Redis
// cache, then 0. The live-session override lives in Engine.GetTableTotal.
func (x *Index) Total(tableName string) float64 {
	x.mu.RLock()
	s, ok := x.byTable[tableName]
	x.mu.RUnlock()
	if ok {
		return s.TotalAmount
	}
	if x.rdb != nil {
		key := fmt.Sprintf(redisx.KeyActiveOrder, tableName)
		if raw, err := x.rdb.Get(context.Background(), key).Result(); err == nil {
			var cached ActiveOrderSummary
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached.TotalAmount
			}
		}
	}
	return 0
}

func (x *Index) Summaries() []ActiveOrderSummary {
	x.mu.RLock()
	out := make([]ActiveOrderSummary, 0, len(x.byTable))
	for _, s := range x.byTable {
		out = append(out, s)
	}
	x.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].TableName < out[j].TableName })
	return out
}
