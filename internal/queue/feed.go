package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	kafkax "github.com/ariefcatur/go-table-pos.git/internal/kafka"
	"github.com/ariefcatur/go-table-pos.git/internal/pos"
	"github.com/ariefcatur/go-table-pos.git/internal/redisx"
)

// OrderStore is where intaken customer orders land. Inserts must tolerate
// replays of the same order id.
type OrderStore interface {
	InsertOrder(ctx context.Context, o pos.CustomerSubmittedOrder) error
}

// Feed ingests customer-submitted orders from the event stream into the
// queue store. This is the "externally fed" side of the customer order
// queue.
type Feed struct {
	Store       OrderStore
	Redis       *redis.Client
	Log         *logrus.Logger
	ServiceName string
}

// HandleSubmitted is wired as a consumer handler.
func (f *Feed) HandleSubmitted(ctx context.Context, m kafkago.Message) error {
	var env pos.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != pos.EventCustomerOrderSubmitted {
		return nil // ignore
	}

	// dedup by event_id so redeliveries do not hit the store
	dkey := fmt.Sprintf(redisx.KeyDedup, f.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, f.Redis, dkey); exists {
		return nil
	}

	p, err := kafkax.UnwrapPayload[pos.CustomerOrderSubmittedPayload](env.Payload)
	if err != nil {
		return err
	}

	order := pos.CustomerSubmittedOrder{
		ID:            p.OrderID,
		TableName:     p.TableName,
		CustomerName:  p.CustomerName,
		CustomerNotes: p.CustomerNotes,
		Items:         p.Items,
		Status:        pos.OrderPending,
	}
	if err := f.Store.InsertOrder(ctx, order); err != nil {
		return err
	}
	_ = f.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	f.Log.WithFields(logrus.Fields{"order": p.OrderID, "table": p.TableName}).Info("customer order queued")
	return nil
}
