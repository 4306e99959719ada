package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-table-pos.git/internal/pos"
)

// QueueRepo stores customer self-submitted orders awaiting a staff merge.
type QueueRepo struct{ DB *pgxpool.Pool }

func (r *QueueRepo) ListPending(ctx context.Context) ([]pos.CustomerSubmittedOrder, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, table_name, COALESCE(customer_name,''), COALESCE(customer_notes,''), items, status
		FROM customer_orders WHERE status='pending' ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pos.CustomerSubmittedOrder
	for rows.Next() {
		var (
			o         pos.CustomerSubmittedOrder
			itemsJSON []byte
		)
		if err := rows.Scan(&o.ID, &o.TableName, &o.CustomerName, &o.CustomerNotes, &itemsJSON, &o.Status); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// InsertOrder is fed by the order intake consumer. Replays of the same order
// id are dropped.
func (r *QueueRepo) InsertOrder(ctx context.Context, o pos.CustomerSubmittedOrder) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx, `
		INSERT INTO customer_orders(id, table_name, customer_name, customer_notes, items, status, created_at)
		VALUES ($1,$2,$3,$4,$5,'pending',now())
		ON CONFLICT (id) DO NOTHING`,
		o.ID, o.TableName, o.CustomerName, o.CustomerNotes, itemsJSON)
	return err
}

// DeleteOrder is idempotent: deleting an entry that is already gone is not
// an error. A merge and a poll refresh may both try to remove it.
func (r *QueueRepo) DeleteOrder(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM customer_orders WHERE id=$1`, id)
	return err
}

func (r *QueueRepo) UpdateStatus(ctx context.Context, id string, status pos.OrderStatus) error {
	ct, err := r.DB.Exec(ctx, `UPDATE customer_orders SET status=$2 WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pos.ErrNotFound
	}
	return nil
}
