package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-table-pos.git/internal/pos"
)

// SessionRepo is the Postgres SessionPersistenceGateway. Drafts live in
// table_sessions keyed by table name; settlement archives the order into
// settled_orders and deletes the draft in one transaction.
type SessionRepo struct{ DB *pgxpool.Pool }

func (r *SessionRepo) GetSession(ctx context.Context, tableName string) (*pos.SessionSnapshot, error) {
	var (
		snap      pos.SessionSnapshot
		linesJSON []byte
	)
	err := r.DB.QueryRow(ctx, `
		SELECT table_name, lines, discount_kind, discount_value,
		       service_kind, service_value,
		       COALESCE(customer_name,''), COALESCE(customer_notes,''),
		       subtotal, total_amount
		FROM table_sessions WHERE table_name=$1`, tableName).
		Scan(&snap.TableName, &linesJSON, &snap.Discount.Kind, &snap.Discount.Value,
			&snap.ServiceCharge.Kind, &snap.ServiceCharge.Value,
			&snap.CustomerName, &snap.CustomerNotes,
			&snap.Subtotal, &snap.TotalAmount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, pos.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(linesJSON, &snap.Lines); err != nil {
		return nil, fmt.Errorf("decode lines for %q: %w", tableName, err)
	}
	return &snap, nil
}

func (r *SessionRepo) SaveSession(ctx context.Context, snap pos.SessionSnapshot) error {
	linesJSON, err := json.Marshal(snap.Lines)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx, `
		INSERT INTO table_sessions(table_name, lines, discount_kind, discount_value,
		                           service_kind, service_value, customer_name, customer_notes,
		                           subtotal, total_amount, item_count, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())
		ON CONFLICT (table_name) DO UPDATE SET
			lines=EXCLUDED.lines,
			discount_kind=EXCLUDED.discount_kind, discount_value=EXCLUDED.discount_value,
			service_kind=EXCLUDED.service_kind, service_value=EXCLUDED.service_value,
			customer_name=EXCLUDED.customer_name, customer_notes=EXCLUDED.customer_notes,
			subtotal=EXCLUDED.subtotal, total_amount=EXCLUDED.total_amount,
			item_count=EXCLUDED.item_count, updated_at=now()`,
		snap.TableName, linesJSON, snap.Discount.Kind, snap.Discount.Value,
		snap.ServiceCharge.Kind, snap.ServiceCharge.Value,
		snap.CustomerName, snap.CustomerNotes,
		snap.Subtotal, snap.TotalAmount, itemCount(snap.Lines))
	return err
}

// CompleteSession archives the draft together with its payment record and
// removes it, atomically.
func (r *SessionRepo) CompleteSession(ctx context.Context, tableName string, pay pos.PaymentRecord) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		linesJSON           []byte
		subtotal, total     float64
		custName, custNotes string
	)
	err = tx.QueryRow(ctx, `
		SELECT lines, subtotal, total_amount,
		       COALESCE(customer_name,''), COALESCE(customer_notes,'')
		FROM table_sessions WHERE table_name=$1`, tableName).
		Scan(&linesJSON, &subtotal, &total, &custName, &custNotes)
	if errors.Is(err, pgx.ErrNoRows) {
		return pos.ErrNotFound
	}
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO settled_orders(id, table_name, lines, subtotal, total_amount,
		                           customer_name, customer_notes,
		                           amount_received, method, change_given, settled_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now())`,
		uuid.NewString(), tableName, linesJSON, subtotal, total,
		custName, custNotes, pay.AmountReceived, string(pay.Method), pay.Change)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM table_sessions WHERE table_name=$1`, tableName); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *SessionRepo) ListActiveSessions(ctx context.Context) ([]pos.ActiveOrderSummary, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT table_name, total_amount, item_count
		FROM table_sessions ORDER BY table_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pos.ActiveOrderSummary
	for rows.Next() {
		var s pos.ActiveOrderSummary
		if err := rows.Scan(&s.TableName, &s.TotalAmount, &s.ItemCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func itemCount(lines []pos.OrderLineItem) int {
	var n int
	for _, ln := range lines {
		n += ln.Quantity
	}
	return n
}
