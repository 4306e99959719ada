package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-table-pos.git/internal/pos"
)

// TableRepo persists table status, join groups and schedules.
type TableRepo struct{ DB *pgxpool.Pool }

func (r *TableRepo) ListTables(ctx context.Context) ([]pos.Table, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, seats, status, COALESCE(join_group, '')
		FROM tables ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pos.Table
	for rows.Next() {
		var t pos.Table
		if err := rows.Scan(&t.ID, &t.Name, &t.Seats, &t.Status, &t.JoinGroupID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Join marks each table joined under the group id. All or nothing: an
// unknown table id rolls the whole thing back.
func (r *TableRepo) Join(ctx context.Context, groupID string, tableIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, id := range tableIDs {
		ct, err := tx.Exec(ctx, `
			UPDATE tables SET status='joined', join_group=$2 WHERE id=$1`, id, groupID)
		if err != nil {
			return err
		}
		if ct.RowsAffected() != 1 {
			return fmt.Errorf("%w: %s", pos.ErrTableUnknown, id)
		}
	}
	return tx.Commit(ctx)
}

func (r *TableRepo) Unjoin(ctx context.Context, tableIDs []string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE tables SET status='available', join_group=NULL
		WHERE id = ANY($1)`, tableIDs)
	return err
}

func (r *TableRepo) SetSchedule(ctx context.Context, sch pos.Schedule) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO table_schedules(table_id, date, timeslots, status, joined_with)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (table_id, date) DO UPDATE SET
			timeslots=EXCLUDED.timeslots, status=EXCLUDED.status,
			joined_with=EXCLUDED.joined_with`,
		sch.TableID, sch.Date, sch.Timeslots, sch.Status, sch.JoinedWith)
	return err
}

func (r *TableRepo) ListSchedules(ctx context.Context, date string) ([]pos.Schedule, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT table_id, date, timeslots, status, COALESCE(joined_with, '')
		FROM table_schedules WHERE date=$1`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pos.Schedule
	for rows.Next() {
		var s pos.Schedule
		if err := rows.Scan(&s.TableID, &s.Date, &s.Timeslots, &s.Status, &s.JoinedWith); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *TableRepo) ListReservations(ctx context.Context, date string) ([]pos.Reservation, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, table_id, date, status
		FROM reservations WHERE date=$1`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pos.Reservation
	for rows.Next() {
		var rv pos.Reservation
		if err := rows.Scan(&rv.ID, &rv.TableID, &rv.Date, &rv.Status); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
