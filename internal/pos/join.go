package pos

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Registry holds the known physical tables. Tables are created and deleted
// by an external collaborator; only status and join-group fields are mutated
// here, through the Coordinator.
type Registry struct {
	mu   sync.RWMutex
	byID map[string]*Table
}

func NewRegistry(tables []Table) *Registry {
	byID := make(map[string]*Table, len(tables))
	for i := range tables {
		t := tables[i]
		byID[t.ID] = &t
	}
	return &Registry{byID: byID}
}

func (r *Registry) Get(id string) (Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	if !ok {
		return Table{}, false
	}
	return *t, true
}

func (r *Registry) List() []Table {
	r.mu.RLock()
	out := make([]Table, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, *t)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Coordinator merges and splits groups of tables into one seating unit and
// answers same-day schedule/reservation conflict queries.
type Coordinator struct {
	reg  *Registry
	gw   TableGateway
	log  *logrus.Logger
	open func() string // table name currently open in the engine, or ""
}

func NewCoordinator(reg *Registry, gw TableGateway, log *logrus.Logger, open func() string) *Coordinator {
	if open == nil {
		open = func() string { return "" }
	}
	return &Coordinator{reg: reg, gw: gw, log: log, open: open}
}

// Join seats the given tables as one unit. Requires at least two tables,
// none of which may already belong to a group. Validation failures mutate
// nothing; the gateway write happens before local state changes.
func (c *Coordinator) Join(ctx context.Context, tableIDs []string) (JoinGroup, error) {
	if len(tableIDs) < 2 {
		return JoinGroup{}, ErrJoinTooFew
	}
	names := make(map[string]string, len(tableIDs))
	for _, id := range tableIDs {
		t, ok := c.reg.Get(id)
		if !ok {
			return JoinGroup{}, fmt.Errorf("%w: %s", ErrTableUnknown, id)
		}
		if t.JoinGroupID != "" {
			return JoinGroup{}, fmt.Errorf("%w: %s", ErrAlreadyJoined, t.Name)
		}
		names[id] = t.Name
	}

	group := JoinGroup{ID: uuid.NewString(), TableIDs: tableIDs}
	if err := c.gw.Join(ctx, group.ID, tableIDs); err != nil {
		return JoinGroup{}, fmt.Errorf("persist join: %w", err)
	}

	c.reg.mu.Lock()
	for _, id := range tableIDs {
		t := c.reg.byID[id]
		t.Status = TableJoined
		t.JoinGroupID = group.ID
		t.JoinedWith = "joined with " + strings.Join(othersOf(id, tableIDs, names), ", ")
	}
	c.reg.mu.Unlock()

	c.log.WithField("tables", tableIDs).Info("tables joined")
	return group, nil
}

// Unjoin dissolves the group for the given tables. Each comes back as
// available, unless a session is open for it, which makes it occupied.
func (c *Coordinator) Unjoin(ctx context.Context, tableIDs []string) error {
	for _, id := range tableIDs {
		if _, ok := c.reg.Get(id); !ok {
			return fmt.Errorf("%w: %s", ErrTableUnknown, id)
		}
	}
	if err := c.gw.Unjoin(ctx, tableIDs); err != nil {
		return fmt.Errorf("persist unjoin: %w", err)
	}

	openTable := c.open()
	c.reg.mu.Lock()
	for _, id := range tableIDs {
		t := c.reg.byID[id]
		t.JoinGroupID = ""
		t.JoinedWith = ""
		if t.Name == openTable {
			t.Status = TableOccupied
		} else {
			t.Status = TableAvailable
		}
	}
	c.reg.mu.Unlock()

	c.log.WithField("tables", tableIDs).Info("tables unjoined")
	return nil
}

// ConflictsForToday lists today's schedule entries and reservations for one
// table, unmodified, for display. Read-only. Cancelled reservations are
// excluded.
func (c *Coordinator) ConflictsForToday(ctx context.Context, tableID string, today string) ([]Schedule, []Reservation, error) {
	schedules, err := c.gw.ListSchedules(ctx, today)
	if err != nil {
		return nil, nil, fmt.Errorf("list schedules: %w", err)
	}
	reservations, err := c.gw.ListReservations(ctx, today)
	if err != nil {
		return nil, nil, fmt.Errorf("list reservations: %w", err)
	}
	return FilterSchedules(schedules, tableID, today), FilterReservations(reservations, tableID, today), nil
}

func FilterSchedules(in []Schedule, tableID, date string) []Schedule {
	var out []Schedule
	for _, s := range in {
		if s.TableID == tableID && s.Date == date {
			out = append(out, s)
		}
	}
	return out
}

func FilterReservations(in []Reservation, tableID, date string) []Reservation {
	var out []Reservation
	for _, r := range in {
		if r.TableID != tableID || r.Date != date {
			continue
		}
		if r.Status == ReservationCancelled {
			continue
		}
		out = append(out, r)
	}
	return out
}

func othersOf(id string, ids []string, names map[string]string) []string {
	out := make([]string, 0, len(ids)-1)
	for _, other := range ids {
		if other != id {
			out = append(out, names[other])
		}
	}
	return out
}
