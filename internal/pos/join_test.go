package pos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tableGWStub struct {
	joined    [][]string
	unjoined  [][]string
	joinErr   error
	schedules []Schedule
	resvs     []Reservation
}

func (g *tableGWStub) ListTables(ctx context.Context) ([]Table, error) { return nil, nil }

func (g *tableGWStub) Join(ctx context.Context, groupID string, ids []string) error {
	if g.joinErr != nil {
		return g.joinErr
	}
	g.joined = append(g.joined, ids)
	return nil
}

func (g *tableGWStub) Unjoin(ctx context.Context, ids []string) error {
	g.unjoined = append(g.unjoined, ids)
	return nil
}

func (g *tableGWStub) SetSchedule(ctx context.Context, sch Schedule) error { return nil }

func (g *tableGWStub) ListSchedules(ctx context.Context, date string) ([]Schedule, error) {
	return g.schedules, nil
}

func (g *tableGWStub) ListReservations(ctx context.Context, date string) ([]Reservation, error) {
	return g.resvs, nil
}

func testRegistry() *Registry {
	return NewRegistry([]Table{
		{ID: "3", Name: "T3", Seats: 4, Status: TableAvailable},
		{ID: "4", Name: "T4", Seats: 2, Status: TableAvailable},
		{ID: "5", Name: "T5", Seats: 6, Status: TableAvailable},
	})
}

func TestJoinAndUnjoin(t *testing.T) {
	reg := testRegistry()
	gw := &tableGWStub{}
	c := NewCoordinator(reg, gw, testLogger(), nil)
	ctx := context.Background()

	group, err := c.Join(ctx, []string{"3", "4"})
	require.NoError(t, err)
	assert.NotEmpty(t, group.ID)
	assert.Equal(t, [][]string{{"3", "4"}}, gw.joined)

	t3, _ := reg.Get("3")
	t4, _ := reg.Get("4")
	assert.Equal(t, TableJoined, t3.Status)
	assert.Equal(t, TableJoined, t4.Status)
	assert.Equal(t, group.ID, t3.JoinGroupID)
	assert.Equal(t, "joined with T4", t3.JoinedWith)
	assert.Equal(t, "joined with T3", t4.JoinedWith)

	require.NoError(t, c.Unjoin(ctx, []string{"3", "4"}))
	t3, _ = reg.Get("3")
	t4, _ = reg.Get("4")
	assert.Equal(t, TableAvailable, t3.Status)
	assert.Equal(t, TableAvailable, t4.Status)
	assert.Empty(t, t3.JoinGroupID)
	assert.Empty(t, t3.JoinedWith)
}

func TestJoinRequiresTwoTables(t *testing.T) {
	c := NewCoordinator(testRegistry(), &tableGWStub{}, testLogger(), nil)
	_, err := c.Join(context.Background(), []string{"3"})
	assert.ErrorIs(t, err, ErrJoinTooFew)
}

func TestJoinRejectsAlreadyJoinedTable(t *testing.T) {
	reg := testRegistry()
	gw := &tableGWStub{}
	c := NewCoordinator(reg, gw, testLogger(), nil)
	ctx := context.Background()

	_, err := c.Join(ctx, []string{"3", "4"})
	require.NoError(t, err)

	_, err = c.Join(ctx, []string{"4", "5"})
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	// validation failure leaves T5 untouched
	t5, _ := reg.Get("5")
	assert.Equal(t, TableAvailable, t5.Status)
	assert.Len(t, gw.joined, 1)
}

func TestJoinUnknownTable(t *testing.T) {
	c := NewCoordinator(testRegistry(), &tableGWStub{}, testLogger(), nil)
	_, err := c.Join(context.Background(), []string{"3", "99"})
	assert.ErrorIs(t, err, ErrTableUnknown)
}

func TestUnjoinRestoresOccupiedWhenSessionOpen(t *testing.T) {
	reg := testRegistry()
	c := NewCoordinator(reg, &tableGWStub{}, testLogger(), func() string { return "T3" })
	ctx := context.Background()

	_, err := c.Join(ctx, []string{"3", "4"})
	require.NoError(t, err)
	require.NoError(t, c.Unjoin(ctx, []string{"3", "4"}))

	t3, _ := reg.Get("3")
	t4, _ := reg.Get("4")
	assert.Equal(t, TableOccupied, t3.Status, "the open table comes back occupied")
	assert.Equal(t, TableAvailable, t4.Status)
}

func TestConflictsForToday(t *testing.T) {
	gw := &tableGWStub{
		schedules: []Schedule{
			{TableID: "3", Date: "2026-09-01", Timeslots: []string{"18:00"}, Status: TableUnavailable},
			{TableID: "3", Date: "2026-09-02", Timeslots: []string{"19:00"}, Status: TableUnavailable},
			{TableID: "4", Date: "2026-09-01", Status: TableJoined, JoinedWith: "T3"},
		},
		resvs: []Reservation{
			{ID: "r1", TableID: "3", Date: "2026-09-01", Status: ReservationConfirmed},
			{ID: "r2", TableID: "3", Date: "2026-09-01", Status: ReservationCancelled},
			{ID: "r3", TableID: "3", Date: "2026-09-03", Status: ReservationPending},
			{ID: "r4", TableID: "4", Date: "2026-09-01", Status: ReservationPending},
		},
	}
	c := NewCoordinator(testRegistry(), gw, testLogger(), nil)

	schedules, resvs, err := c.ConflictsForToday(context.Background(), "3", "2026-09-01")
	require.NoError(t, err)

	require.Len(t, schedules, 1)
	assert.Equal(t, []string{"18:00"}, schedules[0].Timeslots)

	require.Len(t, resvs, 1, "cancelled, other-day and other-table reservations are excluded")
	assert.Equal(t, "r1", resvs[0].ID)
}
