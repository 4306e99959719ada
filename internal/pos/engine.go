package pos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Engine owns the one open OrderSession of a terminal and orchestrates
// persistence around it: debounced autosave, the save-then-load table
// switch, settlement, and merging of customer-submitted orders.
//
// Every operation runs under one mutex, so requests arriving while another
// is in flight queue up instead of racing. In particular the outgoing
// table's save is always issued before the incoming table's load.
type Engine struct {
	mu sync.Mutex

	gw    SessionGateway
	queue QueueGateway
	index *Index
	log   *logrus.Logger

	cur    *OrderSession // nil when no table is open
	dirty  bool          // local draft has edits the store may not have
	settle *Settlement

	saveDelay time.Duration
	timer     *time.Timer
	timerGen  uint64 // bumping it invalidates a pending debounce fire
}

func NewEngine(gw SessionGateway, queue QueueGateway, index *Index, log *logrus.Logger, saveDelay time.Duration) *Engine {
	if saveDelay <= 0 {
		saveDelay = time.Second
	}
	return &Engine{gw: gw, queue: queue, index: index, log: log, saveDelay: saveDelay}
}

// OpenTable returns the currently bound table name, or "".
func (e *Engine) OpenTable() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur == nil {
		return ""
	}
	return e.cur.TableName
}

// Dirty reports whether the open draft has edits not acknowledged by the
// store. Rendered as an "unsynced" indicator; no automatic retry happens.
func (e *Engine) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// SwitchTable saves the outgoing table's draft, then binds and loads the
// incoming one. An absent draft binds an empty session; a load failure
// surfaces and leaves the previous binding in place.
func (e *Engine) SwitchTable(ctx context.Context, tableName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.switchLocked(ctx, tableName)
}

func (e *Engine) switchLocked(ctx context.Context, tableName string) error {
	if e.cur != nil && e.cur.TableName == tableName {
		return nil
	}
	if e.cur != nil {
		// explicit save preempts the pending debounce
		e.cancelTimerLocked()
		if err := e.saveLocked(ctx); err != nil {
			e.log.WithError(err).WithField("table", e.cur.TableName).Warn("save on switch failed, draft left unsynced")
		}
	}

	snap, err := e.gw.GetSession(ctx, tableName)
	switch {
	case errors.Is(err, ErrNotFound):
		e.cur = NewSession(tableName)
	case err != nil:
		// only an absent draft may start empty; a load failure must not bind
		// an empty session over a draft that may still exist in the store
		return fmt.Errorf("load session %q: %w", tableName, err)
	default:
		e.cur = SessionFromSnapshot(snap)
	}
	e.dirty = false
	return nil
}

// ClearSession drops the open draft without persisting it and unbinds the
// table.
func (e *Engine) ClearSession() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelTimerLocked()
	e.cur = nil
	e.dirty = false
	e.settle = nil
}

func (e *Engine) AddItem(item OrderLineItem) error {
	return e.mutate(func(s *OrderSession) { s.AddItem(item) })
}

func (e *Engine) UpdateQuantity(itemID string, qty int) error {
	return e.mutate(func(s *OrderSession) { s.UpdateQuantity(itemID, qty) })
}

func (e *Engine) RemoveItem(itemID string) error {
	return e.mutate(func(s *OrderSession) { s.RemoveItem(itemID) })
}

func (e *Engine) SetDiscount(c Charge) error {
	return e.mutate(func(s *OrderSession) { s.SetDiscount(c) })
}

func (e *Engine) SetServiceCharge(c Charge) error {
	return e.mutate(func(s *OrderSession) { s.SetServiceCharge(c) })
}

func (e *Engine) SetCustomer(name, notes string) error {
	return e.mutate(func(s *OrderSession) { s.SetCustomer(name, notes) })
}

func (e *Engine) mutate(fn func(*OrderSession)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur == nil {
		return ErrNoOpenSession
	}
	fn(e.cur)
	e.scheduleSaveLocked()
	return nil
}

// Bill computes totals for the open session.
func (e *Engine) Bill() (BillTotals, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur == nil {
		return BillTotals{}, ErrNoOpenSession
	}
	return Calculate(e.cur), nil
}

// Session returns a snapshot of the open draft for rendering.
func (e *Engine) Session() (SessionSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur == nil {
		return SessionSnapshot{}, ErrNoOpenSession
	}
	return Snapshot(e.cur), nil
}

// Save flushes the open draft immediately, preempting any pending debounce.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur == nil {
		return ErrNoOpenSession
	}
	e.cancelTimerLocked()
	return e.saveLocked(ctx)
}

// --- settlement ---

// OpenSettlement captures the current bill total as the amount due.
func (e *Engine) OpenSettlement() (*Settlement, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cur == nil {
		return nil, ErrNoOpenSession
	}
	e.settle = NewSettlement(Calculate(e.cur).Total)
	return e.settle, nil
}

func (e *Engine) Settlement() (*Settlement, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.settle == nil {
		return nil, ErrNoSettlement
	}
	return e.settle, nil
}

func (e *Engine) CancelSettlement() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.settle != nil {
		e.settle.Cancel()
		e.settle = nil
	}
}

// ConfirmSettlement finalizes payment via the gateway's completion call.
// On success the session is cleared and the index refreshed; the archived
// snapshot and payment record come back so callers can publish the settled
// event. A gateway rejection returns the machine to Awaiting with the
// entered amount intact.
func (e *Engine) ConfirmSettlement(ctx context.Context) (SessionSnapshot, PaymentRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.settle == nil {
		return SessionSnapshot{}, PaymentRecord{}, ErrNoSettlement
	}
	if e.cur == nil {
		return SessionSnapshot{}, PaymentRecord{}, ErrNoOpenSession
	}

	pay, err := e.settle.Confirm()
	if err != nil {
		return SessionSnapshot{}, PaymentRecord{}, err
	}

	table := e.cur.TableName
	if err := e.gw.CompleteSession(ctx, table, pay); err != nil {
		e.settle.reject()
		return SessionSnapshot{}, PaymentRecord{}, fmt.Errorf("complete session %q: %w", table, err)
	}
	e.settle.complete()

	snap := Snapshot(e.cur)
	e.cancelTimerLocked()
	e.cur = nil
	e.dirty = false
	e.settle = nil

	if err := e.index.Refresh(ctx); err != nil {
		e.log.WithError(err).Warn("index refresh after settlement failed")
	}
	return snap, pay, nil
}

// --- customer order merge ---

// MergeCustomerOrder folds a self-submitted order into the staff session for
// its table. Item quantities are expressed as per-unit AddItem increments so
// existing lines keep their increment semantics. The queue delete afterwards
// is not rolled back on failure; the caller reports it, the items stay, and
// the order is marked active so the poller stops offering it.
func (e *Engine) MergeCustomerOrder(ctx context.Context, order CustomerSubmittedOrder) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.switchLocked(ctx, order.TableName); err != nil {
		return err
	}
	for _, it := range order.Items {
		for n := 0; n < it.Quantity; n++ {
			e.cur.AddItem(OrderLineItem{ItemID: it.ItemID, Name: it.Name, UnitPrice: it.UnitPrice})
		}
	}
	if order.CustomerName != "" {
		e.cur.CustomerName = order.CustomerName
	}
	e.cur.CustomerNotes = mergeNotes(e.cur.CustomerNotes, order.CustomerNotes)
	e.scheduleSaveLocked()

	if err := e.queue.DeleteOrder(ctx, order.ID); err != nil && !errors.Is(err, ErrNotFound) {
		// keep the next poll from re-offering an order whose items landed
		if stErr := e.queue.UpdateStatus(ctx, order.ID, OrderActive); stErr != nil && !errors.Is(stErr, ErrNotFound) {
			e.log.WithError(stErr).WithField("order_id", order.ID).Warn("marking merged order active failed")
		}
		return fmt.Errorf("%w: order %q: %v", ErrQueueDelete, order.ID, err)
	}
	return nil
}

// mergeNotes appends the incoming note unless the existing notes already
// contain it. The containment test runs one way only (new inside existing),
// matching the shipped behavior, pending product confirmation.
func mergeNotes(existing, incoming string) string {
	if incoming == "" {
		return existing
	}
	if strings.Contains(existing, incoming) {
		return existing
	}
	if existing == "" {
		return incoming
	}
	return existing + " | " + incoming
}

// --- index ---

// GetTableTotal prefers the live total whenever the table is open with at
// least one line; otherwise the cached summary, otherwise 0.
func (e *Engine) GetTableTotal(tableName string) float64 {
	e.mu.Lock()
	if e.cur != nil && e.cur.TableName == tableName && len(e.cur.Lines) > 0 {
		total := Calculate(e.cur).Total
		e.mu.Unlock()
		return total
	}
	e.mu.Unlock()
	return e.index.Total(tableName)
}

func (e *Engine) RefreshIndex(ctx context.Context) error {
	return e.index.Refresh(ctx)
}

func (e *Engine) Summaries() []ActiveOrderSummary {
	return e.index.Summaries()
}

// --- autosave ---

func (e *Engine) scheduleSaveLocked() {
	e.dirty = true
	e.timerGen++
	gen := e.timerGen
	table := e.cur.TableName
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.saveDelay, func() { e.autosave(gen, table) })
}

func (e *Engine) cancelTimerLocked() {
	e.timerGen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) autosave(gen uint64, table string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	// a stale fire: the session was switched, settled or cleared meanwhile
	if gen != e.timerGen || e.cur == nil || e.cur.TableName != table {
		return
	}
	if err := e.saveLocked(context.Background()); err != nil {
		e.log.WithError(err).WithField("table", table).Warn("autosave failed")
	}
}

func (e *Engine) saveLocked(ctx context.Context) error {
	snap := Snapshot(e.cur)
	if err := e.gw.SaveSession(ctx, snap); err != nil {
		e.dirty = true
		return fmt.Errorf("save session %q: %w", snap.TableName, err)
	}
	e.dirty = false
	return nil
}
