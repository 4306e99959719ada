package queue

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-table-pos.git/internal/pos"
)

type queueGWStub struct {
	pending []pos.CustomerSubmittedOrder
	listErr error
}

func (q *queueGWStub) ListPending(ctx context.Context) ([]pos.CustomerSubmittedOrder, error) {
	if q.listErr != nil {
		return nil, q.listErr
	}
	return q.pending, nil
}

func (q *queueGWStub) DeleteOrder(ctx context.Context, id string) error { return nil }

func (q *queueGWStub) UpdateStatus(ctx context.Context, id string, st pos.OrderStatus) error {
	return nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRefreshReplacesPendingView(t *testing.T) {
	gw := &queueGWStub{pending: []pos.CustomerSubmittedOrder{
		{ID: "co-1", TableName: "T1", Status: pos.OrderPending},
		{ID: "co-2", TableName: "T2", Status: pos.OrderPending},
	}}
	p := NewPoller(gw, testLogger(), 0)

	require.NoError(t, p.Refresh(context.Background()))
	assert.Len(t, p.Pending(), 2)

	gw.pending = gw.pending[:1]
	require.NoError(t, p.Refresh(context.Background()))
	assert.Len(t, p.Pending(), 1)
}

func TestRefreshFailureKeepsOldView(t *testing.T) {
	gw := &queueGWStub{pending: []pos.CustomerSubmittedOrder{{ID: "co-1"}}}
	p := NewPoller(gw, testLogger(), 0)
	require.NoError(t, p.Refresh(context.Background()))

	gw.listErr = errors.New("store down")
	require.Error(t, p.Refresh(context.Background()))
	assert.Len(t, p.Pending(), 1, "a failed poll leaves the cached view alone")
}

func TestFindAndDrop(t *testing.T) {
	gw := &queueGWStub{pending: []pos.CustomerSubmittedOrder{
		{ID: "co-1", TableName: "T1"},
		{ID: "co-2", TableName: "T2"},
	}}
	p := NewPoller(gw, testLogger(), 0)
	require.NoError(t, p.Refresh(context.Background()))

	o, ok := p.Find("co-2")
	require.True(t, ok)
	assert.Equal(t, "T2", o.TableName)

	p.Drop("co-2")
	_, ok = p.Find("co-2")
	assert.False(t, ok)
	p.Drop("co-9") // no-op
	assert.Len(t, p.Pending(), 1)
}
