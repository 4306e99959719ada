package queue

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-table-pos.git/internal/pos"
)

// Poller keeps a cached view of pending customer orders, refreshed on a
// fixed interval plus on demand. No lock spans the gateway round trip, so a
// poll and a manual merge can race over a freshly merged order; the queue
// delete is idempotent, which makes that harmless.
type Poller struct {
	gw       pos.QueueGateway
	log      *logrus.Logger
	interval time.Duration

	mu      sync.RWMutex
	pending []pos.CustomerSubmittedOrder
}

func NewPoller(gw pos.QueueGateway, log *logrus.Logger, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{gw: gw, log: log, interval: interval}
}

// Run refreshes once immediately, then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	if err := p.Refresh(ctx); err != nil {
		p.log.WithError(err).Warn("initial queue poll failed")
	}
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := p.Refresh(ctx); err != nil {
				p.log.WithError(err).Warn("queue poll failed")
			}
		}
	}
}

func (p *Poller) Refresh(ctx context.Context) error {
	orders, err := p.gw.ListPending(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.pending = orders
	p.mu.Unlock()
	return nil
}

func (p *Poller) Pending() []pos.CustomerSubmittedOrder {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]pos.CustomerSubmittedOrder, len(p.pending))
	copy(out, p.pending)
	return out
}

func (p *Poller) Find(id string) (pos.CustomerSubmittedOrder, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, o := range p.pending {
		if o.ID == id {
			return o, true
		}
	}
	return pos.CustomerSubmittedOrder{}, false
}

// Drop removes a merged order from the cached view without waiting for the
// next poll.
func (p *Poller) Drop(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, o := range p.pending {
		if o.ID == id {
			p.pending = append(p.pending[:i], p.pending[i+1:]...)
			return
		}
	}
}
