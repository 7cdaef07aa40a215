package advisor

import (
	"context"
	"sync"

	"fintrack/internal/core"
)

// Ticket identifies one tips request issued by a Tracker.
type Ticket uint64

// TipSource is satisfied by *Gateway.
type TipSource interface {
	SmartTips(ctx context.Context, txs []core.Transaction) []string
}

// Tracker holds the visible tips and discards answers to requests that have
// been superseded by a newer one.
type Tracker struct {
	mu     sync.Mutex
	latest Ticket
	tips   []string
}

// Begin issues a ticket newer than every previous one.
func (t *Tracker) Begin() Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest++
	return t.latest
}

// Complete publishes tips if ticket is still the latest. It reports whether
// the tips were accepted.
func (t *Tracker) Complete(ticket Ticket, tips []string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ticket != t.latest {
		return false
	}
	t.tips = append([]string(nil), tips...)
	return true
}

func (t *Tracker) Tips() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.tips...)
}

// Refresh requests tips for txs and publishes them unless a later Refresh
// started in the meantime.
func (t *Tracker) Refresh(ctx context.Context, src TipSource, txs []core.Transaction) ([]string, bool) {
	ticket := t.Begin()
	tips := src.SmartTips(ctx, txs)
	return tips, t.Complete(ticket, tips)
}
