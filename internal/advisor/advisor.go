// Package advisor produces short budgeting tips for a transaction history.
// Tips come from a remote model when one is configured and reachable, and from
// a fixed local pool otherwise. Callers never see an error.
package advisor

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

// MaxSummaries bounds how many recent transactions are sent to the remote advisor.
const MaxSummaries = 40

// ErrEmptyResponse is returned when the remote advisor answers with no usable text.
var ErrEmptyResponse = errors.New("advisor returned no tips")

// TransactionSummary is the reduced view of a transaction shared with the
// remote advisor. Notes and IDs never leave the process.
type TransactionSummary struct {
	Type     core.TransactionType `json:"type"`
	Amount   core.Money           `json:"amount"`
	Category string               `json:"category"`
	Date     string               `json:"date"`
}

// Advisor asks a remote model for tips and returns its raw text answer.
type Advisor interface {
	Advise(ctx context.Context, summaries []TransactionSummary) (string, error)
}

// AdvisorFunc adapts a function to Advisor.
type AdvisorFunc func(ctx context.Context, summaries []TransactionSummary) (string, error)

func (f AdvisorFunc) Advise(ctx context.Context, s []TransactionSummary) (string, error) {
	return f(ctx, s)
}

// Connectivity reports whether the network is usable right now.
type Connectivity interface {
	Online(ctx context.Context) bool
}

type ConnectivityFunc func(ctx context.Context) bool

func (f ConnectivityFunc) Online(ctx context.Context) bool { return f(ctx) }

// Static returns a Connectivity with a fixed answer.
func Static(online bool) Connectivity {
	return ConnectivityFunc(func(context.Context) bool { return online })
}

// Summarize keeps the first MaxSummaries transactions, which are the most
// recent ones in sequence order.
func Summarize(txs []core.Transaction) []TransactionSummary {
	n := min(len(txs), MaxSummaries)
	out := make([]TransactionSummary, 0, n)
	for _, t := range txs[:n] {
		out = append(out, TransactionSummary{
			Type:     t.Type,
			Amount:   t.Amount,
			Category: t.Category,
			Date:     t.Date.DateString(),
		})
	}
	return out
}
