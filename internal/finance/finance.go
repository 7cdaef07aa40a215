// Package finance derives read-only views from a transaction snapshot:
// totals, per-category breakdowns, filtered history, formatted amounts and
// the CSV export. Nothing here mutates its input.
package finance

import (
	"slices"
	"strings"
	"time"

	"fintrack/internal/core"
)

// CalculateSummary totals income and expense; Balance is Income - Expense.
func CalculateSummary(txs []core.Transaction) core.Summary {
	var s core.Summary
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			s.Income = s.Income.Add(t.Amount)
		case core.Expense:
			s.Expense = s.Expense.Add(t.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}

// CategoryData sums amounts of the given type per category. Categories with
// no transactions are omitted. Entries are ordered by descending amount, ties
// broken by name.
func CategoryData(txs []core.Transaction, typ core.TransactionType) []core.CategoryAmount {
	totals := make(map[string]core.Money)
	for _, t := range txs {
		if t.Type != typ {
			continue
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount)
	}

	out := make([]core.CategoryAmount, 0, len(totals))
	for name, amount := range totals {
		out = append(out, core.CategoryAmount{Name: name, Amount: amount})
	}
	slices.SortFunc(out, func(a, b core.CategoryAmount) int {
		if a.Amount.Cents != b.Amount.Cents {
			if a.Amount.Cents > b.Amount.Cents {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Filter narrows a transaction history. Zero fields match everything.
type Filter struct {
	Type     core.TransactionType
	Category string
	// Query matches category or note, case-insensitively.
	Query string
	From  time.Time
	// To is inclusive.
	To time.Time
}

// FilterTransactions returns the matching transactions in their original order.
func FilterTransactions(txs []core.Transaction, f Filter) []core.Transaction {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if f.Category != "" && !strings.EqualFold(t.Category, f.Category) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(t.Category), query) &&
			!strings.Contains(strings.ToLower(t.Note), query) {
			continue
		}
		if !f.From.IsZero() && t.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && t.Date.After(f.To) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Recent returns at most n transactions from the head of the sequence.
func Recent(txs []core.Transaction, n int) []core.Transaction {
	if n < 0 {
		n = 0
	}
	if len(txs) < n {
		n = len(txs)
	}
	return slices.Clone(txs[:n])
}
