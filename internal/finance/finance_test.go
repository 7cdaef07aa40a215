package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func tx(id string, typ core.TransactionType, cents int64, category, date, note string) core.Transaction {
	ts, err := core.ParseTimestamp(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{ID: id, Type: typ, Amount: core.Money{Cents: cents}, Category: category, Date: ts, Note: note}
}

func sample() []core.Transaction {
	return []core.Transaction{
		tx("5", core.Expense, 4000, "Food", "2024-01-05", "groceries"),
		tx("4", core.Expense, 120000, "Rent", "2024-01-04", "january"),
		tx("3", core.Income, 20000, "Freelance", "2024-01-03", "logo job"),
		tx("2", core.Expense, 2550, "Food", "2024-01-02", "Pizza night"),
		tx("1", core.Income, 500000, "Salary", "2024-01-01", ""),
	}
}

func TestCalculateSummary(t *testing.T) {
	t.Run("empty input yields zeros", func(t *testing.T) {
		assert.Equal(t, core.Summary{}, CalculateSummary(nil))
		assert.Equal(t, core.Summary{}, CalculateSummary([]core.Transaction{}))
	})

	t.Run("balance is income minus expense", func(t *testing.T) {
		s := CalculateSummary(sample())
		assert.Equal(t, int64(520000), s.Income.Cents)
		assert.Equal(t, int64(126550), s.Expense.Cents)
		assert.Equal(t, s.Income.Cents-s.Expense.Cents, s.Balance.Cents)
	})

	t.Run("single salary", func(t *testing.T) {
		s := CalculateSummary([]core.Transaction{tx("1", core.Income, 500000, "Salary", "2024-01-01T00:00:00Z", "")})
		assert.Equal(t, int64(500000), s.Income.Cents)
		assert.Equal(t, int64(500000), s.Balance.Cents)
	})

	t.Run("negative balance", func(t *testing.T) {
		s := CalculateSummary([]core.Transaction{tx("1", core.Expense, 999, "Bills", "2024-01-01", "")})
		assert.Equal(t, int64(-999), s.Balance.Cents)
	})
}

func TestCategoryData(t *testing.T) {
	t.Run("groups and orders by descending amount", func(t *testing.T) {
		got := CategoryData(sample(), core.Expense)
		require.Len(t, got, 2)
		assert.Equal(t, "Rent", got[0].Name)
		assert.Equal(t, int64(120000), got[0].Amount.Cents)
		assert.Equal(t, "Food", got[1].Name)
		assert.Equal(t, int64(6550), got[1].Amount.Cents)
	})

	t.Run("ties broken by name", func(t *testing.T) {
		txs := []core.Transaction{
			tx("1", core.Expense, 100, "Transport", "2024-01-01", ""),
			tx("2", core.Expense, 100, "Bills", "2024-01-01", ""),
			tx("3", core.Expense, 100, "Health", "2024-01-01", ""),
		}
		got := CategoryData(txs, core.Expense)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"Bills", "Health", "Transport"}, []string{got[0].Name, got[1].Name, got[2].Name})
	})

	t.Run("total matches summary", func(t *testing.T) {
		txs := sample()
		for _, typ := range []core.TransactionType{core.Expense, core.Income} {
			var total int64
			for _, c := range CategoryData(txs, typ) {
				total += c.Amount.Cents
			}
			s := CalculateSummary(txs)
			want := s.Expense.Cents
			if typ == core.Income {
				want = s.Income.Cents
			}
			assert.Equal(t, want, total, typ)
		}
	})

	t.Run("absent type yields empty slice", func(t *testing.T) {
		got := CategoryData([]core.Transaction{tx("1", core.Income, 1, "Gift", "2024-01-01", "")}, core.Expense)
		assert.Empty(t, got)
	})
}

func TestFilterTransactions(t *testing.T) {
	txs := sample()

	ids := func(in []core.Transaction) []string {
		out := make([]string, 0, len(in))
		for _, t := range in {
			out = append(out, t.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter keeps order", Filter{}, []string{"5", "4", "3", "2", "1"}},
		{"by type", Filter{Type: core.Income}, []string{"3", "1"}},
		{"query matches category", Filter{Query: "foo"}, []string{"5", "2"}},
		{"query matches note case-insensitively", Filter{Query: "PIZZA"}, []string{"2"}},
		{"type and query", Filter{Type: core.Income, Query: "job"}, []string{"3"}},
		{"category", Filter{Category: "rent"}, []string{"4"}},
		{
			"date range inclusive",
			Filter{From: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)},
			[]string{"4", "3", "2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterTransactions(txs, tt.filter)))
		})
	}
}

func TestRecent(t *testing.T) {
	txs := sample()
	assert.Len(t, Recent(txs, 2), 2)
	assert.Equal(t, "5", Recent(txs, 2)[0].ID)
	assert.Len(t, Recent(txs, 50), 5)
	assert.Empty(t, Recent(txs, -1))
}
