// Package services holds the use cases the front end calls. They validate
// input at the boundary, build actions and read derived views of the state.
package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/advisor"
	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// TransactionInput is what a user fills in when adding or editing a record.
type TransactionInput struct {
	Type     core.TransactionType
	Amount   core.Money
	Category string
	Date     time.Time
	Note     string
}

func (in TransactionInput) check() error {
	if !in.Type.IsValid() {
		return core.ErrInvalidType
	}
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if !core.IsValidCategory(in.Type, in.Category) {
		return fmt.Errorf("%w: %q for %s", core.ErrUnknownCategory, in.Category, in.Type)
	}
	if in.Date.IsZero() {
		return core.ErrInvalidDate
	}
	return nil
}

// LedgerService is the front end's entry point to the tracker.
type LedgerService struct {
	store      *store.Store
	tips       advisor.TipSource
	tracker    *advisor.Tracker
	exportPath string
	logger     *log.Logger
}

// NewLedgerService wires a ledger over st. tips may be nil, in which case Tips
// always returns the local pool.
func NewLedgerService(st *store.Store, tips advisor.TipSource, exportPath string, logger *log.Logger) *LedgerService {
	if tips == nil {
		tips = advisor.NewGateway(nil)
	}
	if exportPath == "" {
		exportPath = finance.ExportFileName
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &LedgerService{
		store:      st,
		tips:       tips,
		tracker:    &advisor.Tracker{},
		exportPath: exportPath,
		logger:     logger.WithComponent(log.ComponentLedger),
	}
}

func (s *LedgerService) State() core.AppState { return s.store.State() }

// AddTransaction records a new transaction with a generated ID.
func (s *LedgerService) AddTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	if err := in.check(); err != nil {
		return core.Transaction{}, err
	}
	t := core.NewTransaction(in.Type, in.Amount, in.Category, in.Date, in.Note)
	if _, err := s.store.Dispatch(ctx, store.AddTransaction{Transaction: t}); err != nil {
		return core.Transaction{}, err
	}
	s.logger.InfoContext(ctx, "Transaction added",
		log.FieldTransactionID, t.ID,
		log.FieldType, t.Type,
		log.FieldCategory, t.Category,
		log.FieldAmountCents, t.Amount.Cents)
	return t, nil
}

// EditTransaction replaces the fields of transaction id. found is false when
// no such transaction exists; nothing changes in that case.
func (s *LedgerService) EditTransaction(ctx context.Context, id string, in TransactionInput) (t core.Transaction, found bool, err error) {
	if err := in.check(); err != nil {
		return core.Transaction{}, false, err
	}
	if _, ok := s.store.State().Find(id); !ok {
		return core.Transaction{}, false, nil
	}
	t = core.NewTransaction(in.Type, in.Amount, in.Category, in.Date, in.Note)
	t.ID = id
	if _, err := s.store.Dispatch(ctx, store.UpdateTransaction{Transaction: t}); err != nil {
		return core.Transaction{}, true, err
	}
	s.logger.InfoContext(ctx, "Transaction updated", log.FieldTransactionID, id)
	return t, true, nil
}

// DeleteTransaction removes transaction id and reports whether it existed.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	_, found := s.store.State().Find(id)
	if _, err := s.store.Dispatch(ctx, store.DeleteTransaction{ID: id}); err != nil {
		return false, err
	}
	if found {
		s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id)
	}
	return found, nil
}

func (s *LedgerService) UpdateUser(ctx context.Context, patch core.UserPatch) (core.User, error) {
	next, err := s.store.Dispatch(ctx, store.UpdateUser{Patch: patch})
	if err != nil {
		return core.User{}, err
	}
	return next.User, nil
}

// ToggleDarkMode flips the theme preference and returns the new value.
func (s *LedgerService) ToggleDarkMode(ctx context.Context) (bool, error) {
	next, err := s.store.Dispatch(ctx, store.ToggleDarkMode{})
	if err != nil {
		return false, err
	}
	return next.DarkMode, nil
}

func (s *LedgerService) Transactions(f finance.Filter) []core.Transaction {
	return finance.FilterTransactions(s.store.State().Transactions, f)
}

func (s *LedgerService) Summary() core.Summary {
	return finance.CalculateSummary(s.store.State().Transactions)
}

func (s *LedgerService) CategoryBreakdown(typ core.TransactionType) []core.CategoryAmount {
	return finance.CategoryData(s.store.State().Transactions, typ)
}

// Format renders amount in the user's currency.
func (s *LedgerService) Format(amount core.Money) string {
	return finance.MustFormatCurrency(amount, s.store.State().User.Currency)
}

// Export writes every transaction as CSV to the configured path.
func (s *LedgerService) Export(ctx context.Context) (string, int, error) {
	return s.ExportTo(ctx, s.exportPath)
}

// ExportTo writes every transaction as CSV to path, creating parent
// directories, and returns the path and the number of rows.
func (s *LedgerService) ExportTo(ctx context.Context, path string) (string, int, error) {
	txs := s.store.State().Transactions
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", 0, fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(finance.GenerateCSV(txs)), 0o644); err != nil {
		return "", 0, fmt.Errorf("write export: %w", err)
	}
	s.logger.InfoContext(ctx, "Transactions exported",
		log.FieldOperation, log.OpExport,
		log.FieldPath, path,
		log.FieldCount, len(txs))
	return path, len(txs), nil
}

// Tips refreshes the advisor tips for the current history. ok is false when
// a newer refresh superseded this one.
func (s *LedgerService) Tips(ctx context.Context) (tips []string, ok bool) {
	return s.tracker.Refresh(ctx, s.tips, s.store.State().Transactions)
}

// Reset wipes all data and restores defaults.
func (s *LedgerService) Reset(ctx context.Context) error {
	return s.store.Reset(ctx)
}
