package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/services"
)

var errUsage = errors.New("usage")

func newFlagSet(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// parse maps flag syntax errors to errUsage; the flag package has already
// printed them.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}

type txFlags struct {
	typ, amount, category, date, note string
}

func (f *txFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.typ, "type", "expense", "income or expense")
	fs.StringVar(&f.amount, "amount", "", "positive amount, e.g. 12.50")
	fs.StringVar(&f.category, "category", "", "category name, see 'categories -all'")
	fs.StringVar(&f.date, "date", "", "date (YYYY-MM-DD or RFC 3339), default now")
	fs.StringVar(&f.note, "note", "", "free text")
}

// input builds a TransactionInput from the flags, starting from base for
// flags that were not given.
func (f *txFlags) input(fs *flag.FlagSet, base services.TransactionInput) (services.TransactionInput, error) {
	in := base
	var err error
	fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "type":
			in.Type, err = core.ParseTransactionType(f.typ)
		case "amount":
			in.Amount, err = core.ParseMoney(f.amount)
		case "category":
			in.Category = f.category
		case "date":
			var ts core.Timestamp
			ts, err = core.ParseTimestamp(f.date)
			in.Date = ts.Time
		case "note":
			in.Note = f.note
		}
	})
	return in, err
}

func runAdd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "add")
	var f txFlags
	f.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	typ, err := core.ParseTransactionType(f.typ)
	if err != nil {
		return err
	}
	if f.amount == "" {
		return fmt.Errorf("%w: -amount is required", core.ErrInvalidAmount)
	}
	in, err := f.input(fs, services.TransactionInput{Type: typ, Date: time.Now()})
	if err != nil {
		return err
	}

	t, err := a.ledger.AddTransaction(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s %s %s (%s)\n", t.Type, a.ledger.Format(t.Amount), t.Category, t.ID)
	return nil
}

func runEdit(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "edit")
	id := fs.String("id", "", "transaction id")
	var f txFlags
	f.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("%w: -id is required", core.ErrEmptyID)
	}

	current, ok := a.ledger.State().Find(*id)
	if !ok {
		fmt.Fprintf(a.out, "No transaction with id %s\n", *id)
		return nil
	}
	in, err := f.input(fs, services.TransactionInput{
		Type:     current.Type,
		Amount:   current.Amount,
		Category: current.Category,
		Date:     current.Date.Time,
		Note:     current.Note,
	})
	if err != nil {
		return err
	}

	t, found, err := a.ledger.EditTransaction(ctx, *id, in)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(a.out, "No transaction with id %s\n", *id)
		return nil
	}
	fmt.Fprintf(a.out, "Updated %s %s %s (%s)\n", t.Type, a.ledger.Format(t.Amount), t.Category, t.ID)
	return nil
}

func runDelete(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "delete")
	id := fs.String("id", "", "transaction id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *id == "" && fs.NArg() > 0 {
		*id = fs.Arg(0)
	}
	if *id == "" {
		return fmt.Errorf("%w: -id is required", core.ErrEmptyID)
	}

	found, err := a.ledger.DeleteTransaction(ctx, *id)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(a.out, "No transaction with id %s\n", *id)
		return nil
	}
	fmt.Fprintf(a.out, "Deleted %s\n", *id)
	return nil
}

func runList(_ context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "list")
	typ := fs.String("type", "", "only income or expense")
	category := fs.String("category", "", "only this category")
	query := fs.String("q", "", "search category and note")
	from := fs.String("from", "", "earliest date, inclusive")
	to := fs.String("to", "", "latest date, inclusive")
	limit := fs.Int("limit", 0, "show at most this many (0 = all)")
	if err := parse(fs, args); err != nil {
		return err
	}

	filter := finance.Filter{Category: *category, Query: *query}
	if *typ != "" {
		t, err := core.ParseTransactionType(*typ)
		if err != nil {
			return err
		}
		filter.Type = t
	}
	var err error
	if filter.From, err = parseBound(*from, false); err != nil {
		return err
	}
	if filter.To, err = parseBound(*to, true); err != nil {
		return err
	}

	txs := a.ledger.Transactions(filter)
	if *limit > 0 {
		txs = finance.Recent(txs, *limit)
	}
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "No transactions.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTYPE\tCATEGORY\tAMOUNT\tNOTE\tID")
	for _, t := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Date.DateString(), t.Type, t.Category, a.ledger.Format(t.Amount), t.Note, t.ID)
	}
	return w.Flush()
}

// parseBound reads a date filter. Bare dates used as an upper bound cover the
// whole day.
func parseBound(s string, upper bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	ts, err := core.ParseTimestamp(s)
	if err != nil {
		return time.Time{}, err
	}
	if upper && len(s) == len(time.DateOnly) {
		return ts.Add(24*time.Hour - time.Millisecond), nil
	}
	return ts.Time, nil
}

func runSummary(_ context.Context, a *app, args []string) error {
	if err := parse(newFlagSet(a, "summary"), args); err != nil {
		return err
	}
	s := a.ledger.Summary()
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "Income\t%s\t\n", a.ledger.Format(s.Income))
	fmt.Fprintf(w, "Expenses\t%s\t\n", a.ledger.Format(s.Expense))
	fmt.Fprintf(w, "Balance\t%s\t\n", a.ledger.Format(s.Balance))
	return w.Flush()
}

func runCategories(_ context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "categories")
	typ := fs.String("type", "expense", "income or expense")
	all := fs.Bool("all", false, "list the available categories instead of totals")
	if err := parse(fs, args); err != nil {
		return err
	}
	t, err := core.ParseTransactionType(*typ)
	if err != nil {
		return err
	}

	if *all {
		for _, name := range core.Categories(t) {
			fmt.Fprintf(a.out, "%s\t%s\n", name, core.CategoryColor(name))
		}
		return nil
	}

	data := a.ledger.CategoryBreakdown(t)
	if len(data) == 0 {
		fmt.Fprintf(a.out, "No %s transactions.\n", t)
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, c := range data {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, a.ledger.Format(c.Amount), core.CategoryColor(c.Name))
	}
	return w.Flush()
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "export")
	out := fs.String("o", a.cfg.ExportPath, "output file")
	if err := parse(fs, args); err != nil {
		return err
	}
	path, n, err := a.ledger.ExportTo(ctx, *out)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported %d transactions to %s\n", n, path)
	return nil
}

func runTips(ctx context.Context, a *app, args []string) error {
	if err := parse(newFlagSet(a, "tips"), args); err != nil {
		return err
	}
	tips, _ := a.ledger.Tips(ctx)
	for _, tip := range tips {
		fmt.Fprintf(a.out, "- %s\n", tip)
	}
	return nil
}

func runUser(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "user")
	name := fs.String("name", "", "display name")
	currency := fs.String("currency", "", "ISO 4217 code, e.g. EUR")
	if err := parse(fs, args); err != nil {
		return err
	}

	var patch core.UserPatch
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "name":
			patch.Name = name
		case "currency":
			patch.Currency = currency
		}
	})

	user := a.ledger.State().User
	if patch.Name != nil || patch.Currency != nil {
		var err error
		if user, err = a.ledger.UpdateUser(ctx, patch); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.out, "Name: %s\nCurrency: %s\n", user.Name, user.Currency)
	return nil
}

func runDarkMode(ctx context.Context, a *app, args []string) error {
	if err := parse(newFlagSet(a, "dark-mode"), args); err != nil {
		return err
	}
	_, err := a.ledger.ToggleDarkMode(ctx)
	return err
}

func runReset(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "reset")
	yes := fs.Bool("yes", false, "confirm deleting all data")
	if err := parse(fs, args); err != nil {
		return err
	}
	if !*yes {
		fmt.Fprintln(a.errOut, "This deletes every transaction and setting. Re-run with -yes to confirm.")
		return errUsage
	}
	if err := a.ledger.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "All data deleted.")
	return nil
}
