package main

import (
	"context"
	"fmt"
	"io"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

// app is everything a single command invocation needs.
type app struct {
	cfg     *config.Config
	ledger  *services.LedgerService
	logger  *log.Logger
	out     io.Writer
	errOut  io.Writer
	cleanup backend.CleanupFunc
}

func newApp(ctx context.Context, logger *log.Logger, cfg *config.Config, out, errOut io.Writer) (*app, error) {
	res, err := cli.InitBackend(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		out:     out,
		errOut:  errOut,
		cleanup: res.Cleanup,
	}

	st := store.New(res.Repository,
		store.WithLogger(logger),
		store.WithSubscriber(a.onChange))
	if err := st.Hydrate(ctx); err != nil {
		fmt.Fprintln(errOut, "warning: saved data could not be read, starting empty:", err)
	}

	a.ledger = services.NewLedgerService(st, cli.InitAdvisor(ctx, logger, cfg), cfg.ExportPath, logger)
	return a, nil
}

// onChange renders side effects of state transitions: the active theme and
// unsaved changes.
func (a *app) onChange(c store.Change) {
	if c.PersistErr != nil {
		fmt.Fprintln(a.errOut, "warning: change applied but not saved:", c.PersistErr)
	}
	if _, ok := c.Action.(store.ToggleDarkMode); ok {
		fmt.Fprintf(a.out, "Theme: %s\n", themeName(c.State.DarkMode))
	}
}

func (a *app) Close() {
	if a.cleanup == nil {
		return
	}
	if err := a.cleanup(); err != nil {
		a.logger.Warn("Failed to close backend", log.FieldError, err)
	}
}

func themeName(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}
