package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"add":        {"record a transaction", runAdd},
	"edit":       {"change fields of a transaction", runEdit},
	"delete":     {"remove a transaction", runDelete},
	"list":       {"show transactions, newest first", runList},
	"summary":    {"show income, expenses and balance", runSummary},
	"categories": {"show totals per category", runCategories},
	"export":     {"write all transactions to CSV", runExport},
	"tips":       {"get budgeting tips", runTips},
	"user":       {"show or change name and currency", runUser},
	"dark-mode":  {"toggle the dark theme preference", runDarkMode},
	"reset":      {"delete all data", runReset},
}

func main() {
	ctx, stop := cli.SignalContext(context.Background())
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	name := args[0]
	if name == "help" || name == "-h" || name == "--help" {
		usage(stdout)
		return 0
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		usage(stderr)
		return 2
	}

	if err := cli.LoadEnvFile(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(log.ComponentCLI)

	a, err := newApp(ctx, logger, cfg, stdout, stderr)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to start", log.FieldError, err)
		return 1
	}
	defer a.Close()

	if err := cmd.run(ctx, a, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		if errors.Is(err, errUsage) {
			return 2
		}
		if core.IsValidationError(err) {
			fmt.Fprintln(stderr, "invalid input:", err)
		} else {
			fmt.Fprintln(stderr, "error:", err)
		}
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: fintrack <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-11s %s\n", n, commands[n].summary)
	}
}
