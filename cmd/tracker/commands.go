package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stocktracker/internal/dashboard"
	"stocktracker/internal/market"
	"stocktracker/internal/presenter"
	"stocktracker/internal/terminal"

	"github.com/google/subcommands"
	"go.uber.org/zap"
)

var commands = []subcommands.Command{
	&watchCmd{},
	&serveCmd{},
	&quoteCmd{},
	&historyCmd{},
	&popularCmd{},
	&marketCmd{},
}

func renderer(e *env, raw bool) terminal.Renderer {
	if raw || !e.cfg.Display.Markdown {
		return terminal.RawRenderer{}
	}
	r, err := terminal.NewMarkdownRenderer(e.cfg.Display.Width)
	if err != nil {
		e.log.Warn("falling back to raw markdown", zap.Error(err))
		return terminal.RawRenderer{}
	}
	return r
}

func render(r terminal.Renderer, md string) {
	out, err := r.Render(md)
	if err != nil {
		out = md
	}
	fmt.Print(out)
}

func styles(raw bool) presenter.Styles {
	if raw {
		return presenter.PlainStyles()
	}
	return presenter.DefaultStyles()
}

// watch

type watchCmd struct {
	raw bool
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "interactive watch-list menu" }
func (*watchCmd) Usage() string {
	return `tracker watch [-raw]

  Opens the interactive menu: add, remove, view, details, price history,
  refresh, popular stocks, market summary and auto refresh.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "print plain markdown without colours")
}

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := newEnv()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer e.close()

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupts)

	app := terminal.New(e.tracker, e.history, renderer(e, c.raw), styles(c.raw), terminal.Options{
		Popular:       e.popular(),
		Indices:       e.indices(),
		Examples:      e.cfg.Symbols.Examples,
		DefaultPeriod: e.defaultPeriod(),
		TailRows:      e.cfg.History.TailRows,
		Interval:      e.cfg.Refresh.Interval,
	}, os.Stdin, os.Stdout, interrupts, e.log.Named("terminal"))

	if err := app.Run(ctx); err != nil {
		e.log.Error("terminal session failed", zap.Error(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// serve

type serveCmd struct {
	addr string
	auto bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the watch-list dashboard over HTTP" }
func (*serveCmd) Usage() string {
	return `tracker serve [-addr :8080] [-auto] [SYMBOL...]

  Starts the dashboard. Symbols given as arguments are tracked on startup.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "listen address (overrides dashboard.addr)")
	f.BoolVar(&c.auto, "auto", false, "enable auto refresh on startup")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := newEnv()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer e.close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, fl := range e.tracker.LoadExamples(ctx, symbolArgs(f.Args())) {
		e.log.Warn("could not track symbol", zap.String("symbol", fl.Symbol.String()), zap.Error(fl.Err))
	}

	srv := dashboard.NewServer(e.tracker, e.history, dashboard.Options{
		Popular:       e.popular(),
		Indices:       e.indices(),
		DefaultPeriod: e.defaultPeriod(),
		Interval:      e.cfg.Refresh.Interval,
		Metrics:       e.metrics,
		Archive:       e.archiveHealth(),
	}, e.log.Named("dashboard"))
	if c.auto {
		srv.Controller().Start(ctx)
	}

	addr := c.addr
	if addr == "" {
		addr = e.cfg.Dashboard.Addr
	}
	if err := srv.Run(ctx, addr); err != nil {
		e.log.Error("dashboard failed", zap.Error(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// quote

type quoteCmd struct {
	raw bool
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "show quote details without tracking" }
func (*quoteCmd) Usage() string {
	return `tracker quote [-raw] SYMBOL...
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "print plain markdown")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := symbolArgs(f.Args())
	if len(args) == 0 {
		fail("quote: at least one symbol is required")
		return subcommands.ExitUsageError
	}

	e, err := newEnv()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer e.close()

	symbols := make([]market.Symbol, 0, len(args))
	for _, a := range args {
		sym, err := market.ParseSymbol(a)
		if err != nil {
			fail("%v", err)
			return subcommands.ExitUsageError
		}
		symbols = append(symbols, sym)
	}

	res := e.tracker.Lookup(ctx, symbols)
	r := renderer(e, c.raw)
	for _, q := range res.Quotes {
		render(r, presenter.Detail(q))
	}
	for _, fl := range res.Failed {
		fail("%s: %v", fl.Symbol, fl.Err)
	}
	if len(res.Failed) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// history

type historyCmd struct {
	period string
	rows   int
	raw    bool
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show daily price history for a symbol" }
func (*historyCmd) Usage() string {
	return `tracker history [-p 1mo] [-n 10] [-raw] SYMBOL

  Periods: 1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, max.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "", "period (defaults to history.default_period)")
	f.IntVar(&c.rows, "n", 0, "rows to show (defaults to history.tail_rows, negative for all)")
	f.BoolVar(&c.raw, "raw", false, "print plain markdown")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fail("history: exactly one symbol is required")
		return subcommands.ExitUsageError
	}

	e, err := newEnv()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer e.close()

	period := e.defaultPeriod()
	if c.period != "" {
		if period, err = market.ParsePeriod(c.period); err != nil {
			fail("%v", err)
			return subcommands.ExitUsageError
		}
	}
	rows := c.rows
	if rows == 0 {
		rows = e.cfg.History.TailRows
	}

	res, err := e.history.Run(ctx, f.Arg(0), period)
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	render(renderer(e, c.raw), presenter.History(res, rows))
	return subcommands.ExitSuccess
}

// popular

type popularCmd struct {
	raw bool
}

func (*popularCmd) Name() string     { return "popular" }
func (*popularCmd) Synopsis() string { return "show the configured popular stocks" }
func (*popularCmd) Usage() string    { return "tracker popular [-raw]\n" }

func (c *popularCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "print plain markdown")
}

func (c *popularCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := newEnv()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer e.close()

	render(renderer(e, c.raw), presenter.Popular(e.tracker.Lookup(ctx, e.popular())))
	return subcommands.ExitSuccess
}

// market

type marketCmd struct {
	raw bool
}

func (*marketCmd) Name() string     { return "market" }
func (*marketCmd) Synopsis() string { return "show the market index summary" }
func (*marketCmd) Usage() string    { return "tracker market [-raw]\n" }

func (c *marketCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "print plain markdown")
}

func (c *marketCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := newEnv()
	if err != nil {
		fail("%v", err)
		return subcommands.ExitFailure
	}
	defer e.close()

	indices := e.indices()
	symbols := make([]market.Symbol, 0, len(indices))
	for _, idx := range indices {
		symbols = append(symbols, idx.Symbol)
	}
	render(renderer(e, c.raw), presenter.Market(indices, e.tracker.Lookup(ctx, symbols)))
	return subcommands.ExitSuccess
}
