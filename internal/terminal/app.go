// Package terminal is the interactive menu front end.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"stocktracker/internal/history"
	"stocktracker/internal/market"
	"stocktracker/internal/presenter"
	"stocktracker/internal/refresh"
	"stocktracker/internal/watchlist"

	"go.uber.org/zap"
)

// errExit ends the menu loop without an error.
var errExit = errors.New("exit")

type Options struct {
	Popular       []market.Symbol
	Indices       []presenter.Index
	Examples      []string
	DefaultPeriod market.Period
	TailRows      int
	Interval      time.Duration
}

type App struct {
	tracker  *watchlist.Tracker
	history  *history.Query
	renderer Renderer
	styles   presenter.Styles
	opts     Options
	logger   *zap.Logger
	now      func() time.Time

	outMu sync.Mutex
	out   io.Writer

	in         *lineReader
	interrupts <-chan os.Signal
}

// New wires the menu to in/out. interrupts may be nil; when set, a signal stops
// auto-refresh mode or, at the menu, ends the session.
func New(tracker *watchlist.Tracker, query *history.Query, renderer Renderer, styles presenter.Styles,
	opts Options, in io.Reader, out io.Writer, interrupts <-chan os.Signal, logger *zap.Logger) *App {
	if opts.DefaultPeriod == "" {
		opts.DefaultPeriod = market.Period1Month
	}
	return &App{
		tracker:    tracker,
		history:    query,
		renderer:   renderer,
		styles:     styles,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
		out:        out,
		in:         newLineReader(in),
		interrupts: interrupts,
	}
}

// Run shows the menu until the user exits, input ends, ctx is done or an interrupt arrives.
func (a *App) Run(ctx context.Context) error {
	defer a.in.close()

	a.println(a.styles.Success.Render("Welcome to Stock Tracker!"))

	if len(a.opts.Examples) > 0 {
		answer, err := a.prompt(ctx, fmt.Sprintf("Would you like to load some example stocks (%s)? (y/n): ",
			strings.Join(a.opts.Examples, ", ")))
		if err != nil {
			return a.finish(err)
		}
		if strings.EqualFold(strings.TrimSpace(answer), "y") {
			a.loadExamples(ctx)
		}
	}

	for {
		a.print(menu)
		choice, err := a.prompt(ctx, "Enter your choice (0-9): ")
		if err != nil {
			return a.finish(err)
		}
		if err := a.dispatch(ctx, strings.TrimSpace(choice)); err != nil {
			return a.finish(err)
		}
	}
}

func (a *App) finish(err error) error {
	if errors.Is(err, errExit) || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		a.println("Thank you for using Stock Tracker!")
		return nil
	}
	return err
}

const menu = `
==================================================
STOCK TRACKER MENU
==================================================
1. Add Stock
2. Remove Stock
3. View Watch-list
4. Stock Details
5. Price History
6. Refresh All
7. Popular Stocks
8. Market Summary
9. Auto Refresh
0. Exit
--------------------------------------------------
`

func (a *App) dispatch(ctx context.Context, choice string) error {
	switch choice {
	case "1":
		return a.withSymbol(ctx, "Enter stock symbol: ", a.add)
	case "2":
		return a.withSymbol(ctx, "Enter stock symbol to remove: ", func(_ context.Context, raw string) {
			a.remove(raw)
		})
	case "3":
		a.showWatchlist()
	case "4":
		return a.withSymbol(ctx, "Enter stock symbol for details: ", func(_ context.Context, raw string) {
			a.detail(raw)
		})
	case "5":
		return a.priceHistory(ctx)
	case "6":
		a.refreshAll(ctx)
	case "7":
		a.popular(ctx)
	case "8":
		a.marketSummary(ctx)
	case "9":
		return a.autoRefresh(ctx)
	case "0":
		return errExit
	default:
		a.failure("Invalid choice. Please try again.")
	}
	return nil
}

// withSymbol prompts for a symbol and ignores blank answers.
func (a *App) withSymbol(ctx context.Context, label string, fn func(context.Context, string)) error {
	raw, err := a.prompt(ctx, label)
	if err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	fn(ctx, raw)
	return nil
}

func (a *App) add(ctx context.Context, raw string) {
	a.println(a.styles.Dim.Render(fmt.Sprintf("Fetching data for %s...", strings.ToUpper(strings.TrimSpace(raw)))))
	q, err := a.tracker.Add(ctx, raw)
	if err != nil {
		a.failure(addMessage(raw, err))
		return
	}
	a.success(fmt.Sprintf("%s added successfully!", q.Symbol))
}

func addMessage(raw string, err error) string {
	sym := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case errors.Is(err, market.ErrAlreadyTracked):
		return fmt.Sprintf("%s is already being tracked", sym)
	case errors.Is(err, market.ErrInvalidSymbol):
		return fmt.Sprintf("%q is not a valid symbol", strings.TrimSpace(raw))
	default:
		return fmt.Sprintf("Failed to add %s: %v", sym, err)
	}
}

func (a *App) remove(raw string) {
	sym, err := a.tracker.Remove(raw)
	if err != nil {
		a.failure(notTrackedMessage(raw, err))
		return
	}
	a.success(fmt.Sprintf("%s removed from tracking list", sym))
}

func notTrackedMessage(raw string, err error) string {
	if errors.Is(err, market.ErrNotTracked) {
		return fmt.Sprintf("%s not found in tracking list", strings.ToUpper(strings.TrimSpace(raw)))
	}
	return err.Error()
}

func (a *App) showWatchlist() {
	quotes := a.tracker.Store().Snapshot()
	a.markdown(presenter.Watchlist(quotes, watchlist.Summarize(quotes), a.now()))
}

func (a *App) detail(raw string) {
	q, err := a.tracker.Get(raw)
	if err != nil {
		a.failure(notTrackedMessage(raw, err))
		return
	}
	a.markdown(presenter.Detail(q))
}

func (a *App) priceHistory(ctx context.Context) error {
	raw, err := a.prompt(ctx, "Enter stock symbol: ")
	if err != nil || strings.TrimSpace(raw) == "" {
		return err
	}

	names := make([]string, 0, len(market.Periods))
	for _, p := range market.Periods {
		names = append(names, p.String())
	}
	answer, err := a.prompt(ctx, fmt.Sprintf("Enter period (%s) [default: %s]: ",
		strings.Join(names, ", "), a.opts.DefaultPeriod))
	if err != nil {
		return err
	}

	period := a.opts.DefaultPeriod
	if strings.TrimSpace(answer) != "" {
		if period, err = market.ParsePeriod(answer); err != nil {
			a.failure(err.Error())
			return nil
		}
	}

	a.println(a.styles.Dim.Render(fmt.Sprintf("Fetching %s price history for %s...", period, strings.ToUpper(strings.TrimSpace(raw)))))
	res, err := a.history.Run(ctx, raw, period)
	if err != nil {
		a.failure(fmt.Sprintf("No historical data found: %v", err))
		return nil
	}
	a.markdown(presenter.History(res, a.opts.TailRows))
	return nil
}

func (a *App) refreshAll(ctx context.Context) {
	if a.tracker.Store().Len() == 0 {
		a.println("No stocks to refresh")
		return
	}
	a.println(a.styles.Dim.Render("Refreshing all stocks..."))
	report := a.tracker.RefreshAll(ctx)
	for _, sym := range report.Updated {
		if q, ok := a.tracker.Store().Get(sym); ok {
			a.println(a.styles.Ticker(q))
		}
	}
	for _, f := range report.Failed {
		a.failure(fmt.Sprintf("Failed to update %s", f.Symbol))
	}
	a.success("Refresh completed!")
}

func (a *App) popular(ctx context.Context) {
	res := a.tracker.Lookup(ctx, a.opts.Popular)
	a.markdown(presenter.Popular(res))
}

func (a *App) marketSummary(ctx context.Context) {
	symbols := make([]market.Symbol, 0, len(a.opts.Indices))
	for _, idx := range a.opts.Indices {
		symbols = append(symbols, idx.Symbol)
	}
	res := a.tracker.Lookup(ctx, symbols)
	a.markdown(presenter.Market(a.opts.Indices, res))
}

func (a *App) loadExamples(ctx context.Context) {
	failed := a.tracker.LoadExamples(ctx, a.opts.Examples)
	for _, f := range failed {
		a.failure(fmt.Sprintf("Failed to add %s: %v", f.Symbol, f.Err))
	}
	a.success(fmt.Sprintf("%d stock(s) tracked", a.tracker.Store().Len()))
}

// autoRefresh renders the watch-list, then re-renders after every tick
// until Enter, an interrupt, or the end of input.
func (a *App) autoRefresh(ctx context.Context) error {
	ctrl := refresh.NewController(a.tracker, a.opts.Interval, a.logger, func(r watchlist.RefreshReport) {
		a.showWatchlist()
		a.print(presenter.Report(r))
		a.println(a.styles.Dim.Render(a.nextRefreshHint()))
	})

	a.println(a.styles.Success.Render(fmt.Sprintf("AUTO REFRESH MODE (every %s)", ctrl.Interval())))
	a.showWatchlist()
	a.println(a.styles.Dim.Render(a.nextRefreshHint()))

	ctrl.Start(ctx)

	var err error
	select {
	case _, ok := <-a.in.lines:
		if !ok {
			err = io.EOF
		}
	case <-a.interrupts:
	case <-ctx.Done():
		err = ctx.Err()
	}

	ctrl.Stop()
	a.println("Auto refresh stopped")
	return err
}

func (a *App) nextRefreshHint() string {
	return fmt.Sprintf("Next refresh in %s... (press Enter or Ctrl+C to stop)", a.opts.interval())
}

func (o Options) interval() time.Duration {
	if o.Interval <= 0 {
		return refresh.DefaultInterval
	}
	return o.Interval
}

// prompt prints label and waits for one line.
func (a *App) prompt(ctx context.Context, label string) (string, error) {
	a.print(label)
	select {
	case line, ok := <-a.in.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	case <-a.interrupts:
		a.println("")
		return "", errExit
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (a *App) markdown(md string) {
	out, err := a.renderer.Render(md)
	if err != nil {
		a.logger.Warn("markdown render failed", zap.Error(err))
		out = md
	}
	a.print(out)
}

func (a *App) success(msg string) { a.println(a.styles.Success.Render(msg)) }
func (a *App) failure(msg string) { a.println(a.styles.Failure.Render(msg)) }

func (a *App) println(s string) { a.print(s + "\n") }

// print serializes writes from the menu and the refresh goroutine.
func (a *App) print(s string) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	_, _ = io.WriteString(a.out, s)
}
