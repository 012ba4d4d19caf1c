package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"stocktracker/config"
	"stocktracker/internal/dashboard"
	"stocktracker/internal/history"
	"stocktracker/internal/market"
	"stocktracker/internal/metrics"
	"stocktracker/internal/presenter"
	"stocktracker/internal/watchlist"
	"stocktracker/logger"
	"stocktracker/pkg/storage/postgres"
	"stocktracker/pkg/yahoo"

	"go.uber.org/zap"
)

// env is everything a subcommand needs, built from config.
type env struct {
	cfg     *config.Config
	log     *zap.Logger
	tracker *watchlist.Tracker
	history *history.Query
	metrics *metrics.Metrics
	archive *postgres.PostgresClient
}

func newEnv() (*env, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	store := watchlist.NewStore()
	m, err := metrics.New(store.Len)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	provider := m.InstrumentProvider(yahoo.NewRESTClient(cfg.Provider.BaseURL, cfg.Provider.Timeout,
		yahoo.WithUserAgent(cfg.Provider.UserAgent),
		yahoo.WithLogger(log.Named("yahoo")),
	))

	e := &env{cfg: cfg, log: log, metrics: m}

	var trackerOpts []watchlist.Option
	var historyArchive history.Archiver
	if cfg.Postgres.Enabled {
		client, err := postgres.InitializeAndMigrate(cfg.Postgres, cfg.Log.Environment, true)
		if err != nil {
			// The archive is optional: keep tracking without it.
			log.Error("archive unavailable", zap.Error(err))
		} else {
			e.archive = client
			trackerOpts = append(trackerOpts, watchlist.WithArchiver(client))
			historyArchive = client
			log.Info("archiving quotes to postgres", zap.String("dbname", cfg.Postgres.DBName))
			pruneArchive(context.Background(), client, cfg.Postgres.Retention, time.Now(), log)
		}
	}

	e.tracker = watchlist.NewTracker(store, provider, log.Named("watchlist"), trackerOpts...)
	e.history = history.NewQuery(provider, historyArchive, log.Named("history"))
	return e, nil
}

func (e *env) close() {
	if e.archive != nil {
		if err := e.archive.Close(); err != nil {
			e.log.Warn("failed to close archive", zap.Error(err))
		}
	}
	_ = e.log.Sync()
}

// archiveHealth is nil when no archive is configured, so the dashboard leaves it out of /sys/health.
func (e *env) archiveHealth() dashboard.HealthChecker {
	if e.archive == nil {
		return nil
	}
	return e.archive
}

type quotePruner interface {
	DeleteQuotesBefore(ctx context.Context, before time.Time) (int64, error)
}

// pruneArchive applies postgres.retention. Failures are logged; the archive stays usable.
func pruneArchive(ctx context.Context, p quotePruner, retention time.Duration, now time.Time, log *zap.Logger) {
	if retention <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cutoff := now.Add(-retention)
	n, err := p.DeleteQuotesBefore(ctx, cutoff)
	if err != nil {
		log.Warn("failed to prune archived quotes", zap.Time("before", cutoff), zap.Error(err))
		return
	}
	log.Info("pruned archived quotes", zap.Time("before", cutoff), zap.Int64("rows", n))
}

func (e *env) popular() []market.Symbol {
	return parseSymbols(e.log, e.cfg.Symbols.Popular)
}

func (e *env) indices() []presenter.Index {
	out := make([]presenter.Index, 0, len(e.cfg.Symbols.Indices))
	for _, idx := range e.cfg.Symbols.Indices {
		sym, err := market.ParseSymbol(idx.Symbol)
		if err != nil {
			e.log.Warn("skipping index", zap.String("symbol", idx.Symbol), zap.Error(err))
			continue
		}
		out = append(out, presenter.Index{Symbol: sym, Name: idx.Name})
	}
	return out
}

func (e *env) defaultPeriod() market.Period {
	p, err := market.ParsePeriod(e.cfg.History.DefaultPeriod)
	if err != nil {
		return market.Period1Month
	}
	return p
}

func parseSymbols(log *zap.Logger, raw []string) []market.Symbol {
	out := make([]market.Symbol, 0, len(raw))
	for _, r := range raw {
		sym, err := market.ParseSymbol(r)
		if err != nil {
			log.Warn("skipping symbol", zap.String("symbol", r), zap.Error(err))
			continue
		}
		out = append(out, sym)
	}
	return out
}

// symbolArgs reads symbols from positional args, accepting "AAPL,MSFT" as well.
func symbolArgs(args []string) []string {
	var out []string
	for _, a := range args {
		for _, s := range strings.Split(a, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
