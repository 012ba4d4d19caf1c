// Package metrics holds the Prometheus collectors for provider calls, refreshes and the dashboard.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"stocktracker/internal/market"
	"stocktracker/internal/watchlist"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stocktracker"

type Metrics struct {
	registry *prometheus.Registry

	ProviderRequests *prometheus.CounterVec   // op, outcome
	ProviderDuration *prometheus.HistogramVec // op
	RefreshDuration  prometheus.Histogram
	RefreshFailures  prometheus.Counter
	RefreshDiscarded prometheus.Counter
	HTTPRequests     *prometheus.CounterVec // method, route, status
}

// New creates the collectors on a private registry. tracked reports the watch-list size.
func New(tracked func() int) (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Quote provider calls by operation and outcome",
		}, []string{"op", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Quote provider call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "duration_seconds",
			Help:      "Bulk refresh duration in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		RefreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "failures_total",
			Help:      "Symbols whose refresh failed",
		}),
		RefreshDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "discarded_total",
			Help:      "Refresh results dropped because the symbol was removed mid-fetch",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Dashboard HTTP requests",
		}, []string{"method", "route", "status"}),
	}

	cs := []prometheus.Collector{
		m.ProviderRequests,
		m.ProviderDuration,
		m.RefreshDuration,
		m.RefreshFailures,
		m.RefreshDiscarded,
		m.HTTPRequests,
		collectors.NewGoCollector(),
	}
	if tracked != nil {
		cs = append(cs, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_symbols",
			Help:      "Symbols currently on the watch-list",
		}, func() float64 { return float64(tracked()) }))
	}

	for _, c := range cs {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) observeProvider(op string, start time.Time, err error) {
	m.ProviderDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.ProviderRequests.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, market.ErrNoData):
		return "no_data"
	default:
		return "error"
	}
}

type instrumentedProvider struct {
	next market.Provider
	m    *Metrics
}

// InstrumentProvider counts and times every call to p.
func (m *Metrics) InstrumentProvider(p market.Provider) market.Provider {
	return &instrumentedProvider{next: p, m: m}
}

func (p *instrumentedProvider) FetchQuote(ctx context.Context, symbol market.Symbol) (market.Quote, error) {
	start := time.Now()
	q, err := p.next.FetchQuote(ctx, symbol)
	p.m.observeProvider("quote", start, err)
	return q, err
}

func (p *instrumentedProvider) FetchHistory(ctx context.Context, symbol market.Symbol, period market.Period) ([]market.HistoryPoint, error) {
	start := time.Now()
	points, err := p.next.FetchHistory(ctx, symbol, period)
	p.m.observeProvider("history", start, err)
	return points, err
}

// BulkRefresher is satisfied by *watchlist.Tracker.
type BulkRefresher interface {
	RefreshAll(ctx context.Context) watchlist.RefreshReport
}

type instrumentedRefresher struct {
	next BulkRefresher
	m    *Metrics
}

// InstrumentRefresher times every bulk refresh and counts its failures and discards.
func (m *Metrics) InstrumentRefresher(r BulkRefresher) BulkRefresher {
	return &instrumentedRefresher{next: r, m: m}
}

func (r *instrumentedRefresher) RefreshAll(ctx context.Context) watchlist.RefreshReport {
	start := time.Now()
	report := r.next.RefreshAll(ctx)
	r.m.RefreshDuration.Observe(time.Since(start).Seconds())
	r.m.RefreshFailures.Add(float64(len(report.Failed)))
	r.m.RefreshDiscarded.Add(float64(len(report.Discarded)))
	return report
}
