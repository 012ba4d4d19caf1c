// Package dashboard serves the watch-list over HTTP and pushes every refresh to websocket clients.
package dashboard

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"time"

	"stocktracker/internal/history"
	"stocktracker/internal/market"
	"stocktracker/internal/metrics"
	"stocktracker/internal/presenter"
	"stocktracker/internal/refresh"
	"stocktracker/internal/watchlist"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed index.html
var indexHTML []byte

// HealthChecker reports whether an optional backing service is reachable.
type HealthChecker interface {
	IsHealthy(ctx context.Context) bool
}

type Options struct {
	Popular       []market.Symbol
	Indices       []presenter.Index
	DefaultPeriod market.Period
	Interval      time.Duration
	Metrics       *metrics.Metrics // optional; enables /metrics
	Archive       HealthChecker    // optional; reported by /sys/health
}

type Server struct {
	tracker   *watchlist.Tracker
	history   *history.Query
	refresher refresh.Refresher
	ctrl      *refresh.Controller
	hub       *Hub
	opts      Options
	logger    *zap.Logger
	now       func() time.Time

	// base outlives requests; auto-refresh runs under it.
	base context.Context
}

func NewServer(tracker *watchlist.Tracker, query *history.Query, opts Options, logger *zap.Logger) *Server {
	if opts.DefaultPeriod == "" {
		opts.DefaultPeriod = market.Period1Month
	}
	s := &Server{
		tracker:   tracker,
		history:   query,
		refresher: tracker,
		hub:       NewHub(logger),
		opts:      opts,
		logger:    logger,
		now:       time.Now,
		base:      context.Background(),
	}
	if opts.Metrics != nil {
		s.refresher = opts.Metrics.InstrumentRefresher(tracker)
	}
	s.ctrl = refresh.NewController(s.refresher, opts.Interval, logger, s.onRefresh)
	return s
}

func (s *Server) Controller() *refresh.Controller { return s.ctrl }

func (s *Server) Hub() *Hub { return s.hub }

// Router builds the gin engine with every dashboard route.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})
	r.GET("/ws", s.serveWS)

	if s.opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.opts.Metrics.Handler()))
	}

	sys := r.Group("/sys")
	{
		sys.GET("/health", s.health)
	}

	api := r.Group("/api")
	{
		api.GET("/watchlist", s.getWatchlist)
		api.POST("/watchlist", s.addSymbol)
		api.GET("/watchlist/:symbol", s.getSymbol)
		api.DELETE("/watchlist/:symbol", s.removeSymbol)
		api.POST("/watchlist/:symbol/refresh", s.refreshSymbol)
		api.POST("/refresh", s.refreshAll)
		api.GET("/history/:symbol", s.getHistory)
		api.GET("/popular", s.getPopular)
		api.GET("/market", s.getMarket)
		api.GET("/auto-refresh", s.getAutoRefresh)
		api.PUT("/auto-refresh", s.setAutoRefresh)
	}
	return r
}

// Run serves on addr until ctx is done, then stops auto-refresh and disconnects websocket clients.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.base = ctx
	srv := &http.Server{Addr: addr, Handler: s.Router(), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("dashboard server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down dashboard")
	s.ctrl.Stop()
	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard shutdown: %w", err)
	}
	return nil
}

// health stays 200 while the archive is down: tracking works without it.
func (s *Server) health(c *gin.Context) {
	resp := gin.H{"status": "UP"}
	if s.opts.Archive != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if s.opts.Archive.IsHealthy(ctx) {
			resp["archive"] = "UP"
		} else {
			resp["status"] = "DEGRADED"
			resp["archive"] = "DOWN"
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if s.opts.Metrics != nil {
			s.opts.Metrics.ObserveHTTP(c.Request.Method, route, c.Writer.Status())
		}
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// event is the websocket envelope.
type event struct {
	Type      string                  `json:"type"`
	Watchlist presenter.WatchlistView `json:"watchlist"`
	Report    *presenter.ReportView   `json:"report,omitempty"`
}

func (s *Server) snapshotEvent(kind string) event {
	return event{Type: kind, Watchlist: presenter.NewWatchlistView(s.tracker.Store().Snapshot(), s.now())}
}

func (s *Server) onRefresh(r watchlist.RefreshReport) {
	ev := s.snapshotEvent("refresh")
	rv := presenter.NewReportView(r)
	ev.Report = &rv
	s.hub.Broadcast(ev)
}

// changed pushes the watch-list after a user action.
func (s *Server) changed() {
	s.hub.Broadcast(s.snapshotEvent("update"))
}

func (s *Server) serveWS(c *gin.Context) {
	s.hub.Serve(c.Writer, c.Request, s.snapshotEvent("snapshot"))
}
