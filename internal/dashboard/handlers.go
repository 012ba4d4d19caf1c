package dashboard

import (
	"errors"
	"net/http"

	"stocktracker/internal/market"
	"stocktracker/internal/presenter"

	"github.com/gin-gonic/gin"
)

type addRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

type autoRefreshRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type autoRefreshResponse struct {
	Enabled  bool   `json:"enabled"`
	Interval string `json:"interval"`
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, market.ErrAlreadyTracked):
		return http.StatusConflict
	case errors.Is(err, market.ErrNotTracked), errors.Is(err, market.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, market.ErrInvalidSymbol), errors.Is(err, market.ErrUnknownPeriod):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func (s *Server) getWatchlist(c *gin.Context) {
	c.JSON(http.StatusOK, presenter.NewWatchlistView(s.tracker.Store().Snapshot(), s.now()))
}

func (s *Server) addSymbol(c *gin.Context) {
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q, err := s.tracker.Add(c.Request.Context(), req.Symbol)
	if err != nil {
		abort(c, err)
		return
	}
	s.changed()
	c.JSON(http.StatusCreated, presenter.NewQuoteView(q))
}

func (s *Server) getSymbol(c *gin.Context) {
	q, err := s.tracker.Get(c.Param("symbol"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, presenter.NewQuoteView(q))
}

func (s *Server) removeSymbol(c *gin.Context) {
	sym, err := s.tracker.Remove(c.Param("symbol"))
	if err != nil {
		abort(c, err)
		return
	}
	s.changed()
	c.JSON(http.StatusOK, gin.H{"removed": sym})
}

func (s *Server) refreshSymbol(c *gin.Context) {
	q, err := s.tracker.RefreshOne(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		abort(c, err)
		return
	}
	s.changed()
	c.JSON(http.StatusOK, presenter.NewQuoteView(q))
}

func (s *Server) refreshAll(c *gin.Context) {
	report := s.refresher.RefreshAll(c.Request.Context())
	s.onRefresh(report)
	c.JSON(http.StatusOK, presenter.NewReportView(report))
}

func (s *Server) getHistory(c *gin.Context) {
	period := s.opts.DefaultPeriod
	if raw := c.Query("period"); raw != "" {
		p, err := market.ParsePeriod(raw)
		if err != nil {
			abort(c, err)
			return
		}
		period = p
	}

	res, err := s.history.Run(c.Request.Context(), c.Param("symbol"), period)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, presenter.NewHistoryView(res))
}

func (s *Server) getPopular(c *gin.Context) {
	res := s.tracker.Lookup(c.Request.Context(), s.opts.Popular)
	c.JSON(http.StatusOK, presenter.NewLookupView(res))
}

func (s *Server) getMarket(c *gin.Context) {
	symbols := make([]market.Symbol, 0, len(s.opts.Indices))
	for _, idx := range s.opts.Indices {
		symbols = append(symbols, idx.Symbol)
	}
	res := s.tracker.Lookup(c.Request.Context(), symbols)
	c.JSON(http.StatusOK, gin.H{"indices": presenter.NewMarketView(s.opts.Indices, res)})
}

func (s *Server) getAutoRefresh(c *gin.Context) {
	c.JSON(http.StatusOK, s.autoRefreshState())
}

func (s *Server) setAutoRefresh(c *gin.Context) {
	var req autoRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if *req.Enabled {
		s.ctrl.Start(s.base)
	} else {
		s.ctrl.Stop()
	}
	c.JSON(http.StatusOK, s.autoRefreshState())
}

func (s *Server) autoRefreshState() autoRefreshResponse {
	return autoRefreshResponse{Enabled: s.ctrl.Active(), Interval: s.ctrl.Interval().String()}
}
