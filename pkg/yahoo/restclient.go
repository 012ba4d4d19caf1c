package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"stocktracker/internal/market"

	"go.uber.org/zap"
)

// RESTClient implements market.Provider over the Yahoo Finance chart and quoteSummary endpoints.
// Every failure it returns wraps market.ErrNoData.
type RESTClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

var _ market.Provider = (*RESTClient)(nil)

type Option func(*RESTClient)

func WithUserAgent(ua string) Option {
	return func(c *RESTClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *RESTClient) { c.httpClient = h }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *RESTClient) { c.logger = l }
}

func NewRESTClient(baseURL string, timeout time.Duration, opts ...Option) *RESTClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &RESTClient{
		baseURL:    baseURL,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchQuote returns today's snapshot for symbol.
// The quoteSummary call is best-effort: when it fails the descriptive fields stay unknown.
func (c *RESTClient) FetchQuote(ctx context.Context, symbol market.Symbol) (market.Quote, error) {
	res, err := c.chart(ctx, symbol, quoteRange)
	if err != nil {
		return market.Quote{}, err
	}
	q, err := QuoteFromChart(symbol, res, c.now())
	if err != nil {
		return market.Quote{}, err
	}

	summary, err := c.summary(ctx, symbol)
	if err != nil {
		c.logger.Debug("quote summary unavailable", zap.String("symbol", symbol.String()), zap.Error(err))
		return q, nil
	}
	MergeSummary(&q, summary)
	return q, nil
}

// FetchHistory returns daily bars over period, ascending by date.
func (c *RESTClient) FetchHistory(ctx context.Context, symbol market.Symbol, period market.Period) ([]market.HistoryPoint, error) {
	meta, err := ParseRange(period)
	if err != nil {
		return nil, err
	}
	res, err := c.chart(ctx, symbol, meta)
	if err != nil {
		return nil, err
	}
	points := ParseHistory(res)
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %s %s: empty series", market.ErrNoData, symbol, period)
	}
	return points, nil
}

func (c *RESTClient) chart(ctx context.Context, symbol market.Symbol, r RangeMeta) (ChartResult, error) {
	params := url.Values{}
	params.Set("range", r.Range)
	params.Set("interval", r.Interval)
	params.Set("includePrePost", "false")
	endpoint := c.baseURL + chartPath + url.PathEscape(symbol.String()) + "?" + params.Encode()

	var resp ChartResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return ChartResult{}, fmt.Errorf("%w: %s: %v", market.ErrNoData, symbol, err)
	}
	if resp.Chart.Error != nil {
		return ChartResult{}, fmt.Errorf("%w: %s: %v", market.ErrNoData, symbol, resp.Chart.Error)
	}
	if len(resp.Chart.Result) == 0 {
		return ChartResult{}, fmt.Errorf("%w: %s: empty chart result", market.ErrNoData, symbol)
	}
	return resp.Chart.Result[0], nil
}

func (c *RESTClient) summary(ctx context.Context, symbol market.Symbol) (SummaryResult, error) {
	params := url.Values{}
	params.Set("modules", summaryModules)
	endpoint := c.baseURL + summaryPath + url.PathEscape(symbol.String()) + "?" + params.Encode()

	var resp SummaryResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return SummaryResult{}, err
	}
	if resp.QuoteSummary.Error != nil {
		return SummaryResult{}, resp.QuoteSummary.Error
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return SummaryResult{}, errors.New("empty summary result")
	}
	return resp.QuoteSummary.Result[0], nil
}

// getJSON performs a GET and decodes the body into out.
// Yahoo sends error envelopes with non-200 codes, so those bodies are decoded too when possible.
func (c *RESTClient) getJSON(ctx context.Context, endpoint string, out any) error {
	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if jsonErr := json.Unmarshal(body, out); jsonErr == nil {
			if apiErr := embeddedError(out); apiErr != nil {
				return apiErr
			}
		}
		return fmt.Errorf("yahoo error (status code %d): %s", resp.StatusCode, truncate(body, 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func embeddedError(v any) error {
	switch r := v.(type) {
	case *ChartResponse:
		if r.Chart.Error != nil {
			return r.Chart.Error
		}
	case *SummaryResponse:
		if r.QuoteSummary.Error != nil {
			return r.QuoteSummary.Error
		}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
