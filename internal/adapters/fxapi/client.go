// Package fxapi implements the external exchange-rate provider client over
// its HTTP API. Endpoints follow the common fixer/exchangerate layout:
// GET /latest and GET /{YYYY-MM-DD}, authenticated by an access key.
package fxapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dealerledger/dealer_ledger_app/internal/apperrors"
	"github.com/dealerledger/dealer_ledger_app/internal/core/domain"
	portssvc "github.com/dealerledger/dealer_ledger_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

const defaultTimeout = 10 * time.Second

// Client talks to the external FX data source. It implements
// ports/services.RateProvider. No retries here; retry policy, if any,
// belongs to a wrapping integration, not the provider client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a provider client. A zero timeout falls back to the
// default.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetLatestRate returns the provider's current quotation for base -> quote.
func (c *Client) GetLatestRate(ctx context.Context, base, quote string) (*domain.ProviderRate, error) {
	return c.fetch(ctx, "latest", base, quote)
}

// GetHistoricalRate returns the quotation that applied on the given day.
func (c *Client) GetHistoricalRate(ctx context.Context, day time.Time, base, quote string) (*domain.ProviderRate, error) {
	return c.fetch(ctx, day.UTC().Format(time.DateOnly), base, quote)
}

type rateResponse struct {
	Success bool                       `json:"success"`
	Base    string                     `json:"base"`
	Date    string                     `json:"date"`
	Rates   map[string]decimal.Decimal `json:"rates"`
	Error   *struct {
		Code int    `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

func (c *Client) fetch(ctx context.Context, endpoint, base, quote string) (*domain.ProviderRate, error) {
	query := url.Values{}
	query.Set("access_key", c.apiKey)
	query.Set("base", base)
	query.Set("symbols", quote)
	requestURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", apperrors.ErrRateProvider, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s/%s: %v", apperrors.ErrRateProvider, endpoint, base, quote, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", apperrors.ErrRateProvider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", apperrors.ErrRateProvider, endpoint, resp.StatusCode)
	}

	var parsed rateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", apperrors.ErrRateProvider, err)
	}
	if !parsed.Success {
		info := "unknown provider error"
		if parsed.Error != nil && parsed.Error.Info != "" {
			info = parsed.Error.Info
		}
		return nil, fmt.Errorf("%w: %s", apperrors.ErrRateProvider, info)
	}

	rate, ok := parsed.Rates[strings.ToUpper(quote)]
	if !ok {
		return nil, fmt.Errorf("%w: no %s rate in %s response", apperrors.ErrRateProvider, quote, endpoint)
	}

	rateDate, err := time.Parse(time.DateOnly, parsed.Date)
	if err != nil {
		// Some plans omit or garble the date field; the caller decides what
		// day the quotation is filed under, so fall back to now.
		rateDate = time.Now().UTC()
	}

	return &domain.ProviderRate{
		Base:  strings.ToUpper(base),
		Quote: strings.ToUpper(quote),
		Rate:  rate,
		Date:  domain.RateDay(rateDate),
	}, nil
}

var _ portssvc.RateProvider = (*Client)(nil)
