// Package rates talks to the external exchange-rate provider. The provider
// has a monthly request quota, so every call goes through a QuotaGuard first.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
)

// Provider answers "how much is one unit of base in each target currency".
// Implementations must treat quota exhaustion and malformed responses as
// recoverable errors; callers skip the affected base currency and move on.
type Provider interface {
	GetRates(ctx context.Context, base string, targets []string) (map[string]decimal.Decimal, error)
}

// Client is the HTTP implementation of Provider.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	quota   *QuotaGuard
}

// NewClient creates a provider client. timeout bounds each HTTP request.
func NewClient(baseURL, apiKey string, timeout time.Duration, quota *QuotaGuard) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		quota:   quota,
	}
}

// ratesResponse is the provider's wire format. Rates are decoded as
// json.Number so no precision is lost on the way into decimal.
type ratesResponse struct {
	Base  string                 `json:"base"`
	Rates map[string]json.Number `json:"rates"`
}

// GetRates fetches the conversion rates from base into each target currency.
func (c *Client) GetRates(ctx context.Context, base string, targets []string) (map[string]decimal.Decimal, error) {
	if len(targets) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	if err := c.quota.Acquire(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("base", base)
	q.Set("symbols", strings.Join(targets, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/latest?"+q.Encode(), nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrProviderUnavailable, err)
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrap(apperrors.ErrProviderUnavailable,
			fmt.Errorf("provider returned status %d for base %s", resp.StatusCode, base))
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrProviderUnavailable, err)
	}
	if len(body.Rates) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrProviderUnavailable,
			fmt.Errorf("provider returned no rates for base %s", base))
	}

	out := make(map[string]decimal.Decimal, len(body.Rates))
	for target, raw := range body.Rates {
		rate, err := decimal.NewFromString(raw.String())
		if err != nil || !rate.IsPositive() {
			return nil, apperrors.Wrap(apperrors.ErrProviderUnavailable,
				fmt.Errorf("provider returned malformed rate %q for %s->%s", raw, base, target))
		}
		out[target] = rate
	}
	return out, nil
}
