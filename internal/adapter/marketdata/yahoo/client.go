package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/etfguard-backend/internal/domain"
)

// DefaultBaseURL is the public Yahoo Finance query host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

var now = time.Now

// Client is a Yahoo Finance quote client implementing domain.QuoteSource
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "yahoo").Logger(),
	}
}

// quoteResponse represents the response from the Yahoo Finance quote API.
// Prices stay as json.Number so no precision is lost on the way to decimal.
type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string       `json:"symbol"`
			RegularMarketPrice *json.Number `json:"regularMarketPrice"`
			NavPrice           *json.Number `json:"navPrice"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"quoteResponse"`
}

// FetchSnapshot returns today's price and NAV for symbol. Yahoo does not publish NAV for
// every fund; the market price stands in when it is missing.
func (c *Client) FetchSnapshot(ctx context.Context, symbol string) (domain.Snapshot, error) {
	params := url.Values{}
	params.Add("symbols", symbol)
	reqURL := c.baseURL + "/v7/finance/quote?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to fetch quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Snapshot{}, fmt.Errorf("yahoo finance returned status %d: %s", resp.StatusCode, string(body))
	}

	var result quoteResponse
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&result); err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.QuoteResponse.Error != nil {
		return domain.Snapshot{}, fmt.Errorf("yahoo finance error: %v", result.QuoteResponse.Error)
	}
	if len(result.QuoteResponse.Result) == 0 {
		return domain.Snapshot{}, fmt.Errorf("yahoo finance returned no quote for %s", symbol)
	}

	quote := result.QuoteResponse.Result[0]
	if quote.RegularMarketPrice == nil {
		return domain.Snapshot{}, fmt.Errorf("yahoo finance returned no price for %s", symbol)
	}

	price, err := toMoney(*quote.RegularMarketPrice)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("invalid price for %s: %w", symbol, err)
	}

	nav := price
	if quote.NavPrice != nil {
		if nav, err = toMoney(*quote.NavPrice); err != nil {
			return domain.Snapshot{}, fmt.Errorf("invalid NAV for %s: %w", symbol, err)
		}
	} else {
		c.log.Debug().Str("symbol", symbol).Msg("No NAV in quote, using market price")
	}

	quoteSymbol := quote.Symbol
	if quoteSymbol == "" {
		quoteSymbol = symbol
	}

	y, m, d := now().Date()
	return domain.NewSnapshot(quoteSymbol, price, nav, time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func toMoney(n json.Number) (domain.Money, error) {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return domain.Money{}, err
	}
	return domain.NewMoney(d), nil
}
