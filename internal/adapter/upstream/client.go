package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/simaogato/adscope/internal/domain"
	"github.com/simaogato/adscope/internal/log"
)

// Resource paths of the read-only upstream
const (
	PathLocations       = "/ad-locations/"
	PathAdSpends        = "/ad-spends/"
	PathBusinessCryptos = "/business-cryptos/"
)

// DefaultBaseURL is where the upstream listens in local setups
const DefaultBaseURL = "http://localhost:8000"

// maxBodyBytes caps how much of a response is read
const maxBodyBytes = 10 << 20

// HTTPClient matches net/http.Client Do signature for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config defines settings for the upstream client.
type Config struct {
	BaseURL string
	Timeout time.Duration // Used only when no HTTPClient is supplied
}

// Client fetches locations and records from the upstream resource.
// It implements domain.LocationSource and domain.RecordSource.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	logger     *log.Logger
}

// New creates an upstream client.
func New(httpClient HTTPClient, cfg Config, logger *log.Logger) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		logger:     logger.WithComponent(log.ComponentUpstream),
	}
}

// ListLocations calls GET /ad-locations/
func (c *Client) ListLocations(ctx context.Context) ([]domain.Location, error) {
	var locations []domain.Location
	if err := c.getJSON(ctx, c.endpoint(PathLocations, ""), &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// ListAdSpends calls GET /ad-spends/, filtered by location when one is given
func (c *Client) ListAdSpends(ctx context.Context, location string) ([]domain.AdSpendRecord, error) {
	var spends []domain.AdSpendRecord
	if err := c.getJSON(ctx, c.endpoint(PathAdSpends, location), &spends); err != nil {
		return nil, err
	}
	return spends, nil
}

// ListCryptoEarnings calls GET /business-cryptos/, filtered by location when one is given
func (c *Client) ListCryptoEarnings(ctx context.Context, location string) ([]domain.CryptoEarningRecord, error) {
	var earnings []domain.CryptoEarningRecord
	if err := c.getJSON(ctx, c.endpoint(PathBusinessCryptos, location), &earnings); err != nil {
		return nil, err
	}
	return earnings, nil
}

func (c *Client) endpoint(path, location string) string {
	endpoint := c.baseURL + path
	if location != "" {
		endpoint += "?location=" + EncodeQueryComponent(location)
	}
	return endpoint
}

// EncodeQueryComponent percent-encodes a query value so that every reserved
// character survives transport, spaces included as %20.
func EncodeQueryComponent(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &domain.NetworkError{URL: endpoint, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return &domain.NetworkError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "upstream response",
		log.FieldURL, endpoint,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &domain.NetworkError{URL: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &domain.NetworkError{URL: endpoint, Err: fmt.Errorf("read response: %w", err)}
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		return &domain.ParseError{URL: endpoint, Err: errors.New("response is not a JSON array")}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.ParseError{URL: endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}
