package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

// DataClient is the REST client for the Polymarket data API, which serves
// wallet-level views: current positions and trade activity.
type DataClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewDataClient creates a new data API client.
//
// baseURL is the data API root, e.g. "https://data-api.polymarket.com".
func NewDataClient(baseURL string) *DataClient {
	return &DataClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Positions returns the wallet's current positions, tagged with taskID so
// they slot into the same valuation path as stored positions.
func (c *DataClient) Positions(ctx context.Context, user, taskID string) ([]domain.Position, error) {
	params := url.Values{}
	params.Set("user", user)

	body, err := c.doGet(ctx, "/positions?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/data: get positions for %s: %w", user, err)
	}

	var raw []apiPosition
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("polymarket/data: decode positions for %s: %w", user, err)
	}

	positions := make([]domain.Position, 0, len(raw))
	for _, p := range raw {
		positions = append(positions, p.toDomain(taskID))
	}
	return positions, nil
}

// Activity returns the wallet's most recent trade activity, newest first,
// tagged with taskID.
func (c *DataClient) Activity(ctx context.Context, user, taskID string, limit int) ([]domain.Trade, error) {
	if limit <= 0 {
		limit = 20
	}
	params := url.Values{}
	params.Set("user", user)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.doGet(ctx, "/activity?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/data: get activity for %s: %w", user, err)
	}

	var raw []apiActivity
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("polymarket/data: decode activity for %s: %w", user, err)
	}

	trades := make([]domain.Trade, 0, len(raw))
	for _, a := range raw {
		if a.Type != "" && a.Type != "TRADE" {
			continue
		}
		trades = append(trades, a.toDomain(taskID))
	}
	return trades, nil
}

func (c *DataClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}
