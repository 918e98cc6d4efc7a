// Package subgraph queries the protocol's indexing service and maps its
// responses into domain records. All validation and zero-defaulting of
// monetary fields happens here, at the boundary, so the math layers can
// trust their inputs.
package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"perpkeeper/internal/types"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string, timeout time.Duration, httpClient *http.Client) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("subgraph: endpoint cannot be empty")
	}
	if httpClient == nil {
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{endpoint: endpoint, http: httpClient}, nil
}

// PendingOrders returns up to limit pending orders whose deadline has not
// passed, oldest first, with their markets embedded.
func (c *Client) PendingOrders(ctx context.Context, asOf int64, limit int) ([]types.Order, error) {
	data, err := c.query(ctx, fmt.Sprintf(pendingOrdersQuery, limit, asOf))
	if err != nil {
		return nil, err
	}
	var orders []types.Order
	for _, raw := range data.Get("orders").Array() {
		orders = append(orders, parseOrder(raw))
	}
	return orders, nil
}

// OpenPositions returns up to limit open positions with their markets and
// deposit tokens embedded, largest collateral first.
func (c *Client) OpenPositions(ctx context.Context, limit int) ([]types.Position, error) {
	data, err := c.query(ctx, fmt.Sprintf(openPositionsQuery, limit))
	if err != nil {
		return nil, err
	}
	var positions []types.Position
	for _, raw := range data.Get("positions").Array() {
		positions = append(positions, parsePosition(raw))
	}
	return positions, nil
}

// PositionByID returns a single position, or nil when the indexer does
// not know it.
func (c *Client) PositionByID(ctx context.Context, id string) (*types.Position, error) {
	data, err := c.query(ctx, fmt.Sprintf(positionByIDQuery, id))
	if err != nil {
		return nil, err
	}
	raw := data.Get("position")
	if !raw.Exists() || raw.Type == gjson.Null {
		return nil, nil
	}
	position := parsePosition(raw)
	return &position, nil
}

func (c *Client) query(ctx context.Context, query string) (gjson.Result, error) {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return gjson.Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("subgraph: request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("subgraph: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("subgraph: status %d", resp.StatusCode)
	}
	if errMsg := gjson.GetBytes(body, "errors.0.message"); errMsg.Exists() {
		return gjson.Result{}, fmt.Errorf("subgraph: query failed: %s", errMsg.String())
	}
	return gjson.GetBytes(body, "data"), nil
}
