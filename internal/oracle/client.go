// Package oracle is the client for a Hermes-compatible price service. It
// fetches the binary update payload needed for on-chain submission and the
// latest per-feed price tuples; everything downstream works on the parsed
// values only.
package oracle

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"perpkeeper/internal/types"
)

const defaultTimeout = 10 * time.Second

type Config struct {
	Endpoint string
	Username string
	Password string
	Timeout  time.Duration
}

// Client holds its HTTP handle explicitly; pass nil to get a default one
// with the configured timeout.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("oracle: endpoint cannot be empty")
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:  cfg.Endpoint,
		username: cfg.Username,
		password: cfg.Password,
		http:     httpClient,
	}, nil
}

// PriceUpdateData fetches the update payload for the given feed ids. The
// service returns base64 blobs; contracts expect 0x-prefixed hex, so the
// re-encoding happens here, once, for the whole round.
func (c *Client) PriceUpdateData(ctx context.Context, ids []string) ([]string, error) {
	body, err := c.get(ctx, "/api/latest_vaas", ids, nil)
	if err != nil {
		return nil, err
	}
	var payload []string
	for _, item := range gjson.ParseBytes(body).Array() {
		blob, err := base64.StdEncoding.DecodeString(item.String())
		if err != nil {
			return nil, fmt.Errorf("oracle: decoding update blob: %w", err)
		}
		payload = append(payload, "0x"+hex.EncodeToString(blob))
	}
	return payload, nil
}

// LatestPrices fetches the latest published price for each feed id.
func (c *Client) LatestPrices(ctx context.Context, ids []string) ([]types.PriceQuote, error) {
	extra := url.Values{"verbose": {"false"}, "binary": {"false"}}
	body, err := c.get(ctx, "/api/latest_price_feeds", ids, extra)
	if err != nil {
		return nil, err
	}
	var quotes []types.PriceQuote
	for _, feed := range gjson.ParseBytes(body).Array() {
		price := feed.Get("price")
		quotes = append(quotes, types.PriceQuote{
			ID:          feed.Get("id").String(),
			Price:       price.Get("price").Int(),
			Expo:        int32(price.Get("expo").Int()),
			Conf:        price.Get("conf").Uint(),
			PublishTime: price.Get("publish_time").Int(),
		})
	}
	return quotes, nil
}

func (c *Client) get(ctx context.Context, path string, ids []string, extra url.Values) ([]byte, error) {
	query := url.Values{}
	for _, id := range uniqueIDs(ids) {
		query.Add("ids[]", id)
	}
	for key, values := range extra {
		for _, v := range values {
			query.Add(key, v)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oracle: requesting %s: %w", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("oracle: reading %s response: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oracle: %s returned status %d", path, resp.StatusCode)
	}
	return body, nil
}

// uniqueIDs deduplicates while keeping first-seen order, so the request
// stays deterministic for logging and tests.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
