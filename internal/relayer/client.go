// Package relayer submits settlement and liquidation transactions through
// a gasless relay service. The keeper never signs transactions itself; it
// hands the relay a target contract, a call description and the oracle
// update payload, and gets back a task id to track.
package relayer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"perpkeeper/internal/logger"
	"perpkeeper/internal/pkg/circuit"
	"perpkeeper/internal/settlement"
)

// ErrUnavailable is returned while the circuit is open and calls are being
// shed instead of sent.
var ErrUnavailable = errors.New("relayer: service unavailable, circuit open")

const (
	defaultTimeout   = 15 * time.Second
	breakerThreshold = 5
	breakerCooldown  = 30 * time.Second
)

type Config struct {
	Endpoint           string
	APIKey             string
	OrderManager       string
	BatchHandler       string
	GasLimitSettlement  uint64
	GasLimitLiquidation uint64
}

type Client struct {
	cfg     Config
	http    *http.Client
	breaker *circuit.Breaker
}

func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("relayer: endpoint cannot be empty")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		cfg:     cfg,
		http:    httpClient,
		breaker: circuit.NewBreaker("relayer", breakerThreshold, breakerCooldown),
	}, nil
}

// SettleOrders submits one batch-settlement task for the given entries.
// All entries of a round share the same oracle update payload, so the
// payload of the first entry covers the whole batch.
func (c *Client) SettleOrders(ctx context.Context, entries []settlement.BatchEntry) (string, error) {
	if len(entries) == 0 {
		return "", fmt.Errorf("relayer: empty batch")
	}
	orderIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		orderIDs = append(orderIDs, e.OrderID)
	}
	task := map[string]any{
		"target":          c.cfg.BatchHandler,
		"action":          "batchSettleOrders",
		"orderIds":        orderIDs,
		"priceUpdateData": entries[0].PriceUpdateData,
		"gasLimit":        c.cfg.GasLimitSettlement,
	}
	return c.dispatch(ctx, task)
}

// LiquidatePosition submits one liquidation task for a single position.
func (c *Client) LiquidatePosition(ctx context.Context, positionID string, updateData []string) (string, error) {
	if positionID == "" {
		return "", fmt.Errorf("relayer: empty position id")
	}
	task := map[string]any{
		"target":          c.cfg.OrderManager,
		"action":          "liquidatePosition",
		"positionId":      positionID,
		"priceUpdateData": updateData,
		"gasLimit":        c.cfg.GasLimitLiquidation,
	}
	return c.dispatch(ctx, task)
}

func (c *Client) dispatch(ctx context.Context, task map[string]any) (string, error) {
	if !c.breaker.Allow() {
		return "", ErrUnavailable
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+"/tasks", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-Api-Key", c.cfg.APIKey)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		return "", fmt.Errorf("relayer: request %s: %w", requestID, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.breaker.RecordFailure()
		return "", fmt.Errorf("relayer: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.breaker.RecordFailure()
		return "", fmt.Errorf("relayer: request %s: status %d: %s", requestID, resp.StatusCode, bytes.TrimSpace(body))
	}
	c.breaker.RecordSuccess()

	taskID := gjson.GetBytes(body, "taskId").String()
	if taskID == "" {
		return "", fmt.Errorf("relayer: response missing task id")
	}
	logger.Debugf("relayer: task %s accepted (request %s)", taskID, requestID)
	return taskID, nil
}
