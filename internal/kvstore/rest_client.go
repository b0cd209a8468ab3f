package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"trade-journal-go/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RestClient is a client for an Upstash-compatible Redis REST endpoint.
// Each command is POSTed to the base URL as a JSON array, e.g. ["INCR","trade_counter"],
// and answered with {"result": ...} or {"error": "..."}.
// It implements the Store interface.
type RestClient struct {
	client  *resty.Client
	token   string
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure RestClient implements the interface
var _ Store = (*RestClient)(nil)

// commandResponse is the envelope of every REST reply.
type commandResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error,omitempty"`
}

// NewRestClient creates a new REST store client.
// An empty URL or token is accepted here and fails on the first command.
func NewRestClient(cfg *config.Store, logger *zap.Logger) *RestClient {
	if cfg.URL == "" {
		logger.Warn("Store URL is empty, commands will fail")
	}

	client := resty.New().SetBaseURL(cfg.URL)
	if cfg.Timeout > 0 {
		client.SetTimeout(time.Duration(cfg.Timeout) * time.Second)
	}

	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	return &RestClient{
		client:  client,
		token:   cfg.Token,
		logger:  logger.Named("kv-rest"),
		limiter: rate.NewLimiter(limit, burst),
	}
}

// doRequest executes one command under the rate limiter. There is no retry:
// a failed command is returned to the caller as is.
func (c *RestClient) doRequest(ctx context.Context, args ...string) (json.RawMessage, error) {
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}

	// Wait for the rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	req := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetHeader("Content-Type", "application/json").
		ForceContentType("application/json").
		SetBody(args).
		SetResult(&commandResponse{}).
		SetError(&commandResponse{})

	c.logger.Debug("Executing command", zap.String("command", args[0]), zap.String("url", c.client.BaseURL))
	resp, err := req.Post("/")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.IsError() {
		msg := resp.String()
		if e, ok := resp.Error().(*commandResponse); ok && e.Error != "" {
			msg = e.Error
		}
		return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), msg)
	}

	result, ok := resp.Result().(*commandResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response: %s", resp.String())
	}
	if result.Error != "" {
		return nil, fmt.Errorf("command %s failed: %s", args[0], result.Error)
	}
	return result.Result, nil
}

// Get fetches the string stored under key.
func (c *RestClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.doRequest(ctx, "GET", key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if isNull(raw) {
		return nil, false, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, fmt.Errorf("failed to decode value of %s: %w", key, err)
	}
	return []byte(s), true, nil
}

// Set stores value under key.
func (c *RestClient) Set(ctx context.Context, key string, value []byte) error {
	if _, err := c.doRequest(ctx, "SET", key, string(value)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key is present.
func (c *RestClient) Exists(ctx context.Context, key string) (bool, error) {
	raw, err := c.doRequest(ctx, "EXISTS", key)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", key, err)
	}
	n, err := decodeInt(raw)
	if err != nil {
		return false, fmt.Errorf("failed to decode exists reply for %s: %w", key, err)
	}
	return n > 0, nil
}

// Incr increments the counter under key.
func (c *RestClient) Incr(ctx context.Context, key string) (int64, error) {
	raw, err := c.doRequest(ctx, "INCR", key)
	if err != nil {
		return 0, fmt.Errorf("failed to incr %s: %w", key, err)
	}
	n, err := decodeInt(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to decode incr reply for %s: %w", key, err)
	}
	return n, nil
}

// Del removes key.
func (c *RestClient) Del(ctx context.Context, key string) error {
	if _, err := c.doRequest(ctx, "DEL", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// decodeInt accepts both JSON numbers and numeric strings.
func decodeInt(raw json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("not an integer: %s", string(raw))
	}
	return strconv.ParseInt(s, 10, 64)
}
