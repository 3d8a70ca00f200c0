// Package client is the resilient data-access layer: every domain read and
// write goes remote-first when the backend is reachable and degrades to the
// durable local mirror when it is not. The low-level request primitive is the
// only place that fails loudly; the domain wrappers always resolve to a
// value, tagged with its Source.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/doraapp/dora/internal/cache"
)

const (
	healthTimeout  = 5 * time.Second
	requestTimeout = 10 * time.Second
)

// Config holds client construction options. Cache and BaseURL are required;
// the rest default sensibly.
type Config struct {
	BaseURL string
	Cache   *cache.Cache
	Logger  *slog.Logger

	// NewID generates ids for offline-synthesized records. Defaults to
	// random UUIDs; inject a deterministic generator in tests.
	NewID func() string

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// connectivity is the backend reachability state. It starts optimistic and
// is flipped by probes and failed requests.
type connectivity struct {
	mu          sync.RWMutex
	reachable   bool
	lastChecked time.Time
}

func (c *connectivity) get() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reachable
}

func (c *connectivity) set(reachable bool) {
	c.mu.Lock()
	c.reachable = reachable
	c.lastChecked = time.Now()
	c.mu.Unlock()
}

type Client struct {
	baseURL string
	http    *http.Client
	cache   *cache.Cache
	newID   func() string
	logger  *slog.Logger
	conn    connectivity
}

func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		cache:   cfg.Cache,
		newID:   newID,
		logger:  logger,
	}
	c.conn.set(true)
	return c
}

// Reachable reports the last known backend reachability without probing.
func (c *Client) Reachable() bool {
	return c.conn.get()
}

// SetAuthToken persists the bearer credential in the mirror so later
// requests pick it up.
func (c *Client) SetAuthToken(token string) error {
	return c.cache.SetString(cache.KeyAuthToken, token)
}

// CheckHealth probes the backend health endpoint with a bounded timeout and
// a short backoff retry. It never returns an error: any failure means "not
// reachable". The result is recorded for subsequent requests.
func (c *Client) CheckHealth(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return retry.RetryableError(fmt.Errorf("health returned %d", resp.StatusCode))
		}
		return nil
	})

	reachable := err == nil
	if !reachable {
		c.logger.Debug("health probe failed", "error", err)
	}
	c.conn.set(reachable)
	return reachable
}

// request performs one remote call and decodes the enveloped response into
// out. When the backend was marked unreachable it re-probes once; if still
// down it fails with ErrBackendUnavailable without touching the network.
// Any transport error or non-2xx flips the reachability flag and returns a
// *RemoteError.
func (c *Client) request(ctx context.Context, method, path string, body, out any) error {
	if !c.conn.get() {
		if !c.CheckHealth(ctx) {
			return ErrBackendUnavailable
		}
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.cache.GetString(cache.KeyAuthToken); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.conn.set(false)
		return &RemoteError{Message: err.Error()}
	}
	defer resp.Body.Close()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.conn.set(false)
		return &RemoteError{Status: resp.StatusCode, Message: env.Message}
	}
	if decodeErr != nil {
		c.conn.set(false)
		return &RemoteError{Status: resp.StatusCode, Message: "malformed response: " + decodeErr.Error()}
	}
	if !env.Success {
		c.conn.set(false)
		return &RemoteError{Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			c.conn.set(false)
			return &RemoteError{Status: resp.StatusCode, Message: "decode data: " + err.Error()}
		}
	}
	return nil
}

// SaveLocal writes a value straight to the mirror under key.
func (c *Client) SaveLocal(key string, v any) error {
	return c.cache.Set(key, v)
}

// LoadLocal reads a mirror value by key, reporting whether it was present.
func (c *Client) LoadLocal(key string, v any) (bool, error) {
	return c.cache.Get(key, v)
}

// SaveWizardProgress persists the step wizard's in-flight state. The wizard
// is purely local until a step is committed, so this never goes remote.
func (c *Client) SaveWizardProgress(v any) error {
	return c.SaveLocal(cache.KeyWizardProgress, v)
}

// WizardProgress loads the saved wizard state into v, reporting whether any
// was stored.
func (c *Client) WizardProgress(v any) (bool, error) {
	return c.LoadLocal(cache.KeyWizardProgress, v)
}
