package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/adeotasks/adeo-api/internal/config"
	"github.com/adeotasks/adeo-api/internal/platform/logger"
)

// AgentClient posts notifications to the desktop agent over HTTP.
type AgentClient struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
	logger   *slog.Logger
}

var _ Notifier = (*AgentClient)(nil)

// NewAgentClient creates a client for http://{host}:{port}/notify.
// A zero timeout falls back to config.DefaultNotifyTimeoutSeconds.
func NewAgentClient(host string, port int, timeout time.Duration, log *slog.Logger) *AgentClient {
	if host == "" {
		host = config.DefaultAgentHost
	}
	if port == 0 {
		port = config.DefaultAgentPort
	}
	if timeout <= 0 {
		timeout = config.DefaultNotifyTimeoutSeconds * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	return &AgentClient{
		endpoint: "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/notify",
		timeout:  timeout,
		client:   &http.Client{},
		logger:   log.With(slog.String("component", "notify_agent")),
	}
}

// NewAgentClientWithURL creates a client that posts to an explicit endpoint.
func NewAgentClientWithURL(endpoint string, timeout time.Duration, client *http.Client, log *slog.Logger) *AgentClient {
	c := NewAgentClient("", 0, timeout, log)
	c.endpoint = endpoint
	if client != nil {
		c.client = client
	}
	return c
}

// Endpoint returns the URL notifications are posted to.
func (c *AgentClient) Endpoint() string { return c.endpoint }

// Enabled implements Notifier.
func (c *AgentClient) Enabled() bool { return true }

// Notify implements Notifier. Each call is bounded by the client timeout;
// any non-2xx response is an error.
func (c *AgentClient) Notify(ctx context.Context, p Payload) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Debug("notification agent unreachable",
			slog.String("notification_id", p.ID),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: agent responded with status %d", ErrDeliveryFailed, resp.StatusCode)
	}

	log.Debug("notification delivered", slog.String("notification_id", p.ID))
	return nil
}
