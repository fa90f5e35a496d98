package client

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

	"github.com/osadchiy/routerdesk/internal/api/http/responses"
	"github.com/osadchiy/routerdesk/internal/config"
	"github.com/osadchiy/routerdesk/internal/service/catalog"
)

// Client wraps the console HTTP API with convenience helpers.
type Client struct {
	// baseURL is the console root, e.g. "http://192.168.1.1:8036".
	baseURL string
	// httpClient performs the requests.
	httpClient *http.Client

	// callTimeout is the default timeout for individual API calls.
	callTimeout time.Duration
	// username is sent with triggered actions for the audit trail.
	username string
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithUsername names the operator in triggered runs.
func WithUsername(username string) Option {
	return func(c *Client) {
		if username != "" {
			c.username = username
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// ErrBusy is returned when the console refuses an action because another
	// one is already running.
	ErrBusy = errors.New("another operation is in progress")
)

// userHeader carries the operator name on triggered actions.
const userHeader = "X-Routerdesk-User"

// New creates a client for the console at the given address. A bare
// host:port is promoted to an http URL.
func New(address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	if !strings.Contains(address, "://") {
		address = "http://" + address
	}

	parsed, err := url.ParseRequestURI(address)
	if err != nil {
		return nil, fmt.Errorf("invalid console address %q: %w", address, err)
	}

	client := &Client{
		baseURL:     strings.TrimRight(parsed.String(), "/"),
		httpClient:  http.DefaultClient,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Status retrieves the console status payload.
func (c *Client) Status(ctx context.Context) (*responses.StatusResponse, error) {
	var status responses.StatusResponse
	if err := c.get(ctx, "/api/v1/status", &status); err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	return &status, nil
}

// Trigger asks the console to run the named action. A 409 from the console
// maps to ErrBusy with the server's message preserved.
func (c *Client) Trigger(ctx context.Context, action string, args []string) (*responses.TriggerResponse, error) {
	body, err := json.Marshal(&responses.TriggerRequest{Action: action, Args: args})
	if err != nil {
		return nil, fmt.Errorf("encode trigger request: %w", err)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(
		callCtx, http.MethodPost, c.baseURL+"/api/v1/actions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build trigger request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.username != "" {
		req.Header.Set(userHeader, c.username)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trigger action: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusAccepted:
		var trigger responses.TriggerResponse
		if err := json.NewDecoder(resp.Body).Decode(&trigger); err != nil {
			return nil, fmt.Errorf("decode trigger response: %w", err)
		}

		return &trigger, nil
	case http.StatusConflict:
		return nil, fmt.Errorf("%s: %w", decodeErrorMessage(resp.Body), ErrBusy)
	default:
		return nil, fmt.Errorf("trigger action: %s: %s", resp.Status, decodeErrorMessage(resp.Body))
	}
}

// Terminal retrieves the web terminal port lookup.
func (c *Client) Terminal(ctx context.Context) (*responses.TerminalResponse, error) {
	var terminal responses.TerminalResponse
	if err := c.get(ctx, "/api/v1/terminal", &terminal); err != nil {
		return nil, fmt.Errorf("get terminal: %w", err)
	}

	return &terminal, nil
}

// Devices retrieves the processed device catalog.
func (c *Client) Devices(ctx context.Context) ([]catalog.Device, error) {
	var devices []catalog.Device
	if err := c.get(ctx, "/api/v1/devices", &devices); err != nil {
		return nil, fmt.Errorf("get devices: %w", err)
	}

	return devices, nil
}

// Health retrieves the liveness payload.
func (c *Client) Health(ctx context.Context) (*responses.HealthResponse, error) {
	var health responses.HealthResponse
	if err := c.get(ctx, "/healthz", &health); err != nil {
		return nil, fmt.Errorf("get health: %w", err)
	}

	return &health, nil
}

// TerminalURL derives a browsable terminal URL from the console address and
// the reported port.
func (c *Client) TerminalURL(terminal *responses.TerminalResponse) (string, error) {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse console address: %w", err)
	}

	return fmt.Sprintf("http://%s:%d/", parsed.Hostname(), terminal.Port), nil
}

// get performs a JSON GET against the console.
func (c *Client) get(ctx context.Context, path string, out any) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", resp.Status, decodeErrorMessage(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

// decodeErrorMessage extracts the error payload, falling back to raw text.
func decodeErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "no error details"
	}

	var payload responses.ErrorResponse
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}

	return strings.TrimSpace(string(raw))
}
