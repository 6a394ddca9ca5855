package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// ChatIOType is the input and output type of every run request.
	ChatIOType = "chat"

	// FallbackReply is returned when the flow answers with JSON that carries no reply text.
	FallbackReply = "I apologize, but I couldn't process your request. Please try again."
)

// Request is the JSON body of a flow run.
type Request struct {
	InputValue string         `json:"input_value"`
	OutputType string         `json:"output_type"`
	InputType  string         `json:"input_type"`
	Tweaks     map[string]any `json:"tweaks,omitempty"`
}

// Options configures a Client.
type Options struct {
	BaseURL string
	FlowID  string
	// Tweaks are per-component overrides forwarded with every request. They are passed through
	// untouched; the flow decides what they mean.
	Tweaks map[string]any
	// Timeout bounds a single call. Zero keeps the HTTP client's default.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client forwards user messages to one flow.
type Client struct {
	endpoint string
	tweaks   map[string]any
	http     *http.Client
	logger   zerolog.Logger
}

// NewClient builds a Client for {BaseURL}/api/v1/run/{FlowID}.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("relay: base url is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("relay: invalid base url %q: %w", opts.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("relay: base url must be an absolute http(s) URL, got %q", opts.BaseURL)
	}
	if strings.TrimSpace(opts.FlowID) == "" {
		return nil, fmt.Errorf("relay: flow id is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if opts.Timeout > 0 {
		c := *httpClient
		c.Timeout = opts.Timeout
		httpClient = &c
	}

	return &Client{
		endpoint: fmt.Sprintf("%s/api/v1/run/%s", base, url.PathEscape(opts.FlowID)),
		tweaks:   opts.Tweaks,
		http:     httpClient,
		logger:   opts.Logger.With().Str("component", "relay").Logger(),
	}, nil
}

// Endpoint is the URL every request is posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Send posts message to the flow once and returns the reply text. Failures are *Error values
// of kind ErrTransport or ErrParse.
func (c *Client) Send(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(c.newRequest(message))
	if err != nil {
		return "", transportError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", transportError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", c.endpoint).Msg("flow request failed")
		return "", transportError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(err)
	}
	c.logger.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(payload)).
		Dur("elapsed", time.Since(start)).
		Msg("flow responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", transportError(&StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        c.endpoint,
		})
	}

	return ExtractReply(payload)
}

func (c *Client) newRequest(message string) Request {
	req := Request{
		InputValue: message,
		OutputType: ChatIOType,
		InputType:  ChatIOType,
	}
	if len(c.tweaks) > 0 {
		req.Tweaks = c.tweaks
	}
	return req
}
