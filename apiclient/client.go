package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/apitypes"
)

// Client provides typed access to the receiver status API.
type Client struct{ transport *Transport }

// New constructs a client for the API server at addr (host:port).
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithConfig constructs a client with custom transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a Client on top of an existing Transport.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// Transport returns the underlying transport.
func (c *Client) Transport() *Transport { return c.transport }

// Ping returns the server identity and version.
func (c *Client) Ping(ctx context.Context) (*apitypes.PingResponse, error) {
	return Call[apitypes.PingResponse](ctx, c.transport, "ping", nil, nil)
}

// Status returns the receiver's failsafe state and counters.
func (c *Client) Status(ctx context.Context) (*apitypes.StatusResponse, error) {
	return Call[apitypes.StatusResponse](ctx, c.transport, "status", nil, nil)
}

// Call performs one request and decodes the JSON response into T. An
// {"error": "..."} response is returned as an error.
func Call[T any](ctx context.Context, t *Transport, path string, payload any, pathParams map[string]string) (*T, error) {
	line, err := t.DoCtx(ctx, path, payload, pathParams)
	if err != nil {
		return nil, err
	}
	return parse[T](line)
}

func parse[T any](line string) (*T, error) {
	if line == "" {
		return nil, errors.New("empty response")
	}
	var ae apitypes.ApiError
	if err := json.Unmarshal([]byte(line), &ae); err == nil && ae.Error != "" {
		return nil, errors.New(ae.Error)
	}
	var out T
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
