// Package apiclient talks the newline-delimited TCP API spoken by the deckrc
// receiver and by VIIPER servers.
package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// Config controls low-level transport behavior such as timeouts.
type Config struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func defaultConfig() Config {
	return Config{
		DialTimeout:  3 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Responder produces canned response lines for a mock transport.
type Responder func(path string, payload any, pathParams map[string]string) (string, error)

// Transport sends one request per connection as "<path> <payload>\n" and
// reads a single response line.
type Transport struct {
	addr string
	mock Responder
	cfg  Config
}

// NewTransport creates a new low-level transport.
func NewTransport(addr string) *Transport { return NewTransportWithConfig(addr, nil) }

// NewTransportWithConfig creates a new low-level transport with optional timeouts configuration.
func NewTransportWithConfig(addr string, cfg *Config) *Transport {
	c := defaultConfig()
	if cfg != nil {
		c = *cfg
	}
	return &Transport{addr: addr, cfg: c}
}

// NewMockTransport creates a transport that answers through responder
// without any networking.
func NewMockTransport(responder Responder) *Transport {
	return &Transport{addr: "mock", mock: responder, cfg: defaultConfig()}
}

// Addr returns the server address.
func (c *Transport) Addr() string { return c.addr }

// IsMock reports whether the transport has no real network behind it.
func (c *Transport) IsMock() bool { return c.mock != nil }

// Do sends a request and returns the response line without the trailing newline.
// Payloads: []byte and string are sent as-is, nil sends nothing, anything
// else is JSON encoded.
func (c *Transport) Do(path string, payload any, pathParams map[string]string) (string, error) {
	return c.DoCtx(context.Background(), path, payload, pathParams)
}

// DoCtx is like Do but honors the provided context and configured timeouts.
func (c *Transport) DoCtx(ctx context.Context, path string, payload any, pathParams map[string]string) (string, error) {
	if c.mock != nil {
		return c.mock(path, payload, pathParams)
	}
	line := fillPath(path, pathParams)
	pb, err := toPayloadBytes(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	if len(pb) > 0 {
		line += " " + string(pb)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("dial: %w", err)
	}
	d := &net.Dialer{Timeout: c.cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return "", fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	if c.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	if c.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && len(resp) == 0 {
		return "", fmt.Errorf("read: %w", err)
	}
	return strings.TrimSuffix(resp, "\n"), nil
}

// Dial opens a raw connection to the server, used for streams that outlive a
// single request.
func (c *Transport) Dial(ctx context.Context) (net.Conn, error) {
	if c.mock != nil {
		return nil, errors.New("streaming not supported with mock transport")
	}
	d := &net.Dialer{Timeout: c.cfg.DialTimeout}
	return d.DialContext(ctx, "tcp", c.addr)
}

func fillPath(pattern string, params map[string]string) string {
	out := pattern
	for k, v := range params {
		out = strings.ReplaceAll(out, "{"+k+"}", url.PathEscape(v))
	}
	return strings.ToLower(out)
}

func toPayloadBytes(v any) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	default:
		return json.Marshal(v)
	}
}
