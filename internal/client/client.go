// Package client is a thin Go SDK for talking to one chordkv peer over
// HTTP. It hides request construction and status-code handling behind a
// small set of methods; it does not implement any ring logic itself — that
// lives entirely on the server side, one peer at a time.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"chordkv/internal/ring"
)

// Client talks to one peer, addressed as host:port.
type Client struct {
	httpClient *http.Client
}

// New creates a Client with the given per-request timeout.
func New(timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = fmt.Errorf("key not found")

// APIError carries the HTTP status and body text from a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

func (c *Client) url(addr, path string) string {
	return fmt.Sprintf("http://%s%s", addr, path)
}

// Put stores value under key on the peer at addr.
func (c *Client) Put(ctx context.Context, addr, key string, value []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url(addr, "/storage/"+key), bytes.NewReader(value))
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// Get retrieves the value stored under key on the peer at addr.
func (c *Client) Get(ctx context.Context, addr, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(addr, "/storage/"+key), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

// Join asks the peer at addr to join the ring through bootstrap nprime.
func (c *Client) Join(ctx context.Context, addr, nprime string) error {
	u := fmt.Sprintf("%s?nprime=%s", c.url(addr, "/join"), nprime)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// Leave asks the peer at addr to gracefully leave the ring.
func (c *Client) Leave(ctx context.Context, addr string) error {
	return c.post(ctx, addr, "/leave")
}

// SimCrash asks the peer at addr to start simulating a crash.
func (c *Client) SimCrash(ctx context.Context, addr string) error {
	return c.post(ctx, addr, "/sim-crash")
}

// SimRecover asks the peer at addr to clear its simulated-crash flag.
func (c *Client) SimRecover(ctx context.Context, addr string) error {
	return c.post(ctx, addr, "/sim-recover")
}

func (c *Client) post(ctx context.Context, addr, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(addr, path), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// Neighbors returns [successor, predecessor] addresses, or an empty slice
// for a singleton ring.
func (c *Client) Neighbors(ctx context.Context, addr string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(addr, "/neighbors"), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var out []string
	return out, json.NewDecoder(resp.Body).Decode(&out)
}

// NodeInfo returns the peer's full introspection record.
func (c *Client) NodeInfo(ctx context.Context, addr string) (*ring.NodeInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(addr, "/node-info"), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var info ring.NodeInfo
	return &info, json.NewDecoder(resp.Body).Decode(&info)
}

// Key returns the peer's own hex node key.
func (c *Client) Key(ctx context.Context, addr string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(addr, "/key"), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return "", err
	}
	body, err := io.ReadAll(resp.Body)
	return string(body), err
}

// checkStatus converts a non-2xx HTTP response into a Go error.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return &APIError{Status: resp.StatusCode, Message: string(body)}
}
