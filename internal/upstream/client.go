package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the shared HTTP collaborator for every provider adapter: JSON
// GET/POST with a bounded timeout. Requests carry the caller's context so a
// client disconnect aborts outstanding upstream calls.
type Client struct {
	http *http.Client
}

func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		http: &http.Client{Timeout: timeout},
	}
}

type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Body)
}

// GetJSON fetches url and decodes the response body into out.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.do(req, out)
}

// PostJSON sends body as JSON to url and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)

	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))

	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.do(req, out)
}

// GetText fetches url and returns the raw body as a string. Used for scraping
// non-JSON endpoints (video titles, transcripts).
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return "", err
	}

	res, err := c.http.Do(req)

	if err != nil {
		return "", err
	}

	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))

	if err != nil {
		return "", err
	}

	if res.StatusCode >= 400 {
		return "", &StatusError{Status: res.StatusCode, Body: snippet(body)}
	}

	return string(body), nil
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.http.Do(req)

	if err != nil {
		return err
	}

	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))

	if err != nil {
		return err
	}

	if res.StatusCode >= 400 {
		return &StatusError{Status: res.StatusCode, Body: snippet(body)}
	}

	if out == nil {
		return nil
	}

	return json.Unmarshal(body, out)
}

func snippet(body []byte) string {
	const max = 256

	if len(body) > max {
		body = body[:max]
	}

	return string(body)
}
