package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// #region client

// Client talks to the host's JSON API. It implements Generator, CardStore,
// and History against a single base address.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a Client for the host at base (e.g. "http://localhost:8090").
func NewClient(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 120 * time.Second},
	}
}

// #endregion client

// #region generate

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate requests one continuation from the upstream generator. The call
// blocks until the host returns; there is no partial-result handling.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var resp generateResponse
	if err := c.post(ctx, "/api/generate", generateRequest{Prompt: prompt}, &resp); err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return resp.Text, nil
}

// #endregion generate

// #region cards

// Create inserts a card. The host rejects duplicates by key.
func (c *Client) Create(ctx context.Context, card Card) error {
	if err := c.post(ctx, "/api/cards", card, nil); err != nil {
		return fmt.Errorf("create card %s: %w", card.Key, err)
	}
	return nil
}

// Find returns all cards matching the predicate. Filtering happens client
// side; the host's card list is small.
func (c *Client) Find(ctx context.Context, match func(Card) bool) ([]Card, error) {
	var all []Card
	if err := c.get(ctx, "/api/cards", &all); err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	var out []Card
	for _, card := range all {
		if match(card) {
			out = append(out, card)
		}
	}
	return out, nil
}

// Delete removes a card by key. Deleting an absent key is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.base+"/api/cards/"+url.PathEscape(key), nil)
	if err != nil {
		return fmt.Errorf("delete card %s: %w", key, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete card %s: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("delete card %s: %w", key, err)
	}
	return nil
}

// #endregion cards

// #region history

// Recent fetches up to n most recent history turns, newest last.
func (c *Client) Recent(ctx context.Context, n int) ([]Turn, error) {
	var turns []Turn
	path := fmt.Sprintf("/api/history?limit=%d", n)
	if err := c.get(ctx, path, &turns); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return turns, nil
}

// #endregion history

// #region transport

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	// 403 means the host has the feature disabled; callers treat this as a
	// session-long condition, not a transient fault.
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotImplemented {
		return ErrStoreUnavailable
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("host returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
}

// #endregion transport
