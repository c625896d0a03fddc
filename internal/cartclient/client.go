// Package cartclient talks to the cart API on behalf of a browser-side
// session. It is the remote half of cart.Syncer.
package cartclient

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

	"fabrication-service/internal/cart"
	"fabrication-service/internal/dto"
	"fabrication-service/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionCookie = "session_id"

// APIError is a non-2xx answer from the cart API.
type APIError struct {
	StatusCode int
	Body       dto.BaseError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cart api: %d %s: %s", e.StatusCode, e.Body.Code, e.Body.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return NewWithHTTP(baseURL, &http.Client{Timeout: timeout}, log)
}

func NewWithHTTP(baseURL string, hc *http.Client, log *zap.Logger) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc, log: log}
}

var _ cart.Persistence = (*Client)(nil)

func (c *Client) FetchAll(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	var resp dto.CartResponse
	if err := c.do(ctx, sessionID, http.MethodGet, "/api/cart", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]models.CartItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		out = append(out, it.ToModel())
	}
	return out, nil
}

func (c *Client) Patch(ctx context.Context, sessionID string, itemID uuid.UUID, p cart.Patch) error {
	req := dto.UpdateCartItemRequest{ID: itemID, Quantity: p.Quantity, Color: p.Color}
	return c.do(ctx, sessionID, http.MethodPatch, "/api/cart", req, nil)
}

func (c *Client) Delete(ctx context.Context, sessionID string, itemID uuid.UUID) error {
	path := "/api/cart?" + url.Values{"id": {itemID.String()}}.Encode()
	return c.do(ctx, sessionID, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, sessionID, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionID})

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("cart api unreachable", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %v", cart.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr.Body)
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", cart.ErrItemNotFound, apiErr)
		default:
			return apiErr
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
