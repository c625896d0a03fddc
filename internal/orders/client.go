// Package orders is a client for the storefront's draft-order REST API.
package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"fabrication-service/internal/checkout"
	"fabrication-service/internal/pricing"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

type Config struct {
	BaseURL     string
	APIVersion  string
	AccessToken string
	Timeout     time.Duration
	// MaxRetries bounds reconnect attempts when the order service cannot be
	// dialed. A request that was sent is never repeated.
	MaxRetries uint64
}

const checkoutKeyAttribute = "Checkout Key"

type Client struct {
	cfg     Config
	http    *http.Client
	log     *zap.Logger
	backoff func() backoff.BackOff
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout}, log)
}

func NewClientWithHTTP(cfg Config, hc *http.Client, log *zap.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:  cfg,
		http: hc,
		log:  log,
		backoff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

type propertyJSON struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type lineItemJSON struct {
	Title      string         `json:"title"`
	Price      string         `json:"price"`
	Quantity   int            `json:"quantity"`
	Properties []propertyJSON `json:"properties,omitempty"`
}

type draftOrderRequest struct {
	LineItems      []lineItemJSON `json:"line_items"`
	Note           string         `json:"note,omitempty"`
	Tags           string         `json:"tags"`
	NoteAttributes []propertyJSON `json:"note_attributes"`
	Email          string         `json:"email,omitempty"`
}

type draftOrderResponse struct {
	ID         json.Number `json:"id"`
	Name       string      `json:"name"`
	InvoiceURL string      `json:"invoice_url"`
	TotalPrice string      `json:"total_price"`
	Currency   string      `json:"currency"`
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/admin/api/%s/draft_orders.json", c.cfg.BaseURL, c.cfg.APIVersion)
}

// CreateDraftOrder submits one draft order. The POST is sent at most once:
// only failures to connect, where nothing reached the order service, are
// retried. Any other transport failure surfaces as checkout.ErrNetwork and
// any non-2xx answer becomes an OrderCreationError.
func (c *Client) CreateDraftOrder(ctx context.Context, in checkout.DraftOrderInput) (*checkout.DraftOrder, error) {
	body, err := json.Marshal(map[string]draftOrderRequest{"draft_order": toRequest(in)})
	if err != nil {
		return nil, fmt.Errorf("encode draft order: %w", err)
	}

	var out *checkout.DraftOrder
	op := func() error {
		res, err := c.post(ctx, body)
		if err != nil {
			if ctx.Err() != nil || !neverSent(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		out = res
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.backoff(), c.cfg.MaxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		c.log.Warn("order service unreachable, retrying connect",
			zap.Error(err), zap.Duration("wait", wait), zap.String("idempotency_key", in.IdempotencyKey))
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		var oce *checkout.OrderCreationError
		if errors.As(err, &oce) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", checkout.ErrNetwork, err)
	}
	return out, nil
}

// neverSent reports whether err happened while dialing, before any byte of
// the request was written.
func neverSent(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func (c *Client) post(ctx context.Context, body []byte) (*checkout.DraftOrder, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.cfg.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &checkout.OrderCreationError{StatusCode: resp.StatusCode, Detail: errorDetail(raw)}
	}

	var env struct {
		DraftOrder draftOrderResponse `json:"draft_order"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &checkout.OrderCreationError{StatusCode: resp.StatusCode, Detail: "invalid response: " + err.Error()}
	}
	d := env.DraftOrder
	return &checkout.DraftOrder{
		ID:         d.ID.String(),
		Name:       d.Name,
		InvoiceURL: d.InvoiceURL,
		TotalPrice: d.TotalPrice,
		Currency:   d.Currency,
	}, nil
}

// errorDetail pulls the "errors" field out of an API error body, which is
// either a string or an object of field errors. Falls back to the raw body.
func errorDetail(raw []byte) string {
	var env struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Errors) > 0 {
		var s string
		if json.Unmarshal(env.Errors, &s) == nil {
			return s
		}
		return string(env.Errors)
	}
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return "empty response"
	}
	return s
}

func toRequest(in checkout.DraftOrderInput) draftOrderRequest {
	req := draftOrderRequest{
		LineItems:      make([]lineItemJSON, 0, len(in.LineItems)),
		Note:           in.Note,
		Tags:           strings.Join(in.Tags, ", "),
		NoteAttributes: make([]propertyJSON, 0, len(in.NoteAttributes)),
		Email:          in.Email,
	}
	for _, li := range in.LineItems {
		props := make([]propertyJSON, 0, len(li.Properties))
		for _, p := range li.Properties {
			props = append(props, propertyJSON{Name: p.Name, Value: p.Value})
		}
		req.LineItems = append(req.LineItems, lineItemJSON{
			Title:      li.Title,
			Price:      pricing.FormatCents(li.UnitPriceCents),
			Quantity:   li.Quantity,
			Properties: props,
		})
	}
	for _, a := range in.NoteAttributes {
		req.NoteAttributes = append(req.NoteAttributes, propertyJSON{Name: a.Name, Value: a.Value})
	}
	// The draft-order API has no idempotency support; the key is recorded on
	// the order so a duplicate can be matched to its checkout by hand.
	if in.IdempotencyKey != "" {
		req.NoteAttributes = append(req.NoteAttributes, propertyJSON{Name: checkoutKeyAttribute, Value: in.IdempotencyKey})
	}
	return req
}
