package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"fabrication-service/internal/checkout"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(url string, retries uint64) *Client {
	c := NewClient(Config{
		BaseURL:     url + "/",
		APIVersion:  "2024-10",
		AccessToken: "shpat_test",
		Timeout:     2 * time.Second,
		MaxRetries:  retries,
	}, zap.NewNop())
	c.backoff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return c
}

func sampleInput() checkout.DraftOrderInput {
	return checkout.DraftOrderInput{
		LineItems: []checkout.LineItem{
			{Title: "a.stl", UnitPriceCents: 600, Quantity: 2, FileID: uuid.New(),
				Properties: []checkout.Property{{Name: "Material", Value: "PLA"}}},
			{Title: checkout.MulticolorTitle, UnitPriceCents: 200, Quantity: 1},
		},
		Tags:           []string{"3d-print", "multicolor"},
		NoteAttributes: []checkout.NoteAttribute{{Name: "MultiColor", Value: "Yes"}},
		Note:           "thanks",
		IdempotencyKey: "key-1",
	}
}

func TestCreateDraftOrder_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/api/2024-10/draft_orders.json", r.URL.Path)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		assert.Empty(t, r.Header.Get("Idempotency-Key"))

		raw, _ := io.ReadAll(r.Body)
		var body struct {
			DraftOrder draftOrderRequest `json:"draft_order"`
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "3d-print, multicolor", body.DraftOrder.Tags)
		require.Len(t, body.DraftOrder.LineItems, 2)
		assert.Equal(t, "6.00", body.DraftOrder.LineItems[0].Price)
		assert.Equal(t, 2, body.DraftOrder.LineItems[0].Quantity)
		assert.Equal(t, "2.00", body.DraftOrder.LineItems[1].Price)
		assert.Equal(t, "thanks", body.DraftOrder.Note)
		assert.Equal(t, []propertyJSON{
			{Name: "MultiColor", Value: "Yes"},
			{Name: "Checkout Key", Value: "key-1"},
		}, body.DraftOrder.NoteAttributes)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"draft_order":{"id":1001,"name":"#D7","invoice_url":"https://shop/invoices/abc","total_price":"14.00","currency":"USD"}}`))
	}))
	defer srv.Close()

	d, err := newTestClient(srv.URL, 0).CreateDraftOrder(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "1001", d.ID)
	assert.Equal(t, "#D7", d.Name)
	assert.Equal(t, "https://shop/invoices/abc", d.InvoiceURL)
	assert.Equal(t, "14.00", d.TotalPrice)
	assert.Equal(t, "USD", d.Currency)
}

func TestCreateDraftOrder_RejectedIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":{"line_items":["is invalid"]}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 3).CreateDraftOrder(context.Background(), sampleInput())

	var oce *checkout.OrderCreationError
	require.True(t, errors.As(err, &oce), "got %v", err)
	assert.Equal(t, http.StatusUnprocessableEntity, oce.StatusCode)
	assert.Contains(t, oce.Detail, "is invalid")
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreateDraftOrder_StringErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":"Invalid API key or access token"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 0).CreateDraftOrder(context.Background(), sampleInput())

	var oce *checkout.OrderCreationError
	require.True(t, errors.As(err, &oce))
	assert.Equal(t, "Invalid API key or access token", oce.Detail)
}

func TestCreateDraftOrder_DroppedConnectionIsNotResent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 5).CreateDraftOrder(context.Background(), sampleInput())

	assert.ErrorIs(t, err, checkout.ErrNetwork)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreateDraftOrder_LostResponseCreatesOneOrder(t *testing.T) {
	var created atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := created.Add(1)
		if n == 1 {
			time.Sleep(300 * time.Millisecond)
		}
		_, _ = w.Write([]byte(`{"draft_order":{"id":9,"name":"#D9"}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)
	c.http.Timeout = 100 * time.Millisecond

	_, err := c.CreateDraftOrder(context.Background(), sampleInput())

	assert.ErrorIs(t, err, checkout.ErrNetwork)
	assert.Equal(t, int32(1), created.Load())
}

func TestCreateDraftOrder_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := newTestClient(addr, 1).CreateDraftOrder(context.Background(), sampleInput())
	assert.ErrorIs(t, err, checkout.ErrNetwork)
}

func TestNeverSent(t *testing.T) {
	assert.True(t, neverSent(&url.Error{Op: "Post", Err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}}))
	assert.False(t, neverSent(&url.Error{Op: "Post", Err: &net.OpError{Op: "read", Err: errors.New("connection reset")}}))
	assert.False(t, neverSent(errors.New("context deadline exceeded (Client.Timeout exceeded while awaiting headers)")))
}

func TestErrorDetail(t *testing.T) {
	assert.Equal(t, "boom", errorDetail([]byte(`{"errors":"boom"}`)))
	assert.Equal(t, `{"email":["bad"]}`, errorDetail([]byte(`{"errors":{"email":["bad"]}}`)))
	assert.Equal(t, "Bad Gateway", errorDetail([]byte("Bad Gateway\n")))
	assert.Equal(t, "empty response", errorDetail(nil))
}
