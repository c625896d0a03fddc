package service

import (
	"context"
	"time"

	"fabrication-service/internal/cart"
	"fabrication-service/internal/checkout"
	"fabrication-service/internal/filestatus"
	"fabrication-service/internal/models"
	"fabrication-service/internal/pricing"
	"fabrication-service/internal/producer"
	"fabrication-service/internal/realtime"

	"github.com/google/uuid"
)

type UploadInput struct {
	FileName   string
	FileSize   int64
	StorageURL string
	Material   string
	Color      string
	Infill     *int
}

type CheckoutInput struct {
	Options models.OrderOptions
	Email   string
	// IdempotencyKey is optional. When empty a fresh key is generated, so
	// only callers that resend their key get replay protection.
	IdempotencyKey string
}

type CheckoutResult struct {
	Order          checkout.DraftOrder `json:"order"`
	IdempotencyKey string              `json:"idempotencyKey"`
	Replayed       bool                `json:"-"`
}

type CartService interface {
	List(ctx context.Context) ([]models.CartItem, error)
	UpdateItem(ctx context.Context, id uuid.UUID, p cart.Patch) (*models.CartItem, error)
	RemoveItem(ctx context.Context, id uuid.UUID) error
	Summary(ctx context.Context, opts models.OrderOptions) (pricing.Summary, error)
	RegisterUpload(ctx context.Context, in UploadInput) (*models.CartItem, error)
}

type CheckoutService interface {
	Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error)
}

type IngestService interface {
	// Ingest parses a raw worker report and applies it.
	Ingest(ctx context.Context, payload []byte) error
	Apply(ctx context.Context, r filestatus.Report) error
}

type StatusPublisher interface {
	Publish(ctx context.Context, ev realtime.Event) error
}

type CheckoutCache interface {
	GetCheckoutResult(ctx context.Context, sessionID, idemKey string) ([]byte, error)
	SetCheckoutResult(ctx context.Context, sessionID, idemKey string, data []byte, ttl time.Duration) error
	AcquireCheckoutLock(ctx context.Context, sessionID string, ttl time.Duration) (release func(), ok bool, err error)
}

type JobProducer interface {
	PublishProcessingJob(ctx context.Context, job producer.ProcessingJob) error
}

type EmailProducer interface {
	SendEmail(ctx context.Context, key string, msg producer.EmailMessage) error
}
