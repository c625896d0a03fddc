package service_test

import (
	"context"
	"time"

	"fabrication-service/internal/checkout"
	"fabrication-service/internal/models"
	"fabrication-service/internal/producer"
	"fabrication-service/internal/realtime"

	"github.com/google/uuid"
)

type mockFiles struct {
	CreateFunc     func(ctx context.Context, f *models.UploadedFile) error
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*models.UploadedFile, error)
	SaveStatusFunc func(ctx context.Context, f *models.UploadedFile) error
}

func (m *mockFiles) Create(ctx context.Context, f *models.UploadedFile) error {
	return m.CreateFunc(ctx, f)
}

func (m *mockFiles) GetByID(ctx context.Context, id uuid.UUID) (*models.UploadedFile, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockFiles) SaveStatus(ctx context.Context, f *models.UploadedFile) error {
	return m.SaveStatusFunc(ctx, f)
}

type mockCartItems struct {
	CreateFunc        func(ctx context.Context, it *models.CartItem) error
	ListBySessionFunc func(ctx context.Context, sessionID string) ([]models.CartItem, error)
	GetByIDFunc       func(ctx context.Context, sessionID string, id uuid.UUID) (*models.CartItem, error)
	UpdateFieldsFunc  func(ctx context.Context, sessionID string, id uuid.UUID, fields map[string]any) (bool, error)
	DeleteByIDFunc    func(ctx context.Context, sessionID string, id uuid.UUID) (bool, error)
}

func (m *mockCartItems) Create(ctx context.Context, it *models.CartItem) error {
	return m.CreateFunc(ctx, it)
}

func (m *mockCartItems) ListBySession(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	return m.ListBySessionFunc(ctx, sessionID)
}

func (m *mockCartItems) GetByID(ctx context.Context, sessionID string, id uuid.UUID) (*models.CartItem, error) {
	return m.GetByIDFunc(ctx, sessionID, id)
}

func (m *mockCartItems) UpdateFields(ctx context.Context, sessionID string, id uuid.UUID, fields map[string]any) (bool, error) {
	return m.UpdateFieldsFunc(ctx, sessionID, id, fields)
}

func (m *mockCartItems) DeleteByID(ctx context.Context, sessionID string, id uuid.UUID) (bool, error) {
	return m.DeleteByIDFunc(ctx, sessionID, id)
}

type mockOrders struct {
	CreateDraftOrderFunc func(ctx context.Context, in checkout.DraftOrderInput) (*checkout.DraftOrder, error)
}

func (m *mockOrders) CreateDraftOrder(ctx context.Context, in checkout.DraftOrderInput) (*checkout.DraftOrder, error) {
	return m.CreateDraftOrderFunc(ctx, in)
}

type mockCache struct {
	GetCheckoutResultFunc   func(ctx context.Context, sessionID, idemKey string) ([]byte, error)
	SetCheckoutResultFunc   func(ctx context.Context, sessionID, idemKey string, data []byte, ttl time.Duration) error
	AcquireCheckoutLockFunc func(ctx context.Context, sessionID string, ttl time.Duration) (func(), bool, error)
}

func (m *mockCache) GetCheckoutResult(ctx context.Context, sessionID, idemKey string) ([]byte, error) {
	return m.GetCheckoutResultFunc(ctx, sessionID, idemKey)
}

func (m *mockCache) SetCheckoutResult(ctx context.Context, sessionID, idemKey string, data []byte, ttl time.Duration) error {
	return m.SetCheckoutResultFunc(ctx, sessionID, idemKey, data, ttl)
}

func (m *mockCache) AcquireCheckoutLock(ctx context.Context, sessionID string, ttl time.Duration) (func(), bool, error) {
	return m.AcquireCheckoutLockFunc(ctx, sessionID, ttl)
}

type mockPublisher struct {
	PublishFunc func(ctx context.Context, ev realtime.Event) error
}

func (m *mockPublisher) Publish(ctx context.Context, ev realtime.Event) error {
	return m.PublishFunc(ctx, ev)
}

type mockEmail struct {
	SendEmailFunc func(ctx context.Context, key string, msg producer.EmailMessage) error
}

func (m *mockEmail) SendEmail(ctx context.Context, key string, msg producer.EmailMessage) error {
	return m.SendEmailFunc(ctx, key, msg)
}
