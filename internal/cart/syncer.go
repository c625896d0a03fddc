package cart

import (
	"context"
	"fmt"

	"fabrication-service/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Persistence is the server side of the cart.
type Persistence interface {
	FetchAll(ctx context.Context, sessionID string) ([]models.CartItem, error)
	Patch(ctx context.Context, sessionID string, itemID uuid.UUID, p Patch) error
	Delete(ctx context.Context, sessionID string, itemID uuid.UUID) error
}

// Syncer applies edits optimistically to the store and then persists them.
// When persisting fails the local edit is not undone field by field; the
// whole cart is re-fetched and replaced instead, and the failure is not
// reported. Only a failed re-fetch surfaces as an error.
type Syncer struct {
	store  *Store
	remote Persistence
	log    *zap.Logger
}

func NewSyncer(store *Store, remote Persistence, log *zap.Logger) *Syncer {
	return &Syncer{store: store, remote: remote, log: log}
}

// Refresh replaces the session's cart with the server's snapshot.
func (s *Syncer) Refresh(ctx context.Context, sessionID string) error {
	items, err := s.remote.FetchAll(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("fetch cart: %w", err)
	}
	s.store.ReplaceAll(sessionID, items)
	return nil
}

func (s *Syncer) UpdateItem(ctx context.Context, sessionID string, itemID uuid.UUID, p Patch) error {
	if _, err := s.store.ApplyOptimisticEdit(sessionID, itemID, p); err != nil {
		return err
	}
	if err := s.remote.Patch(ctx, sessionID, itemID, p); err != nil {
		s.log.Warn("cart update failed, reloading cart",
			zap.String("item_id", itemID.String()), zap.Error(err))
		return s.Refresh(ctx, sessionID)
	}
	return nil
}

func (s *Syncer) RemoveItem(ctx context.Context, sessionID string, itemID uuid.UUID) error {
	if !s.store.Remove(sessionID, itemID) {
		return ErrItemNotFound
	}
	if err := s.remote.Delete(ctx, sessionID, itemID); err != nil {
		s.log.Warn("cart delete failed, reloading cart",
			zap.String("item_id", itemID.String()), zap.Error(err))
		return s.Refresh(ctx, sessionID)
	}
	return nil
}
