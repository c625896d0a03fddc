// Package cart keeps a client-side view of a session's cart and reconciles it
// with the server.
package cart

import (
	"errors"
	"sync"

	"fabrication-service/internal/filestatus"
	"fabrication-service/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrNetwork         = errors.New("cart service unreachable")
)

// Patch is a partial edit of a cart line. Nil fields are left alone.
type Patch struct {
	Quantity *int    `json:"quantity,omitempty"`
	Color    *string `json:"color,omitempty"`
}

func (p Patch) Validate() error {
	if p.Quantity != nil && *p.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

func (p Patch) apply(it *models.CartItem) {
	if p.Quantity != nil {
		it.Quantity = *p.Quantity
	}
	if p.Color != nil {
		it.Color = *p.Color
	}
}

type sessionCart struct {
	order  []uuid.UUID
	items  map[uuid.UUID]*models.CartItem
	byFile map[uuid.UUID]uuid.UUID
}

func newSessionCart() *sessionCart {
	return &sessionCart{
		items:  make(map[uuid.UUID]*models.CartItem),
		byFile: make(map[uuid.UUID]uuid.UUID),
	}
}

// Store holds carts per session. Every mutation goes through one mutex, so
// user edits, status merges and snapshot replaces never interleave.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*sessionCart
	log      *zap.Logger
}

func NewStore(log *zap.Logger) *Store {
	return &Store{sessions: make(map[string]*sessionCart), log: log}
}

// List returns a copy of the session's items in the order of the last
// snapshot. Unknown sessions have an empty cart.
func (s *Store) List(sessionID string) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sessions[sessionID]
	if !ok {
		return []models.CartItem{}
	}
	out := make([]models.CartItem, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.items[id])
	}
	return out
}

// ReplaceAll swaps in an authoritative snapshot.
func (s *Store) ReplaceAll(sessionID string, items []models.CartItem) {
	c := newSessionCart()
	for i := range items {
		it := items[i]
		if _, dup := c.items[it.ID]; dup {
			continue
		}
		c.order = append(c.order, it.ID)
		c.items[it.ID] = &it
		c.byFile[it.File.ID] = it.ID
	}

	s.mu.Lock()
	s.sessions[sessionID] = c
	s.mu.Unlock()
}

// ApplyOptimisticEdit mutates the local item right away and returns the
// edited copy.
func (s *Store) ApplyOptimisticEdit(sessionID string, itemID uuid.UUID, p Patch) (models.CartItem, error) {
	if err := p.Validate(); err != nil {
		return models.CartItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sessions[sessionID]
	if !ok {
		return models.CartItem{}, ErrItemNotFound
	}
	it, ok := c.items[itemID]
	if !ok {
		return models.CartItem{}, ErrItemNotFound
	}
	p.apply(it)
	return *it, nil
}

func (s *Store) Remove(sessionID string, itemID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	it, ok := c.items[itemID]
	if !ok {
		return false
	}
	delete(c.items, itemID)
	delete(c.byFile, it.File.ID)
	for i, id := range c.order {
		if id == itemID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// MergeStatus applies a status report to the file view of the item that
// references fileID. Quantity, color and the other user fields are untouched.
// Returns false when no item in the session references the file.
func (s *Store) MergeStatus(sessionID string, fileID uuid.UUID, r filestatus.Report) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	itemID, ok := c.byFile[fileID]
	if !ok {
		return false
	}
	it := c.items[itemID]
	prev := it.File.Status
	if filestatus.Apply(&it.File, r) {
		s.log.Warn("file status regressed",
			zap.String("file_id", fileID.String()),
			zap.String("from", string(prev)),
			zap.String("to", string(r.Status)),
		)
	}
	return true
}
