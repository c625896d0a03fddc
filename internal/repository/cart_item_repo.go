package repository

import (
	"context"
	"errors"

	"fabrication-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartItemRepo interface {
	Create(ctx context.Context, it *models.CartItem) error
	ListBySession(ctx context.Context, sessionID string) ([]models.CartItem, error)
	GetByID(ctx context.Context, sessionID string, id uuid.UUID) (*models.CartItem, error)
	UpdateFields(ctx context.Context, sessionID string, id uuid.UUID, fields map[string]any) (bool, error)
	DeleteByID(ctx context.Context, sessionID string, id uuid.UUID) (bool, error)
}

type cartItemRepo struct{ db *gorm.DB }

func NewCartItemRepo(db *gorm.DB) CartItemRepo { return &cartItemRepo{db: db} }

func (r *cartItemRepo) Create(ctx context.Context, it *models.CartItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(it).Error
}

// ListBySession returns the session's items with their files, oldest first.
func (r *cartItemRepo) ListBySession(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("File").
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *cartItemRepo) GetByID(ctx context.Context, sessionID string, id uuid.UUID) (*models.CartItem, error) {
	var it models.CartItem
	err := r.db.WithContext(ctx).Preload("File").
		First(&it, "id = ? AND session_id = ?", id, sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &it, err
}

func (r *cartItemRepo) UpdateFields(ctx context.Context, sessionID string, id uuid.UUID, fields map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND session_id = ?", id, sessionID).
		Updates(fields)
	return res.RowsAffected > 0, res.Error
}

// DeleteByID removes the cart line and the file it owns.
func (r *cartItemRepo) DeleteByID(ctx context.Context, sessionID string, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it models.CartItem
		err := tx.Clauses(clause.Returning{}).
			Where("id = ? AND session_id = ?", id, sessionID).
			Delete(&it).Error
		if err != nil {
			return err
		}
		if it.UploadedFileID == uuid.Nil {
			return nil
		}
		deleted = true
		return tx.Where("id = ?", it.UploadedFileID).Delete(&models.UploadedFile{}).Error
	})
	return deleted, err
}
