package repository

import (
	"context"
	"errors"

	"fabrication-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UploadedFileRepo interface {
	Create(ctx context.Context, f *models.UploadedFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.UploadedFile, error)
	// SaveStatus persists the status-owned columns only.
	SaveStatus(ctx context.Context, f *models.UploadedFile) error
}

type uploadedFileRepo struct{ db *gorm.DB }

func NewUploadedFileRepo(db *gorm.DB) UploadedFileRepo { return &uploadedFileRepo{db: db} }

func (r *uploadedFileRepo) Create(ctx context.Context, f *models.UploadedFile) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *uploadedFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.UploadedFile, error) {
	var f models.UploadedFile
	err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &f, err
}

func (r *uploadedFileRepo) SaveStatus(ctx context.Context, f *models.UploadedFile) error {
	return r.db.WithContext(ctx).Model(f).
		Select("status", "mass_grams", "dimensions", "error_message").
		Updates(f).Error
}
