package repository

import (
	"context"

	"gorm.io/gorm"
)

type Repository struct {
	DB        *gorm.DB
	Files     UploadedFileRepo
	CartItems CartItemRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:        db,
		Files:     NewUploadedFileRepo(db),
		CartItems: NewCartItemRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// WithTx runs fn against repositories bound to a single transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}
