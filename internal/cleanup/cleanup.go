package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CleanupService struct {
	db             *gorm.DB
	abandonedAfter time.Duration
	log            *zap.Logger
	now            func() time.Time
}

func NewCleanupService(db *gorm.DB, abandonedAfter time.Duration, log *zap.Logger) *CleanupService {
	return &CleanupService{
		db:             db,
		abandonedAfter: abandonedAfter,
		log:            log,
		now:            time.Now,
	}
}

// CleanupAbandonedCarts deletes every cart whose session has not touched any
// item or file since the cutoff. Deleting the files cascades to their cart
// items.
func (c *CleanupService) CleanupAbandonedCarts(ctx context.Context) error {
	if c.abandonedAfter <= 0 {
		return nil
	}
	cutoff := c.now().Add(-c.abandonedAfter)

	query := `
		DELETE FROM uploaded_files
		WHERE session_id IN (
			SELECT session_id
			FROM uploaded_files
			GROUP BY session_id
			HAVING MAX(updated_at) < ?
		)
		AND session_id NOT IN (
			SELECT session_id
			FROM cart_items
			WHERE updated_at >= ?
		)
	`
	result := c.db.WithContext(ctx).Exec(query, cutoff, cutoff)
	if result.Error != nil {
		c.log.Error("failed to cleanup abandoned carts", zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected > 0 {
		c.log.Info("cleaned up abandoned cart files", zap.Int64("count", result.RowsAffected))
	}
	return nil
}

// CleanupOrphanedFiles deletes files that never made it into a cart, such as
// ones left by a failed upload registration.
func (c *CleanupService) CleanupOrphanedFiles(ctx context.Context) error {
	cutoff := c.now().Add(-24 * time.Hour)

	query := `
		DELETE FROM uploaded_files f
		WHERE f.created_at < ?
		AND NOT EXISTS (SELECT 1 FROM cart_items ci WHERE ci.uploaded_file_id = f.id)
	`
	result := c.db.WithContext(ctx).Exec(query, cutoff)
	if result.Error != nil {
		c.log.Error("failed to cleanup orphaned files", zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected > 0 {
		c.log.Info("cleaned up orphaned files", zap.Int64("count", result.RowsAffected))
	}
	return nil
}

func (c *CleanupService) RunFullCleanup(ctx context.Context) error {
	c.log.Info("starting full cleanup")

	if err := c.CleanupAbandonedCarts(ctx); err != nil {
		return err
	}
	if err := c.CleanupOrphanedFiles(ctx); err != nil {
		return err
	}

	c.log.Info("full cleanup completed")
	return nil
}
