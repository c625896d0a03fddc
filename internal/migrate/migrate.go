package migrate

import (
	"context"

	"fabrication-service/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto for gen_random_uuid
	CreateChecks           bool
	CreateIndexes          bool
	CreateFKsViaSQL        bool
	CreateUpdatedAtTrigger bool
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateFKsViaSQL:        true,
		CreateUpdatedAtTrigger: true,
	}
}

type step struct {
	name string
	sql  string
}

func MigrateFabricationDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("starting fabrication database migration")
	db = db.WithContext(ctx)

	if opt.CreateExtensions {
		if err := run(db, log, step{"extension pgcrypto", `CREATE EXTENSION IF NOT EXISTS pgcrypto`}); err != nil {
			return err
		}
	}

	log.Info("creating tables uploaded_files and cart_items")
	if err := db.AutoMigrate(&models.UploadedFile{}, &models.CartItem{}); err != nil {
		log.Error("failed to create tables", zap.Error(err))
		return err
	}

	if opt.CreateUpdatedAtTrigger {
		if err := run(db, log, step{"updated_at triggers", `
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_uploaded_files_updated ON uploaded_files;
CREATE TRIGGER trg_uploaded_files_updated
BEFORE UPDATE ON uploaded_files
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_cart_items_updated ON cart_items;
CREATE TRIGGER trg_cart_items_updated
BEFORE UPDATE ON cart_items
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`}); err != nil {
			return err
		}
	}

	if opt.CreateChecks {
		checks := []step{
			{"check uploaded_files.status", `
ALTER TABLE uploaded_files
  DROP CONSTRAINT IF EXISTS chk_uploaded_files_status_allowed;
ALTER TABLE uploaded_files
  ADD CONSTRAINT chk_uploaded_files_status_allowed
  CHECK (status IN ('pending','processing','success','error'));
`},
			{"check uploaded_files.mass_grams", `
ALTER TABLE uploaded_files
  DROP CONSTRAINT IF EXISTS chk_uploaded_files_mass_non_negative;
ALTER TABLE uploaded_files
  ADD CONSTRAINT chk_uploaded_files_mass_non_negative
  CHECK (mass_grams IS NULL OR mass_grams >= 0);
`},
			{"check cart_items.quantity", `
ALTER TABLE cart_items
  DROP CONSTRAINT IF EXISTS chk_cart_items_quantity_gt_zero;
ALTER TABLE cart_items
  ADD CONSTRAINT chk_cart_items_quantity_gt_zero
  CHECK (quantity > 0);
`},
			{"check cart_items.infill", `
ALTER TABLE cart_items
  DROP CONSTRAINT IF EXISTS chk_cart_items_infill_range;
ALTER TABLE cart_items
  ADD CONSTRAINT chk_cart_items_infill_range
  CHECK (infill BETWEEN 0 AND 100);
`},
			{"check cart_items.unit_price_cents", `
ALTER TABLE cart_items
  DROP CONSTRAINT IF EXISTS chk_cart_items_unit_price_non_negative;
ALTER TABLE cart_items
  ADD CONSTRAINT chk_cart_items_unit_price_non_negative
  CHECK (unit_price_cents IS NULL OR unit_price_cents >= 0);
`},
		}
		for _, s := range checks {
			if err := run(db, log, s); err != nil {
				return err
			}
		}
	}

	if opt.CreateIndexes {
		indexes := []step{
			// one cart line per file, in case the tag did not create it
			{"unique ux_cart_items_uploaded_file", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_cart_items_uploaded_file
ON cart_items (uploaded_file_id);
`},
			{"index ix_cart_items_session_created", `
CREATE INDEX IF NOT EXISTS ix_cart_items_session_created
ON cart_items (session_id, created_at ASC);
`},
			{"index ix_cart_items_updated", `
CREATE INDEX IF NOT EXISTS ix_cart_items_updated
ON cart_items (updated_at);
`},
		}
		for _, s := range indexes {
			if err := run(db, log, s); err != nil {
				return err
			}
		}
	}

	if opt.CreateFKsViaSQL {
		if err := run(db, log, step{"fk cart_items.uploaded_file_id", `
ALTER TABLE cart_items
  DROP CONSTRAINT IF EXISTS fk_cart_items_file,
  ADD CONSTRAINT fk_cart_items_file
    FOREIGN KEY (uploaded_file_id) REFERENCES uploaded_files(id) ON DELETE CASCADE;
`}); err != nil {
			return err
		}
	}

	log.Info("fabrication database migration completed")
	return nil
}

func run(db *gorm.DB, log *zap.Logger, s step) error {
	if err := db.Exec(s.sql).Error; err != nil {
		log.Error("migration step failed", zap.String("step", s.name), zap.Error(err))
		return err
	}
	log.Info("migration step applied", zap.String("step", s.name))
	return nil
}
