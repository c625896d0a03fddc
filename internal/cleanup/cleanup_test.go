package cleanup

import (
	"context"
	"testing"
	"time"

	"fabrication-service/internal/migrate"
	"fabrication-service/internal/models"
	"fabrication-service/internal/repository"
	"fabrication-service/internal/testutil"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateFabricationDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCart(t *testing.T, repo *repository.Repository, sessionID string) *models.CartItem {
	t.Helper()
	ctx := context.Background()
	f := &models.UploadedFile{SessionID: sessionID, FileName: "a.stl", StorageURL: "https://x/a.stl", Status: models.FileStatusPending}
	if err := repo.Files.Create(ctx, f); err != nil {
		t.Fatalf("create file: %v", err)
	}
	it := &models.CartItem{SessionID: sessionID, UploadedFileID: f.ID, Quantity: 1, Material: "PLA", Color: "White", Infill: 20}
	if err := repo.CartItems.Create(ctx, it); err != nil {
		t.Fatalf("create item: %v", err)
	}
	return it
}

func TestCleanupAbandonedCarts(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	seedCart(t, repo, "old-session")

	svc := NewCleanupService(db, 24*time.Hour, zap.NewNop())
	// Nothing is old yet.
	if err := svc.CleanupAbandonedCarts(ctx); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	items, _ := repo.CartItems.ListBySession(ctx, "old-session")
	if len(items) != 1 {
		t.Fatalf("fresh cart must survive, got %d items", len(items))
	}

	svc.now = func() time.Time { return time.Now().Add(72 * time.Hour) }
	if err := svc.CleanupAbandonedCarts(ctx); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	items, _ = repo.CartItems.ListBySession(ctx, "old-session")
	if len(items) != 0 {
		t.Fatalf("abandoned cart must be removed, got %d items", len(items))
	}
}

func TestCleanupOrphanedFiles(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	orphan := &models.UploadedFile{SessionID: "s", FileName: "o.stl", StorageURL: "https://x/o.stl", Status: models.FileStatusPending}
	if err := repo.Files.Create(ctx, orphan); err != nil {
		t.Fatalf("create: %v", err)
	}
	kept := seedCart(t, repo, "s")

	svc := NewCleanupService(db, 0, zap.NewNop())
	svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	if err := svc.RunFullCleanup(ctx); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if f, _ := repo.Files.GetByID(ctx, orphan.ID); f != nil {
		t.Fatal("orphaned file should be deleted")
	}
	if f, _ := repo.Files.GetByID(ctx, kept.UploadedFileID); f == nil {
		t.Fatal("file in a cart must be kept")
	}
}
