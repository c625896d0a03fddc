package repository_test

import (
	"context"
	"testing"

	"fabrication-service/internal/migrate"
	"fabrication-service/internal/models"
	"fabrication-service/internal/repository"
	"fabrication-service/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func setupDB(t *testing.T) *repository.Repository {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateFabricationDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repository.New(db)
}

func createItem(t *testing.T, repo *repository.Repository, sessionID, name string) *models.CartItem {
	t.Helper()
	ctx := context.Background()
	var it *models.CartItem
	err := repo.WithTx(ctx, func(tx *repository.Repository) error {
		f := &models.UploadedFile{SessionID: sessionID, FileName: name, FileSize: 10, StorageURL: "https://x/" + name, Status: models.FileStatusPending}
		if err := tx.Files.Create(ctx, f); err != nil {
			return err
		}
		it = &models.CartItem{SessionID: sessionID, UploadedFileID: f.ID, Quantity: 1, Material: "PLA", Color: "White", Infill: 20}
		return tx.CartItems.Create(ctx, it)
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return it
}

func TestCartItems_ListBySessionPreloadsFile(t *testing.T) {
	repo := setupDB(t)
	ctx := context.Background()

	a := createItem(t, repo, "s1", "a.stl")
	b := createItem(t, repo, "s1", "b.stl")
	createItem(t, repo, "s2", "c.stl")

	items, err := repo.CartItems.ListBySession(ctx, "s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != a.ID || items[1].ID != b.ID {
		t.Fatalf("unexpected order: %s, %s", items[0].ID, items[1].ID)
	}
	if items[0].File.FileName != "a.stl" || items[0].File.Status != models.FileStatusPending {
		t.Fatalf("file not preloaded: %+v", items[0].File)
	}
}

func TestCartItems_UpdateScopedToSession(t *testing.T) {
	repo := setupDB(t)
	ctx := context.Background()
	it := createItem(t, repo, "s1", "a.stl")

	ok, err := repo.CartItems.UpdateFields(ctx, "s2", it.ID, map[string]any{"quantity": 5})
	if err != nil || ok {
		t.Fatalf("foreign session must not update: ok=%v err=%v", ok, err)
	}

	ok, err = repo.CartItems.UpdateFields(ctx, "s1", it.ID, map[string]any{"quantity": 5, "color": "Red"})
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}
	got, err := repo.CartItems.GetByID(ctx, "s1", it.ID)
	if err != nil || got == nil {
		t.Fatalf("get: %v", err)
	}
	if got.Quantity != 5 || got.Color != "Red" {
		t.Fatalf("unexpected item %+v", got)
	}
}

func TestCartItems_QuantityCheck(t *testing.T) {
	repo := setupDB(t)
	it := createItem(t, repo, "s1", "a.stl")

	if _, err := repo.CartItems.UpdateFields(context.Background(), "s1", it.ID, map[string]any{"quantity": 0}); err == nil {
		t.Fatal("expected check constraint violation for quantity 0")
	}
}

func TestCartItems_DeleteRemovesFile(t *testing.T) {
	repo := setupDB(t)
	ctx := context.Background()
	it := createItem(t, repo, "s1", "a.stl")

	ok, err := repo.CartItems.DeleteByID(ctx, "s2", it.ID)
	if err != nil || ok {
		t.Fatalf("foreign delete: ok=%v err=%v", ok, err)
	}

	ok, err = repo.CartItems.DeleteByID(ctx, "s1", it.ID)
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if f, _ := repo.Files.GetByID(ctx, it.UploadedFileID); f != nil {
		t.Fatal("owned file should be deleted with the item")
	}
	if got, _ := repo.CartItems.GetByID(ctx, "s1", it.ID); got != nil {
		t.Fatal("item should be gone")
	}
}

func TestFiles_SaveStatus(t *testing.T) {
	repo := setupDB(t)
	ctx := context.Background()
	it := createItem(t, repo, "s1", "a.stl")

	f, err := repo.Files.GetByID(ctx, it.UploadedFileID)
	if err != nil || f == nil {
		t.Fatalf("get: %v", err)
	}
	mass := 42.0
	f.Status = models.FileStatusSuccess
	f.MassGrams = &mass
	f.Dimensions = &models.Dimensions{X: 1, Y: 2, Z: 3}
	f.FileName = "renamed.stl" // not a status column, must not be written
	if err := repo.Files.SaveStatus(ctx, f); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, _ := repo.Files.GetByID(ctx, f.ID)
	if got.Status != models.FileStatusSuccess || got.MassGrams == nil || *got.MassGrams != 42 {
		t.Fatalf("status not saved: %+v", got)
	}
	if got.Dimensions == nil || got.Dimensions.Z != 3 {
		t.Fatalf("dimensions not saved: %+v", got.Dimensions)
	}
	if got.FileName != "a.stl" {
		t.Fatalf("non-status column was written: %q", got.FileName)
	}

	// moving to error clears measurements
	msg := "bad mesh"
	got.Status, got.MassGrams, got.Dimensions, got.ErrorMessage = models.FileStatusError, nil, nil, &msg
	if err := repo.Files.SaveStatus(ctx, got); err != nil {
		t.Fatalf("save: %v", err)
	}
	again, _ := repo.Files.GetByID(ctx, f.ID)
	if again.MassGrams != nil || again.Dimensions != nil || again.ErrorMessage == nil {
		t.Fatalf("expected cleared measurements: %+v", again)
	}
}

func TestFiles_GetByIDMissing(t *testing.T) {
	repo := setupDB(t)
	f, err := repo.Files.GetByID(context.Background(), uuid.New())
	if err != nil || f != nil {
		t.Fatalf("expected nil,nil got %v,%v", f, err)
	}
}
