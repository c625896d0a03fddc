package service

import (
	"context"
	"strings"

	"fabrication-service/internal/cart"
	"fabrication-service/internal/models"
	"fabrication-service/internal/pricing"
	"fabrication-service/internal/producer"
	"fabrication-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultMaterial = "PLA"
	defaultColor    = "White"
	defaultInfill   = 20
)

type cartService struct {
	repo *repository.Repository
	jobs JobProducer
	log  *zap.Logger
}

func NewCartService(repo *repository.Repository, jobs JobProducer, log *zap.Logger) CartService {
	return &cartService{repo: repo, jobs: jobs, log: log}
}

func (s *cartService) List(ctx context.Context) ([]models.CartItem, error) {
	sid, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.CartItems.ListBySession(ctx, sid)
}

func (s *cartService) UpdateItem(ctx context.Context, id uuid.UUID, p cart.Patch) (*models.CartItem, error) {
	sid, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if p.Quantity != nil {
		fields["quantity"] = *p.Quantity
	}
	if p.Color != nil {
		fields["color"] = strings.TrimSpace(*p.Color)
	}
	if len(fields) > 0 {
		ok, err := s.repo.CartItems.UpdateFields(ctx, sid, id, fields)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrItemNotFound
		}
	}

	it, err := s.repo.CartItems.GetByID(ctx, sid, id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, ErrItemNotFound
	}
	return it, nil
}

func (s *cartService) RemoveItem(ctx context.Context, id uuid.UUID) error {
	sid, err := requireSession(ctx)
	if err != nil {
		return err
	}
	ok, err := s.repo.CartItems.DeleteByID(ctx, sid, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrItemNotFound
	}
	return nil
}

func (s *cartService) Summary(ctx context.Context, opts models.OrderOptions) (pricing.Summary, error) {
	items, err := s.List(ctx)
	if err != nil {
		return pricing.Summary{}, err
	}
	return pricing.Summarize(items, opts), nil
}

// RegisterUpload records a stored file as pending, puts it in the cart and
// asks the worker to process it. The job is published after commit; if that
// fails the file stays pending and the error is only logged.
func (s *cartService) RegisterUpload(ctx context.Context, in UploadInput) (*models.CartItem, error) {
	sid, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	item := &models.CartItem{
		SessionID: sid,
		Quantity:  1,
		Material:  orDefault(in.Material, defaultMaterial),
		Color:     orDefault(in.Color, defaultColor),
		Infill:    defaultInfill,
	}
	if in.Infill != nil {
		item.Infill = *in.Infill
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		file := &models.UploadedFile{
			SessionID:  sid,
			FileName:   in.FileName,
			FileSize:   in.FileSize,
			StorageURL: in.StorageURL,
			Status:     models.FileStatusPending,
		}
		if err := tx.Files.Create(ctx, file); err != nil {
			return err
		}
		item.UploadedFileID = file.ID
		item.File = *file
		return tx.CartItems.Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	if s.jobs != nil {
		job := producer.ProcessingJob{
			FileID:     item.File.ID,
			SessionID:  sid,
			FileName:   item.File.FileName,
			StorageURL: item.File.StorageURL,
		}
		if err := s.jobs.PublishProcessingJob(ctx, job); err != nil {
			s.log.Error("failed to publish processing job",
				zap.String("file_id", item.File.ID.String()), zap.Error(err))
		}
	}

	s.log.Info("upload registered",
		zap.String("session_id", sid),
		zap.String("file_id", item.File.ID.String()),
		zap.String("file_name", in.FileName),
	)
	return item, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
