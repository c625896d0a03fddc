package service

import (
	"context"

	"fabrication-service/internal/filestatus"
	"fabrication-service/internal/realtime"
	"fabrication-service/internal/repository"

	"go.uber.org/zap"
)

type ingestService struct {
	repo      *repository.Repository
	publisher StatusPublisher
	log       *zap.Logger
}

func NewIngestService(repo *repository.Repository, publisher StatusPublisher, log *zap.Logger) IngestService {
	return &ingestService{repo: repo, publisher: publisher, log: log}
}

func (s *ingestService) Ingest(ctx context.Context, payload []byte) error {
	r, err := filestatus.ParseReport(payload)
	if err != nil {
		s.log.Warn("rejecting malformed status report", zap.Error(err))
		return err
	}
	return s.Apply(ctx, r)
}

// Apply stores the report and pushes the resulting file state to the owning
// session. Reports for unknown files are logged and dropped. The push is
// best effort and its failure does not fail the report.
func (s *ingestService) Apply(ctx context.Context, r filestatus.Report) error {
	f, err := s.repo.Files.GetByID(ctx, r.FileID)
	if err != nil {
		return err
	}
	if f == nil {
		s.log.Warn("status report for unknown file", zap.String("file_id", r.FileID.String()))
		return nil
	}

	prev := f.Status
	if filestatus.Apply(f, r) {
		s.log.Warn("file status regressed",
			zap.String("file_id", f.ID.String()),
			zap.String("from", string(prev)),
			zap.String("to", string(f.Status)),
		)
	}
	if err := s.repo.Files.SaveStatus(ctx, f); err != nil {
		return err
	}

	if s.publisher != nil {
		ev := realtime.Event{
			SessionID: f.SessionID,
			Report: filestatus.Report{
				FileID:       f.ID,
				Status:       f.Status,
				MassGrams:    f.MassGrams,
				Dimensions:   f.Dimensions,
				ErrorMessage: f.ErrorMessage,
			},
		}
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.log.Warn("failed to push status update", zap.String("file_id", f.ID.String()), zap.Error(err))
		}
	}

	s.log.Info("file status updated",
		zap.String("file_id", f.ID.String()),
		zap.String("session_id", f.SessionID),
		zap.String("status", string(f.Status)),
	)
	return nil
}
