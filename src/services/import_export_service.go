// backend/src/services/import_export_service.go
package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/username/expensetracker/backend/src/events"
	"github.com/username/expensetracker/backend/src/exporter"
	"github.com/username/expensetracker/backend/src/importer"
	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/models"
	"github.com/username/expensetracker/backend/src/repository"
)

type importExportServiceImpl struct {
	repo      repository.PurchaseRepository
	importer  *importer.Importer
	cache     cacheInvalidator
	publisher events.Publisher
	now       func() time.Time
}

func NewImportExportService(
	repo repository.PurchaseRepository,
	imp *importer.Importer,
	cache cacheInvalidator,
	publisher events.Publisher,
) ImportExportService {
	if imp == nil {
		imp = importer.New(nil, nil)
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &importExportServiceImpl{
		repo:      repo,
		importer:  imp,
		cache:     cache,
		publisher: publisher,
		now:       time.Now,
	}
}

// Import stores every valid record of r for userID. Any user id carried by the
// file is ignored.
func (s *importExportServiceImpl) Import(ctx context.Context, userID int64, format importer.SourceFormat, r io.Reader) (models.ImportOutcome, error) {
	log := logger.FromContext(ctx)
	log.Info("Import started", "userID", userID, "format", format)

	persist := func(ctx context.Context, p models.Purchase) (models.Purchase, error) {
		return s.repo.Insert(ctx, userID, p)
	}
	outcome, err := s.importer.Import(ctx, format, r, persist)
	if err != nil {
		log.Warn("Import rejected", "userID", userID, "format", format, "error", err)
		return models.ImportOutcome{}, err
	}

	if outcome.Summary.Imported > 0 && s.cache != nil {
		s.cache.InvalidateUserCache(userID)
	}

	events.PublishBestEffort(ctx, s.publisher, events.Event{
		Action:    events.ActionImported,
		UserID:    userID,
		Format:    string(format),
		Records:   outcome.Summary.Imported,
		Failed:    outcome.Summary.Failed,
		Timestamp: s.now().UTC(),
	})

	log.Info("Import finished", "userID", userID, "format", format,
		"total", outcome.Summary.TotalRows, "imported", outcome.Summary.Imported, "failed", outcome.Summary.Failed)
	return outcome, nil
}

func (s *importExportServiceImpl) Export(ctx context.Context, userID int64, format importer.SourceFormat, filter models.PurchaseFilter) (*ExportResult, error) {
	records, err := s.repo.Query(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("error loading purchases for export: %w", err)
	}
	if len(records) == 0 {
		return nil, exporter.ErrNothingToExport
	}

	now := s.now()
	exp := exporter.New(s.importer.Mapping(importer.FormatCSV), s.now)
	data, err := exp.Export(format, records, userID)
	if err != nil {
		return nil, err
	}

	events.PublishBestEffort(ctx, s.publisher, events.Event{
		Action:    events.ActionExported,
		UserID:    userID,
		Format:    string(format),
		Records:   len(records),
		Timestamp: now.UTC(),
	})
	logger.FromContext(ctx).Info("Export finished", "userID", userID, "format", format, "records", len(records))

	return &ExportResult{
		Filename:    exporter.Filename(format, now),
		ContentType: exporter.ContentType(format),
		Data:        data,
		Count:       len(records),
	}, nil
}
