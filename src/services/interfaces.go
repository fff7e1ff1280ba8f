// backend/src/services/interfaces.go
package services

import (
	"context"
	"errors"
	"io"

	"github.com/username/expensetracker/backend/src/importer"
	"github.com/username/expensetracker/backend/src/models"
)

// ErrInvalidInput marks a request the caller must correct.
var ErrInvalidInput = errors.New("invalid input")

// PurchaseInput is the body of a create or update request. Price may be a JSON
// number or a string.
type PurchaseInput struct {
	ItemName     *string `json:"item_name"`
	Price        any     `json:"price"`
	Category     *string `json:"category"`
	PurchaseDate *string `json:"purchase_date"`
}

// PurchaseService manages a user's purchases.
type PurchaseService interface {
	List(ctx context.Context, userID int64, filter models.PurchaseFilter, page models.Page) ([]models.Purchase, models.Pagination, error)
	Get(ctx context.Context, userID, id int64) (models.Purchase, error)
	Create(ctx context.Context, userID int64, input PurchaseInput) (models.Purchase, error)
	Update(ctx context.Context, userID, id int64, input PurchaseInput) (models.Purchase, error)
	Delete(ctx context.Context, userID, id int64) error
}

// StatsService builds spending reports.
type StatsService interface {
	ByCategory(ctx context.Context, userID int64, filter models.PurchaseFilter) (*models.CategoryReport, error)
	Summary(ctx context.Context, userID int64, month, year int) (*models.SummaryReport, error)
	InvalidateUserCache(userID int64)
}

// ExportResult is a serialized export ready to be sent as an attachment.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	Count       int
}

// ImportExportService moves purchases in and out of files.
type ImportExportService interface {
	Import(ctx context.Context, userID int64, format importer.SourceFormat, r io.Reader) (models.ImportOutcome, error)
	Export(ctx context.Context, userID int64, format importer.SourceFormat, filter models.PurchaseFilter) (*ExportResult, error)
}

// cacheInvalidator is implemented by StatsService.
type cacheInvalidator interface {
	InvalidateUserCache(userID int64)
}
