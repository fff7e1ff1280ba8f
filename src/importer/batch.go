// backend/src/importer/batch.go
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/models"
)

// PersistFunc stores a validated purchase and returns it with its assigned id.
type PersistFunc func(ctx context.Context, p models.Purchase) (models.Purchase, error)

// ImportBatch validates and persists every record in order. A failing row never
// stops the batch: its error is recorded and processing moves on. The row number
// of records[i] is i+rowOffset.
func ImportBatch(ctx context.Context, v *Validator, records []models.RawRecord, rowOffset int, persist PersistFunc) models.ImportOutcome {
	rows := make([]int, len(records))
	for i := range rows {
		rows[i] = i + rowOffset
	}
	return ImportRows(ctx, v, records, rows, persist)
}

// ImportRows is ImportBatch with an explicit row number for every record, as
// returned by the decoders.
func ImportRows(ctx context.Context, v *Validator, records []models.RawRecord, rows []int, persist PersistFunc) models.ImportOutcome {
	log := logger.FromContext(ctx)
	outcome := models.ImportOutcome{
		Imported: make([]models.Purchase, 0, len(records)),
		Errors:   []string{},
	}
	var validationFailures, storageFailures int

	for i, raw := range records {
		row := rows[i]

		purchase, err := v.Validate(raw, row)
		if err != nil {
			validationFailures++
			outcome.Errors = append(outcome.Errors, err.Error())
			continue
		}

		saved, err := persist(ctx, purchase)
		if err != nil {
			storageFailures++
			rowErr := &RowError{Row: row, Kind: KindStorage, Message: fmt.Sprintf("could not save %q", purchase.ItemName), Err: err}
			log.Warn("Import row failed to persist", "row", row, "error", err)
			outcome.Errors = append(outcome.Errors, rowErr.Error())
			continue
		}
		outcome.Imported = append(outcome.Imported, saved)
	}

	outcome.Summary = models.ImportSummary{
		TotalRows: len(records),
		Imported:  len(outcome.Imported),
		Failed:    len(outcome.Errors),
	}
	log.Info("Import batch processed",
		"total", outcome.Summary.TotalRows,
		"imported", outcome.Summary.Imported,
		"validationFailures", validationFailures,
		"storageFailures", storageFailures)
	return outcome
}

// Importer ties field mappings, decoding and validation together.
type Importer struct {
	mappings FieldMappings
	now      func() time.Time
}

// New returns an Importer. A nil mappings uses the defaults; a nil now uses time.Now.
func New(mappings FieldMappings, now func() time.Time) *Importer {
	if mappings == nil {
		mappings = DefaultFieldMappings()
	}
	if now == nil {
		now = time.Now
	}
	return &Importer{mappings: mappings, now: now}
}

func (im *Importer) Mapping(format SourceFormat) FieldMapping {
	return im.mappings.For(format)
}

func (im *Importer) Validator(format SourceFormat) *Validator {
	return NewValidator(im.mappings.For(format), im.now)
}

// Decode reads the records of r according to format, with the row number of each.
func (im *Importer) Decode(format SourceFormat, r io.Reader) ([]models.RawRecord, []int, error) {
	switch format {
	case FormatCSV:
		return DecodeCSV(r)
	case FormatJSON:
		return DecodeJSON(r)
	case FormatXLSX:
		return DecodeXLSX(r)
	default:
		return nil, nil, fmt.Errorf("%w: unsupported format %q", ErrContainer, format)
	}
}

// Import decodes r and runs the batch. Only container-level problems are returned
// as errors; row failures are reported in the outcome.
func (im *Importer) Import(ctx context.Context, format SourceFormat, r io.Reader, persist PersistFunc) (models.ImportOutcome, error) {
	records, rows, err := im.Decode(format, r)
	if err != nil {
		if !errors.Is(err, ErrContainer) {
			err = fmt.Errorf("%w: %v", ErrContainer, err)
		}
		return models.ImportOutcome{}, err
	}
	return ImportRows(ctx, im.Validator(format), records, rows, persist), nil
}
