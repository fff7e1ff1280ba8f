// backend/src/exporter/exporter.go
package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/username/expensetracker/backend/src/importer"
	"github.com/username/expensetracker/backend/src/models"
	"github.com/username/expensetracker/backend/src/security/validation"
	"github.com/xuri/excelize/v2"
)

// ErrNothingToExport is returned when the selection holds no purchases.
var ErrNothingToExport = errors.New("nothing to export")

const (
	addedLabel      = "Added"
	addedTimeLayout = "2006-01-02 15:04:05"
	sheetName       = "Purchases"
)

// Exporter serializes purchases. Tabular column labels come from the CSV field
// mapping so that an exported file imports back without changes.
type Exporter struct {
	mapping importer.FieldMapping
	now     func() time.Time
}

func New(mapping importer.FieldMapping, now func() time.Time) *Exporter {
	if now == nil {
		now = time.Now
	}
	return &Exporter{mapping: mapping, now: now}
}

// Export dispatches on format.
func (e *Exporter) Export(format importer.SourceFormat, records []models.Purchase, userID int64) ([]byte, error) {
	switch format {
	case importer.FormatCSV:
		return e.CSV(records)
	case importer.FormatJSON:
		return e.JSON(records, userID)
	case importer.FormatXLSX:
		return e.XLSX(records)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func (e *Exporter) header() []string {
	return []string{
		e.mapping.Label(importer.FieldPurchaseDate),
		e.mapping.Label(importer.FieldItemName),
		e.mapping.Label(importer.FieldPrice),
		e.mapping.Label(importer.FieldCategory),
		addedLabel,
	}
}

func row(p models.Purchase) []string {
	return []string{
		p.PurchaseDate.String(),
		validation.SanitizeForFormulaInjection(p.ItemName),
		p.Price.StringFixed(2),
		validation.SanitizeForFormulaInjection(p.Category),
		formatAdded(p.CreatedAt),
	}
}

func formatAdded(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(addedTimeLayout)
}

// CSV writes a header line followed by one line per purchase. Values containing
// a comma, a quote or a newline are quoted with inner quotes doubled.
func (e *Exporter) CSV(records []models.Purchase) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNothingToExport
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(e.header()); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, p := range records {
		if err := w.Write(row(p)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

type jsonRecord struct {
	ID           int64       `json:"id"`
	ItemName     string      `json:"item_name"`
	Price        string      `json:"price"`
	Category     string      `json:"category"`
	PurchaseDate models.Date `json:"purchase_date"`
	CreatedAt    string      `json:"created_at"`
}

type jsonEnvelope struct {
	Meta models.ExportMeta `json:"meta"`
	Data []jsonRecord      `json:"data"`
}

// JSON wraps the purchases in a versioned envelope accepted by the JSON import.
func (e *Exporter) JSON(records []models.Purchase, userID int64) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNothingToExport
	}

	env := jsonEnvelope{
		Meta: models.ExportMeta{
			ExportedAt:  e.now().UTC().Format(time.RFC3339),
			UserID:      userID,
			RecordCount: len(records),
			Format:      models.ExportFormatVersion,
		},
		Data: make([]jsonRecord, len(records)),
	}
	for i, p := range records {
		created := ""
		if !p.CreatedAt.IsZero() {
			created = p.CreatedAt.UTC().Format(time.RFC3339)
		}
		env.Data[i] = jsonRecord{
			ID:           p.ID,
			ItemName:     p.ItemName,
			Price:        p.Price.StringFixed(2),
			Category:     p.Category,
			PurchaseDate: p.PurchaseDate,
			CreatedAt:    created,
		}
	}

	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON export: %w", err)
	}
	return out, nil
}

// XLSX writes a single-sheet workbook with the same columns as CSV. Prices are
// numeric cells; everything else is text.
func (e *Exporter) XLSX(records []models.Purchase) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNothingToExport
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to name worksheet: %w", err)
	}

	header := e.header()
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, p := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := row(p)
		price, _ := p.Price.Round(2).Float64()
		line := []any{values[0], values[1], price, values[3], values[4]}
		if err := f.SetSheetRow(sheetName, cell, &line); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ContentType returns the MIME type of an export in format.
func ContentType(format importer.SourceFormat) string {
	switch format {
	case importer.FormatJSON:
		return "application/json; charset=utf-8"
	case importer.FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Filename returns the attachment name of an export produced on day.
func Filename(format importer.SourceFormat, day time.Time) string {
	return fmt.Sprintf("purchases_%s.%s", day.Format(models.DateLayout), format)
}
