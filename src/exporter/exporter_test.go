package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/expensetracker/backend/src/importer"
	"github.com/username/expensetracker/backend/src/models"
	"github.com/xuri/excelize/v2"
)

var fixedNow = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func samplePurchases() []models.Purchase {
	created := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	return []models.Purchase{
		{ID: 1, UserID: 7, ItemName: "Milk", Price: decimal.RequireFromString("2.5"), Category: "Food", PurchaseDate: models.NewDate(2024, 5, 30), CreatedAt: created},
		{ID: 2, UserID: 7, ItemName: `Chair, "oak"`, Price: decimal.RequireFromString("120"), Category: "Home", PurchaseDate: models.NewDate(2024, 5, 1), CreatedAt: created},
		{ID: 3, UserID: 7, ItemName: "=HYPERLINK(\"x\")", Price: decimal.RequireFromString("0.99"), Category: "Multi\nline", PurchaseDate: models.NewDate(2023, 12, 31), CreatedAt: created},
	}
}

type tuple struct {
	Name, Price, Category, Date string
}

func tuples(ps []models.Purchase) []tuple {
	out := make([]tuple, len(ps))
	for i, p := range ps {
		out[i] = tuple{p.ItemName, p.Price.StringFixed(2), p.Category, p.PurchaseDate.String()}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func collect(store *[]models.Purchase) importer.PersistFunc {
	return func(_ context.Context, p models.Purchase) (models.Purchase, error) {
		p.ID = int64(len(*store) + 100)
		*store = append(*store, p)
		return p, nil
	}
}

func newExporter() *Exporter {
	return New(importer.DefaultFieldMappings().For(importer.FormatCSV), clock)
}

func TestNothingToExport(t *testing.T) {
	e := newExporter()
	for _, format := range []importer.SourceFormat{importer.FormatCSV, importer.FormatJSON, importer.FormatXLSX} {
		out, err := e.Export(format, nil, 7)
		assert.ErrorIs(t, err, ErrNothingToExport, format)
		assert.Nil(t, out)
	}
}

func TestCSVLayoutAndEscaping(t *testing.T) {
	out, err := newExporter().CSV(samplePurchases())
	require.NoError(t, err)

	lines := strings.SplitN(string(out), "\n", 2)
	assert.Equal(t, "Date,Name,Price,Category,Added", lines[0])
	assert.Contains(t, string(out), "2024-05-30,Milk,2.50,Food,2024-06-01 09:00:00\n")
	assert.Contains(t, string(out), `"Chair, ""oak"""`)
	assert.Contains(t, string(out), `"'=HYPERLINK(""x"")"`)
	assert.Contains(t, string(out), "\"Multi\nline\"")

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestCSVRoundTrip(t *testing.T) {
	original := samplePurchases()
	out, err := newExporter().CSV(original)
	require.NoError(t, err)

	var reimported []models.Purchase
	outcome, err := importer.New(nil, clock).Import(context.Background(), importer.FormatCSV, bytes.NewReader(out), collect(&reimported))
	require.NoError(t, err)
	assert.Empty(t, outcome.Errors)
	assert.Equal(t, tuples(original), tuples(reimported))
}

func TestJSONEnvelopeAndRoundTrip(t *testing.T) {
	original := samplePurchases()
	out, err := newExporter().JSON(original, 7)
	require.NoError(t, err)

	var env struct {
		Meta models.ExportMeta `json:"meta"`
		Data []map[string]any  `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out, &env))
	assert.Equal(t, models.ExportMeta{ExportedAt: "2024-06-15T10:30:00Z", UserID: 7, RecordCount: 3, Format: "expense-tracker-v1"}, env.Meta)
	require.Len(t, env.Data, 3)
	assert.Equal(t, "Milk", env.Data[0]["item_name"])
	assert.Equal(t, "2.50", env.Data[0]["price"])
	assert.Equal(t, "2024-05-30", env.Data[0]["purchase_date"])
	assert.Equal(t, "2024-06-01T09:00:00Z", env.Data[0]["created_at"])
	assert.Equal(t, float64(1), env.Data[0]["id"])

	var reimported []models.Purchase
	outcome, err := importer.New(nil, clock).Import(context.Background(), importer.FormatJSON, bytes.NewReader(out), collect(&reimported))
	require.NoError(t, err)
	assert.Empty(t, outcome.Errors)
	assert.Equal(t, tuples(original), tuples(reimported))
}

func TestXLSXRoundTrip(t *testing.T) {
	original := samplePurchases()
	out, err := newExporter().XLSX(original)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, []string{"Date", "Name", "Price", "Category", "Added"}, rows[0])
	assert.Len(t, rows, 4)

	var reimported []models.Purchase
	outcome, err := importer.New(nil, clock).Import(context.Background(), importer.FormatXLSX, bytes.NewReader(out), collect(&reimported))
	require.NoError(t, err)
	assert.Empty(t, outcome.Errors)
	assert.Equal(t, tuples(original), tuples(reimported))
}

func TestExportUsesMappingLabels(t *testing.T) {
	mapping := importer.DefaultFieldMappings().For(importer.FormatCSV)
	mapping.ItemName = []string{"Item"}
	out, err := New(mapping, clock).CSV(samplePurchases()[:1])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "Date,Item,Price,Category,Added\n"))
}

func TestFilenameAndContentType(t *testing.T) {
	assert.Equal(t, "purchases_2024-06-15.csv", Filename(importer.FormatCSV, fixedNow))
	assert.Equal(t, "purchases_2024-06-15.xlsx", Filename(importer.FormatXLSX, fixedNow))
	assert.Equal(t, "application/json; charset=utf-8", ContentType(importer.FormatJSON))
	assert.Contains(t, ContentType(importer.FormatXLSX), "spreadsheetml")
}
