// backend/src/importer/mapping.go
package importer

import (
	"fmt"
	"os"
	"strings"

	"github.com/username/expensetracker/backend/src/models"
	"gopkg.in/yaml.v3"
)

// SourceFormat is the kind of file an import or export deals with.
type SourceFormat string

const (
	FormatCSV  SourceFormat = "csv"
	FormatJSON SourceFormat = "json"
	FormatXLSX SourceFormat = "xlsx"
)

func ParseSourceFormat(s string) (SourceFormat, error) {
	switch f := SourceFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected csv, json or xlsx)", s)
	}
}

// RowOffset is added to a record index to obtain the row number reported in errors.
// Tabular formats carry a header row; JSON arrays do not.
func (f SourceFormat) RowOffset() int {
	if f == FormatJSON {
		return 1
	}
	return 2
}

// Field names a canonical purchase attribute.
type Field string

const (
	FieldItemName     Field = "item_name"
	FieldPrice        Field = "price"
	FieldCategory     Field = "category"
	FieldPurchaseDate Field = "purchase_date"
)

var requiredFields = []Field{FieldItemName, FieldPrice, FieldCategory}

// FieldMapping lists the accepted source labels for each canonical field.
// The first label of a field is the one written on export.
type FieldMapping struct {
	ItemName     []string `yaml:"item_name"`
	Price        []string `yaml:"price"`
	Category     []string `yaml:"category"`
	PurchaseDate []string `yaml:"purchase_date"`
}

func (m FieldMapping) Labels(f Field) []string {
	switch f {
	case FieldItemName:
		return m.ItemName
	case FieldPrice:
		return m.Price
	case FieldCategory:
		return m.Category
	case FieldPurchaseDate:
		return m.PurchaseDate
	}
	return nil
}

// Label returns the primary label of f.
func (m FieldMapping) Label(f Field) string {
	if labels := m.Labels(f); len(labels) > 0 {
		return labels[0]
	}
	return string(f)
}

// Lookup finds the value of f in raw. Labels match case-insensitively,
// ignoring surrounding whitespace and a UTF-8 byte order mark.
func (m FieldMapping) Lookup(raw models.RawRecord, f Field) (any, bool) {
	labels := m.Labels(f)
	if len(labels) == 0 {
		labels = []string{string(f)}
	}
	for _, label := range labels {
		if v, ok := raw[label]; ok {
			return v, true
		}
	}
	for key, v := range raw {
		nk := normalizeLabel(key)
		for _, label := range labels {
			if nk == normalizeLabel(label) {
				return v, true
			}
		}
	}
	return nil, false
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
}

// merge replaces the fields of m that are set in override.
func (m FieldMapping) merge(override FieldMapping) FieldMapping {
	if len(override.ItemName) > 0 {
		m.ItemName = override.ItemName
	}
	if len(override.Price) > 0 {
		m.Price = override.Price
	}
	if len(override.Category) > 0 {
		m.Category = override.Category
	}
	if len(override.PurchaseDate) > 0 {
		m.PurchaseDate = override.PurchaseDate
	}
	return m
}

// FieldMappings holds one FieldMapping per source format.
type FieldMappings map[SourceFormat]FieldMapping

func tabularMapping() FieldMapping {
	return FieldMapping{
		ItemName:     []string{"Name", "Название", "item_name"},
		Price:        []string{"Price", "Цена", "price"},
		Category:     []string{"Category", "Категория", "category"},
		PurchaseDate: []string{"Date", "Дата", "purchase_date"},
	}
}

// DefaultFieldMappings returns the built-in labels.
func DefaultFieldMappings() FieldMappings {
	return FieldMappings{
		FormatCSV:  tabularMapping(),
		FormatXLSX: tabularMapping(),
		FormatJSON: {
			ItemName:     []string{string(FieldItemName)},
			Price:        []string{string(FieldPrice)},
			Category:     []string{string(FieldCategory)},
			PurchaseDate: []string{string(FieldPurchaseDate)},
		},
	}
}

// For returns the mapping of format, falling back to the built-in one.
func (ms FieldMappings) For(format SourceFormat) FieldMapping {
	if m, ok := ms[format]; ok {
		return m
	}
	return DefaultFieldMappings()[format]
}

// LoadFieldMappings reads YAML overrides from path and merges them over the defaults.
// An empty path yields the defaults.
//
//	csv:
//	  item_name: [Item, Name]
//	  price: [Amount]
func LoadFieldMappings(path string) (FieldMappings, error) {
	mappings := DefaultFieldMappings()
	if path == "" {
		return mappings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read field mapping file: %w", err)
	}
	return parseFieldMappings(data, mappings)
}

func parseFieldMappings(data []byte, base FieldMappings) (FieldMappings, error) {
	var overrides map[string]FieldMapping
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse field mapping file: %w", err)
	}
	for name, override := range overrides {
		format, err := ParseSourceFormat(name)
		if err != nil {
			return nil, fmt.Errorf("invalid field mapping section: %w", err)
		}
		base[format] = base.For(format).merge(override)
	}
	return base, nil
}
