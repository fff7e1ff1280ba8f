// backend/src/importer/validator.go
package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/expensetracker/backend/src/models"
	"github.com/username/expensetracker/backend/src/security/validation"
)

// acceptedDateLayouts are tried in order; the first match wins.
var acceptedDateLayouts = []string{
	models.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02.01.2006",
	"01/02/2006",
	"2006/01/02",
	"01-02-06", // excelize rendering of the built-in short date format
}

// Validator turns raw records of one source format into purchases.
type Validator struct {
	mapping FieldMapping
	now     func() time.Time
}

// NewValidator returns a Validator for mapping. now supplies the date used
// when a record has no usable date; nil means time.Now.
func NewValidator(mapping FieldMapping, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{mapping: mapping, now: now}
}

// Validate checks raw and normalizes it into a purchase without id or owner.
// A missing or unreadable date is replaced by today's date and never rejects the row.
func (v *Validator) Validate(raw models.RawRecord, row int) (models.Purchase, error) {
	values := make(map[Field]string, len(requiredFields))
	var missing []string
	for _, f := range requiredFields {
		text := v.text(raw, f)
		if f != FieldPrice {
			text = validation.SanitizeText(validation.UnescapeFormulaPrefix(text))
		}
		if text == "" {
			missing = append(missing, v.mapping.Label(f))
			continue
		}
		values[f] = text
	}
	if len(missing) > 0 {
		return models.Purchase{}, invalidRow(row, "missing required fields: %s", strings.Join(missing, ", "))
	}

	price, err := ParsePrice(values[FieldPrice])
	if err != nil {
		return models.Purchase{}, invalidRow(row, "price %q %s", values[FieldPrice], err.Error())
	}

	itemLabel := v.mapping.Label(FieldItemName)
	if err := validation.ValidateStringMaxLength(values[FieldItemName], validation.MaxItemNameLength, itemLabel); err != nil {
		return models.Purchase{}, invalidRow(row, "%s exceeds maximum length of %d characters", itemLabel, validation.MaxItemNameLength)
	}
	categoryLabel := v.mapping.Label(FieldCategory)
	if err := validation.ValidateStringMaxLength(values[FieldCategory], validation.MaxCategoryLength, categoryLabel); err != nil {
		return models.Purchase{}, invalidRow(row, "%s exceeds maximum length of %d characters", categoryLabel, validation.MaxCategoryLength)
	}

	date, ok := ParseLenientDate(v.text(raw, FieldPurchaseDate))
	if !ok {
		date = models.DateOf(v.now())
	}

	return models.Purchase{
		ItemName:     values[FieldItemName],
		Price:        price,
		Category:     values[FieldCategory],
		PurchaseDate: date,
	}, nil
}

// text returns the trimmed textual form of field f, or "" when absent.
func (v *Validator) text(raw models.RawRecord, f Field) string {
	value, ok := v.mapping.Lookup(raw, f)
	if !ok {
		return ""
	}
	return strings.TrimSpace(stringify(value))
}

func stringify(value any) string {
	switch t := value.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case decimal.Decimal:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// ParsePrice parses a positive amount with '.' or ',' as decimal separator and
// rounds it to two places. The returned error reads as a predicate on the value.
func ParsePrice(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "\u00a0", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	price, err := decimal.NewFromString(cleaned)
	if err != nil || cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("is not a number")
	}
	price = price.Round(2)
	if !price.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("must be greater than zero")
	}
	if price.GreaterThan(models.MaxPrice) {
		return decimal.Decimal{}, fmt.Errorf("is too large (maximum %s)", models.MaxPrice.StringFixed(2))
	}
	return price, nil
}

// ParseLenientDate tries every accepted layout and returns the calendar date.
func ParseLenientDate(s string) (models.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Date{}, false
	}
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.DateOf(t), true
		}
	}
	return models.Date{}, false
}
