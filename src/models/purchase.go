// backend/src/models/purchase.go
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage form of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time component. It marshals as YYYY-MM-DD.
type Date struct {
	time.Time
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a strict YYYY-MM-DD value.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Purchase is a validated expense entry owned by exactly one user.
type Purchase struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	ItemName     string          `json:"item_name"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	PurchaseDate Date            `json:"purchase_date"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PurchaseUpdate carries the fields of a partial update. Nil fields are left unchanged.
type PurchaseUpdate struct {
	ItemName     *string
	Price        *decimal.Decimal
	Category     *string
	PurchaseDate *Date
}

// Empty reports whether no field is set.
func (u PurchaseUpdate) Empty() bool {
	return u.ItemName == nil && u.Price == nil && u.Category == nil && u.PurchaseDate == nil
}

// MaxPrice is the largest amount a single purchase may carry. Totals over
// millions of purchases at this price still fit in int64 cents.
var MaxPrice = decimal.New(99999999999999, -2)

// PriceInRange reports whether p, rounded to cents, is positive and at most MaxPrice.
func PriceInRange(p decimal.Decimal) bool {
	p = p.Round(2)
	return p.IsPositive() && !p.GreaterThan(MaxPrice)
}

// PriceToCents converts a price with at most two decimal places to integer cents.
// Callers check PriceInRange first.
func PriceToCents(p decimal.Decimal) int64 {
	return p.Round(2).Shift(2).IntPart()
}

// PriceFromCents is the inverse of PriceToCents.
func PriceFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
