package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, time.March, 5)
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-05"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(d.Time))

	assert.Error(t, json.Unmarshal([]byte(`"05.03.2024"`), &back))

	b, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestDateOfDropsTime(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	d := DateOf(time.Date(2024, 1, 2, 23, 59, 0, 0, loc))
	assert.Equal(t, "2024-01-02", d.String())
}

func TestPriceCents(t *testing.T) {
	p := decimal.RequireFromString("12.345")
	assert.Equal(t, int64(1235), PriceToCents(p))
	assert.True(t, PriceFromCents(250).Equal(decimal.RequireFromString("2.5")))
}

func TestPriceInRange(t *testing.T) {
	assert.True(t, PriceInRange(decimal.RequireFromString("0.01")))
	assert.True(t, PriceInRange(MaxPrice))
	assert.False(t, PriceInRange(decimal.Zero))
	assert.False(t, PriceInRange(decimal.RequireFromString("0.004")))
	assert.False(t, PriceInRange(MaxPrice.Add(decimal.RequireFromString("0.01"))))
	assert.False(t, PriceInRange(decimal.RequireFromString("184467440737095516.17")))
	assert.Equal(t, int64(99999999999999), PriceToCents(MaxPrice))
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Limit: 20}, Page{}.Normalize())
	assert.Equal(t, Page{Page: 3, Limit: 100}, Page{Page: 3, Limit: 500}.Normalize())
	assert.Equal(t, 40, Page{Page: 3, Limit: 20}.Offset())

	assert.Equal(t, 3, NewPagination(Page{Page: 1, Limit: 20}, 41).Pages)
	assert.Equal(t, 0, NewPagination(Page{Page: 1, Limit: 20}, 0).Pages)
}

func TestImportOutcomeAllFailed(t *testing.T) {
	assert.False(t, ImportOutcome{}.AllFailed())
	assert.True(t, ImportOutcome{Summary: ImportSummary{TotalRows: 1, Failed: 1}}.AllFailed())
	assert.False(t, ImportOutcome{Summary: ImportSummary{TotalRows: 2, Imported: 1, Failed: 1}}.AllFailed())
}
