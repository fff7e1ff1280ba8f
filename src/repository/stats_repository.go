// backend/src/repository/stats_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/expensetracker/backend/src/models"
)

// average divides a cent total by count and rounds to two places.
func average(totalCents int64, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return models.PriceFromCents(totalCents).Div(decimal.NewFromInt(int64(count))).Round(2)
}

// CategoryTotals groups matching purchases by category, largest total first.
// Percentages are left to the caller.
func (r *sqlitePurchaseRepository) CategoryTotals(ctx context.Context, userID int64, filter models.PurchaseFilter) ([]models.CategoryStat, error) {
	where, args := ForUser(userID).Apply(filter).Where()
	rows, err := r.db.QueryContext(ctx, `
	SELECT category, COUNT(*), SUM(price_cents)
	FROM purchases `+where+`
	GROUP BY category
	ORDER BY SUM(price_cents) DESC, category ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category totals: %w", err)
	}
	defer rows.Close()

	stats := []models.CategoryStat{}
	for rows.Next() {
		var s models.CategoryStat
		var cents int64
		if err := rows.Scan(&s.Category, &s.PurchaseCount, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan category totals: %w", err)
		}
		s.TotalAmount = models.PriceFromCents(cents)
		s.AveragePrice = average(cents, s.PurchaseCount)
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category totals: %w", err)
	}
	return stats, nil
}

// MostExpensive returns the user's highest priced purchases over all time.
func (r *sqlitePurchaseRepository) MostExpensive(ctx context.Context, userID int64, limit int) ([]models.Purchase, error) {
	if limit <= 0 {
		limit = 5
	}
	where, args := ForUser(userID).Where()
	return r.queryPurchases(ctx,
		`SELECT `+purchaseColumns+` FROM purchases `+where+` ORDER BY price_cents DESC, purchase_date DESC, id DESC LIMIT ?`,
		append(args, limit)...)
}

func (r *sqlitePurchaseRepository) Summary(ctx context.Context, userID int64, filter models.PurchaseFilter) (models.SpendingSummary, error) {
	where, args := ForUser(userID).Apply(filter).Where()
	var count int
	var total, minPrice, maxPrice sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
	SELECT COUNT(*), SUM(price_cents), MIN(price_cents), MAX(price_cents)
	FROM purchases `+where, args...).Scan(&count, &total, &minPrice, &maxPrice)
	if err != nil {
		return models.SpendingSummary{}, fmt.Errorf("failed to query spending summary: %w", err)
	}
	return models.SpendingSummary{
		TotalPurchases: count,
		TotalSpent:     models.PriceFromCents(total.Int64),
		MinPrice:       models.PriceFromCents(minPrice.Int64),
		MaxPrice:       models.PriceFromCents(maxPrice.Int64),
		AvgPrice:       average(total.Int64, count),
	}, nil
}

// ByWeekday groups matching purchases by day of week, Monday first.
func (r *sqlitePurchaseRepository) ByWeekday(ctx context.Context, userID int64, filter models.PurchaseFilter) ([]models.WeekdayStat, error) {
	where, args := ForUser(userID).Apply(filter).Where()
	rows, err := r.db.QueryContext(ctx, `
	SELECT strftime('%w', purchase_date) AS dow, COUNT(*), SUM(price_cents)
	FROM purchases `+where+`
	GROUP BY dow`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekday totals: %w", err)
	}
	defer rows.Close()

	type bucket struct {
		day   time.Weekday
		count int
		cents int64
	}
	var buckets []bucket
	for rows.Next() {
		var dow string
		var b bucket
		if err := rows.Scan(&dow, &b.count, &b.cents); err != nil {
			return nil, fmt.Errorf("failed to scan weekday totals: %w", err)
		}
		n, err := strconv.Atoi(dow)
		if err != nil {
			return nil, fmt.Errorf("unexpected weekday %q: %w", dow, err)
		}
		b.day = time.Weekday(n)
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating weekday totals: %w", err)
	}

	// Sunday sorts last
	mondayFirst := func(d time.Weekday) int { return (int(d) + 6) % 7 }
	sort.Slice(buckets, func(i, j int) bool { return mondayFirst(buckets[i].day) < mondayFirst(buckets[j].day) })

	stats := make([]models.WeekdayStat, len(buckets))
	for i, b := range buckets {
		stats[i] = models.WeekdayStat{
			Weekday:       b.day.String(),
			PurchaseCount: b.count,
			TotalAmount:   models.PriceFromCents(b.cents),
		}
	}
	return stats, nil
}
