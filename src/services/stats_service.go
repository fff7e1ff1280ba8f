// backend/src/services/stats_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/models"
	"github.com/username/expensetracker/backend/src/repository"
)

const (
	ckStatsByCategory = "stats_by_category_user_%d_%s_%s"
	ckStatsSummary    = "stats_summary_user_%d_m%d_y%d"
	ckUserPrefix      = "stats_%s_user_%d_"

	DefaultCacheExpiration = 5 * time.Minute
	CacheCleanupInterval   = 10 * time.Minute

	mostExpensiveLimit = 5
)

type statsServiceImpl struct {
	repo        repository.PurchaseRepository
	reportCache *cache.Cache
}

// NewStatsService builds a StatsService whose reports live in reportCache.
func NewStatsService(repo repository.PurchaseRepository, reportCache *cache.Cache) StatsService {
	if reportCache == nil {
		reportCache = cache.New(DefaultCacheExpiration, CacheCleanupInterval)
	}
	return &statsServiceImpl{repo: repo, reportCache: reportCache}
}

func dateKey(d *models.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func (s *statsServiceImpl) ByCategory(ctx context.Context, userID int64, filter models.PurchaseFilter) (*models.CategoryReport, error) {
	cacheKey := fmt.Sprintf(ckStatsByCategory, userID, dateKey(filter.StartDate), dateKey(filter.EndDate))
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.FromContext(ctx).Debug("Category stats served from cache", "userID", userID)
		return cached.(*models.CategoryReport), nil
	}

	// Only the period applies to the category breakdown.
	periodFilter := models.PurchaseFilter{StartDate: filter.StartDate, EndDate: filter.EndDate}
	categories, err := s.repo.CategoryTotals(ctx, userID, periodFilter)
	if err != nil {
		return nil, fmt.Errorf("error loading category totals for user %d: %w", userID, err)
	}
	mostExpensive, err := s.repo.MostExpensive(ctx, userID, mostExpensiveLimit)
	if err != nil {
		return nil, fmt.Errorf("error loading most expensive purchases for user %d: %w", userID, err)
	}

	total := decimal.Zero
	count := 0
	for _, c := range categories {
		total = total.Add(c.TotalAmount)
		count += c.PurchaseCount
	}
	hundred := decimal.NewFromInt(100)
	for i := range categories {
		if total.IsPositive() {
			categories[i].Percentage = int(categories[i].TotalAmount.Div(total).Mul(hundred).Round(0).IntPart())
		}
	}

	if categories == nil {
		categories = []models.CategoryStat{}
	}
	if mostExpensive == nil {
		mostExpensive = []models.Purchase{}
	}

	report := &models.CategoryReport{
		Period: models.StatsPeriod{StartDate: filter.StartDate, EndDate: filter.EndDate},
		Summary: models.CategorySummary{
			TotalAmount:   total,
			PurchaseCount: count,
			CategoryCount: len(categories),
		},
		Categories:    categories,
		MostExpensive: mostExpensive,
	}
	s.reportCache.Set(cacheKey, report, cache.DefaultExpiration)
	return report, nil
}

// Summary reports totals for the given month and/or year; zero means unrestricted.
func (s *statsServiceImpl) Summary(ctx context.Context, userID int64, month, year int) (*models.SummaryReport, error) {
	cacheKey := fmt.Sprintf(ckStatsSummary, userID, month, year)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.FromContext(ctx).Debug("Spending summary served from cache", "userID", userID)
		return cached.(*models.SummaryReport), nil
	}

	filter := models.PurchaseFilter{Month: month, Year: year}
	summary, err := s.repo.Summary(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("error loading summary for user %d: %w", userID, err)
	}
	byWeekday, err := s.repo.ByWeekday(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("error loading weekday stats for user %d: %w", userID, err)
	}
	if byWeekday == nil {
		byWeekday = []models.WeekdayStat{}
	}

	report := &models.SummaryReport{Summary: summary, ByWeekday: byWeekday}
	s.reportCache.Set(cacheKey, report, cache.DefaultExpiration)
	return report, nil
}

// InvalidateUserCache drops every cached report for userID.
func (s *statsServiceImpl) InvalidateUserCache(userID int64) {
	prefixes := []string{
		fmt.Sprintf(ckUserPrefix, "by_category", userID),
		fmt.Sprintf(ckUserPrefix, "summary", userID),
	}
	removed := 0
	for key := range s.reportCache.Items() {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				s.reportCache.Delete(key)
				removed++
				break
			}
		}
	}
	logger.L.Debug("Invalidated stats cache", "userID", userID, "entries", removed)
}
