// backend/src/models/stats.go
package models

import "github.com/shopspring/decimal"

type CategoryStat struct {
	Category      string          `json:"category"`
	PurchaseCount int             `json:"purchase_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AveragePrice  decimal.Decimal `json:"average_price"`
	Percentage    int             `json:"percentage"`
}

type StatsPeriod struct {
	StartDate *Date `json:"start_date"`
	EndDate   *Date `json:"end_date"`
}

type CategorySummary struct {
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PurchaseCount int             `json:"purchase_count"`
	CategoryCount int             `json:"category_count"`
}

type CategoryReport struct {
	Period        StatsPeriod     `json:"period"`
	Summary       CategorySummary `json:"summary"`
	Categories    []CategoryStat  `json:"categories"`
	MostExpensive []Purchase      `json:"most_expensive"`
}

type SpendingSummary struct {
	TotalPurchases int             `json:"total_purchases"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	MinPrice       decimal.Decimal `json:"min_price"`
	MaxPrice       decimal.Decimal `json:"max_price"`
	AvgPrice       decimal.Decimal `json:"avg_price"`
}

type WeekdayStat struct {
	Weekday       string          `json:"weekday"`
	PurchaseCount int             `json:"purchase_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

type SummaryReport struct {
	Summary   SpendingSummary `json:"summary"`
	ByWeekday []WeekdayStat   `json:"by_weekday"`
}
