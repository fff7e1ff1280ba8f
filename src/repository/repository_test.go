package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/expensetracker/backend/src/database"
	"github.com/username/expensetracker/backend/src/model"
	"github.com/username/expensetracker/backend/src/models"
)

func setup(t *testing.T) (PurchaseRepository, *sql.DB, int64, int64) {
	t.Helper()
	db, err := database.OpenAndMigrate(filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	alice := &model.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	require.NoError(t, alice.CreateUser(db))
	bob := &model.User{Username: "bob", Email: "bob@example.com", Password: "x"}
	require.NoError(t, bob.CreateUser(db))
	return NewPurchaseRepository(db), db, alice.ID, bob.ID
}

func purchase(name, price, category string, date models.Date) models.Purchase {
	return models.Purchase{ItemName: name, Price: decimal.RequireFromString(price), Category: category, PurchaseDate: date}
}

func datePtr(d models.Date) *models.Date { return &d }

func seed(t *testing.T, repo PurchaseRepository, userID int64) {
	t.Helper()
	ctx := context.Background()
	for _, p := range []models.Purchase{
		purchase("Milk", "2.50", "Food", models.NewDate(2024, 1, 1)),  // Monday
		purchase("Bread", "1.20", "Food", models.NewDate(2024, 1, 7)), // Sunday
		purchase("Lamp", "30", "Home", models.NewDate(2024, 2, 5)),    // Monday
		purchase("Sofa", "499.99", "Home", models.NewDate(2023, 12, 20)),
		purchase("Bus", "3", "Transport", models.NewDate(2024, 2, 6)),
	} {
		_, err := repo.Insert(ctx, userID, p)
		require.NoError(t, err)
	}
}

func TestInsertIgnoresForeignOwnerAndGet(t *testing.T) {
	repo, _, alice, bob := setup(t)
	ctx := context.Background()

	p := purchase("Milk", "2.499", "Food", models.NewDate(2024, 1, 1))
	p.UserID = bob
	saved, err := repo.Insert(ctx, alice, p)
	require.NoError(t, err)
	assert.Equal(t, alice, saved.UserID)
	assert.NotZero(t, saved.ID)

	got, err := repo.Get(ctx, alice, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Milk", got.ItemName)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, "2024-01-01", got.PurchaseDate.String())
	assert.False(t, got.CreatedAt.IsZero())

	_, err = repo.Get(ctx, bob, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertRejectsNonPositivePrice(t *testing.T) {
	repo, _, alice, _ := setup(t)
	_, err := repo.Insert(context.Background(), alice, purchase("Free", "0", "x", models.NewDate(2024, 1, 1)))
	assert.Error(t, err)
}

func TestInsertAndUpdateRejectOversizedPrice(t *testing.T) {
	repo, _, alice, _ := setup(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, alice, purchase("Yacht", "184467440737095516.17", "Toys", models.NewDate(2024, 1, 1)))
	assert.ErrorContains(t, err, "out-of-range price")
	_, total, err := repo.List(ctx, alice, models.PurchaseFilter{}, models.Page{})
	require.NoError(t, err)
	assert.Zero(t, total)

	saved, err := repo.Insert(ctx, alice, models.Purchase{ItemName: "House", Price: models.MaxPrice, Category: "Home", PurchaseDate: models.NewDate(2024, 1, 1)})
	require.NoError(t, err)
	got, err := repo.Get(ctx, alice, saved.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(models.MaxPrice), got.Price.String())

	tooBig := models.MaxPrice.Add(decimal.RequireFromString("0.01"))
	_, err = repo.Update(ctx, alice, saved.ID, models.PurchaseUpdate{Price: &tooBig})
	assert.ErrorContains(t, err, "out-of-range price")
}

func TestListFiltersAndPaginates(t *testing.T) {
	repo, _, alice, bob := setup(t)
	seed(t, repo, alice)
	seed(t, repo, bob)
	ctx := context.Background()

	all, total, err := repo.List(ctx, alice, models.PurchaseFilter{}, models.Page{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, all, 2)
	assert.Equal(t, "Bus", all[0].ItemName)
	assert.Equal(t, "Lamp", all[1].ItemName)

	last, _, err := repo.List(ctx, alice, models.PurchaseFilter{}, models.Page{Page: 3, Limit: 2})
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "Sofa", last[0].ItemName)

	food, total, err := repo.List(ctx, alice, models.PurchaseFilter{Category: "Food"}, models.Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, food, 2)

	ranged, total, err := repo.List(ctx, alice, models.PurchaseFilter{
		StartDate: datePtr(models.NewDate(2024, 1, 1)),
		EndDate:   datePtr(models.NewDate(2024, 2, 5)),
	}, models.Page{})
	require.NoError(t, err)
	assert.Equal(t, 3, total, "bounds are inclusive")
	assert.Len(t, ranged, 3)

	injection, total, err := repo.List(ctx, alice, models.PurchaseFilter{Category: "Food' OR '1'='1"}, models.Page{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, injection)
}

func TestQueryOrdersByDateDescAndScopesUser(t *testing.T) {
	repo, _, alice, bob := setup(t)
	seed(t, repo, alice)
	ctx := context.Background()

	got, err := repo.Query(ctx, alice, models.PurchaseFilter{})
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].PurchaseDate.After(got[i-1].PurchaseDate.Time))
	}

	none, err := repo.Query(ctx, bob, models.PurchaseFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)

	byMonth, err := repo.Query(ctx, alice, models.PurchaseFilter{Month: 2, Year: 2024})
	require.NoError(t, err)
	assert.Len(t, byMonth, 2)

	byYear, err := repo.Query(ctx, alice, models.PurchaseFilter{Year: 2023})
	require.NoError(t, err)
	require.Len(t, byYear, 1)
	assert.Equal(t, "Sofa", byYear[0].ItemName)
}

func TestUpdateAndDelete(t *testing.T) {
	repo, _, alice, bob := setup(t)
	ctx := context.Background()
	saved, err := repo.Insert(ctx, alice, purchase("Milk", "2.50", "Food", models.NewDate(2024, 1, 1)))
	require.NoError(t, err)

	price := decimal.RequireFromString("3.10")
	updated, err := repo.Update(ctx, alice, saved.ID, models.PurchaseUpdate{Price: &price})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))
	assert.Equal(t, "Milk", updated.ItemName)

	name := "Oat milk"
	_, err = repo.Update(ctx, bob, saved.ID, models.PurchaseUpdate{ItemName: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Update(ctx, alice, saved.ID, models.PurchaseUpdate{})
	assert.Error(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, bob, saved.ID), ErrNotFound)
	require.NoError(t, repo.Delete(ctx, alice, saved.ID))
	assert.ErrorIs(t, repo.Delete(ctx, alice, saved.ID), ErrNotFound)
}

func TestCategoryTotals(t *testing.T) {
	repo, _, alice, _ := setup(t)
	seed(t, repo, alice)

	stats, err := repo.CategoryTotals(context.Background(), alice, models.PurchaseFilter{})
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, "Home", stats[0].Category)
	assert.Equal(t, 2, stats[0].PurchaseCount)
	assert.True(t, stats[0].TotalAmount.Equal(decimal.RequireFromString("529.99")))
	assert.True(t, stats[0].AveragePrice.Equal(decimal.RequireFromString("265")), stats[0].AveragePrice.String())
	assert.Equal(t, "Food", stats[1].Category)
	assert.True(t, stats[1].AveragePrice.Equal(decimal.RequireFromString("1.85")))

	filtered, err := repo.CategoryTotals(context.Background(), alice, models.PurchaseFilter{StartDate: datePtr(models.NewDate(2024, 1, 1))})
	require.NoError(t, err)
	assert.Len(t, filtered, 3)
	assert.Equal(t, "Home", filtered[0].Category)
	assert.Equal(t, 1, filtered[0].PurchaseCount)
}

func TestMostExpensiveSummaryAndWeekday(t *testing.T) {
	repo, _, alice, bob := setup(t)
	seed(t, repo, alice)
	ctx := context.Background()

	top, err := repo.MostExpensive(ctx, alice, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Sofa", top[0].ItemName)
	assert.Equal(t, "Lamp", top[1].ItemName)

	sum, err := repo.Summary(ctx, alice, models.PurchaseFilter{Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, 4, sum.TotalPurchases)
	assert.True(t, sum.TotalSpent.Equal(decimal.RequireFromString("36.7")))
	assert.True(t, sum.MinPrice.Equal(decimal.RequireFromString("1.2")))
	assert.True(t, sum.MaxPrice.Equal(decimal.RequireFromString("30")))
	assert.True(t, sum.AvgPrice.Equal(decimal.RequireFromString("9.18")), sum.AvgPrice.String())

	empty, err := repo.Summary(ctx, bob, models.PurchaseFilter{})
	require.NoError(t, err)
	assert.Zero(t, empty.TotalPurchases)
	assert.True(t, empty.TotalSpent.IsZero())

	days, err := repo.ByWeekday(ctx, alice, models.PurchaseFilter{Year: 2024})
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, time.Monday.String(), days[0].Weekday)
	assert.Equal(t, 2, days[0].PurchaseCount)
	assert.Equal(t, time.Tuesday.String(), days[1].Weekday)
	assert.Equal(t, time.Sunday.String(), days[2].Weekday)
}

func TestFilterWhere(t *testing.T) {
	where, args := ForUser(7).Apply(models.PurchaseFilter{Category: "Food", Month: 3}).Where()
	assert.Equal(t, "WHERE user_id = ? AND category = ? AND strftime('%m', purchase_date) = ?", where)
	assert.Equal(t, []any{int64(7), "Food", "03"}, args)
}
