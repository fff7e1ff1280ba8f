// backend/src/repository/purchase_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/username/expensetracker/backend/src/models"
)

// ErrNotFound is returned when a purchase does not exist or belongs to another user.
var ErrNotFound = errors.New("purchase not found")

// PurchaseRepository persists purchases. Every method is scoped to userID.
type PurchaseRepository interface {
	Insert(ctx context.Context, userID int64, p models.Purchase) (models.Purchase, error)
	Get(ctx context.Context, userID, id int64) (models.Purchase, error)
	List(ctx context.Context, userID int64, filter models.PurchaseFilter, page models.Page) ([]models.Purchase, int, error)
	Query(ctx context.Context, userID int64, filter models.PurchaseFilter) ([]models.Purchase, error)
	Update(ctx context.Context, userID, id int64, upd models.PurchaseUpdate) (models.Purchase, error)
	Delete(ctx context.Context, userID, id int64) error

	CategoryTotals(ctx context.Context, userID int64, filter models.PurchaseFilter) ([]models.CategoryStat, error)
	MostExpensive(ctx context.Context, userID int64, limit int) ([]models.Purchase, error)
	Summary(ctx context.Context, userID int64, filter models.PurchaseFilter) (models.SpendingSummary, error)
	ByWeekday(ctx context.Context, userID int64, filter models.PurchaseFilter) ([]models.WeekdayStat, error)
}

type sqlitePurchaseRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPurchaseRepository returns a PurchaseRepository backed by db.
func NewPurchaseRepository(db *sql.DB) PurchaseRepository {
	return &sqlitePurchaseRepository{db: db, now: time.Now}
}

const purchaseColumns = `id, user_id, item_name, price_cents, category, purchase_date, created_at, updated_at`

const listOrder = `ORDER BY purchase_date DESC, created_at DESC, id DESC`

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPurchase(s rowScanner) (models.Purchase, error) {
	var p models.Purchase
	var cents int64
	var purchaseDate, createdAt, updatedAt string
	if err := s.Scan(&p.ID, &p.UserID, &p.ItemName, &cents, &p.Category, &purchaseDate, &createdAt, &updatedAt); err != nil {
		return models.Purchase{}, err
	}
	p.Price = models.PriceFromCents(cents)
	date, err := models.ParseDate(purchaseDate)
	if err != nil {
		return models.Purchase{}, fmt.Errorf("stored purchase %d has %w", p.ID, err)
	}
	p.PurchaseDate = date
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

func (r *sqlitePurchaseRepository) queryPurchases(ctx context.Context, query string, args ...any) ([]models.Purchase, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	purchases := []models.Purchase{}
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchases: %w", err)
	}
	return purchases, nil
}

// Insert stores p for userID. Any owner set on p is ignored.
func (r *sqlitePurchaseRepository) Insert(ctx context.Context, userID int64, p models.Purchase) (models.Purchase, error) {
	if !models.PriceInRange(p.Price) {
		return models.Purchase{}, fmt.Errorf("refusing to store out-of-range price %s", p.Price)
	}
	now := r.now()
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO purchases (user_id, item_name, price_cents, category, purchase_date, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, p.ItemName, models.PriceToCents(p.Price), p.Category, p.PurchaseDate.String(),
		formatTimestamp(now), formatTimestamp(now))
	if err != nil {
		return models.Purchase{}, fmt.Errorf("failed to insert purchase: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Purchase{}, fmt.Errorf("failed to read purchase id: %w", err)
	}

	p.ID = id
	p.UserID = userID
	p.Price = p.Price.Round(2)
	p.CreatedAt, _ = time.Parse(time.RFC3339, formatTimestamp(now))
	p.UpdatedAt = p.CreatedAt
	return p, nil
}

func (r *sqlitePurchaseRepository) Get(ctx context.Context, userID, id int64) (models.Purchase, error) {
	where, args := ForUser(userID).ID(id).Where()
	p, err := scanPurchase(r.db.QueryRowContext(ctx, `SELECT `+purchaseColumns+` FROM purchases `+where, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Purchase{}, ErrNotFound
		}
		return models.Purchase{}, fmt.Errorf("failed to get purchase: %w", err)
	}
	return p, nil
}

func (r *sqlitePurchaseRepository) List(ctx context.Context, userID int64, filter models.PurchaseFilter, page models.Page) ([]models.Purchase, int, error) {
	page = page.Normalize()
	where, args := ForUser(userID).Apply(filter).Where()

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM purchases `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count purchases: %w", err)
	}

	purchases, err := r.queryPurchases(ctx,
		`SELECT `+purchaseColumns+` FROM purchases `+where+` `+listOrder+` LIMIT ? OFFSET ?`,
		append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return purchases, total, nil
}

// Query returns every matching purchase, newest purchase date first.
func (r *sqlitePurchaseRepository) Query(ctx context.Context, userID int64, filter models.PurchaseFilter) ([]models.Purchase, error) {
	where, args := ForUser(userID).Apply(filter).Where()
	return r.queryPurchases(ctx, `SELECT `+purchaseColumns+` FROM purchases `+where+` ORDER BY purchase_date DESC, id DESC`, args...)
}

// Update applies the set fields of upd.
func (r *sqlitePurchaseRepository) Update(ctx context.Context, userID, id int64, upd models.PurchaseUpdate) (models.Purchase, error) {
	if upd.Empty() {
		return models.Purchase{}, errors.New("no fields to update")
	}

	var sets []string
	var setArgs []any
	if upd.ItemName != nil {
		sets = append(sets, "item_name = ?")
		setArgs = append(setArgs, *upd.ItemName)
	}
	if upd.Price != nil {
		if !models.PriceInRange(*upd.Price) {
			return models.Purchase{}, fmt.Errorf("refusing to store out-of-range price %s", upd.Price)
		}
		sets = append(sets, "price_cents = ?")
		setArgs = append(setArgs, models.PriceToCents(*upd.Price))
	}
	if upd.Category != nil {
		sets = append(sets, "category = ?")
		setArgs = append(setArgs, *upd.Category)
	}
	if upd.PurchaseDate != nil {
		sets = append(sets, "purchase_date = ?")
		setArgs = append(setArgs, upd.PurchaseDate.String())
	}
	sets = append(sets, "updated_at = ?")
	setArgs = append(setArgs, formatTimestamp(r.now()))

	where, whereArgs := ForUser(userID).ID(id).Where()
	res, err := r.db.ExecContext(ctx, `UPDATE purchases SET `+strings.Join(sets, ", ")+` `+where, append(setArgs, whereArgs...)...)
	if err != nil {
		return models.Purchase{}, fmt.Errorf("failed to update purchase: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Purchase{}, ErrNotFound
	}
	return r.Get(ctx, userID, id)
}

func (r *sqlitePurchaseRepository) Delete(ctx context.Context, userID, id int64) error {
	where, args := ForUser(userID).ID(id).Where()
	res, err := r.db.ExecContext(ctx, `DELETE FROM purchases `+where, args...)
	if err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
