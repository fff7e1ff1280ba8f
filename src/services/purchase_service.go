// backend/src/services/purchase_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/expensetracker/backend/src/importer"
	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/models"
	"github.com/username/expensetracker/backend/src/repository"
	"github.com/username/expensetracker/backend/src/security/validation"
)

type purchaseServiceImpl struct {
	repo  repository.PurchaseRepository
	cache cacheInvalidator
	now   func() time.Time
}

func NewPurchaseService(repo repository.PurchaseRepository, cache cacheInvalidator) PurchaseService {
	return &purchaseServiceImpl{repo: repo, cache: cache, now: time.Now}
}

func (s *purchaseServiceImpl) invalidate(userID int64) {
	if s.cache != nil {
		s.cache.InvalidateUserCache(userID)
	}
}

func (s *purchaseServiceImpl) List(ctx context.Context, userID int64, filter models.PurchaseFilter, page models.Page) ([]models.Purchase, models.Pagination, error) {
	page = page.Normalize()
	purchases, total, err := s.repo.List(ctx, userID, filter, page)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return purchases, models.NewPagination(page, total), nil
}

func (s *purchaseServiceImpl) Get(ctx context.Context, userID, id int64) (models.Purchase, error) {
	return s.repo.Get(ctx, userID, id)
}

func (s *purchaseServiceImpl) Create(ctx context.Context, userID int64, input PurchaseInput) (models.Purchase, error) {
	if input.ItemName == nil || input.Price == nil || input.Category == nil {
		return models.Purchase{}, fmt.Errorf("%w: item_name, price and category are required", ErrInvalidInput)
	}

	itemName, err := validation.ValidateTextField(*input.ItemName, validation.MaxItemNameLength, "item_name")
	if err != nil {
		return models.Purchase{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	category, err := validation.ValidateTextField(*input.Category, validation.MaxCategoryLength, "category")
	if err != nil {
		return models.Purchase{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	price, err := parseInputPrice(input.Price)
	if err != nil {
		return models.Purchase{}, err
	}

	date := models.DateOf(s.now())
	if input.PurchaseDate != nil && strings.TrimSpace(*input.PurchaseDate) != "" {
		if date, err = parseInputDate(*input.PurchaseDate); err != nil {
			return models.Purchase{}, err
		}
	}

	saved, err := s.repo.Insert(ctx, userID, models.Purchase{
		ItemName:     itemName,
		Price:        price,
		Category:     category,
		PurchaseDate: date,
	})
	if err != nil {
		return models.Purchase{}, err
	}
	s.invalidate(userID)
	logger.FromContext(ctx).Info("Purchase created", "purchaseID", saved.ID)
	return saved, nil
}

// Update applies the fields present in input. Unlike import, a bad date is rejected.
func (s *purchaseServiceImpl) Update(ctx context.Context, userID, id int64, input PurchaseInput) (models.Purchase, error) {
	var upd models.PurchaseUpdate

	if input.ItemName != nil && strings.TrimSpace(*input.ItemName) != "" {
		v, err := validation.ValidateTextField(*input.ItemName, validation.MaxItemNameLength, "item_name")
		if err != nil {
			return models.Purchase{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		upd.ItemName = &v
	}
	if input.Category != nil && strings.TrimSpace(*input.Category) != "" {
		v, err := validation.ValidateTextField(*input.Category, validation.MaxCategoryLength, "category")
		if err != nil {
			return models.Purchase{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		upd.Category = &v
	}
	if input.Price != nil && strings.TrimSpace(fmt.Sprint(input.Price)) != "" {
		v, err := parseInputPrice(input.Price)
		if err != nil {
			return models.Purchase{}, err
		}
		upd.Price = &v
	}
	if input.PurchaseDate != nil && strings.TrimSpace(*input.PurchaseDate) != "" {
		v, err := parseInputDate(*input.PurchaseDate)
		if err != nil {
			return models.Purchase{}, err
		}
		upd.PurchaseDate = &v
	}

	if upd.Empty() {
		return models.Purchase{}, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	updated, err := s.repo.Update(ctx, userID, id, upd)
	if err != nil {
		return models.Purchase{}, err
	}
	s.invalidate(userID)
	logger.FromContext(ctx).Info("Purchase updated", "purchaseID", id)
	return updated, nil
}

func (s *purchaseServiceImpl) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.invalidate(userID)
	logger.FromContext(ctx).Info("Purchase deleted", "purchaseID", id)
	return nil
}

func parseInputPrice(raw any) (decimal.Decimal, error) {
	var text string
	switch v := raw.(type) {
	case string:
		text = v
	case json.Number:
		text = v.String()
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: price must be a number or a string", ErrInvalidInput)
	}
	price, err := importer.ParsePrice(text)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: price %q %v", ErrInvalidInput, text, err)
	}
	return price, nil
}

func parseInputDate(s string) (models.Date, error) {
	date, ok := importer.ParseLenientDate(s)
	if !ok {
		return models.Date{}, fmt.Errorf("%w: purchase_date %q is not a valid date", ErrInvalidInput, s)
	}
	return date, nil
}
