// backend/src/repository/filter.go
package repository

import (
	"fmt"
	"strings"

	"github.com/username/expensetracker/backend/src/models"
)

// Filter is a conjunction of fixed SQL predicates with bound arguments.
// Only predicate fragments defined in this file reach the query text;
// request values travel exclusively as arguments.
type Filter struct {
	clauses []string
	args    []any
}

// ForUser starts a filter scoped to one owner. Every query goes through it.
func ForUser(userID int64) *Filter {
	return &Filter{clauses: []string{"user_id = ?"}, args: []any{userID}}
}

func (f *Filter) add(clause string, arg any) *Filter {
	f.clauses = append(f.clauses, clause)
	f.args = append(f.args, arg)
	return f
}

func (f *Filter) ID(id int64) *Filter {
	return f.add("id = ?", id)
}

func (f *Filter) Category(category string) *Filter {
	return f.add("category = ?", category)
}

// From keeps purchases on or after d.
func (f *Filter) From(d models.Date) *Filter {
	return f.add("purchase_date >= ?", d.String())
}

// To keeps purchases on or before d.
func (f *Filter) To(d models.Date) *Filter {
	return f.add("purchase_date <= ?", d.String())
}

func (f *Filter) Month(month int) *Filter {
	return f.add("strftime('%m', purchase_date) = ?", fmt.Sprintf("%02d", month))
}

func (f *Filter) Year(year int) *Filter {
	return f.add("strftime('%Y', purchase_date) = ?", fmt.Sprintf("%04d", year))
}

// Apply adds every set field of pf.
func (f *Filter) Apply(pf models.PurchaseFilter) *Filter {
	if pf.Category != "" {
		f.Category(pf.Category)
	}
	if pf.StartDate != nil {
		f.From(*pf.StartDate)
	}
	if pf.EndDate != nil {
		f.To(*pf.EndDate)
	}
	if pf.Month > 0 {
		f.Month(pf.Month)
	}
	if pf.Year > 0 {
		f.Year(pf.Year)
	}
	return f
}

// Where renders the WHERE clause and its arguments.
func (f *Filter) Where() (string, []any) {
	args := make([]any, len(f.args))
	copy(args, f.args)
	return "WHERE " + strings.Join(f.clauses, " AND "), args
}
