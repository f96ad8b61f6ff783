package filter

import (
	"context"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"
)

// Predicate is a WHERE fragment contributed by one field or field group.
type Predicate struct {
	Fields []string
	SQL    string
	Args   []any
}

// Query is the composed, validated filter state of one request.
type Query struct {
	set        *Set
	predicates []Predicate
	order      []Order
	problems   []Problem
}

// Set returns the filter set the query was parsed from.
func (q *Query) Set() *Set {
	return q.set
}

// Predicates returns the active predicates in composition order.
func (q *Query) Predicates() []Predicate {
	return q.predicates
}

// Problems returns the rejected parameters.
func (q *Query) Problems() []Problem {
	return q.problems
}

// Err returns a ValidationError when any parameter was rejected.
func (q *Query) Err() error {
	if len(q.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: q.problems}
}

// Scope restricts db to the filtered table and applies every predicate.
// Predicates use IN subqueries, so parent rows are never duplicated by
// multi-valued relations.
func (q *Query) Scope(db *gorm.DB) *gorm.DB {
	tx := db.Table(q.set.Table)
	for _, predicate := range q.predicates {
		tx = tx.Where(predicate.SQL, predicate.Args...)
	}
	return tx
}

func (q *Query) ordered(db *gorm.DB) *gorm.DB {
	for _, order := range q.order {
		expr := order.Expr
		if order.Desc {
			expr += " DESC"
		}
		db = db.Order(expr)
	}
	return db
}

// Count returns the number of rows matching the query.
func (q *Query) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	if err := q.Scope(db.WithContext(ctx)).Count(&total).Error; err != nil {
		return 0, eris.Wrapf(err, "counting %s", q.set.Name)
	}
	return total, nil
}

// Find loads one page of matching rows into dest, a pointer to a slice of models.
// Scopes are applied after filtering, typically to preload relations.
func (q *Query) Find(ctx context.Context, db *gorm.DB, page Page, dest any, scopes ...func(*gorm.DB) *gorm.DB) error {
	tx := q.ordered(q.Scope(db.WithContext(ctx)))
	if page.Size > 0 {
		tx = tx.Offset(page.Offset()).Limit(page.Size)
	}
	if len(scopes) > 0 {
		tx = tx.Scopes(scopes...)
	}
	if err := tx.Find(dest).Error; err != nil {
		return eris.Wrapf(err, "listing %s", q.set.Name)
	}
	return nil
}
