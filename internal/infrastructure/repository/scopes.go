package repository

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/invoicely-api/internal/domain/entity"
	"gorm.io/gorm"
)

// OwnedBy limits a query to rows belonging to userID. A nil user matches
// nothing so a missing owner can never widen a query.
func OwnedBy(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if userID == uuid.Nil {
			return db.Where("1 = 0")
		}
		return db.Where("user_id = ?", userID)
	}
}

// IssuedBetween limits invoices to issue dates in [from, to). Zero bounds are open.
func IssuedBetween(from, to entity.Date) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !from.IsZero() {
			db = db.Where("issue_date >= ?", from)
		}
		if !to.IsZero() {
			db = db.Where("issue_date < ?", to)
		}
		return db
	}
}

// Search matches term case-insensitively against any of columns. LOWER/LIKE
// is used instead of ILIKE so the same query runs on SQLite.
func Search(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + strings.ToLower(term) + "%"
		clauses := make([]string, 0, len(columns))
		args := make([]interface{}, 0, len(columns))
		for _, col := range columns {
			clauses = append(clauses, "LOWER("+col+") LIKE ?")
			args = append(args, pattern)
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}
