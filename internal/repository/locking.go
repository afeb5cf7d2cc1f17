package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WithRowLock adds SELECT ... FOR UPDATE on dialects that support it.
// The sqlite driver is only used by tests and has a single writer, so the
// clause is skipped there (sqlite rejects the syntax).
func WithRowLock(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}
