package database

import (
	"gorm.io/gorm"
)

// KeysetDesc pages a query by id, newest first. It fetches limit+1 rows so the
// caller can tell whether another page exists.
func KeysetDesc(table string, afterID uint64, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if afterID > 0 {
			db = db.Where(table+".id < ?", afterID)
		}
		return db.Order(table + ".id DESC").Limit(limit + 1)
	}
}
