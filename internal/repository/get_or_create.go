package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// firstOrInsert returns the row matching where, inserting row when none exists.
// The insert relies on a unique index covering the where columns: a concurrent
// writer that wins the race makes our insert a no-op and its row is re-read.
// The bool result reports whether row was inserted by this call.
func firstOrInsert[T any](db *gorm.DB, where map[string]interface{}, row *T) (*T, bool, error) {
	var existing T
	err := db.Where(where).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected > 0 {
		return row, true, nil
	}

	var winner T
	if err := db.Where(where).First(&winner).Error; err != nil {
		return nil, false, err
	}
	return &winner, false, nil
}
