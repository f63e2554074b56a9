package database

import (
	"fmt"

	"github.com/yukikurage/nanban-api/internal/models"
	"gorm.io/gorm"
)

// Models lists every table the API owns, in migration order.
func Models() []any {
	return []any{
		&models.Organization{},
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.WikiPage{},
		&models.Chat{},
		&models.ChatParticipant{},
		&models.Message{},
	}
}

// AutoMigrate creates tables and the unique indexes the services rely on
// for get-or-create and strict-create semantics.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
