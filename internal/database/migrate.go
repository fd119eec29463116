package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/kochbuch/backend/internal/model"
)

// Migrate brings the schema up to date. On Postgres it additionally creates
// the GIN index backing the German full-text search; sqlite answers search
// through a LIKE fallback and needs no index.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Recipe{}, &model.Category{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		log.Printf("Skipping full-text search index on %s", db.Dialector.Name())
		return nil
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_recipes_fulltext
		ON recipes USING gin (to_tsvector('german',
			coalesce(title,'') || ' ' ||
			coalesce(ingredients,'') || ' ' ||
			coalesce(instructions,'') || ' ' ||
			coalesce(notes,'') || ' ' ||
			coalesce(category,'')
		))
	`).Error; err != nil {
		return fmt.Errorf("failed to create full-text search index: %w", err)
	}

	log.Printf("Applied full-text search index")
	return nil
}
