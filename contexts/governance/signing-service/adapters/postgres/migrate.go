package postgresadapter

import "gorm.io/gorm"

// Migrate creates or updates the signing tables. Called once at startup by
// the composition root.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&documentModel{},
		&processedEventModel{},
	)
}
