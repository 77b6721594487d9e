package postgresadapter

import "gorm.io/gorm"

// Migrate creates or updates the auth tables. The token directory reads the
// voting engine's tables and migrates nothing.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&challengeModel{},
		&sessionModel{},
	)
}
