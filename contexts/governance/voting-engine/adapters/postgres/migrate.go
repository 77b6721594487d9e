package postgresadapter

import "gorm.io/gorm"

// Migrate creates or updates the voting tables. Called once at startup by
// the composition root.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&protocolModel{},
		&questionModel{},
		&sheetModel{},
		&sheetAccessModel{},
		&sheetArtifactModel{},
		&voteModel{},
		&questionResultModel{},
		&ownerModel{},
		&associationModel{},
		&outboxModel{},
	)
}
