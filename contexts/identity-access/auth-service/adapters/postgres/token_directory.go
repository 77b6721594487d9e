package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"kvorum/contexts/identity-access/auth-service/domain/entities"

	"gorm.io/gorm"
)

// TokenDirectory resolves public-token digests against the voting engine's
// sheet access tables. Read-only projection; the voting engine owns the
// rows.
type TokenDirectory struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewTokenDirectory(db *gorm.DB, logger *slog.Logger) *TokenDirectory {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenDirectory{db: db, logger: logger}
}

type tokenGrantRow struct {
	SheetID   string    `gorm:"column:sheet_id"`
	OwnerID   string    `gorm:"column:owner_id"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
}

func (d *TokenDirectory) ResolveTokenHash(ctx context.Context, tokenHash string) (entities.TokenGrant, bool, error) {
	var row tokenGrantRow
	err := d.db.WithContext(ctx).
		Table("sheet_access").
		Select("sheet_access.sheet_id, sheet_access.owner_id, sheets.expires_at").
		Joins("JOIN sheets ON sheets.id = sheet_access.sheet_id").
		Where("sheet_access.token_hash = ?", tokenHash).
		Take(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.TokenGrant{}, false, nil
		}
		d.logger.Error("token directory lookup failed",
			"event", "auth_token_lookup_failed",
			"module", "identity-access/auth-service",
			"layer", "adapter",
			"error", err.Error(),
		)
		return entities.TokenGrant{}, false, err
	}
	return entities.TokenGrant{
		SheetID:        row.SheetID,
		OwnerID:        row.OwnerID,
		SheetExpiresAt: row.ExpiresAt.UTC(),
	}, true, nil
}
