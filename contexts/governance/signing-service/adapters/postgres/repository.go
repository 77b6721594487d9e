package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"kvorum/contexts/governance/signing-service/domain/entities"
	domainerrors "kvorum/contexts/governance/signing-service/domain/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// SystemClock is the production Clock adapter.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator is the production IDGenerator adapter.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// DocumentRepository

func (r *Repository) SaveDocument(ctx context.Context, document entities.Document) error {
	row := documentModelFromEntity(document)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("signing_repo_save_document_failed", err,
			"document_id", document.DocumentID,
			"sheet_id", document.SheetID,
		)
	}
	return nil
}

func (r *Repository) GetDocument(ctx context.Context, documentID string) (entities.Document, error) {
	var row documentModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(documentID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Document{}, domainerrors.ErrDocumentNotFound
		}
		return entities.Document{}, r.logError("signing_repo_get_document_failed", err,
			"document_id", strings.TrimSpace(documentID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetDocumentBySheet(ctx context.Context, sheetID string) (entities.Document, error) {
	var row documentModel
	err := r.db.WithContext(ctx).
		Where("sheet_id = ?", strings.TrimSpace(sheetID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Document{}, domainerrors.ErrDocumentNotFound
		}
		return entities.Document{}, r.logError("signing_repo_get_by_sheet_failed", err,
			"sheet_id", strings.TrimSpace(sheetID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListUnfinishedDocuments(ctx context.Context, limit int) ([]entities.Document, error) {
	var rows []documentModel
	err := r.db.WithContext(ctx).
		Where("status <> ? OR artifact_stored = ?", string(entities.DocumentStatusOrganizerSigned), false).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("signing_repo_list_unfinished_failed", err)
	}
	documents := make([]entities.Document, 0, len(rows))
	for _, row := range rows {
		documents = append(documents, row.toEntity())
	}
	return documents, nil
}

func (r *Repository) AdvanceStatus(
	ctx context.Context,
	documentID string,
	from, to entities.DocumentStatus,
	ownerSignedAt, organizerSignedAt *time.Time,
) (bool, error) {
	if !from.Advances(to) {
		return false, nil
	}
	updates := map[string]any{
		"status":     string(to),
		"updated_at": time.Now().UTC(),
	}
	if ownerSignedAt != nil {
		updates["owner_signed_at"] = ownerSignedAt.UTC()
	}
	if organizerSignedAt != nil {
		updates["organizer_signed_at"] = organizerSignedAt.UTC()
	}

	result := r.db.WithContext(ctx).
		Model(&documentModel{}).
		Where("id = ?", strings.TrimSpace(documentID)).
		Where("status = ?", string(from)).
		Updates(updates)
	if result.Error != nil {
		return false, r.logError("signing_repo_advance_status_failed", result.Error,
			"document_id", strings.TrimSpace(documentID),
			"from", string(from),
			"to", string(to),
		)
	}
	return result.RowsAffected == 1, nil
}

func (r *Repository) SetProviderRef(ctx context.Context, documentID, providerRef string) error {
	result := r.db.WithContext(ctx).
		Model(&documentModel{}).
		Where("id = ?", strings.TrimSpace(documentID)).
		Updates(map[string]any{
			"provider_ref": providerRef,
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return r.logError("signing_repo_set_provider_ref_failed", result.Error,
			"document_id", strings.TrimSpace(documentID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrDocumentNotFound
	}
	return nil
}

func (r *Repository) MarkArtifactStored(ctx context.Context, documentID string) error {
	result := r.db.WithContext(ctx).
		Model(&documentModel{}).
		Where("id = ?", strings.TrimSpace(documentID)).
		Updates(map[string]any{
			"artifact_stored": true,
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return r.logError("signing_repo_mark_artifact_failed", result.Error,
			"document_id", strings.TrimSpace(documentID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrDocumentNotFound
	}
	return nil
}

// EventInbox

func (r *Repository) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	row := processedEventModel{
		EventID:     eventID,
		ProcessedAt: time.Now().UTC(),
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if result.Error != nil {
		return false, r.logError("signing_repo_mark_processed_failed", result.Error,
			"event_id", eventID,
		)
	}
	return result.RowsAffected == 1, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "governance/signing-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("signing repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// The sqlite driver reports constraint failures as plain errors.
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}
