package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"kvorum/contexts/governance/voting-engine/domain/entities"
	domainerrors "kvorum/contexts/governance/voting-engine/domain/errors"
	"kvorum/internal/shared/events"
	"kvorum/internal/shared/outbox"

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

// ProtocolRepository

func (r *Repository) SaveProtocol(ctx context.Context, protocol entities.Protocol) error {
	row := protocolModelFromEntity(protocol)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("voting_repo_save_protocol_failed", err,
			"protocol_id", protocol.ProtocolID,
		)
	}
	return nil
}

func (r *Repository) GetProtocol(ctx context.Context, protocolID string) (entities.Protocol, error) {
	var row protocolModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(protocolID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Protocol{}, domainerrors.ErrProtocolNotFound
		}
		return entities.Protocol{}, r.logError("voting_repo_get_protocol_failed", err,
			"protocol_id", strings.TrimSpace(protocolID),
		)
	}

	var questionRows []questionModel
	if err := r.db.WithContext(ctx).
		Where("protocol_id = ?", row.ID).
		Order("order_number ASC").
		Find(&questionRows).Error; err != nil {
		return entities.Protocol{}, r.logError("voting_repo_list_questions_failed", err,
			"protocol_id", row.ID,
		)
	}

	protocol := row.toEntity()
	protocol.Questions = make([]entities.Question, 0, len(questionRows))
	for _, q := range questionRows {
		protocol.Questions = append(protocol.Questions, q.toEntity())
	}
	return protocol, nil
}

func (r *Repository) AddQuestion(ctx context.Context, question entities.Question) error {
	row := questionModelFromEntity(question)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateOrderNumber
		}
		return r.logError("voting_repo_add_question_failed", err,
			"protocol_id", question.ProtocolID,
			"question_id", question.QuestionID,
		)
	}
	return nil
}

func (r *Repository) TransitionProtocolStatus(
	ctx context.Context,
	protocolID string,
	from, to entities.ProtocolStatus,
	updatedAt time.Time,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&protocolModel{}).
		Where("id = ?", strings.TrimSpace(protocolID)).
		Where("status = ?", string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("voting_repo_transition_protocol_failed", result.Error,
			"protocol_id", strings.TrimSpace(protocolID),
			"from", string(from),
			"to", string(to),
		)
	}
	return result.RowsAffected > 0, nil
}

// SheetRepository

func (r *Repository) SaveSheet(ctx context.Context, sheet entities.Sheet) error {
	row := sheetModelFromEntity(sheet)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("voting_repo_save_sheet_failed", err, "sheet_id", sheet.SheetID)
	}
	return nil
}

func (r *Repository) GetSheet(ctx context.Context, sheetID string) (entities.Sheet, error) {
	var row sheetModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(sheetID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Sheet{}, domainerrors.ErrSheetNotFound
		}
		return entities.Sheet{}, r.logError("voting_repo_get_sheet_failed", err,
			"sheet_id", strings.TrimSpace(sheetID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetSheetByProtocol(ctx context.Context, protocolID string) (entities.Sheet, bool, error) {
	var row sheetModel
	err := r.db.WithContext(ctx).
		Where("protocol_id = ?", strings.TrimSpace(protocolID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Sheet{}, false, nil
		}
		return entities.Sheet{}, false, r.logError("voting_repo_get_sheet_by_protocol_failed", err,
			"protocol_id", strings.TrimSpace(protocolID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListExpiredOpenSheets(ctx context.Context, now time.Time, limit int) ([]entities.Sheet, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []sheetModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.SheetStatusOpen)).
		Where("expires_at <= ?", now.UTC()).
		Order("expires_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("voting_repo_list_expired_sheets_failed", err)
	}
	sheets := make([]entities.Sheet, 0, len(rows))
	for _, row := range rows {
		sheets = append(sheets, row.toEntity())
	}
	return sheets, nil
}

func (r *Repository) ListSheetsPendingFinalization(ctx context.Context, limit int) ([]entities.Sheet, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []sheetModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN protocols ON protocols.id = sheets.protocol_id").
		Where("sheets.status = ?", string(entities.SheetStatusClosed)).
		Where("protocols.status = ?", string(entities.ProtocolStatusVoting)).
		Order("sheets.closed_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("voting_repo_list_pending_finalization_failed", err)
	}
	sheets := make([]entities.Sheet, 0, len(rows))
	for _, row := range rows {
		sheets = append(sheets, row.toEntity())
	}
	return sheets, nil
}

func (r *Repository) CloseSheet(ctx context.Context, sheetID string, closedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&sheetModel{}).
		Where("id = ?", strings.TrimSpace(sheetID)).
		Where("status = ?", string(entities.SheetStatusOpen)).
		Updates(map[string]any{
			"status":    string(entities.SheetStatusClosed),
			"closed_at": closedAt.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("voting_repo_close_sheet_failed", result.Error,
			"sheet_id", strings.TrimSpace(sheetID),
		)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) SaveAccess(ctx context.Context, access entities.SheetAccess) error {
	row := sheetAccessModel{
		TokenHash: access.TokenHash,
		SheetID:   access.SheetID,
		OwnerID:   access.OwnerID,
		CreatedAt: access.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("voting_repo_save_access_failed", err,
			"sheet_id", access.SheetID,
			"owner_id", access.OwnerID,
		)
	}
	return nil
}

// LookupAccess resolves a token digest to its access row plus the sheet it
// grants. The auth service's token directory is built on this.
func (r *Repository) LookupAccess(ctx context.Context, tokenHash string) (entities.SheetAccess, entities.Sheet, bool, error) {
	var row sheetAccessModel
	err := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.SheetAccess{}, entities.Sheet{}, false, nil
		}
		return entities.SheetAccess{}, entities.Sheet{}, false, r.logError("voting_repo_lookup_access_failed", err)
	}

	sheet, err := r.GetSheet(ctx, row.SheetID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrSheetNotFound) {
			return entities.SheetAccess{}, entities.Sheet{}, false, nil
		}
		return entities.SheetAccess{}, entities.Sheet{}, false, err
	}
	return entities.SheetAccess{
		SheetID:   row.SheetID,
		OwnerID:   row.OwnerID,
		TokenHash: row.TokenHash,
		CreatedAt: row.CreatedAt.UTC(),
	}, sheet, true, nil
}

func (r *Repository) SaveArtifact(ctx context.Context, artifact entities.Artifact) error {
	row := sheetArtifactModel{
		SheetID:     artifact.SheetID,
		Kind:        artifact.Kind,
		FileName:    artifact.FileName,
		ContentType: artifact.ContentType,
		Data:        artifact.Data,
		CreatedAt:   artifact.CreatedAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sheet_id"}, {Name: "kind"}},
		DoUpdates: clause.Assignments(map[string]any{
			"file_name":    row.FileName,
			"content_type": row.ContentType,
			"data":         row.Data,
			"created_at":   row.CreatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("voting_repo_save_artifact_failed", create.Error,
			"sheet_id", artifact.SheetID,
			"kind", artifact.Kind,
		)
	}
	return nil
}

func (r *Repository) GetArtifact(ctx context.Context, sheetID, kind string) (entities.Artifact, bool, error) {
	var row sheetArtifactModel
	err := r.db.WithContext(ctx).
		Where("sheet_id = ?", strings.TrimSpace(sheetID)).
		Where("kind = ?", kind).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Artifact{}, false, nil
		}
		return entities.Artifact{}, false, r.logError("voting_repo_get_artifact_failed", err,
			"sheet_id", strings.TrimSpace(sheetID),
			"kind", kind,
		)
	}
	return entities.Artifact{
		SheetID:     row.SheetID,
		Kind:        row.Kind,
		FileName:    row.FileName,
		ContentType: row.ContentType,
		Data:        append([]byte(nil), row.Data...),
		CreatedAt:   row.CreatedAt.UTC(),
	}, true, nil
}

// VoteRepository

func (r *Repository) UpsertVote(ctx context.Context, vote entities.Vote) error {
	row := voteModel{
		SheetID:    vote.SheetID,
		OwnerID:    vote.OwnerID,
		QuestionID: vote.QuestionID,
		Choice:     string(vote.Choice),
		CastAt:     vote.CastAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sheet_id"}, {Name: "owner_id"}, {Name: "question_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"choice":  row.Choice,
			"cast_at": row.CastAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("voting_repo_upsert_vote_failed", create.Error,
			"sheet_id", vote.SheetID,
			"owner_id", vote.OwnerID,
			"question_id", vote.QuestionID,
		)
	}
	return nil
}

func (r *Repository) ListVotesBySheet(ctx context.Context, sheetID string) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("sheet_id = ?", strings.TrimSpace(sheetID)).
		Order("owner_id ASC, question_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("voting_repo_list_votes_failed", err,
			"sheet_id", strings.TrimSpace(sheetID),
		)
	}
	votes := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		votes = append(votes, entities.Vote{
			SheetID:    row.SheetID,
			OwnerID:    row.OwnerID,
			QuestionID: row.QuestionID,
			Choice:     entities.Choice(row.Choice),
			CastAt:     row.CastAt.UTC(),
		})
	}
	return votes, nil
}

// ResultRepository

func (r *Repository) SaveResults(ctx context.Context, results []entities.QuestionResult) error {
	for _, result := range results {
		row := questionResultModel{
			SheetID:           result.SheetID,
			QuestionID:        result.QuestionID,
			OrderNumber:       result.OrderNumber,
			RequiresTwoThirds: result.RequiresTwoThirds,
			ForCount:          result.ForCount,
			AgainstCount:      result.AgainstCount,
			Passed:            result.Passed,
			FinalizedAt:       result.FinalizedAt.UTC(),
		}
		create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sheet_id"}, {Name: "question_id"}},
			DoNothing: true,
		}).Create(&row)
		if create.Error != nil {
			return r.logError("voting_repo_save_results_failed", create.Error,
				"sheet_id", result.SheetID,
				"question_id", result.QuestionID,
			)
		}
	}
	return nil
}

func (r *Repository) ListResultsBySheet(ctx context.Context, sheetID string) ([]entities.QuestionResult, error) {
	var rows []questionResultModel
	if err := r.db.WithContext(ctx).
		Where("sheet_id = ?", strings.TrimSpace(sheetID)).
		Order("order_number ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("voting_repo_list_results_failed", err,
			"sheet_id", strings.TrimSpace(sheetID),
		)
	}
	results := make([]entities.QuestionResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, entities.QuestionResult{
			SheetID:           row.SheetID,
			QuestionID:        row.QuestionID,
			OrderNumber:       row.OrderNumber,
			RequiresTwoThirds: row.RequiresTwoThirds,
			ForCount:          row.ForCount,
			AgainstCount:      row.AgainstCount,
			Passed:            row.Passed,
			FinalizedAt:       row.FinalizedAt.UTC(),
		})
	}
	return results, nil
}

// OwnerDirectory / AssociationDirectory (registry-owned tables, read only)

func (r *Repository) GetOwner(ctx context.Context, ownerID string) (entities.Owner, error) {
	var row ownerModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(ownerID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Owner{}, domainerrors.ErrOwnerNotFound
		}
		return entities.Owner{}, r.logError("voting_repo_get_owner_failed", err,
			"owner_id", strings.TrimSpace(ownerID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListOwnersByAssociation(ctx context.Context, associationID string) ([]entities.Owner, error) {
	var rows []ownerModel
	if err := r.db.WithContext(ctx).
		Where("association_id = ?", strings.TrimSpace(associationID)).
		Order("last_name ASC, first_name ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("voting_repo_list_owners_failed", err,
			"association_id", strings.TrimSpace(associationID),
		)
	}
	owners := make([]entities.Owner, 0, len(rows))
	for _, row := range rows {
		owners = append(owners, row.toEntity())
	}
	return owners, nil
}

func (r *Repository) GetAssociation(ctx context.Context, associationID string) (entities.Association, error) {
	var row associationModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(associationID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Association{}, domainerrors.ErrAssociationNotFound
		}
		return entities.Association{}, r.logError("voting_repo_get_association_failed", err,
			"association_id", strings.TrimSpace(associationID),
		)
	}
	return row.toEntity(), nil
}

// OutboxRepository

func (r *Repository) AppendOutbox(ctx context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("voting_repo_append_outbox_marshal_failed", err,
			"event_id", envelope.EventID,
		)
	}
	row := outboxModel{
		OutboxID:  strings.TrimSpace(envelope.EventID),
		EventType: envelope.EventType,
		Payload:   payload,
		Status:    outbox.StatusPending,
		CreatedAt: envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("voting_repo_append_outbox_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outbox.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("voting_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]outbox.Message, 0, len(rows))
	for _, row := range rows {
		items = append(items, outbox.Message{
			OutboxID:  row.OutboxID,
			EventType: row.EventType,
			Payload:   append([]byte(nil), row.Payload...),
			Status:    row.Status,
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Where("status = ?", outbox.StatusPending).
		Updates(map[string]any{
			"status":       outbox.StatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("voting_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "governance/voting-engine",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("voting repository operation failed", fields...)
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
