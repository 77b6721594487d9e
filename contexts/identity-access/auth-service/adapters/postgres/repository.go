package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"kvorum/contexts/identity-access/auth-service/domain/entities"
	domainerrors "kvorum/contexts/identity-access/auth-service/domain/errors"

	"github.com/google/uuid"
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

// ChallengeRepository

func (r *Repository) SaveChallenge(ctx context.Context, challenge entities.OtpChallenge) error {
	row := challengeModelFromEntity(challenge)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "phone"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"id", "code_hash", "expires_at", "attempts_left", "created_at",
			}),
		}).
		Create(&row).
		Error
	if err != nil {
		return r.logError("auth_repo_save_challenge_failed", err,
			"challenge_id", challenge.ChallengeID,
		)
	}
	return nil
}

func (r *Repository) GetChallengeByPhone(ctx context.Context, phone string) (entities.OtpChallenge, error) {
	var row challengeModel
	err := r.db.WithContext(ctx).
		Where("phone = ?", strings.TrimSpace(phone)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.OtpChallenge{}, domainerrors.ErrChallengeNotFound
		}
		return entities.OtpChallenge{}, r.logError("auth_repo_get_challenge_failed", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) ConsumeAttempt(ctx context.Context, challengeID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&challengeModel{}).
		Where("id = ?", strings.TrimSpace(challengeID)).
		Where("attempts_left > 0").
		Update("attempts_left", gorm.Expr("attempts_left - 1"))
	if result.Error != nil {
		return false, r.logError("auth_repo_consume_attempt_failed", result.Error,
			"challenge_id", strings.TrimSpace(challengeID),
		)
	}
	return result.RowsAffected == 1, nil
}

func (r *Repository) DeleteChallenge(ctx context.Context, phone string) error {
	err := r.db.WithContext(ctx).
		Where("phone = ?", strings.TrimSpace(phone)).
		Delete(&challengeModel{}).
		Error
	if err != nil {
		return r.logError("auth_repo_delete_challenge_failed", err)
	}
	return nil
}

// SessionRepository

func (r *Repository) SaveSession(ctx context.Context, session entities.Session) error {
	row := sessionModelFromEntity(session)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("auth_repo_save_session_failed", err,
			"session_id", session.SessionID,
		)
	}
	return nil
}

func (r *Repository) GetSession(ctx context.Context, sessionID string) (entities.Session, error) {
	var row sessionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(sessionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Session{}, domainerrors.ErrSessionNotFound
		}
		return entities.Session{}, r.logError("auth_repo_get_session_failed", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "identity-access/auth-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("auth repository operation failed", fields...)
	return err
}
