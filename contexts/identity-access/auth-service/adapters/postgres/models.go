package postgresadapter

import (
	"time"

	"kvorum/contexts/identity-access/auth-service/domain/entities"
)

type challengeModel struct {
	ID           string    `gorm:"column:id;uniqueIndex:uq_challenge_id"`
	Phone        string    `gorm:"column:phone;primaryKey"`
	CodeHash     string    `gorm:"column:code_hash"`
	ExpiresAt    time.Time `gorm:"column:expires_at"`
	AttemptsLeft int       `gorm:"column:attempts_left"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (challengeModel) TableName() string { return "otp_challenges" }

func (m challengeModel) toEntity() entities.OtpChallenge {
	return entities.OtpChallenge{
		ChallengeID:  m.ID,
		Phone:        m.Phone,
		CodeHash:     m.CodeHash,
		ExpiresAt:    m.ExpiresAt.UTC(),
		AttemptsLeft: m.AttemptsLeft,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

func challengeModelFromEntity(c entities.OtpChallenge) challengeModel {
	return challengeModel{
		ID:           c.ChallengeID,
		Phone:        c.Phone,
		CodeHash:     c.CodeHash,
		ExpiresAt:    c.ExpiresAt.UTC(),
		AttemptsLeft: c.AttemptsLeft,
		CreatedAt:    c.CreatedAt.UTC(),
	}
}

type sessionModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Kind      string    `gorm:"column:kind"`
	Phone     string    `gorm:"column:phone"`
	SheetID   string    `gorm:"column:sheet_id"`
	OwnerID   string    `gorm:"column:owner_id"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionModel) TableName() string { return "sessions" }

func (m sessionModel) toEntity() entities.Session {
	return entities.Session{
		SessionID: m.ID,
		Kind:      entities.SessionKind(m.Kind),
		Phone:     m.Phone,
		SheetID:   m.SheetID,
		OwnerID:   m.OwnerID,
		ExpiresAt: m.ExpiresAt.UTC(),
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func sessionModelFromEntity(s entities.Session) sessionModel {
	return sessionModel{
		ID:        s.SessionID,
		Kind:      string(s.Kind),
		Phone:     s.Phone,
		SheetID:   s.SheetID,
		OwnerID:   s.OwnerID,
		ExpiresAt: s.ExpiresAt.UTC(),
		CreatedAt: s.CreatedAt.UTC(),
	}
}
