package ports

import (
	"context"
	"time"

	"kvorum/contexts/identity-access/auth-service/domain/entities"
)

// ChallengeRepository stores live OTP challenges keyed by phone.
type ChallengeRepository interface {
	// SaveChallenge upserts by phone; a new challenge supersedes any live
	// one for the same number.
	SaveChallenge(ctx context.Context, challenge entities.OtpChallenge) error

	GetChallengeByPhone(ctx context.Context, phone string) (entities.OtpChallenge, error)

	// ConsumeAttempt atomically decrements the attempt counter while it is
	// still positive. Returns false once the cap is exhausted. Callers
	// decrement before comparing codes so parallel guesses cannot exceed
	// the cap.
	ConsumeAttempt(ctx context.Context, challengeID string) (bool, error)

	// DeleteChallenge removes the challenge after successful verification.
	DeleteChallenge(ctx context.Context, phone string) error
}

// SessionRepository stores issued sessions by their opaque id.
type SessionRepository interface {
	SaveSession(ctx context.Context, session entities.Session) error
	GetSession(ctx context.Context, sessionID string) (entities.Session, error)
}

// TokenDirectory resolves a public-token digest to its voting grant. The
// voting engine's sheet access storage backs it.
type TokenDirectory interface {
	ResolveTokenHash(ctx context.Context, tokenHash string) (entities.TokenGrant, bool, error)
}

// SmsSender dispatches the plaintext OTP code. Implementations own delivery;
// the use case never stores or logs the code.
type SmsSender interface {
	SendOtp(ctx context.Context, phone, code string) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
