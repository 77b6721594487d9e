package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "kvorum/contexts/identity-access/auth-service/application"
	"kvorum/contexts/identity-access/auth-service/domain/entities"
	domainerrors "kvorum/contexts/identity-access/auth-service/domain/errors"
	"kvorum/contexts/identity-access/auth-service/ports"
	"kvorum/internal/shared/credentials"
	"kvorum/internal/shared/validation"
)

const defaultSessionTTL = 24 * time.Hour

// OtpRequestResult tells the caller when the challenge lapses. The code
// itself travels only through the SMS port.
type OtpRequestResult struct {
	Phone     string
	ExpiresAt time.Time
}

// AuthUseCase issues sessions from phone OTP verification and from public
// sheet tokens.
type AuthUseCase struct {
	Challenges ports.ChallengeRepository
	Sessions   ports.SessionRepository
	Tokens     ports.TokenDirectory
	Sms        ports.SmsSender
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	OtpSecret  string
	SessionTTL time.Duration
	Logger     *slog.Logger
}

// RequestOtp mints a fresh challenge for the phone, superseding any live
// one, and hands the plaintext code to the SMS dispatcher. The response is
// uniform regardless of prior state.
func (uc AuthUseCase) RequestOtp(ctx context.Context, rawPhone string) (OtpRequestResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	phone, ok := validation.NormalizePhone(rawPhone)
	if !ok {
		return OtpRequestResult{}, &validation.Error{Violations: []validation.Violation{
			{Field: "phone", Message: "must be +380 followed by 9 digits"},
		}}
	}

	code, err := credentials.GenerateOtpCode()
	if err != nil {
		return OtpRequestResult{}, err
	}
	challengeID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return OtpRequestResult{}, err
	}
	now := uc.Clock.Now()
	challenge := entities.OtpChallenge{
		ChallengeID:  challengeID,
		Phone:        phone,
		CodeHash:     credentials.HashOtpCode(phone, code, uc.OtpSecret),
		ExpiresAt:    now.Add(credentials.OtpTTL),
		AttemptsLeft: credentials.OtpMaxAttempts,
		CreatedAt:    now,
	}
	if err := uc.Challenges.SaveChallenge(ctx, challenge); err != nil {
		return OtpRequestResult{}, err
	}
	if err := uc.Sms.SendOtp(ctx, phone, code); err != nil {
		return OtpRequestResult{}, err
	}

	logger.Info("otp challenge issued",
		"event", "otp_requested",
		"module", "identity-access/auth-service",
		"layer", "application",
		"challenge_id", challenge.ChallengeID,
	)
	return OtpRequestResult{Phone: phone, ExpiresAt: challenge.ExpiresAt}, nil
}

// VerifyOtp checks the code against the live challenge and issues a
// phone-bound session. The attempt counter is consumed before the hash
// comparison so parallel guesses cannot exceed the cap. Every failure mode
// maps to ErrOtpRejected.
func (uc AuthUseCase) VerifyOtp(ctx context.Context, rawPhone, code string) (entities.Session, error) {
	logger := application.ResolveLogger(uc.Logger)

	phone, ok := validation.NormalizePhone(rawPhone)
	if !ok || !validation.IsOtpCode(code) {
		return entities.Session{}, domainerrors.ErrOtpRejected
	}

	challenge, err := uc.Challenges.GetChallengeByPhone(ctx, phone)
	if errors.Is(err, domainerrors.ErrChallengeNotFound) {
		return entities.Session{}, domainerrors.ErrOtpRejected
	}
	if err != nil {
		return entities.Session{}, err
	}

	now := uc.Clock.Now()
	if !now.Before(challenge.ExpiresAt) {
		return entities.Session{}, domainerrors.ErrOtpRejected
	}

	consumed, err := uc.Challenges.ConsumeAttempt(ctx, challenge.ChallengeID)
	if err != nil {
		return entities.Session{}, err
	}
	if !consumed {
		return entities.Session{}, domainerrors.ErrOtpRejected
	}

	if !credentials.DigestsEqual(credentials.HashOtpCode(phone, code, uc.OtpSecret), challenge.CodeHash) {
		return entities.Session{}, domainerrors.ErrOtpRejected
	}

	if err := uc.Challenges.DeleteChallenge(ctx, phone); err != nil {
		return entities.Session{}, err
	}

	session, err := uc.mintSession(ctx, entities.Session{
		Kind:  entities.SessionKindPhone,
		Phone: phone,
	})
	if err != nil {
		return entities.Session{}, err
	}

	logger.Info("phone session issued",
		"event", "otp_verified",
		"module", "identity-access/auth-service",
		"layer", "application",
		"session_id", session.SessionID,
	)
	return session, nil
}

// ResolveToken turns a public sheet token into a voter session scoped to one
// owner on one sheet. Every failure mode maps to ErrTokenRejected.
func (uc AuthUseCase) ResolveToken(ctx context.Context, token string) (entities.Session, error) {
	token = strings.TrimSpace(token)
	if !credentials.IsValidPublicToken(token) {
		return entities.Session{}, domainerrors.ErrTokenRejected
	}

	grant, found, err := uc.Tokens.ResolveTokenHash(ctx, credentials.HashToken(token))
	if err != nil {
		return entities.Session{}, err
	}
	now := uc.Clock.Now()
	if !found || !now.Before(grant.SheetExpiresAt) {
		return entities.Session{}, domainerrors.ErrTokenRejected
	}

	return uc.mintSession(ctx, entities.Session{
		Kind:    entities.SessionKindVoter,
		SheetID: grant.SheetID,
		OwnerID: grant.OwnerID,
	})
}

// ResolveSession maps the opaque handle back to its principal.
func (uc AuthUseCase) ResolveSession(ctx context.Context, sessionID string) (entities.Session, error) {
	session, err := uc.Sessions.GetSession(ctx, strings.TrimSpace(sessionID))
	if errors.Is(err, domainerrors.ErrSessionNotFound) {
		return entities.Session{}, domainerrors.ErrSessionRejected
	}
	if err != nil {
		return entities.Session{}, err
	}
	if !session.Live(uc.Clock.Now()) {
		return entities.Session{}, domainerrors.ErrSessionRejected
	}
	return session, nil
}

func (uc AuthUseCase) mintSession(ctx context.Context, template entities.Session) (entities.Session, error) {
	sessionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Session{}, err
	}
	ttl := uc.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	now := uc.Clock.Now()
	session := template
	session.SessionID = sessionID
	session.CreatedAt = now
	session.ExpiresAt = now.Add(ttl)
	if err := uc.Sessions.SaveSession(ctx, session); err != nil {
		return entities.Session{}, err
	}
	return session, nil
}
