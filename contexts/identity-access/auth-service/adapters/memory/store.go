package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"kvorum/contexts/identity-access/auth-service/domain/entities"
	domainerrors "kvorum/contexts/identity-access/auth-service/domain/errors"

	"github.com/google/uuid"
)

// Store is the in-memory adapter backing tests and local runs. It implements
// ChallengeRepository and SessionRepository plus Clock and IDGenerator.
type Store struct {
	mu sync.RWMutex

	challenges map[string]entities.OtpChallenge // keyed by phone
	sessions   map[string]entities.Session

	now time.Time
}

func NewStore() *Store {
	return &Store{
		challenges: make(map[string]entities.OtpChallenge),
		sessions:   make(map[string]entities.Session),
	}
}

// SetNow pins the clock for tests. Zero means wall time.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.now.IsZero() {
		return time.Now().UTC()
	}
	return s.now
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// ChallengeRepository

func (s *Store) SaveChallenge(_ context.Context, challenge entities.OtpChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[challenge.Phone] = challenge
	return nil
}

func (s *Store) GetChallengeByPhone(_ context.Context, phone string) (entities.OtpChallenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	challenge, ok := s.challenges[strings.TrimSpace(phone)]
	if !ok {
		return entities.OtpChallenge{}, domainerrors.ErrChallengeNotFound
	}
	return challenge, nil
}

func (s *Store) ConsumeAttempt(_ context.Context, challengeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for phone, challenge := range s.challenges {
		if challenge.ChallengeID != challengeID {
			continue
		}
		if challenge.AttemptsLeft <= 0 {
			return false, nil
		}
		challenge.AttemptsLeft--
		s.challenges[phone] = challenge
		return true, nil
	}
	return false, domainerrors.ErrChallengeNotFound
}

func (s *Store) DeleteChallenge(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, strings.TrimSpace(phone))
	return nil
}

// SessionRepository

func (s *Store) SaveSession(_ context.Context, session entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = session
	return nil
}

func (s *Store) GetSession(_ context.Context, sessionID string) (entities.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return entities.Session{}, domainerrors.ErrSessionNotFound
	}
	return session, nil
}
