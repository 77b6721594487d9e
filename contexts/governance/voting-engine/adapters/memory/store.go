package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"kvorum/contexts/governance/voting-engine/domain/entities"
	domainerrors "kvorum/contexts/governance/voting-engine/domain/errors"
	"kvorum/internal/shared/events"
	"kvorum/internal/shared/outbox"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   outbox.Message
	published bool
}

// Store is the in-memory adapter backing tests and local runs. It implements
// every voting-engine port plus Clock and IDGenerator, with seeding setters
// for registry-owned data.
type Store struct {
	mu sync.RWMutex

	protocols    map[string]entities.Protocol
	sheets       map[string]entities.Sheet
	access       map[string]entities.SheetAccess // keyed by token hash
	artifacts    map[string]entities.Artifact    // keyed by sheetID|kind
	votes        map[string]entities.Vote        // keyed by sheetID|ownerID|questionID
	results      map[string][]entities.QuestionResult
	owners       map[string]entities.Owner
	ownersByAssn map[string][]string
	associations map[string]entities.Association
	outboxRows   map[string]outboxRecord

	now time.Time
}

func NewStore() *Store {
	return &Store{
		protocols:    make(map[string]entities.Protocol),
		sheets:       make(map[string]entities.Sheet),
		access:       make(map[string]entities.SheetAccess),
		artifacts:    make(map[string]entities.Artifact),
		votes:        make(map[string]entities.Vote),
		results:      make(map[string][]entities.QuestionResult),
		owners:       make(map[string]entities.Owner),
		ownersByAssn: make(map[string][]string),
		associations: make(map[string]entities.Association),
		outboxRows:   make(map[string]outboxRecord),
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

// Seeding helpers for registry-owned data.

func (s *Store) SetOwner(associationID string, owner entities.Owner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(owner.OwnerID)
	if _, exists := s.owners[id]; !exists {
		s.ownersByAssn[associationID] = append(s.ownersByAssn[associationID], id)
	}
	s.owners[id] = owner
}

func (s *Store) SetAssociation(association entities.Association) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.associations[strings.TrimSpace(association.AssociationID)] = association
}

// ProtocolRepository

func (s *Store) SaveProtocol(_ context.Context, protocol entities.Protocol) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.protocols[protocol.ProtocolID] = protocol
	return nil
}

func (s *Store) GetProtocol(_ context.Context, protocolID string) (entities.Protocol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	protocol, ok := s.protocols[strings.TrimSpace(protocolID)]
	if !ok {
		return entities.Protocol{}, domainerrors.ErrProtocolNotFound
	}
	questions := append([]entities.Question(nil), protocol.Questions...)
	sort.Slice(questions, func(i, j int) bool {
		return questions[i].OrderNumber < questions[j].OrderNumber
	})
	protocol.Questions = questions
	return protocol, nil
}

func (s *Store) AddQuestion(_ context.Context, question entities.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	protocol, ok := s.protocols[question.ProtocolID]
	if !ok {
		return domainerrors.ErrProtocolNotFound
	}
	protocol.Questions = append(protocol.Questions, question)
	s.protocols[question.ProtocolID] = protocol
	return nil
}

func (s *Store) TransitionProtocolStatus(
	_ context.Context,
	protocolID string,
	from, to entities.ProtocolStatus,
	updatedAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	protocol, ok := s.protocols[strings.TrimSpace(protocolID)]
	if !ok {
		return false, domainerrors.ErrProtocolNotFound
	}
	if protocol.Status != from {
		return false, nil
	}
	protocol.Status = to
	protocol.UpdatedAt = updatedAt.UTC()
	s.protocols[protocol.ProtocolID] = protocol
	return true, nil
}

// SheetRepository

func (s *Store) SaveSheet(_ context.Context, sheet entities.Sheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// One sheet per protocol, matching the database unique index.
	for _, existing := range s.sheets {
		if existing.ProtocolID == sheet.ProtocolID && existing.SheetID != sheet.SheetID {
			return domainerrors.ErrConflict
		}
	}
	s.sheets[sheet.SheetID] = sheet
	return nil
}

func (s *Store) GetSheet(_ context.Context, sheetID string) (entities.Sheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sheet, ok := s.sheets[strings.TrimSpace(sheetID)]
	if !ok {
		return entities.Sheet{}, domainerrors.ErrSheetNotFound
	}
	return sheet, nil
}

func (s *Store) GetSheetByProtocol(_ context.Context, protocolID string) (entities.Sheet, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sheet := range s.sheets {
		if sheet.ProtocolID == strings.TrimSpace(protocolID) {
			return sheet, true, nil
		}
	}
	return entities.Sheet{}, false, nil
}

func (s *Store) ListExpiredOpenSheets(_ context.Context, now time.Time, limit int) ([]entities.Sheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var expired []entities.Sheet
	for _, sheet := range s.sheets {
		if sheet.Status == entities.SheetStatusOpen && !now.Before(sheet.ExpiresAt) {
			expired = append(expired, sheet)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].ExpiresAt.Before(expired[j].ExpiresAt)
	})
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	return expired, nil
}

func (s *Store) ListSheetsPendingFinalization(_ context.Context, limit int) ([]entities.Sheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []entities.Sheet
	for _, sheet := range s.sheets {
		protocol, ok := s.protocols[sheet.ProtocolID]
		if !ok {
			continue
		}
		if sheet.Status == entities.SheetStatusClosed && protocol.Status == entities.ProtocolStatusVoting {
			pending = append(pending, sheet)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *Store) CloseSheet(_ context.Context, sheetID string, closedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sheet, ok := s.sheets[strings.TrimSpace(sheetID)]
	if !ok {
		return false, domainerrors.ErrSheetNotFound
	}
	if sheet.Status != entities.SheetStatusOpen {
		return false, nil
	}
	at := closedAt.UTC()
	sheet.Status = entities.SheetStatusClosed
	sheet.ClosedAt = &at
	s.sheets[sheet.SheetID] = sheet
	return true, nil
}

func (s *Store) SaveAccess(_ context.Context, access entities.SheetAccess) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access[access.TokenHash] = access
	return nil
}

// LookupAccess resolves a token digest to its sheet access row. The auth
// service reaches this through its TokenDirectory port.
func (s *Store) LookupAccess(_ context.Context, tokenHash string) (entities.SheetAccess, entities.Sheet, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	access, ok := s.access[tokenHash]
	if !ok {
		return entities.SheetAccess{}, entities.Sheet{}, false, nil
	}
	sheet, ok := s.sheets[access.SheetID]
	if !ok {
		return entities.SheetAccess{}, entities.Sheet{}, false, nil
	}
	return access, sheet, true, nil
}

func (s *Store) SaveArtifact(_ context.Context, artifact entities.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[artifact.SheetID+"|"+artifact.Kind] = artifact
	return nil
}

func (s *Store) GetArtifact(_ context.Context, sheetID, kind string) (entities.Artifact, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	artifact, ok := s.artifacts[strings.TrimSpace(sheetID)+"|"+kind]
	return artifact, ok, nil
}

// VoteRepository

func (s *Store) UpsertVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[vote.SheetID+"|"+vote.OwnerID+"|"+vote.QuestionID] = vote
	return nil
}

func (s *Store) ListVotesBySheet(_ context.Context, sheetID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var votes []entities.Vote
	for _, vote := range s.votes {
		if vote.SheetID == strings.TrimSpace(sheetID) {
			votes = append(votes, vote)
		}
	}
	sort.Slice(votes, func(i, j int) bool {
		if votes[i].OwnerID == votes[j].OwnerID {
			return votes[i].QuestionID < votes[j].QuestionID
		}
		return votes[i].OwnerID < votes[j].OwnerID
	})
	return votes, nil
}

// ResultRepository

func (s *Store) SaveResults(_ context.Context, results []entities.QuestionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, result := range results {
		// First write wins, matching the insert-or-ignore semantics of
		// the database adapter, so a resumed finalization cannot
		// duplicate a question's row.
		if hasResult(s.results[result.SheetID], result.QuestionID) {
			continue
		}
		s.results[result.SheetID] = append(s.results[result.SheetID], result)
	}
	return nil
}

func hasResult(results []entities.QuestionResult, questionID string) bool {
	for _, result := range results {
		if result.QuestionID == questionID {
			return true
		}
	}
	return false
}

func (s *Store) ListResultsBySheet(_ context.Context, sheetID string) ([]entities.QuestionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := append([]entities.QuestionResult(nil), s.results[strings.TrimSpace(sheetID)]...)
	sort.Slice(results, func(i, j int) bool {
		return results[i].OrderNumber < results[j].OrderNumber
	})
	return results, nil
}

// OwnerDirectory

func (s *Store) GetOwner(_ context.Context, ownerID string) (entities.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.owners[strings.TrimSpace(ownerID)]
	if !ok {
		return entities.Owner{}, domainerrors.ErrOwnerNotFound
	}
	return owner, nil
}

func (s *Store) ListOwnersByAssociation(_ context.Context, associationID string) ([]entities.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.ownersByAssn[strings.TrimSpace(associationID)]
	owners := make([]entities.Owner, 0, len(ids))
	for _, id := range ids {
		owners = append(owners, s.owners[id])
	}
	return owners, nil
}

// AssociationDirectory

func (s *Store) GetAssociation(_ context.Context, associationID string) (entities.Association, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	association, ok := s.associations[strings.TrimSpace(associationID)]
	if !ok {
		return entities.Association{}, domainerrors.ErrAssociationNotFound
	}
	return association, nil
}

// OutboxRepository

func (s *Store) AppendOutbox(_ context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := envelope.EventID
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := s.outboxRows[id]; exists {
		return nil
	}
	s.outboxRows[id] = outboxRecord{message: outbox.Message{
		OutboxID:  id,
		EventType: envelope.EventType,
		Payload:   payload,
		Status:    outbox.StatusPending,
		CreatedAt: envelope.OccurredAt.UTC(),
	}}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]outbox.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []outbox.Message
	for _, record := range s.outboxRows {
		if !record.published {
			pending = append(pending, record.message)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outboxRows[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	record.published = true
	record.message.Status = outbox.StatusPublished
	s.outboxRows[outboxID] = record
	return nil
}
