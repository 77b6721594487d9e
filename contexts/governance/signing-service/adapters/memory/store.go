package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"kvorum/contexts/governance/signing-service/domain/entities"
	domainerrors "kvorum/contexts/governance/signing-service/domain/errors"

	"github.com/google/uuid"
)

// Store is the in-memory adapter backing tests and local runs. It implements
// DocumentRepository and EventInbox plus Clock and IDGenerator.
type Store struct {
	mu sync.RWMutex

	documents       map[string]entities.Document
	documentBySheet map[string]string
	processedEvents map[string]struct{}

	now time.Time
}

func NewStore() *Store {
	return &Store{
		documents:       make(map[string]entities.Document),
		documentBySheet: make(map[string]string),
		processedEvents: make(map[string]struct{}),
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

// DocumentRepository

func (s *Store) SaveDocument(_ context.Context, document entities.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sheetID := strings.TrimSpace(document.SheetID)
	if _, exists := s.documentBySheet[sheetID]; exists {
		return domainerrors.ErrConflict
	}
	s.documents[document.DocumentID] = document
	s.documentBySheet[sheetID] = document.DocumentID
	return nil
}

func (s *Store) GetDocument(_ context.Context, documentID string) (entities.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	document, ok := s.documents[strings.TrimSpace(documentID)]
	if !ok {
		return entities.Document{}, domainerrors.ErrDocumentNotFound
	}
	return document, nil
}

func (s *Store) GetDocumentBySheet(_ context.Context, sheetID string) (entities.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	documentID, ok := s.documentBySheet[strings.TrimSpace(sheetID)]
	if !ok {
		return entities.Document{}, domainerrors.ErrDocumentNotFound
	}
	return s.documents[documentID], nil
}

func (s *Store) ListUnfinishedDocuments(_ context.Context, limit int) ([]entities.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	unfinished := make([]entities.Document, 0)
	for _, document := range s.documents {
		if document.Status != entities.DocumentStatusOrganizerSigned || !document.ArtifactStored {
			unfinished = append(unfinished, document)
		}
	}
	sort.Slice(unfinished, func(i, j int) bool {
		return unfinished[i].CreatedAt.Before(unfinished[j].CreatedAt)
	})
	if limit > 0 && len(unfinished) > limit {
		unfinished = unfinished[:limit]
	}
	return unfinished, nil
}

func (s *Store) AdvanceStatus(_ context.Context, documentID string, from, to entities.DocumentStatus, ownerSignedAt, organizerSignedAt *time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	document, ok := s.documents[strings.TrimSpace(documentID)]
	if !ok {
		return false, domainerrors.ErrDocumentNotFound
	}
	if document.Status != from || !from.Advances(to) {
		return false, nil
	}
	document.Status = to
	if ownerSignedAt != nil {
		document.OwnerSignedAt = ownerSignedAt
	}
	if organizerSignedAt != nil {
		document.OrganizerSignedAt = organizerSignedAt
	}
	document.UpdatedAt = s.currentTime()
	s.documents[document.DocumentID] = document
	return true, nil
}

func (s *Store) SetProviderRef(_ context.Context, documentID, providerRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	document, ok := s.documents[strings.TrimSpace(documentID)]
	if !ok {
		return domainerrors.ErrDocumentNotFound
	}
	document.ProviderRef = providerRef
	document.UpdatedAt = s.currentTime()
	s.documents[document.DocumentID] = document
	return nil
}

func (s *Store) MarkArtifactStored(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	document, ok := s.documents[strings.TrimSpace(documentID)]
	if !ok {
		return domainerrors.ErrDocumentNotFound
	}
	document.ArtifactStored = true
	document.UpdatedAt = s.currentTime()
	s.documents[document.DocumentID] = document
	return nil
}

// EventInbox

func (s *Store) MarkProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.processedEvents[eventID]; seen {
		return false, nil
	}
	s.processedEvents[eventID] = struct{}{}
	return true, nil
}

func (s *Store) currentTime() time.Time {
	if s.now.IsZero() {
		return time.Now().UTC()
	}
	return s.now
}
