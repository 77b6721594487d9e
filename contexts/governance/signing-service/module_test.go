package signingservice

import (
	"context"
	"sync"
	"testing"
	"time"

	"kvorum/contexts/governance/signing-service/adapters/memory"
	"kvorum/contexts/governance/signing-service/domain/entities"
	"kvorum/internal/shared/events"
)

type sinkStub struct {
	mu     sync.Mutex
	stored map[string][]byte
	calls  int
}

func (s *sinkStub) StoreSignedSheet(_ context.Context, sheetID, _, _ string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stored == nil {
		s.stored = make(map[string][]byte)
	}
	s.stored[sheetID] = data
	s.calls++
	return nil
}

func closedEvent(eventID, sheetID string) events.Envelope {
	return events.Envelope{
		EventID:        eventID,
		EventType:      events.TopicSheetClosed,
		OccurredAt:     time.Date(2024, 3, 16, 23, 59, 59, 0, time.UTC),
		EntityType:     "sheet",
		EntityID:       sheetID,
		PayloadVersion: 1,
		Payload: events.SheetClosedPayload{
			SheetID:        sheetID,
			ProtocolID:     "proto-1",
			ProtocolNumber: "7/2024",
			FinalizedAt:    time.Date(2024, 3, 16, 23, 59, 59, 0, time.UTC),
			Organizer:      events.Participant{Role: "ORGANIZER", Name: "Olena Kovalenko", Email: "olena@example.com", Phone: "+380501234567"},
			LegalOwner:     events.Participant{Role: "OWNER", Name: "Ivan Bondarenko", Email: "ivan@example.com", Phone: "+380671112233"},
			Decisions: []events.SheetDecision{
				{QuestionID: "q-1", OrderNumber: 1, Proposal: "Approve the board", ForCount: 2, AgainstCount: 1, Passed: true},
			},
		},
	}
}

func newTestModule() (Module, *memory.FakeProvider, *sinkStub) {
	provider := memory.NewFakeProvider()
	sink := &sinkStub{}
	module := NewInMemoryModule(provider, sink, nil)
	module.Store.SetNow(time.Date(2024, 3, 17, 8, 0, 0, 0, time.UTC))
	return module, provider, sink
}

// registerSheet feeds a sheet-closed event through the consumer and lets the
// sync worker register the document with the provider.
func registerSheet(t *testing.T, module Module, eventID, sheetID string) entities.Document {
	t.Helper()
	ctx := context.Background()
	if err := module.Documents.HandleSheetClosed(ctx, closedEvent(eventID, sheetID)); err != nil {
		t.Fatalf("handle event failed: %v", err)
	}
	if err := module.Sync.RunOnce(ctx); err != nil {
		t.Fatalf("registration sync failed: %v", err)
	}
	document, err := module.Queries.DocumentBySheet(ctx, sheetID)
	if err != nil {
		t.Fatalf("document lookup failed: %v", err)
	}
	if document.ProviderRef == "" {
		t.Fatalf("document not registered with provider")
	}
	return document
}

func TestSheetClosedCreatesOneDocument(t *testing.T) {
	module, provider, _ := newTestModule()
	ctx := context.Background()

	if err := module.Documents.HandleSheetClosed(ctx, closedEvent("evt-1", "sheet-1")); err != nil {
		t.Fatalf("handle event failed: %v", err)
	}
	document, err := module.Queries.DocumentBySheet(ctx, "sheet-1")
	if err != nil {
		t.Fatalf("document lookup failed: %v", err)
	}
	if document.Status != entities.DocumentStatusCreated {
		t.Fatalf("new document status = %s", document.Status)
	}
	if len(document.Submission) == 0 {
		t.Fatalf("submission not persisted with the document")
	}

	// Registration is the worker's job.
	if err := module.Sync.RunOnce(ctx); err != nil {
		t.Fatalf("registration sync failed: %v", err)
	}
	created := provider.CreatedRequests()
	if len(created) != 1 {
		t.Fatalf("expected 1 provider create, got %d", len(created))
	}
	if len(created[0].Signers) != 2 ||
		created[0].Signers[0].Role != entities.RoleOwner ||
		created[0].Signers[1].Role != entities.RoleOrganizer {
		t.Fatalf("unexpected signer set: %+v", created[0].Signers)
	}

	// Redelivery of the same event is a no-op.
	if err := module.Documents.HandleSheetClosed(ctx, closedEvent("evt-1", "sheet-1")); err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}
	// A distinct event for the same sheet still creates nothing new.
	if err := module.Documents.HandleSheetClosed(ctx, closedEvent("evt-2", "sheet-1")); err != nil {
		t.Fatalf("second event failed: %v", err)
	}
	if err := module.Sync.RunOnce(ctx); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if got := len(provider.CreatedRequests()); got != 1 {
		t.Fatalf("expected provider create to stay at 1, got %d", got)
	}
}

func TestSheetClosedDecodesRelayedPayload(t *testing.T) {
	module, _, _ := newTestModule()
	ctx := context.Background()

	// The outbox relay delivers payloads as generic JSON maps.
	event := closedEvent("evt-json", "sheet-json")
	event.Payload = map[string]any{
		"sheet_id":        "sheet-json",
		"protocol_id":     "proto-1",
		"protocol_number": "7/2024",
		"finalized_at":    "2024-03-16T23:59:59Z",
		"organizer":       map[string]any{"role": "ORGANIZER", "name": "Olena"},
		"legal_owner":     map[string]any{"role": "OWNER", "name": "Ivan"},
	}
	if err := module.Documents.HandleSheetClosed(ctx, event); err != nil {
		t.Fatalf("handle relayed event failed: %v", err)
	}
	if _, err := module.Queries.DocumentBySheet(ctx, "sheet-json"); err != nil {
		t.Fatalf("document lookup failed: %v", err)
	}
}

func TestProviderOutageDuringIntakeIsRetried(t *testing.T) {
	module, provider, _ := newTestModule()
	ctx := context.Background()

	// The provider is down while the sheet-closed event arrives. The
	// consumer must still succeed: the document row is the durable anchor.
	provider.SetUnavailable(true)
	if err := module.Documents.HandleSheetClosed(ctx, closedEvent("evt-1", "sheet-1")); err != nil {
		t.Fatalf("intake during outage failed: %v", err)
	}
	document, err := module.Queries.DocumentBySheet(ctx, "sheet-1")
	if err != nil {
		t.Fatalf("document lookup failed: %v", err)
	}
	if document.ProviderRef != "" {
		t.Fatalf("outage produced a provider ref: %q", document.ProviderRef)
	}

	// Sync cycles during the outage keep the backlog; nothing reaches the
	// provider and the cycle still completes.
	if err := module.Sync.RunOnce(ctx); err != nil {
		t.Fatalf("sync during outage must not fail the cycle: %v", err)
	}
	if got := len(provider.CreatedRequests()); got != 0 {
		t.Fatalf("outage produced %d provider creates", got)
	}

	// Redelivery of the event while unregistered stays idempotent.
	if err := module.Documents.HandleSheetClosed(ctx, closedEvent("evt-1", "sheet-1")); err != nil {
		t.Fatalf("redelivery during outage failed: %v", err)
	}

	// Once the provider recovers the next cycle registers the document.
	provider.SetUnavailable(false)
	if err := module.Sync.RunOnce(ctx); err != nil {
		t.Fatalf("recovery sync failed: %v", err)
	}
	document, err = module.Queries.DocumentBySheet(ctx, "sheet-1")
	if err != nil {
		t.Fatalf("document lookup failed: %v", err)
	}
	if document.ProviderRef == "" {
		t.Fatalf("recovery did not register the document")
	}
	if document.Status != entities.DocumentStatusCreated {
		t.Fatalf("registered document status = %s", document.Status)
	}
	if got := len(provider.CreatedRequests()); got != 1 {
		t.Fatalf("expected exactly 1 provider create after recovery, got %d", got)
	}
}

func TestStatusSyncAdvancesForwardOnly(t *testing.T) {
	module, provider, sink := newTestModule()
	ctx := context.Background()
	document := registerSheet(t, module, "evt-1", "sheet-1")

	ownerAt := time.Date(2024, 3, 17, 9, 30, 0, 0, time.UTC)
	provider.SetStatus(document.ProviderRef, entities.StatusReport{
		Status:        entities.DocumentStatusOwnerSigned,
		OwnerSignedAt: &ownerAt,
	})
	if err := module.Sync.RunOnce(ctx); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	document, _ = module.Queries.DocumentBySheet(ctx, "sheet-1")
	if document.Status != entities.DocumentStatusOwnerSigned {
		t.Fatalf("status after owner signature = %s", document.Status)
	}
	if document.OwnerSignedAt == nil || !document.OwnerSignedAt.Equal(ownerAt) {
		t.Fatalf("provider timestamp not kept: %v", document.OwnerSignedAt)
	}

	// A duplicate OWNER_SIGNED report is a no-op.
	if err := module.Sync.RunOnce(ctx); err != nil {
		t.Fatalf("duplicate sync failed: %v", err)
	}
	document, _ = module.Queries.DocumentBySheet(ctx, "sheet-1")
	if document.Status != entities.DocumentStatusOwnerSigned {
		t.Fatalf("duplicate report changed status to %s", document.Status)
	}

	// A stale CREATED report never regresses the document.
	provider.SetStatus(document.ProviderRef, entities.StatusReport{Status: entities.DocumentStatusCreated})
	if err := module.Sync.RunOnce(ctx); err != nil {
		t.Fatalf("stale sync failed: %v", err)
	}
	document, _ = module.Queries.DocumentBySheet(ctx, "sheet-1")
	if document.Status != entities.DocumentStatusOwnerSigned {
		t.Fatalf("stale report regressed status to %s", document.Status)
	}
	if !document.OwnerSignedAt.Equal(ownerAt) {
		t.Fatalf("stale report disturbed timestamp: %v", document.OwnerSignedAt)
	}

	// Completion stores the executed artifact and reports the sheet signed.
	provider.SetStatus(document.ProviderRef, entities.StatusReport{Status: entities.DocumentStatusOrganizerSigned})
	if err := module.Sync.RunOnce(ctx); err != nil {
		t.Fatalf("final sync failed: %v", err)
	}
	document, _ = module.Queries.DocumentBySheet(ctx, "sheet-1")
	if document.Status != entities.DocumentStatusOrganizerSigned {
		t.Fatalf("status after organizer signature = %s", document.Status)
	}
	if document.OrganizerSignedAt == nil {
		t.Fatalf("observation timestamp missing for organizer signature")
	}
	if len(sink.stored["sheet-1"]) == 0 {
		t.Fatalf("signed artifact not delivered to sheet store")
	}
	signed, err := module.Queries.SheetSigned(ctx, "sheet-1")
	if err != nil || !signed {
		t.Fatalf("expected sheet reported signed, got %v %v", signed, err)
	}

	// Finished documents drop out of the sync backlog.
	sinkCallsBefore := sink.calls
	if err := module.Sync.RunOnce(ctx); err != nil {
		t.Fatalf("post-completion sync failed: %v", err)
	}
	if sink.calls != sinkCallsBefore {
		t.Fatalf("completed document re-delivered artifact")
	}
}

func TestStatusSkipIsAppliedInOneTransition(t *testing.T) {
	module, provider, _ := newTestModule()
	ctx := context.Background()
	document := registerSheet(t, module, "evt-1", "sheet-1")

	// The provider may report both signatures between two polls.
	provider.SetStatus(document.ProviderRef, entities.StatusReport{Status: entities.DocumentStatusOrganizerSigned})
	if err := module.Sync.RunOnce(ctx); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	document, _ = module.Queries.DocumentBySheet(ctx, "sheet-1")
	if document.Status != entities.DocumentStatusOrganizerSigned {
		t.Fatalf("status = %s", document.Status)
	}
	if document.OwnerSignedAt == nil || document.OrganizerSignedAt == nil {
		t.Fatalf("skipped transition left timestamps unset: %+v", document)
	}
}

func TestProviderOutageNeverAdvancesState(t *testing.T) {
	module, provider, sink := newTestModule()
	ctx := context.Background()
	document := registerSheet(t, module, "evt-1", "sheet-1")

	provider.SetUnavailable(true)
	if err := module.Sync.RunOnce(ctx); err != nil {
		t.Fatalf("sync during outage must not fail the cycle: %v", err)
	}
	document, _ = module.Queries.DocumentBySheet(ctx, "sheet-1")
	if document.Status != entities.DocumentStatusCreated {
		t.Fatalf("outage advanced status to %s", document.Status)
	}
	if len(sink.stored) != 0 {
		t.Fatalf("outage produced artifacts")
	}

	// Next cycle picks the document up again once the provider recovers.
	provider.SetUnavailable(false)
	provider.SetStatus(document.ProviderRef, entities.StatusReport{Status: entities.DocumentStatusOwnerSigned})
	if err := module.Sync.RunOnce(ctx); err != nil {
		t.Fatalf("recovery sync failed: %v", err)
	}
	document, _ = module.Queries.DocumentBySheet(ctx, "sheet-1")
	if document.Status != entities.DocumentStatusOwnerSigned {
		t.Fatalf("recovery did not advance status, got %s", document.Status)
	}
}

func TestUnsignedSheetReportsNotSigned(t *testing.T) {
	module, _, _ := newTestModule()
	signed, err := module.Queries.SheetSigned(context.Background(), "missing-sheet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if signed {
		t.Fatalf("sheet without a document reported signed")
	}
}
