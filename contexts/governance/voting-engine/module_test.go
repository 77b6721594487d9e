package votingengine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"kvorum/contexts/governance/voting-engine/adapters/memory"
	"kvorum/contexts/governance/voting-engine/adapters/render"
	domainerrors "kvorum/contexts/governance/voting-engine/domain/errors"
	"kvorum/contexts/governance/voting-engine/domain/entities"
	httptransport "kvorum/contexts/governance/voting-engine/transport/http"
	"kvorum/internal/shared/credentials"
	"kvorum/internal/shared/events"
	"kvorum/internal/shared/validation"
)

type signingStub struct {
	mu     sync.Mutex
	signed map[string]bool
}

func (s *signingStub) SheetSigned(_ context.Context, sheetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signed[sheetID], nil
}

func (s *signingStub) markSigned(sheetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.signed == nil {
		s.signed = make(map[string]bool)
	}
	s.signed[sheetID] = true
}

type busStub struct {
	mu        sync.Mutex
	published []events.Envelope
}

func (b *busStub) Publish(_ context.Context, _ string, event events.Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
	return nil
}

// flakyRenderer fails a configured number of render calls before recovering,
// standing in for a transient outage in the rendering backend.
type flakyRenderer struct {
	inner              render.TextRenderer
	failOriginals      int
	failVisualizations int
}

func (r *flakyRenderer) RenderOriginal(protocol entities.Protocol, association entities.Association) (entities.Artifact, error) {
	if r.failOriginals > 0 {
		r.failOriginals--
		return entities.Artifact{}, errors.New("render backend offline")
	}
	return r.inner.RenderOriginal(protocol, association)
}

func (r *flakyRenderer) RenderVisualization(protocol entities.Protocol, association entities.Association, results []entities.QuestionResult) (entities.Artifact, error) {
	if r.failVisualizations > 0 {
		r.failVisualizations--
		return entities.Artifact{}, errors.New("render backend offline")
	}
	return r.inner.RenderVisualization(protocol, association, results)
}

func newTestModule(t *testing.T) (Module, *signingStub, *busStub) {
	t.Helper()
	signing := &signingStub{}
	bus := &busStub{}
	module := NewInMemoryModule(signing, bus, nil)
	seedTestData(module.Store)
	return module, signing, bus
}

// newRendererModule wires the module onto a fresh store with a caller-chosen
// renderer, for exercising the partial-failure paths of open and close.
func newRendererModule(t *testing.T, renderer *flakyRenderer) (Module, *busStub) {
	t.Helper()
	store := memory.NewStore()
	bus := &busStub{}
	module := NewModule(Dependencies{
		Protocols:    store,
		Sheets:       store,
		Votes:        store,
		Results:      store,
		Owners:       store,
		Associations: store,
		Signing:      &signingStub{},
		Renderer:     renderer,
		Outbox:       store,
		Publisher:    bus,
		Clock:        store,
		IDGen:        store,
		BaseURL:      "http://localhost:8080",
	})
	module.Store = store
	seedTestData(store)
	return module, bus
}

func seedTestData(store *memory.Store) {
	store.SetNow(time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC))
	store.SetAssociation(entities.Association{
		AssociationID:  "assn-1",
		Name:           "OSBB Sonyachny",
		ShortName:      "Sonyachny",
		Address:        "1 Khreshchatyk St, Kyiv",
		Edrpou:         "12345678",
		OrganizerName:  "Olena Kovalenko",
		OrganizerEmail: "olena@example.com",
		OrganizerPhone: "+380501234567",
		LegalOwnerName: "Ivan Bondarenko",
	})
	store.SetOwner("assn-1", entities.Owner{OwnerID: "owner-1", LastName: "Shevchenko", FirstName: "Taras"})
	store.SetOwner("assn-1", entities.Owner{OwnerID: "owner-2", LastName: "Franko", FirstName: "Ivan"})
	store.SetOwner("assn-1", entities.Owner{OwnerID: "owner-3", LastName: "Ukrainka", FirstName: "Lesia"})
}

func draftProtocol(t *testing.T, module Module) string {
	t.Helper()
	ctx := context.Background()
	protocol, err := module.Handler.CreateProtocolHandler(ctx, httptransport.CreateProtocolRequest{
		AssociationID: "assn-1",
		Number:        "7/2024",
		Date:          "2024-03-01",
		Type:          "ESTABLISHMENT",
	})
	if err != nil {
		t.Fatalf("create protocol failed: %v", err)
	}
	if _, err := module.Handler.AddQuestionHandler(ctx, protocol.ProtocolID, httptransport.AddQuestionRequest{
		OrderNumber: 1,
		Text:        "Elect the association board",
		Proposal:    "Approve the proposed board membership list",
	}); err != nil {
		t.Fatalf("add question failed: %v", err)
	}
	if _, err := module.Handler.AddQuestionHandler(ctx, protocol.ProtocolID, httptransport.AddQuestionRequest{
		OrderNumber:       2,
		Text:              "Approve the association charter",
		Proposal:          "Adopt the charter in the attached wording",
		RequiresTwoThirds: true,
	}); err != nil {
		t.Fatalf("add two-thirds question failed: %v", err)
	}
	return protocol.ProtocolID
}

func TestProtocolDraftRules(t *testing.T) {
	module, _, _ := newTestModule(t)
	ctx := context.Background()
	protocolID := draftProtocol(t, module)

	// Duplicate order number is rejected.
	_, err := module.Handler.AddQuestionHandler(ctx, protocolID, httptransport.AddQuestionRequest{
		OrderNumber: 2,
		Text:        "A second charter question",
		Proposal:    "This slot is already taken on the ballot",
	})
	if !errors.Is(err, domainerrors.ErrDuplicateOrderNumber) {
		t.Fatalf("expected duplicate order error, got %v", err)
	}

	// Validation failures are aggregated.
	_, err = module.Handler.CreateProtocolHandler(ctx, httptransport.CreateProtocolRequest{
		AssociationID: "assn-1",
		Number:        "",
		Date:          "yesterday",
		Type:          "WEEKLY",
	})
	verr, ok := validation.AsError(err)
	if !ok || len(verr.Violations) != 3 {
		t.Fatalf("expected 3 aggregated violations, got %v", err)
	}
}

func TestOpenVotingMintsTokensAndFreezesProtocol(t *testing.T) {
	module, _, _ := newTestModule(t)
	ctx := context.Background()
	protocolID := draftProtocol(t, module)

	result, err := module.Sheets.OpenVoting(ctx, protocolID)
	if err != nil {
		t.Fatalf("open voting failed: %v", err)
	}
	if len(result.Links) != 3 {
		t.Fatalf("expected one link per owner, got %d", len(result.Links))
	}
	for _, link := range result.Links {
		if !credentials.IsValidPublicToken(link.Token) {
			t.Fatalf("minted token fails structural check: %q", link.Token)
		}
	}
	want := time.Date(2024, 3, 16, 23, 59, 59, 999_000_000, time.UTC)
	if !result.Sheet.ExpiresAt.Equal(want) {
		t.Fatalf("sheet expiry = %v, want %v", result.Sheet.ExpiresAt, want)
	}

	// The agenda is frozen: no questions after opening.
	_, err = module.Handler.AddQuestionHandler(ctx, protocolID, httptransport.AddQuestionRequest{
		OrderNumber: 3,
		Text:        "A late agenda question",
		Proposal:    "Must be rejected once voting is open",
	})
	if !errors.Is(err, domainerrors.ErrProtocolNotDraft) {
		t.Fatalf("expected protocol frozen error, got %v", err)
	}

	// Opening twice is rejected.
	if _, err := module.Sheets.OpenVoting(ctx, protocolID); !errors.Is(err, domainerrors.ErrProtocolNotDraft) {
		t.Fatalf("expected second open to fail, got %v", err)
	}

	// Tokens are stored as digests only.
	for _, link := range result.Links {
		access, _, found, err := module.Store.LookupAccess(ctx, credentials.HashToken(link.Token))
		if err != nil || !found {
			t.Fatalf("expected access row for minted token: %v", err)
		}
		if access.TokenHash == link.Token {
			t.Fatalf("raw token must not be persisted")
		}
	}
}

func TestOpenVotingRejectsBrokenAssociationProfile(t *testing.T) {
	module, _, _ := newTestModule(t)
	module.Store.SetAssociation(entities.Association{
		AssociationID:  "assn-1",
		Name:           "OSBB Sonyachny",
		ShortName:      "Sonyachny",
		Address:        "1 Khreshchatyk St, Kyiv",
		Edrpou:         "12",
		OrganizerName:  "Olena Kovalenko",
		OrganizerEmail: "olena@example.com",
		OrganizerPhone: "+380501234567",
	})
	protocolID := draftProtocol(t, module)
	_, err := module.Sheets.OpenVoting(context.Background(), protocolID)
	if _, ok := validation.AsError(err); !ok {
		t.Fatalf("expected validation error for broken profile, got %v", err)
	}
}

func TestBallotSubmissionAndResubmission(t *testing.T) {
	module, _, _ := newTestModule(t)
	ctx := context.Background()
	protocolID := draftProtocol(t, module)
	opened, err := module.Sheets.OpenVoting(ctx, protocolID)
	if err != nil {
		t.Fatalf("open voting failed: %v", err)
	}
	sheetID := opened.Sheet.SheetID

	view, err := module.Handler.OwnerBallotHandler(ctx, sheetID, "owner-1")
	if err != nil {
		t.Fatalf("ballot view failed: %v", err)
	}
	if len(view.Questions) != 2 || !view.Open {
		t.Fatalf("unexpected ballot view: %+v", view)
	}
	q1, q2 := view.Questions[0].QuestionID, view.Questions[1].QuestionID

	// Consent is a hard gate.
	_, err = module.Handler.SubmitBallotHandler(ctx, sheetID, "owner-1", httptransport.SubmitBallotRequest{
		Entries: []httptransport.BallotEntry{{QuestionID: q1, Choice: "FOR"}},
	})
	if verr, ok := validation.AsError(err); !ok || verr.Violations[0].Field != "consent" {
		t.Fatalf("expected consent violation, got %v", err)
	}

	// Empty submissions and bad choices are rejected whole.
	_, err = module.Handler.SubmitBallotHandler(ctx, sheetID, "owner-1", httptransport.SubmitBallotRequest{
		Entries: []httptransport.BallotEntry{{QuestionID: q1, Choice: "MAYBE"}},
		Consent: true,
	})
	if _, ok := validation.AsError(err); !ok {
		t.Fatalf("expected choice violation, got %v", err)
	}

	resp, err := module.Handler.SubmitBallotHandler(ctx, sheetID, "owner-1", httptransport.SubmitBallotRequest{
		Entries: []httptransport.BallotEntry{
			{QuestionID: q1, Choice: "AGAINST"},
			{QuestionID: q2, Choice: "FOR"},
		},
		Consent: true,
	})
	if err != nil {
		t.Fatalf("submit ballot failed: %v", err)
	}
	if resp.RecordedCount != 2 {
		t.Fatalf("expected 2 recorded votes, got %d", resp.RecordedCount)
	}

	// Resubmission supersedes the earlier vote.
	if _, err := module.Handler.SubmitBallotHandler(ctx, sheetID, "owner-1", httptransport.SubmitBallotRequest{
		Entries: []httptransport.BallotEntry{{QuestionID: q1, Choice: "FOR"}},
		Consent: true,
	}); err != nil {
		t.Fatalf("resubmit ballot failed: %v", err)
	}

	tally, err := module.Handler.SheetTallyHandler(ctx, sheetID)
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	if tally.Final {
		t.Fatalf("expected live tally before closure")
	}
	if tally.Results[0].ForCount != 1 || tally.Results[0].AgainstCount != 0 {
		t.Fatalf("expected superseded vote to count as FOR: %+v", tally.Results[0])
	}
}

func TestSheetCloseFinalizesOnceAndEmitsEvent(t *testing.T) {
	module, _, bus := newTestModule(t)
	ctx := context.Background()
	protocolID := draftProtocol(t, module)
	opened, err := module.Sheets.OpenVoting(ctx, protocolID)
	if err != nil {
		t.Fatalf("open voting failed: %v", err)
	}
	sheetID := opened.Sheet.SheetID
	view, _ := module.Handler.OwnerBallotHandler(ctx, sheetID, "owner-1")
	q1, q2 := view.Questions[0].QuestionID, view.Questions[1].QuestionID

	ballots := map[string][]httptransport.BallotEntry{
		"owner-1": {{QuestionID: q1, Choice: "FOR"}, {QuestionID: q2, Choice: "FOR"}},
		"owner-2": {{QuestionID: q1, Choice: "FOR"}, {QuestionID: q2, Choice: "FOR"}},
		"owner-3": {{QuestionID: q1, Choice: "AGAINST"}, {QuestionID: q2, Choice: "AGAINST"}},
	}
	for ownerID, entries := range ballots {
		if _, err := module.Handler.SubmitBallotHandler(ctx, sheetID, ownerID, httptransport.SubmitBallotRequest{
			Entries: entries,
			Consent: true,
		}); err != nil {
			t.Fatalf("submit for %s failed: %v", ownerID, err)
		}
	}

	closed, err := module.Handler.CloseSheetHandler(ctx, sheetID)
	if err != nil {
		t.Fatalf("close sheet failed: %v", err)
	}
	if !closed.Final || len(closed.Results) != 2 {
		t.Fatalf("unexpected close result: %+v", closed)
	}
	// q1 simple majority 2/3 passes; q2 two-thirds boundary 2/3 passes.
	if !closed.Results[0].Passed || !closed.Results[1].Passed {
		t.Fatalf("expected both questions adopted: %+v", closed.Results)
	}

	// Second close is rejected, tally stays frozen.
	if _, err := module.Handler.CloseSheetHandler(ctx, sheetID); !errors.Is(err, domainerrors.ErrSheetClosed) {
		t.Fatalf("expected second close to fail, got %v", err)
	}

	// Votes after closure are rejected.
	_, err = module.Handler.SubmitBallotHandler(ctx, sheetID, "owner-1", httptransport.SubmitBallotRequest{
		Entries: []httptransport.BallotEntry{{QuestionID: q1, Choice: "AGAINST"}},
		Consent: true,
	})
	if !errors.Is(err, domainerrors.ErrSheetClosed) {
		t.Fatalf("expected closed sheet rejection, got %v", err)
	}

	// The finalized decision package reaches the bus through the relay.
	if err := module.Relay.RunOnce(ctx); err != nil {
		t.Fatalf("outbox relay failed: %v", err)
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(bus.published))
	}
	if bus.published[0].EventType != events.TopicSheetClosed {
		t.Fatalf("unexpected event type %q", bus.published[0].EventType)
	}
	// Relay reruns publish nothing new.
	if err := module.Relay.RunOnce(ctx); err != nil {
		t.Fatalf("relay rerun failed: %v", err)
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected relay rerun to be a no-op, got %d events", len(bus.published))
	}
}

func TestArtifactGating(t *testing.T) {
	module, signing, _ := newTestModule(t)
	ctx := context.Background()
	protocolID := draftProtocol(t, module)
	opened, err := module.Sheets.OpenVoting(ctx, protocolID)
	if err != nil {
		t.Fatalf("open voting failed: %v", err)
	}
	sheetID := opened.Sheet.SheetID

	original, err := module.Handler.GetArtifactHandler(ctx, sheetID, entities.ArtifactOriginal)
	if err != nil {
		t.Fatalf("original artifact failed: %v", err)
	}
	if !strings.Contains(string(original.Data), "7/2024") {
		t.Fatalf("expected protocol number in original artifact")
	}

	// Visualization exists only after closure.
	if _, err := module.Handler.GetArtifactHandler(ctx, sheetID, entities.ArtifactVisualization); !errors.Is(err, domainerrors.ErrNotYetAvailable) {
		t.Fatalf("expected visualization unavailable before close, got %v", err)
	}
	if _, err := module.Handler.CloseSheetHandler(ctx, sheetID); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, err := module.Handler.GetArtifactHandler(ctx, sheetID, entities.ArtifactVisualization); err != nil {
		t.Fatalf("visualization after close failed: %v", err)
	}

	// Signed stays gated on the signing service.
	if _, err := module.Handler.GetArtifactHandler(ctx, sheetID, entities.ArtifactSigned); !errors.Is(err, domainerrors.ErrNotYetAvailable) {
		t.Fatalf("expected signed unavailable, got %v", err)
	}
	signing.markSigned(sheetID)
	if err := module.Store.SaveArtifact(ctx, entities.Artifact{
		SheetID:     sheetID,
		Kind:        entities.ArtifactSigned,
		FileName:    "sheet-signed.txt",
		ContentType: "text/plain; charset=utf-8",
		Data:        []byte("signed payload"),
	}); err != nil {
		t.Fatalf("store signed artifact failed: %v", err)
	}
	signed, err := module.Handler.GetArtifactHandler(ctx, sheetID, entities.ArtifactSigned)
	if err != nil {
		t.Fatalf("signed artifact failed: %v", err)
	}
	if string(signed.Data) != "signed payload" {
		t.Fatalf("unexpected signed artifact contents")
	}

	if _, err := module.Handler.GetArtifactHandler(ctx, sheetID, "draft"); !errors.Is(err, domainerrors.ErrUnknownArtifact) {
		t.Fatalf("expected unknown artifact kind error, got %v", err)
	}
}

func TestSheetExpirerClosesExpiredSheets(t *testing.T) {
	module, _, bus := newTestModule(t)
	ctx := context.Background()
	protocolID := draftProtocol(t, module)
	opened, err := module.Sheets.OpenVoting(ctx, protocolID)
	if err != nil {
		t.Fatalf("open voting failed: %v", err)
	}

	// Jump past the validity window.
	module.Store.SetNow(opened.Sheet.ExpiresAt.Add(time.Second))

	if err := module.Expirer.RunOnce(ctx); err != nil {
		t.Fatalf("expirer failed: %v", err)
	}
	sheet, err := module.Store.GetSheet(ctx, opened.Sheet.SheetID)
	if err != nil {
		t.Fatalf("get sheet failed: %v", err)
	}
	if sheet.Status != entities.SheetStatusClosed {
		t.Fatalf("expected expired sheet closed, got %s", sheet.Status)
	}

	// Rerun is a no-op: finalization happened exactly once.
	if err := module.Expirer.RunOnce(ctx); err != nil {
		t.Fatalf("expirer rerun failed: %v", err)
	}
	if err := module.Relay.RunOnce(ctx); err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected exactly one close event, got %d", len(bus.published))
	}
}

func TestOpenVotingResumesAfterRenderFailure(t *testing.T) {
	module, _ := newRendererModule(t, &flakyRenderer{failOriginals: 1})
	ctx := context.Background()
	protocolID := draftProtocol(t, module)

	if _, err := module.Sheets.OpenVoting(ctx, protocolID); err == nil {
		t.Fatalf("expected open to fail while the renderer is down")
	}

	// The protocol is frozen but no sheet row landed, so the open is
	// unfinished rather than lost.
	protocol, err := module.Store.GetProtocol(ctx, protocolID)
	if err != nil {
		t.Fatalf("get protocol failed: %v", err)
	}
	if protocol.Status != entities.ProtocolStatusVoting {
		t.Fatalf("expected frozen protocol, got %s", protocol.Status)
	}
	if _, found, err := module.Store.GetSheetByProtocol(ctx, protocolID); err != nil || found {
		t.Fatalf("expected no sheet after failed open, found=%v err=%v", found, err)
	}

	// The retry picks the open back up and delivers the links.
	opened, err := module.Sheets.OpenVoting(ctx, protocolID)
	if err != nil {
		t.Fatalf("resumed open failed: %v", err)
	}
	if len(opened.Links) != 3 {
		t.Fatalf("expected one link per owner, got %d", len(opened.Links))
	}
	for _, link := range opened.Links {
		access, sheet, found, err := module.Store.LookupAccess(ctx, credentials.HashToken(link.Token))
		if err != nil || !found {
			t.Fatalf("expected usable access row: %v", err)
		}
		if access.SheetID != opened.Sheet.SheetID || sheet.SheetID != opened.Sheet.SheetID {
			t.Fatalf("access row points at sheet %s, want %s", access.SheetID, opened.Sheet.SheetID)
		}
	}

	// Once the sheet exists the open is complete and cannot run again.
	if _, err := module.Sheets.OpenVoting(ctx, protocolID); !errors.Is(err, domainerrors.ErrProtocolNotDraft) {
		t.Fatalf("expected third open to fail, got %v", err)
	}
}

func TestCloseSheetResumesAfterRenderFailure(t *testing.T) {
	module, bus := newRendererModule(t, &flakyRenderer{failVisualizations: 1})
	ctx := context.Background()
	protocolID := draftProtocol(t, module)
	opened, err := module.Sheets.OpenVoting(ctx, protocolID)
	if err != nil {
		t.Fatalf("open voting failed: %v", err)
	}
	sheetID := opened.Sheet.SheetID
	view, err := module.Handler.OwnerBallotHandler(ctx, sheetID, "owner-1")
	if err != nil {
		t.Fatalf("ballot view failed: %v", err)
	}
	if _, err := module.Handler.SubmitBallotHandler(ctx, sheetID, "owner-1", httptransport.SubmitBallotRequest{
		Entries: []httptransport.BallotEntry{
			{QuestionID: view.Questions[0].QuestionID, Choice: "FOR"},
			{QuestionID: view.Questions[1].QuestionID, Choice: "FOR"},
		},
		Consent: true,
	}); err != nil {
		t.Fatalf("submit ballot failed: %v", err)
	}

	if _, err := module.Sheets.CloseSheet(ctx, sheetID); err == nil {
		t.Fatalf("expected close to fail while the renderer is down")
	}

	// The sheet shut but finalization stopped partway: votes are frozen,
	// the protocol still reads VOTING and no close event was appended.
	sheet, err := module.Store.GetSheet(ctx, sheetID)
	if err != nil {
		t.Fatalf("get sheet failed: %v", err)
	}
	if sheet.Status != entities.SheetStatusClosed {
		t.Fatalf("expected closed sheet, got %s", sheet.Status)
	}
	protocol, err := module.Store.GetProtocol(ctx, protocolID)
	if err != nil {
		t.Fatalf("get protocol failed: %v", err)
	}
	if protocol.Status != entities.ProtocolStatusVoting {
		t.Fatalf("expected protocol still voting, got %s", protocol.Status)
	}

	// The worker's resume pass finishes the tally once the renderer is back.
	if err := module.Expirer.RunOnce(ctx); err != nil {
		t.Fatalf("expirer resume failed: %v", err)
	}
	protocol, err = module.Store.GetProtocol(ctx, protocolID)
	if err != nil {
		t.Fatalf("get protocol failed: %v", err)
	}
	if protocol.Status != entities.ProtocolStatusClosed {
		t.Fatalf("expected protocol closed after resume, got %s", protocol.Status)
	}
	results, err := module.Store.ListResultsBySheet(ctx, sheetID)
	if err != nil || len(results) != 2 {
		t.Fatalf("expected 2 finalized results, got %d (%v)", len(results), err)
	}
	if sheet.ClosedAt == nil || !results[0].FinalizedAt.Equal(sheet.ClosedAt.UTC()) {
		t.Fatalf("tally finalized at %v, want the close instant %v", results[0].FinalizedAt, sheet.ClosedAt)
	}
	if _, err := module.Handler.GetArtifactHandler(ctx, sheetID, entities.ArtifactVisualization); err != nil {
		t.Fatalf("visualization after resume failed: %v", err)
	}

	// Exactly one decision package reaches the bus.
	if err := module.Relay.RunOnce(ctx); err != nil {
		t.Fatalf("outbox relay failed: %v", err)
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(bus.published))
	}

	// With the protocol closed, further closes are plain rejections.
	if _, err := module.Sheets.CloseSheet(ctx, sheetID); !errors.Is(err, domainerrors.ErrSheetClosed) {
		t.Fatalf("expected settled sheet rejection, got %v", err)
	}
	if err := module.Expirer.RunOnce(ctx); err != nil {
		t.Fatalf("expirer rerun failed: %v", err)
	}
	if err := module.Relay.RunOnce(ctx); err != nil {
		t.Fatalf("relay rerun failed: %v", err)
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected relay rerun to be a no-op, got %d events", len(bus.published))
	}
}
