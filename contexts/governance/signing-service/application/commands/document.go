package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	application "kvorum/contexts/governance/signing-service/application"
	"kvorum/contexts/governance/signing-service/domain/entities"
	domainerrors "kvorum/contexts/governance/signing-service/domain/errors"
	"kvorum/contexts/governance/signing-service/ports"
	"kvorum/internal/shared/events"
)

// DocumentUseCase turns finalized decision sheets into provider documents.
type DocumentUseCase struct {
	Documents ports.DocumentRepository
	Inbox     ports.EventInbox
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// HandleSheetClosed consumes a sheet-closed event and mirrors exactly one
// document per sheet. The provider submission is persisted with the row and
// registered by the status sync worker, so a provider outage never loses the
// sheet. The inbox is marked only after the row exists; an error here makes
// the relay redeliver, and the one-document-per-sheet insert keeps
// redelivery idempotent.
func (uc DocumentUseCase) HandleSheetClosed(ctx context.Context, event events.Envelope) error {
	logger := application.ResolveLogger(uc.Logger)

	payload, err := decodeSheetClosed(event)
	if err != nil {
		return err
	}

	if _, err := uc.Documents.GetDocumentBySheet(ctx, payload.SheetID); err == nil {
		// The sheet is already mirrored; absorb the redelivery.
		_, err := uc.Inbox.MarkProcessed(ctx, event.EventID)
		return err
	} else if !errors.Is(err, domainerrors.ErrDocumentNotFound) {
		return err
	}

	request, err := buildCreateRequest(payload)
	if err != nil {
		return err
	}
	submission, err := json.Marshal(request)
	if err != nil {
		return err
	}

	documentID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	now := uc.Clock.Now()
	document := entities.Document{
		DocumentID: documentID,
		SheetID:    payload.SheetID,
		Status:     entities.DocumentStatusCreated,
		Submission: submission,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.Documents.SaveDocument(ctx, document); err != nil && !errors.Is(err, domainerrors.ErrConflict) {
		return err
	}
	// ErrConflict means a concurrent consumer won the insert; either way
	// the row exists, so the event can be settled.
	if _, err := uc.Inbox.MarkProcessed(ctx, event.EventID); err != nil {
		return err
	}

	logger.Info("decision sheet mirrored for signing",
		"event", "document_mirrored",
		"module", "governance/signing-service",
		"layer", "application",
		"document_id", document.DocumentID,
		"sheet_id", document.SheetID,
		"source_event_id", event.EventID,
	)
	return nil
}

// decodeSheetClosed handles payloads arriving either as the typed struct
// (in-process publish) or as generic JSON from the outbox relay.
func decodeSheetClosed(event events.Envelope) (events.SheetClosedPayload, error) {
	if payload, ok := event.Payload.(events.SheetClosedPayload); ok {
		return payload, nil
	}
	raw, err := json.Marshal(event.Payload)
	if err != nil {
		return events.SheetClosedPayload{}, err
	}
	var payload events.SheetClosedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return events.SheetClosedPayload{}, err
	}
	if payload.SheetID == "" {
		return events.SheetClosedPayload{}, fmt.Errorf("sheet closed event %s has no sheet id", event.EventID)
	}
	return payload, nil
}

func buildCreateRequest(payload events.SheetClosedPayload) (entities.CreateDocumentRequest, error) {
	decisions, err := json.Marshal(payload.Decisions)
	if err != nil {
		return entities.CreateDocumentRequest{}, err
	}
	return entities.CreateDocumentRequest{
		SheetID:        payload.SheetID,
		ProtocolNumber: payload.ProtocolNumber,
		FinalizedAt:    payload.FinalizedAt,
		Signers: []entities.Signer{
			{
				Role:  entities.RoleOwner,
				Name:  payload.LegalOwner.Name,
				Email: payload.LegalOwner.Email,
				Phone: payload.LegalOwner.Phone,
			},
			{
				Role:  entities.RoleOrganizer,
				Name:  payload.Organizer.Name,
				Email: payload.Organizer.Email,
				Phone: payload.Organizer.Phone,
			},
		},
		Payload: decisions,
	}, nil
}
