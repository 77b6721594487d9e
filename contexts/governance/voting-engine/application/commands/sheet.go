package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "kvorum/contexts/governance/voting-engine/application"
	"kvorum/contexts/governance/voting-engine/domain/entities"
	domainerrors "kvorum/contexts/governance/voting-engine/domain/errors"
	"kvorum/contexts/governance/voting-engine/ports"
	"kvorum/internal/shared/credentials"
	"kvorum/internal/shared/events"
)

// OwnerLink carries the one-time plaintext token minted for one owner. It is
// returned once for link distribution and never persisted.
type OwnerLink struct {
	OwnerID     string
	DisplayName string
	Token       string
}

// OpenVotingResult is the sheet plus the minted per-owner links.
type OpenVotingResult struct {
	Sheet entities.Sheet
	Links []OwnerLink
}

// SheetUseCase drives the sheet lifecycle: opening the voting phase, closing
// and finalizing the tally, and exposing artifacts under the state rules.
type SheetUseCase struct {
	Protocols    ports.ProtocolRepository
	Sheets       ports.SheetRepository
	Votes        ports.VoteRepository
	Results      ports.ResultRepository
	Owners       ports.OwnerDirectory
	Associations ports.AssociationDirectory
	Signing      ports.SigningStatus
	Renderer     ports.ArtifactRenderer
	Outbox       ports.OutboxRepository
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

// OpenVoting freezes a draft protocol, creates its sheet with the
// authoritative expiry, renders the blank ballot and mints one public token
// per eligible owner. The sheet row is written last: a VOTING protocol
// without a sheet is an open that stopped partway, and a retry resumes it
// with freshly minted tokens.
func (uc SheetUseCase) OpenVoting(ctx context.Context, protocolID string) (OpenVotingResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	protocol, err := uc.Protocols.GetProtocol(ctx, strings.TrimSpace(protocolID))
	if err != nil {
		return OpenVotingResult{}, err
	}
	resume := false
	switch protocol.Status {
	case entities.ProtocolStatusDraft:
	case entities.ProtocolStatusVoting:
		_, found, err := uc.Sheets.GetSheetByProtocol(ctx, protocol.ProtocolID)
		if err != nil {
			return OpenVotingResult{}, err
		}
		if found {
			return OpenVotingResult{}, domainerrors.ErrProtocolNotDraft
		}
		resume = true
	default:
		return OpenVotingResult{}, domainerrors.ErrProtocolNotDraft
	}
	if len(protocol.Questions) == 0 {
		return OpenVotingResult{}, domainerrors.ErrEmptyAgenda
	}

	association, err := uc.Associations.GetAssociation(ctx, protocol.AssociationID)
	if err != nil {
		return OpenVotingResult{}, err
	}
	// The decision package embeds organizer identity, so a broken profile
	// must surface before any token leaves the building.
	if err := entities.ValidateAssociation(association); err != nil {
		return OpenVotingResult{}, err
	}

	owners, err := uc.Owners.ListOwnersByAssociation(ctx, protocol.AssociationID)
	if err != nil {
		return OpenVotingResult{}, err
	}

	now := uc.Clock.Now().UTC()
	if !resume {
		won, err := uc.Protocols.TransitionProtocolStatus(ctx, protocol.ProtocolID,
			entities.ProtocolStatusDraft, entities.ProtocolStatusVoting, now)
		if err != nil {
			return OpenVotingResult{}, err
		}
		if !won {
			return OpenVotingResult{}, domainerrors.ErrProtocolNotDraft
		}
	}

	sheetID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return OpenVotingResult{}, err
	}
	sheet := entities.Sheet{
		SheetID:    sheetID,
		ProtocolID: protocol.ProtocolID,
		Status:     entities.SheetStatusOpen,
		ExpiresAt:  entities.CalculateSheetExpiresAt(protocol.Date, protocol.Type),
		CreatedAt:  now,
	}

	original, err := uc.Renderer.RenderOriginal(protocol, association)
	if err != nil {
		return OpenVotingResult{}, err
	}
	original.SheetID = sheet.SheetID
	original.Kind = entities.ArtifactOriginal
	original.CreatedAt = now
	if err := uc.Sheets.SaveArtifact(ctx, original); err != nil {
		return OpenVotingResult{}, err
	}

	// Access rows reference a sheet that does not exist yet, so they stay
	// unreachable until the sheet row lands below.
	links := make([]OwnerLink, 0, len(owners))
	for _, owner := range owners {
		token, err := credentials.GeneratePublicToken()
		if err != nil {
			return OpenVotingResult{}, err
		}
		if err := uc.Sheets.SaveAccess(ctx, entities.SheetAccess{
			SheetID:   sheet.SheetID,
			OwnerID:   owner.OwnerID,
			TokenHash: credentials.HashToken(token),
			CreatedAt: now,
		}); err != nil {
			return OpenVotingResult{}, err
		}
		links = append(links, OwnerLink{
			OwnerID:     owner.OwnerID,
			DisplayName: owner.DisplayName(),
			Token:       token,
		})
	}

	if err := uc.Sheets.SaveSheet(ctx, sheet); err != nil {
		return OpenVotingResult{}, err
	}

	logger.Info("voting opened",
		"event", "voting_sheet_opened",
		"module", "governance/voting-engine",
		"layer", "application",
		"protocol_id", protocol.ProtocolID,
		"sheet_id", sheet.SheetID,
		"expires_at", sheet.ExpiresAt,
		"owner_count", len(links),
	)
	return OpenVotingResult{Sheet: sheet, Links: links}, nil
}

// CloseSheet freezes the vote set, finalizes the tally, renders the
// visualization and hands the decision package to the signing service
// through the outbox. Only the caller that wins the OPEN->CLOSED transition
// performs finalization; losers get ErrSheetClosed. The protocol's
// VOTING->CLOSED transition is applied last, so a finalization that fails
// midway leaves a resumable sheet rather than a closed one with no tally.
func (uc SheetUseCase) CloseSheet(ctx context.Context, sheetID string) ([]entities.QuestionResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	sheet, err := uc.Sheets.GetSheet(ctx, strings.TrimSpace(sheetID))
	if err != nil {
		return nil, err
	}

	now := uc.Clock.Now().UTC()
	finalizedAt := now
	resume := false
	switch sheet.Status {
	case entities.SheetStatusOpen:
		won, err := uc.Sheets.CloseSheet(ctx, sheet.SheetID, now)
		if err != nil {
			return nil, err
		}
		if !won {
			return nil, domainerrors.ErrSheetClosed
		}
	case entities.SheetStatusClosed:
		// The protocol transition below is the completion marker. A
		// CLOSED sheet whose protocol still reads VOTING is a close
		// that stopped partway, and the tally resumes at the moment
		// the sheet actually shut.
		resume = true
		if sheet.ClosedAt != nil {
			finalizedAt = sheet.ClosedAt.UTC()
		}
	default:
		return nil, domainerrors.ErrSheetClosed
	}

	protocol, err := uc.Protocols.GetProtocol(ctx, sheet.ProtocolID)
	if err != nil {
		return nil, err
	}
	if resume && protocol.Status != entities.ProtocolStatusVoting {
		return nil, domainerrors.ErrSheetClosed
	}

	votes, err := uc.Votes.ListVotesBySheet(ctx, sheet.SheetID)
	if err != nil {
		return nil, err
	}

	results := entities.TallyVotes(protocol.Questions, votes)
	for i := range results {
		results[i].SheetID = sheet.SheetID
		results[i].FinalizedAt = finalizedAt
	}
	if err := uc.Results.SaveResults(ctx, results); err != nil {
		return nil, err
	}

	association, err := uc.Associations.GetAssociation(ctx, protocol.AssociationID)
	if err != nil {
		return nil, err
	}

	visualization, err := uc.Renderer.RenderVisualization(protocol, association, results)
	if err != nil {
		return nil, err
	}
	visualization.SheetID = sheet.SheetID
	visualization.Kind = entities.ArtifactVisualization
	visualization.CreatedAt = finalizedAt
	if err := uc.Sheets.SaveArtifact(ctx, visualization); err != nil {
		return nil, err
	}

	if err := uc.appendClosedEvent(ctx, protocol, association, sheet, results, finalizedAt); err != nil {
		return nil, err
	}

	if _, err := uc.Protocols.TransitionProtocolStatus(ctx, protocol.ProtocolID,
		entities.ProtocolStatusVoting, entities.ProtocolStatusClosed, finalizedAt); err != nil {
		return nil, err
	}

	logger.Info("sheet closed and tally finalized",
		"event", "voting_sheet_closed",
		"module", "governance/voting-engine",
		"layer", "application",
		"sheet_id", sheet.SheetID,
		"protocol_id", protocol.ProtocolID,
		"question_count", len(results),
	)
	return results, nil
}

func (uc SheetUseCase) appendClosedEvent(
	ctx context.Context,
	protocol entities.Protocol,
	association entities.Association,
	sheet entities.Sheet,
	results []entities.QuestionResult,
	now time.Time,
) error {
	decisions := make([]events.SheetDecision, 0, len(results))
	for _, result := range results {
		proposal := ""
		if question, ok := protocol.QuestionByID(result.QuestionID); ok {
			proposal = question.Proposal
		}
		decisions = append(decisions, events.SheetDecision{
			QuestionID:   result.QuestionID,
			OrderNumber:  result.OrderNumber,
			Proposal:     proposal,
			ForCount:     result.ForCount,
			AgainstCount: result.AgainstCount,
			Passed:       result.Passed,
		})
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, events.Envelope{
		EventID:        eventID,
		EventType:      events.TopicSheetClosed,
		OccurredAt:     now,
		EntityType:     "sheet",
		EntityID:       sheet.SheetID,
		PayloadVersion: 1,
		Payload: events.SheetClosedPayload{
			SheetID:        sheet.SheetID,
			ProtocolID:     protocol.ProtocolID,
			ProtocolNumber: protocol.Number,
			FinalizedAt:    now,
			Organizer: events.Participant{
				Role:  "ORGANIZER",
				Name:  association.OrganizerName,
				Email: association.OrganizerEmail,
				Phone: association.OrganizerPhone,
			},
			LegalOwner: events.Participant{
				Role: "OWNER",
				Name: association.LegalOwnerName,
			},
			Decisions: decisions,
		},
	})
}

// GetArtifact returns one named sheet representation. The signed artifact is
// gated on the signing service reporting full execution.
func (uc SheetUseCase) GetArtifact(ctx context.Context, sheetID, kind string) (entities.Artifact, error) {
	sheet, err := uc.Sheets.GetSheet(ctx, strings.TrimSpace(sheetID))
	if err != nil {
		return entities.Artifact{}, err
	}

	switch kind {
	case entities.ArtifactOriginal, entities.ArtifactVisualization:
	case entities.ArtifactSigned:
		signed, err := uc.Signing.SheetSigned(ctx, sheet.SheetID)
		if err != nil {
			return entities.Artifact{}, err
		}
		if !signed {
			return entities.Artifact{}, domainerrors.ErrNotYetAvailable
		}
	default:
		return entities.Artifact{}, domainerrors.ErrUnknownArtifact
	}

	artifact, found, err := uc.Sheets.GetArtifact(ctx, sheet.SheetID, kind)
	if err != nil {
		return entities.Artifact{}, err
	}
	if !found {
		return entities.Artifact{}, domainerrors.ErrNotYetAvailable
	}
	return artifact, nil
}
