package commands

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	application "kvorum/contexts/governance/voting-engine/application"
	"kvorum/contexts/governance/voting-engine/domain/entities"
	domainerrors "kvorum/contexts/governance/voting-engine/domain/errors"
	"kvorum/contexts/governance/voting-engine/ports"
	"kvorum/internal/shared/validation"
)

// BallotEntry is one ⟨question, choice⟩ pair of a submission.
type BallotEntry struct {
	QuestionID string
	Choice     string
}

// SubmitBallotCommand carries one owner's submission for one sheet. OwnerID
// and SheetID come from the token-scoped session, never from the request
// body.
type SubmitBallotCommand struct {
	SheetID string
	OwnerID string
	Entries []BallotEntry
	Consent bool
}

// BallotUseCase records votes. Resubmission before closure supersedes the
// earlier vote per question; the whole submission is rejected on any
// violation.
type BallotUseCase struct {
	Protocols ports.ProtocolRepository
	Sheets    ports.SheetRepository
	Votes     ports.VoteRepository
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (uc BallotUseCase) SubmitBallot(ctx context.Context, cmd SubmitBallotCommand) (int, error) {
	logger := application.ResolveLogger(uc.Logger)

	if err := validateBallot(cmd); err != nil {
		logger.Warn("ballot validation failed",
			"event", "voting_ballot_validation_failed",
			"module", "governance/voting-engine",
			"layer", "application",
			"sheet_id", strings.TrimSpace(cmd.SheetID),
			"owner_id", strings.TrimSpace(cmd.OwnerID),
			"error", err.Error(),
		)
		return 0, err
	}

	sheet, err := uc.Sheets.GetSheet(ctx, strings.TrimSpace(cmd.SheetID))
	if err != nil {
		return 0, err
	}
	now := uc.Clock.Now().UTC()
	if sheet.Status != entities.SheetStatusOpen {
		return 0, domainerrors.ErrSheetClosed
	}
	if !now.Before(sheet.ExpiresAt) {
		return 0, domainerrors.ErrSheetExpired
	}

	protocol, err := uc.Protocols.GetProtocol(ctx, sheet.ProtocolID)
	if err != nil {
		return 0, err
	}

	// Within one submission the last entry per question wins, mirroring the
	// cross-submission rule.
	votes := make(map[string]entities.Vote, len(cmd.Entries))
	order := make([]string, 0, len(cmd.Entries))
	for _, entry := range cmd.Entries {
		questionID := strings.TrimSpace(entry.QuestionID)
		if _, ok := protocol.QuestionByID(questionID); !ok {
			return 0, domainerrors.ErrUnknownQuestion
		}
		if _, seen := votes[questionID]; !seen {
			order = append(order, questionID)
		}
		votes[questionID] = entities.Vote{
			SheetID:    sheet.SheetID,
			OwnerID:    strings.TrimSpace(cmd.OwnerID),
			QuestionID: questionID,
			Choice:     entities.Choice(entry.Choice),
			CastAt:     now,
		}
	}

	for _, questionID := range order {
		if err := uc.Votes.UpsertVote(ctx, votes[questionID]); err != nil {
			return 0, err
		}
	}

	logger.Info("ballot recorded",
		"event", "voting_ballot_recorded",
		"module", "governance/voting-engine",
		"layer", "application",
		"sheet_id", sheet.SheetID,
		"owner_id", strings.TrimSpace(cmd.OwnerID),
		"vote_count", len(order),
	)
	return len(order), nil
}

func validateBallot(cmd SubmitBallotCommand) error {
	var c validation.Collector
	if !cmd.Consent {
		c.Add("consent", "informed consent must be given")
	}
	if len(cmd.Entries) == 0 {
		c.Add("entries", "must contain at least one vote")
	}
	for i, entry := range cmd.Entries {
		field := "entries[" + strconv.Itoa(i) + "]"
		if strings.TrimSpace(entry.QuestionID) == "" {
			c.Add(field+".question_id", "must not be empty")
		}
		switch entities.Choice(entry.Choice) {
		case entities.ChoiceFor, entities.ChoiceAgainst:
		default:
			c.Add(field+".choice", "must be FOR or AGAINST")
		}
	}
	if strings.TrimSpace(cmd.OwnerID) == "" {
		c.Add("owner_id", "must not be empty")
	}
	if strings.TrimSpace(cmd.SheetID) == "" {
		c.Add("sheet_id", "must not be empty")
	}
	return c.Err()
}
