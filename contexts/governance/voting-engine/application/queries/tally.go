package queries

import (
	"context"
	"strings"

	"kvorum/contexts/governance/voting-engine/domain/entities"
	"kvorum/contexts/governance/voting-engine/ports"
)

// SheetTallyResult is the tally view for one sheet. Final is true once the
// sheet has closed and the results are frozen.
type SheetTallyResult struct {
	SheetID string
	Final   bool
	Results []entities.QuestionResult
}

// TallyUseCase computes or reads per-question decisions. Live tallies are
// recomputed from the vote set at call time and never persisted.
type TallyUseCase struct {
	Protocols ports.ProtocolRepository
	Sheets    ports.SheetRepository
	Votes     ports.VoteRepository
	Results   ports.ResultRepository
}

func (uc TallyUseCase) SheetTally(ctx context.Context, sheetID string) (SheetTallyResult, error) {
	sheet, err := uc.Sheets.GetSheet(ctx, strings.TrimSpace(sheetID))
	if err != nil {
		return SheetTallyResult{}, err
	}

	if sheet.Status == entities.SheetStatusClosed {
		results, err := uc.Results.ListResultsBySheet(ctx, sheet.SheetID)
		if err != nil {
			return SheetTallyResult{}, err
		}
		return SheetTallyResult{SheetID: sheet.SheetID, Final: true, Results: results}, nil
	}

	protocol, err := uc.Protocols.GetProtocol(ctx, sheet.ProtocolID)
	if err != nil {
		return SheetTallyResult{}, err
	}
	votes, err := uc.Votes.ListVotesBySheet(ctx, sheet.SheetID)
	if err != nil {
		return SheetTallyResult{}, err
	}

	results := entities.TallyVotes(protocol.Questions, votes)
	for i := range results {
		results[i].SheetID = sheet.SheetID
	}
	return SheetTallyResult{SheetID: sheet.SheetID, Final: false, Results: results}, nil
}

// BallotView is what a token-scoped voter sees: the agenda plus their own
// current choices.
type BallotView struct {
	SheetID        string
	ProtocolNumber string
	ExpiresAt      string
	Open           bool
	Questions      []BallotQuestion
}

type BallotQuestion struct {
	QuestionID        string
	OrderNumber       int
	Text              string
	Proposal          string
	RequiresTwoThirds bool
	OwnChoice         string
}

// BallotUseCase serves the voter-facing ballot view.
type BallotUseCase struct {
	Protocols ports.ProtocolRepository
	Sheets    ports.SheetRepository
	Votes     ports.VoteRepository
	Clock     ports.Clock
}

func (uc BallotUseCase) OwnerBallot(ctx context.Context, sheetID, ownerID string) (BallotView, error) {
	sheet, err := uc.Sheets.GetSheet(ctx, strings.TrimSpace(sheetID))
	if err != nil {
		return BallotView{}, err
	}
	protocol, err := uc.Protocols.GetProtocol(ctx, sheet.ProtocolID)
	if err != nil {
		return BallotView{}, err
	}
	votes, err := uc.Votes.ListVotesBySheet(ctx, sheet.SheetID)
	if err != nil {
		return BallotView{}, err
	}

	own := make(map[string]entities.Choice, len(protocol.Questions))
	for _, vote := range votes {
		if vote.OwnerID == strings.TrimSpace(ownerID) {
			own[vote.QuestionID] = vote.Choice
		}
	}

	view := BallotView{
		SheetID:        sheet.SheetID,
		ProtocolNumber: protocol.Number,
		ExpiresAt:      sheet.ExpiresAt.Format("2006-01-02T15:04:05.000Z07:00"),
		Open:           sheet.OpenFor(uc.Clock.Now().UTC()),
		Questions:      make([]BallotQuestion, 0, len(protocol.Questions)),
	}
	for _, question := range protocol.Questions {
		view.Questions = append(view.Questions, BallotQuestion{
			QuestionID:        question.QuestionID,
			OrderNumber:       question.OrderNumber,
			Text:              question.Text,
			Proposal:          question.Proposal,
			RequiresTwoThirds: question.RequiresTwoThirds,
			OwnChoice:         string(own[question.QuestionID]),
		})
	}
	return view, nil
}
