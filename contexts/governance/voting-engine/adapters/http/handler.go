package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"kvorum/contexts/governance/voting-engine/application/commands"
	"kvorum/contexts/governance/voting-engine/application/queries"
	"kvorum/contexts/governance/voting-engine/domain/entities"
	httptransport "kvorum/contexts/governance/voting-engine/transport/http"
)

// Handler maps transport DTOs onto use cases. HTTP status mapping lives in
// the platform server.
type Handler struct {
	Protocols commands.ProtocolUseCase
	Sheets    commands.SheetUseCase
	Ballots   commands.BallotUseCase
	Tallies   queries.TallyUseCase
	Views     queries.BallotUseCase
	BaseURL   string
	Logger    *slog.Logger
}

func (h Handler) CreateProtocolHandler(ctx context.Context, req httptransport.CreateProtocolRequest) (httptransport.ProtocolResponse, error) {
	protocol, err := h.Protocols.CreateProtocol(ctx, commands.CreateProtocolCommand{
		AssociationID: req.AssociationID,
		Number:        req.Number,
		Date:          req.Date,
		Type:          req.Type,
	})
	if err != nil {
		return httptransport.ProtocolResponse{}, err
	}
	return protocolResponse(protocol), nil
}

func (h Handler) AddQuestionHandler(ctx context.Context, protocolID string, req httptransport.AddQuestionRequest) (httptransport.QuestionResponse, error) {
	question, err := h.Protocols.AddQuestion(ctx, commands.AddQuestionCommand{
		ProtocolID:        protocolID,
		OrderNumber:       req.OrderNumber,
		Text:              req.Text,
		Proposal:          req.Proposal,
		RequiresTwoThirds: req.RequiresTwoThirds,
	})
	if err != nil {
		return httptransport.QuestionResponse{}, err
	}
	return httptransport.QuestionResponse{
		QuestionID:        question.QuestionID,
		ProtocolID:        question.ProtocolID,
		OrderNumber:       question.OrderNumber,
		Text:              question.Text,
		Proposal:          question.Proposal,
		RequiresTwoThirds: question.RequiresTwoThirds,
	}, nil
}

func (h Handler) OpenVotingHandler(ctx context.Context, protocolID string) (httptransport.OpenVotingResponse, error) {
	result, err := h.Sheets.OpenVoting(ctx, protocolID)
	if err != nil {
		return httptransport.OpenVotingResponse{}, err
	}
	links := make([]httptransport.OwnerLink, 0, len(result.Links))
	for _, link := range result.Links {
		links = append(links, httptransport.OwnerLink{
			OwnerID:     link.OwnerID,
			DisplayName: link.DisplayName,
			BallotURL:   strings.TrimRight(h.BaseURL, "/") + "/api/vote/v1/sheets/" + link.Token,
		})
	}
	return httptransport.OpenVotingResponse{
		SheetID:   result.Sheet.SheetID,
		ExpiresAt: formatTime(result.Sheet.ExpiresAt),
		Links:     links,
	}, nil
}

func (h Handler) SubmitBallotHandler(ctx context.Context, sheetID, ownerID string, req httptransport.SubmitBallotRequest) (httptransport.SubmitBallotResponse, error) {
	entries := make([]commands.BallotEntry, 0, len(req.Entries))
	for _, entry := range req.Entries {
		entries = append(entries, commands.BallotEntry{
			QuestionID: entry.QuestionID,
			Choice:     entry.Choice,
		})
	}
	count, err := h.Ballots.SubmitBallot(ctx, commands.SubmitBallotCommand{
		SheetID: sheetID,
		OwnerID: ownerID,
		Entries: entries,
		Consent: req.Consent,
	})
	if err != nil {
		return httptransport.SubmitBallotResponse{}, err
	}
	return httptransport.SubmitBallotResponse{RecordedCount: count}, nil
}

func (h Handler) CloseSheetHandler(ctx context.Context, sheetID string) (httptransport.TallyResponse, error) {
	results, err := h.Sheets.CloseSheet(ctx, sheetID)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	return httptransport.TallyResponse{
		SheetID: sheetID,
		Final:   true,
		Results: resultItems(results),
	}, nil
}

func (h Handler) SheetTallyHandler(ctx context.Context, sheetID string) (httptransport.TallyResponse, error) {
	tally, err := h.Tallies.SheetTally(ctx, sheetID)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	return httptransport.TallyResponse{
		SheetID: tally.SheetID,
		Final:   tally.Final,
		Results: resultItems(tally.Results),
	}, nil
}

func (h Handler) OwnerBallotHandler(ctx context.Context, sheetID, ownerID string) (httptransport.BallotViewResponse, error) {
	view, err := h.Views.OwnerBallot(ctx, sheetID, ownerID)
	if err != nil {
		return httptransport.BallotViewResponse{}, err
	}
	questions := make([]httptransport.BallotQuestion, 0, len(view.Questions))
	for _, question := range view.Questions {
		questions = append(questions, httptransport.BallotQuestion{
			QuestionID:        question.QuestionID,
			OrderNumber:       question.OrderNumber,
			Text:              question.Text,
			Proposal:          question.Proposal,
			RequiresTwoThirds: question.RequiresTwoThirds,
			OwnChoice:         question.OwnChoice,
		})
	}
	return httptransport.BallotViewResponse{
		SheetID:        view.SheetID,
		ProtocolNumber: view.ProtocolNumber,
		ExpiresAt:      view.ExpiresAt,
		Open:           view.Open,
		Questions:      questions,
	}, nil
}

func (h Handler) GetArtifactHandler(ctx context.Context, sheetID, kind string) (entities.Artifact, error) {
	return h.Sheets.GetArtifact(ctx, sheetID, kind)
}

func protocolResponse(protocol entities.Protocol) httptransport.ProtocolResponse {
	return httptransport.ProtocolResponse{
		ProtocolID:    protocol.ProtocolID,
		AssociationID: protocol.AssociationID,
		Number:        protocol.Number,
		Date:          protocol.Date.Format("2006-01-02"),
		Type:          string(protocol.Type),
		Status:        string(protocol.Status),
	}
}

func resultItems(results []entities.QuestionResult) []httptransport.QuestionResultItem {
	items := make([]httptransport.QuestionResultItem, 0, len(results))
	for _, result := range results {
		items = append(items, httptransport.QuestionResultItem{
			QuestionID:        result.QuestionID,
			OrderNumber:       result.OrderNumber,
			RequiresTwoThirds: result.RequiresTwoThirds,
			ForCount:          result.ForCount,
			AgainstCount:      result.AgainstCount,
			Passed:            result.Passed,
		})
	}
	return items
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000Z07:00")
}
