package commands

import (
	"context"
	"log/slog"
	"strings"

	application "kvorum/contexts/governance/voting-engine/application"
	"kvorum/contexts/governance/voting-engine/domain/entities"
	domainerrors "kvorum/contexts/governance/voting-engine/domain/errors"
	"kvorum/contexts/governance/voting-engine/ports"
	"kvorum/internal/shared/validation"
)

// CreateProtocolCommand is the write-model input for a new draft protocol.
type CreateProtocolCommand struct {
	AssociationID string
	Number        string
	Date          string // YYYY-MM-DD
	Type          string
}

// AddQuestionCommand appends one agenda question to a draft protocol.
type AddQuestionCommand struct {
	ProtocolID        string
	OrderNumber       int
	Text              string
	Proposal          string
	RequiresTwoThirds bool
}

// ProtocolUseCase owns the draft lifecycle of protocols and their agenda.
type ProtocolUseCase struct {
	Protocols    ports.ProtocolRepository
	Associations ports.AssociationDirectory
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func (uc ProtocolUseCase) CreateProtocol(ctx context.Context, cmd CreateProtocolCommand) (entities.Protocol, error) {
	logger := application.ResolveLogger(uc.Logger)

	if err := entities.ValidateProtocolInput(cmd.Number, cmd.Date, cmd.Type); err != nil {
		logger.Warn("protocol create validation failed",
			"event", "voting_protocol_create_validation_failed",
			"module", "governance/voting-engine",
			"layer", "application",
			"association_id", strings.TrimSpace(cmd.AssociationID),
			"error", err.Error(),
		)
		return entities.Protocol{}, err
	}
	if strings.TrimSpace(cmd.AssociationID) == "" {
		return entities.Protocol{}, &validation.Error{Violations: []validation.Violation{
			{Field: "association_id", Message: "must not be empty"},
		}}
	}
	if _, err := uc.Associations.GetAssociation(ctx, strings.TrimSpace(cmd.AssociationID)); err != nil {
		return entities.Protocol{}, err
	}

	date, err := entities.ParseProtocolDate(cmd.Date)
	if err != nil {
		// Unreachable after validation; kept so a refactor cannot silently
		// persist a zero date.
		return entities.Protocol{}, err
	}

	protocolID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Protocol{}, err
	}

	now := uc.Clock.Now().UTC()
	protocol := entities.Protocol{
		ProtocolID:    protocolID,
		AssociationID: strings.TrimSpace(cmd.AssociationID),
		Number:        strings.TrimSpace(cmd.Number),
		Date:          date,
		Type:          entities.ProtocolType(strings.TrimSpace(cmd.Type)),
		Status:        entities.ProtocolStatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.Protocols.SaveProtocol(ctx, protocol); err != nil {
		return entities.Protocol{}, err
	}

	logger.Info("protocol created",
		"event", "voting_protocol_created",
		"module", "governance/voting-engine",
		"layer", "application",
		"protocol_id", protocol.ProtocolID,
		"association_id", protocol.AssociationID,
		"protocol_type", string(protocol.Type),
	)
	return protocol, nil
}

func (uc ProtocolUseCase) AddQuestion(ctx context.Context, cmd AddQuestionCommand) (entities.Question, error) {
	logger := application.ResolveLogger(uc.Logger)

	if err := entities.ValidateQuestionInput(cmd.OrderNumber, cmd.Text, cmd.Proposal); err != nil {
		logger.Warn("question add validation failed",
			"event", "voting_question_add_validation_failed",
			"module", "governance/voting-engine",
			"layer", "application",
			"protocol_id", strings.TrimSpace(cmd.ProtocolID),
			"error", err.Error(),
		)
		return entities.Question{}, err
	}

	protocol, err := uc.Protocols.GetProtocol(ctx, strings.TrimSpace(cmd.ProtocolID))
	if err != nil {
		return entities.Question{}, err
	}
	if protocol.Status != entities.ProtocolStatusDraft {
		return entities.Question{}, domainerrors.ErrProtocolNotDraft
	}
	if protocol.HasOrderNumber(cmd.OrderNumber) {
		return entities.Question{}, domainerrors.ErrDuplicateOrderNumber
	}

	questionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Question{}, err
	}
	question := entities.Question{
		QuestionID:        questionID,
		ProtocolID:        protocol.ProtocolID,
		OrderNumber:       cmd.OrderNumber,
		Text:              strings.TrimSpace(cmd.Text),
		Proposal:          strings.TrimSpace(cmd.Proposal),
		RequiresTwoThirds: cmd.RequiresTwoThirds,
		CreatedAt:         uc.Clock.Now().UTC(),
	}
	if err := uc.Protocols.AddQuestion(ctx, question); err != nil {
		return entities.Question{}, err
	}

	logger.Info("question added",
		"event", "voting_question_added",
		"module", "governance/voting-engine",
		"layer", "application",
		"protocol_id", protocol.ProtocolID,
		"question_id", question.QuestionID,
		"order_number", question.OrderNumber,
	)
	return question, nil
}
