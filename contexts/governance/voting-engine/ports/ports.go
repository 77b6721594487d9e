package ports

import (
	"context"
	"time"

	"kvorum/contexts/governance/voting-engine/domain/entities"
	"kvorum/internal/shared/events"
	"kvorum/internal/shared/outbox"
)

type ProtocolRepository interface {
	SaveProtocol(ctx context.Context, protocol entities.Protocol) error
	GetProtocol(ctx context.Context, protocolID string) (entities.Protocol, error)
	AddQuestion(ctx context.Context, question entities.Question) error
	// TransitionProtocolStatus applies from->to conditionally and reports
	// whether this caller won the transition.
	TransitionProtocolStatus(ctx context.Context, protocolID string, from, to entities.ProtocolStatus, updatedAt time.Time) (bool, error)
}

type SheetRepository interface {
	SaveSheet(ctx context.Context, sheet entities.Sheet) error
	GetSheet(ctx context.Context, sheetID string) (entities.Sheet, error)
	GetSheetByProtocol(ctx context.Context, protocolID string) (entities.Sheet, bool, error)
	ListExpiredOpenSheets(ctx context.Context, now time.Time, limit int) ([]entities.Sheet, error)
	// ListSheetsPendingFinalization returns CLOSED sheets whose protocol
	// still reads VOTING: a close that stopped partway. The worker feeds
	// them back through the close use case.
	ListSheetsPendingFinalization(ctx context.Context, limit int) ([]entities.Sheet, error)
	// CloseSheet transitions OPEN->CLOSED conditionally and reports whether
	// this caller won the close.
	CloseSheet(ctx context.Context, sheetID string, closedAt time.Time) (bool, error)
	SaveAccess(ctx context.Context, access entities.SheetAccess) error
	SaveArtifact(ctx context.Context, artifact entities.Artifact) error
	GetArtifact(ctx context.Context, sheetID, kind string) (entities.Artifact, bool, error)
}

type VoteRepository interface {
	// UpsertVote writes the vote keyed by (sheet, owner, question); a later
	// submission for the same pair supersedes the earlier one.
	UpsertVote(ctx context.Context, vote entities.Vote) error
	ListVotesBySheet(ctx context.Context, sheetID string) ([]entities.Vote, error)
}

type ResultRepository interface {
	SaveResults(ctx context.Context, results []entities.QuestionResult) error
	ListResultsBySheet(ctx context.Context, sheetID string) ([]entities.QuestionResult, error)
}

// OwnerDirectory reads the externally managed ownership registry.
type OwnerDirectory interface {
	GetOwner(ctx context.Context, ownerID string) (entities.Owner, error)
	ListOwnersByAssociation(ctx context.Context, associationID string) ([]entities.Owner, error)
}

// AssociationDirectory reads the externally managed association profile.
type AssociationDirectory interface {
	GetAssociation(ctx context.Context, associationID string) (entities.Association, error)
}

// SigningStatus exposes the signing service's view of a sheet, gating the
// signed artifact.
type SigningStatus interface {
	SheetSigned(ctx context.Context, sheetID string) (bool, error)
}

// ArtifactRenderer produces the sheet's binary representations.
type ArtifactRenderer interface {
	RenderOriginal(protocol entities.Protocol, association entities.Association) (entities.Artifact, error)
	RenderVisualization(protocol entities.Protocol, association entities.Association, results []entities.QuestionResult) (entities.Artifact, error)
}

type OutboxRepository interface {
	AppendOutbox(ctx context.Context, envelope events.Envelope) error
	ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
