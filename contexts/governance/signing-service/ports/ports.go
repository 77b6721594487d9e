package ports

import (
	"context"
	"time"

	"kvorum/contexts/governance/signing-service/domain/entities"
)

// DocumentRepository stores the local mirror of provider documents.
type DocumentRepository interface {
	// SaveDocument inserts a new document. A second insert for the same
	// sheet returns ErrConflict; one document per sheet.
	SaveDocument(ctx context.Context, document entities.Document) error

	GetDocument(ctx context.Context, documentID string) (entities.Document, error)
	GetDocumentBySheet(ctx context.Context, sheetID string) (entities.Document, error)

	// ListUnfinishedDocuments returns documents whose signing or artifact
	// delivery is still in progress, oldest first, up to limit.
	ListUnfinishedDocuments(ctx context.Context, limit int) ([]entities.Document, error)

	// SetProviderRef records the provider's reference once registration
	// succeeded. Registration is the NO-REF -> CREATED leg of the
	// document lifecycle and may be retried until it lands.
	SetProviderRef(ctx context.Context, documentID, providerRef string) error

	// MarkArtifactStored records that the executed sheet bytes reached the
	// sheet store, removing the document from the sync backlog.
	MarkArtifactStored(ctx context.Context, documentID string) error

	// AdvanceStatus applies a forward transition with compare-and-set
	// semantics: the write succeeds only while the stored status still
	// equals from. Returns false when the precondition no longer holds.
	AdvanceStatus(ctx context.Context, documentID string, from, to entities.DocumentStatus, ownerSignedAt, organizerSignedAt *time.Time) (bool, error)
}

// EventInbox deduplicates consumed bus events.
type EventInbox interface {
	// MarkProcessed records the event id; returns false when the event was
	// already processed.
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
}

// SignatureProvider is the external e-sign gateway. CreateDocument and
// GetStatus cross a network boundary and may fail transiently.
type SignatureProvider interface {
	CreateDocument(ctx context.Context, req entities.CreateDocumentRequest) (string, error)
	GetStatus(ctx context.Context, providerRef string) (entities.StatusReport, error)
	DownloadSigned(ctx context.Context, providerRef string) ([]byte, error)
}

// SignedArtifactSink receives the executed sheet bytes once the provider
// reports ORGANIZER_SIGNED. The voting engine's sheet store implements it.
type SignedArtifactSink interface {
	StoreSignedSheet(ctx context.Context, sheetID, fileName, contentType string, data []byte) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
