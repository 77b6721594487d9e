package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	application "kvorum/contexts/governance/signing-service/application"
	"kvorum/contexts/governance/signing-service/domain/entities"
	domainerrors "kvorum/contexts/governance/signing-service/domain/errors"
	"kvorum/contexts/governance/signing-service/ports"
)

const (
	defaultSyncBatchSize    = 50
	defaultProviderTimeout  = 10 * time.Second
	signedArtifactName      = "decision-sheet-signed.pdf"
	signedArtifactMediaType = "application/octet-stream"
)

// StatusSync drives every document that has not finished signing: it
// registers unregistered documents with the provider, polls for status and
// applies forward-only transitions.
// Safe to run concurrently: every write is a compare-and-set against the
// status observed at the start of the cycle.
type StatusSync struct {
	Documents       ports.DocumentRepository
	Provider        ports.SignatureProvider
	Sink            ports.SignedArtifactSink
	Clock           ports.Clock
	BatchSize       int
	ProviderTimeout time.Duration
	Logger          *slog.Logger
}

func (w StatusSync) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(w.Logger)

	batch := w.BatchSize
	if batch <= 0 {
		batch = defaultSyncBatchSize
	}
	documents, err := w.Documents.ListUnfinishedDocuments(ctx, batch)
	if err != nil {
		return err
	}

	for _, document := range documents {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.syncOne(ctx, document, logger); err != nil {
			// Transient provider trouble: leave the document as is and
			// try again on the next cycle.
			logger.Warn("document sync attempt failed",
				"event", "document_sync_retry",
				"module", "governance/signing-service",
				"layer", "worker",
				"document_id", document.DocumentID,
				"sheet_id", document.SheetID,
				"error", err.Error(),
			)
		}
	}
	return nil
}

func (w StatusSync) syncOne(ctx context.Context, document entities.Document, logger *slog.Logger) error {
	if document.ProviderRef == "" {
		// Mirrored but never registered: the consumer persisted the row
		// and left provider registration to this worker.
		return w.registerDocument(ctx, document, logger)
	}
	if document.Status == entities.DocumentStatusOrganizerSigned {
		// Signing already finished; only the artifact delivery is pending.
		return w.storeSignedSheet(ctx, document, logger)
	}

	timeout := w.ProviderTimeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	report, err := w.Provider.GetStatus(pollCtx, document.ProviderRef)
	cancel()
	if err != nil {
		return err
	}

	if !report.Status.Known() {
		return fmt.Errorf("provider reported unknown status %q for document %s", report.Status, document.DocumentID)
	}
	if report.Status.Rank() < document.Status.Rank() {
		// Stale or out-of-order provider notification. The state machine
		// never regresses; record the defect signal and move on.
		logger.Error("stale provider status ignored",
			"event", "document_status_regression",
			"module", "governance/signing-service",
			"layer", "worker",
			"document_id", document.DocumentID,
			"sheet_id", document.SheetID,
			"local_status", string(document.Status),
			"provider_status", string(report.Status),
			"error", domainerrors.ErrStatusRegression.Error(),
		)
		return nil
	}
	if report.Status == document.Status {
		return nil
	}

	observedAt := w.Clock.Now()
	ownerSignedAt := document.OwnerSignedAt
	organizerSignedAt := document.OrganizerSignedAt
	if report.Status.Rank() >= entities.DocumentStatusOwnerSigned.Rank() && ownerSignedAt == nil {
		ownerSignedAt = timestampOr(report.OwnerSignedAt, observedAt)
	}
	if report.Status == entities.DocumentStatusOrganizerSigned && organizerSignedAt == nil {
		organizerSignedAt = timestampOr(report.OrganizerSignedAt, observedAt)
	}

	applied, err := w.Documents.AdvanceStatus(ctx, document.DocumentID, document.Status, report.Status, ownerSignedAt, organizerSignedAt)
	if err != nil {
		return err
	}
	if !applied {
		// A concurrent sync already moved the document; its cycle owns the
		// follow-up work.
		return nil
	}

	logger.Info("document status advanced",
		"event", "document_status_advanced",
		"module", "governance/signing-service",
		"layer", "worker",
		"document_id", document.DocumentID,
		"sheet_id", document.SheetID,
		"from", string(document.Status),
		"to", string(report.Status),
	)

	if report.Status == entities.DocumentStatusOrganizerSigned {
		return w.storeSignedSheet(ctx, document, logger)
	}
	return nil
}

// registerDocument replays the persisted submission against the provider.
// It runs every cycle until the provider accepts, so an outage during sheet
// intake only delays registration.
func (w StatusSync) registerDocument(ctx context.Context, document entities.Document, logger *slog.Logger) error {
	var request entities.CreateDocumentRequest
	if err := json.Unmarshal(document.Submission, &request); err != nil {
		return fmt.Errorf("decode submission for document %s: %w", document.DocumentID, err)
	}

	timeout := w.ProviderTimeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	createCtx, cancel := context.WithTimeout(ctx, timeout)
	providerRef, err := w.Provider.CreateDocument(createCtx, request)
	cancel()
	if err != nil {
		return err
	}

	if err := w.Documents.SetProviderRef(ctx, document.DocumentID, providerRef); err != nil {
		return err
	}
	logger.Info("provider document registered",
		"event", "document_created",
		"module", "governance/signing-service",
		"layer", "worker",
		"document_id", document.DocumentID,
		"sheet_id", document.SheetID,
		"provider_ref", providerRef,
	)
	return nil
}

// storeSignedSheet fetches the executed artifact and hands it to the sheet
// store so downloads start working.
func (w StatusSync) storeSignedSheet(ctx context.Context, document entities.Document, logger *slog.Logger) error {
	timeout := w.ProviderTimeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	downloadCtx, cancel := context.WithTimeout(ctx, timeout)
	data, err := w.Provider.DownloadSigned(downloadCtx, document.ProviderRef)
	cancel()
	if err != nil {
		return err
	}
	if err := w.Sink.StoreSignedSheet(ctx, document.SheetID, signedArtifactName, signedArtifactMediaType, data); err != nil {
		return err
	}
	if err := w.Documents.MarkArtifactStored(ctx, document.DocumentID); err != nil {
		return err
	}
	logger.Info("signed sheet stored",
		"event", "signed_sheet_stored",
		"module", "governance/signing-service",
		"layer", "worker",
		"document_id", document.DocumentID,
		"sheet_id", document.SheetID,
		"size_bytes", len(data),
	)
	return nil
}

func timestampOr(provided *time.Time, observed time.Time) *time.Time {
	if provided != nil {
		utc := provided.UTC()
		return &utc
	}
	return &observed
}
