package queries

import (
	"context"
	"errors"
	"log/slog"

	"kvorum/contexts/governance/signing-service/domain/entities"
	domainerrors "kvorum/contexts/governance/signing-service/domain/errors"
	"kvorum/contexts/governance/signing-service/ports"
)

// DocumentUseCase answers read-side questions about signing progress.
type DocumentUseCase struct {
	Documents ports.DocumentRepository
	Logger    *slog.Logger
}

// DocumentBySheet returns the signing mirror for a sheet.
func (uc DocumentUseCase) DocumentBySheet(ctx context.Context, sheetID string) (entities.Document, error) {
	return uc.Documents.GetDocumentBySheet(ctx, sheetID)
}

// SheetSigned reports whether the sheet's document has reached
// ORGANIZER_SIGNED. A sheet with no document yet is simply unsigned.
func (uc DocumentUseCase) SheetSigned(ctx context.Context, sheetID string) (bool, error) {
	document, err := uc.Documents.GetDocumentBySheet(ctx, sheetID)
	if errors.Is(err, domainerrors.ErrDocumentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return document.Status == entities.DocumentStatusOrganizerSigned, nil
}
