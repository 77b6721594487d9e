package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"kvorum/contexts/governance/signing-service/application/queries"
	httptransport "kvorum/contexts/governance/signing-service/transport/http"
)

// Handler maps transport DTOs onto use cases. HTTP status mapping lives in
// the platform server.
type Handler struct {
	Documents queries.DocumentUseCase
	Logger    *slog.Logger
}

func (h Handler) GetDocumentHandler(ctx context.Context, sheetID string) (httptransport.DocumentResponse, error) {
	document, err := h.Documents.DocumentBySheet(ctx, sheetID)
	if err != nil {
		return httptransport.DocumentResponse{}, err
	}
	return httptransport.DocumentResponse{
		DocumentID:        document.DocumentID,
		SheetID:           document.SheetID,
		Status:            string(document.Status),
		OwnerSignedAt:     formatOptional(document.OwnerSignedAt),
		OrganizerSignedAt: formatOptional(document.OrganizerSignedAt),
	}, nil
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
