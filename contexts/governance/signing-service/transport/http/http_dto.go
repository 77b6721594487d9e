package http

// ErrorResponse is the error body for signing endpoints.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DocumentResponse reports signing progress for one sheet.
type DocumentResponse struct {
	DocumentID        string `json:"document_id"`
	SheetID           string `json:"sheet_id"`
	Status            string `json:"status"`
	OwnerSignedAt     string `json:"owner_signed_at,omitempty"`
	OrganizerSignedAt string `json:"organizer_signed_at,omitempty"`
}
