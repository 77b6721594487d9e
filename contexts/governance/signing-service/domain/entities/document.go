package entities

import "time"

// DocumentStatus mirrors the external e-sign provider's view of a decision
// sheet document. The local copy only ever moves forward.
type DocumentStatus string

const (
	DocumentStatusCreated         DocumentStatus = "CREATED"
	DocumentStatusOwnerSigned     DocumentStatus = "OWNER_SIGNED"
	DocumentStatusOrganizerSigned DocumentStatus = "ORGANIZER_SIGNED"
)

var statusRank = map[DocumentStatus]int{
	DocumentStatusCreated:         1,
	DocumentStatusOwnerSigned:     2,
	DocumentStatusOrganizerSigned: 3,
}

// Rank returns the position of the status in the signing sequence, or 0 for
// an unknown status.
func (s DocumentStatus) Rank() int {
	return statusRank[s]
}

// Known reports whether the provider status is one the state machine accepts.
func (s DocumentStatus) Known() bool {
	return statusRank[s] != 0
}

// Advances reports whether moving to next is a strictly forward transition.
func (s DocumentStatus) Advances(next DocumentStatus) bool {
	return next.Known() && next.Rank() > s.Rank()
}

// Document is the local mirror of a provider document. One document per
// sheet; the provider holds the authoritative state. A document without a
// ProviderRef has been mirrored locally but not yet registered with the
// provider; registration retries until the reference lands.
type Document struct {
	DocumentID        string
	SheetID           string
	ProviderRef       string
	Status            DocumentStatus
	OwnerSignedAt     *time.Time
	OrganizerSignedAt *time.Time

	// Submission is the serialized CreateDocumentRequest, kept so a
	// failed provider registration can be replayed from the row alone.
	Submission []byte

	// ArtifactStored tracks whether the executed sheet bytes have been
	// copied into the sheet store. Kept separate from Status so a failed
	// download is retried without re-entering the state machine.
	ArtifactStored bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatusReport is what a provider status poll returns. Timestamps are
// optional; when the provider supplies one it is authoritative.
type StatusReport struct {
	Status            DocumentStatus
	OwnerSignedAt     *time.Time
	OrganizerSignedAt *time.Time
}

// SignerRole values used in provider document creation.
const (
	RoleOwner     = "OWNER"
	RoleOrganizer = "ORGANIZER"
)

// Signer is one participant the provider collects a signature from.
type Signer struct {
	Role  string
	Name  string
	Email string
	Phone string
}

// CreateDocumentRequest is the decision package handed to the provider once
// a sheet's tally is finalized.
type CreateDocumentRequest struct {
	SheetID        string
	ProtocolNumber string
	FinalizedAt    time.Time
	Signers        []Signer
	Payload        []byte
}
