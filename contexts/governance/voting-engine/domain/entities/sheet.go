package entities

import "time"

type SheetStatus string

const (
	SheetStatusOpen   SheetStatus = "OPEN"
	SheetStatusClosed SheetStatus = "CLOSED"
)

// Artifact kinds exposed by the download surface.
const (
	ArtifactOriginal      = "original"
	ArtifactVisualization = "visualization"
	ArtifactSigned        = "signed"
)

// Sheet is the per-protocol voting and signing artifact. It opens with the
// protocol's voting phase and freezes at expiry or explicit close.
type Sheet struct {
	SheetID    string
	ProtocolID string
	Status     SheetStatus
	ExpiresAt  time.Time
	CreatedAt  time.Time
	ClosedAt   *time.Time
}

// SheetAccess links one owner to one sheet through a hashed public token.
// Raw tokens are never stored.
type SheetAccess struct {
	SheetID   string
	OwnerID   string
	TokenHash string
	CreatedAt time.Time
}

// Artifact is one named binary representation of a sheet.
type Artifact struct {
	SheetID     string
	Kind        string
	FileName    string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// Validity windows by protocol type, in calendar days.
const (
	establishmentValidityDays = 15
	generalValidityDays       = 45
)

// CalculateSheetExpiresAt is the authoritative sheet expiry: the protocol
// date advanced to 23:59:59.999 UTC plus the type's validity window, using
// calendar-day arithmetic so reader-timezone shifts never shorten the
// window.
func CalculateSheetExpiresAt(protocolDate time.Time, protocolType ProtocolType) time.Time {
	days := generalValidityDays
	if protocolType == ProtocolTypeEstablishment {
		days = establishmentValidityDays
	}
	year, month, day := protocolDate.Date()
	return time.Date(year, month, day+days, 23, 59, 59, 999_000_000, time.UTC)
}

// OpenFor reports whether votes may still be cast at the given instant.
func (s Sheet) OpenFor(now time.Time) bool {
	return s.Status == SheetStatusOpen && now.Before(s.ExpiresAt)
}
