package events

import "time"

// Topic names shared between producing contexts and consuming workers.
const (
	TopicSheetClosed = "governance.sheet.closed"
)

// Envelope is the canonical event shape carried through the outbox and the
// in-process bus. Payload is event-specific and versioned.
type Envelope struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	OccurredAt     time.Time `json:"occurred_at_utc"`
	EntityType     string    `json:"entity_type"`
	EntityID       string    `json:"entity_id"`
	PayloadVersion int       `json:"payload_version"`
	Payload        any       `json:"payload"`
}

// SheetClosedPayload is emitted by the voting engine once a sheet's tally is
// finalized. The signing service turns it into a provider document.
type SheetClosedPayload struct {
	SheetID        string          `json:"sheet_id"`
	ProtocolID     string          `json:"protocol_id"`
	ProtocolNumber string          `json:"protocol_number"`
	FinalizedAt    time.Time       `json:"finalized_at"`
	Organizer      Participant     `json:"organizer"`
	LegalOwner     Participant     `json:"legal_owner"`
	Decisions      []SheetDecision `json:"decisions"`
}

// Participant identifies one signer role in the decision package.
type Participant struct {
	Role  string `json:"role"` // OWNER or ORGANIZER
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// SheetDecision is one tallied agenda question.
type SheetDecision struct {
	QuestionID   string `json:"question_id"`
	OrderNumber  int    `json:"order_number"`
	Proposal     string `json:"proposal"`
	ForCount     int    `json:"for_count"`
	AgainstCount int    `json:"against_count"`
	Passed       bool   `json:"passed"`
}
