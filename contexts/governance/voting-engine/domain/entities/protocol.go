package entities

import (
	"strings"
	"time"

	"kvorum/internal/shared/validation"
)

type ProtocolType string

const (
	ProtocolTypeEstablishment ProtocolType = "ESTABLISHMENT"
	ProtocolTypeGeneral       ProtocolType = "GENERAL"
)

type ProtocolStatus string

const (
	ProtocolStatusDraft  ProtocolStatus = "DRAFT"
	ProtocolStatusVoting ProtocolStatus = "VOTING"
	ProtocolStatusClosed ProtocolStatus = "CLOSED"
)

// Protocol is a formal meeting record with an ordered agenda. It is mutable
// only while in DRAFT; opening the vote freezes number, date and questions.
type Protocol struct {
	ProtocolID    string
	AssociationID string
	Number        string
	Date          time.Time // calendar date; time-of-day is not trusted
	Type          ProtocolType
	Status        ProtocolStatus
	Questions     []Question
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Question is one agenda item. OrderNumber defines ballot order and is
// unique within the protocol.
type Question struct {
	QuestionID        string
	ProtocolID        string
	OrderNumber       int
	Text              string
	Proposal          string
	RequiresTwoThirds bool
	CreatedAt         time.Time
}

const protocolDateLayout = "2006-01-02"

// ParseProtocolDate parses the wire format for protocol dates.
func ParseProtocolDate(raw string) (time.Time, error) {
	return time.Parse(protocolDateLayout, strings.TrimSpace(raw))
}

// ValidateProtocolInput checks the structural rules for a new protocol and
// reports every violation at once.
func ValidateProtocolInput(number, date, protocolType string) error {
	var c validation.Collector
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		c.Add("number", "must not be empty")
	} else if len([]rune(trimmed)) > 50 {
		c.Add("number", "must not exceed 50 characters")
	}
	if _, err := ParseProtocolDate(date); err != nil {
		c.Add("date", "must be a valid calendar date in YYYY-MM-DD format")
	}
	switch ProtocolType(strings.TrimSpace(protocolType)) {
	case ProtocolTypeEstablishment, ProtocolTypeGeneral:
	default:
		c.Add("type", "must be ESTABLISHMENT or GENERAL")
	}
	return c.Err()
}

// ValidateQuestionInput checks the structural rules for one agenda question.
func ValidateQuestionInput(orderNumber int, text, proposal string) error {
	var c validation.Collector
	if orderNumber < 1 {
		c.Add("order_number", "must be a positive integer")
	}
	c.CheckLen("text", text, 10, 2000)
	c.CheckLen("proposal", proposal, 10, 5000)
	return c.Err()
}

// HasOrderNumber reports whether the agenda already uses the given slot.
func (p Protocol) HasOrderNumber(orderNumber int) bool {
	for _, q := range p.Questions {
		if q.OrderNumber == orderNumber {
			return true
		}
	}
	return false
}

// QuestionByID returns the agenda question with the given identifier.
func (p Protocol) QuestionByID(questionID string) (Question, bool) {
	for _, q := range p.Questions {
		if q.QuestionID == questionID {
			return q, true
		}
	}
	return Question{}, false
}
