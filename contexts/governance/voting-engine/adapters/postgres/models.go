package postgresadapter

import (
	"time"

	"kvorum/contexts/governance/voting-engine/domain/entities"
)

type protocolModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	AssociationID string    `gorm:"column:association_id"`
	Number        string    `gorm:"column:number"`
	Date          time.Time `gorm:"column:date"`
	Type          string    `gorm:"column:type"`
	Status        string    `gorm:"column:status"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (protocolModel) TableName() string { return "protocols" }

func (m protocolModel) toEntity() entities.Protocol {
	return entities.Protocol{
		ProtocolID:    m.ID,
		AssociationID: m.AssociationID,
		Number:        m.Number,
		Date:          m.Date.UTC(),
		Type:          entities.ProtocolType(m.Type),
		Status:        entities.ProtocolStatus(m.Status),
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

func protocolModelFromEntity(p entities.Protocol) protocolModel {
	return protocolModel{
		ID:            p.ProtocolID,
		AssociationID: p.AssociationID,
		Number:        p.Number,
		Date:          p.Date.UTC(),
		Type:          string(p.Type),
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
	}
}

type questionModel struct {
	ID                string    `gorm:"column:id;primaryKey"`
	ProtocolID        string    `gorm:"column:protocol_id;uniqueIndex:uq_question_order,priority:1"`
	OrderNumber       int       `gorm:"column:order_number;uniqueIndex:uq_question_order,priority:2"`
	Text              string    `gorm:"column:text"`
	Proposal          string    `gorm:"column:proposal"`
	RequiresTwoThirds bool      `gorm:"column:requires_two_thirds"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (questionModel) TableName() string { return "questions" }

func (m questionModel) toEntity() entities.Question {
	return entities.Question{
		QuestionID:        m.ID,
		ProtocolID:        m.ProtocolID,
		OrderNumber:       m.OrderNumber,
		Text:              m.Text,
		Proposal:          m.Proposal,
		RequiresTwoThirds: m.RequiresTwoThirds,
		CreatedAt:         m.CreatedAt.UTC(),
	}
}

func questionModelFromEntity(q entities.Question) questionModel {
	return questionModel{
		ID:                q.QuestionID,
		ProtocolID:        q.ProtocolID,
		OrderNumber:       q.OrderNumber,
		Text:              q.Text,
		Proposal:          q.Proposal,
		RequiresTwoThirds: q.RequiresTwoThirds,
		CreatedAt:         q.CreatedAt.UTC(),
	}
}

type sheetModel struct {
	ID         string     `gorm:"column:id;primaryKey"`
	ProtocolID string     `gorm:"column:protocol_id;uniqueIndex"`
	Status     string     `gorm:"column:status"`
	ExpiresAt  time.Time  `gorm:"column:expires_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	ClosedAt   *time.Time `gorm:"column:closed_at"`
}

func (sheetModel) TableName() string { return "sheets" }

func (m sheetModel) toEntity() entities.Sheet {
	sheet := entities.Sheet{
		SheetID:    m.ID,
		ProtocolID: m.ProtocolID,
		Status:     entities.SheetStatus(m.Status),
		ExpiresAt:  m.ExpiresAt.UTC(),
		CreatedAt:  m.CreatedAt.UTC(),
	}
	if m.ClosedAt != nil {
		at := m.ClosedAt.UTC()
		sheet.ClosedAt = &at
	}
	return sheet
}

func sheetModelFromEntity(s entities.Sheet) sheetModel {
	row := sheetModel{
		ID:         s.SheetID,
		ProtocolID: s.ProtocolID,
		Status:     string(s.Status),
		ExpiresAt:  s.ExpiresAt.UTC(),
		CreatedAt:  s.CreatedAt.UTC(),
	}
	if s.ClosedAt != nil {
		at := s.ClosedAt.UTC()
		row.ClosedAt = &at
	}
	return row
}

type sheetAccessModel struct {
	TokenHash string    `gorm:"column:token_hash;primaryKey"`
	SheetID   string    `gorm:"column:sheet_id;index"`
	OwnerID   string    `gorm:"column:owner_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sheetAccessModel) TableName() string { return "sheet_access" }

type sheetArtifactModel struct {
	SheetID     string    `gorm:"column:sheet_id;primaryKey"`
	Kind        string    `gorm:"column:kind;primaryKey"`
	FileName    string    `gorm:"column:file_name"`
	ContentType string    `gorm:"column:content_type"`
	Data        []byte    `gorm:"column:data"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (sheetArtifactModel) TableName() string { return "sheet_artifacts" }

type voteModel struct {
	SheetID    string    `gorm:"column:sheet_id;primaryKey"`
	OwnerID    string    `gorm:"column:owner_id;primaryKey"`
	QuestionID string    `gorm:"column:question_id;primaryKey"`
	Choice     string    `gorm:"column:choice"`
	CastAt     time.Time `gorm:"column:cast_at"`
}

func (voteModel) TableName() string { return "votes" }

type questionResultModel struct {
	SheetID           string    `gorm:"column:sheet_id;primaryKey"`
	QuestionID        string    `gorm:"column:question_id;primaryKey"`
	OrderNumber       int       `gorm:"column:order_number"`
	RequiresTwoThirds bool      `gorm:"column:requires_two_thirds"`
	ForCount          int       `gorm:"column:for_count"`
	AgainstCount      int       `gorm:"column:against_count"`
	Passed            bool      `gorm:"column:passed"`
	FinalizedAt       time.Time `gorm:"column:finalized_at"`
}

func (questionResultModel) TableName() string { return "question_results" }

type ownerModel struct {
	ID            string `gorm:"column:id;primaryKey"`
	AssociationID string `gorm:"column:association_id;index"`
	LastName      string `gorm:"column:last_name"`
	FirstName     string `gorm:"column:first_name"`
	MiddleName    string `gorm:"column:middle_name"`
}

func (ownerModel) TableName() string { return "owners" }

func (m ownerModel) toEntity() entities.Owner {
	return entities.Owner{
		OwnerID:    m.ID,
		LastName:   m.LastName,
		FirstName:  m.FirstName,
		MiddleName: m.MiddleName,
	}
}

type associationModel struct {
	ID             string `gorm:"column:id;primaryKey"`
	Name           string `gorm:"column:name"`
	ShortName      string `gorm:"column:short_name"`
	Address        string `gorm:"column:address"`
	Edrpou         string `gorm:"column:edrpou"`
	OrganizerName  string `gorm:"column:organizer_name"`
	OrganizerEmail string `gorm:"column:organizer_email"`
	OrganizerPhone string `gorm:"column:organizer_phone"`
	LegalOwnerName string `gorm:"column:legal_owner_name"`
}

func (associationModel) TableName() string { return "associations" }

func (m associationModel) toEntity() entities.Association {
	return entities.Association{
		AssociationID:  m.ID,
		Name:           m.Name,
		ShortName:      m.ShortName,
		Address:        m.Address,
		Edrpou:         m.Edrpou,
		OrganizerName:  m.OrganizerName,
		OrganizerEmail: m.OrganizerEmail,
		OrganizerPhone: m.OrganizerPhone,
		LegalOwnerName: m.LegalOwnerName,
	}
}

type outboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "voting_outbox" }
