package postgresadapter

import (
	"time"

	"kvorum/contexts/governance/signing-service/domain/entities"
)

type documentModel struct {
	ID                string     `gorm:"column:id;primaryKey"`
	SheetID           string     `gorm:"column:sheet_id;uniqueIndex:uq_document_sheet"`
	ProviderRef       string     `gorm:"column:provider_ref"`
	Status            string     `gorm:"column:status"`
	OwnerSignedAt     *time.Time `gorm:"column:owner_signed_at"`
	OrganizerSignedAt *time.Time `gorm:"column:organizer_signed_at"`
	Submission        []byte     `gorm:"column:submission"`
	ArtifactStored    bool       `gorm:"column:artifact_stored"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (documentModel) TableName() string { return "documents" }

func (m documentModel) toEntity() entities.Document {
	return entities.Document{
		DocumentID:        m.ID,
		SheetID:           m.SheetID,
		ProviderRef:       m.ProviderRef,
		Status:            entities.DocumentStatus(m.Status),
		OwnerSignedAt:     normalizeOptional(m.OwnerSignedAt),
		OrganizerSignedAt: normalizeOptional(m.OrganizerSignedAt),
		Submission:        m.Submission,
		ArtifactStored:    m.ArtifactStored,
		CreatedAt:         m.CreatedAt.UTC(),
		UpdatedAt:         m.UpdatedAt.UTC(),
	}
}

func documentModelFromEntity(d entities.Document) documentModel {
	return documentModel{
		ID:                d.DocumentID,
		SheetID:           d.SheetID,
		ProviderRef:       d.ProviderRef,
		Status:            string(d.Status),
		OwnerSignedAt:     d.OwnerSignedAt,
		OrganizerSignedAt: d.OrganizerSignedAt,
		Submission:        d.Submission,
		ArtifactStored:    d.ArtifactStored,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}

type processedEventModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (processedEventModel) TableName() string { return "signing_processed_events" }

func normalizeOptional(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
