package http

// FieldViolation mirrors one validation failure for API clients.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Code       string           `json:"code"`
	Message    string           `json:"message"`
	Violations []FieldViolation `json:"violations,omitempty"`
}

type CreateProtocolRequest struct {
	AssociationID string `json:"association_id"`
	Number        string `json:"number"`
	Date          string `json:"date"` // YYYY-MM-DD
	Type          string `json:"type"` // ESTABLISHMENT or GENERAL
}

type ProtocolResponse struct {
	ProtocolID    string `json:"protocol_id"`
	AssociationID string `json:"association_id"`
	Number        string `json:"number"`
	Date          string `json:"date"`
	Type          string `json:"type"`
	Status        string `json:"status"`
}

type AddQuestionRequest struct {
	OrderNumber       int    `json:"order_number"`
	Text              string `json:"text"`
	Proposal          string `json:"proposal"`
	RequiresTwoThirds bool   `json:"requires_two_thirds"`
}

type QuestionResponse struct {
	QuestionID        string `json:"question_id"`
	ProtocolID        string `json:"protocol_id"`
	OrderNumber       int    `json:"order_number"`
	Text              string `json:"text"`
	Proposal          string `json:"proposal"`
	RequiresTwoThirds bool   `json:"requires_two_thirds"`
}

type OwnerLink struct {
	OwnerID     string `json:"owner_id"`
	DisplayName string `json:"display_name"`
	BallotURL   string `json:"ballot_url"`
}

type OpenVotingResponse struct {
	SheetID   string      `json:"sheet_id"`
	ExpiresAt string      `json:"expires_at"`
	Links     []OwnerLink `json:"links"`
}

type BallotEntry struct {
	QuestionID string `json:"question_id"`
	Choice     string `json:"choice"`
}

type SubmitBallotRequest struct {
	Entries []BallotEntry `json:"entries"`
	Consent bool          `json:"consent"`
}

type SubmitBallotResponse struct {
	RecordedCount int `json:"recorded_count"`
}

type QuestionResultItem struct {
	QuestionID        string `json:"question_id"`
	OrderNumber       int    `json:"order_number"`
	RequiresTwoThirds bool   `json:"requires_two_thirds"`
	ForCount          int    `json:"for_count"`
	AgainstCount      int    `json:"against_count"`
	Passed            bool   `json:"passed"`
}

type TallyResponse struct {
	SheetID string               `json:"sheet_id"`
	Final   bool                 `json:"final"`
	Results []QuestionResultItem `json:"results"`
}

type BallotQuestion struct {
	QuestionID        string `json:"question_id"`
	OrderNumber       int    `json:"order_number"`
	Text              string `json:"text"`
	Proposal          string `json:"proposal"`
	RequiresTwoThirds bool   `json:"requires_two_thirds"`
	OwnChoice         string `json:"own_choice,omitempty"`
}

type BallotViewResponse struct {
	SheetID        string           `json:"sheet_id"`
	ProtocolNumber string           `json:"protocol_number"`
	ExpiresAt      string           `json:"expires_at"`
	Open           bool             `json:"open"`
	Questions      []BallotQuestion `json:"questions"`
}
