package errors

import "errors"

var (
	ErrProtocolNotFound     = errors.New("protocol not found")
	ErrAssociationNotFound  = errors.New("association not found")
	ErrSheetNotFound        = errors.New("sheet not found")
	ErrOwnerNotFound        = errors.New("owner not found")
	ErrProtocolNotDraft     = errors.New("protocol is not in draft")
	ErrEmptyAgenda          = errors.New("protocol has no questions")
	ErrDuplicateOrderNumber = errors.New("order number already used in protocol")
	ErrSheetClosed          = errors.New("sheet is closed")
	ErrSheetExpired         = errors.New("sheet validity window has passed")
	ErrUnknownQuestion      = errors.New("question does not belong to the sheet's protocol")
	ErrUnknownArtifact      = errors.New("unknown sheet artifact kind")
	ErrNotYetAvailable      = errors.New("sheet artifact is not yet available")
	ErrConflict             = errors.New("concurrent update conflict")
)
