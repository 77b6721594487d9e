package errors

import "errors"

var (
	// ErrDocumentNotFound is returned when no document exists for the
	// requested sheet or identifier.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrStatusRegression marks an attempted backward document transition.
	// It is a defect signal, not a user error.
	ErrStatusRegression = errors.New("document status regression attempted")

	// ErrProviderUnavailable marks a transient signature-provider failure.
	// The sync worker retries on its next cycle.
	ErrProviderUnavailable = errors.New("signature provider unavailable")

	// ErrProviderRejected marks a permanent provider refusal that retrying
	// will not fix.
	ErrProviderRejected = errors.New("signature provider rejected request")

	// ErrConflict is returned when a storage write loses a race.
	ErrConflict = errors.New("conflicting concurrent update")
)
