package workers

import (
	"context"
	"errors"
	"log/slog"

	application "kvorum/contexts/governance/voting-engine/application"
	"kvorum/contexts/governance/voting-engine/application/commands"
	domainerrors "kvorum/contexts/governance/voting-engine/domain/errors"
	"kvorum/contexts/governance/voting-engine/ports"
)

// SheetExpirer closes sheets whose validity window has passed and finishes
// closes that stopped partway. Both go through the same use case as an
// explicit close, so finalization happens exactly once even when an operator
// and the worker race.
type SheetExpirer struct {
	Sheets    ports.SheetRepository
	Closer    commands.SheetUseCase
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce closes a bounded batch of expired open sheets, then resumes
// finalization for sheets that closed without their protocol following. A
// sheet that lost the close race to another caller is skipped, not an error.
func (w SheetExpirer) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(w.Logger)
	limit := w.BatchSize
	if limit <= 0 {
		limit = 50
	}

	now := w.Clock.Now().UTC()
	expired, err := w.Sheets.ListExpiredOpenSheets(ctx, now, limit)
	if err != nil {
		logger.Error("expired sheet listing failed",
			"event", "voting_sheet_expirer_list_failed",
			"module", "governance/voting-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	closed := 0
	for _, sheet := range expired {
		if _, err := w.Closer.CloseSheet(ctx, sheet.SheetID); err != nil {
			if errors.Is(err, domainerrors.ErrSheetClosed) {
				continue
			}
			logger.Error("sheet expiry close failed",
				"event", "voting_sheet_expirer_close_failed",
				"module", "governance/voting-engine",
				"layer", "worker",
				"sheet_id", sheet.SheetID,
				"error", err.Error(),
			)
			return err
		}
		closed++
	}

	resumed, err := w.resumePendingFinalizations(ctx, limit, logger)
	if err != nil {
		return err
	}

	if len(expired) == 0 && resumed == 0 {
		return nil
	}
	logger.Info("expired sheets closed",
		"event", "voting_sheet_expirer_completed",
		"module", "governance/voting-engine",
		"layer", "worker",
		"expired_count", len(expired),
		"closed_count", closed,
		"resumed_count", resumed,
	)
	return nil
}

func (w SheetExpirer) resumePendingFinalizations(ctx context.Context, limit int, logger *slog.Logger) (int, error) {
	pending, err := w.Sheets.ListSheetsPendingFinalization(ctx, limit)
	if err != nil {
		logger.Error("pending finalization listing failed",
			"event", "voting_sheet_expirer_pending_list_failed",
			"module", "governance/voting-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}

	resumed := 0
	for _, sheet := range pending {
		if _, err := w.Closer.CloseSheet(ctx, sheet.SheetID); err != nil {
			if errors.Is(err, domainerrors.ErrSheetClosed) {
				continue
			}
			logger.Error("sheet finalization resume failed",
				"event", "voting_sheet_expirer_resume_failed",
				"module", "governance/voting-engine",
				"layer", "worker",
				"sheet_id", sheet.SheetID,
				"error", err.Error(),
			)
			return resumed, err
		}
		resumed++
	}
	return resumed, nil
}
