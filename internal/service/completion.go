package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/league-engine/internal/bracket"
	"github.com/AdamBeresnev/league-engine/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// completionWatcher keeps Event.status in line with its matches. It runs in
// the transaction of the write that triggered it.
type completionWatcher struct {
	store  *store.LeagueStore
	logger *slog.Logger
}

// evaluate reports whether the event flipped to completed. Hidden matches
// are ignored and byes count as settled. An event with nothing played yet
// is left alone, and one that had completed goes back to ongoing when new
// work shows up.
func (w *completionWatcher) evaluate(ctx context.Context, q sqlx.ExtContext, eventID uuid.UUID) (bool, error) {
	statuses, err := w.store.ListEventMatchStatuses(ctx, q, eventID)
	if err != nil {
		return false, fmt.Errorf("failed to list event matches: %w", err)
	}

	qualifying := 0
	settled := true
	for _, st := range statuses {
		if st == bracket.MatchHidden || st == bracket.MatchBye {
			continue
		}
		qualifying++
		if st != bracket.MatchCompleted {
			settled = false
		}
	}
	if qualifying == 0 {
		return false, nil
	}

	status := bracket.EventOngoing
	if settled {
		status = bracket.EventCompleted
	}
	changed, err := w.store.SetEventStatus(ctx, q, eventID, status)
	if err != nil {
		return false, fmt.Errorf("failed to update event status: %w", err)
	}
	if !changed {
		return false, nil
	}

	w.logger.Info("event status changed", "event_id", eventID, "status", status)
	return settled, nil
}
