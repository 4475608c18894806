package httpapi

import (
	"net/http"
	"time"
)

type scheduleEntryDTO struct {
	MatchID   string    `json:"matchId"`
	HomeTeam  string    `json:"homeTeam"`
	AwayTeam  string    `json:"awayTeam"`
	KickoffAt time.Time `json:"kickoffAt"`
	Channel   string    `json:"channel"`
}

func (h *Handler) ListTVSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTVSchedule")
	defer span.End()

	entries, stale, err := h.tvguideService.Schedule(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list tv schedule failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]scheduleEntryDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, scheduleEntryDTO{
			MatchID:   e.MatchID,
			HomeTeam:  e.HomeTeam,
			AwayTeam:  e.AwayTeam,
			KickoffAt: e.KickoffAt,
			Channel:   e.Channel,
		})
	}

	markStale(w, stale)
	writeSuccess(ctx, w, http.StatusOK, items)
}
