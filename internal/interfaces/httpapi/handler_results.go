package httpapi

import (
	"net/http"
	"strings"

	"github.com/jsvanda/infoboard/internal/domain/sportdata"
)

type matchResultDTO struct {
	Sport     string `json:"sport"`
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	HomeScore int    `json:"homeScore"`
	AwayScore int    `json:"awayScore"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

type raceResultDTO struct {
	Position int    `json:"position"`
	Driver   string `json:"driver"`
	Team     string `json:"team"`
	Gap      string `json:"gap"`
	Points   int    `json:"points"`
	Date     string `json:"date"`
}

func (h *Handler) ListMatchResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchResults")
	defer span.End()

	sport := sportdata.Sport(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("sport"))))
	if sport == "" {
		sport = sportdata.SportFootball
	}

	results, stale, err := h.resultsService.Matches(ctx, sport)
	if err != nil {
		h.logger.WarnContext(ctx, "list match results failed", "sport", string(sport), "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchResultDTO, 0, len(results))
	for _, m := range results {
		items = append(items, matchResultDTO{
			Sport:     string(m.Sport),
			HomeTeam:  m.HomeTeam,
			AwayTeam:  m.AwayTeam,
			HomeScore: m.HomeScore,
			AwayScore: m.AwayScore,
			Date:      m.Date,
			Time:      m.Time,
		})
	}

	markStale(w, stale)
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListRaceResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRaceResults")
	defer span.End()

	results, stale, err := h.resultsService.RaceResults(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list race results failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]raceResultDTO, 0, len(results))
	for _, res := range results {
		items = append(items, raceResultDTO{
			Position: res.Position,
			Driver:   res.Driver,
			Team:     res.Team,
			Gap:      res.Gap,
			Points:   res.Points,
			Date:     res.Date,
		})
	}

	markStale(w, stale)
	writeSuccess(ctx, w, http.StatusOK, items)
}
