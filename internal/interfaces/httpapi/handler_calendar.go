package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCalendar")
	defer span.End()

	slug := strings.TrimSuffix(strings.TrimSpace(r.PathValue("slug")), ".ics")
	text, stale, err := h.calendarService.Calendar(ctx, slug)
	if err != nil {
		h.logger.WarnContext(ctx, "get calendar failed", "slug", slug, "error", err)
		writeError(ctx, w, err)
		return
	}

	markStale(w, stale)
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+slug+`.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (h *Handler) GetCalendarMeta(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCalendarMeta")
	defer span.End()

	slug := strings.TrimSpace(r.PathValue("slug"))
	meta, stale, err := h.calendarService.Meta(ctx, slug)
	if err != nil {
		h.logger.WarnContext(ctx, "get calendar meta failed", "slug", slug, "error", err)
		writeError(ctx, w, err)
		return
	}

	markStale(w, stale)
	writeSuccess(ctx, w, http.StatusOK, meta)
}

func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCalendars")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.calendarService.Slugs())
}
