package httpapi

import (
	"net/http"

	"github.com/jsvanda/infoboard/internal/abuse"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler, tracker *abuse.Tracker) {
	guard := func(h http.HandlerFunc) http.Handler {
		return AbuseGuard(tracker, h)
	}

	mux.Handle("GET /v1/results/matches", guard(handler.ListMatchResults))
	mux.Handle("GET /v1/results/races", guard(handler.ListRaceResults))
	mux.Handle("GET /v1/tv/schedule", guard(handler.ListTVSchedule))
	mux.Handle("GET /v1/calendars", guard(handler.ListCalendars))
	mux.Handle("GET /v1/calendar/{slug}", guard(handler.GetCalendar))
	mux.Handle("GET /v1/calendar/{slug}/meta", guard(handler.GetCalendarMeta))
	mux.Handle("GET /v1/places/{kind}", guard(handler.ListPlaces))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/refresh", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRefreshJob)))
}
