package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jsvanda/infoboard/internal/domain/place"
	"github.com/jsvanda/infoboard/internal/usecase"
)

// ListPlaces serves one of three exclusive query modes: postal code, city
// name, or a lat/lon pair with optional radius.
func (h *Handler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlaces")
	defer span.End()

	kind := place.Kind(strings.ToLower(strings.TrimSpace(r.PathValue("kind"))))
	query := r.URL.Query()

	limit := 0
	if rawLimit := strings.TrimSpace(query.Get("limit")); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: limit must be an integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	var (
		items []place.Item
		stale bool
		err   error
	)
	switch {
	case query.Get("postal") != "":
		items, stale, err = h.placeService.ByPostal(ctx, kind, query.Get("postal"), limit)
	case query.Get("city") != "":
		items, stale, err = h.placeService.ByCity(ctx, kind, query.Get("city"), limit)
	case query.Get("lat") != "" || query.Get("lon") != "":
		var lat, lon, radiusKm float64
		lat, lon, radiusKm, err = parseGeoQuery(query.Get("lat"), query.Get("lon"), query.Get("radius"))
		if err == nil {
			items, stale, err = h.placeService.ByGeo(ctx, kind, lat, lon, radiusKm, limit)
		}
	default:
		err = fmt.Errorf("%w: one of postal, city or lat/lon is required", usecase.ErrInvalidInput)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "list places failed", "kind", string(kind), "error", err)
		writeError(ctx, w, err)
		return
	}

	markStale(w, stale)
	writeSuccess(ctx, w, http.StatusOK, items)
}

func parseGeoQuery(rawLat, rawLon, rawRadius string) (lat, lon, radiusKm float64, err error) {
	lat, err = strconv.ParseFloat(strings.TrimSpace(rawLat), 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: lat must be a number", usecase.ErrInvalidInput)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(rawLon), 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: lon must be a number", usecase.ErrInvalidInput)
	}
	if rawRadius = strings.TrimSpace(rawRadius); rawRadius != "" {
		radiusKm, err = strconv.ParseFloat(rawRadius, 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: radius must be a number", usecase.ErrInvalidInput)
		}
	}
	return lat, lon, radiusKm, nil
}
