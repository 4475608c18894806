package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsvanda/infoboard/internal/abuse"
	"github.com/jsvanda/infoboard/internal/usecase"
)

func RequireInternalJobToken(token string, next http.Handler) http.Handler {
	expectedToken := strings.TrimSpace(token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.RequireInternalJobToken")
		defer span.End()

		if expectedToken == "" {
			writeError(ctx, w, fmt.Errorf("%w: internal job token is not configured", usecase.ErrDependencyUnavailable))
			return
		}

		providedToken := strings.TrimSpace(r.Header.Get("X-Internal-Job-Token"))
		if providedToken == "" || providedToken != expectedToken {
			writeError(ctx, w, fmt.Errorf("%w: invalid internal job token", usecase.ErrUnauthorized))
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AbuseGuard tracks every request against the shared counters, merges the
// decision headers into the response and rejects blocked callers. The
// tracker fails open, so a counter-store outage never rejects traffic.
func AbuseGuard(tracker *abuse.Tracker, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.AbuseGuard")
		defer span.End()

		identity := abuse.DeriveIdentity(
			r.Header.Get("X-Forwarded-For"),
			r.RemoteAddr,
			r.Header.Get("User-Agent"),
		)
		decision := tracker.TrackRequest(ctx, identity, endpointLabel(r.URL.Path), slugLabel(r))

		for key, value := range decision.Headers() {
			w.Header().Set(key, value)
		}

		if decision.Blocked {
			writeJSON(ctx, w, http.StatusTooManyRequests, googleResponseEnvelope{
				APIVersion: googleAPIVersion,
				Error: &googleErrorBody{
					Code:    http.StatusTooManyRequests,
					Message: "too many requests",
					Status:  "RESOURCE_EXHAUSTED",
					Errors: []googleErrorItem{
						{
							Domain:  errorDomain,
							Reason:  "rateLimited",
							Message: decision.Reason,
						},
					},
				},
			})
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// endpointLabel collapses a request path to its route family so counter keys
// stay low-cardinality.
func endpointLabel(path string) string {
	trimmed := strings.Trim(strings.ToLower(strings.TrimSpace(path)), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) >= 2 && parts[0] == "v1" {
		return parts[1]
	}
	if trimmed == "" {
		return "root"
	}
	return parts[0]
}

func slugLabel(r *http.Request) string {
	if slug := strings.TrimSpace(r.PathValue("slug")); slug != "" {
		return strings.TrimSuffix(slug, ".ics")
	}
	if kind := strings.TrimSpace(r.PathValue("kind")); kind != "" {
		return kind
	}
	if sport := strings.TrimSpace(r.URL.Query().Get("sport")); sport != "" {
		return sport
	}
	return "-"
}

func RequestLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.RequestLogging")
		defer span.End()

		started := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))

		spanContext := trace.SpanContextFromContext(ctx)
		traceID := ""
		spanID := ""
		if spanContext.IsValid() {
			traceID = spanContext.TraceID().String()
			spanID = spanContext.SpanID().String()
		}

		logger.InfoContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(started).Milliseconds(),
			"trace_id", traceID,
			"span_id", spanID,
		)
	})
}

func RequestTracing(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, "infoboard-http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return shouldTraceRequest(r.URL.Path)
		}),
	)
}

func shouldTraceRequest(path string) bool {
	normalized := strings.ToLower(strings.TrimSpace(path))
	switch normalized {
	case "/healthz", "/health", "/livez", "/readyz":
		return false
	default:
		return true
	}
}

func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowAll := false
	allowMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		candidate := strings.TrimSpace(origin)
		if candidate == "" {
			continue
		}
		if candidate == "*" {
			allowAll = true
			continue
		}
		allowMap[candidate] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.CORS")
		defer span.End()

		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		allowed := allowAll
		if !allowed {
			_, allowed = allowMap[origin]
		}
		if allowed {
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type,Accept")
			w.Header().Set("Access-Control-Max-Age", "600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
