package abuse

import "strconv"

// Mode selects whether breaches block or only report.
type Mode string

const (
	ModeObserve Mode = "observe"
	ModeEnforce Mode = "enforce"
)

type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Thresholds are the 1-minute-window trip points.
type Thresholds struct {
	GlobalSpike int
	IPHard      int
	IPSoft      int
	UnknownUA   int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		GlobalSpike: 600,
		IPHard:      90,
		IPSoft:      45,
		UnknownUA:   30,
	}
}

// Metrics is the 1-minute counter snapshot the decision was computed from.
type Metrics struct {
	Global1m int64 `json:"global1m"`
	Slug1m   int64 `json:"slug1m"`
	IP1m     int64 `json:"ip1m"`
	UA1m     int64 `json:"ua1m"`
}

// Decision is derived fresh per request, never stored.
type Decision struct {
	Mode     Mode
	Provider string
	Blocked  bool
	Reason   string
	Severity Severity
	Metrics  Metrics
}

// Headers reports mode/provider/severity and window counts so callers get
// visibility even when not blocked.
func (d Decision) Headers() map[string]string {
	return map[string]string{
		"X-Abuse-Mode":      string(d.Mode),
		"X-Abuse-Provider":  d.Provider,
		"X-Abuse-Severity":  string(d.Severity),
		"X-Abuse-Global-1m": strconv.FormatInt(d.Metrics.Global1m, 10),
		"X-Abuse-IP-1m":     strconv.FormatInt(d.Metrics.IP1m, 10),
		"X-Abuse-UA-1m":     strconv.FormatInt(d.Metrics.UA1m, 10),
	}
}

// classify turns a counter snapshot into a decision. In enforce mode an
// unknown-UA caller breaching the hard thresholds is blocked; observe mode
// only reports.
func classify(mode Mode, thresholds Thresholds, identity Identity, metrics Metrics) Decision {
	decision := Decision{
		Mode:     mode,
		Provider: "redis",
		Severity: SeverityNormal,
		Metrics:  metrics,
	}

	unknownUABreach := !identity.UAKnown && metrics.UA1m >= int64(thresholds.UnknownUA)
	critical := metrics.Global1m >= int64(thresholds.GlobalSpike) ||
		metrics.IP1m >= int64(thresholds.IPHard) ||
		unknownUABreach

	switch {
	case critical:
		decision.Severity = SeverityCritical
		switch {
		case metrics.Global1m >= int64(thresholds.GlobalSpike):
			decision.Reason = "global request spike"
		case metrics.IP1m >= int64(thresholds.IPHard):
			decision.Reason = "per-ip hard threshold"
		default:
			decision.Reason = "unknown user-agent burst"
		}
	case metrics.IP1m >= int64(thresholds.IPSoft) || (!identity.UAKnown && metrics.UA1m >= int64(thresholds.UnknownUA)/2):
		decision.Severity = SeverityWarning
		decision.Reason = "elevated request rate"
	}

	if mode == ModeEnforce && !identity.UAKnown {
		if metrics.IP1m >= int64(thresholds.IPHard) || metrics.UA1m >= int64(thresholds.UnknownUA) {
			decision.Blocked = true
		}
	}

	return decision
}

// disabledDecision is returned when the counter store is unreachable or not
// configured: abuse tracking degrades to a no-op rather than failing the
// request.
func disabledDecision(mode Mode) Decision {
	return Decision{
		Mode:     mode,
		Provider: "disabled",
		Severity: SeverityNormal,
	}
}
