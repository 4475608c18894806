package abuse

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"regexp"
	"strings"
)

// Identity carries only one-way truncated hashes of the caller's network
// identity. Raw IP and User-Agent strings are never stored or returned.
type Identity struct {
	IPHash  string
	UAHash  string
	UAKnown bool
}

// knownUAPatterns cover legitimate clients and browsers. Anything else is
// treated as an unknown caller and held to stricter thresholds.
var knownUAPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^Mozilla/`),
	regexp.MustCompile(`^Opera/`),
	regexp.MustCompile(`(?i)^dart:?/?`),
	regexp.MustCompile(`(?i)okhttp`),
	regexp.MustCompile(`(?i)^CFNetwork`),
	regexp.MustCompile(`(?i)^infoboard-app/`),
}

// DeriveIdentity hashes the caller's IP and User-Agent. The IP is the first
// entry of a forwarded-for chain with any IPv6-mapped prefix and port
// stripped; an unusable chain falls back to remoteAddr.
func DeriveIdentity(forwardedFor, remoteAddr, userAgent string) Identity {
	ip := firstForwardedIP(forwardedFor)
	if ip == "" {
		ip = normalizeIP(remoteAddr)
	}

	ua := strings.TrimSpace(userAgent)

	return Identity{
		IPHash:  hashToken(ip),
		UAHash:  hashToken(ua),
		UAKnown: isKnownUA(ua),
	}
}

func firstForwardedIP(chain string) string {
	if chain == "" {
		return ""
	}
	first := chain
	if idx := strings.IndexByte(chain, ','); idx >= 0 {
		first = chain[:idx]
	}
	return normalizeIP(first)
}

func normalizeIP(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}

	if host, _, err := net.SplitHostPort(value); err == nil {
		value = host
	}
	value = strings.TrimPrefix(value, "::ffff:")

	parsed := net.ParseIP(value)
	if parsed == nil {
		return ""
	}
	if v4 := parsed.To4(); v4 != nil {
		return v4.String()
	}
	return parsed.String()
}

// hashToken is a truncated one-way hash: enough bits to distinguish callers,
// too few to be worth reversing.
func hashToken(value string) string {
	if value == "" {
		return "none"
	}
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])[:16]
}

func isKnownUA(ua string) bool {
	if ua == "" {
		return false
	}
	for _, pattern := range knownUAPatterns {
		if pattern.MatchString(ua) {
			return true
		}
	}
	return false
}
