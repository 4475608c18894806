package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jsvanda/infoboard/internal/abuse"
	"github.com/jsvanda/infoboard/internal/platform/logging"
	"github.com/jsvanda/infoboard/internal/platform/resilience"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	CORSAllowedOrigins []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	PprofEnabled       bool
	PprofAddr          string

	MatchResultsTTL time.Duration
	TVScheduleTTL   time.Duration
	CalendarTTL     time.Duration
	PlacesTTL       time.Duration

	FlashdataBaseURL string
	TVPortalURL      string
	OpendataBaseURL  string
	OpendataAPIKey   string
	FetchUserAgent   string
	FetchBreaker     resilience.CircuitBreakerConfig

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AbuseMode            abuse.Mode
	AbuseThresholds      abuse.Thresholds
	AlertSuppressWindow  time.Duration
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string
	SMTPFrom             string
	AlertRecipients      []string
	InternalJobToken     string
	UptraceEnabled       bool
	UptraceDSN           string
	LogLevel             logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}

	matchResultsTTL, err := time.ParseDuration(getEnv("MATCH_RESULTS_TTL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MATCH_RESULTS_TTL: %w", err)
	}
	tvScheduleTTL, err := time.ParseDuration(getEnv("TV_SCHEDULE_TTL", "30m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TV_SCHEDULE_TTL: %w", err)
	}
	calendarTTL, err := time.ParseDuration(getEnv("CALENDAR_TTL", "6h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CALENDAR_TTL: %w", err)
	}
	placesTTL, err := time.ParseDuration(getEnv("PLACES_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PLACES_TTL: %w", err)
	}

	fetchBreaker, err := loadFetchBreaker()
	if err != nil {
		return Config{}, err
	}

	redisDB, err := getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_DB: %w", err)
	}

	abuseMode, err := parseAbuseMode(getEnv("ABUSE_MODE", "observe"))
	if err != nil {
		return Config{}, err
	}
	thresholds, err := loadAbuseThresholds()
	if err != nil {
		return Config{}, err
	}

	alertSuppressWindow, err := time.ParseDuration(getEnv("ABUSE_ALERT_SUPPRESS_WINDOW", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ABUSE_ALERT_SUPPRESS_WINDOW: %w", err)
	}

	smtpPort, err := getEnvAsInt("SMTP_PORT", 587)
	if err != nil {
		return Config{}, fmt.Errorf("parse SMTP_PORT: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	return Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("SERVICE_NAME", "infoboard"),
		ServiceVersion:     getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		PprofEnabled:       pprofEnabled,
		PprofAddr:          getEnv("PPROF_ADDR", "localhost:6060"),

		MatchResultsTTL: matchResultsTTL,
		TVScheduleTTL:   tvScheduleTTL,
		CalendarTTL:     calendarTTL,
		PlacesTTL:       placesTTL,

		FlashdataBaseURL: strings.TrimSpace(getEnv("FLASHDATA_BASE_URL", "")),
		TVPortalURL:      strings.TrimSpace(getEnv("TV_PORTAL_URL", "")),
		OpendataBaseURL:  strings.TrimSpace(getEnv("OPENDATA_BASE_URL", "")),
		OpendataAPIKey:   strings.TrimSpace(getEnv("OPENDATA_API_KEY", "")),
		FetchUserAgent:   getEnv("FETCH_USER_AGENT", "infoboard/1.0"),
		FetchBreaker:     fetchBreaker,

		RedisAddr:     strings.TrimSpace(getEnv("REDIS_ADDR", "")),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		AbuseMode:           abuseMode,
		AbuseThresholds:     thresholds,
		AlertSuppressWindow: alertSuppressWindow,
		SMTPHost:            strings.TrimSpace(getEnv("SMTP_HOST", "")),
		SMTPPort:            smtpPort,
		SMTPUsername:        getEnv("SMTP_USERNAME", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:            strings.TrimSpace(getEnv("SMTP_FROM", "")),
		AlertRecipients:     splitCSV(getEnv("ALERT_RECIPIENTS", "")),
		InternalJobToken:    strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		UptraceEnabled:      uptraceEnabled,
		UptraceDSN:          uptraceDSN,
		LogLevel:            parseLogLevel(getEnv("LOG_LEVEL", "info")),
	}, nil
}

func loadFetchBreaker() (resilience.CircuitBreakerConfig, error) {
	defaults := resilience.DefaultCircuitBreakerConfig()

	enabled, err := strconv.ParseBool(getEnv("FETCH_BREAKER_ENABLED", "true"))
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse FETCH_BREAKER_ENABLED: %w", err)
	}
	failureThreshold, err := getEnvAsInt("FETCH_BREAKER_FAILURE_THRESHOLD", defaults.FailureThreshold)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse FETCH_BREAKER_FAILURE_THRESHOLD: %w", err)
	}
	openTimeout, err := time.ParseDuration(getEnv("FETCH_BREAKER_OPEN_TIMEOUT", defaults.OpenTimeout.String()))
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse FETCH_BREAKER_OPEN_TIMEOUT: %w", err)
	}

	return resilience.CircuitBreakerConfig{
		Enabled:          enabled,
		FailureThreshold: failureThreshold,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   defaults.HalfOpenMaxReq,
	}, nil
}

func loadAbuseThresholds() (abuse.Thresholds, error) {
	defaults := abuse.DefaultThresholds()

	globalSpike, err := getEnvAsInt("ABUSE_GLOBAL_SPIKE_1M", defaults.GlobalSpike)
	if err != nil {
		return abuse.Thresholds{}, fmt.Errorf("parse ABUSE_GLOBAL_SPIKE_1M: %w", err)
	}
	ipHard, err := getEnvAsInt("ABUSE_IP_HARD_1M", defaults.IPHard)
	if err != nil {
		return abuse.Thresholds{}, fmt.Errorf("parse ABUSE_IP_HARD_1M: %w", err)
	}
	ipSoft, err := getEnvAsInt("ABUSE_IP_SOFT_1M", defaults.IPSoft)
	if err != nil {
		return abuse.Thresholds{}, fmt.Errorf("parse ABUSE_IP_SOFT_1M: %w", err)
	}
	unknownUA, err := getEnvAsInt("ABUSE_UNKNOWN_UA_1M", defaults.UnknownUA)
	if err != nil {
		return abuse.Thresholds{}, fmt.Errorf("parse ABUSE_UNKNOWN_UA_1M: %w", err)
	}

	return abuse.Thresholds{
		GlobalSpike: globalSpike,
		IPHard:      ipHard,
		IPSoft:      ipSoft,
		UnknownUA:   unknownUA,
	}, nil
}

func parseAbuseMode(v string) (abuse.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "observe":
		return abuse.ModeObserve, nil
	case "enforce":
		return abuse.ModeEnforce, nil
	default:
		return "", fmt.Errorf("invalid ABUSE_MODE %q: valid values are observe, enforce", v)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
