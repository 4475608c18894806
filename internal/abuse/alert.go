package abuse

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jsvanda/infoboard/internal/platform/logging"
)

// Notifier delivers one alert message. Implementations must be safe to call
// concurrently; failures are swallowed upstream (fail-open).
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// SMTPConfig configures the plain-dialogue mail transport. An empty Addr
// yields a disabled notifier.
type SMTPConfig struct {
	Addr     string
	From     string
	To       []string
	Username string
	Password string
}

// NewNotifier returns the configured SMTP notifier, or the disabled no-op
// variant when no server is configured. Call sites handle both uniformly.
func NewNotifier(cfg SMTPConfig) Notifier {
	if strings.TrimSpace(cfg.Addr) == "" || cfg.From == "" || len(cfg.To) == 0 {
		return disabledNotifier{}
	}
	return &smtpNotifier{cfg: cfg}
}

type disabledNotifier struct{}

func (disabledNotifier) Notify(context.Context, string, string) error { return nil }

type smtpNotifier struct {
	cfg SMTPConfig
}

func (n *smtpNotifier) Notify(_ context.Context, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + n.cfg.From,
		"To: " + strings.Join(n.cfg.To, ", "),
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if n.cfg.Username != "" {
		host := n.cfg.Addr
		if idx := strings.IndexByte(host, ':'); idx >= 0 {
			host = host[:idx]
		}
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, host)
	}

	return smtp.SendMail(n.cfg.Addr, auth, n.cfg.From, n.cfg.To, []byte(msg))
}

// AlerterConfig wires critical-abuse alerting. SuppressWindow dedups alerts
// per endpoint+slug+ip-hash.
type AlerterConfig struct {
	Redis          redis.Cmdable
	Notifier       Notifier
	SuppressWindow time.Duration
	Logger         *logging.Logger
}

// Alerter fires deduplicated alerts on critical abuse decisions. Nothing it
// does may affect the request path: every failure is logged and dropped.
type Alerter struct {
	rdb            redis.Cmdable
	notifier       Notifier
	suppressWindow time.Duration
	logger         *logging.Logger
}

func NewAlerter(cfg AlerterConfig) *Alerter {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = disabledNotifier{}
	}
	suppress := cfg.SuppressWindow
	if suppress <= 0 {
		suppress = 15 * time.Minute
	}

	return &Alerter{
		rdb:            cfg.Redis,
		notifier:       notifier,
		suppressWindow: suppress,
		logger:         logger,
	}
}

// FireCritical sends one alert per dedup window for the given caller. The
// dedup lock is a set-if-not-exists with expiry in the counter store; when
// the store is unavailable the alert is skipped rather than spammed.
func (a *Alerter) FireCritical(ctx context.Context, endpoint, slug string, identity Identity, decision Decision) {
	if a == nil {
		return
	}

	if a.rdb != nil {
		lockKey := fmt.Sprintf("abuse:alert:%s:%s:%s", endpoint, slug, identity.IPHash)
		acquired, err := a.rdb.SetNX(ctx, lockKey, 1, a.suppressWindow).Result()
		if err != nil {
			a.logger.WarnContext(ctx, "alert dedup lock unavailable, skipping alert", "error", err)
			return
		}
		if !acquired {
			return
		}
	}

	subject := fmt.Sprintf("[infoboard] critical abuse on %s", endpoint)
	body := fmt.Sprintf(
		"endpoint=%s slug=%s reason=%s ip_hash=%s ua_hash=%s global_1m=%d ip_1m=%d ua_1m=%d",
		endpoint, slug, decision.Reason, identity.IPHash, identity.UAHash,
		decision.Metrics.Global1m, decision.Metrics.IP1m, decision.Metrics.UA1m,
	)

	go func() {
		if err := a.notifier.Notify(context.WithoutCancel(ctx), subject, body); err != nil {
			a.logger.Warn("abuse alert delivery failed", "endpoint", endpoint, "error", err)
		}
	}()
}
