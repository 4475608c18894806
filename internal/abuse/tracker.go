package abuse

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jsvanda/infoboard/internal/platform/logging"
)

// expiryPad is added to every counter expiry to absorb clock skew between
// this process and the counter store.
const expiryPad = 30 * time.Second

// windows are the tracked rate windows, shortest first.
var windows = []time.Duration{time.Minute, 5 * time.Minute, time.Hour}

// leaderboardWindow is the sorted-set window for top offenders.
const leaderboardWindow = 5 * time.Minute

// TrackerConfig wires the tracker. A nil Redis client yields a disabled
// tracker that returns non-blocking decisions.
type TrackerConfig struct {
	Redis      redis.Cmdable
	Mode       Mode
	Thresholds Thresholds
	Alerter    *Alerter
	Logger     *logging.Logger
}

// Tracker counts requests per (kind, endpoint, window, token) in a shared
// Redis so abuse detection stays meaningful across processes.
type Tracker struct {
	rdb        redis.Cmdable
	mode       Mode
	thresholds Thresholds
	alerter    *Alerter
	logger     *logging.Logger
}

func NewTracker(cfg TrackerConfig) *Tracker {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	mode := cfg.Mode
	if mode == "" {
		mode = ModeObserve
	}
	thresholds := cfg.Thresholds
	if thresholds == (Thresholds{}) {
		thresholds = DefaultThresholds()
	}

	return &Tracker{
		rdb:        cfg.Redis,
		mode:       mode,
		thresholds: thresholds,
		alerter:    cfg.Alerter,
		logger:     logger,
	}
}

// TrackRequest increments every counter the request touches in one pipelined
// call and derives the abuse decision from the fresh snapshot. A counter
// store outage degrades to a non-blocking "disabled" decision.
func (t *Tracker) TrackRequest(ctx context.Context, identity Identity, endpoint, slug string) Decision {
	if t == nil || t.rdb == nil {
		return disabledDecision(t.trackMode())
	}

	type counterRef struct {
		kind   string
		token  string
		window time.Duration
		cmd    *redis.IntCmd
	}

	kinds := []struct {
		kind  string
		token string
	}{
		{"global", "all"},
		{"slug", slug},
		{"ip", identity.IPHash},
		{"ua", identity.UAHash},
	}

	refs := make([]counterRef, 0, len(kinds)*len(windows))
	pipe := t.rdb.Pipeline()
	for _, k := range kinds {
		for _, window := range windows {
			key := counterKey(k.kind, endpoint, window, k.token)
			cmd := pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, window+expiryPad)
			refs = append(refs, counterRef{kind: k.kind, token: k.token, window: window, cmd: cmd})
		}
	}

	ipBoard := leaderboardKey("ip", endpoint)
	uaBoard := leaderboardKey("ua", endpoint)
	pipe.ZIncrBy(ctx, ipBoard, 1, identity.IPHash)
	pipe.Expire(ctx, ipBoard, leaderboardWindow+expiryPad)
	pipe.ZIncrBy(ctx, uaBoard, 1, identity.UAHash)
	pipe.Expire(ctx, uaBoard, leaderboardWindow+expiryPad)

	if _, err := pipe.Exec(ctx); err != nil {
		t.logger.WarnContext(ctx, "abuse counter store unreachable, tracking disabled for this request", "error", err)
		return disabledDecision(t.mode)
	}

	var metrics Metrics
	for _, ref := range refs {
		if ref.window != time.Minute {
			continue
		}
		switch ref.kind {
		case "global":
			metrics.Global1m = ref.cmd.Val()
		case "slug":
			metrics.Slug1m = ref.cmd.Val()
		case "ip":
			metrics.IP1m = ref.cmd.Val()
		case "ua":
			metrics.UA1m = ref.cmd.Val()
		}
	}

	decision := classify(t.mode, t.thresholds, identity, metrics)

	if decision.Severity == SeverityCritical && t.alerter != nil {
		t.alerter.FireCritical(ctx, endpoint, slug, identity, decision)
	}

	return decision
}

// TopOffenders returns the leaderboard of the worst ip- or ua-hashes for an
// endpoint over the 5-minute window.
func (t *Tracker) TopOffenders(ctx context.Context, kind, endpoint string, limit int64) ([]redis.Z, error) {
	if t == nil || t.rdb == nil {
		return nil, nil
	}
	return t.rdb.ZRevRangeWithScores(ctx, leaderboardKey(kind, endpoint), 0, limit-1).Result()
}

func (t *Tracker) trackMode() Mode {
	if t == nil || t.mode == "" {
		return ModeObserve
	}
	return t.mode
}

func counterKey(kind, endpoint string, window time.Duration, token string) string {
	return fmt.Sprintf("abuse:%s:%s:%d:%s", kind, endpoint, int(window.Seconds()), token)
}

func leaderboardKey(kind, endpoint string) string {
	return fmt.Sprintf("abuse:top:%s:%s:%d", kind, endpoint, int(leaderboardWindow.Seconds()))
}
