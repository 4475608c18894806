package abuse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jsvanda/infoboard/internal/platform/logging"
)

// fakeCounters implements the slice of redis.Cmdable the tracker touches.
// The embedded interface satisfies the rest; calling anything unimplemented
// panics, which is exactly what a test should do.
type fakeCounters struct {
	redis.Cmdable

	mu       sync.Mutex
	counts   map[string]int64
	zscores  map[string]map[string]float64
	expiries map[string]time.Duration
	locks    map[string]bool
	failing  bool
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{
		counts:   make(map[string]int64),
		zscores:  make(map[string]map[string]float64),
		expiries: make(map[string]time.Duration),
		locks:    make(map[string]bool),
	}
}

func (f *fakeCounters) Pipeline() redis.Pipeliner {
	return &fakePipeline{store: f}
}

func (f *fakeCounters) SetNX(ctx context.Context, key string, _ interface{}, expiry time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewBoolCmd(ctx, "setnx", key)
	if f.locks[key] {
		cmd.SetVal(false)
		return cmd
	}
	f.locks[key] = true
	f.expiries[key] = expiry
	cmd.SetVal(true)
	return cmd
}

type fakePipeline struct {
	redis.Pipeliner

	store *fakeCounters
	cmds  []redis.Cmder
}

func (p *fakePipeline) Incr(ctx context.Context, key string) *redis.IntCmd {
	p.store.mu.Lock()
	p.store.counts[key]++
	val := p.store.counts[key]
	p.store.mu.Unlock()

	cmd := redis.NewIntCmd(ctx, "incr", key)
	cmd.SetVal(val)
	p.cmds = append(p.cmds, cmd)
	return cmd
}

func (p *fakePipeline) Expire(ctx context.Context, key string, expiry time.Duration) *redis.BoolCmd {
	p.store.mu.Lock()
	p.store.expiries[key] = expiry
	p.store.mu.Unlock()

	cmd := redis.NewBoolCmd(ctx, "expire", key)
	cmd.SetVal(true)
	p.cmds = append(p.cmds, cmd)
	return cmd
}

func (p *fakePipeline) ZIncrBy(ctx context.Context, key string, increment float64, member string) *redis.FloatCmd {
	p.store.mu.Lock()
	if p.store.zscores[key] == nil {
		p.store.zscores[key] = make(map[string]float64)
	}
	p.store.zscores[key][member] += increment
	val := p.store.zscores[key][member]
	p.store.mu.Unlock()

	cmd := redis.NewFloatCmd(ctx, "zincrby", key)
	cmd.SetVal(val)
	p.cmds = append(p.cmds, cmd)
	return cmd
}

func (p *fakePipeline) Exec(context.Context) ([]redis.Cmder, error) {
	if p.store.failing {
		return nil, errors.New("counter store down")
	}
	return p.cmds, nil
}

type captureNotifier struct {
	fired chan string
}

func (n *captureNotifier) Notify(_ context.Context, subject, _ string) error {
	n.fired <- subject
	return nil
}

func TestTracker_TrackRequestCountsAndDecides(t *testing.T) {
	t.Parallel()

	store := newFakeCounters()
	tracker := NewTracker(TrackerConfig{
		Redis:      store,
		Mode:       ModeEnforce,
		Thresholds: Thresholds{GlobalSpike: 1000, IPHard: 3, IPSoft: 2, UnknownUA: 1000},
		Logger:     logging.NewNop(),
	})
	identity := unknownIdentity()

	var last Decision
	for i := 0; i < 3; i++ {
		last = tracker.TrackRequest(context.Background(), identity, "results", "football")
	}

	ipKey := "abuse:ip:results:60:" + identity.IPHash
	if got := store.counts[ipKey]; got != 3 {
		t.Fatalf("counter %s = %d, want 3", ipKey, got)
	}
	if got := store.counts["abuse:global:results:60:all"]; got != 3 {
		t.Fatalf("global 1m counter = %d, want 3", got)
	}
	if got := len(store.counts); got != 12 {
		t.Fatalf("tracked %d counters, want 4 kinds x 3 windows", got)
	}
	if got := store.expiries[ipKey]; got != time.Minute+expiryPad {
		t.Fatalf("1m counter expiry = %v, want window+pad", got)
	}
	hourKey := "abuse:ip:results:3600:" + identity.IPHash
	if got := store.expiries[hourKey]; got != time.Hour+expiryPad {
		t.Fatalf("1h counter expiry = %v, want window+pad", got)
	}

	board := store.zscores["abuse:top:ip:results:300"]
	if board == nil || board[identity.IPHash] != 3 {
		t.Fatalf("leaderboard = %v, want ip scored 3", board)
	}

	if last.Metrics.IP1m != 3 {
		t.Fatalf("decision snapshot IP1m = %d, want the fresh count", last.Metrics.IP1m)
	}
	if last.Severity != SeverityCritical || !last.Blocked {
		t.Fatalf("decision = %+v, want critical and blocked at the hard threshold", last)
	}
	if last.Provider != "redis" {
		t.Fatalf("provider = %q, want redis", last.Provider)
	}
}

func TestTracker_BelowThresholdStaysNormal(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(TrackerConfig{
		Redis:      newFakeCounters(),
		Mode:       ModeEnforce,
		Thresholds: Thresholds{GlobalSpike: 1000, IPHard: 10, IPSoft: 8, UnknownUA: 1000},
		Logger:     logging.NewNop(),
	})

	d := tracker.TrackRequest(context.Background(), unknownIdentity(), "results", "-")
	if d.Severity != SeverityNormal || d.Blocked {
		t.Fatalf("first request decided %+v, want normal and unblocked", d)
	}
	if d.Metrics.IP1m != 1 {
		t.Fatalf("IP1m = %d, want 1", d.Metrics.IP1m)
	}
}

func TestTracker_PipelineFailureDegradesToDisabled(t *testing.T) {
	t.Parallel()

	store := newFakeCounters()
	store.failing = true
	tracker := NewTracker(TrackerConfig{
		Redis:  store,
		Mode:   ModeEnforce,
		Logger: logging.NewNop(),
	})

	d := tracker.TrackRequest(context.Background(), unknownIdentity(), "results", "-")
	if d.Provider != "disabled" || d.Blocked {
		t.Fatalf("decision = %+v, want disabled fail-open", d)
	}
}

func TestTracker_CriticalDecisionFiresAlertOnce(t *testing.T) {
	t.Parallel()

	store := newFakeCounters()
	notifier := &captureNotifier{fired: make(chan string, 4)}
	tracker := NewTracker(TrackerConfig{
		Redis:      store,
		Mode:       ModeObserve,
		Thresholds: Thresholds{GlobalSpike: 1000, IPHard: 1, IPSoft: 1, UnknownUA: 1000},
		Alerter: NewAlerter(AlerterConfig{
			Redis:          store,
			Notifier:       notifier,
			SuppressWindow: time.Minute,
			Logger:         logging.NewNop(),
		}),
		Logger: logging.NewNop(),
	})
	identity := unknownIdentity()

	tracker.TrackRequest(context.Background(), identity, "results", "football")
	tracker.TrackRequest(context.Background(), identity, "results", "football")

	select {
	case subject := <-notifier.fired:
		if subject == "" {
			t.Fatal("alert fired with empty subject")
		}
	case <-time.After(time.Second):
		t.Fatal("critical decision fired no alert")
	}

	select {
	case <-notifier.fired:
		t.Fatal("second breach in the suppress window fired a duplicate alert")
	case <-time.After(50 * time.Millisecond):
	}
}
