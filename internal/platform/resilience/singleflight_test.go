package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CollapsesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	var executions atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	// Owner enters fn and blocks, holding the key in flight.
	ownerDone := make(chan struct{})
	go func() {
		defer close(ownerDone)
		v, err, fromOther := g.Do("k", func() (any, error) {
			executions.Add(1)
			close(started)
			<-release
			return "value", nil
		})
		if err != nil || v != "value" || fromOther {
			t.Errorf("owner got (%v, %v, shared=%v)", v, err, fromOther)
		}
	}()
	<-started

	const waiters = 8
	var entered sync.WaitGroup
	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		entered.Add(1)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entered.Done()
			v, err, fromOther := g.Do("k", func() (any, error) {
				executions.Add(1)
				return "value", nil
			})
			if err != nil || v != "value" {
				t.Errorf("waiter %d got (%v, %v)", i, v, err)
			}
			if !fromOther {
				t.Errorf("waiter %d executed the fn itself", i)
			}
		}(i)
	}

	entered.Wait()
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()
	<-ownerDone

	if got := executions.Load(); got != 1 {
		t.Fatalf("fn executed %d times, want 1", got)
	}
}

func TestSingleFlight_SequentialCallsRunSeparately(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	var executions int
	for i := 0; i < 3; i++ {
		_, _, fromOther := g.Do("k", func() (any, error) {
			executions++
			return nil, nil
		})
		if fromOther {
			t.Fatalf("call %d reported a shared result with no concurrency", i)
		}
	}
	if executions != 3 {
		t.Fatalf("fn executed %d times, want 3", executions)
	}
}
