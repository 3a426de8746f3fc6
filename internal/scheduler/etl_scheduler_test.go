package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowRunner counts invocations and tracks whether two runs ever
// overlapped.
type slowRunner struct {
	runs       atomic.Int64
	active     atomic.Int64
	overlapped atomic.Bool
	delay      time.Duration
}

func (r *slowRunner) Run(ctx context.Context) error {
	if r.active.Add(1) > 1 {
		r.overlapped.Store(true)
	}
	defer r.active.Add(-1)

	r.runs.Add(1)
	time.Sleep(r.delay)
	return nil
}

func TestETLScheduler_RejectsInvalidSpec(t *testing.T) {
	sched := NewETLScheduler(&slowRunner{}, "not a cron spec")
	require.Error(t, sched.Start())
}

func TestETLScheduler_RunsOnSchedule(t *testing.T) {
	runner := &slowRunner{}
	sched := NewETLScheduler(runner, "@every 10ms")

	require.NoError(t, sched.Start())
	time.Sleep(100 * time.Millisecond)
	sched.Stop()

	assert.GreaterOrEqual(t, runner.runs.Load(), int64(1))
}

func TestETLScheduler_SkipsOverlappingRuns(t *testing.T) {
	runner := &slowRunner{delay: 50 * time.Millisecond}
	sched := NewETLScheduler(runner, "@every 10ms")

	require.NoError(t, sched.Start())
	time.Sleep(120 * time.Millisecond)
	sched.Stop()

	assert.False(t, runner.overlapped.Load(), "two pipeline runs were active at once")
}
