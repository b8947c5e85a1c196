package syncer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/docme/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSyncer struct {
	calls atomic.Int32
	err   error
}

func (c *countingSyncer) SyncAll(context.Context) (*Report, error) {
	c.calls.Add(1)
	return &Report{}, c.err
}

func TestScheduler_RunsWhileOnline(t *testing.T) {
	s := &countingSyncer{}
	var online atomic.Bool
	online.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewScheduler(s, 5*time.Millisecond, online.Load, nil).Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.calls.Load() >= 2 }, time.Second, time.Millisecond)

	online.Store(false)
	time.Sleep(20 * time.Millisecond)
	n := s.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.LessOrEqual(t, s.calls.Load(), n+1)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_ReportsUnauthorized(t *testing.T) {
	s := &countingSyncer{err: common.ErrUnauthorized}
	var hits atomic.Int32

	sch := NewScheduler(s, time.Millisecond, nil, nil)
	sch.OnUnauthorized = func() { hits.Add(1) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sch.Run(ctx)

	require.Eventually(t, func() bool { return hits.Load() > 0 }, time.Second, time.Millisecond)
}

func TestScheduler_ZeroIntervalReturns(t *testing.T) {
	s := &countingSyncer{}
	NewScheduler(s, 0, nil, nil).Run(context.Background())
	assert.Zero(t, s.calls.Load())
}
