package utils

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type countingEvictor struct {
	calls atomic.Int32
}

func (c *countingEvictor) EvictExpired() int {
	c.calls.Add(1)
	return 1
}

func TestCacheSweeperRunsAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	ev := &countingEvictor{}
	done := StartCacheSweeper(ctx, ev, 5*time.Millisecond)

	require.Eventually(t, func() bool { return ev.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
	n := ev.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, ev.calls.Load())
}
