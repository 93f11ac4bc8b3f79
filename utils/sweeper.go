package utils

import (
	"context"
	"time"
)

// Evictor drops expired cache entries and reports how many were removed.
type Evictor interface {
	EvictExpired() int
}

// StartCacheSweeper periodically evicts expired entries until ctx is done.
// The returned channel is closed once the goroutine has exited.
func StartCacheSweeper(ctx context.Context, e Evictor, interval time.Duration) <-chan struct{} {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := e.EvictExpired(); n > 0 {
					Sugar.Debugw("evicted expired asset urls", "count", n)
				}
			}
		}
	}()
	return done
}
