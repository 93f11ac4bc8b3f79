package utils

import (
	"context"
	"sync"
	"time"
)

var (
	cooldowns   = map[string]time.Time{}
	cooldownsMu sync.Mutex
)

// CooldownTrySet claims a cooldown slot for key. It returns false while a
// previous claim is still running. Redis is preferred; memory is the fallback.
func CooldownTrySet(scope, key string, cooldown time.Duration) bool {
	if cooldown <= 0 {
		return true
	}
	full := cooldownKey(scope, key)
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		ok, err := rc.SetNX(ctx, full, "1", cooldown).Result()
		if err == nil {
			return ok
		}
		Sugar.Debugw("cooldown redis unavailable, using memory", "key", full, "error", err)
	}

	now := time.Now()
	cooldownsMu.Lock()
	defer cooldownsMu.Unlock()
	for k, until := range cooldowns {
		if now.After(until) {
			delete(cooldowns, k)
		}
	}
	if until, ok := cooldowns[full]; ok && now.Before(until) {
		return false
	}
	cooldowns[full] = now.Add(cooldown)
	return true
}

// CooldownRelease drops a claim so the key may act again at once.
func CooldownRelease(scope, key string) {
	full := cooldownKey(scope, key)
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Del(ctx, full).Err(); err != nil {
			Sugar.Debugw("cooldown release failed in redis", "key", full, "error", err)
		}
	}
	cooldownsMu.Lock()
	delete(cooldowns, full)
	cooldownsMu.Unlock()
}

func cooldownKey(scope, key string) string {
	return "cooldown:" + scope + ":" + key
}
