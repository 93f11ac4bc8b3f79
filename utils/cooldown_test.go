package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooldownMemoryFallback(t *testing.T) {
	SetRedis(nil)

	assert.True(t, CooldownTrySet("contact", "10.0.0.1", time.Minute))
	assert.False(t, CooldownTrySet("contact", "10.0.0.1", time.Minute))
	assert.True(t, CooldownTrySet("contact", "10.0.0.2", time.Minute))
	assert.True(t, CooldownTrySet("other", "10.0.0.1", time.Minute))

	assert.True(t, CooldownTrySet("short", "k", time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	assert.True(t, CooldownTrySet("short", "k", time.Millisecond))

	assert.True(t, CooldownTrySet("none", "k", 0))
	assert.True(t, CooldownTrySet("none", "k", 0))
}

func TestCooldownRelease(t *testing.T) {
	SetRedis(nil)

	require.True(t, CooldownTrySet("contact", "a@example.com", time.Minute))
	require.False(t, CooldownTrySet("contact", "a@example.com", time.Minute))
	CooldownRelease("contact", "a@example.com")
	assert.True(t, CooldownTrySet("contact", "a@example.com", time.Minute))

	// releasing an unknown key is harmless
	CooldownRelease("contact", "nobody@example.com")
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "hello", PlainText("  <b>hello</b><script>alert(1)</script> "))
	assert.Equal(t, "", PlainText("<img src=x onerror=alert(1)>"))
}
