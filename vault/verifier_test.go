package vault

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitStatus(t *testing.T, v *Verifier, id string, want Status) {
	t.Helper()
	require.Eventually(t, func() bool {
		s, err := v.Get(id)
		return err == nil && s.Status == want
	}, time.Second, 2*time.Millisecond)
}

func TestDemoSerialVerifies(t *testing.T) {
	v := NewVerifier(10*time.Millisecond, 0)
	defer v.Stop()

	s, err := v.Submit(DemoSerial)
	require.NoError(t, err)
	assert.Equal(t, StatusVerifying, s.Status)
	assert.Nil(t, s.CompletedAt)

	waitStatus(t, v, s.ID, StatusVerified)
	got, _ := v.Get(s.ID)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, DemoSerial, got.Serial())
}

func TestOtherSerialIsInvalid(t *testing.T) {
	v := NewVerifier(10*time.Millisecond, 0)
	defer v.Stop()

	for _, serial := range []string{"654321", "123456 ", " "} {
		s, err := v.Submit(serial)
		require.NoError(t, err, serial)
		waitStatus(t, v, s.ID, StatusInvalid)
	}
}

func TestEmptySerialStartsNothing(t *testing.T) {
	v := NewVerifier(10*time.Millisecond, 0)
	defer v.Stop()

	_, err := v.Submit("")
	assert.ErrorIs(t, err, ErrEmptySerial)
	v.mu.Lock()
	assert.Empty(t, v.sessions)
	v.mu.Unlock()
}

func TestStatusHeldDuringDelay(t *testing.T) {
	v := NewVerifier(time.Hour, 0)
	defer v.Stop()

	s, err := v.Submit(DemoSerial)
	require.NoError(t, err)
	got, err := v.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusVerifying, got.Status)

	_, err = v.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFinishedSessionsPruned(t *testing.T) {
	v := NewVerifier(time.Millisecond, time.Minute)
	defer v.Stop()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	v.mu.Lock()
	v.now = func() time.Time { return now }
	v.mu.Unlock()

	old, err := v.Submit(DemoSerial)
	require.NoError(t, err)
	waitStatus(t, v, old.ID, StatusVerified)

	v.mu.Lock()
	now = base.Add(2 * time.Minute)
	v.mu.Unlock()
	_, err = v.Submit("999")
	require.NoError(t, err)

	_, err = v.Get(old.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
