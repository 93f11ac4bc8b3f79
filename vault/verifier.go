// Package vault runs the simulated serial-number check behind the vault page.
// It is a placeholder flow with a hardcoded serial and grants no real access.
package vault

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the state of a verification session.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusVerifying Status = "verifying"
	StatusVerified  Status = "verified"
	StatusInvalid   Status = "invalid"
)

// DemoSerial is the one serial number that verifies.
const DemoSerial = "123456"

const (
	DefaultDelay     = 2 * time.Second
	DefaultRetention = 15 * time.Minute
)

var (
	ErrEmptySerial     = errors.New("serial number is empty")
	ErrSessionNotFound = errors.New("verification session not found")
)

// Session is a snapshot of one verification.
type Session struct {
	ID          string     `json:"id"`
	Status      Status     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	serial      string
}

// Serial returns the submitted serial number.
func (s Session) Serial() string { return s.serial }

// Verifier tracks sessions. It is safe for concurrent use.
type Verifier struct {
	delay     time.Duration
	retention time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	timers   map[string]*time.Timer
}

// NewVerifier returns a Verifier completing sessions after delay and forgetting
// finished ones after retention. Non-positive values select the defaults.
func NewVerifier(delay, retention time.Duration) *Verifier {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Verifier{
		delay:     delay,
		retention: retention,
		now:       time.Now,
		sessions:  map[string]*Session{},
		timers:    map[string]*time.Timer{},
	}
}

// Submit starts verifying serial. An empty serial starts nothing.
func (v *Verifier) Submit(serial string) (Session, error) {
	if serial == "" {
		return Session{}, ErrEmptySerial
	}
	now := v.now()
	s := &Session{
		ID:          uuid.NewString(),
		Status:      StatusVerifying,
		SubmittedAt: now,
		serial:      serial,
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.pruneLocked(now)
	v.sessions[s.ID] = s
	v.timers[s.ID] = time.AfterFunc(v.delay, func() { v.complete(s.ID) })
	return *s, nil
}

// Get returns the current state of session id.
func (v *Verifier) Get(id string) (Session, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s, ok := v.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return *s, nil
}

// Stop cancels pending completions.
func (v *Verifier) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for id, t := range v.timers {
		t.Stop()
		delete(v.timers, id)
	}
}

func (v *Verifier) complete(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.timers, id)
	s, ok := v.sessions[id]
	if !ok || s.Status != StatusVerifying {
		return
	}
	done := v.now()
	s.CompletedAt = &done
	if s.serial == DemoSerial {
		s.Status = StatusVerified
	} else {
		s.Status = StatusInvalid
	}
}

func (v *Verifier) pruneLocked(now time.Time) {
	for id, s := range v.sessions {
		if s.CompletedAt != nil && now.Sub(*s.CompletedAt) >= v.retention {
			delete(v.sessions, id)
		}
	}
}
