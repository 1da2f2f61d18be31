package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ConfirmRegistry holds at most one outstanding confirmation token per
// identity. Issuing a new token overwrites the previous slot, so the last
// search always wins and the prior token becomes permanently unredeemable.
type ConfirmRegistry struct {
	ttl   time.Duration
	now   func() time.Time
	mutex sync.Mutex
	slots map[string]confirmSlot
}

type confirmSlot struct {
	token     string
	expiresAt time.Time
}

// NewConfirmRegistry creates a registry whose tokens expire ttl after issue.
// A non-positive ttl disables time-based expiry.
func NewConfirmRegistry(ttl time.Duration) *ConfirmRegistry {
	return &ConfirmRegistry{
		ttl:   ttl,
		now:   time.Now,
		slots: make(map[string]confirmSlot),
	}
}

// Issue generates a fresh token for the identity, invalidating any previous
// one.
func (r *ConfirmRegistry) Issue(identity string) string {
	token := uuid.NewString()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	slot := confirmSlot{token: token}
	if r.ttl > 0 {
		slot.expiresAt = r.now().Add(r.ttl)
	}
	r.slots[identity] = slot

	return token
}

// Redeem atomically clears the stored token and returns true only when the
// presented token matches the live slot for the identity and has not expired.
// Missing, mismatched, and timed-out tokens all report false and leave a
// mismatched live slot untouched.
func (r *ConfirmRegistry) Redeem(identity, presented string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	slot, exists := r.slots[identity]
	if !exists {
		return false
	}

	if !slot.expiresAt.IsZero() && r.now().After(slot.expiresAt) {
		delete(r.slots, identity)
		return false
	}

	if presented == "" || presented != slot.token {
		return false
	}

	delete(r.slots, identity)
	return true
}

// Clear drops any outstanding token for the identity. It is a no-op when none
// exists.
func (r *ConfirmRegistry) Clear(identity string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.slots, identity)
}

// Has reports whether the identity currently holds a live, unexpired token.
func (r *ConfirmRegistry) Has(identity string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	slot, exists := r.slots[identity]
	if !exists {
		return false
	}
	if !slot.expiresAt.IsZero() && r.now().After(slot.expiresAt) {
		delete(r.slots, identity)
		return false
	}
	return true
}
