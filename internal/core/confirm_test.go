package core

import (
	"testing"
	"time"
)

func TestConfirmRegistry_RedeemSingleUse(t *testing.T) {
	registry := NewConfirmRegistry(time.Minute)

	token := registry.Issue("user-1")
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	if !registry.Redeem("user-1", token) {
		t.Error("Redeem() = false for a freshly issued token")
	}

	if registry.Redeem("user-1", token) {
		t.Error("Redeem() = true for an already redeemed token")
	}
}

func TestConfirmRegistry_LastSearchWins(t *testing.T) {
	registry := NewConfirmRegistry(time.Minute)

	first := registry.Issue("user-1")
	second := registry.Issue("user-1")

	if registry.Redeem("user-1", first) {
		t.Error("Redeem() = true for an overwritten token")
	}

	if !registry.Redeem("user-1", second) {
		t.Error("Redeem() = false for the latest token")
	}
}

func TestConfirmRegistry_MismatchLeavesSlot(t *testing.T) {
	registry := NewConfirmRegistry(time.Minute)

	token := registry.Issue("user-1")

	if registry.Redeem("user-1", "not-the-token") {
		t.Error("Redeem() = true for a mismatched token")
	}

	if !registry.Redeem("user-1", token) {
		t.Error("Redeem() = false after an unrelated mismatch attempt")
	}
}

func TestConfirmRegistry_Expiry(t *testing.T) {
	registry := NewConfirmRegistry(10 * time.Minute)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	registry.now = func() time.Time { return current }

	token := registry.Issue("user-1")

	current = current.Add(10*time.Minute + time.Second)

	if registry.Redeem("user-1", token) {
		t.Error("Redeem() = true for an expired token")
	}

	if registry.Has("user-1") {
		t.Error("Has() = true after expiry")
	}
}

func TestConfirmRegistry_ZeroTTLNeverExpires(t *testing.T) {
	registry := NewConfirmRegistry(0)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	registry.now = func() time.Time { return current }

	token := registry.Issue("user-1")

	current = current.AddDate(0, 0, 7)

	if !registry.Redeem("user-1", token) {
		t.Error("Redeem() = false for a token issued without TTL")
	}
}

func TestConfirmRegistry_IdentitiesAreIndependent(t *testing.T) {
	registry := NewConfirmRegistry(time.Minute)

	tokenA := registry.Issue("user-a")
	tokenB := registry.Issue("user-b")

	if registry.Redeem("user-a", tokenB) {
		t.Error("Redeem() = true with another identity's token")
	}

	if !registry.Redeem("user-a", tokenA) {
		t.Error("Redeem() = false for user-a's own token")
	}

	if !registry.Redeem("user-b", tokenB) {
		t.Error("Redeem() = false for user-b's own token")
	}
}

func TestConfirmRegistry_Clear(t *testing.T) {
	registry := NewConfirmRegistry(time.Minute)

	token := registry.Issue("user-1")
	registry.Clear("user-1")

	if registry.Has("user-1") {
		t.Error("Has() = true after Clear()")
	}

	if registry.Redeem("user-1", token) {
		t.Error("Redeem() = true after Clear()")
	}

	// Clearing an identity with no slot must not panic.
	registry.Clear("nobody")
}
