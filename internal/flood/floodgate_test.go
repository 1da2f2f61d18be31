package flood

import "testing"

func TestFloodgate_AllowsUpToLimit(t *testing.T) {
	fg := New(3)
	defer fg.Stop()

	for i := 0; i < 3; i++ {
		if !fg.Allow("user-1") {
			t.Fatalf("Allow() = false on request %d, within limit", i+1)
		}
	}

	if fg.Allow("user-1") {
		t.Error("Allow() = true past the limit")
	}
}

func TestFloodgate_IdentitiesAreIndependent(t *testing.T) {
	fg := New(1)
	defer fg.Stop()

	if !fg.Allow("user-a") {
		t.Fatal("Allow(user-a) = false on first request")
	}
	if !fg.Allow("user-b") {
		t.Error("user-a's traffic throttled user-b")
	}
	if fg.Allow("user-a") {
		t.Error("Allow(user-a) = true past the limit")
	}
}

func TestFloodgate_DisabledByNonPositiveLimit(t *testing.T) {
	fg := New(0)
	defer fg.Stop()

	for i := 0; i < 100; i++ {
		if !fg.Allow("user-1") {
			t.Fatal("disabled floodgate still throttled")
		}
	}
}
