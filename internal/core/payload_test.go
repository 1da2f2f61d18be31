package core

import "testing"

func TestConfirmPayloadRoundTrip(t *testing.T) {
	candidate := Candidate{
		Title:      "Shape of You",
		Artist:     "Ed Sheeran",
		ArtworkURL: "https://img/a.jpg",
	}

	encoded, err := encodeConfirmPayload(candidate, "token-123", true)
	if err != nil {
		t.Fatalf("encodeConfirmPayload() error: %v", err)
	}

	payload, err := decodeConfirmPayload(encoded)
	if err != nil {
		t.Fatalf("decodeConfirmPayload() error: %v", err)
	}

	if payload.Title != candidate.Title || payload.Artist != candidate.Artist {
		t.Errorf("decoded candidate = %+v", payload)
	}
	if payload.Token != "token-123" {
		t.Errorf("decoded token = %q", payload.Token)
	}
	if !payload.PlayedToday {
		t.Error("decoded PlayedToday = false, want true")
	}
}

func TestDecodeConfirmPayload_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"Not JSON", "{broken"},
		{"Missing token", `{"title":"Song","artist":"A"}`},
		{"Missing title", `{"token":"t","artist":"A"}`},
		{"Empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeConfirmPayload(tt.data); err == nil {
				t.Error("decodeConfirmPayload() accepted invalid payload")
			}
		})
	}
}
