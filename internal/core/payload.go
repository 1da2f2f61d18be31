package core

import (
	"encoding/json"
	"fmt"
)

// confirmPayload is the opaque data round-tripped through a confirmation
// card's confirm action. It carries everything needed to complete the queue
// transition without recomputation: the candidate, the token proving this
// identity approved it, and the played-today flag evaluated at search time.
type confirmPayload struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	ArtworkURL  string `json:"artwork_url"`
	Token       string `json:"token"`
	PlayedToday bool   `json:"played_today"`
}

func encodeConfirmPayload(candidate Candidate, token string, playedToday bool) (string, error) {
	data, err := json.Marshal(confirmPayload{
		Title:       candidate.Title,
		Artist:      candidate.Artist,
		ArtworkURL:  candidate.ArtworkURL,
		Token:       token,
		PlayedToday: playedToday,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode confirmation payload: %w", err)
	}
	return string(data), nil
}

func decodeConfirmPayload(data string) (*confirmPayload, error) {
	var payload confirmPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode confirmation payload: %w", err)
	}
	if payload.Title == "" || payload.Token == "" {
		return nil, fmt.Errorf("confirmation payload missing required fields")
	}
	return &payload, nil
}
