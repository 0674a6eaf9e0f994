package domain

import (
	"encoding/json"
	"fmt"
)

// Domain contains core models shared across packages.

// BoardRef is the board projection the harvest loop iterates over.
type BoardRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Board is a typed view of a board detail payload. The remote API owns the
// full shape; only the fields the harvester cares about are mapped.
type Board struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Desc   string `json:"desc"`
	URL    string `json:"url"`
	Closed bool   `json:"closed"`
}

// Card is a typed view of a card payload.
type Card struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Due       string `json:"due"`
	ShortLink string `json:"shortLink"`
	Closed    bool   `json:"closed"`
	IDBoard   string `json:"idBoard"`
}

// BoardRefsFromPayload projects a decoded board-list payload (as returned
// by the client executor) into typed refs. The payload round-trips through
// JSON so the projection matches what the wire carried.
func BoardRefsFromPayload(payload any) ([]BoardRef, error) {
	if payload == nil {
		return nil, fmt.Errorf("board list payload is nil")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode board list payload: %w", err)
	}

	var refs []BoardRef
	if err := json.Unmarshal(raw, &refs); err != nil {
		return nil, fmt.Errorf("board list payload is not a board array: %w", err)
	}
	return refs, nil
}
