package sinks

import "time"

// Artifact kinds produced by the harvester.
const (
	KindBoards = "boards"
	KindBoard  = "board"
	KindCards  = "cards"
)

// Artifact is one retrieved resource on its way to the configured sinks.
// Payload is the decoded JSON value exactly as the client returned it.
type Artifact struct {
	Kind        string    `json:"kind"`
	ResourceID  string    `json:"resource_id,omitempty"`
	Payload     any       `json:"payload"`
	CollectedAt time.Time `json:"collected_at"`
}

// NewArtifact constructs an Artifact for the given resource.
func NewArtifact(kind, resourceID string, payload any) Artifact {
	return Artifact{
		Kind:        kind,
		ResourceID:  resourceID,
		Payload:     payload,
		CollectedAt: time.Now().UTC(),
	}
}

// FileName returns the canonical on-disk name for the artifact:
// `boards.json` for the board list, `board_{id}.json` / `cards_{id}.json`
// for per-board resources.
func (a Artifact) FileName() string {
	if a.ResourceID == "" {
		return a.Kind + ".json"
	}
	return a.Kind + "_" + a.ResourceID + ".json"
}

// Key identifies the artifact for snapshot change tracking.
func (a Artifact) Key() string {
	if a.ResourceID == "" {
		return a.Kind
	}
	return a.Kind + ":" + a.ResourceID
}
